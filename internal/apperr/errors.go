// Package apperr はハンドラー間で共通のエラー分類と HTTP ステータスへの変換を提供します。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind はエラーの種別を表します。
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicate
	KindInvalidCredentials
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Status は種別に対応する HTTP ステータスコードを返します。
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindDuplicate:
		return http.StatusConflict
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error はクライアントに返すメッセージと原因エラーを保持します。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Validation は入力不備（400）を表すエラーを作成します。
func Validation(message string) *Error {
	return newError(KindValidation, message, nil)
}

// Duplicate は一意制約違反（409）を表すエラーを作成します。
func Duplicate(message string, cause error) *Error {
	return newError(KindDuplicate, message, cause)
}

// InvalidCredentials は認証情報の不一致（401）を表すエラーを作成します。
func InvalidCredentials(message string) *Error {
	return newError(KindInvalidCredentials, message, nil)
}

// Unauthorized はトークン検証の失敗（401）を表すエラーを作成します。
func Unauthorized(message string, cause error) *Error {
	return newError(KindUnauthorized, message, cause)
}

// Internal は想定外の失敗（500）を包みます。
func Internal(cause error) *Error {
	return newError(KindInternal, InternalMessage, cause)
}

// InternalMessage は 500 応答で返す固定メッセージです。
const InternalMessage = "Internal server error"

// KindOf は err の種別を返します。*Error でなければ KindInternal です。
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
