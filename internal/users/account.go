// Package users はユーザーアカウントの永続化（Credential Store）を提供します。
package users

import (
	"context"
	"errors"
)

// ErrDuplicateEmail は同じメールアドレスのアカウントが既に存在することを表します。
var ErrDuplicateEmail = errors.New("users: email already registered")

// Account は保存済みのユーザーアカウントです。
type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Age          *int   `json:"age,omitempty"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// NewAccount は作成時に渡すフィールドです。ID はストアが採番します。
type NewAccount struct {
	Name         string
	Age          *int
	Email        string
	PasswordHash string
}

// Store はアカウントの検索と作成を行います。
// メールアドレスは大文字小文字を区別してそのまま比較します。
type Store interface {
	// FindByEmail は該当アカウントを返します。存在しない場合は (nil, nil) です。
	FindByEmail(ctx context.Context, email string) (*Account, error)
	// Create はアカウントを作成します。メールアドレスが重複していれば ErrDuplicateEmail を返します。
	Create(ctx context.Context, fields NewAccount) (*Account, error)
}
