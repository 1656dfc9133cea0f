package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// パスワードハッシュのコスト（固定）
const passwordCost = bcrypt.DefaultCost

// 未登録メールアドレスでのログイン時にも比較処理を行うためのハッシュ
var dummyHash = mustHash("carstore-dummy-password")

var errPasswordTooLong = bcrypt.ErrPasswordTooLong

func mustHash(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		panic("auth: failed to build dummy password hash: " + err.Error())
	}
	return hash
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword はハッシュとの比較結果を返します。ハッシュ不正などの内部エラーは error で返します。
func verifyPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, err
	}
}
