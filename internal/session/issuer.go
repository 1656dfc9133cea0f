// Package session は署名付きセッショントークン（HS256 JWT）の発行と検証を提供します。
// トークンはサーバー側に保存せず、署名と有効期限のみで検証します。
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL は発行時刻からの絶対的な有効期間です。
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidToken は署名不正・形式不正・期限切れのいずれかを表します。
var ErrInvalidToken = errors.New("invalid token")

// Claims はトークンに含めるクレームです。
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Issuer はトークンを発行・検証します。起動後は読み取り専用です。
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option は Issuer の設定を変更します。
type Option func(*Issuer)

// WithClock は現在時刻の取得関数を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer は署名鍵を受け取り Issuer を作成します。
func NewIssuer(secret []byte, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("session: signing secret is empty")
	}
	i := &Issuer{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue は userID を含むトークンを発行します。
func (i *Issuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("session: userID is required")
	}
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、含まれる userID を返します。
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
