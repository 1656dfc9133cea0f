package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/carstore-api/internal/apperr"
)

const (
	// ContextUserKey は、認証済みユーザーIDをハンドラー間で共有するためのキーです。
	ContextUserKey = "auth.userID"

	bearerPrefix = "Bearer "
)

var (
	ErrMissingToken    = errors.New("auth: no token provided")
	ErrMalformedHeader = errors.New("auth: malformed authorization header")
	ErrInvalidToken    = errors.New("auth: token invalid or expired")
)

// TokenVerifier はトークンを検証してユーザーIDを返します。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Gate は Authorization ヘッダーを検証して保護されたハンドラーへの到達可否を判定します。
type Gate struct {
	verifier TokenVerifier
}

// NewGate は Gate を作成します。
func NewGate(verifier TokenVerifier) *Gate {
	return &Gate{verifier: verifier}
}

// Authenticate は "Bearer <token>" 形式のヘッダー値を検証し、ユーザーIDを返します。
// スキームは大文字小文字を区別し、区切りは半角スペース1つのみ許可します。
func (g *Gate) Authenticate(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrMalformedHeader
	}
	userID, err := g.verifier.Verify(token)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	return userID, nil
}

// RequireToken はトークンを検証するミドルウェアを返します。
// 失敗した場合は 401 を返し、後続のハンドラーは実行しません。
func (g *Gate) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := g.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			apperr.Respond(c, apperr.Unauthorized(gateMessage(err), err))
			return
		}
		c.Set(ContextUserKey, userID)
		c.Next()
	}
}

// UserID はミドルウェアが設定したユーザーIDを返します。
func UserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserKey)
	return userID, userID != ""
}

func gateMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "No token provided"
	case errors.Is(err, ErrMalformedHeader):
		return "Invalid token format"
	default:
		return "Token invalid or expired"
	}
}

// PrivateHandler は GET /api/data/private のハンドラーです。
func PrivateHandler(c *gin.Context) {
	userID, ok := UserID(c)
	if !ok {
		apperr.Respond(c, apperr.Unauthorized("No token provided", ErrMissingToken))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"secret": "Hello user " + userID + ", here's your CarStore secret data",
	})
}
