// Package auth はユーザー登録・ログインとトークンによる認証ゲートを提供します。
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/carstore-api/internal/apperr"
	"github.com/yourusername/carstore-api/internal/users"
)

const (
	msgFieldsRequired     = "All fields required"
	msgPasswordTooLong    = "Password must be at most 72 bytes"
	msgEmailRegistered    = "Email already registered"
	msgInvalidCredentials = "Invalid credentials"
)

// TokenIssuer はユーザーIDからセッショントークンを発行します。
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Manager は登録・ログイン処理をまとめた構造体です。
type Manager struct {
	users  users.Store
	issuer TokenIssuer
}

// NewManager は認証マネージャーを作成します。
func NewManager(store users.Store, issuer TokenIssuer) *Manager {
	return &Manager{
		users:  store,
		issuer: issuer,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      *int   `json:"age"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Age   *int   `json:"age,omitempty"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  userSummary `json:"user"`
}

// Register は POST /register のハンドラーです。
func (m *Manager) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(msgFieldsRequired))
		return
	}

	resp, err := m.register(c.Request.Context(), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Login は POST /login のハンドラーです。
// 未登録メールアドレスとパスワード不一致は同じメッセージで応答します。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.InvalidCredentials(msgInvalidCredentials))
		return
	}

	resp, err := m.login(c.Request.Context(), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// register は重複チェック後にアカウントを作成します。
// 確認と作成の間に同じメールアドレスで登録された場合はストア側の一意制約で 409 になります。
func (m *Manager) register(ctx context.Context, req registerRequest) (*sessionResponse, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, apperr.Validation(msgFieldsRequired)
	}

	existing, err := m.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.Duplicate(msgEmailRegistered, users.ErrDuplicateEmail)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		if errors.Is(err, errPasswordTooLong) {
			return nil, apperr.Validation(msgPasswordTooLong)
		}
		return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	account, err := m.users.Create(ctx, users.NewAccount{
		Name:         req.Name,
		Age:          req.Age,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return nil, apperr.Duplicate(msgEmailRegistered, err)
		}
		return nil, apperr.Internal(err)
	}

	return m.newSession(account)
}

func (m *Manager) login(ctx context.Context, req loginRequest) (*sessionResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperr.InvalidCredentials(msgInvalidCredentials)
	}

	account, err := m.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	hash := string(dummyHash)
	if account != nil {
		hash = account.PasswordHash
	}
	ok, err := verifyPassword(hash, req.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("verify password: %w", err))
	}
	if account == nil || !ok {
		return nil, apperr.InvalidCredentials(msgInvalidCredentials)
	}

	return m.newSession(account)
}

func (m *Manager) newSession(account *users.Account) (*sessionResponse, error) {
	token, err := m.issuer.Issue(account.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &sessionResponse{
		Token: token,
		User: userSummary{
			ID:    account.ID,
			Name:  account.Name,
			Age:   account.Age,
			Email: account.Email,
		},
	}, nil
}
