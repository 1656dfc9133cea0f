package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/carstore-api/internal/session"
	"github.com/yourusername/carstore-api/internal/users"
)

// memoryStore は重複チェックを行わない（呼び出し側の事前確認に任せる）テスト用ストアです。
type memoryStore struct {
	mu       sync.Mutex
	accounts map[string]*users.Account
	nextID   int

	findErr   error
	createErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{accounts: make(map[string]*users.Account)}
}

func (s *memoryStore) FindByEmail(ctx context.Context, email string) (*users.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	account, ok := s.accounts[email]
	if !ok {
		return nil, nil
	}
	clone := *account
	return &clone, nil
}

func (s *memoryStore) Create(ctx context.Context, fields users.NewAccount) (*users.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	account := &users.Account{
		ID:           fmt.Sprintf("id-%d", s.nextID),
		Name:         fields.Name,
		Age:          fields.Age,
		Email:        fields.Email,
		PasswordHash: fields.PasswordHash,
	}
	s.accounts[fields.Email] = account
	clone := *account
	return &clone, nil
}

type stubIssuer struct {
	err error
}

func (s stubIssuer) Issue(userID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + userID, nil
}

func newAuthRouter(m *Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/register", m.Register)
	router.POST("/login", m.Login)
	return router
}

func postJSON(t *testing.T, router http.Handler, path string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return rec, payload
}

func TestRegisterSuccess(t *testing.T) {
	store := newMemoryStore()
	router := newAuthRouter(NewManager(store, stubIssuer{}))

	rec, payload := postJSON(t, router, "/register", `{"name":"A","email":"a@x.com","password":"p1","age":30}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "token-for-id-1", payload["token"])
	assert.Equal(t, map[string]any{
		"id":    "id-1",
		"name":  "A",
		"age":   float64(30),
		"email": "a@x.com",
	}, payload["user"])

	stored, err := store.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "p1", stored.PasswordHash)
	ok, err := verifyPassword(stored.PasswordHash, "p1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterWithoutAgeOmitsIt(t *testing.T) {
	router := newAuthRouter(NewManager(newMemoryStore(), stubIssuer{}))

	rec, payload := postJSON(t, router, "/register", `{"name":"A","email":"a@x.com","password":"p1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, payload["user"], "age")
}

func TestRegisterValidation(t *testing.T) {
	bodies := []string{
		`{"email":"a@x.com","password":"p1"}`,
		`{"name":"A","password":"p1"}`,
		`{"name":"A","email":"a@x.com"}`,
		`{"name":"","email":"a@x.com","password":"p1"}`,
		`not-json`,
	}
	for _, body := range bodies {
		router := newAuthRouter(NewManager(newMemoryStore(), stubIssuer{}))
		rec, payload := postJSON(t, router, "/register", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "All fields required", payload["message"], body)
	}
}

func TestRegisterAcceptsWhitespaceFields(t *testing.T) {
	router := newAuthRouter(NewManager(newMemoryStore(), stubIssuer{}))

	rec, payload := postJSON(t, router, "/register", `{"name":" ","email":" ","password":"p1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, " ", payload["user"].(map[string]any)["name"])
	assert.Equal(t, " ", payload["user"].(map[string]any)["email"])
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	router := newAuthRouter(NewManager(newMemoryStore(), stubIssuer{}))
	body := fmt.Sprintf(`{"name":"A","email":"a@x.com","password":%q}`, strings.Repeat("x", 73))

	rec, _ := postJSON(t, router, "/register", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newAuthRouter(NewManager(newMemoryStore(), stubIssuer{}))

	rec, _ := postJSON(t, router, "/register", `{"name":"A","email":"a@x.com","password":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload := postJSON(t, router, "/register", `{"name":"B","email":"a@x.com","password":"p2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered", payload["message"])
}

func TestRegisterDuplicateFromStore(t *testing.T) {
	store := newMemoryStore()
	store.createErr = users.ErrDuplicateEmail
	router := newAuthRouter(NewManager(store, stubIssuer{}))

	rec, payload := postJSON(t, router, "/register", `{"name":"A","email":"a@x.com","password":"p1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered", payload["message"])
}

func TestRegisterStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.findErr = errors.New("connection reset")
	router := newAuthRouter(NewManager(store, stubIssuer{}))

	rec, payload := postJSON(t, router, "/register", `{"name":"A","email":"a@x.com","password":"p1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", payload["message"])
}

func TestRegisterIssuerFailure(t *testing.T) {
	router := newAuthRouter(NewManager(newMemoryStore(), stubIssuer{err: errors.New("sign failed")}))

	rec, _ := postJSON(t, router, "/register", `{"name":"A","email":"a@x.com","password":"p1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogin(t *testing.T) {
	issuer, err := session.NewIssuer([]byte("secret"))
	require.NoError(t, err)
	router := newAuthRouter(NewManager(newMemoryStore(), issuer))

	rec, registered := postJSON(t, router, "/register", `{"name":"A","email":"a@x.com","password":"p1","age":22}`)
	require.Equal(t, http.StatusOK, rec.Code)
	registeredID := registered["user"].(map[string]any)["id"]

	t.Run("correct password", func(t *testing.T) {
		rec, payload := postJSON(t, router, "/login", `{"email":"a@x.com","password":"p1"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		token, ok := payload["token"].(string)
		require.True(t, ok)
		userID, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, registeredID, userID)
		assert.Equal(t, map[string]any{
			"id":    registeredID,
			"name":  "A",
			"age":   float64(22),
			"email": "a@x.com",
		}, payload["user"])
	})

	invalid := map[string]string{
		"wrong password":   `{"email":"a@x.com","password":"wrong"}`,
		"unknown email":    `{"email":"b@x.com","password":"p1"}`,
		"email case":       `{"email":"A@x.com","password":"p1"}`,
		"missing password": `{"email":"a@x.com"}`,
		"missing email":    `{"password":"p1"}`,
		"not json":         `nope`,
	}
	for name, body := range invalid {
		t.Run(name, func(t *testing.T) {
			rec, payload := postJSON(t, router, "/login", body)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, map[string]any{"message": "Invalid credentials"}, payload)
		})
	}
}

func TestLoginStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.findErr = errors.New("timeout")
	router := newAuthRouter(NewManager(store, stubIssuer{}))

	rec, _ := postJSON(t, router, "/login", `{"email":"a@x.com","password":"p1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoginUnknownEmailIsUnauthorized(t *testing.T) {
	router := newAuthRouter(NewManager(newMemoryStore(), stubIssuer{}))

	rec, payload := postJSON(t, router, "/login", `{"email":"ghost@x.com","password":"p1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", payload["message"])
}

func TestLoginCorruptHash(t *testing.T) {
	store := newMemoryStore()
	_, err := store.Create(context.Background(), users.NewAccount{Name: "A", Email: "a@x.com", PasswordHash: "not-bcrypt"})
	require.NoError(t, err)
	router := newAuthRouter(NewManager(store, stubIssuer{}))

	rec, _ := postJSON(t, router, "/login", `{"email":"a@x.com","password":"p1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
