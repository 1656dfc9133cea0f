package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	accountKeyPrefix = "user:"
	emailKeyPrefix   = "user:email:"
)

var _ Store = (*RedisStore)(nil)

// RedisStore はアカウントを JSON として Redis に保存します。
// メールアドレスの索引キーを SETNX で作成するため、重複登録は原子的に拒否されます。
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore は RedisStore を作成します。
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// FindByEmail はメールアドレスの索引からアカウントを取得します。
func (s *RedisStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	id, err := s.rdb.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup email index: %w", err)
	}

	data, err := s.rdb.Get(ctx, accountKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// 索引だけ残っている（作成途中）場合は未登録として扱う
			return nil, nil
		}
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}

	var account Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return &account, nil
}

// Create はメールアドレスの索引を確保してからアカウントを保存します。
func (s *RedisStore) Create(ctx context.Context, fields NewAccount) (*Account, error) {
	account := &Account{
		ID:           uuid.NewString(),
		Name:         fields.Name,
		Age:          fields.Age,
		Email:        fields.Email,
		PasswordHash: fields.PasswordHash,
	}

	reserved, err := s.rdb.SetNX(ctx, emailKey(account.Email), account.ID, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("reserve email: %w", err)
	}
	if !reserved {
		return nil, ErrDuplicateEmail
	}

	payload, err := json.Marshal(account)
	if err != nil {
		s.release(account.Email)
		return nil, err
	}
	if err := s.rdb.Set(ctx, accountKey(account.ID), payload, 0).Err(); err != nil {
		s.release(account.Email)
		return nil, fmt.Errorf("save user: %w", err)
	}
	return account, nil
}

// release は保存に失敗したときに索引キーを解放します。
func (s *RedisStore) release(email string) {
	_ = s.rdb.Del(context.Background(), emailKey(email)).Err()
}

func accountKey(id string) string {
	return accountKeyPrefix + id
}

func emailKey(email string) string {
	return emailKeyPrefix + email
}
