package users

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName はユーザーを保存するコレクション名です。
const CollectionName = "users"

type accountDocument struct {
	ID       bson.ObjectID `bson:"_id,omitempty"`
	Name     string        `bson:"name"`
	Age      *int          `bson:"age,omitempty"`
	Email    string        `bson:"email"`
	Password string        `bson:"password"`
}

func (d *accountDocument) toAccount() *Account {
	return &Account{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Age:          d.Age,
		Email:        d.Email,
		PasswordHash: d.Password,
	}
}

var _ Store = (*MongoStore)(nil)

// MongoStore は MongoDB の users コレクションにアカウントを保存します。
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore は db 上の users コレクションを使う MongoStore を作成します。
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(CollectionName)}
}

// EnsureIndexes は email の一意インデックスを作成します。起動時に一度呼び出してください。
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

// FindByEmail はメールアドレスでアカウントを検索します。
func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var doc accountDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return doc.toAccount(), nil
}

// Create はアカウントを挿入します。
func (s *MongoStore) Create(ctx context.Context, fields NewAccount) (*Account, error) {
	doc := accountDocument{
		ID:       bson.NewObjectID(),
		Name:     fields.Name,
		Age:      fields.Age,
		Email:    fields.Email,
		Password: fields.PasswordHash,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toAccount(), nil
}
