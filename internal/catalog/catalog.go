// Package catalog は外部で投入された車両データ（carsData コレクション）を読み取り専用で提供します。
package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName は車両データのコレクション名です。
const CollectionName = "carsData"

// Vehicle は車両レコードです。brand / model / price 以外の項目もそのまま保持します。
type Vehicle map[string]any

// Lister は全件取得を提供します。
type Lister interface {
	ListAll(ctx context.Context) ([]Vehicle, error)
}

var _ Lister = (*MongoCatalog)(nil)

// MongoCatalog は MongoDB のコレクションを読み取ります。書き込み経路は持ちません。
type MongoCatalog struct {
	coll *mongo.Collection
}

// NewMongoCatalog は MongoCatalog を作成します。
// 入れ子のドキュメントも map として復元し、JSON に変換したときに構造が保たれるようにします。
func NewMongoCatalog(db *mongo.Database) *MongoCatalog {
	opts := options.Collection().SetBSONOptions(&options.BSONOptions{
		DefaultDocumentM: true,
	})
	return &MongoCatalog{coll: db.Collection(CollectionName, opts)}
}

// ListAll はコレクションの全ドキュメントを返します。順序は保証しません。
func (c *MongoCatalog) ListAll(ctx context.Context) ([]Vehicle, error) {
	cursor, err := c.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	vehicles := make([]Vehicle, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode vehicle: %w", err)
		}
		vehicles = append(vehicles, Vehicle(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return vehicles, nil
}
