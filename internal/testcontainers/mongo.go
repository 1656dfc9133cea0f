// Package testcontainers は統合テスト用に MongoDB コンテナを起動するヘルパーを提供します。
package testcontainers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	defaultMongoImage = "mongo:7"
	defaultMongoPort  = "27017"
)

// MongoContainer は起動済みの MongoDB コンテナです。
type MongoContainer struct {
	testcontainers.Container
	URI string
}

// NewMongoContainer は MongoDB コンテナを起動し、接続可能になるまで待機します。
func NewMongoContainer(ctx context.Context) (*MongoContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        defaultMongoImage,
		ExposedPorts: []string{defaultMongoPort + "/tcp"},
		WaitingFor:   wait.ForListeningPort(defaultMongoPort + "/tcp").WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, defaultMongoPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &MongoContainer{
		Container: container,
		URI:       fmt.Sprintf("mongodb://%s:%s", host, mappedPort.Port()),
	}, nil
}

// MongoDatabase はテスト専用のデータベースを返します。
// Docker が使えない環境や -short 指定時はテストをスキップします。
// コンテナとクライアントはテスト終了時に破棄されます。
func MongoDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := NewMongoContainer(ctx)
	if err != nil {
		t.Skipf("MongoDB container unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	client, err := mongo.Connect(options.Client().ApplyURI(container.URI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return client.Database("test_" + time.Now().Format("150405000"))
}
