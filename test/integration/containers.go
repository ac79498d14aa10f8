package integration

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultPostgresTestImage = "postgres:16-alpine"
	defaultMinioTestImage    = "docker.io/minio/minio:RELEASE.2025-09-07T16-13-09Z"
)

func imageFromEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// startPostgres runs a throwaway Postgres and returns a gorm handle on it.
// The schema is left empty so callers exercise the real migrations.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in -short mode")
	}
	ctx := context.Background()

	pg, err := postgres.Run(ctx, imageFromEnv("POSTGRES_TEST_IMAGE", defaultPostgresTestImage),
		postgres.WithDatabase("esc"),
		postgres.WithUsername("esc"),
		postgres.WithPassword("esc"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres test container: %v", err)
	}
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("resolve postgres dsn: %v", err)
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type minioEnv struct {
	endpoint string
	bucket   string
	client   *minio.Client
}

func startMinIO(t *testing.T) *minioEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("minio container test skipped in -short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: imageFromEnv("MINIO_TEST_IMAGE", defaultMinioTestImage),
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data", "--address", ":9000"},
			WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(45 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start minio test container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolve minio host: %v", err)
	}
	port, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		t.Fatalf("resolve minio port: %v", err)
	}
	endpoint := net.JoinHostPort(host, port.Port())
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Fatalf("create minio verification client: %v", err)
	}
	waitForMinIOReady(t, client)
	return &minioEnv{endpoint: endpoint, bucket: fmt.Sprintf("avatars-it-%d", time.Now().UnixNano()), client: client}
}

func waitForMinIOReady(t *testing.T, client *minio.Client) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		_, err := client.ListBuckets(ctx)
		if err == nil {
			return
		}
		select {
		case <-ctx.Done():
			t.Fatalf("minio readiness check timed out: %v", err)
		case <-ticker.C:
		}
	}
}

func isObjectNotFound(err error) bool {
	var errResp minio.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket"
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
