package health

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "db", Healthy: true}
	sqlDB, err := c.db.DB()
	if err != nil {
		return unhealthy(res, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unhealthy(res, err)
	}
	return res
}

// RedisChecker pings the side-store backing refresh tokens and the logout denylist.
type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "redis", Healthy: true}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return unhealthy(res, err)
	}
	return res
}

type BucketLookup interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// BucketChecker reports the avatar bucket as healthy once it is reachable.
// A missing bucket is fine; it is created on first upload.
type BucketChecker struct {
	client BucketLookup
	bucket string
}

func NewBucketChecker(client BucketLookup, bucket string) Checker {
	if client == nil {
		return nil
	}
	return &BucketChecker{client: client, bucket: bucket}
}

func (c *BucketChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "object_storage", Healthy: true}
	if _, err := c.client.BucketExists(ctx, c.bucket); err != nil {
		return unhealthy(res, err)
	}
	return res
}

func unhealthy(res CheckResult, err error) CheckResult {
	res.Healthy = false
	res.Error = err.Error()
	return res
}
