package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis は接続確認込みでクライアントを作る。
func InitRedis(addr string, password string, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return rdb, nil
}

// 商品詳細のキャッシュ。キーは product:<id>。
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func (c *ProductCache) key(productID int64) string {
	return fmt.Sprintf("product:%d", productID)
}

// GetDetail はキャッシュ命中なら生バイトを返す。外れ・失敗は (nil, false)。
func (c *ProductCache) GetDetail(ctx context.Context, productID int64) ([]byte, bool) {
	data, err := c.rdb.Get(ctx, c.key(productID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *ProductCache) SetDetail(ctx context.Context, productID int64, detail interface{}) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(productID), data, c.ttl).Err()
}

// 管理者が商品・画像を触ったら必ず呼ぶ
func (c *ProductCache) Invalidate(ctx context.Context, productID int64) error {
	return c.rdb.Del(ctx, c.key(productID)).Err()
}
