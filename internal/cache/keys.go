package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	SettingKeyPrefix = "setting:%s"
	RevokedKeyPrefix = "blacklist:%s"
)

const (
	UserTTL    = 5 * time.Minute
	SettingTTL = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func SettingKey(key string) string {
	return fmt.Sprintf(SettingKeyPrefix, key)
}

func RevokedKey(jti string) string {
	return fmt.Sprintf(RevokedKeyPrefix, jti)
}

func (c *Cache) InvalidateUser(ctx context.Context, userID uint) {
	c.Invalidate(ctx, UserKey(userID))
}

func (c *Cache) InvalidateSetting(ctx context.Context, key string) {
	c.Invalidate(ctx, SettingKey(key))
}

// Revoke marks a token id as revoked until ttl elapses.
func (c *Cache) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, RevokedKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked. Without Redis nothing is revoked.
func (c *Cache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !c.Enabled() || jti == "" {
		return false, nil
	}
	n, err := c.client.Exists(ctx, RevokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
