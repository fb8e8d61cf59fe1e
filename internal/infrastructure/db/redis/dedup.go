package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sendDedupTTL = 2 * time.Minute

// SendDedup guards against accidental duplicate notification sends (an admin
// double-submitting the same form) using short-lived Redis keys.
// Key format: notify-dedup:<sha256 of creator|title|message|recipient>
type SendDedup struct {
	client *redis.Client
}

// NewSendDedup creates a SendDedup wrapping the given Redis client.
func NewSendDedup(client *redis.Client) *SendDedup {
	return &SendDedup{client: client}
}

// IsDuplicate reports whether an identical send was marked recently.
func (d *SendDedup) IsDuplicate(ctx context.Context, createdBy, title, message, recipient string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(createdBy, title, message, recipient)).Result()
	if err != nil {
		return false, fmt.Errorf("send dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records the send (expires after sendDedupTTL).
func (d *SendDedup) Mark(ctx context.Context, createdBy, title, message, recipient string) error {
	return d.client.Set(ctx, d.key(createdBy, title, message, recipient), "1", sendDedupTTL).Err()
}

func (d *SendDedup) key(createdBy, title, message, recipient string) string {
	sum := sha256.Sum256([]byte(createdBy + "|" + title + "|" + message + "|" + recipient))
	return "notify-dedup:" + hex.EncodeToString(sum[:])
}
