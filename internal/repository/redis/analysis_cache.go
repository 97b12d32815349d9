package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"

	"github.com/freeeve/stake-lattice/api/pkg/lattice"
)

func analysisKey(inputs string) string { return "analysis:" + inputs }

// Entries are zstd-compressed JSON. EncodeAll and DecodeAll are safe for
// concurrent use on a shared coder.
var (
	zenc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zdec, _ = zstd.NewReader(nil)
)

// GetTargets returns the cached ranking for the input key, or nil on a miss.
// An undecodable entry is deleted so the next write replaces it.
func (c *Client) GetTargets(ctx context.Context, key string) ([]lattice.TargetRecord, error) {
	data, err := c.rdb.Get(ctx, analysisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	raw, err := zdec.DecodeAll(data, nil)
	if err != nil {
		return nil, c.forget(ctx, key, fmt.Errorf("decompress analysis: %w", err))
	}
	targets := []lattice.TargetRecord{}
	if err := json.Unmarshal(raw, &targets); err != nil {
		return nil, c.forget(ctx, key, fmt.Errorf("decode analysis: %w", err))
	}
	return targets, nil
}

// SetTargets stores a ranking under the input key. A zero ttl keeps it
// until evicted.
func (c *Client) SetTargets(ctx context.Context, key string, targets []lattice.TargetRecord, ttl time.Duration) error {
	if targets == nil {
		targets = []lattice.TargetRecord{}
	}
	data, err := json.Marshal(targets)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	if err := c.rdb.Set(ctx, analysisKey(key), zenc.EncodeAll(data, nil), ttl).Err(); err != nil {
		return fmt.Errorf("set analysis: %w", err)
	}
	return nil
}

// forget drops a cached ranking and returns cause joined with any delete
// failure.
func (c *Client) forget(ctx context.Context, key string, cause error) error {
	if err := c.rdb.Del(ctx, analysisKey(key)).Err(); err != nil {
		return errors.Join(cause, fmt.Errorf("drop analysis: %w", err))
	}
	return cause
}
