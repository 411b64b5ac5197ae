package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// slotDoc is the JSON document stored under a single Redis key, mirroring
// the in-process slot so both backends behave the same.
type slotDoc struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Redis is a RateCache backed by a single Redis key, for deployments that
// want the slot shared across replicas. The key expires at maxAge so a
// dead process cannot leave rates behind forever.
type Redis struct {
	client *redis.Client
	key    string
	maxAge time.Duration
}

func NewRedis(client *redis.Client, key string, maxAge time.Duration) *Redis {
	if key == "" {
		key = "fx:rates"
	}
	return &Redis{client: client, key: key, maxAge: maxAge}
}

func (r *Redis) Get(ctx context.Context, base, target string) (float64, time.Time, bool) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		return 0, time.Time{}, false
	}
	var doc slotDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, time.Time{}, false
	}
	if doc.Base != base {
		return 0, time.Time{}, false
	}
	rate, ok := doc.Rates[target]
	if !ok {
		return 0, time.Time{}, false
	}
	return rate, doc.FetchedAt, true
}

// putRetries bounds the optimistic retry loop when concurrent writers
// race on the slot key.
const putRetries = 32

// Put merges rates into the slot, replacing it when the base changes. The
// read-merge-write runs under WATCH so concurrent writers on other
// replicas cannot drop each other's targets.
func (r *Redis) Put(ctx context.Context, base string, rates map[string]float64) error {
	txf := func(tx *redis.Tx) error {
		doc := slotDoc{Base: base, Rates: make(map[string]float64, len(rates))}
		raw, err := tx.Get(ctx, r.key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var prev slotDoc
			if json.Unmarshal(raw, &prev) == nil && prev.Base == base {
				for target, rate := range prev.Rates {
					doc.Rates[target] = rate
				}
			}
		}
		for target, rate := range rates {
			doc.Rates[target] = rate
		}
		doc.FetchedAt = time.Now()

		out, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal rate slot: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, out, r.maxAge)
			return nil
		})
		return err
	}

	for i := 0; i < putRetries; i++ {
		err := r.client.Watch(ctx, txf, r.key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("store rate slot: %w", err)
	}
	return fmt.Errorf("store rate slot: %w", redis.TxFailedErr)
}

func (r *Redis) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("drop rate slot: %w", err)
	}
	return nil
}
