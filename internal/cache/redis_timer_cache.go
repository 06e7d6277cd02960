package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/rueidis"

	model "worktracker.com/worktracker/internal/models"
)

const idleMarker = "idle"

type RedisTimerCache struct {
	client    rueidis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisTimerCache(client rueidis.Client, keyPrefix string, ttl time.Duration) *RedisTimerCache {
	return &RedisTimerCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (r *RedisTimerCache) key(userID string) string {
	return r.keyPrefix + userID
}

func (r *RedisTimerCache) Get(ctx context.Context, userID string) (*model.ActiveTimer, error) {
	cmd := r.client.B().Get().Key(r.key(userID)).Build()
	value, err := r.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	return decodeTimer(value)
}

func (r *RedisTimerCache) Set(ctx context.Context, userID string, timer *model.ActiveTimer) error {
	value, err := encodeTimer(timer)
	if err != nil {
		return err
	}

	cmd := r.client.B().Setex().Key(r.key(userID)).Seconds(int64(r.ttl / time.Second)).Value(value).Build()
	return r.client.Do(ctx, cmd).Error()
}

func (r *RedisTimerCache) Delete(ctx context.Context, userID string) error {
	cmd := r.client.B().Del().Key(r.key(userID)).Build()
	return r.client.Do(ctx, cmd).Error()
}

// encodeTimer stores a nil timer as the idle marker so "known idle" survives a round trip.
func encodeTimer(timer *model.ActiveTimer) (string, error) {
	if timer == nil {
		return idleMarker, nil
	}
	data, err := json.Marshal(timer)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeTimer treats an unreadable value as a miss so the caller reloads from the store.
func decodeTimer(value string) (*model.ActiveTimer, error) {
	if value == idleMarker {
		return nil, nil
	}

	var timer model.ActiveTimer
	if err := json.Unmarshal([]byte(value), &timer); err != nil || timer.UserID == "" {
		return nil, ErrCacheMiss
	}
	return &timer, nil
}
