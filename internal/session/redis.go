package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aerodesk/aerodesk/config"
	"github.com/redis/go-redis/v9"
)

const (
	fieldAccessToken  = "authToken"
	fieldRefreshToken = "refreshToken"
	fieldUserInfo     = "userInfo"
)

// RedisStore keeps the session in a Redis hash under a fixed key, with
// the same three fields the file store uses.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(cfg config.RedisConfig, key string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		key:    key,
	}
}

func (r *RedisStore) Load(ctx context.Context) (Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	s := Session{
		AccessToken:  fields[fieldAccessToken],
		RefreshToken: fields[fieldRefreshToken],
	}
	if raw := fields[fieldUserInfo]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.User); err != nil {
			return Session{}, fmt.Errorf("parse session user: %w", err)
		}
	}
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, s Session) error {
	userInfo := ""
	if s.User != nil {
		raw, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("encode session user: %w", err)
		}
		userInfo = string(raw)
	}
	return r.client.HSet(ctx, r.key,
		fieldAccessToken, s.AccessToken,
		fieldRefreshToken, s.RefreshToken,
		fieldUserInfo, userInfo,
	).Err()
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

var _ Store = (*RedisStore)(nil)
