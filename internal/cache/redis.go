package cache

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/buseagkoc/construction-chatbot/internal/model"
	appErr "github.com/buseagkoc/construction-chatbot/internal/pkg/errors"
)

type redisStore struct {
	client *goredis.Client
}

// NewRedis wraps a go-redis client as an answer cache.
func NewRedis(client *goredis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, question string) (*model.Answer, bool, error) {
	data, err := s.client.Get(ctx, cacheKey(question)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, false, nil
		}
		return nil, false, appErr.Cache(err)
	}
	var answer model.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		// Drop the corrupted entry instead of serving it.
		logutil.GetLogger(ctx).Warn("dropping corrupted cache entry", zap.Error(err))
		_ = s.client.Del(ctx, cacheKey(question)).Err()
		return nil, false, nil
	}
	return &answer, true, nil
}

func (s *redisStore) Set(ctx context.Context, question string, answer *model.Answer, ttl time.Duration) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return appErr.Cache(err)
	}
	if err := s.client.Set(ctx, cacheKey(question), data, ttl).Err(); err != nil {
		return appErr.Cache(err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
