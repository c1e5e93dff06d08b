package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 5 * time.Second

// Redis is a Storage kept in a Redis database. All keys live under a common
// namespace so several profiles can share one server.
type Redis struct {
	client    *redis.Client
	namespace string
}

func OpenRedis(url, namespace string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{client: client, namespace: namespace}, nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}

func (s *Redis) key(k string) string {
	return s.namespace + ":" + k
}

func (s *Redis) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Redis) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Redis) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *Redis) Keys(prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	var keys []string
	ns := s.key("")
	iter := s.client.Scan(ctx, 0, globEscape(ns+prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(ns):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

var globSpecial = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"?", `\?`,
	"[", `\[`,
	"]", `\]`,
)

// globEscape quotes the characters SCAN MATCH treats as pattern syntax.
func globEscape(s string) string {
	return globSpecial.Replace(s)
}
