package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix はRedis上のセッションキーの接頭辞。
const DefaultRedisKeyPrefix = "storelist:session:"

// RedisStore はRedisにセッションを保持する。
// 複数プロセスでセッションを共有でき、プロセス再起動後もセッションが残る。
// キーにTTLは設定しない。
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore はRedisStoreを生成する。prefixが空の場合はDefaultRedisKeyPrefixを使う。
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisClient は接続URL（redis:// または rediss://）からRedisクライアントを生成する。
// 接続確認は行わないため、必要に応じて呼び出し側でPingすること。
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}

// Create はセッションを作成する。
// トークン衝突は実質起こらないが、SETNXで既存キーの上書きを防ぐ。
func (s *RedisStore) Create(ctx context.Context, username string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	ok, err := s.client.SetNX(ctx, s.key(token), username, 0).Result()
	if err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("session token collision")
	}

	return token, nil
}

// Lookup はトークンに紐付くユーザー名を返す。
func (s *RedisStore) Lookup(ctx context.Context, token string) (string, bool, error) {
	username, err := s.client.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to lookup session: %w", err)
	}
	return username, true, nil
}

// Destroy はセッションを削除する。
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
