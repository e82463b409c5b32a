package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

const (
	defaultRedisKeyPrefix = "rulebase:memory:"
	defaultRedisTTL       = 24 * time.Hour
)

type RedisConfig struct {
	Addr        string        `envconfig:"ADDR" default:"localhost:6379"`
	Password    string        `envconfig:"PASSWORD"`
	DB          int           `envconfig:"DB" default:"0"`
	DialTimeout time.Duration `envconfig:"DIAL_TIMEOUT" split_words:"true" default:"5s"`
	KeyPrefix   string        `envconfig:"KEY_PREFIX" split_words:"true" default:"rulebase:memory:"`
	TTL         time.Duration `envconfig:"TTL" default:"24h"`
}

// RedisOption customizes RedisStore.
type RedisOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// RedisStore keeps each session window as a Redis list trimmed to maxTurns.
type RedisStore struct {
	client    redis.UniversalClient
	maxTurns  int
	keyPrefix string
	ttl       time.Duration
}

var _ contractx.MemoryStore = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient, maxTurns int, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	s := &RedisStore{
		client:    client,
		maxTurns:  maxTurns,
		keyPrefix: defaultRedisKeyPrefix,
		ttl:       defaultRedisTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	return s, nil
}

// DialRedis connects and pings before returning the client.
func DialRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping %s: %v", contractx.ErrMemory, cfg.Addr, err)
	}
	return client, nil
}

func (s *RedisStore) key(sessionID string) string {
	return s.keyPrefix + sessionKey(sessionID)
}

func (s *RedisStore) Context(ctx context.Context, sessionID string) (string, error) {
	turns, err := s.Turns(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return FormatContext(turns), nil
}

func (s *RedisStore) Turns(ctx context.Context, sessionID string) ([]contractx.Turn, error) {
	raw, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: read turns: %v", contractx.ErrMemory, err)
	}

	turns := make([]contractx.Turn, 0, len(raw))
	for _, item := range raw {
		var t contractx.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("%w: decode turn: %v", contractx.ErrMemory, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// AddTurn appends and trims in one MULTI/EXEC so concurrent writers never
// observe a list longer than maxTurns.
func (s *RedisStore) AddTurn(ctx context.Context, sessionID string, turn contractx.Turn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("%w: encode turn: %v", contractx.ErrMemory, err)
	}

	key := s.key(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: append turn: %v", contractx.ErrMemory, err)
	}
	return nil
}
