package memory

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

func TestNewRedisStoreRejectsNilClient(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisStore(nil, 5); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestRedisStoreSlidingWindow(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := DialRedis(ctx, RedisConfig{Addr: addr, DialTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("dial redis: %v", err)
	}
	defer client.Close()

	store, err := NewRedisStore(client, 2, WithKeyPrefix("rulebase:test:"), WithTTL(time.Minute))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	session := uuid.NewString()
	defer client.Del(context.Background(), store.key(session))

	for _, q := range []string{"1", "2", "3"} {
		if err := store.AddTurn(ctx, session, contractx.Turn{User: q, Agent: "a" + q}); err != nil {
			t.Fatalf("add turn: %v", err)
		}
	}

	turns, err := store.Turns(ctx, session)
	if err != nil {
		t.Fatalf("turns: %v", err)
	}
	if len(turns) != 2 || turns[0].User != "2" || turns[1].User != "3" {
		t.Fatalf("unexpected turns: %+v", turns)
	}
}
