package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PostgresConfig struct {
	DSN         string        `envconfig:"DSN" required:"true"`
	DialTimeout time.Duration `envconfig:"DIAL_TIMEOUT" split_words:"true" default:"5s"`
}

type turnRow struct {
	bun.BaseModel `bun:"table:conversation_turns,alias:ct"`

	ID        int64     `bun:"id,pk,autoincrement"`
	SessionID string    `bun:"session_id,notnull"`
	UserText  string    `bun:"user_text,notnull"`
	AgentText string    `bun:"agent_text,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PostgresStore persists turns in one table and prunes each session to maxTurns.
type PostgresStore struct {
	db       *bun.DB
	maxTurns int
}

var _ contractx.MemoryStore = (*PostgresStore)(nil)

func OpenPostgres(cfg PostgresConfig) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", contractx.ErrValidation)
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithDialTimeout(cfg.DialTimeout),
	))
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// NewPostgresStore creates the turns table when it does not exist.
func NewPostgresStore(ctx context.Context, db *bun.DB, maxTurns int) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	if _, err := db.NewCreateTable().Model((*turnRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: create turns table: %v", contractx.ErrMemory, err)
	}
	if _, err := db.NewCreateIndex().
		Model((*turnRow)(nil)).
		Index("conversation_turns_session_idx").
		IfNotExists().
		Column("session_id", "id").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: create turns index: %v", contractx.ErrMemory, err)
	}

	return &PostgresStore{db: db, maxTurns: maxTurns}, nil
}

func (s *PostgresStore) Context(ctx context.Context, sessionID string) (string, error) {
	turns, err := s.Turns(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return FormatContext(turns), nil
}

func (s *PostgresStore) Turns(ctx context.Context, sessionID string) ([]contractx.Turn, error) {
	var rows []turnRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("session_id = ?", sessionKey(sessionID)).
		OrderExpr("id DESC").
		Limit(s.maxTurns).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: read turns: %v", contractx.ErrMemory, err)
	}

	slices.Reverse(rows)
	turns := make([]contractx.Turn, 0, len(rows))
	for _, r := range rows {
		turns = append(turns, contractx.Turn{User: r.UserText, Agent: r.AgentText})
	}
	return turns, nil
}

// AddTurn inserts the turn and deletes everything older than the newest
// maxTurns rows of the session, in one transaction.
func (s *PostgresStore) AddTurn(ctx context.Context, sessionID string, turn contractx.Turn) error {
	key := sessionKey(sessionID)
	row := &turnRow{SessionID: key, UserText: turn.User, AgentText: turn.Agent}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return err
		}

		keep := tx.NewSelect().
			Model((*turnRow)(nil)).
			Column("id").
			Where("session_id = ?", key).
			OrderExpr("id DESC").
			Limit(s.maxTurns)

		_, err := tx.NewDelete().
			Model((*turnRow)(nil)).
			Where("session_id = ?", key).
			Where("id NOT IN (?)", keep).
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: append turn: %v", contractx.ErrMemory, err)
	}
	return nil
}
