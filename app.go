package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	executorx "github.com/tanpawarit/rulebase-agent/agent/agents/executor"
	orchestratorx "github.com/tanpawarit/rulebase-agent/agent/agents/orchestrator"
	plannerx "github.com/tanpawarit/rulebase-agent/agent/agents/planner"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	llmx "github.com/tanpawarit/rulebase-agent/agent/llm"
	memoryx "github.com/tanpawarit/rulebase-agent/agent/memory"
	toolx "github.com/tanpawarit/rulebase-agent/agent/tool"
	configx "github.com/tanpawarit/rulebase-agent/pkg/config"
	metricsx "github.com/tanpawarit/rulebase-agent/pkg/metrics"
)

type AppConfig struct {
	HTTPAddr        string `envconfig:"HTTP_ADDR" default:":8000"`
	DataPath        string `envconfig:"DATA_PATH" default:"data/rules_sample.json"`
	SearchTopK      int    `envconfig:"SEARCH_TOP_K" default:"3"`
	DefaultMaxSteps int    `envconfig:"DEFAULT_MAX_STEPS" default:"3"`
	MaxStepsLimit   int    `envconfig:"MAX_STEPS_LIMIT" default:"10"`
	MemoryMaxTurns  int    `envconfig:"MEMORY_MAX_TURNS" default:"5"`
	MemoryBackend   string `envconfig:"MEMORY_BACKEND" default:"inmemory"`
}

func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.DataPath) == "" {
		return fmt.Errorf("%w: APP_DATA_PATH is required", contractx.ErrValidation)
	}
	if c.DefaultMaxSteps <= 0 || c.MaxStepsLimit < c.DefaultMaxSteps {
		return fmt.Errorf("%w: need 0 < APP_DEFAULT_MAX_STEPS <= APP_MAX_STEPS_LIMIT", contractx.ErrValidation)
	}
	switch c.MemoryBackend {
	case memoryx.BackendInMemory, memoryx.BackendRedis, memoryx.BackendPostgres:
		return nil
	default:
		return fmt.Errorf("%w: unsupported APP_MEMORY_BACKEND=%q", contractx.ErrValidation, c.MemoryBackend)
	}
}

type app struct {
	cfg          *AppConfig
	registry     *toolx.Registry
	orchestrator *orchestratorx.Orchestrator
	gatherer     prometheus.Gatherer
	closers      []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func newApp(ctx context.Context) (*app, error) {
	appCfg, err := configx.New[AppConfig]("APP")
	if err != nil {
		return nil, err
	}
	llmCfg, err := configx.New[llmx.Config]("LLM")
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := metricsx.New(reg)
	if err != nil {
		return nil, err
	}

	completers := map[contractx.Role]contractx.Completer{}
	for _, role := range []contractx.Role{contractx.RolePlanner, contractx.RoleSummarize, contractx.RoleClause} {
		c, err := llmx.NewCompleter(ctx, *llmCfg, role)
		if err != nil {
			return nil, err
		}
		completers[role] = c
	}

	registry, err := toolx.BuildDefault(
		toolx.BuildConfig{DataPath: appCfg.DataPath, TopK: appCfg.SearchTopK},
		toolx.Completers{
			Summarize: completers[contractx.RoleSummarize],
			Clause:    completers[contractx.RoleClause],
		},
	)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: appCfg, registry: registry, gatherer: reg}

	memory, closeMemory, err := openMemory(ctx, appCfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeMemory)

	planner, err := plannerx.New(completers[contractx.RolePlanner], registry, plannerx.WithMetrics(metrics))
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	executor, err := executorx.New(registry, executorx.WithMetrics(metrics))
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.orchestrator, err = orchestratorx.New(planner, executor, registry, memory,
		orchestratorx.Config{
			DefaultMaxSteps: appCfg.DefaultMaxSteps,
			MaxStepsLimit:   appCfg.MaxStepsLimit,
		},
		orchestratorx.WithMetrics(metrics),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	log.Info().
		Strs("tools", registry.Names()).
		Str("memory_backend", appCfg.MemoryBackend).
		Str("llm_backend", llmCfg.Backend).
		Msg("agent ready")
	return a, nil
}

func openMemory(ctx context.Context, cfg *AppConfig) (contractx.MemoryStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.MemoryBackend {
	case memoryx.BackendRedis:
		redisCfg, err := configx.New[memoryx.RedisConfig]("REDIS")
		if err != nil {
			return nil, nil, err
		}
		client, err := memoryx.DialRedis(ctx, *redisCfg)
		if err != nil {
			return nil, nil, err
		}
		store, err := memoryx.NewRedisStore(client, cfg.MemoryMaxTurns,
			memoryx.WithKeyPrefix(redisCfg.KeyPrefix),
			memoryx.WithTTL(redisCfg.TTL),
		)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return store, client.Close, nil
	case memoryx.BackendPostgres:
		pgCfg, err := configx.New[memoryx.PostgresConfig]("POSTGRES")
		if err != nil {
			return nil, nil, err
		}
		db, err := memoryx.OpenPostgres(*pgCfg)
		if err != nil {
			return nil, nil, err
		}
		store, err := memoryx.NewPostgresStore(ctx, db, cfg.MemoryMaxTurns)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil
	default:
		return memoryx.NewInProcessStore(cfg.MemoryMaxTurns), noop, nil
	}
}
