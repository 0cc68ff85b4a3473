package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/inspection-cli/internal/i18n"
	"github.com/sells-group/inspection-cli/internal/resilience"
	"github.com/sells-group/inspection-cli/internal/rules"
	"github.com/sells-group/inspection-cli/internal/service"
	"github.com/sells-group/inspection-cli/internal/store"
)

// appEnv holds the store and services shared by all commands.
type appEnv struct {
	Store        store.Store
	Templates    *rules.TemplateSet // may be nil
	Rules        *service.RuleService
	Requirements *service.RequirementService
	Locale       i18n.Localizer
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates the config for mode, opens and migrates the store and
// builds the services. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	templates, err := loadTemplates(cfg.Rules.TemplatesPath)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	retry := retryConfig()
	return &appEnv{
		Store:        st,
		Templates:    templates,
		Rules:        service.NewRuleService(st, templates, retry),
		Requirements: service.NewRequirementService(st, retry),
		Locale:       localizer(),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "inspection.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// loadTemplates reads the rule template file. A missing file is not an
// error; templates are then only looked up in the store.
func loadTemplates(path string) (*rules.TemplateSet, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		zap.L().Warn("rule template file not found", zap.String("path", path))
		return nil, nil
	}
	ts, err := rules.LoadTemplates(path)
	if err != nil {
		return nil, err
	}
	return ts, nil
}

func retryConfig() resilience.RetryConfig {
	return resilience.FromRetryConfig(cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoffMs, cfg.Retry.MaxBackoffMs)
}
