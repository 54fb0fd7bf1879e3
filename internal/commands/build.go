package commands

import (
	"context"
	"fmt"

	"github.com/telhawk-systems/telhawk-copilot/internal/alertstore"
	"github.com/telhawk-systems/telhawk-copilot/internal/config"
	"github.com/telhawk-systems/telhawk-copilot/internal/handlers"
	"github.com/telhawk-systems/telhawk-copilot/internal/logsource"
)

// buildStore opens the configured alert store. The returned cleanup is
// never nil.
func buildStore(cfg *config.Config) (alertstore.Reader, []handlers.ReadyCheck, func(), error) {
	switch cfg.Store.Backend {
	case "redis":
		store, err := alertstore.NewRedisStore(cfg.Store.Redis.URL, cfg.Store.Redis.Key)
		if err != nil {
			return nil, nil, func() {}, err
		}
		checks := []handlers.ReadyCheck{{Name: "redis", Check: store.Ping}}
		return store, checks, func() { _ = store.Close() }, nil
	default:
		return alertstore.NewFileStore(cfg.Store.AlertsPath), nil, func() {}, nil
	}
}

func buildLogSource(cfg *config.Config) (logsource.Source, []handlers.ReadyCheck, error) {
	switch cfg.Logs.Backend {
	case "opensearch":
		osCfg := cfg.Logs.OpenSearch
		src, err := logsource.NewOpenSearchSource(logsource.OpenSearchConfig{
			URL:      osCfg.URL,
			Username: osCfg.Username,
			Password: osCfg.Password,
			Insecure: osCfg.Insecure,
			Index:    osCfg.Index,
			Field:    osCfg.Field,
			Size:     osCfg.Size,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create log source: %w", err)
		}
		return src, []handlers.ReadyCheck{{Name: "opensearch", Check: func(ctx context.Context) error {
			return src.Ping(ctx)
		}}}, nil
	default:
		return logsource.NewFileSource(cfg.Logs.Path), nil, nil
	}
}
