package cli

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/aretw0/nody"
	"github.com/aretw0/nody/internal/config"
	"github.com/aretw0/nody/pkg/adapters/file"
	"github.com/aretw0/nody/pkg/adapters/redis"
	"github.com/aretw0/nody/pkg/controller"
	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/ports"
)

// LoadConfig reads path when set, otherwise the configuration found in dir.
func LoadConfig(dir, path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(dir)
}

// OpenStore selects the graph store: redis when configured, otherwise the
// graphs directory. The returned func releases the store.
func OpenStore(dir string, cfg *config.Config, logger *slog.Logger) (ports.GraphStore, func() error) {
	if cfg.Redis.Addr != "" {
		logger.Info("using redis graph store", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		s := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.Prefix))
		return s, s.Close
	}
	path := graphsDir(dir, cfg)
	logger.Info("using file graph store", "dir", path)
	return file.New(path), func() error { return nil }
}

// graphsDir resolves the configured graphs directory against dir, falling
// back to dir itself when the directory does not exist.
func graphsDir(dir string, cfg *config.Config) string {
	candidate := cfg.GraphsDir
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(dir, candidate)
	}
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate
	}
	return dir
}

// determineEntryPoint picks the graph to run when none is given:
// start, main, index, the directory name, or the only graph available.
func determineEntryPoint(ctx context.Context, loader ports.GraphLoader, dir string) (string, error) {
	ids, err := loader.ListGraphs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list graphs: %w", err)
	}
	abs, _ := filepath.Abs(dir)
	for _, candidate := range []string{"start", "main", "index", filepath.Base(abs)} {
		if slices.Contains(ids, candidate) {
			return candidate, nil
		}
	}
	if len(ids) == 1 {
		return ids[0], nil
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("no graphs in %s: %w", dir, domain.ErrGraphNotFound)
	}
	return "", fmt.Errorf("cannot choose between %d graphs, pass one explicitly", len(ids))
}

// createController compiles graphID into a controller with the configured hop budget.
func createController(ctx context.Context, loader ports.GraphLoader, graphID, name string, cfg *config.Config, logger *slog.Logger, hooks domain.LifecycleHooks, registry *controller.Registry) (*controller.Controller, error) {
	opts := []nody.Option{
		nody.WithLogger(logger),
		nody.WithLifecycleHooks(hooks),
		nody.WithMaxHops(cfg.MaxHops),
	}
	if name != "" {
		opts = append(opts, nody.WithName(name))
	}
	if registry != nil {
		opts = append(opts, nody.WithRegistry(registry))
	}
	c, err := nody.New(ctx, loader, graphID, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing controller: %w", err)
	}
	return c, nil
}

// fingerprint hashes every document of loader, so reloads can be detected
// for any store.
func fingerprint(ctx context.Context, loader ports.GraphLoader) (string, error) {
	ids, err := loader.ListGraphs(ctx)
	if err != nil {
		return "", err
	}
	h := md5.New()
	for _, id := range ids {
		doc, err := loader.LoadGraph(ctx, id)
		if err != nil {
			return "", err
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return "", err
		}
		io.WriteString(h, id)
		h.Write(b)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
