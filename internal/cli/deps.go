package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/osintlab/intelgraph/internal/cache"
	"github.com/osintlab/intelgraph/internal/graph"
	"github.com/osintlab/intelgraph/internal/llm"
	"github.com/osintlab/intelgraph/internal/model"
)

// buildStore opens the configured graph backend. The memory backend
// exists for local runs without a database; it starts empty.
func buildStore(ctx context.Context, cfg *model.Config, logger *slog.Logger) (graph.Store, error) {
	switch cfg.Graph.Backend {
	case "neo4j", "":
		return graph.NewNeo4jStore(ctx, cfg.Graph, logger)
	case "memory":
		logger.Warn("using in-memory graph store, data will not persist")
		return graph.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown graph backend %q", cfg.Graph.Backend)
	}
}

// buildLLM returns the shared model client, or nil when no API key is
// configured. Callers treat nil as heuristic-only operation.
func buildLLM(cfg *model.Config, logger *slog.Logger) (*llm.Client, error) {
	if cfg.LLM.APIKey == "" {
		logger.Warn("no LLM API key configured, running extraction-free")
		return nil, nil
	}
	return llm.NewClient(cfg.LLM, logger)
}

// The typed-nil guards below keep a missing client from turning into a
// non-nil interface inside the pipeline.

func pipelineExtractor(c *llm.Client) llm.Extractor {
	if c == nil {
		return nil
	}
	return c
}

func pipelineClassifier(c *llm.Client, enabled bool) llm.BiasClassifier {
	if c == nil || !enabled {
		return nil
	}
	return c
}

func nliClassifier(c *llm.Client, enabled bool) llm.NLIClassifier {
	if c == nil || !enabled {
		return nil
	}
	return c
}

// buildScoreHistory opens the score-history cache. Without a state
// dir the history lives in memory only and trends reset on restart.
func buildScoreHistory(cfg *model.Config) *cache.ScoreHistory {
	if cfg.Cache.Dir == "" {
		return cache.NewScoreHistory(cache.NewMemoryCache(cfg.Cache.TTL, time.Hour), cfg.Cache.TTL)
	}
	layered := cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	return cache.NewScoreHistory(layered, cfg.Cache.TTL)
}
