package cli

import (
	"context"
	"log/slog"

	"github.com/osintlab/intelgraph/internal/cache"
	"github.com/osintlab/intelgraph/internal/graph"
	"github.com/osintlab/intelgraph/internal/llm"
	"github.com/osintlab/intelgraph/internal/model"
)

// analyticsDeps bundles what every analyze subcommand needs
type analyticsDeps struct {
	cfg     *model.Config
	store   graph.Store
	history *cache.ScoreHistory
	nli     llm.NLIClassifier
	logger  *slog.Logger
}

// withAnalytics opens the shared dependencies, runs fn, and tears down
func withAnalytics(fn func(ctx context.Context, deps *analyticsDeps) error) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	store, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	client, err := buildLLM(cfg, logger)
	if err != nil {
		return err
	}

	return fn(ctx, &analyticsDeps{
		cfg:     cfg,
		store:   store,
		history: buildScoreHistory(cfg),
		nli:     nliClassifier(client, cfg.LLM.EnableNLI),
		logger:  logger,
	})
}
