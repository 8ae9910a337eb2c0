package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/osintlab/intelgraph/internal/metrics"
	"github.com/osintlab/intelgraph/internal/pipeline"
	"github.com/osintlab/intelgraph/internal/stream"
	"github.com/osintlab/intelgraph/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the document-processing worker",
	Long: `Consume raw documents from the queue, run each through the
analysis pipeline, and persist the results to the knowledge graph.
Runs until interrupted; the in-flight batch finishes before exit.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	conn, err := stream.Connect(ctx, cfg.NATS, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	consumer, err := conn.NewConsumer(ctx)
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
	}

	// A nil client disables the extraction and bias classifiers
	var extractor = pipelineExtractor(client)
	var classifier = pipelineClassifier(client, cfg.LLM.EnableBiasAnalysis)

	orch := pipeline.NewOrchestrator(store, extractor, classifier, cfg, logger)
	runner := worker.NewRunner(consumer, conn.NewProducer(), orch, cfg.Concurrency.DocumentWorkers, logger)
	return runner.Run(ctx)
}
