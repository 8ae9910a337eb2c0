package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/osintlab/intelgraph/internal/model"
	"github.com/osintlab/intelgraph/internal/stream"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.jsonl>",
	Short: "Publish documents from a JSON-lines file onto the queue",
	Long: `Read one raw document per line and publish each to the ingest
subject. Documents without an id are assigned one. Blank lines and
lines starting with # are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()

		conn, err := stream.Connect(ctx, cfg.NATS, logger)
		if err != nil {
			return err
		}
		defer conn.Close()
		producer := conn.NewProducer()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()

		published, skipped := 0, 0
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 1024*1024), 4*1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			var doc model.RawDocument
			if err := json.Unmarshal([]byte(line), &doc); err != nil {
				logger.Warn("skipping malformed line", "error", err)
				skipped++
				continue
			}
			if doc.ID == "" {
				doc.ID = uuid.NewString()
			}

			data, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("encoding document: %w", err)
			}
			if err := producer.PublishDocument(ctx, data); err != nil {
				return err
			}
			published++
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		fmt.Printf("published %d documents (%d skipped)\n", published, skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
