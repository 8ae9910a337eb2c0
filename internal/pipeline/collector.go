package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/osintlab/intelgraph/internal/model"
)

// Collector validates the raw document and derives the working text
// the rest of the pipeline analyzes. It is the only stage that can
// fail a document outright.
type Collector struct{}

func NewCollector() *Collector { return &Collector{} }

func (c *Collector) Name() string { return "collector" }

func (c *Collector) Run(_ context.Context, s *State) (Delta, error) {
	raw := s.Raw

	if strings.TrimSpace(raw.Content) == "" {
		return Delta{}, &ValidationError{Field: "content", Msg: "document has no content"}
	}

	var b strings.Builder
	if t := strings.TrimSpace(raw.Title); t != "" {
		b.WriteString(t)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimSpace(raw.Content))
	if raw.Author != "" {
		fmt.Fprintf(&b, "\n\nAuthor: %s", raw.Author)
	}

	fullText := b.String()
	words := len(strings.Fields(fullText))

	sourceURL := raw.Source.URL
	if sourceURL == "" {
		sourceURL = raw.URL
	}
	// Missing attribution degrades the source record, it does not fail
	// the document.
	sourceName := raw.Source.Name
	if sourceName == "" {
		sourceName = sourceURL
	}
	if sourceName == "" {
		sourceName = "unknown"
	}

	return Delta{
		FullText:  fullText,
		WordCount: words,
		Source: &model.Source{
			URL:  sourceURL,
			Name: sourceName,
			Type: raw.Source.Type,
		},
		Log: []LogEntry{logEntry("collector", "collected", map[string]any{
			"document_id": raw.ID,
			"word_count":  words,
		})},
	}, nil
}
