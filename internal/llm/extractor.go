// Package llm wraps the chat-completion API behind task-shaped
// interfaces: structured extraction, bias classification, and
// natural-language-inference comparison. The pipeline depends on these
// interfaces, never on the client, so stages degrade cleanly when no
// model is configured.
package llm

import (
	"context"

	"github.com/osintlab/intelgraph/internal/model"
)

// ExtractedEntity is one entity as returned by the model, before it is
// assigned a deterministic graph ID.
type ExtractedEntity struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context"`
}

type ExtractedEvent struct {
	Description  string   `json:"description"`
	Type         string   `json:"type"`
	Timestamp    string   `json:"timestamp"`
	Location     string   `json:"location"`
	Participants []string `json:"participants"`
	Confidence   float64  `json:"confidence"`
}

type ExtractedClaim struct {
	Text          string   `json:"text"`
	Context       string   `json:"context"`
	Stance        string   `json:"stance"`
	Confidence    float64  `json:"confidence"`
	AboutEntities []string `json:"about_entities"`
	AboutEvents   []string `json:"about_events"`
}

// Extraction is the full structured read of one document
type Extraction struct {
	Entities  []ExtractedEntity `json:"entities"`
	Events    []ExtractedEvent  `json:"events"`
	Claims    []ExtractedClaim  `json:"claims"`
	Sentiment *model.Sentiment  `json:"sentiment"`
	Summary   string            `json:"summary"`
}

// BiasVerdict is the model's read of rhetorical bias in a document
type BiasVerdict struct {
	Score   float64  `json:"bias_score"`
	Types   []string `json:"bias_types"`
	Framing string   `json:"framing"`
}

// NLI labels for claim-pair comparison
const (
	LabelContradiction = "contradiction"
	LabelEntailment    = "entailment"
	LabelNeutral       = "neutral"
)

// NLIVerdict is the model's judgment on whether two claims can both be true
type NLIVerdict struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Extractor pulls structured intelligence out of free text
type Extractor interface {
	Extract(ctx context.Context, text string) (*Extraction, error)
}

// BiasClassifier scores rhetorical bias on a 0..1 scale
type BiasClassifier interface {
	ClassifyBias(ctx context.Context, text string) (*BiasVerdict, error)
}

// NLIClassifier compares two claims for logical compatibility
type NLIClassifier interface {
	Compare(ctx context.Context, a, b string) (*NLIVerdict, error)
}

const extractSystemPrompt = `You are an intelligence analyst. Extract structured information from documents and respond with JSON only, no prose.`

const extractPrompt = `Analyze the following document and extract:

1. Entities: people, organizations, locations, and concepts. For each give name, type (PERSON, ORGANIZATION, LOCATION, CONCEPT), a confidence between 0 and 1, and the surrounding context.
2. Events: things that happened or are claimed to happen, with description, type, timestamp if stated, location, participants, and confidence.
3. Claims: factual assertions made in the text, with the exact claim text, surrounding context, stance (SUPPORTS, REFUTES, NEUTRAL), confidence, and the names of entities and events each claim is about.
4. Sentiment: overall polarity (-1 to 1) and subjectivity (0 to 1).
5. A one-paragraph summary.

Respond with a JSON object with keys "entities", "events", "claims", "sentiment", "summary".

Document:
%s`

const biasSystemPrompt = `You are a media-bias analyst. Respond with JSON only, no prose.`

const biasPrompt = `Assess the rhetorical bias of the following document. Consider loaded language, one-sided framing, appeals to emotion, and unsupported generalization.

Respond with a JSON object:
{"bias_score": <0 to 1, where 0 is neutral and 1 is maximally biased>, "bias_types": [<e.g. "loaded_language", "selection_bias", "framing">], "framing": "<one sentence on how the document frames its subject>"}

Document:
%s`

const nliSystemPrompt = `You are a logic checker. Respond with JSON only, no prose.`

const nliPrompt = `Can both of these statements be true at the same time?

Statement A: %s
Statement B: %s

Respond with a JSON object:
{"label": "contradiction" | "entailment" | "neutral", "confidence": <0 to 1>, "reason": "<one sentence>"}`
