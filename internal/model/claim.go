package model

// Stance indicates how a claim relates to its subject
type Stance string

const (
	StanceSupports Stance = "SUPPORTS"
	StanceRefutes  Stance = "REFUTES"
	StanceNeutral  Stance = "NEUTRAL"
)

// Verification status values assigned by the bias detector
const (
	VerificationSupported          = "SUPPORTED"
	VerificationPartiallySupported = "PARTIALLY_SUPPORTED"
	VerificationUnsupported        = "UNSUPPORTED"
)

// Claim represents a verifiable factual assertion extracted from a document.
// Identity is the hash of the claim text. Confidence is adjusted by the
// cross-reference and bias stages and is always clamped to [0,1].
type Claim struct {
	ID            string              `json:"id"`
	Text          string              `json:"text"`
	Context       string              `json:"context,omitempty"`
	Stance        Stance              `json:"stance"`
	Confidence    float64             `json:"confidence"` // 0-1
	AboutEntities []string            `json:"about_entities,omitempty"`
	AboutEvents   []string            `json:"about_events,omitempty"`
	SourceID      string              `json:"source_id"`
	SourceURL     string              `json:"source_url,omitempty"`
	Similar       []SimilarClaim      `json:"similar_claims,omitempty"`
	Contradicts   []ClaimContradiction `json:"contradictions,omitempty"`
	Verification  *Verification       `json:"verification,omitempty"`
}

// SimilarClaim is an existing graph claim with lexical overlap
type SimilarClaim struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Status     string  `json:"status,omitempty"` // VERIFIED, UNVERIFIED
}

// ClaimContradiction records a contradiction candidate found during cross-reference
type ClaimContradiction struct {
	ClaimID    string  `json:"claim_id"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Verification is the per-claim support classification against the document text
type Verification struct {
	Status       string  `json:"status"`
	SupportRatio float64 `json:"support_ratio"`
	Method       string  `json:"method"`
}

// Source is one node per originating outlet, shared across all of its documents
type Source struct {
	URL              string  `json:"url"`
	Name             string  `json:"name"`
	Type             string  `json:"type"` // rss, social, official, ...
	CredibilityScore float64 `json:"credibility_score"`
}

// ClampConfidence bounds a confidence value to [0,1]
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
