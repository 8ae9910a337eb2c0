package model

// EntityType classifies an extracted entity
type EntityType string

const (
	EntityPerson       EntityType = "PERSON"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityLocation     EntityType = "LOCATION"
	EntityConcept      EntityType = "CONCEPT"
)

// Entity represents a named entity extracted from a document.
// Identity is the hash of (name, type); re-extraction of the same
// entity merges into the existing node.
type Entity struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       EntityType `json:"type"`
	Confidence float64    `json:"confidence"` // 0-1
	Context    string     `json:"context,omitempty"`
	Mentions   int        `json:"mentions"`
	SourceID   string     `json:"source_id,omitempty"`
}

// Event represents a significant occurrence described in a document
type Event struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	Type         string   `json:"type"` // ANNOUNCEMENT, CONFLICT, MEETING, POLICY, ...
	Timestamp    string   `json:"timestamp,omitempty"`
	Location     string   `json:"location,omitempty"`
	Participants []string `json:"participants,omitempty"` // entity IDs
	Confidence   float64  `json:"confidence"`
	SourceID     string   `json:"source_id,omitempty"`
}

// Sentiment holds document-level sentiment from the extraction service
type Sentiment struct {
	Polarity     float64 `json:"polarity"`     // -1 to 1
	Subjectivity float64 `json:"subjectivity"` // 0-1
}
