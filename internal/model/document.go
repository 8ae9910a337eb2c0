package model

// SourceInfo identifies the outlet a raw document came from
type SourceInfo struct {
	Name string `json:"source_name"`
	Type string `json:"source_type"`
	URL  string `json:"url,omitempty"`
}

// RawDocument is one inbound article or post from the message queue.
// The pipeline never mutates it; derived fields live on the document state.
type RawDocument struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	URL         string     `json:"url,omitempty"`
	Author      string     `json:"author,omitempty"`
	PublishedAt string     `json:"published_at,omitempty"`
	Source      SourceInfo `json:"source"`
}
