package model

import "time"

// Config is the complete intelgraph configuration
type Config struct {
	NATS        NATSConfig        `yaml:"nats"`
	Graph       GraphConfig       `yaml:"graph"`
	LLM         LLMConfig         `yaml:"llm"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Analytics   AnalyticsConfig   `yaml:"analytics"`
	Cache       CacheConfig       `yaml:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// NATSConfig configures the message queue connection
type NATSConfig struct {
	URL           string `yaml:"url"`
	Stream        string `yaml:"stream"`
	SubjectRaw    string `yaml:"subject_raw"`
	SubjectAlerts string `yaml:"subject_alerts"`
	ConsumerGroup string `yaml:"consumer_group"`
	BatchSize     int    `yaml:"batch_size"`
}

// GraphConfig configures the knowledge-graph store
type GraphConfig struct {
	Backend  string `yaml:"backend"` // neo4j or memory
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// LLMConfig configures the extraction service and optional classifiers
type LLMConfig struct {
	APIKey             string        `yaml:"api_key"`
	BaseURL            string        `yaml:"base_url"` // OpenAI-compatible endpoint (Groq, Ollama, ...)
	Model              string        `yaml:"model"`
	Timeout            time.Duration `yaml:"timeout"`
	MaxTokens          int           `yaml:"max_tokens"`
	RequestsPerSecond  float64       `yaml:"requests_per_second"`
	Burst              int           `yaml:"burst"`
	EnableNLI          bool          `yaml:"enable_nli"` // semantic contradiction classification
	EnableBiasAnalysis bool          `yaml:"enable_bias_analysis"`
}

// PipelineConfig bounds per-document processing
type PipelineConfig struct {
	MaxAnalyzeChars int `yaml:"max_analyze_chars"`
	MinAnalyzeChars int `yaml:"min_analyze_chars"`
	SimilarLimit    int `yaml:"similar_limit"`
}

// AnalyticsConfig bounds the periodic analysis engines
type AnalyticsConfig struct {
	ClaimLimit     int `yaml:"claim_limit"`      // max claims per contradiction run
	SourceLimit    int `yaml:"source_limit"`     // max sources per credibility run
	TrendLimit     int `yaml:"trend_limit"`      // max entities per trend run
	DefaultDays    int `yaml:"default_days"`     // default lookback for contradictions/credibility
	AnomalyHours   int `yaml:"anomaly_hours"`    // default anomaly window
	TopClusters    int `yaml:"top_clusters"`     // clusters included in reports
	TopItems       int `yaml:"top_items"`        // individual contradictions in reports
}

// CacheConfig configures the credibility trend memory
type CacheConfig struct {
	Dir string        `yaml:"dir"` // disk tier location, empty = memory only
	TTL time.Duration `yaml:"ttl"`
}

// MetricsConfig configures the Prometheus listener
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ConcurrencyConfig bounds worker parallelism
type ConcurrencyConfig struct {
	DocumentWorkers int `yaml:"document_workers"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			Stream:        "INTEL",
			SubjectRaw:    "documents.raw",
			SubjectAlerts: "intel.alerts",
			ConsumerGroup: "intel-processors",
			BatchSize:     16,
		},
		Graph: GraphConfig{
			Backend:  "neo4j",
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		LLM: LLMConfig{
			Model:              "gpt-4o-mini",
			Timeout:            30 * time.Second,
			MaxTokens:          2000,
			RequestsPerSecond:  2,
			Burst:              4,
			EnableNLI:          false,
			EnableBiasAnalysis: true,
		},
		Pipeline: PipelineConfig{
			MaxAnalyzeChars: 4000,
			MinAnalyzeChars: 50,
			SimilarLimit:    5,
		},
		Analytics: AnalyticsConfig{
			ClaimLimit:   200,
			SourceLimit:  50,
			TrendLimit:   50,
			DefaultDays:  30,
			AnomalyHours: 24,
			TopClusters:  10,
			TopItems:     20,
		},
		Cache: CacheConfig{
			TTL: 7 * 24 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9109",
		},
		Concurrency: ConcurrencyConfig{
			DocumentWorkers: 4,
		},
	}
}
