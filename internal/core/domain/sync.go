package domain

import "time"

// Config collects every tunable of the index pipeline in one explicit
// value. It is passed into the orchestrator; nothing in the pipeline
// reads hidden module state or the environment directly.
type Config struct {
	// RootPath is the directory the crawler starts from
	RootPath string `json:"root_path"`

	// IncludeExtensions admits files by extension (with leading dot,
	// e.g. ".md"). Empty means admit everything.
	IncludeExtensions []string `json:"include_extensions"`

	// ExcludeDirNames skips directories whose name matches exactly
	// (dependency caches, VCS metadata, build output)
	ExcludeDirNames []string `json:"exclude_dir_names"`

	// MaxAttempts bounds enrichment retries per queue entry
	MaxAttempts int `json:"max_attempts"`

	// ConceptualRelationCap bounds heuristic relations per document
	ConceptualRelationCap int `json:"conceptual_relation_cap"`

	// Concurrency sizes the per-file worker pool during ingest
	Concurrency int `json:"concurrency"`
}

// DefaultConfig returns the pipeline defaults for a root path.
func DefaultConfig(rootPath string) Config {
	return Config{
		RootPath:              rootPath,
		IncludeExtensions:     []string{".md", ".mdx", ".txt"},
		ExcludeDirNames:       []string{"node_modules", ".git", "dist", "build", "vendor", "__pycache__"},
		MaxAttempts:           DefaultMaxAttempts,
		ConceptualRelationCap: 5,
		Concurrency:           4,
	}
}

// SyncReport aggregates the outcome of one orchestrator run.
type SyncReport struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`

	// TouchedPaths lists the paths classified added or updated this run
	TouchedPaths []string `json:"touched_paths"`

	// Missing counts records flagged because their path vanished
	Missing int `json:"missing"`

	Duration time.Duration `json:"duration"`
}
