package domain

import "time"

// RunStage enumerates pipeline milestones within a single run.
type RunStage string

const (
	StageIdle         RunStage = "idle"
	StageFetching     RunStage = "fetching"
	StageFiltering    RunStage = "filtering"
	StageArticleDedup RunStage = "article_dedup"
	StageClassifying  RunStage = "classifying"
	StagePersisting   RunStage = "persisting"
	StageDone         RunStage = "done"
)

// RunStats is the per-run summary reported at the end of each pipeline execution.
type RunStats struct {
	Stage           RunStage  `json:"stage"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
	Fetched         int       `json:"fetched"`
	Relevant        int       `json:"relevant"`
	FilteredOut     int       `json:"filteredOut"`
	Representatives int       `json:"representatives"`
	MergedPreAI     int       `json:"mergedPreAi"`
	Classified      int       `json:"classified"`
	FallbackUsed    int       `json:"fallbackUsed"`
	Rejected        int       `json:"rejected"`
	Duplicates      int       `json:"duplicates"`
	Persisted       int       `json:"persisted"`
	Errors          int       `json:"errors"`
}

// Duration reports how long the run took; zero while still running.
func (s RunStats) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
