package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Outcome is the final state of a build pass.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// ReportFile is the name Persist writes.
const ReportFile = "build-report.json"

// Page is one written output file.
type Page struct {
	Name        string `json:"name"`
	Pattern     string `json:"pattern"`
	URL         string `json:"url"`
	Path        string `json:"path"`
	Overwritten bool   `json:"overwritten"`
}

// Report captures the result of one build pass.
type Report struct {
	SchemaVersion  int                         `json:"schema_version"`
	BuildID        string                      `json:"build_id"`
	Root           string                      `json:"root"`
	Start          time.Time                   `json:"start"`
	End            time.Time                   `json:"end"`
	StageDurations map[StageName]time.Duration `json:"stage_durations"`
	Pages          []Page                      `json:"pages"`
	Overwritten    int                         `json:"overwritten"`
	Outcome        Outcome                     `json:"outcome"`
	Error          string                      `json:"error,omitempty"`
	FailedStage    StageName                   `json:"failed_stage,omitempty"`

	mu sync.Mutex
}

func newReport(id, root string) *Report {
	return &Report{
		SchemaVersion:  1,
		BuildID:        id,
		Root:           root,
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
	}
}

func (r *Report) setStageDuration(stage StageName, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StageDurations[stage] = d
}

func (r *Report) addPage(p Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pages = append(r.Pages, p)
	if p.Overwritten {
		r.Overwritten++
	}
}

// PagesSnapshot returns the written pages sorted by URL.
func (r *Report) PagesSnapshot() []Page {
	r.mu.Lock()
	pages := append([]Page(nil), r.Pages...)
	r.mu.Unlock()
	sort.Slice(pages, func(i, j int) bool { return pages[i].URL < pages[j].URL })
	return pages
}

func (r *Report) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.End = time.Now()
	var se *StageError
	if errors.As(err, &se) {
		r.FailedStage = se.Stage
	}
	switch {
	case err == nil:
		r.Outcome = OutcomeSuccess
	case isCanceled(err):
		r.Outcome = OutcomeCanceled
		r.Error = err.Error()
	default:
		r.Outcome = OutcomeFailed
		r.Error = err.Error()
	}
}

// Duration returns the wall time of the pass.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("build=%s pages=%d overwritten=%d duration=%s stages=%d outcome=%s",
		r.BuildID, len(r.Pages), r.Overwritten, r.Duration().Truncate(time.Millisecond), len(r.StageDurations), r.Outcome)
}

// Persist writes the report as JSON into dir, atomically.
func (r *Report) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}
	r.mu.Lock()
	jb, err := json.MarshalIndent(r, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	jsonPath := filepath.Join(dir, ReportFile)
	tmp := jsonPath + ".tmp"
	if err := os.WriteFile(tmp, jb, 0o644); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, jsonPath); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}
	return nil
}
