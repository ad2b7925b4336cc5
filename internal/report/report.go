// Package report persists the result of a run for later inspection
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wahlandcase/mergeall/internal/models"
)

// Entry is the persisted form of a MergeOutcome
type Entry struct {
	Branch     string   `json:"branch" yaml:"branch"`
	Status     string   `json:"status" yaml:"status"`
	Message    string   `json:"message,omitempty" yaml:"message,omitempty"`
	Conflicts  []string `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Commit     string   `json:"commit,omitempty" yaml:"commit,omitempty"`
	DurationMS int64    `json:"duration_ms" yaml:"duration_ms"`
}

type Summary struct {
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Resolved  int `json:"resolved" yaml:"resolved"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Report describes one run
type Report struct {
	RunID          string    `json:"run_id" yaml:"run_id"`
	Repository     string    `json:"repository" yaml:"repository"`
	Target         string    `json:"target" yaml:"target"`
	Policy         string    `json:"policy" yaml:"policy"`
	ProtectedPaths []string  `json:"protected_paths" yaml:"protected_paths"`
	StartedAt      time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time `json:"finished_at" yaml:"finished_at"`
	Branches       []Entry   `json:"branches" yaml:"branches"`
	Summary        Summary   `json:"summary" yaml:"summary"`
	// Drifted lists protected paths found changed after the run
	Drifted []string `json:"drifted,omitempty" yaml:"drifted,omitempty"`
}

// New builds a report from a run's outcomes
func New(runID, repository, target, policy string, protected models.ProtectedPaths,
	started, finished time.Time, outcomes []models.MergeOutcome, summary models.RunSummary) *Report {
	r := &Report{
		RunID:          runID,
		Repository:     repository,
		Target:         target,
		Policy:         policy,
		ProtectedPaths: protected.List(),
		StartedAt:      started.UTC(),
		FinishedAt:     finished.UTC(),
		Branches:       make([]Entry, 0, len(outcomes)),
		Summary: Summary{
			Succeeded: summary.Succeeded,
			Resolved:  summary.Resolved,
			Failed:    summary.Failed,
		},
	}

	for _, o := range outcomes {
		r.Branches = append(r.Branches, Entry{
			Branch:     o.Branch.Ref(),
			Status:     o.Status.String(),
			Message:    o.Message,
			Conflicts:  o.Conflicts,
			Commit:     o.Commit.Hash,
			DurationMS: o.Duration.Milliseconds(),
		})
	}
	return r
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Marshal encodes the report as YAML for .yaml/.yml paths and JSON otherwise
func (r *Report) Marshal(path string) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(r)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write saves the report to path, creating parent directories
func (r *Report) Write(path string) error {
	data, err := r.Marshal(path)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Load reads a report written by Write
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Report
	if isYAML(path) {
		err = yaml.Unmarshal(data, &r)
	} else {
		err = json.Unmarshal(data, &r)
	}
	if err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &r, nil
}
