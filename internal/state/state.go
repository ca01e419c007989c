// Package state keeps the outcome of the most recent run in memory so the
// preview server can report it.
package state

import (
	"sync"
	"time"
)

type Phase int

const (
	IDLE Phase = iota
	RENDERING
	DONE
)

func (p Phase) String() string {
	switch p {
	case RENDERING:
		return "rendering"
	case DONE:
		return "done"
	}
	return "idle"
}

// Outcome of one panel in a run.
type Outcome string

const (
	Rendered Outcome = "rendered"
	Failed   Outcome = "failed"
	Skipped  Outcome = "skipped"
)

// PanelReport describes what happened to one entry of the panel list.
type PanelReport struct {
	Name     string        `json:"name"`
	Outcome  Outcome       `json:"outcome"`
	Path     string        `json:"path,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Report is the result of rendering the panel list once.
type Report struct {
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
	Panels   []PanelReport `json:"panels"`
}

// Counts returns how many entries were rendered, failed and skipped.
func (r Report) Counts() (rendered, failed, skipped int) {
	for _, p := range r.Panels {
		switch p.Outcome {
		case Rendered:
			rendered++
		case Failed:
			failed++
		case Skipped:
			skipped++
		}
	}
	return rendered, failed, skipped
}

// HasFailures reports whether any panel failed.
func (r Report) HasFailures() bool {
	_, failed, _ := r.Counts()
	return failed > 0
}

type State struct {
	Phase  Phase
	Runs   int
	Last   Report
	Failed bool
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: IDLE}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	s := store.state
	s.Last.Panels = append([]PanelReport(nil), store.state.Last.Panels...)
	return s
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.mu.Unlock()
}

// Finish records report as the latest run and marks the store done.
func (store *Store) Finish(report Report) {
	store.mu.Lock()
	store.state.Phase = DONE
	store.state.Runs++
	store.state.Last = report
	store.state.Failed = report.HasFailures()
	store.mu.Unlock()
}
