package agent

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"flow_navigator/domain/entities"
)

// fingerprint identifies a page state for stagnation checks
type fingerprint struct {
	content    uint64
	identities uint64
	count      int
}

// newFingerprint - hashes the page HTML and the set of element identity keys
func newFingerprint(html string, snap entities.PageSnapshot) fingerprint {
	seen := make(map[string]struct{}, len(snap.Elements))
	keys := make([]string, 0, len(snap.Elements))
	for _, el := range snap.Elements {
		k := el.IdentityKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := xxhash.New()
	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{0})
	}

	return fingerprint{
		content:    xxhash.Sum64String(html),
		identities: d.Sum64(),
		count:      len(snap.Elements),
	}
}

// runState accumulates everything one run produces
type runState struct {
	goal       entities.Goal
	status     entities.RunStatus
	steps      int
	history    []entities.HistoryEntry
	actionLog  []entities.ActionLogEntry
	domHistory []entities.PageSnapshot

	prev    fingerprint
	hasPrev bool
}

func newRunState(goal entities.Goal) *runState {
	return &runState{
		goal:       goal,
		status:     entities.RunStatusRunning,
		history:    make([]entities.HistoryEntry, 0),
		actionLog:  make([]entities.ActionLogEntry, 0),
		domHistory: make([]entities.PageSnapshot, 0),
	}
}

// observe - records the fingerprint of this step and reports whether it
// matches the previous one
func (s *runState) observe(fp fingerprint) bool {
	same := s.hasPrev && fp == s.prev
	s.prev = fp
	s.hasPrev = true
	return same
}

func (s *runState) remember(step int, url string, action entities.Action, snap entities.PageSnapshot) {
	s.history = append(s.history, entities.HistoryEntry{
		Step:     step + 1,
		URL:      url,
		Action:   action.Spec(),
		Snapshot: snap,
	})
}

func (s *runState) record(step int, url string, action entities.Action, result entities.ExecResult) {
	s.actionLog = append(s.actionLog, entities.NewActionLogEntry(step+1, url, action, result))
}

func (s *runState) artifacts() entities.Artifacts {
	return entities.Artifacts{
		DOMHistory: s.domHistory,
		ActionLog:  s.actionLog,
	}
}
