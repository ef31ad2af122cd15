package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flow_navigator/domain/entities"
)

func TestArtifactStore_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "framework_output")
	store := NewArtifactStore(Settings{
		Dir:            dir,
		DOMHistoryFile: "dom_flow_output.json",
		ActionLogFile:  "actions_log.json",
	})

	idx := 1
	artifacts := entities.Artifacts{
		DOMHistory: []entities.PageSnapshot{
			{URL: "https://a.test/", Elements: []entities.ElementRecord{{Tag: "button", Text: "Go", PreferredLocators: []string{"#go"}}}},
			{URL: "https://a.test/done", Elements: []entities.ElementRecord{}},
		},
		ActionLog: []entities.ActionLogEntry{
			{Step: 1, ActionType: "click", Selector: "#go", Index: &idx, URL: "https://a.test/", Success: true},
		},
	}

	paths, err := store.Save(artifacts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dom_flow_output.json"), paths.DOMHistory)
	assert.Equal(t, filepath.Join(dir, "actions_log.json"), paths.ActionLog)

	history, err := LoadDOMHistory(paths.DOMHistory)
	require.NoError(t, err)
	assert.Equal(t, artifacts.DOMHistory, history)

	log, err := LoadActionLog(paths.ActionLog)
	require.NoError(t, err)
	assert.Equal(t, artifacts.ActionLog, log)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestArtifactStore_EmptyRunWritesArrays(t *testing.T) {
	dir := t.TempDir()
	store := NewArtifactStore(Settings{Dir: dir, DOMHistoryFile: "dom.json", ActionLogFile: "log.json"})

	paths, err := store.Save(entities.Artifacts{})
	require.NoError(t, err)

	data, err := os.ReadFile(paths.ActionLog)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestArtifactStore_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	store := NewArtifactStore(Settings{Dir: file, DOMHistoryFile: "dom.json", ActionLogFile: "log.json"})
	_, err := store.Save(entities.Artifacts{})
	assert.Error(t, err)
}

func TestLoadActionLog_Missing(t *testing.T) {
	log, err := LoadActionLog(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, log)
}
