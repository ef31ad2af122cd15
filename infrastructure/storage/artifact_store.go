package storage

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"flow_navigator/domain/entities"
	"flow_navigator/domain/interfaces"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Settings names the output directory and artifact files
type Settings struct {
	Dir            string
	DOMHistoryFile string
	ActionLogFile  string
}

type artifactStore struct {
	domHistoryPath string
	actionLogPath  string
	dir            string
}

// NewArtifactStore - creates new artifact storage rooted at settings.Dir
func NewArtifactStore(settings Settings) interfaces.ArtifactStore {
	return &artifactStore{
		dir:            settings.Dir,
		domHistoryPath: filepath.Join(settings.Dir, settings.DOMHistoryFile),
		actionLogPath:  filepath.Join(settings.Dir, settings.ActionLogFile),
	}
}

// Save - writes the DOM history and the action log
func (s *artifactStore) Save(artifacts entities.Artifacts) (entities.ArtifactPaths, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return entities.ArtifactPaths{}, fmt.Errorf("failed to create output dir: %w", err)
	}

	domHistory := artifacts.DOMHistory
	if domHistory == nil {
		domHistory = []entities.PageSnapshot{}
	}
	actionLog := artifacts.ActionLog
	if actionLog == nil {
		actionLog = []entities.ActionLogEntry{}
	}

	if err := writeJSON(s.domHistoryPath, domHistory); err != nil {
		return entities.ArtifactPaths{}, fmt.Errorf("failed to save DOM history: %w", err)
	}
	if err := writeJSON(s.actionLogPath, actionLog); err != nil {
		return entities.ArtifactPaths{DOMHistory: s.domHistoryPath}, fmt.Errorf("failed to save action log: %w", err)
	}

	return entities.ArtifactPaths{
		DOMHistory: s.domHistoryPath,
		ActionLog:  s.actionLogPath,
	}, nil
}

// LoadActionLog - reads an action log written by Save
func LoadActionLog(path string) ([]entities.ActionLogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []entities.ActionLogEntry{}, nil
		}
		return nil, err
	}

	var log []entities.ActionLogEntry
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, err
	}
	return log, nil
}

// LoadDOMHistory - reads a DOM history written by Save
func LoadDOMHistory(path string) ([]entities.PageSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []entities.PageSnapshot{}, nil
		}
		return nil, err
	}

	var history []entities.PageSnapshot
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// writeJSON - writes v next to path and renames it into place
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
