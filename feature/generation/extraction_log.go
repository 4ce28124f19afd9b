package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"mod-builder/core/fileutil"
)

// InstalledSet records the files one selection contributed to a package.
type InstalledSet struct {
	SourceID      string   `json:"sourceId"`
	SelectionName string   `json:"selectionName"`
	Files         []string `json:"files"`
}

// ExtractionLog remembers what a previous run installed so the next run can
// remove stale files of the categories it replaces.
type ExtractionLog struct {
	InstalledSets  []InstalledSet      `json:"installedSets,omitempty"`
	GeneratedAt    *time.Time          `json:"generatedAt,omitempty"`
	Selections     map[string]string   `json:"selections,omitempty"`
	InstalledFiles map[string][]string `json:"installedFiles,omitempty"`
}

// LoadExtractionLog reads the log at path. A missing file yields an empty log.
func LoadExtractionLog(path string) (*ExtractionLog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ExtractionLog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction log: %w", err)
	}
	var log ExtractionLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to parse extraction log: %w", err)
	}
	return &log, nil
}

// Save writes the log atomically.
func (l *ExtractionLog) Save(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// StaleFiles returns files recorded for category that are not in keep.
func (l *ExtractionLog) StaleFiles(category string, keep []string) []string {
	kept := make(map[string]struct{}, len(keep))
	for _, f := range keep {
		kept[f] = struct{}{}
	}
	var stale []string
	for _, f := range l.InstalledFiles[category] {
		if _, ok := kept[f]; !ok {
			stale = append(stale, f)
		}
	}
	return stale
}

// SetCategory replaces the record for one auxiliary category.
func (l *ExtractionLog) SetCategory(category, choice string, files []string) {
	if l.Selections == nil {
		l.Selections = make(map[string]string)
	}
	if l.InstalledFiles == nil {
		l.InstalledFiles = make(map[string][]string)
	}
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)
	l.Selections[category] = choice
	l.InstalledFiles[category] = sorted
}

// SetInstalledSets replaces the selection records. A rebuilt package always
// holds the full set of this run, so earlier records are dropped.
func (l *ExtractionLog) SetInstalledSets(sets []InstalledSet) {
	l.InstalledSets = sets
}

// Stamp records the generation time of auxiliary selections.
func (l *ExtractionLog) Stamp() {
	now := time.Now().UTC()
	l.GeneratedAt = &now
}
