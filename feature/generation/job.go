package generation

import (
	"strings"

	"mod-builder/core/apperr"
	"mod-builder/core/fileutil"
)

// Stage is a step of the pipeline state machine.
type Stage string

const (
	StagePreparing         Stage = "Preparing"
	StageProcessing        Stage = "Processing"
	StagePatching          Stage = "Patching"
	StageFetchingAuxiliary Stage = "FetchingAuxiliary"
	StageBuilding          Stage = "Building"
	StageInstalling        Stage = "Installing"
	StageDone              Stage = "Done"
	StageFailed            Stage = "Failed"
	StageCancelled         Stage = "Cancelled"
)

// Terminal reports whether no further transition follows s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed || s == StageCancelled
}

// Selection is one downloadable asset set whose blocks replace entries in
// the item data file.
type Selection struct {
	// Name identifies the selection in results and logs.
	Name string `json:"name" yaml:"name"`
	// SourceID groups selections coming from the same upstream source.
	SourceID string `json:"source_id" yaml:"source_id"`
	// Owner is the hero tag every replaced entry must belong to.
	Owner string `json:"owner" yaml:"owner"`
	// Mirrors are alternate archive URLs tried in order.
	Mirrors []string `json:"mirrors" yaml:"mirrors"`
	// IDs limits which manifest entries are used. Empty uses all of them.
	IDs []string `json:"ids,omitempty" yaml:"ids,omitempty"`
}

// AuxiliaryOption is one loose file installed under a category, such as a
// replacement HUD or loading screen.
type AuxiliaryOption struct {
	Category string   `json:"category" yaml:"category"`
	Choice   string   `json:"choice" yaml:"choice"`
	Path     string   `json:"path" yaml:"path"`
	Mirrors  []string `json:"mirrors" yaml:"mirrors"`
}

// Job is one end-to-end generation request.
type Job struct {
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// BaseArchive is a local archive holding the base game data. It is
	// unpacked into the extraction root during Preparing when set.
	BaseArchive string `json:"base_archive,omitempty" yaml:"base_archive,omitempty"`
	// TargetRoot overrides the configured install destination.
	TargetRoot string            `json:"target_root,omitempty" yaml:"target_root,omitempty"`
	Selections []Selection       `json:"selections" yaml:"selections"`
	Auxiliary  []AuxiliaryOption `json:"auxiliary,omitempty" yaml:"auxiliary,omitempty"`
}

// Validate checks the job shape before any work starts.
func (j *Job) Validate() error {
	if len(j.Selections) == 0 && len(j.Auxiliary) == 0 {
		return apperr.Validation("job has no selections or auxiliary options")
	}
	names := make(map[string]struct{}, len(j.Selections))
	for i, s := range j.Selections {
		if strings.TrimSpace(s.Name) == "" {
			return apperr.Validation("selection %d has no name", i)
		}
		if _, dup := names[s.Name]; dup {
			return apperr.Validation("duplicate selection %q", s.Name)
		}
		names[s.Name] = struct{}{}
		if strings.TrimSpace(s.Owner) == "" {
			return apperr.Validation("selection %q has no owner", s.Name)
		}
		if len(s.Mirrors) == 0 {
			return apperr.Validation("selection %q has no mirrors", s.Name)
		}
	}
	categories := make(map[string]struct{}, len(j.Auxiliary))
	for i, a := range j.Auxiliary {
		if strings.TrimSpace(a.Category) == "" {
			return apperr.Validation("auxiliary option %d has no category", i)
		}
		if _, dup := categories[a.Category]; dup {
			return apperr.Validation("duplicate auxiliary category %q", a.Category)
		}
		categories[a.Category] = struct{}{}
		if len(a.Mirrors) == 0 {
			return apperr.Validation("auxiliary option %q has no mirrors", a.Category)
		}
		if _, err := fileutil.SafeJoin("root", a.Path); err != nil {
			return apperr.Validation("auxiliary option %q: %v", a.Category, err)
		}
	}
	return nil
}

// FailedItem names one selection or auxiliary option that did not apply.
type FailedItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result is what a finished job reports to its caller.
type Result struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	SuccessCount int          `json:"successCount"`
	FailedItems  []FailedItem `json:"failedItems"`
}
