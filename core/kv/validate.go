package kv

import (
	"fmt"
	"regexp"
	"strings"

	"mod-builder/core/apperr"
)

// Reason explains why an entry was not applied.
type Reason string

const (
	ReasonMissingID                Reason = "MissingId"
	ReasonExistingMissingPrefab    Reason = "ExistingMissingPrefab"
	ReasonReplacementMissingPrefab Reason = "ReplacementMissingPrefab"
	ReasonExistingWrongOwner       Reason = "ExistingWrongOwner"
	ReasonReplacementWrongOwner    Reason = "ReplacementWrongOwner"
	ReasonNotFoundInTarget         Reason = "NotFoundInTarget"
)

// Describe returns a human-readable explanation of the reason.
func (r Reason) Describe() string {
	switch r {
	case ReasonMissingID:
		return "replacement does not contain the requested id"
	case ReasonExistingMissingPrefab:
		return "existing entry is not a default item"
	case ReasonReplacementMissingPrefab:
		return "replacement is not a default item"
	case ReasonExistingWrongOwner:
		return "existing entry belongs to a different hero"
	case ReasonReplacementWrongOwner:
		return "replacement belongs to a different hero"
	case ReasonNotFoundInTarget:
		return "entry not present in item data"
	default:
		return string(r)
	}
}

// MismatchError is returned by Validate when a candidate block is rejected.
type MismatchError struct {
	ID     string
	Reason Reason
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("block %s: %s", e.ID, e.Reason)
}

// Is lets errors.Is(err, apperr.ErrStructuralMismatch) match.
func (e *MismatchError) Is(target error) bool {
	return target == apperr.ErrStructuralMismatch
}

var defaultPrefabRe = regexp.MustCompile(`"prefab"\s+"default_item"`)

// Validate confirms that candidate may replace existing for the given owner.
// Checks run in order and the first failure is returned as *MismatchError.
// Neither input is modified.
func Validate(existing, candidate, ownerTag, expectedID string) error {
	if !strings.Contains(candidate, `"`+expectedID+`"`) {
		return &MismatchError{ID: expectedID, Reason: ReasonMissingID}
	}
	if !defaultPrefabRe.MatchString(existing) {
		return &MismatchError{ID: expectedID, Reason: ReasonExistingMissingPrefab}
	}
	if !defaultPrefabRe.MatchString(candidate) {
		return &MismatchError{ID: expectedID, Reason: ReasonReplacementMissingPrefab}
	}
	if ownerTag == "" {
		return &MismatchError{ID: expectedID, Reason: ReasonExistingWrongOwner}
	}
	owner := ownerPattern(ownerTag)
	if !owner.MatchString(existing) {
		return &MismatchError{ID: expectedID, Reason: ReasonExistingWrongOwner}
	}
	if !owner.MatchString(candidate) {
		return &MismatchError{ID: expectedID, Reason: ReasonReplacementWrongOwner}
	}
	return nil
}

// ownerPattern matches a used_by_heroes block listing ownerTag as "1".
func ownerPattern(ownerTag string) *regexp.Regexp {
	return regexp.MustCompile(`"used_by_heroes"\s*\{[^{}]*"` + regexp.QuoteMeta(ownerTag) + `"\s+"1"`)
}
