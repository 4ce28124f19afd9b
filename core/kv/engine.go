package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mod-builder/core/apperr"
	"mod-builder/core/fileutil"
)

// ItemsGameCandidates are the locations of the item data file relative to an
// extraction root, in lookup order.
var ItemsGameCandidates = []string{
	"scripts/items/items_game.txt",
	"scripts/items_game.txt",
	"items_game.txt",
}

// Failure is one entry that was not applied.
type Failure struct {
	ID        string `json:"id"`
	Reason    Reason `json:"reason"`
	SourceTag string `json:"source_tag,omitempty"`
	Origin    string `json:"origin,omitempty"`
}

// Report summarizes one patch pass.
type Report struct {
	Applied    int       `json:"applied"`
	Skipped    int       `json:"skipped"`
	AppliedIDs []string  `json:"applied_ids"`
	Failures   []Failure `json:"failures"`
}

func (r *Report) skip(e Entry, reason Reason) {
	r.Skipped++
	r.Failures = append(r.Failures, Failure{ID: e.ID, Reason: reason, SourceTag: e.SourceTag, Origin: e.Origin})
}

// ApplyMerged applies every entry of mm to target in one pass over an evolving
// copy of the text. Entries absent from target or rejected by Validate are
// recorded in the report and do not stop the pass.
//
// The owner for an id comes from ownerTagsByID, falling back to the entry's
// source tag.
func ApplyMerged(target string, mm *MergeMap, ownerTagsByID map[string]string) (string, Report) {
	return apply(target, mm, ownerTagsByID, true)
}

// Plan runs the same lookups and validation as ApplyMerged without
// substituting anything.
func Plan(target string, mm *MergeMap, ownerTagsByID map[string]string) Report {
	_, report := apply(target, mm, ownerTagsByID, false)
	return report
}

func apply(target string, mm *MergeMap, owners map[string]string, write bool) (string, Report) {
	report := Report{AppliedIDs: []string{}, Failures: []Failure{}}
	text := target
	for _, e := range mm.Entries() {
		existing, ok := FindBlock(text, e.ID)
		if !ok {
			report.skip(e, ReasonNotFoundInTarget)
			continue
		}

		owner := owners[e.ID]
		if owner == "" {
			owner = e.SourceTag
		}
		if err := Validate(existing.Body(text), e.Text, owner, e.ID); err != nil {
			var mismatch *MismatchError
			if errors.As(err, &mismatch) {
				report.skip(e, mismatch.Reason)
				continue
			}
			report.skip(e, Reason(err.Error()))
			continue
		}

		if write {
			text = splice(text, existing, e.Text)
		}
		report.Applied++
		report.AppliedIDs = append(report.AppliedIDs, e.ID)
	}
	return text, report
}

// PatchOptions controls PatchFile.
type PatchOptions struct {
	// Prettify reformats minified files before scanning.
	Prettify bool
	// DryRun validates without writing.
	DryRun bool
}

// PatchFile reads path once, applies mm and writes the result back once with
// an atomic replace. Nothing is written when no entry applied, when DryRun is
// set or when ctx is cancelled before the write.
func PatchFile(ctx context.Context, path string, mm *MergeMap, ownerTagsByID map[string]string, opts PatchOptions) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, apperr.Cancelled(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Report{}, apperr.NotFound("item data %s", path)
		}
		return Report{}, fmt.Errorf("failed to read item data: %w", err)
	}
	text := string(raw)
	raw = nil
	if opts.Prettify {
		text = Prettify(text)
	}

	if opts.DryRun {
		return Plan(text, mm, ownerTagsByID), nil
	}

	patched, report := ApplyMerged(text, mm, ownerTagsByID)
	text = ""
	if report.Applied == 0 {
		return report, nil
	}

	if err := ctx.Err(); err != nil {
		return report, apperr.Cancelled(err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte(patched), 0o644); err != nil {
		return report, fmt.Errorf("%w: %v", apperr.ErrPatchWrite, err)
	}
	return report, nil
}

// LocateItemsGame returns the first existing item data file under root.
func LocateItemsGame(root string) (string, error) {
	for _, rel := range ItemsGameCandidates {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", apperr.NotFound("items_game.txt under %s", root)
}
