package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mod-builder/core/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const axe = "npc_dota_hero_axe"

func entry(id, name, prefab, owner string) string {
	return fmt.Sprintf("\t\t\"%s\"\n\t\t{\n\t\t\t\"name\"\t\t\"%s\"\n\t\t\t\"prefab\"\t\t\"%s\"\n\t\t\t\"used_by_heroes\"\n\t\t\t{\n\t\t\t\t\"%s\"\t\t\"1\"\n\t\t\t}\n\t\t}\n", id, name, prefab, owner)
}

func itemsGame(entries ...string) string {
	return "\"items_game\"\n{\n\t\"items\"\n\t{\n" + strings.Join(entries, "") + "\t}\n}\n"
}

func TestValidate(t *testing.T) {
	existing := entry("100", "Default", "default_item", axe)

	tests := []struct {
		name      string
		existing  string
		candidate string
		owner     string
		want      Reason
	}{
		{"MissingId", existing, entry("101", "New", "default_item", axe), axe, ReasonMissingID},
		{"ExistingMissingPrefab", entry("100", "Default", "wearable", axe), entry("100", "New", "default_item", axe), axe, ReasonExistingMissingPrefab},
		{"ReplacementMissingPrefab", existing, entry("100", "New", "wearable", axe), axe, ReasonReplacementMissingPrefab},
		{"ExistingWrongOwner", entry("100", "Default", "default_item", "npc_dota_hero_lina"), entry("100", "New", "default_item", axe), axe, ReasonExistingWrongOwner},
		{"ReplacementWrongOwner", existing, entry("100", "New", "default_item", "npc_dota_hero_lina"), axe, ReasonReplacementWrongOwner},
		{"EmptyOwner", existing, entry("100", "New", "default_item", axe), "", ReasonExistingWrongOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.existing, tt.candidate, tt.owner, "100")
			require.Error(t, err)
			var mismatch *MismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, tt.want, mismatch.Reason)
			assert.ErrorIs(t, err, apperr.ErrStructuralMismatch)
		})
	}

	assert.NoError(t, Validate(existing, entry("100", "New", "default_item", axe), axe, "100"))
}

func TestApplyMerged_RejectsForeignOwner(t *testing.T) {
	target := itemsGame(entry("100", "Default", "default_item", axe))
	mm := NewMergeMap()
	mm.Put(Entry{ID: "100", Text: entry("100", "Stolen", "default_item", "npc_dota_hero_lina"), SourceTag: axe})

	out, report := ApplyMerged(target, mm, map[string]string{"100": axe})
	assert.Equal(t, target, out, "existing block must be untouched")
	assert.Equal(t, 0, report.Applied)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, ReasonReplacementWrongOwner, report.Failures[0].Reason)
}

func TestApplyMerged(t *testing.T) {
	target := itemsGame(
		entry("100", "Default Axe", "default_item", axe),
		entry("200", "Default Helm", "default_item", axe),
	)
	mm := NewMergeMap()
	mm.Put(Entry{ID: "100", Text: entry("100", "Rain Axe", "default_item", axe), SourceTag: axe, Origin: "rain"})
	mm.Put(Entry{ID: "300", Text: entry("300", "Ghost", "default_item", axe), SourceTag: axe, Origin: "ghost"})
	mm.Put(Entry{ID: "200", Text: entry("200", "Bad Helm", "wearable", axe), SourceTag: axe, Origin: "helm"})

	out, report := ApplyMerged(target, mm, nil)

	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, []string{"100"}, report.AppliedIDs)
	assert.Equal(t, []Failure{
		{ID: "300", Reason: ReasonNotFoundInTarget, SourceTag: axe, Origin: "ghost"},
		{ID: "200", Reason: ReasonReplacementMissingPrefab, SourceTag: axe, Origin: "helm"},
	}, report.Failures)

	assert.Contains(t, out, "Rain Axe")
	assert.NotContains(t, out, "Default Axe")
	assert.Contains(t, out, "Default Helm")
	assert.Equal(t, strings.Replace(target, "Default Axe", "Rain Axe", 1), out)
}

func TestApplyMerged_OrderIndependent(t *testing.T) {
	target := itemsGame(
		entry("100", "A0", "default_item", axe),
		entry("200", "B0", "default_item", axe),
		entry("300", "C0", "default_item", axe),
	)
	a := Entry{ID: "100", Text: entry("100", "A1 with a much longer name", "default_item", axe), SourceTag: axe}
	b := Entry{ID: "200", Text: entry("200", "B1", "default_item", axe), SourceTag: axe}
	c := Entry{ID: "300", Text: entry("300", "C1", "default_item", axe), SourceTag: axe}

	orders := [][]Entry{{a, b, c}, {c, b, a}, {b, a, c}}
	var outputs []string
	for _, order := range orders {
		mm := NewMergeMap()
		for _, e := range order {
			mm.Put(e)
		}
		out, report := ApplyMerged(target, mm, nil)
		require.Equal(t, 3, report.Applied)
		outputs = append(outputs, out)
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[0], outputs[2])
}

func TestPlan(t *testing.T) {
	target := itemsGame(entry("100", "Default", "default_item", axe))
	mm := NewMergeMap()
	mm.Put(Entry{ID: "100", Text: entry("100", "New", "default_item", axe), SourceTag: axe})

	report := Plan(target, mm, nil)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, []string{"100"}, report.AppliedIDs)
}

func writeItemsGame(t *testing.T, text string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scripts", "items", "items_game.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestPatchFile(t *testing.T) {
	target := itemsGame(entry("100", "Default", "default_item", axe))
	mm := NewMergeMap()
	mm.Put(Entry{ID: "100", Text: entry("100", "New", "default_item", axe), SourceTag: axe})

	t.Run("Writes", func(t *testing.T) {
		path := writeItemsGame(t, target)
		report, err := PatchFile(context.Background(), path, mm, nil, PatchOptions{Prettify: true})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Applied)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"New"`)
	})

	t.Run("DryRun", func(t *testing.T) {
		path := writeItemsGame(t, target)
		report, err := PatchFile(context.Background(), path, mm, nil, PatchOptions{DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Applied)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, target, string(data))
	})

	t.Run("NothingApplied", func(t *testing.T) {
		path := writeItemsGame(t, target)
		other := NewMergeMap()
		other.Put(Entry{ID: "999", Text: entry("999", "X", "default_item", axe), SourceTag: axe})

		report, err := PatchFile(context.Background(), path, other, nil, PatchOptions{})
		require.NoError(t, err)
		assert.Equal(t, 0, report.Applied)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, target, string(data))
	})

	t.Run("Cancelled", func(t *testing.T) {
		path := writeItemsGame(t, target)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := PatchFile(ctx, path, mm, nil, PatchOptions{})
		assert.ErrorIs(t, err, apperr.ErrCancelled)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, target, string(data))
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := PatchFile(context.Background(), filepath.Join(t.TempDir(), "none.txt"), mm, nil, PatchOptions{})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestLocateItemsGame(t *testing.T) {
	root := t.TempDir()
	_, err := LocateItemsGame(root)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(root, "items_game.txt"), []byte("x"), 0o644))
	got, err := LocateItemsGame(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "items_game.txt"), got)

	preferred := filepath.Join(root, "scripts", "items", "items_game.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(preferred), 0o755))
	require.NoError(t, os.WriteFile(preferred, []byte("x"), 0o644))
	got, err = LocateItemsGame(root)
	require.NoError(t, err)
	assert.Equal(t, preferred, got)
}
