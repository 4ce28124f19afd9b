// Package kv rewrites top-level entries of Valve KeyValues text files.
//
// It does not build an object tree. Entries are located and replaced at the
// text level by a quote and escape aware brace matcher, which keeps the rest
// of a multi-megabyte file byte-for-byte intact.
//
// # Components
//
//   - FindBlock / ReplaceBlock / ExtractAll: locate, swap and enumerate
//     `"id" { ... }` entries.
//   - Prettify / Format: re-emit minified single-line dumps as indented text.
//   - Validate: confirm a replacement is a default item owned by the same hero
//     as the entry it replaces.
//   - MergeMap / Collect / Merge: accumulate replacement entries from several
//     sources (last writer wins).
//   - ApplyMerged / Plan / PatchFile: apply a MergeMap in a single pass and
//     write the file at most once.
//
// # Usage
//
//	mm := kv.Collect("npc_dota_hero_axe", []string{"4512"}, indexText)
//	report, err := kv.PatchFile(ctx, itemsGamePath, mm, nil, kv.PatchOptions{Prettify: true})
package kv
