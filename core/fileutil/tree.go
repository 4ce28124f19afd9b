package fileutil

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a relative path would resolve outside its root.
var ErrPathEscape = errors.New("path escapes root")

// SafeJoin joins root and a slash-separated relative path, rejecting absolute
// paths, volume names and parent escapes.
func SafeJoin(root, rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || clean == "" {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, rel)
	}
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, rel)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, rel)
	}
	return filepath.Join(root, clean), nil
}

// CopyTree copies every regular file under src into dst, overwriting existing
// files, and returns the copied paths relative to dst in slash form. Names in
// skip (matched against the slash-form relative path) are left out.
func CopyTree(ctx context.Context, src, dst string, skip ...string) ([]string, error) {
	skipSet := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipSet[s] = struct{}{}
	}

	var copied []string
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)
		if _, ok := skipSet[relSlash]; ok {
			return nil
		}
		target, err := SafeJoin(dst, relSlash)
		if err != nil {
			return err
		}
		if err := copyFile(ctx, path, target); err != nil {
			return fmt.Errorf("failed to copy %s: %w", relSlash, err)
		}
		copied = append(copied, relSlash)
		return nil
	})
	if err != nil {
		return copied, err
	}
	return copied, nil
}

func copyFile(ctx context.Context, src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, readerWithCtx(ctx, in)); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Unzip extracts archivePath into dest and returns the extracted file paths
// relative to dest in slash form. Entries that would escape dest fail the
// whole extraction.
func Unzip(ctx context.Context, archivePath, dest string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var files []string
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		target, err := SafeJoin(dest, f.Name)
		if err != nil {
			return files, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return files, err
			}
			continue
		}
		if err := extractEntry(ctx, f, target); err != nil {
			return files, fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
		files = append(files, filepath.ToSlash(filepath.Clean(filepath.FromSlash(f.Name))))
	}
	return files, nil
}

func extractEntry(ctx context.Context, f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, readerWithCtx(ctx, rc)); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// FindFileDir returns the shallowest directory under root (root included)
// containing a file called name, searching at most maxDepth levels down.
func FindFileDir(root, name string, maxDepth int) (string, bool) {
	level := []string{root}
	for depth := 0; depth <= maxDepth && len(level) > 0; depth++ {
		var next []string
		for _, dir := range level {
			if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
				return dir, true
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if e.IsDir() {
					next = append(next, filepath.Join(dir, e.Name()))
				}
			}
		}
		level = next
	}
	return "", false
}
