package generation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"mod-builder/core/apperr"
	"mod-builder/core/fileutil"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errAuxiliaryDisabled = errors.New("auxiliary downloads are disabled")

// fetchAuxiliary downloads every auxiliary option with bounded concurrency.
// Per-option failures are recorded; only cancellation stops the stage.
func (r *run) fetchAuxiliary(ctx context.Context) error {
	if len(r.job.Auxiliary) == 0 {
		return nil
	}
	if !r.flags.Auxiliary {
		r.logger.Info("Auxiliary downloads disabled by flag")
		for i, opt := range r.job.Auxiliary {
			r.aux = append(r.aux, &auxState{index: i, opt: opt, err: errAuxiliaryDisabled})
		}
		return nil
	}

	dir := filepath.Join(r.workDir, "aux")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.p.deps.Concurrency)
	var mu sync.Mutex

	for i, opt := range r.job.Auxiliary {
		g.Go(func() error {
			st := &auxState{index: i, opt: opt}
			st.local, st.err = r.downloadAuxiliary(gctx, dir, i, opt)
			if st.err != nil && apperr.IsCancelled(st.err) {
				return st.err
			}
			if st.err != nil {
				r.logger.Warn("Auxiliary download failed", zap.String("category", opt.Category), zap.Error(st.err))
			}
			mu.Lock()
			r.aux = append(r.aux, st)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return apperr.Cancelled(err)
	}
	if err := ctx.Err(); err != nil {
		return apperr.Cancelled(err)
	}

	sort.Slice(r.aux, func(a, b int) bool { return r.aux[a].index < r.aux[b].index })
	return nil
}

func (r *run) downloadAuxiliary(ctx context.Context, dir string, i int, opt AuxiliaryOption) (string, error) {
	data, err := r.p.deps.Fetcher.Fetch(ctx, opt.Mirrors, r.p.deps.Getter.Get)
	if err != nil {
		return "", err
	}
	local := filepath.Join(dir, fmt.Sprintf("%02d", i), filepath.Base(filepath.FromSlash(opt.Path)))
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(local, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", opt.Category, err)
	}
	return local, nil
}

// installAuxiliary places downloaded files under the target root, removing
// files a previous run installed for the same category first.
func (r *run) installAuxiliary(ctx context.Context) {
	installed := false
	for _, st := range r.aux {
		if st.err != nil {
			continue
		}
		rel := filepath.ToSlash(filepath.Clean(filepath.FromSlash(st.opt.Path)))

		for _, stale := range r.log.StaleFiles(st.opt.Category, []string{rel}) {
			path, err := fileutil.SafeJoin(r.targetRoot, stale)
			if err != nil {
				r.logger.Warn("Skipping stale entry outside target", zap.String("path", stale))
				continue
			}
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				r.logger.Warn("Failed to remove stale file", zap.String("path", path), zap.Error(err))
			}
		}

		dst, err := fileutil.SafeJoin(r.targetRoot, rel)
		if err == nil {
			err = os.MkdirAll(filepath.Dir(dst), 0o755)
		}
		if err == nil {
			err = fileutil.CopyFileAtomic(ctx, st.local, dst, 0o644)
		}
		if err != nil {
			r.logger.Warn("Auxiliary install failed", zap.String("category", st.opt.Category), zap.Error(err))
			st.err = fmt.Errorf("failed to install: %w", err)
			continue
		}
		r.log.SetCategory(st.opt.Category, st.opt.Choice, []string{rel})
		installed = true
	}
	if installed {
		r.log.Stamp()
	}
}
