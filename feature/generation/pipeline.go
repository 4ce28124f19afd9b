package generation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mod-builder/core/apperr"
	"mod-builder/core/fetch"
	"mod-builder/core/fileutil"
	"mod-builder/core/flags"
	"mod-builder/core/kv"

	"go.uber.org/zap"
)

// errNothingApplied fails a job in which every selection failed.
var errNothingApplied = errors.New("no selection could be applied")

// ProgressFunc receives every stage transition of a run.
type ProgressFunc func(Stage)

// Deps are the collaborators a pipeline drives.
type Deps struct {
	Fetcher   *fetch.Fetcher
	Getter    fetch.Getter
	Flags     *flags.Cache
	Extractor Extractor
	Rebuilder Rebuilder
	Installer Installer
	// Publisher is optional.
	Publisher Publisher
	// Concurrency caps parallel auxiliary downloads.
	Concurrency int
	Logger      *zap.Logger
}

// Pipeline runs generation jobs. It holds no per-job state and may run
// several jobs at once as long as they target different roots.
type Pipeline struct {
	cfg  Config
	deps Deps
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg Config, deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Flags == nil {
		deps.Flags = flags.NewCache(nil, 0, deps.Logger)
	}
	if deps.Installer == nil {
		deps.Installer = FileInstaller{}
	}
	if deps.Concurrency <= 0 {
		deps.Concurrency = 3
	}
	return &Pipeline{cfg: cfg, deps: deps}
}

// Run executes job to completion. The returned Result is always populated;
// the error carries the cause when the job did not succeed. Cancelling ctx
// stops the job at the next suspension point unless Installing has begun.
func (p *Pipeline) Run(ctx context.Context, job *Job, progress ProgressFunc) (Result, error) {
	if progress == nil {
		progress = func(Stage) {}
	}
	r := &run{
		p:        p,
		job:      job,
		progress: progress,
		logger:   p.deps.Logger.With(zap.String("job_id", job.ID)),
	}

	err := r.execute(ctx)
	switch {
	case err == nil:
		r.logger.Info("Generation finished", zap.Int("success_count", r.successCount()))
		progress(StageDone)
	case apperr.IsCancelled(err):
		r.logger.Info("Generation cancelled", zap.String("stage", string(r.current)))
		progress(StageCancelled)
	default:
		r.logger.Error("Generation failed", zap.String("stage", string(r.current)), zap.Error(err))
		progress(StageFailed)
	}
	return r.result(err), err
}

type selectionState struct {
	sel     Selection
	files   []string
	applied int
	err     error
}

type auxState struct {
	index int
	opt   AuxiliaryOption
	local string
	err   error
}

// run is the state of one job execution.
type run struct {
	p        *Pipeline
	job      *Job
	progress ProgressFunc
	logger   *zap.Logger
	current  Stage

	flags       flags.Flags
	targetRoot  string
	workDir     string
	extractRoot string
	log         *ExtractionLog

	merged     *kv.MergeMap
	owners     map[string]string
	selections []*selectionState
	aux        []*auxState
	pkg        string
}

func (r *run) stage(s Stage) {
	r.current = s
	r.logger.Info("Stage started", zap.String("stage", string(s)))
	r.progress(s)
}

func (r *run) execute(ctx context.Context) error {
	defer r.cleanup()

	if err := r.job.Validate(); err != nil {
		return err
	}
	r.targetRoot = r.job.TargetRoot
	if r.targetRoot == "" {
		r.targetRoot = r.p.cfg.TargetRoot
	}
	if r.targetRoot == "" {
		return apperr.Validation("no target root configured")
	}
	if err := ctx.Err(); err != nil {
		return apperr.Cancelled(err)
	}
	r.flags = r.p.deps.Flags.Get(ctx)

	r.stage(StagePreparing)
	if err := r.prepare(ctx); err != nil {
		return err
	}

	r.stage(StageProcessing)
	if err := r.process(ctx); err != nil {
		return err
	}

	r.stage(StagePatching)
	if err := r.patch(ctx); err != nil {
		return err
	}
	if len(r.selections) > 0 && r.succeededSelections() == 0 {
		return errNothingApplied
	}

	r.stage(StageFetchingAuxiliary)
	if err := r.fetchAuxiliary(ctx); err != nil {
		return err
	}
	if r.successCount() == 0 {
		return errNothingApplied
	}

	r.stage(StageBuilding)
	if err := r.build(ctx); err != nil {
		return err
	}

	// Installing is the point of no return.
	if err := ctx.Err(); err != nil {
		return apperr.Cancelled(err)
	}
	r.stage(StageInstalling)
	return r.install(context.WithoutCancel(ctx))
}

func (r *run) cleanup() {
	if r.workDir == "" {
		return
	}
	if err := os.RemoveAll(r.workDir); err != nil {
		r.logger.Warn("Failed to remove work dir", zap.String("path", r.workDir), zap.Error(err))
	}
}

func (r *run) prepare(ctx context.Context) error {
	base := r.p.cfg.WorkDir
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	dir, err := os.MkdirTemp(base, "job-")
	if err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	r.workDir = dir
	r.extractRoot = filepath.Join(dir, "extract")
	if err := os.MkdirAll(r.extractRoot, 0o755); err != nil {
		return err
	}

	if r.job.BaseArchive != "" {
		if r.p.deps.Extractor == nil {
			return apperr.Validation("base archive given but no extractor configured")
		}
		if err := r.p.deps.Extractor.Extract(ctx, r.job.BaseArchive, r.extractRoot); err != nil {
			return stageError(ctx, apperr.ErrExtraction, err)
		}
	}

	log, err := LoadExtractionLog(r.logPath())
	if err != nil {
		r.logger.Warn("Ignoring unreadable extraction log", zap.Error(err))
		log = &ExtractionLog{}
	}
	r.log = log
	return nil
}

func (r *run) logPath() string {
	path := r.p.cfg.LogPath
	if path == "" {
		path = "extraction_log.json"
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.targetRoot, path)
}

func (r *run) process(ctx context.Context) error {
	r.merged = kv.NewMergeMap()
	r.owners = make(map[string]string)

	for i, sel := range r.job.Selections {
		if err := ctx.Err(); err != nil {
			return apperr.Cancelled(err)
		}
		st := &selectionState{sel: sel}
		r.selections = append(r.selections, st)

		mm, files, err := r.processSelection(ctx, i, sel)
		if err != nil {
			if apperr.IsCancelled(err) {
				return apperr.Cancelled(err)
			}
			r.logger.Warn("Selection failed", zap.String("selection", sel.Name), zap.Error(err))
			st.err = err
			continue
		}
		st.files = files

		tagged := kv.NewMergeMap()
		for _, e := range mm.Entries() {
			e.Origin = sel.Name
			tagged.Put(e)
			r.owners[e.ID] = sel.Owner
		}
		kv.Merge(r.merged, tagged)
		r.logger.Debug("Selection collected",
			zap.String("selection", sel.Name),
			zap.Int("entries", tagged.Len()),
			zap.Int("files", len(files)))
	}

	for _, o := range r.merged.Overwrites() {
		r.logger.Warn("Entry replaced by a later selection",
			zap.String("id", o.ID),
			zap.String("previous_owner", o.Previous),
			zap.String("owner", o.Current))
	}
	return nil
}

func (r *run) processSelection(ctx context.Context, i int, sel Selection) (*kv.MergeMap, []string, error) {
	data, err := r.p.deps.Fetcher.Fetch(ctx, sel.Mirrors, r.p.deps.Getter.Get)
	if err != nil {
		return nil, nil, err
	}

	downloads := filepath.Join(r.workDir, "downloads")
	if err := os.MkdirAll(downloads, 0o755); err != nil {
		return nil, nil, err
	}
	archive := filepath.Join(downloads, fmt.Sprintf("%02d.zip", i))
	err = os.WriteFile(archive, data, 0o644)
	data = nil
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store download: %w", err)
	}

	dest := filepath.Join(r.workDir, "sets", fmt.Sprintf("%02d", i))
	defer os.RemoveAll(dest)
	_, err = fileutil.Unzip(ctx, archive, dest)
	_ = os.Remove(archive)
	if err != nil {
		return nil, nil, stageError(ctx, apperr.ErrExtraction, err)
	}

	root, ok := fileutil.FindFileDir(dest, "index.txt", r.p.cfg.contentDepth())
	if !ok {
		return nil, nil, apperr.NotFound("index.txt in %s", sel.Name)
	}
	index, err := os.ReadFile(filepath.Join(root, "index.txt"))
	if err != nil {
		return nil, nil, err
	}
	mm := kv.Collect(sel.Owner, sel.IDs, string(index))
	if mm.Len() == 0 {
		return nil, nil, apperr.NotFound("no matching entries in %s manifest", sel.Name)
	}

	files, err := fileutil.CopyTree(ctx, root, r.extractRoot, "index.txt")
	if err != nil {
		return nil, nil, stageError(ctx, apperr.ErrExtraction, err)
	}
	return mm, files, nil
}

func (r *run) patch(ctx context.Context) error {
	defer func() {
		r.merged = nil
		r.owners = nil
	}()

	if r.merged.Len() == 0 {
		return nil
	}
	if !r.flags.Patching {
		r.logger.Info("Patching disabled by flag")
		return nil
	}

	path, err := kv.LocateItemsGame(r.extractRoot)
	if err != nil {
		return err
	}
	report, err := kv.PatchFile(ctx, path, r.merged, r.owners, kv.PatchOptions{Prettify: r.flags.Prettify})
	if err != nil {
		if apperr.IsCancelled(err) {
			return apperr.Cancelled(err)
		}
		return err
	}
	r.logger.Info("Patch applied", zap.Int("applied", report.Applied), zap.Int("skipped", report.Skipped))

	byName := make(map[string]*selectionState, len(r.selections))
	for _, st := range r.selections {
		byName[st.sel.Name] = st
	}
	for _, id := range report.AppliedIDs {
		if e, ok := r.merged.Get(id); ok {
			if st := byName[e.Origin]; st != nil {
				st.applied++
			}
		}
	}
	reasons := make(map[string]string)
	for _, f := range report.Failures {
		r.logger.Warn("Entry not applied",
			zap.String("id", f.ID),
			zap.String("selection", f.Origin),
			zap.String("reason", string(f.Reason)))
		if _, seen := reasons[f.Origin]; !seen {
			reasons[f.Origin] = fmt.Sprintf("entry %s: %s", f.ID, f.Reason.Describe())
		}
	}
	for _, st := range r.selections {
		if st.err != nil || st.applied > 0 {
			continue
		}
		reason, ok := reasons[st.sel.Name]
		if !ok {
			reason = "every entry was replaced by a later selection"
		}
		st.err = fmt.Errorf("%w: %s", apperr.ErrStructuralMismatch, reason)
	}
	return nil
}

func (r *run) build(ctx context.Context) error {
	if r.succeededSelections() == 0 {
		return nil
	}
	if r.p.deps.Rebuilder == nil {
		return fmt.Errorf("%w: no rebuild tool configured", apperr.ErrExtraction)
	}
	pkg, err := r.p.deps.Rebuilder.Rebuild(ctx, r.extractRoot, filepath.Join(r.workDir, "build"))
	if err != nil {
		return stageError(ctx, apperr.ErrExtraction, err)
	}
	r.pkg = pkg
	return nil
}

// install runs with a context that is never cancelled.
func (r *run) install(ctx context.Context) error {
	if r.pkg != "" {
		if err := r.p.deps.Installer.Install(ctx, r.targetRoot, r.pkg); err != nil {
			return fmt.Errorf("failed to install package: %w", err)
		}
		if r.p.cfg.Publish && r.p.deps.Publisher != nil {
			if err := r.p.deps.Publisher.Publish(ctx, r.job.ID, r.pkg); err != nil {
				r.logger.Warn("Package publish failed", zap.Error(err))
			}
		}

		var sets []InstalledSet
		for _, st := range r.selections {
			if st.err == nil {
				sets = append(sets, InstalledSet{SourceID: st.sel.SourceID, SelectionName: st.sel.Name, Files: st.files})
			}
		}
		r.log.SetInstalledSets(sets)
	}

	r.installAuxiliary(ctx)

	if !r.flags.ExtractionLog {
		return nil
	}
	if err := r.log.Save(r.logPath()); err != nil {
		r.logger.Warn("Failed to save extraction log", zap.Error(err))
	}
	return nil
}

func (r *run) succeededSelections() int {
	n := 0
	for _, st := range r.selections {
		if st.err == nil {
			n++
		}
	}
	return n
}

func (r *run) successCount() int {
	n := r.succeededSelections()
	for _, a := range r.aux {
		if a.err == nil {
			n++
		}
	}
	return n
}

func (r *run) failedItems() []FailedItem {
	var items []FailedItem
	for _, st := range r.selections {
		if st.err != nil {
			items = append(items, FailedItem{Name: st.sel.Name, Reason: reasonText(st.err)})
		}
	}
	for _, a := range r.aux {
		if a.err != nil {
			items = append(items, FailedItem{Name: a.opt.Category, Reason: reasonText(a.err)})
		}
	}
	return items
}

func (r *run) result(err error) Result {
	res := Result{
		SuccessCount: r.successCount(),
		FailedItems:  r.failedItems(),
	}
	if err != nil {
		res.Message = apperr.Describe(err)
		return res
	}
	res.Success = true
	total := len(r.job.Selections) + len(r.job.Auxiliary)
	res.Message = fmt.Sprintf("Installed %d of %d item(s)", res.SuccessCount, total)
	return res
}

// stageError tags err with kind unless it is a cancellation or already tagged.
func stageError(ctx context.Context, kind error, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return apperr.Cancelled(ctxErr)
	}
	if apperr.IsCancelled(err) || errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %v", kind, err)
}

func reasonText(err error) string {
	msg := err.Error()
	for _, prefix := range []error{apperr.ErrStructuralMismatch, apperr.ErrNotFound, apperr.ErrExtraction} {
		msg = strings.TrimPrefix(msg, prefix.Error()+": ")
	}
	return msg
}
