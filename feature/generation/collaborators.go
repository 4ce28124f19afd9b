package generation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"mod-builder/core/apperr"
	"mod-builder/core/fileutil"
	"mod-builder/core/storage"

	"github.com/minio/minio-go/v7"
)

// Extractor unpacks a base data archive into a directory.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) error
}

// Rebuilder packs a source directory and returns the package path.
type Rebuilder interface {
	Rebuild(ctx context.Context, sourceDir, buildDir string) (string, error)
}

// Installer places a built package under a target root.
type Installer interface {
	Install(ctx context.Context, targetRoot, packagePath string) error
}

// Publisher uploads a built package somewhere shared.
type Publisher interface {
	Publish(ctx context.Context, jobID, packagePath string) error
}

// ExecTool drives an external archive tool that understands
// "unpack <archive> <dest>" and "pack <src> <out>".
type ExecTool struct {
	Path        string
	PackageName string
	Timeout     time.Duration
}

// NewExecTool builds the tool wrapper from config.
func NewExecTool(tools ToolsConfig, cfg Config) *ExecTool {
	return &ExecTool{Path: tools.Path, PackageName: cfg.packageName(), Timeout: tools.Timeout()}
}

// Extract runs the unpack command.
func (t *ExecTool) Extract(ctx context.Context, archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	return t.run(ctx, "unpack", archivePath, destDir)
}

// Rebuild runs the pack command and checks the package was produced.
func (t *ExecTool) Rebuild(ctx context.Context, sourceDir, buildDir string) (string, error) {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return "", err
	}
	out := filepath.Join(buildDir, t.PackageName)
	if err := t.run(ctx, "pack", sourceDir, out); err != nil {
		return "", err
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		return "", fmt.Errorf("%w: %s produced no package at %s", apperr.ErrExtraction, t.Path, out)
	}
	return out, nil
}

func (t *ExecTool) run(ctx context.Context, args ...string) error {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, t.Path, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return apperr.Cancelled(ctx.Err())
		}
		return fmt.Errorf("%w: %s %s: %v: %s", apperr.ErrExtraction, t.Path, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// FileInstaller copies the package into the target root with an atomic
// replace, so a running game never sees a half-written file.
type FileInstaller struct{}

// Install copies packagePath to targetRoot under its base name.
func (FileInstaller) Install(ctx context.Context, targetRoot, packagePath string) error {
	if err := os.MkdirAll(targetRoot, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(targetRoot, filepath.Base(packagePath))
	return fileutil.CopyFileAtomic(ctx, packagePath, dst, 0o644)
}

// StoragePublisher uploads packages to an object storage bucket under
// packages/<job id>/.
type StoragePublisher struct {
	client storage.Client
	bucket string
}

// NewStoragePublisher returns nil when no storage client is configured.
func NewStoragePublisher(client storage.Client, bucket string) *StoragePublisher {
	if client == nil {
		return nil
	}
	return &StoragePublisher{client: client, bucket: bucket}
}

// CheckBucket verifies the publishing bucket is reachable and exists.
func (p *StoragePublisher) CheckBucket(ctx context.Context) error {
	ok, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", p.bucket, err)
	}
	if !ok {
		return apperr.NotFound("bucket %s", p.bucket)
	}
	return nil
}

// Publish uploads packagePath.
func (p *StoragePublisher) Publish(ctx context.Context, jobID, packagePath string) error {
	f, err := os.Open(packagePath)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	key := "packages/" + jobID + "/" + filepath.Base(packagePath)
	_, err = p.client.PutObject(ctx, p.bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}
	return nil
}
