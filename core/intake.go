package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/iocache"
	"github.com/codesage/codesage/schema"
)

// FileIntake validates an upload, analyzes it and publishes the result into the workspace.
type FileIntake struct {
	client   contract.APIClient
	ws       *Workspace
	cache    contract.CacheStore
	maxBytes int64
	guard    requestGuard
}

// NewFileIntake creates an intake that publishes into ws. cache may be nil.
func NewFileIntake(client contract.APIClient, ws *Workspace, cache contract.CacheStore) *FileIntake {
	return &FileIntake{
		client:   client,
		ws:       ws,
		cache:    cache,
		maxBytes: megabytes(schema.DefaultMaxFileSizeMB),
	}
}

// SetMaxFileSizeMB applies the limit advertised by the backend. Non-positive values are ignored.
func (fi *FileIntake) SetMaxFileSizeMB(mb float64) {
	if mb > 0 {
		fi.maxBytes = megabytes(mb)
	}
}

// ValidateUpload checks that exactly one allowed file no larger than maxBytes was given.
func ValidateUpload(files []schema.FileUpload, maxBytes int64) (schema.FileUpload, error) {
	if len(files) != 1 {
		return schema.FileUpload{}, fmt.Errorf("%w: got %d", ErrSingleFile, len(files))
	}
	file := files[0]
	if !schema.IsAllowedExtension(file.Name) {
		return schema.FileUpload{}, fmt.Errorf("%w: %q", ErrUnsupportedExtension, filepath.Ext(file.Name))
	}
	if maxBytes > 0 && int64(len(file.Content)) > maxBytes {
		return schema.FileUpload{}, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, file.Name, len(file.Content), maxBytes)
	}
	return file, nil
}

// LoadFile reads the file at path into an upload named after its base name.
func LoadFile(path string) (schema.FileUpload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return schema.FileUpload{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return schema.FileUpload{Name: filepath.Base(path), Content: content}, nil
}

// Submit analyzes the single file in files. On success the file text and the
// result replace the workspace pair; on failure the workspace is untouched.
func (fi *FileIntake) Submit(ctx context.Context, files []schema.FileUpload) (schema.AnalysisResult, error) {
	file, err := ValidateUpload(files, fi.maxBytes)
	if err != nil {
		return schema.AnalysisResult{}, err
	}
	if err := fi.guard.begin(); err != nil {
		return schema.AnalysisResult{}, err
	}

	result, cached := iocache.LoadAnalysis(fi.cache, file)
	if !cached {
		result, err = fi.client.Analyze(ctx, file)
		if err != nil {
			fi.guard.finish(err, AnalyzeFallback)
			return schema.AnalysisResult{}, fmt.Errorf("failed to analyze %s: %w", file.Name, err)
		}
		if err := iocache.SaveAnalysis(fi.cache, file, result, time.Now()); err != nil {
			contract.LogWarn("Failed to cache analysis", err)
		}
	}

	fi.ws.Publish(file.Text(), result)
	fi.guard.finish(nil, "")
	return result, nil
}

// State returns the intake state and the message of the last failure.
func (fi *FileIntake) State() (schema.PanelState, string) {
	return fi.guard.status()
}

// ClearError returns an errored intake to idle.
func (fi *FileIntake) ClearError() {
	fi.guard.clearError()
}

func megabytes(mb float64) int64 {
	return int64(mb * 1024 * 1024)
}
