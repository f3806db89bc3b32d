package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mkvsubs/internal/logging"
)

const (
	// AttachmentsDir holds one subdirectory per attachment extraction request.
	AttachmentsDir = "attachments"
	// TrackPrefix starts every extracted track file name.
	TrackPrefix = "subtitle_"
)

// CleanStaleResult contains the outcome of a retention sweep.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// EntryInfo describes one extracted output: a track file or an attachment request directory.
type EntryInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Kind    string    `json:"kind"`
	ModTime time.Time `json:"mod_time"`
	Size    int64     `json:"size"`
}

// CleanStale removes extracted outputs older than maxAge from outputDir.
// Only files the extractor names (subtitle_*.srt, subtitle_*.ass) and request
// directories under attachments/ are considered; anything else is left alone.
func CleanStale(ctx context.Context, outputDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	entries, err := ListOutputs(outputDir)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: outputDir, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(entry.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: entry.Path, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale output",
					logging.String("path", entry.Path),
					logging.Error(err),
					logging.String(logging.FieldEventType, "output_cleanup_failed"),
					logging.String(logging.FieldErrorHint, "check output_dir permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, entry.Path)
		if logger != nil {
			logger.Info("removed stale output",
				logging.String("path", entry.Path),
				logging.String("kind", entry.Kind),
				logging.Duration("age", time.Since(entry.ModTime)),
				logging.String(logging.FieldEventType, "output_cleanup"),
			)
		}
	}
	return result
}

// ListOutputs returns extracted outputs in outputDir, oldest first.
// A missing directory yields no entries.
func ListOutputs(outputDir string) ([]EntryInfo, error) {
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var outputs []EntryInfo
	for _, entry := range entries {
		if entry.IsDir() || !isTrackOutput(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		outputs = append(outputs, EntryInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(outputDir, entry.Name()),
			Kind:    "track",
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	attachmentsRoot := filepath.Join(outputDir, AttachmentsDir)
	requests, err := os.ReadDir(attachmentsRoot)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, entry := range requests {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(attachmentsRoot, entry.Name())
		size, _ := dirSize(dirPath)
		outputs = append(outputs, EntryInfo{
			Name:    filepath.Join(AttachmentsDir, entry.Name()),
			Path:    dirPath,
			Kind:    "attachment",
			ModTime: info.ModTime(),
			Size:    size,
		})
	}

	sort.SliceStable(outputs, func(i, j int) bool {
		return outputs[i].ModTime.Before(outputs[j].ModTime)
	})
	return outputs, nil
}

func isTrackOutput(name string) bool {
	if !strings.HasPrefix(name, TrackPrefix) {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".srt", ".ass":
		return true
	}
	return false
}

// dirSize calculates the total size of a directory recursively.
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
