package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/social-capital/internal/common"
	"github.com/Veraticus/social-capital/internal/engine"
	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/storage"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	dbPath := settings.DatabasePath

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError("could not open the contact database at "+dbPath, err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine opens storage and loads the threshold engine on top of it.
// The caller closes the returned storage.
func initEngine(ctx context.Context) (*engine.Engine, *storage.SQLiteStorage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(ctx, store, nil)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to load thresholds: %w", err)
	}
	return eng, store, nil
}

// closeStore closes store, logging rather than returning failures.
func closeStore(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// autoCheckpoint snapshots the database before a destructive operation.
// Failures are logged and never block the operation.
func autoCheckpoint(ctx context.Context, w io.Writer, store *storage.SQLiteStorage, prefix string) {
	manager, err := store.NewCheckpointManager()
	if err != nil {
		if !errors.Is(err, storage.ErrInMemoryCheckpoint) {
			slog.Warn("Failed to prepare automatic checkpoint", "error", err)
		}
		return
	}
	if settings, err := loadSettings(); err == nil {
		manager.SetAutoRetention(settings.AutoCheckpoints)
	}
	info, err := manager.AutoCheckpoint(ctx, prefix)
	if err != nil {
		slog.Warn("Failed to create automatic checkpoint", "error", err)
		return
	}
	fmt.Fprintf(w, "Saved checkpoint %s\n", info.ID)
}

// parseCategory accepts category labels case-insensitively, with either
// dashes or underscores: core-power, CORE_POWER, core_power.
func parseCategory(s string) (model.Category, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	return model.ParseCategory(normalized)
}

func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// progressFunc adapts a progress bar to the engine's progress callback.
func progressFunc(bar *progressbar.ProgressBar) func(done, total int) {
	return func(done, _ int) {
		if err := bar.Set(done); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}

// readYAML decodes path, or stdin when path is "-", into v.
func readYAML(path string, stdin io.Reader, v any) error {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	if err := yaml.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// writeYAML encodes v to path, or to stdout when path is "" or "-".
func writeYAML(path string, stdout io.Writer, v any) error {
	if path == "" || path == "-" {
		return encodeYAML(stdout, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return writeYAMLFile(f, v)
}

// writeYAMLFile encodes v into f and closes it. A failed close is reported
// since buffered data may not have reached disk.
func writeYAMLFile(f io.WriteCloser, v any) error {
	if err := encodeYAML(f, v); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close YAML output: %w", err)
	}
	return nil
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return enc.Close()
}
