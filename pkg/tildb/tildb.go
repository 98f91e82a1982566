// Package tildb rebuilds a SQLite database of notes from a directory of
// markdown files with YAML front matter.
package tildb

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/tildb/pkg/tildb/config"
	"github.com/cognicore/tildb/pkg/tildb/ingest"
	"github.com/cognicore/tildb/pkg/tildb/internalerr"
	"github.com/cognicore/tildb/pkg/tildb/slug"
	"github.com/cognicore/tildb/pkg/tildb/store/sqlite"
)

// NewRunID returns a sortable identifier attached to every log line of a run.
func NewRunID() string {
	return ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0)).String()
}

// Run recreates the store at cfg.DBPath and ingests every note under
// cfg.InputDir. Only configuration and store initialization failures are
// returned as errors; everything else is reported and logged.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) (ingest.Report, error) {
	runID := NewRunID()
	logger = logger.With("run", runID)
	report := ingest.Report{RunID: runID}

	if err := cfg.Validate(); err != nil {
		return report, err
	}

	logger.Info("creating store", "db", cfg.DBPath)
	st, err := sqlite.Create(ctx, cfg.DBPath)
	if err != nil {
		if !errors.Is(err, internalerr.ErrFatalInit) {
			err = fmt.Errorf("%w: %v", internalerr.ErrFatalInit, err)
		}
		return report, err
	}
	defer st.Close()

	pipeline := ingest.NewPipeline(ingest.NewValidator(), slug.NewGenerator(cfg.Separator), logger)

	info, err := os.Stat(cfg.InputDir)
	if err != nil || !info.IsDir() {
		logger.Warn("input directory not found; nothing to ingest", "dir", cfg.InputDir)
		pipeline.Summarize(report)
		return report, nil
	}

	logger.Info("looking for note files", "dir", cfg.InputDir, "pattern", cfg.Pattern)

	result, err := pipeline.Run(ctx, os.DirFS(cfg.InputDir), cfg.Pattern, st)
	result.RunID = runID
	return result, err
}
