// Package media persists message attachments under a per-source directory
// with deterministic, collision-free names.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const timestampLayout = "20060102_150405"

// TransferFunc performs the actual attachment transfer. It receives the
// extension-less base path and returns the final path it wrote (base plus
// the platform-determined extension).
type TransferFunc func(ctx context.Context, basePath string) (string, error)

type Archiver struct {
	baseDir string
	log     *zap.Logger
}

func NewArchiver(baseDir string, log *zap.Logger) *Archiver {
	return &Archiver{baseDir: baseDir, log: log}
}

// TargetBase builds the deterministic target path for a message attachment:
// <baseDir>/<sourceID>/<YYYYMMDD_HHMMSS>_<msgID>. The (timestamp, id) pair
// is unique per message within a source, so the same inputs always map to
// the same path and distinct messages never collide.
func (a *Archiver) TargetBase(sourceID string, msgID int, sentAt time.Time) string {
	name := fmt.Sprintf("%s_%d", sentAt.Format(timestampLayout), msgID)
	return filepath.Join(a.baseDir, sourceID, name)
}

// Archive creates the source directory if needed, runs the transfer and
// returns the stored file's path relative to the working directory. Every
// failure is logged and reported as "no media" (empty path); archiving
// never aborts processing of the owning message.
func (a *Archiver) Archive(ctx context.Context, sourceID string, msgID int, sentAt time.Time, transfer TransferFunc) string {
	base := a.TargetBase(sourceID, msgID, sentAt)

	if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
		a.log.Warn("create media directory",
			zap.String("source", sourceID), zap.Error(err))
		return ""
	}

	stored, err := transfer(ctx, base)
	if err != nil {
		a.log.Warn("download media",
			zap.String("source", sourceID), zap.Int("message_id", msgID), zap.Error(err))
		return ""
	}
	if stored == "" {
		return ""
	}

	wd, err := os.Getwd()
	if err != nil {
		return stored
	}
	rel, err := filepath.Rel(wd, stored)
	if err != nil {
		return stored
	}
	return rel
}
