package usecase

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/NguyenHuy1812/telegram-digest/internal/model"
)

// Walker produces the ordered record sequence for a single source. The
// message source yields raw messages oldest-of-the-window first, so
// callers never re-sort per source.
type Walker struct {
	source MessageSource
	norm   *Normalizer
	log    *zap.Logger
}

func NewWalker(source MessageSource, norm *Normalizer, log *zap.Logger) *Walker {
	return &Walker{source: source, norm: norm, log: log}
}

// Walk fetches and normalizes every message of one source sent at or
// after since. A resolve or fetch error marks the whole source as failed;
// containment is the caller's job.
func (w *Walker) Walk(ctx context.Context, identifier string, kind model.SourceKind, since time.Time) ([]model.Record, error) {
	src, err := w.source.Resolve(ctx, identifier, kind)
	if err != nil {
		return nil, errors.Wrap(err, "resolve source")
	}

	raws, err := w.source.ListMessages(ctx, src, since)
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}

	records := make([]model.Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, w.norm.Normalize(ctx, src, raw))
	}
	return records, nil
}
