package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/NguyenHuy1812/telegram-digest/internal/config"
	"github.com/NguyenHuy1812/telegram-digest/internal/markdown"
	"github.com/NguyenHuy1812/telegram-digest/internal/media"
	"github.com/NguyenHuy1812/telegram-digest/internal/model"
)

const runTimestampLayout = "20060102_1504"

// Collector drives one run: walk every configured source, merge, sort
// globally by timestamp and write a single Markdown document.
type Collector struct {
	sources []string
	kind    model.SourceKind
	window  time.Duration
	outDir  string
	walker  *Walker
	log     *zap.Logger
	now     func() time.Time
}

func NewCollector(source MessageSource, cfg *config.Config, kind model.SourceKind, log *zap.Logger) *Collector {
	sources := cfg.Channels
	mediaDir := cfg.Media.ChannelDir
	if kind == model.SourceGroup {
		sources = cfg.Groups
		mediaDir = cfg.Media.GroupDir
	}

	archiver := media.NewArchiver(mediaDir, log)
	norm := NewNormalizer(source, archiver, kind, log)

	return &Collector{
		sources: sources,
		kind:    kind,
		window:  cfg.Window.Duration(),
		outDir:  cfg.Output.Dir,
		walker:  NewWalker(source, norm, log),
		log:     log,
		now:     time.Now,
	}
}

// Run walks the sources sequentially. A failed source contributes zero
// records and the run continues; only failing to write the document is
// fatal. The document is fully assembled in memory before anything
// touches disk, so an aborted run leaves no partial output.
func (c *Collector) Run(ctx context.Context) error {
	since := c.now().Add(-c.window)

	var all []model.Record
	for _, identifier := range c.sources {
		c.log.Info("fetching source", zap.String("source", identifier))
		records, err := c.walker.Walk(ctx, identifier, c.kind, since)
		if err != nil {
			c.log.Error("fetch source", zap.String("source", identifier), zap.Error(err))
			continue
		}
		c.log.Info("fetched source",
			zap.String("source", identifier), zap.Int("messages", len(records)))
		all = append(all, records...)
	}

	// Lexicographic order on the formatted date equals chronological
	// order at minute granularity; the stable sort keeps concatenation
	// order for same-minute records.
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date < all[j].Date })

	now := c.now()
	var doc, name string
	if c.kind == model.SourceChannel {
		doc = markdown.RenderChannels(all, now)
		name = fmt.Sprintf("telegram_messages_%s.md", now.Format(runTimestampLayout))
	} else {
		doc = markdown.RenderGroups(all, now)
		name = fmt.Sprintf("telegram_group_messages_%s.md", now.Format(runTimestampLayout))
	}

	path := filepath.Join(c.outDir, name)
	if err := writeDocument(path, doc); err != nil {
		return errors.Wrap(err, "write document")
	}
	c.log.Info("document written", zap.String("path", path), zap.Int("messages", len(all)))
	return nil
}

// writeDocument stages the rendered bytes next to the target and renames,
// so a failed write cannot leave a truncated document behind.
func writeDocument(path, doc string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(doc), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
