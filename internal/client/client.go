// Package client wires the gotd Telegram client and implements the message
// source boundary the collection pipeline consumes.
package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	boltstor "github.com/gotd/contrib/bbolt"
	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/contrib/middleware/ratelimit"
	"github.com/gotd/contrib/storage"

	"github.com/gotd/td/examples"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/telegram/message/peer"

	"github.com/NguyenHuy1812/telegram-digest/internal/config"
	"github.com/NguyenHuy1812/telegram-digest/internal/model"
	"github.com/NguyenHuy1812/telegram-digest/internal/usecase"
)

// Run connects to Telegram, authenticates if necessary and executes one
// collection run over the configured sources of the given kind.
func Run(ctx context.Context, cfg *config.Config, kind model.SourceKind, log *zap.Logger) error {
	sessionDir := filepath.Join(cfg.Telegram.SessionDir, sessionFolder(cfg.Telegram.Phone))
	if err := os.MkdirAll(sessionDir, 0700); err != nil {
		return errors.Wrap(err, "create session dir")
	}

	sessionStorage := &telegram.FileSessionStorage{
		Path: filepath.Join(sessionDir, "session.json"),
	}

	boltdb, err := bbolt.Open(filepath.Join(sessionDir, "peers.bolt.db"), 0666, nil)
	if err != nil {
		return errors.Wrap(err, "open peer cache")
	}
	defer boltdb.Close()

	waiter := floodwait.NewWaiter().WithCallback(func(ctx context.Context, wait floodwait.FloodWait) {
		log.Warn("got FLOOD_WAIT, retrying", zap.Duration("wait", wait.Duration))
	})

	options := telegram.Options{
		Logger:         log.Named("gotd"),
		SessionStorage: sessionStorage,
		Middlewares: []telegram.Middleware{
			waiter,
			ratelimit.New(rate.Every(time.Millisecond*100), 5),
		},
	}
	client := telegram.NewClient(cfg.Telegram.AppID, cfg.Telegram.AppHash, options)
	api := client.API()

	resolver := storage.NewResolverCache(peer.Plain(api), boltstor.NewPeerStorage(boltdb, []byte("peers")))

	flow := auth.NewFlow(examples.Terminal{PhoneNumber: cfg.Telegram.Phone}, auth.SendCodeOptions{})

	return waiter.Run(ctx, func(ctx context.Context) error {
		return client.Run(ctx, func(ctx context.Context) error {
			if err := client.Auth().IfNecessary(ctx, flow); err != nil {
				return errors.Wrap(err, "auth")
			}

			self, err := client.Self(ctx)
			if err != nil {
				return errors.Wrap(err, "call self")
			}
			name := self.FirstName
			if self.Username != "" {
				name = fmt.Sprintf("%s (@%s)", name, self.Username)
			}
			log.Info("logged in", zap.String("user", name))

			source := NewSource(api, resolver, downloader.NewDownloader(), log)
			return usecase.NewCollector(source, cfg, kind, log).Run(ctx)
		})
	})
}

func sessionFolder(phone string) string {
	var out []rune
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return "phone-" + string(out)
}
