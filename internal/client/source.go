package client

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/telegram/message/peer"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/NguyenHuy1812/telegram-digest/internal/model"
	"github.com/NguyenHuy1812/telegram-digest/internal/usecase"
)

const historyBatchSize = 100

// Source implements usecase.MessageSource over the raw Telegram API.
type Source struct {
	api      *tg.Client
	resolver peer.Resolver
	dl       *downloader.Downloader
	log      *zap.Logger
}

func NewSource(api *tg.Client, resolver peer.Resolver, dl *downloader.Downloader, log *zap.Logger) *Source {
	return &Source{api: api, resolver: resolver, dl: dl, log: log}
}

func (s *Source) Resolve(ctx context.Context, identifier string, kind model.SourceKind) (usecase.SourceInfo, error) {
	domain := strings.TrimPrefix(identifier, "@")
	p, err := s.resolver.ResolveDomain(ctx, domain)
	if err != nil {
		return usecase.SourceInfo{}, errors.Wrap(err, "resolve domain")
	}
	info := usecase.SourceInfo{Identifier: identifier, Kind: kind, Peer: p}
	if _, ok := p.(*tg.InputPeerChannel); ok {
		info.Username = domain
	}
	return info, nil
}

// ListMessages pages through the source history newest first, stops once a
// message predates since and returns the survivors oldest first. The
// user/chat/channel entities shipped with every page are accumulated and
// shared by all returned messages.
func (s *Source) ListMessages(ctx context.Context, src usecase.SourceInfo, since time.Time) ([]usecase.RawMessage, error) {
	users := make(map[int64]*tg.User)
	chats := make(map[int64]*tg.Chat)
	channels := make(map[int64]*tg.Channel)

	var collected []*tg.Message
	offsetID := 0

loop:
	for {
		res, err := s.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     src.Peer,
			OffsetID: offsetID,
			Limit:    historyBatchSize,
		})
		if err != nil {
			return nil, errors.Wrap(err, "get history")
		}
		mod, ok := res.AsModified()
		if !ok {
			break
		}
		batch := mod.GetMessages()
		if len(batch) == 0 {
			break
		}
		collectEntities(mod, users, chats, channels)

		for _, m := range batch {
			if id := messageID(m); id != 0 && (offsetID == 0 || id < offsetID) {
				offsetID = id
			}
			msg, ok := m.(*tg.Message)
			if !ok {
				continue
			}
			if time.Unix(int64(msg.Date), 0).Before(since) {
				break loop
			}
			collected = append(collected, msg)
		}
		if len(batch) < historyBatchSize {
			break
		}
	}

	raws := make([]usecase.RawMessage, 0, len(collected))
	for i := len(collected) - 1; i >= 0; i-- {
		raws = append(raws, usecase.RawMessage{
			Msg:      collected[i],
			Users:    users,
			Chats:    chats,
			Channels: channels,
		})
	}
	return raws, nil
}

func (s *Source) DownloadAttachment(ctx context.Context, raw usecase.RawMessage, basePath string) (string, error) {
	media, ok := raw.Msg.GetMedia()
	if !ok {
		return "", nil
	}

	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		p, ok := m.GetPhoto()
		if !ok {
			return "", errors.New("empty photo")
		}
		photo, ok := p.AsNotEmpty()
		if !ok {
			return "", errors.New("empty photo")
		}
		size := largestPhotoSize(photo.Sizes)
		if size == "" {
			return "", errors.New("no downloadable photo size")
		}
		loc := &tg.InputPhotoFileLocation{
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
			ThumbSize:     size,
		}
		path := basePath + ".jpg"
		if _, err := s.dl.Download(s.api, loc).ToPath(ctx, path); err != nil {
			return "", errors.Wrap(err, "download photo")
		}
		return path, nil

	case *tg.MessageMediaDocument:
		d, ok := m.GetDocument()
		if !ok {
			return "", errors.New("empty document")
		}
		doc, ok := d.AsNotEmpty()
		if !ok {
			return "", errors.New("empty document")
		}
		loc := &tg.InputDocumentFileLocation{
			ID:            doc.ID,
			AccessHash:    doc.AccessHash,
			FileReference: doc.FileReference,
		}
		path := basePath + documentExt(doc)
		if _, err := s.dl.Download(s.api, loc).ToPath(ctx, path); err != nil {
			return "", errors.Wrap(err, "download document")
		}
		return path, nil
	}

	return "", errors.Errorf("unsupported media type %T", media)
}

func (s *Source) ResolveReplyTarget(ctx context.Context, src usecase.SourceInfo, msgID int) (*usecase.RawMessage, error) {
	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: msgID}}

	var (
		res tg.MessagesMessagesClass
		err error
	)
	if ch, ok := src.Peer.(*tg.InputPeerChannel); ok {
		res, err = s.api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
			Channel: &tg.InputChannel{ChannelID: ch.ChannelID, AccessHash: ch.AccessHash},
			ID:      ids,
		})
	} else {
		res, err = s.api.MessagesGetMessages(ctx, ids)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get reply message")
	}

	mod, ok := res.AsModified()
	if !ok {
		return nil, errors.New("reply message unavailable")
	}

	users := make(map[int64]*tg.User)
	chats := make(map[int64]*tg.Chat)
	channels := make(map[int64]*tg.Channel)
	collectEntities(mod, users, chats, channels)

	for _, m := range mod.GetMessages() {
		if msg, ok := m.(*tg.Message); ok && msg.ID == msgID {
			return &usecase.RawMessage{Msg: msg, Users: users, Chats: chats, Channels: channels}, nil
		}
	}
	return nil, errors.New("reply message not found")
}

func collectEntities(mod tg.ModifiedMessagesMessages, users map[int64]*tg.User, chats map[int64]*tg.Chat, channels map[int64]*tg.Channel) {
	for _, u := range mod.GetUsers() {
		if user, ok := u.AsNotEmpty(); ok {
			users[user.ID] = user
		}
	}
	for _, c := range mod.GetChats() {
		switch chat := c.(type) {
		case *tg.Chat:
			chats[chat.ID] = chat
		case *tg.Channel:
			channels[chat.ID] = chat
		}
	}
}

func messageID(m tg.MessageClass) int {
	switch v := m.(type) {
	case *tg.Message:
		return v.ID
	case *tg.MessageService:
		return v.ID
	case *tg.MessageEmpty:
		return v.ID
	}
	return 0
}

func largestPhotoSize(sizes []tg.PhotoSizeClass) string {
	var best string
	bestArea := -1
	for _, s := range sizes {
		switch v := s.(type) {
		case *tg.PhotoSize:
			if area := v.W * v.H; area > bestArea {
				bestArea, best = area, v.Type
			}
		case *tg.PhotoSizeProgressive:
			if area := v.W * v.H; area > bestArea {
				bestArea, best = area, v.Type
			}
		}
	}
	return best
}

func documentExt(doc *tg.Document) string {
	for _, attr := range doc.Attributes {
		if fn, ok := attr.(*tg.DocumentAttributeFilename); ok {
			if ext := filepath.Ext(fn.FileName); ext != "" {
				return ext
			}
		}
	}
	switch doc.MimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "audio/mpeg":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "application/pdf":
		return ".pdf"
	}
	return ".bin"
}
