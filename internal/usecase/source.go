// Package usecase contains the normalization and aggregation pipeline that
// turns raw Telegram messages into rendered digest documents.
package usecase

import (
	"context"
	"time"

	"github.com/gotd/td/tg"

	"github.com/NguyenHuy1812/telegram-digest/internal/model"
)

// SourceInfo identifies one resolved channel or group.
type SourceInfo struct {
	// Identifier is the source exactly as configured, e.g. "@golang_news".
	Identifier string
	// Username is the public handle without the leading '@', empty for
	// sources that have none.
	Username string
	Kind     model.SourceKind
	Peer     tg.InputPeerClass
}

// RawMessage couples one tg.Message with the sender/chat entities that
// arrived in the same API response, so sender lookups need no extra round
// trips.
type RawMessage struct {
	Msg      *tg.Message
	Users    map[int64]*tg.User
	Chats    map[int64]*tg.Chat
	Channels map[int64]*tg.Channel
}

// MessageSource is the boundary to the remote messaging platform. The
// pipeline treats it as a black box yielding raw messages and lookups on
// demand.
type MessageSource interface {
	Resolve(ctx context.Context, identifier string, kind model.SourceKind) (SourceInfo, error)

	// ListMessages yields every message of the source sent at or after
	// since, in ascending timestamp order.
	ListMessages(ctx context.Context, src SourceInfo, since time.Time) ([]RawMessage, error)

	// DownloadAttachment transfers the message's attachment to basePath
	// plus a platform-determined extension and returns the final path.
	DownloadAttachment(ctx context.Context, raw RawMessage, basePath string) (string, error)

	// ResolveReplyTarget fetches the single message a reply points at.
	ResolveReplyTarget(ctx context.Context, src SourceInfo, msgID int) (*RawMessage, error)
}
