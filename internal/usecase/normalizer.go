package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/NguyenHuy1812/telegram-digest/internal/media"
	"github.com/NguyenHuy1812/telegram-digest/internal/model"
)

const replyExcerptLimit = 100

// Normalizer builds exactly one canonical record per raw message. Channel
// and group mode share text, media, link and entity handling; sender,
// reply and forward resolution happen in group mode only.
type Normalizer struct {
	source   MessageSource
	archiver *media.Archiver
	kind     model.SourceKind
	log      *zap.Logger
}

func NewNormalizer(source MessageSource, archiver *media.Archiver, kind model.SourceKind, log *zap.Logger) *Normalizer {
	return &Normalizer{source: source, archiver: archiver, kind: kind, log: log}
}

// Normalize never fails: reply resolution and media download degrade to
// absent fields, everything else is a pure transformation.
func (n *Normalizer) Normalize(ctx context.Context, src SourceInfo, raw RawMessage) model.Record {
	msg := raw.Msg
	sentAt := time.Unix(int64(msg.Date), 0)

	rec := model.Record{
		ID:          msg.ID,
		Date:        sentAt.Format(model.DateLayout),
		Source:      src.Identifier,
		Text:        msg.Message,
		Views:       msg.Views,
		Forwards:    msg.Forwards,
		MessageLink: n.messageLink(src, msg.ID),
		Entities:    ClassifyEntities(msg.Message, msg.Entities),
	}

	if _, ok := msg.GetMedia(); ok {
		rec.HasMedia = true
		rec.MediaPath = n.archiver.Archive(ctx, src.Identifier, msg.ID, sentAt,
			func(ctx context.Context, basePath string) (string, error) {
				return n.source.DownloadAttachment(ctx, raw, basePath)
			})
	}

	if n.kind == model.SourceGroup {
		rec.Sender = classifySender(raw)
		rec.ForwardFrom = forwardRef(raw)
		rec.Reactions = reactions(msg)
		if replyID, ok := replyToID(msg); ok {
			rec.ReplyTo = n.resolveReply(ctx, src, replyID)
		}
	}

	return rec
}

// messageLink derives the permalink. Public channels link through their
// handle; supergroups get the private deep link built by stripping the
// "-100" marker off the marked chat id. Anything else has no link.
func (n *Normalizer) messageLink(src SourceInfo, msgID int) string {
	switch n.kind {
	case model.SourceChannel:
		if src.Username == "" {
			return ""
		}
		return "https://t.me/" + src.Username + "/" + strconv.Itoa(msgID)
	case model.SourceGroup:
		marked, ok := markedChatID(src.Peer)
		if !ok || !strings.HasPrefix(marked, "-100") {
			return ""
		}
		return "https://t.me/c/" + marked[4:] + "/" + strconv.Itoa(msgID)
	}
	return ""
}

// markedChatID renders the chat id the way bot-style APIs mark it:
// "-100<id>". Only channel-backed peers carry that encoding; basic
// groups and anything else report no marked id, so no deep link is
// derived for them.
func markedChatID(peer tg.InputPeerClass) (string, bool) {
	if p, ok := peer.(*tg.InputPeerChannel); ok {
		return "-100" + strconv.FormatInt(p.ChannelID, 10), true
	}
	return "", false
}

// classifySender turns the raw sender peer into the tagged Sender union.
// Users keep their personal name, channel and anonymous-admin senders keep
// their title; a sender missing from the entity maps stays unknown.
func classifySender(raw RawMessage) *model.Sender {
	peer, ok := raw.Msg.GetFromID()
	if !ok {
		return &model.Sender{Kind: model.SenderUnknown}
	}
	switch p := peer.(type) {
	case *tg.PeerUser:
		if u, ok := raw.Users[p.UserID]; ok {
			return &model.Sender{
				Kind:      model.SenderUser,
				ID:        u.ID,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Username:  u.Username,
			}
		}
	case *tg.PeerChannel:
		if c, ok := raw.Channels[p.ChannelID]; ok {
			return &model.Sender{
				Kind:     model.SenderChannel,
				ID:       c.ID,
				Title:    c.Title,
				Username: c.Username,
			}
		}
	case *tg.PeerChat:
		if c, ok := raw.Chats[p.ChatID]; ok {
			return &model.Sender{Kind: model.SenderChannel, ID: c.ID, Title: c.Title}
		}
	}
	return &model.Sender{Kind: model.SenderUnknown}
}

func forwardRef(raw RawMessage) *model.ForwardRef {
	fwd, ok := raw.Msg.GetFwdFrom()
	if !ok {
		return nil
	}
	ref := &model.ForwardRef{}
	if name, ok := fwd.GetFromName(); ok {
		ref.Name = name
	}
	if from, ok := fwd.GetFromID(); ok {
		switch p := from.(type) {
		case *tg.PeerUser:
			if u, ok := raw.Users[p.UserID]; ok {
				ref.Name = u.FirstName
			}
		case *tg.PeerChannel:
			if c, ok := raw.Channels[p.ChannelID]; ok {
				ref.Channel = c.Title
			}
		}
	}
	return ref
}

func reactions(msg *tg.Message) []model.Reaction {
	r, ok := msg.GetReactions()
	if !ok {
		return nil
	}
	var out []model.Reaction
	for _, rc := range r.Results {
		if emoji, ok := rc.Reaction.(*tg.ReactionEmoji); ok {
			out = append(out, model.Reaction{Emoticon: emoji.Emoticon, Count: rc.Count})
		}
	}
	return out
}

func replyToID(msg *tg.Message) (int, bool) {
	header, ok := msg.GetReplyTo()
	if !ok {
		return 0, false
	}
	h, ok := header.(*tg.MessageReplyHeader)
	if !ok {
		return 0, false
	}
	return h.GetReplyToMsgID()
}

// resolveReply fetches the referenced message once; reply chains are never
// followed transitively. Resolution failure drops the reference, not the
// message.
func (n *Normalizer) resolveReply(ctx context.Context, src SourceInfo, replyID int) *model.ReplyRef {
	target, err := n.source.ResolveReplyTarget(ctx, src, replyID)
	if err != nil || target == nil {
		n.log.Warn("resolve reply target",
			zap.String("source", src.Identifier), zap.Int("message_id", replyID), zap.Error(err))
		return nil
	}
	sender := classifySender(*target)
	return &model.ReplyRef{
		MessageID:  target.Msg.ID,
		Text:       excerpt(target.Msg.Message),
		SenderID:   sender.ID,
		SenderName: sender.DisplayName(),
	}
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= replyExcerptLimit {
		return text
	}
	return string(runes[:replyExcerptLimit]) + "..."
}
