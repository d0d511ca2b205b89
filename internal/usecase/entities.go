package usecase

import (
	"github.com/gotd/td/tg"

	"github.com/NguyenHuy1812/telegram-digest/internal/model"
)

// ClassifyEntities maps a message's formatting spans to semantic entities
// in their original order. Masked links carry an explicit URL attribute
// and become url entities; mention spans keep their literal text. Every
// other span kind contributes nothing, bare link spans included, since
// their text already appears verbatim in the message body.
func ClassifyEntities(text string, spans []tg.MessageEntityClass) []model.Entity {
	if len(spans) == 0 {
		return nil
	}
	runes := []rune(text)
	var out []model.Entity
	for _, span := range spans {
		switch e := span.(type) {
		case *tg.MessageEntityTextURL:
			out = append(out, model.Entity{Type: model.EntityURL, Value: e.URL})
		case *tg.MessageEntityMention:
			out = append(out, model.Entity{Type: model.EntityMention, Value: spanText(runes, e.Offset, e.Length)})
		}
	}
	return out
}

// spanText slices the raw text at [offset, offset+length), clamped to the
// text bounds. Offsets are counted in runes, matching how the upstream
// span offsets line up with the message text.
func spanText(runes []rune, offset, length int) string {
	if offset < 0 || length <= 0 || offset >= len(runes) {
		return ""
	}
	end := offset + length
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[offset:end])
}
