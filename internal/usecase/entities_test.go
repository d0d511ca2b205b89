package usecase

import (
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NguyenHuy1812/telegram-digest/internal/model"
)

func TestClassifyEntitiesNoSpans(t *testing.T) {
	assert.Empty(t, ClassifyEntities("some text", nil))
}

func TestClassifyEntitiesOrderAndKinds(t *testing.T) {
	text := "read this https://a.io and ping @someone now"
	spans := []tg.MessageEntityClass{
		&tg.MessageEntityTextURL{Offset: 5, Length: 4, URL: "https://example.com"},
		&tg.MessageEntityBold{Offset: 0, Length: 4},
		&tg.MessageEntityMention{Offset: 32, Length: 8},
	}

	entities := ClassifyEntities(text, spans)

	require.Len(t, entities, 2)
	assert.Equal(t, model.Entity{Type: model.EntityURL, Value: "https://example.com"}, entities[0])
	assert.Equal(t, model.Entity{Type: model.EntityMention, Value: "@someone"}, entities[1])
}

func TestClassifyEntitiesNeverInvents(t *testing.T) {
	spans := []tg.MessageEntityClass{
		&tg.MessageEntityBold{Offset: 0, Length: 2},
		&tg.MessageEntityItalic{Offset: 2, Length: 2},
		&tg.MessageEntityCode{Offset: 4, Length: 2},
	}
	assert.Empty(t, ClassifyEntities("abcdef", spans))
}

func TestClassifyEntitiesIgnoresBareLinks(t *testing.T) {
	text := "see https://a.io for details"
	spans := []tg.MessageEntityClass{
		&tg.MessageEntityURL{Offset: 4, Length: 12},
	}
	assert.Empty(t, ClassifyEntities(text, spans))
}

func TestClassifyEntitiesMentionEqualsRawSlice(t *testing.T) {
	text := "héllo @wörld rest"
	span := &tg.MessageEntityMention{Offset: 6, Length: 6}

	entities := ClassifyEntities(text, []tg.MessageEntityClass{span})

	require.Len(t, entities, 1)
	runes := []rune(text)
	assert.Equal(t, string(runes[span.Offset:span.Offset+span.Length]), entities[0].Value)
	assert.Equal(t, "@wörld", entities[0].Value)
}

func TestClassifyEntitiesClampsOutOfRange(t *testing.T) {
	entities := ClassifyEntities("short", []tg.MessageEntityClass{
		&tg.MessageEntityMention{Offset: 3, Length: 50},
		&tg.MessageEntityMention{Offset: 99, Length: 5},
	})

	require.Len(t, entities, 2)
	assert.Equal(t, "rt", entities[0].Value)
	assert.Equal(t, "", entities[1].Value)
}
