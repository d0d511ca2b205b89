package markdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/NguyenHuy1812/telegram-digest/internal/model"
)

const collectedAtLayout = "2006-01-02 15:04:05"

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// RenderChannels renders channel records as one document, sectioned per
// channel in order of first appearance. Records are expected to be sorted
// already; rendering never reorders them.
func RenderChannels(records []model.Record, collectedAt time.Time) string {
	var b strings.Builder
	b.WriteString("# Telegram Channel Messages\n")
	fmt.Fprintf(&b, "_Collected on %s_\n\n", collectedAt.Format(collectedAtLayout))

	var order []string
	bySource := make(map[string][]model.Record)
	for _, rec := range records {
		if _, ok := bySource[rec.Source]; !ok {
			order = append(order, rec.Source)
		}
		bySource[rec.Source] = append(bySource[rec.Source], rec)
	}

	for _, source := range order {
		fmt.Fprintf(&b, "## Channel: %s\n\n", source)
		for _, rec := range bySource[source] {
			fmt.Fprintf(&b, "### %s\n\n", rec.Date)
			if rec.Views != 0 || rec.Forwards != 0 {
				fmt.Fprintf(&b, "_Views: %d | Forwards: %d_\n\n", rec.Views, rec.Forwards)
			}
			writeBody(&b, rec)
		}
	}
	return b.String()
}

// RenderGroups renders group records as one flat chronological document.
func RenderGroups(records []model.Record, collectedAt time.Time) string {
	var b strings.Builder
	b.WriteString("# Telegram Group Messages\n")
	fmt.Fprintf(&b, "_Collected on %s_\n\n", collectedAt.Format(collectedAtLayout))

	for _, rec := range records {
		fmt.Fprintf(&b, "### %s - %s\n\n", rec.Date, senderHeading(rec.Sender))
		if rec.ReplyTo != nil {
			fmt.Fprintf(&b, "> Replying to: %s\n\n", rec.ReplyTo.Text)
		}
		writeBody(&b, rec)
	}
	return b.String()
}

// writeBody emits the parts shared by both modes: escaped text, media
// reference, entity list, permalink and the trailing separator.
func writeBody(b *strings.Builder, rec model.Record) {
	if rec.Text != "" {
		fmt.Fprintf(b, "%s\n\n", EscapeBrackets(rec.Text))
	}

	if rec.HasMedia && rec.MediaPath != "" {
		if isImagePath(rec.MediaPath) {
			fmt.Fprintf(b, "![Media](%s)\n\n", rec.MediaPath)
		} else {
			fmt.Fprintf(b, "[📎 Attached Media](%s)\n\n", rec.MediaPath)
		}
	}

	if len(rec.Entities) > 0 {
		b.WriteString("**Links and mentions:**\n\n")
		for _, e := range rec.Entities {
			switch e.Type {
			case model.EntityURL, model.EntityTextURL:
				fmt.Fprintf(b, "🔗 [%s](%s)\n", e.Value, e.Value)
			case model.EntityMention:
				fmt.Fprintf(b, "@ %s\n", e.Value)
			}
		}
		b.WriteString("\n")
	}

	if rec.MessageLink != "" {
		fmt.Fprintf(b, "🔗 [Original message](%s)\n\n", rec.MessageLink)
	}

	b.WriteString("---\n\n")
}

func senderHeading(s *model.Sender) string {
	if s == nil {
		return "Unknown Sender"
	}
	var name string
	switch s.Kind {
	case model.SenderUser:
		name = s.FirstName
	case model.SenderChannel:
		name = s.Title
	default:
		return "Unknown Sender"
	}
	if s.Username != "" {
		return fmt.Sprintf("%s (@%s)", name, s.Username)
	}
	return name
}

func isImagePath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
