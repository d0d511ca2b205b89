package model

// SourceKind tells a broadcast channel apart from a multi-party group.
type SourceKind string

const (
	SourceChannel SourceKind = "channel"
	SourceGroup   SourceKind = "group"
)

// DateLayout is the minute-precision timestamp format carried on records.
// Lexicographic order of formatted values matches chronological order.
const DateLayout = "2006-01-02 15:04"

type EntityType string

const (
	EntityURL     EntityType = "url"
	EntityTextURL EntityType = "text_url"
	EntityMention EntityType = "mention"
)

// Entity is one semantic annotation over message text. Value holds the
// target URL for url/text_url entities and the literal mention text for
// mention entities.
type Entity struct {
	Type  EntityType
	Value string
}

type SenderKind string

const (
	SenderUser    SenderKind = "user"
	SenderChannel SenderKind = "channel"
	SenderUnknown SenderKind = "unknown"
)

// Sender classifies who wrote a group message. The FirstName/LastName pair
// is populated for users, Title for channels and anonymous admins.
type Sender struct {
	Kind      SenderKind
	ID        int64
	FirstName string
	LastName  string
	Title     string
	Username  string
}

// DisplayName is the short name used in reply excerpts.
func (s *Sender) DisplayName() string {
	if s == nil {
		return "Unknown"
	}
	switch s.Kind {
	case SenderUser:
		return s.FirstName
	case SenderChannel:
		return s.Title
	default:
		return "Unknown"
	}
}

// ReplyRef points at the message a group message replies to. Text is an
// excerpt capped at 100 runes with a trailing ellipsis when truncated.
type ReplyRef struct {
	MessageID  int
	Text       string
	SenderID   int64
	SenderName string
}

// ForwardRef carries forward metadata when the raw message has any.
type ForwardRef struct {
	Name    string
	Channel string
}

type Reaction struct {
	Emoticon string
	Count    int
}

// Record is the canonical in-memory form of one fetched message. It is
// built once by the normalizer, consumed by rendering and then discarded;
// nothing persists beyond the rendered document and downloaded media.
//
// MediaPath is non-empty only when the download succeeded. HasMedia true
// with an empty MediaPath means the attachment could not be retrieved and
// renders as absent media.
type Record struct {
	ID          int
	Date        string
	Source      string
	Sender      *Sender
	Text        string
	HasMedia    bool
	MediaPath   string
	MessageLink string
	Views       int
	Forwards    int
	Reactions   []Reaction
	ReplyTo     *ReplyRef
	ForwardFrom *ForwardRef
	Entities    []Entity
}
