package annotation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names a payload variant.
type Kind string

// Known payload kinds.
const (
	KindComment    Kind = "comment"
	KindSuggestion Kind = "suggestion"
	KindHighlight  Kind = "highlight"
)

// Payload is the value attached to an annotated range.
// The set of implementations is closed: Comment, Suggestion, Highlight
// and Opaque.
type Payload interface {
	Kind() Kind
	isPayload()
}

// Message is a single authored message of a comment thread.
type Message struct {
	Author   string    `json:"author" yaml:"author"`
	AuthorID string    `json:"authorId,omitempty" yaml:"authorId,omitempty"`
	Date     time.Time `json:"date" yaml:"date"`
	Msg      string    `json:"msg" yaml:"msg"`
}

// Comment is an inline comment with its replies.
type Comment struct {
	ID       string `json:"id" yaml:"id"`
	Message  `yaml:",inline"`
	Replies  []Message `json:"replies,omitempty" yaml:"replies,omitempty"`
	Resolved bool      `json:"resolved,omitempty" yaml:"resolved,omitempty"`
}

// NewComment creates a comment with a generated ID.
func NewComment(author, msg string, date time.Time) Comment {
	return Comment{
		ID:      uuid.NewString(),
		Message: Message{Author: author, Date: date, Msg: msg},
	}
}

// Kind returns KindComment.
func (Comment) Kind() Kind { return KindComment }
func (Comment) isPayload() {}

// Reply returns a copy of the comment with m appended to its replies.
func (c Comment) Reply(m Message) Comment {
	replies := make([]Message, len(c.Replies), len(c.Replies)+1)
	copy(replies, c.Replies)
	c.Replies = append(replies, m)
	return c
}

// Suggestion marks a tracked change proposed by an author.
type Suggestion struct {
	// Type is the kind of change, e.g. ADD_SUGGESTION or DELETE_SUGGESTION.
	Type     string    `json:"type" yaml:"type"`
	Author   string    `json:"author" yaml:"author"`
	AuthorID string    `json:"authorId,omitempty" yaml:"authorId,omitempty"`
	Date     time.Time `json:"date" yaml:"date"`
}

// Kind returns KindSuggestion.
func (Suggestion) Kind() Kind { return KindSuggestion }
func (Suggestion) isPayload() {}

// Highlight is a named highlight with an optional note.
type Highlight struct {
	Tag  string `json:"tag" yaml:"tag"`
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Kind returns KindHighlight.
func (Highlight) Kind() Kind { return KindHighlight }
func (Highlight) isPayload() {}

// Opaque holds a payload of a kind this version does not know.
type Opaque struct {
	Type string
	Data []byte
}

// Kind returns the stored kind.
func (o Opaque) Kind() Kind { return Kind(o.Type) }
func (Opaque) isPayload()   {}

// envelope is the serialised form of a payload.
type envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalPayload encodes p as a {"kind", "data"} envelope.
func MarshalPayload(p Payload) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if o, ok := p.(Opaque); ok {
		data = o.Data
		if len(data) == 0 {
			data = []byte("null")
		}
	} else {
		data, err = json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", p.Kind(), err)
		}
	}
	return json.Marshal(envelope{Kind: p.Kind(), Data: data})
}

// UnmarshalPayload decodes an envelope produced by MarshalPayload.
// Unknown kinds decode to Opaque.
func UnmarshalPayload(raw []byte) (Payload, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if env.Kind == "" {
		return nil, ErrUnknownKind
	}

	switch env.Kind {
	case KindComment:
		var c Comment
		if err := decode(env.Data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case KindSuggestion:
		var s Suggestion
		if err := decode(env.Data, &s); err != nil {
			return nil, err
		}
		return s, nil
	case KindHighlight:
		var h Highlight
		if err := decode(env.Data, &h); err != nil {
			return nil, err
		}
		return h, nil
	default:
		return Opaque{Type: string(env.Kind), Data: append([]byte(nil), env.Data...)}, nil
	}
}

func decode(data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
