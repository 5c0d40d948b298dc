package notebook

import (
	"encoding/json"
	"fmt"
	"time"
)

// Node is one piece of entry content: either a styled text run or an
// embedded image token. Exactly one of the concrete types is present.
type Node interface {
	isNode()
}

// TextRun is a span of text with uniform styling.
type TextRun struct {
	Text       string `json:"text"`
	Bold       bool   `json:"bold,omitempty"`
	Italic     bool   `json:"italic,omitempty"`
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`
}

func (TextRun) isNode() {}

// ImageToken references an image file stored in the entry's directory.
// Width and Height are the source dimensions in pixels.
type ImageToken struct {
	Ref    string `json:"ref"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (ImageToken) isNode() {}

// Content is the ordered run sequence of one entry.
type Content []Node

// Entry is one node of the notebook hierarchy. Children order is display
// order. ParentID is empty for roots.
type Entry struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id,omitempty"`
	Children  []string  `json:"children"`
	Content   Content   `json:"content"`
	Collapsed bool      `json:"collapsed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasChildren reports whether the entry has at least one child.
func (e *Entry) HasChildren() bool { return len(e.Children) > 0 }

// PlainText concatenates the text runs, ignoring image tokens.
func (e *Entry) PlainText() string {
	var out []byte
	for _, n := range e.Content {
		if r, ok := n.(TextRun); ok {
			out = append(out, r.Text...)
		}
	}
	return string(out)
}

// Clone returns a deep copy. Cached snapshots hand out clones so callers
// can't mutate cache-owned data.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Children = append([]string(nil), e.Children...)
	c.Content = append(Content(nil), e.Content...)
	return &c
}

// node wire format: {"type":"text",...} or {"type":"image",...}.
type rawNode struct {
	Type string `json:"type"`

	Text       string `json:"text,omitempty"`
	Bold       bool   `json:"bold,omitempty"`
	Italic     bool   `json:"italic,omitempty"`
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`

	Ref    string `json:"ref,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// MarshalJSON encodes the run sequence with explicit type tags.
func (c Content) MarshalJSON() ([]byte, error) {
	raw := make([]rawNode, 0, len(c))
	for _, n := range c {
		switch v := n.(type) {
		case TextRun:
			raw = append(raw, rawNode{
				Type: "text", Text: v.Text, Bold: v.Bold, Italic: v.Italic,
				Color: v.Color, Background: v.Background,
			})
		case ImageToken:
			raw = append(raw, rawNode{
				Type: "image", Ref: v.Ref, Width: v.Width, Height: v.Height,
			})
		default:
			return nil, fmt.Errorf("content: unknown node type %T", n)
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes type-tagged runs. Unknown tags are an error so a
// malformed entry file fails loudly at the load boundary.
func (c *Content) UnmarshalJSON(data []byte) error {
	var raw []rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Content, 0, len(raw))
	for i, r := range raw {
		switch r.Type {
		case "text":
			out = append(out, TextRun{
				Text: r.Text, Bold: r.Bold, Italic: r.Italic,
				Color: r.Color, Background: r.Background,
			})
		case "image":
			out = append(out, ImageToken{Ref: r.Ref, Width: r.Width, Height: r.Height})
		default:
			return fmt.Errorf("content: run %d has unknown type %q", i, r.Type)
		}
	}
	*c = out
	return nil
}
