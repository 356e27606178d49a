package docfile

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/marginalia/internal/engine/annotation"
	"github.com/dshills/marginalia/internal/engine/document"
)

// Errors returned by docfile.
var (
	// ErrUnsupportedFormat indicates the file extension is not recognised.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrInvalidDocument indicates a decoded file does not describe valid
	// content.
	ErrInvalidDocument = errors.New("invalid document")
)

// Format identifies a document file encoding.
type Format uint8

const (
	FormatJSON Format = iota
	FormatYAML
	FormatText
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".txt", ".text":
		return FormatText, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// File is the serialised form of a document.
type File struct {
	Blocks      []Block             `json:"blocks" yaml:"blocks"`
	Selection   *document.Selection `json:"selection,omitempty" yaml:"selection,omitempty"`
	Annotations []Annotation        `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Block is the serialised form of a document.Block.
type Block struct {
	Key               string        `json:"key" yaml:"key"`
	Type              string        `json:"type,omitempty" yaml:"type,omitempty"`
	Text              string        `json:"text" yaml:"text"`
	InlineStyleRanges []StyleRange  `json:"inlineStyleRanges,omitempty" yaml:"inlineStyleRanges,omitempty"`
	EntityRanges      []EntityRange `json:"entityRanges,omitempty" yaml:"entityRanges,omitempty"`
}

// StyleRange applies Style to Length characters starting at Offset.
type StyleRange struct {
	Offset int    `json:"offset" yaml:"offset"`
	Length int    `json:"length" yaml:"length"`
	Style  string `json:"style" yaml:"style"`
}

// EntityRange attaches entity Key to Length characters starting at Offset.
type EntityRange struct {
	Offset int    `json:"offset" yaml:"offset"`
	Length int    `json:"length" yaml:"length"`
	Key    string `json:"key" yaml:"key"`
}

// Annotation is one serialised annotation entry.
type Annotation struct {
	Selection document.Selection `json:"selection" yaml:"selection"`
	Kind      string             `json:"kind" yaml:"kind"`
	Data      any                `json:"data,omitempty" yaml:"data,omitempty"`
}

// payloadEnvelope mirrors the annotation payload envelope with a decoded
// data field so it can be re-encoded as YAML.
type payloadEnvelope struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// Encode converts content to its file form.
func Encode(c document.Content) (File, error) {
	f := File{Blocks: make([]Block, 0, c.BlockCount())}
	for i := 0; i < c.BlockCount(); i++ {
		f.Blocks = append(f.Blocks, encodeBlock(c.BlockAt(i)))
	}

	sel := c.SelectionAfter()
	f.Selection = &sel

	for _, e := range annotation.Entries(annotation.Get(c)) {
		raw, err := annotation.MarshalPayload(e.Payload)
		if err != nil {
			return File{}, err
		}
		var env payloadEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return File{}, fmt.Errorf("annotation %s: %w", e.Selection, err)
		}
		f.Annotations = append(f.Annotations, Annotation{
			Selection: e.Selection,
			Kind:      env.Kind,
			Data:      env.Data,
		})
	}
	return f, nil
}

func encodeBlock(b document.Block) Block {
	out := Block{Key: b.Key, Type: b.Type, Text: b.Text}

	// Style ranges: one open range per style name, closed when a
	// character no longer carries the style.
	open := make(map[string]int)
	var order []string
	closeRange := func(name string, end int) {
		start := open[name]
		out.InlineStyleRanges = append(out.InlineStyleRanges, StyleRange{
			Offset: start, Length: end - start, Style: name,
		})
		delete(open, name)
	}

	n := b.Len()
	for i := 0; i <= n; i++ {
		var style document.Style
		if i < n {
			style = b.StyleAt(i)
		}
		kept := order[:0]
		for _, name := range order {
			if style.Has(name) {
				kept = append(kept, name)
				continue
			}
			closeRange(name, i)
		}
		order = kept
		for _, name := range style {
			if _, ok := open[name]; !ok {
				open[name] = i
				order = append(order, name)
			}
		}
	}

	entityStart, entity := 0, ""
	for i := 0; i <= n; i++ {
		var key string
		if i < n {
			key = b.EntityAt(i)
		}
		if key == entity {
			continue
		}
		if entity != "" {
			out.EntityRanges = append(out.EntityRanges, EntityRange{
				Offset: entityStart, Length: i - entityStart, Key: entity,
			})
		}
		entityStart, entity = i, key
	}

	slices.SortFunc(out.InlineStyleRanges, func(a, b StyleRange) int {
		if a.Offset != b.Offset {
			return cmp.Compare(a.Offset, b.Offset)
		}
		return strings.Compare(a.Style, b.Style)
	})
	return out
}

// Decode converts a file back to content.
func Decode(f File) (document.Content, error) {
	blocks := make([]document.Block, 0, len(f.Blocks))
	seen := make(map[string]bool, len(f.Blocks))
	for i, fb := range f.Blocks {
		if fb.Key == "" {
			return document.Content{}, fmt.Errorf("%w: block %d has no key", ErrInvalidDocument, i)
		}
		if seen[fb.Key] {
			return document.Content{}, fmt.Errorf("%w: duplicate block key %q", ErrInvalidDocument, fb.Key)
		}
		seen[fb.Key] = true

		b, err := decodeBlock(fb)
		if err != nil {
			return document.Content{}, err
		}
		blocks = append(blocks, b)
	}

	c := document.NewContent(blocks...)
	if f.Selection != nil {
		if err := checkSelection(c, *f.Selection); err != nil {
			return document.Content{}, err
		}
		c = c.WithSelectionBefore(*f.Selection).WithSelectionAfter(*f.Selection)
	}

	if len(f.Annotations) == 0 {
		return c, nil
	}
	m := make(annotation.Map, len(f.Annotations))
	for _, a := range f.Annotations {
		if err := checkSelection(c, a.Selection); err != nil {
			return document.Content{}, err
		}
		raw, err := json.Marshal(payloadEnvelope{Kind: a.Kind, Data: jsonSafe(a.Data)})
		if err != nil {
			return document.Content{}, fmt.Errorf("annotation %s: %w", a.Selection, err)
		}
		p, err := annotation.UnmarshalPayload(raw)
		if err != nil {
			return document.Content{}, fmt.Errorf("annotation %s: %w", a.Selection, err)
		}
		m[a.Selection] = p
	}
	return annotation.Replace(c, m), nil
}

func decodeBlock(fb Block) (document.Block, error) {
	b := document.NewBlock(fb.Key, fb.Text)
	if fb.Type != "" {
		b.Type = fb.Type
	}
	n := b.Len()

	inBounds := func(offset, length int) bool {
		return offset >= 0 && length >= 0 && offset+length <= n
	}
	for _, r := range fb.InlineStyleRanges {
		if !inBounds(r.Offset, r.Length) {
			return document.Block{}, fmt.Errorf("%w: block %q style %q range %d+%d outside %d characters",
				ErrInvalidDocument, fb.Key, r.Style, r.Offset, r.Length, n)
		}
		for i := r.Offset; i < r.Offset+r.Length; i++ {
			b.Chars[i].Style = b.Chars[i].Style.With(r.Style)
		}
	}
	for _, r := range fb.EntityRanges {
		if !inBounds(r.Offset, r.Length) {
			return document.Block{}, fmt.Errorf("%w: block %q entity %q range %d+%d outside %d characters",
				ErrInvalidDocument, fb.Key, r.Key, r.Offset, r.Length, n)
		}
		for i := r.Offset; i < r.Offset+r.Length; i++ {
			b.Chars[i].Entity = r.Key
		}
	}
	return b, nil
}

func checkSelection(c document.Content, sel document.Selection) error {
	for _, p := range []struct {
		key    string
		offset int
	}{{sel.AnchorKey, sel.AnchorOffset}, {sel.FocusKey, sel.FocusOffset}} {
		b, ok := c.BlockForKey(p.key)
		if !ok {
			return fmt.Errorf("%w: selection %s: %w", ErrInvalidDocument, sel, document.ErrBlockNotFound)
		}
		if p.offset < 0 || p.offset > b.Len() {
			return fmt.Errorf("%w: selection %s: offset %d outside block %q", ErrInvalidDocument, sel, p.offset, p.key)
		}
	}
	return nil
}

// jsonSafe converts YAML decoded values into values encoding/json accepts.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonSafe(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonSafe(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonSafe(val)
		}
		return out
	default:
		return v
	}
}

// Marshal encodes content in the given format.
func Marshal(c document.Content, format Format) ([]byte, error) {
	if format == FormatText {
		return []byte(c.PlainText("\n") + "\n"), nil
	}

	f, err := Encode(c)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Unmarshal decodes content in the given format.
func Unmarshal(data []byte, format Format) (document.Content, error) {
	var f File
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &f); err != nil {
			return document.Content{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return document.Content{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	case FormatText:
		return fromText(string(data)), nil
	default:
		return document.Content{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return Decode(f)
}

// fromText builds one block per line. Keys are positional so that two
// versions of the same text file share keys where their lines align.
func fromText(s string) document.Content {
	s = strings.TrimSuffix(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lines := strings.Split(s, "\n")
	blocks := make([]document.Block, len(lines))
	for i, line := range lines {
		blocks[i] = document.NewBlock(fmt.Sprintf("p%d", i), line)
	}
	return document.NewContent(blocks...)
}

// Read loads a document, choosing the format from the extension.
func Read(path string) (document.Content, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return document.Content{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Content{}, err
	}
	c, err := Unmarshal(data, format)
	if err != nil {
		return document.Content{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Write saves a document, choosing the format from the extension.
// The file is replaced atomically.
func Write(path string, c document.Content) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(c, format)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
