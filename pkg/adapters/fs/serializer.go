package fs

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/learn/pkg/core"
)

// IDKey is the frontmatter key holding a note's identifier.
const IDKey = "uuid"

// frontmatter is the raw split of a Markdown note.
type frontmatter struct {
	// Present is false when the note has no header block.
	Present bool
	// Open is the opening delimiter line including its line ending.
	Open []byte
	// YAML is the block between the delimiters.
	YAML []byte
	// Rest starts at the closing delimiter line.
	Rest []byte
	// Body is the content after the closing delimiter line.
	Body []byte
}

// splitFrontmatter locates the header block of a note. Body and YAML are
// sub-slices of data. A leading "---" without a closing delimiter is a
// horizontal rule, so the note has no header.
func splitFrontmatter(data []byte) (frontmatter, error) {
	var open []byte
	switch {
	case bytes.HasPrefix(data, []byte("---\n")):
		open = data[:4]
	case bytes.HasPrefix(data, []byte("---\r\n")):
		open = data[:5]
	default:
		return frontmatter{Body: data}, nil
	}

	rest := data[len(open):]
	offset := 0
	for {
		line := rest[offset:]
		end := bytes.IndexByte(line, '\n')
		var current []byte
		if end < 0 {
			current = line
		} else {
			current = line[:end]
		}
		if string(bytes.TrimRight(current, "\r")) == "---" {
			body := rest[offset+len(current):]
			body = bytes.TrimPrefix(body, []byte("\n"))
			return frontmatter{
				Present: true,
				Open:    open,
				YAML:    rest[:offset],
				Rest:    rest[offset:],
				Body:    body,
			}, nil
		}
		if end < 0 {
			return frontmatter{Body: data}, nil
		}
		offset += end + 1
	}
}

// MarkdownSerializer reads and writes notes with a YAML frontmatter header.
type MarkdownSerializer struct{}

// Parse splits data into header metadata and body.
func (MarkdownSerializer) Parse(data []byte) (core.Note, error) {
	fm, err := splitFrontmatter(data)
	if err != nil {
		return core.Note{}, err
	}

	note := core.Note{Metadata: make(core.Metadata)}
	if fm.Present {
		if err := yaml.Unmarshal(fm.YAML, &note.Metadata); err != nil {
			return core.Note{}, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		if note.Metadata == nil {
			note.Metadata = make(core.Metadata)
		}
		note.Content = strings.TrimLeft(string(fm.Body), "\r\n")
		return note, nil
	}
	note.Content = string(fm.Body)
	return note, nil
}

// Serialize writes the note back with its metadata as frontmatter.
// Key order follows yaml.v3 map encoding.
func (MarkdownSerializer) Serialize(note core.Note) ([]byte, error) {
	var buf bytes.Buffer
	if len(note.Metadata) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(map[string]any(note.Metadata)); err != nil {
			return nil, err
		}
		encoder.Close()
		buf.WriteString("---\n")
	}
	buf.WriteString(note.Content)
	return buf.Bytes(), nil
}

// ValidID reports whether s is a canonical 36-character dashed hex identifier.
func ValidID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// identifierOf returns the identifier stored in the note header, if valid.
func identifierOf(meta core.Metadata) (string, bool) {
	id, ok := meta[IDKey].(string)
	if !ok || !ValidID(id) {
		return "", false
	}
	return id, true
}

var idLine = regexp.MustCompile(`(?m)^` + IDKey + `:[^\r\n]*`)

// injectIdentifier returns data with id set in the header. An existing
// (invalid) id line is replaced; otherwise the id becomes the first header
// line, and a header is created when missing. All other bytes are preserved.
func injectIdentifier(data []byte, id string) ([]byte, error) {
	fm, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	line := IDKey + ": " + id

	if !fm.Present {
		var buf bytes.Buffer
		buf.WriteString("---\n" + line + "\n---\n\n")
		buf.Write(data)
		return buf.Bytes(), nil
	}

	var buf bytes.Buffer
	buf.Write(fm.Open)
	if loc := idLine.FindIndex(fm.YAML); loc != nil {
		buf.Write(fm.YAML[:loc[0]])
		buf.WriteString(line)
		buf.Write(fm.YAML[loc[1]:])
	} else {
		buf.WriteString(line)
		buf.WriteString(strings.TrimPrefix(string(fm.Open), "---"))
		buf.Write(fm.YAML)
	}
	buf.Write(fm.Rest)
	return buf.Bytes(), nil
}
