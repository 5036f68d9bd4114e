// Package markup converts blocks to and from their comment-delimited
// document form:
//
//	<!-- wp:paragraph {"content":"Hello"} /-->
//
//	<!-- wp:quote {"value":"..."} -->
//	<p>rendered content</p>
//	<!-- /wp:quote -->
//
// Serialization always emits the self-closing form: blocks in this system
// carry their payload entirely in attributes, never as inner content.
// Parsing accepts both forms and skips anything between an opener and its
// matching closer, balancing nested same-name pairs. Prose and foreign
// comments outside block delimiters are skipped.
//
// The default "core/" namespace is stripped from serialized names and
// restored on parse, so "core/paragraph" round-trips through "paragraph".
package markup

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ptasker/gutenberg/internal/block"
)

// coreNamespace is the implicit namespace dropped from comment names.
const coreNamespace = "core/"

// CommentName strips the default namespace for the serialized form.
func CommentName(typeName string) string {
	return strings.TrimPrefix(typeName, coreNamespace)
}

// TypeName restores the default namespace on a parsed comment name.
func TypeName(commentName string) string {
	if strings.Contains(commentName, "/") {
		return commentName
	}
	return coreNamespace + commentName
}

// Serialize renders one block as a self-closing comment fragment.
// Attributes are omitted entirely when empty.
func Serialize(b block.Block) (string, error) {
	name := CommentName(b.Type)
	if len(b.Attributes) == 0 {
		return fmt.Sprintf("<!-- wp:%s /-->", name), nil
	}
	attrs, err := encodeAttributes(b.Attributes)
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", b.Type, err)
	}
	return fmt.Sprintf("<!-- wp:%s %s /-->", name, attrs), nil
}

// SerializeAll renders blocks as a document, one fragment per block
// separated by blank lines.
func SerializeAll(blocks []block.Block) (string, error) {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		s, err := Serialize(b)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, "\n\n"), nil
}

// encodeAttributes renders attribute JSON with every sequence that could
// terminate the surrounding HTML comment escaped. encoding/json already
// escapes "<", ">" and "&"; "--" needs the extra pass.
func encodeAttributes(attrs block.Attributes) (string, error) {
	raw, err := json.Marshal(map[string]any(attrs))
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(raw), "--", "\\u002d\\u002d"), nil
}

// ParseError reports malformed block markup.
type ParseError struct {
	// Offset is the byte position of the failing delimiter.
	Offset int

	// Reason is a human-readable description.
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("markup: %s at offset %d", e.Reason, e.Offset)
}

// Parser extracts blocks from comment-delimited documents. Every parsed
// block receives a fresh id from IDs.
type Parser struct {
	IDs block.IDGenerator
}

// ParseDocument scans a document for top-level blocks in order. Content
// between an opener and its closer is skipped, as is anything outside
// block delimiters.
func (p Parser) ParseDocument(doc string) ([]block.Block, error) {
	var blocks []block.Block
	pos := 0
	for {
		tok, next, err := nextToken(doc, pos)
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return blocks, nil
		}
		pos = next
		if tok.closer {
			// Stray closer with no opener; treated like prose.
			continue
		}
		b := block.Block{
			ID:         p.IDs.NewID(),
			Type:       TypeName(tok.name),
			Attributes: tok.attrs,
		}
		if !tok.void {
			pos, err = skipToCloser(doc, pos, tok.name)
			if err != nil {
				return nil, err
			}
		}
		blocks = append(blocks, b)
	}
}

// ParseFirst returns the first top-level block in content. Content with
// several top-level blocks is valid; only the first is returned.
func (p Parser) ParseFirst(content string) (block.Block, error) {
	blocks, err := p.ParseDocument(content)
	if err != nil {
		return block.Block{}, err
	}
	if len(blocks) == 0 {
		return block.Block{}, &ParseError{Offset: 0, Reason: "no block found"}
	}
	return blocks[0], nil
}

// token is one parsed block delimiter.
type token struct {
	name   string
	attrs  block.Attributes
	closer bool
	void   bool
}

// commentNamePattern matches block names inside comments, where the
// namespace may be absent.
var commentNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*(/[a-z][a-z0-9-]*)?$`)

// nextToken finds the next block delimiter at or after pos. A nil token
// with no error means the document is exhausted.
func nextToken(doc string, pos int) (*token, int, error) {
	for {
		rel := strings.Index(doc[pos:], "<!--")
		if rel < 0 {
			return nil, len(doc), nil
		}
		start := pos + rel
		body := start + 4
		end := strings.Index(doc[body:], "-->")
		if end < 0 {
			return nil, 0, &ParseError{Offset: start, Reason: "unterminated comment"}
		}
		after := body + end + 3

		tok, err := parseDelimiter(doc[body:body+end], start)
		if err != nil {
			return nil, 0, err
		}
		if tok == nil {
			// Plain HTML comment; skip it.
			pos = after
			continue
		}
		return tok, after, nil
	}
}

// parseDelimiter interprets the inside of one comment. A nil token means
// the comment is not block grammar and should be skipped.
func parseDelimiter(inner string, offset int) (*token, error) {
	s := strings.TrimSpace(inner)

	closer := strings.HasPrefix(s, "/")
	if closer {
		s = s[1:]
	}
	if !strings.HasPrefix(s, "wp:") {
		return nil, nil
	}
	s = s[3:]

	void := false
	if !closer && strings.HasSuffix(s, "/") {
		void = true
		s = strings.TrimSpace(s[:len(s)-1])
	}

	name := s
	rawAttrs := ""
	if i := strings.IndexAny(s, " \t\r\n"); i >= 0 {
		name = s[:i]
		rawAttrs = strings.TrimSpace(s[i+1:])
	}
	if !commentNamePattern.MatchString(name) {
		return nil, nil
	}
	if closer && rawAttrs != "" {
		return nil, nil
	}

	var attrs block.Attributes
	if rawAttrs != "" {
		if !strings.HasPrefix(rawAttrs, "{") {
			return nil, &ParseError{Offset: offset, Reason: fmt.Sprintf("malformed attributes for %q", name)}
		}
		if err := json.Unmarshal([]byte(rawAttrs), &attrs); err != nil {
			return nil, &ParseError{Offset: offset, Reason: fmt.Sprintf("invalid attributes JSON for %q: %v", name, err)}
		}
	}

	return &token{name: name, attrs: attrs, closer: closer, void: void}, nil
}

// skipToCloser advances past the closer matching an opener of name,
// balancing nested same-name pairs.
func skipToCloser(doc string, pos int, name string) (int, error) {
	depth := 1
	for depth > 0 {
		tok, next, err := nextToken(doc, pos)
		if err != nil {
			return 0, err
		}
		if tok == nil {
			return 0, &ParseError{Offset: pos, Reason: fmt.Sprintf("unterminated block %q", name)}
		}
		pos = next
		if tok.name != name {
			continue
		}
		switch {
		case tok.closer:
			depth--
		case !tok.void:
			depth++
		}
	}
	return pos, nil
}
