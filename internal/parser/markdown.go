package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dreambundler/CloneWorks/internal/models"
)

// MarkdownParser reads a request embedded in a Markdown brief. The first
// fenced code block tagged json, yaml, yml or toml is decoded as the request;
// the rest of the document is prose and ignored.
type MarkdownParser struct {
	markdown goldmark.Markdown
}

// NewMarkdownParser creates a Markdown brief decoder.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		markdown: goldmark.New(),
	}
}

// Parse extracts and decodes the request block.
func (p *MarkdownParser) Parse(r io.Reader) (*models.Request, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	block, format, found := p.findRequestBlock(content)
	if !found {
		return nil, invalidRequest(FormatMarkdown, ErrNoRequestBlock)
	}

	sub, err := NewParser(format)
	if err != nil {
		return nil, err
	}
	req, err := sub.Parse(bytes.NewReader(block))
	if err != nil {
		// Report the brief as the failing document, keep the block's cause
		if decodeErr, ok := err.(*DecodeError); ok {
			return nil, &DecodeError{
				Format: FormatMarkdown,
				Kind:   ErrInvalidRequest,
				Err:    fmt.Errorf("%s block: %w", format, decodeErr.Err),
			}
		}
		return nil, err
	}
	return req, nil
}

// findRequestBlock walks the document for the first fenced code block with a
// recognized info string.
func (p *MarkdownParser) findRequestBlock(source []byte) ([]byte, Format, bool) {
	doc := p.markdown.Parser().Parse(text.NewReader(source))

	var (
		block  []byte
		format Format
		found  bool
	)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		blockFormat := fenceFormat(string(fenced.Language(source)))
		if blockFormat == FormatUnknown {
			return ast.WalkSkipChildren, nil
		}

		var buf bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			buf.Write(segment.Value(source))
		}

		block = buf.Bytes()
		format = blockFormat
		found = true
		return ast.WalkStop, nil
	})

	return block, format, found
}

// fenceFormat maps a code fence language to a document format.
func fenceFormat(lang string) Format {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	case "toml":
		return FormatTOML
	default:
		return FormatUnknown
	}
}
