package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dreambundler/CloneWorks/internal/models"
)

var (
	// ErrInvalidRequest marks a request document whose recognized fields have the wrong shape.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidPlan marks a plan document that cannot be decoded or is out of order.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrNoRequestBlock is returned when a Markdown brief has no json, yaml or toml code block.
	ErrNoRequestBlock = errors.New("no request code block found")
)

// Format represents the encoding of a request document
type Format int

const (
	// FormatUnknown represents an unknown or unsupported file format
	FormatUnknown Format = iota
	// FormatJSON represents a JSON (.json) document
	FormatJSON
	// FormatYAML represents a YAML (.yaml, .yml) document
	FormatYAML
	// FormatTOML represents a TOML (.toml) document
	FormatTOML
	// FormatMarkdown represents a Markdown brief (.md, .markdown) with an embedded request block
	FormatMarkdown
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// DecodeError describes a document that could not be decoded.
// It matches both its Kind sentinel and the underlying error with errors.Is.
type DecodeError struct {
	Path   string // File path, "-" for stdin, empty for in-memory input
	Format Format
	Kind   error // ErrInvalidRequest or ErrInvalidPlan
	Err    error
}

func (e *DecodeError) Error() string {
	source := e.Path
	if source == "" {
		source = "input"
	}
	return fmt.Sprintf("%s: %v (%s): %v", source, e.Kind, e.Format, e.Err)
}

// Unwrap exposes the kind sentinel and the cause.
func (e *DecodeError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Parser is the interface that all request decoders implement
type Parser interface {
	// Parse reads from an io.Reader and returns the decoded Request
	Parse(r io.Reader) (*models.Request, error)
}

// DetectFormat detects the document format from the file extension.
//   - .json -> FormatJSON
//   - .yaml, .yml -> FormatYAML
//   - .toml -> FormatTOML
//   - .md, .markdown -> FormatMarkdown
//   - "-" (stdin) -> FormatJSON
func DetectFormat(filename string) Format {
	if filename == "-" {
		return FormatJSON
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatUnknown
	}
}

// NewParser creates a new parser instance for the specified format
func NewParser(format Format) (Parser, error) {
	switch format {
	case FormatJSON:
		return NewJSONParser(), nil
	case FormatYAML:
		return NewYAMLParser(), nil
	case FormatTOML:
		return NewTOMLParser(), nil
	case FormatMarkdown:
		return NewMarkdownParser(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %v", format)
	}
}

// ParseFile decodes the request document at path, choosing the decoder from
// the extension. A path of "-" reads JSON from stdin.
func ParseFile(path string) (*models.Request, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unknown file format: %s (supported: .json, .yaml, .yml, .toml, .md, .markdown)", path)
	}

	if path == "-" {
		return parseWithPath(os.Stdin, format, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return parseWithPath(file, format, path)
}

// ParseReader decodes a request document of the given format from r.
func ParseReader(r io.Reader, format Format) (*models.Request, error) {
	return parseWithPath(r, format, "")
}

func parseWithPath(r io.Reader, format Format, path string) (*models.Request, error) {
	p, err := NewParser(format)
	if err != nil {
		return nil, err
	}

	req, err := p.Parse(r)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.Path = path
			return nil, decodeErr
		}
		return nil, fmt.Errorf("failed to read request: %w", err)
	}
	return req, nil
}

// readDocument reads all of r and reports whether it holds anything but whitespace.
func readDocument(r io.Reader) ([]byte, bool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}
	return data, len(bytes.TrimSpace(data)) > 0, nil
}

func invalidRequest(format Format, err error) *DecodeError {
	return &DecodeError{Format: format, Kind: ErrInvalidRequest, Err: err}
}
