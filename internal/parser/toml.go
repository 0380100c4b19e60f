package parser

import (
	"io"

	"github.com/BurntSushi/toml"

	"github.com/dreambundler/CloneWorks/internal/models"
)

// TOMLParser decodes TOML request documents.
type TOMLParser struct{}

// NewTOMLParser creates a TOML request decoder.
func NewTOMLParser() *TOMLParser {
	return &TOMLParser{}
}

// Parse decodes a TOML request. Keys the request does not recognize are
// left undecoded rather than reported.
func (p *TOMLParser) Parse(r io.Reader) (*models.Request, error) {
	data, ok, err := readDocument(r)
	if err != nil {
		return nil, err
	}

	req := &models.Request{}
	if !ok {
		return req, nil
	}
	if _, err := toml.Decode(string(data), req); err != nil {
		return nil, invalidRequest(FormatTOML, err)
	}
	return req, nil
}
