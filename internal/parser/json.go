package parser

import (
	"io"

	"github.com/dreambundler/CloneWorks/internal/models"
)

// JSONParser decodes JSON request documents.
type JSONParser struct{}

// NewJSONParser creates a JSON request decoder.
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// Parse decodes a JSON request. Empty input is an empty request; unknown
// fields are ignored. Numbers inside documents keep their exact literal.
func (p *JSONParser) Parse(r io.Reader) (*models.Request, error) {
	data, ok, err := readDocument(r)
	if err != nil {
		return nil, err
	}

	req := &models.Request{}
	if !ok {
		return req, nil
	}
	if err := models.DecodeJSON(data, req); err != nil {
		return nil, invalidRequest(FormatJSON, err)
	}
	return req, nil
}
