package parser

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dreambundler/CloneWorks/internal/models"
)

// YAMLParser decodes YAML request documents.
type YAMLParser struct{}

// NewYAMLParser creates a YAML request decoder.
func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

// Parse decodes a YAML request. Mapping keys that are not strings (`1: 0.5`)
// are rewritten as their string form so every document stays JSON encodable.
func (p *YAMLParser) Parse(r io.Reader) (*models.Request, error) {
	data, ok, err := readDocument(r)
	if err != nil {
		return nil, err
	}

	req := &models.Request{}
	if !ok {
		return req, nil
	}
	if err := yaml.Unmarshal(data, req); err != nil {
		return nil, invalidRequest(FormatYAML, err)
	}

	stringifyDocument(req.Style)
	stringifyDocument(req.Pose)
	stringifyDocument(req.Output)
	for i, v := range req.Garments {
		req.Garments[i] = stringifyKeys(v)
	}
	return req, nil
}

func stringifyDocument(doc models.Document) {
	for k, v := range doc {
		doc[k] = stringifyKeys(v)
	}
}

// stringifyKeys returns v with every nested map[any]any replaced by a
// map[string]any. Keys are formatted the way JSON would print them.
func stringifyKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = stringifyKeys(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[keyString(k)] = stringifyKeys(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = stringifyKeys(val)
		}
		return t
	default:
		return v
	}
}

func keyString(k any) string {
	if k == nil {
		return "null"
	}
	return fmt.Sprint(k)
}
