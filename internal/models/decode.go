package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// DecodeJSON unmarshals data into v. Numbers landing in untyped values, such
// as the contents of a Document, are kept as json.Number so integers wider
// than a float64 mantissa come back out unchanged.
func DecodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("multiple JSON values")
	}
	return nil
}
