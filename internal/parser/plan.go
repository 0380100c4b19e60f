package parser

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dreambundler/CloneWorks/internal/models"
)

// ParsePlan decodes a JSON plan document and checks its step ordering.
func ParsePlan(r io.Reader) (*models.Plan, error) {
	data, ok, err := readDocument(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	if !ok {
		return nil, invalidPlan(errors.New("empty document"))
	}

	var plan models.Plan
	if err := models.DecodeJSON(data, &plan); err != nil {
		return nil, invalidPlan(err)
	}
	if plan.Steps == nil {
		plan.Steps = []models.Step{}
	}
	if err := plan.Validate(); err != nil {
		return nil, invalidPlan(err)
	}
	return &plan, nil
}

// ParsePlanFile decodes the plan document at path; "-" reads stdin.
func ParsePlanFile(path string) (*models.Plan, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer file.Close()
		r = file
	}

	plan, err := ParsePlan(r)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.Path = path
		}
		return nil, err
	}
	return plan, nil
}

func invalidPlan(err error) *DecodeError {
	return &DecodeError{Format: FormatJSON, Kind: ErrInvalidPlan, Err: err}
}
