// Package schema holds the JSON Schema contract of the analytics dashboard
// and validates encoded reports against it.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed dashboard.json
var dashboardSchema []byte

const dashboardURL = "https://scry.app/schemas/dashboard.json"

// ErrInvalidDashboard is returned when a document does not satisfy the
// dashboard schema.
var ErrInvalidDashboard = errors.New("dashboard does not match schema")

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(dashboardSchema))
	if err != nil {
		return nil, fmt.Errorf("parse dashboard schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(dashboardURL, doc); err != nil {
		return nil, fmt.Errorf("add dashboard schema: %w", err)
	}
	return c.Compile(dashboardURL)
})

// ValidateDashboard checks an encoded dashboard against the schema.
func ValidateDashboard(data []byte) error {
	s, err := compiled()
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: invalid JSON: %w", ErrInvalidDashboard, err)
	}

	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDashboard, err)
	}
	return nil
}

// ValidateReport encodes v as JSON and validates the result.
func ValidateReport(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return ValidateDashboard(data)
}
