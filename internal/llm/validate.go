package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/bills-tracker/internal/common"
)

// Validator checks model output against the billing schema, compiled once.
type Validator struct {
	schema  *jsonschema.Schema
	lenient bool
	logger  *slog.Logger
}

func NewValidator(schemaMap map[string]any, lenient bool, logger *slog.Logger) (*Validator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema, lenient: lenient, logger: logger}, nil
}

// Validate parses raw, checks it against the schema (with one repair pass when
// lenient), sanitizes it, and falls back to sourceText when the answer
// carries no usable text.
func (v *Validator) Validate(raw []byte, sourceText string) (*BillingParseResult, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &common.ValidationError{Reason: "response is not valid JSON", Cause: err}
	}

	if err := v.schema.Validate(doc); err != nil {
		m, ok := doc.(map[string]any)
		if !v.lenient || !ok {
			return nil, &common.ValidationError{Reason: "json does not match schema", Cause: err}
		}
		repaired, changed := RepairDocument(m)
		if vErr := v.schema.Validate(any(repaired)); vErr != nil {
			v.logger.Error("llm.validate.schema_failed", "error", vErr, "changed", changed)
			return nil, &common.ValidationError{Reason: "json does not match schema", Cause: vErr}
		}
		v.logger.Warn("llm.validate.lenient_repair_applied", "changed", changed)
		doc = repaired
	}

	result := SanitizeBillingResult(doc)
	if result.Text == nil && strings.TrimSpace(sourceText) != "" {
		result.Text = &sourceText
	}
	return &result, nil
}
