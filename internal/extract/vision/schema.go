package vision

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/medbillguard/medbillguard/constants"
)

// BuildBillJSONSchema returns the JSON-Schema (draft 2020-12 subset) the
// model's output must match. It doubles as the structured-output constraint
// sent with the prompt and the local validation gate.
func BuildBillJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":       map[string]any{"type": "string", "minLength": 1},
			"category":   map[string]any{"type": "string", "enum": constants.AsStringSlice()},
			"quantity":   map[string]any{"type": "integer", "minimum": 1},
			"unit":       map[string]any{"type": "string"},
			"mrp":        map[string]any{"type": "number"},
			"unit_price": map[string]any{"type": "number"},
			"total":      map[string]any{"type": "number"},
		},
		"required": []string{"name"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"hospital_name":   map[string]any{"type": "string"},
			"bill_date":       map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"bill_number":     map[string]any{"type": "string"},
			"is_medical_bill": map[string]any{"type": "boolean"},
			"confidence":      map[string]any{"type": "number", "minimum": 0},
			"items":           map[string]any{"type": "array", "items": item},
			"subtotal":        map[string]any{"type": "number"},
			"discount":        map[string]any{"type": "number"},
			"tax":             map[string]any{"type": "number"},
			"cgst":            map[string]any{"type": "number"},
			"sgst":            map[string]any{"type": "number"},
			"grand_total":     map[string]any{"type": "number"},
		},
		"required": []string{"is_medical_bill", "items"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
