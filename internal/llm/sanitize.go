package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StripCodeFence removes an optional markdown code fence around a JSON
// payload ("```json ... ```" or bare "``` ... ```").
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// SanitizeResponse makes an oracle payload schema-friendly:
//   - coerces numeric values to strings (quantities and amounts stay strings)
//   - drops nulls and values of unusable types
//   - removes keys the schema does not know
//   - ensures items is an array of sanitized objects
//
// Returns the cleaned JSON and the list of adjusted keys.
func SanitizeResponse(s Schema, raw []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var adjusted []string

	invoiceKeys := map[string]struct{}{}
	for _, f := range s.InvoiceFields() {
		invoiceKeys[f.Key] = struct{}{}
	}
	itemKeys := map[string]struct{}{}
	for _, f := range s.Item {
		itemKeys[f.Key] = struct{}{}
	}

	for k, v := range m {
		if k == "items" {
			continue
		}
		if _, ok := invoiceKeys[k]; !ok {
			delete(m, k)
			adjusted = append(adjusted, k+"(unknown)")
			continue
		}
		cv, note := coerceString(v)
		if note != "" {
			adjusted = append(adjusted, k+note)
		}
		if cv == nil {
			delete(m, k)
		} else {
			m[k] = cv
		}
	}

	switch items := m["items"].(type) {
	case nil:
		m["items"] = []any{}
	case []any:
		clean := make([]any, 0, len(items))
		for _, el := range items {
			obj, ok := el.(map[string]any)
			if !ok {
				adjusted = append(adjusted, "items(element)")
				continue
			}
			for k, v := range obj {
				if _, ok := itemKeys[k]; !ok {
					delete(obj, k)
					adjusted = append(adjusted, "items."+k+"(unknown)")
					continue
				}
				cv, note := coerceString(v)
				if note != "" {
					adjusted = append(adjusted, "items."+k+note)
				}
				if cv == nil {
					delete(obj, k)
				} else {
					obj[k] = cv
				}
			}
			clean = append(clean, obj)
		}
		m["items"] = clean
	default:
		m["items"] = []any{}
		adjusted = append(adjusted, "items(type)")
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, adjusted, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, adjusted, nil
}

// coerceString turns a JSON value into a string or nil (drop). The note
// suffix describes the adjustment, "" when the value was already fine.
func coerceString(v any) (any, string) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), "(number)"
	case bool:
		return nil, "(bool)"
	case nil:
		return nil, "(null)"
	default:
		return nil, "(type)"
	}
}

// DecodeFields turns raw oracle output into typed fields. It strips an
// optional code fence, validates against the schema (after a lenient
// sanitize pass when strict validation fails), and unmarshals. The returned
// raw bytes are the cleaned JSON actually decoded.
func DecodeFields(s Schema, content string) (InvoiceFields, []byte, error) {
	raw := []byte(StripCodeFence(content))
	schemaMap := s.JSONSchema()

	if err := ValidateJSONAgainstSchema(schemaMap, raw); err != nil {
		cleaned, _, sErr := SanitizeResponse(s, raw)
		if sErr != nil {
			return InvoiceFields{}, raw, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := ValidateJSONAgainstSchema(schemaMap, cleaned); vErr != nil {
			return InvoiceFields{}, cleaned, fmt.Errorf("schema validation failed: %w", vErr)
		}
		raw = cleaned
	}

	var out InvoiceFields
	if err := json.Unmarshal(raw, &out); err != nil {
		return InvoiceFields{}, raw, fmt.Errorf("unmarshal fields: %w", err)
	}
	if out.Items == nil {
		out.Items = []LineItem{}
	}
	return out, raw, nil
}
