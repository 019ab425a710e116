package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSONMap is an opaque JSON object column. The inner schema is documented but
// not enforced beyond "must be a JSON object" (adoption forms, animal
// characteristics, extra image sets).
type JSONMap map[string]any

// Value implements driver.Valuer, serializing the map as JSON text.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, accepting JSON stored as []byte or string.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONMap source type %T", value)
	}

	if len(data) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(data, m)
}

// GormDataType tells GORM to use a json-capable column type.
func (JSONMap) GormDataType() string {
	return "json"
}

// DecodeJSONObject parses raw JSON that must be an object. It returns a
// validation error for any other shape (arrays, strings, numbers, null).
func DecodeJSONObject(raw json.RawMessage) (JSONMap, error) {
	if len(raw) == 0 {
		return nil, NewValidationError("adoption_form must be a JSON object")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, NewValidationError("adoption_form is not valid JSON")
		}
		return nil, NewValidationError("adoption_form must be a JSON object")
	}
	if m == nil {
		return nil, NewValidationError("adoption_form must be a JSON object")
	}
	return JSONMap(m), nil
}
