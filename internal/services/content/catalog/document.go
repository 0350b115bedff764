package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errNotObject = errors.New("document must be a JSON object")
	errMissingID = errors.New("document id is required")
)

// Document is one parsed content file, keyed by its declared id.
//
// Raw keeps the file's JSON so responses reproduce the document without a
// lossy round trip through Go types.
type Document struct {
	ID  string
	Raw json.RawMessage
}

// ParseDocument validates that data is a JSON object with a usable id.
//
// String ids are used as-is; numeric ids use their literal JSON text, so
// {"id": 7} is keyed "7".
func ParseDocument(data []byte) (Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	if fields == nil {
		return Document{}, errNotObject
	}
	rawID, ok := fields["id"]
	if !ok {
		return Document{}, errMissingID
	}
	id, err := parseID(rawID)
	if err != nil {
		return Document{}, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return Document{}, fmt.Errorf("compact document: %w", err)
	}
	return Document{ID: id, Raw: compact.Bytes()}, nil
}

func parseID(raw json.RawMessage) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return "", fmt.Errorf("decode document id: %w", err)
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", errMissingID
		}
		return v, nil
	case json.Number:
		// Numeric ids are keyed by their shortest decimal form, so 7, 7.0
		// and 7e0 name the same document.
		f, err := v.Float64()
		if err != nil {
			return "", fmt.Errorf("document id %s is not a finite number: %w", v, err)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case nil:
		return "", errMissingID
	default:
		return "", fmt.Errorf("document id must be a string or number, got %T", v)
	}
}

// MarshalJSON writes the stored document unchanged.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d.Raw) == 0 {
		return []byte("null"), nil
	}
	return d.Raw, nil
}

// Decode unmarshals the document into v.
func (d Document) Decode(v any) error {
	if len(d.Raw) == 0 {
		return errNotObject
	}
	return json.Unmarshal(d.Raw, v)
}

// Fields returns the document as a generic JSON object.
func (d Document) Fields() (map[string]any, error) {
	var fields map[string]any
	if err := d.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
