package catalog

import (
	"encoding/json"
	"testing"
)

func TestParseDocumentStringID(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"id": "x", "name": "Foo"}`))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	if doc.ID != "x" {
		t.Fatalf("ID = %q, want x", doc.ID)
	}
	if string(doc.Raw) != `{"id":"x","name":"Foo"}` {
		t.Fatalf("Raw = %s", doc.Raw)
	}
}

func TestParseDocumentNumericID(t *testing.T) {
	tests := map[string]string{
		`{"id": 7, "name": "Seven"}`:   "7",
		`{"id": 7.0}`:                  "7",
		`{"id": 1e3}`:                  "1000",
		`{"id": -2.5}`:                 "-2.5",
		`{"id": 12345678901234567890}`: "12345678901234567000",
		`{"id": 0.1}`:                  "0.1",
	}
	for raw, want := range tests {
		doc, err := ParseDocument([]byte(raw))
		if err != nil {
			t.Fatalf("parse %s: %v", raw, err)
		}
		if doc.ID != want {
			t.Fatalf("ID for %s = %q, want %q", raw, doc.ID, want)
		}
	}
}

func TestNumericIDsCollideOnValue(t *testing.T) {
	index := NewIndex()
	for _, raw := range []string{`{"id": 7, "v": 1}`, `{"id": 7.0, "v": 2}`} {
		doc, err := ParseDocument([]byte(raw))
		if err != nil {
			t.Fatalf("parse %s: %v", raw, err)
		}
		index.Put(doc)
	}
	if index.Len() != 1 {
		t.Fatalf("len = %d, want 1", index.Len())
	}
	doc, ok := index.Get("7")
	if !ok {
		t.Fatal("expected id 7")
	}
	fields, err := doc.Fields()
	if err != nil || fields["v"] != float64(2) {
		t.Fatalf("fields = %v, %v", fields, err)
	}
}

func TestParseDocumentRejectsInvalidInput(t *testing.T) {
	tests := map[string]string{
		"malformed":   `{"id": "x"`,
		"array":       `[{"id": "x"}]`,
		"null":        `null`,
		"missing id":  `{"name": "Foo"}`,
		"null id":     `{"id": null}`,
		"blank id":    `{"id": "  "}`,
		"object id":   `{"id": {"nested": true}}`,
		"huge id":     `{"id": 1e400}`,
		"trailing":    `{"id": "x"} {"id": "y"}`,
		"string body": `"x"`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseDocument([]byte(input)); err == nil {
				t.Fatalf("expected error for %s", input)
			}
		})
	}
}

func TestDocumentMarshalAndDecode(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"id":"y","name":"Bar","level":3}`))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}

	encoded, err := json.Marshal([]Document{doc})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `[{"id":"y","name":"Bar","level":3}]` {
		t.Fatalf("encoded = %s", encoded)
	}

	var dragon struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Level int    `json:"level"`
	}
	if err := doc.Decode(&dragon); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dragon.Name != "Bar" || dragon.Level != 3 {
		t.Fatalf("decoded = %+v", dragon)
	}

	fields, err := doc.Fields()
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	if fields["name"] != "Bar" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestZeroDocument(t *testing.T) {
	var doc Document
	encoded, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != "null" {
		t.Fatalf("encoded = %s, want null", encoded)
	}
	if _, err := doc.Fields(); err == nil {
		t.Fatal("expected error decoding empty document")
	}
}
