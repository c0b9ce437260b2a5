package workflow

import (
	"testing"
)

func TestParseProposalDoc(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantErr    bool
		wantPath   string
		wantName   string
		wantConf   float64
		wantFields int
	}{
		{
			name:     "clean object",
			raw:      `{"suggested_path":"finance/tax/2025","suggested_name":"return.pdf","confidence":0.9}`,
			wantPath: "finance/tax/2025",
			wantName: "return.pdf",
			wantConf: 0.9,
		},
		{
			name: "markdown fenced with prose",
			raw: "Sure! Here is the classification:\n```json\n" +
				`{"suggested_path": "recipes/italian", "suggested_name": "carbonara.md", "confidence": 0.75}` +
				"\n```\nLet me know if you need anything else.",
			wantPath: "recipes/italian",
			wantName: "carbonara.md",
			wantConf: 0.75,
		},
		{
			name:     "confidence as string",
			raw:      `{"suggested_path":"misc","confidence":"0.4"}`,
			wantPath: "misc",
			wantConf: 0.4,
		},
		{
			name:     "confidence clamped",
			raw:      `{"suggested_path":"misc","confidence":1.7}`,
			wantPath: "misc",
			wantConf: 1,
		},
		{
			name:     "missing confidence defaults",
			raw:      `{"suggested_path":"misc"}`,
			wantPath: "misc",
			wantConf: 0.5,
		},
		{
			name:       "ontology fields kept",
			raw:        `{"suggested_path":"legal","ontology_fields":{"doc_type":"contract","year":2024}}`,
			wantPath:   "legal",
			wantConf:   0.5,
			wantFields: 2,
		},
		{
			name:     "leading slash stripped",
			raw:      `{"suggested_path":"/archive/old/"}`,
			wantPath: "archive/old",
			wantConf: 0.5,
		},
		{
			name:    "parent traversal rejected",
			raw:     `{"suggested_path":"../../etc"}`,
			wantErr: true,
		},
		{
			name:    "no object at all",
			raw:     "I cannot classify this document.",
			wantErr: true,
		},
		{
			name:    "missing suggested_path",
			raw:     `{"suggested_name":"orphan.pdf"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parseProposalDoc(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseProposalDoc() = %+v, want error", doc)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProposalDoc() error = %v", err)
			}
			if doc.SuggestedPath != tt.wantPath {
				t.Errorf("SuggestedPath = %q, want %q", doc.SuggestedPath, tt.wantPath)
			}
			if doc.SuggestedName != tt.wantName {
				t.Errorf("SuggestedName = %q, want %q", doc.SuggestedName, tt.wantName)
			}
			if doc.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", doc.Confidence, tt.wantConf)
			}
			if len(doc.OntologyFields) != tt.wantFields {
				t.Errorf("len(OntologyFields) = %d, want %d", len(doc.OntologyFields), tt.wantFields)
			}
		})
	}
}

func TestExtractObjectNestedBraces(t *testing.T) {
	raw := `prefix {"a": {"b": "}"}, "c": 1} suffix`
	got := extractObject(raw)
	want := `{"a": {"b": "}"}, "c": 1}`
	if got != want {
		t.Errorf("extractObject() = %q, want %q", got, want)
	}
}
