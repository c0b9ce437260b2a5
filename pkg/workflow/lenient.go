package workflow

import (
	"encoding/json"
	"errors"
	"path"
	"strconv"
	"strings"
)

// proposalDoc is the normalized shape extracted from a provider response.
type proposalDoc struct {
	SuggestedPath  string
	SuggestedName  string
	OntologyFields map[string]interface{}
	Confidence     float64
}

var errNoProposalObject = errors.New("no JSON object in provider output")

// parseProposalDoc pulls a proposal out of raw model output. Providers wrap
// JSON in prose and code fences more often than not, so we locate the first
// balanced object and normalize the fields we care about rather than
// insisting on a clean document.
func parseProposalDoc(raw string) (*proposalDoc, error) {
	body := extractObject(raw)
	if body == "" {
		return nil, errNoProposalObject
	}

	var m map[string]interface{}
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, err
	}

	doc := &proposalDoc{Confidence: 0.5}

	if v, ok := m["suggested_path"].(string); ok {
		doc.SuggestedPath = cleanRelPath(v)
	}
	if doc.SuggestedPath == "" {
		return nil, errors.New("provider output missing suggested_path")
	}

	if v, ok := m["suggested_name"].(string); ok {
		doc.SuggestedName = strings.TrimSpace(v)
	}

	switch t := m["confidence"].(type) {
	case float64:
		doc.Confidence = clamp01(t)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			doc.Confidence = clamp01(f)
		}
	}

	if fields, ok := m["ontology_fields"].(map[string]interface{}); ok {
		doc.OntologyFields = fields
	}

	return doc, nil
}

// extractObject returns the first top-level {...} region of s, tolerating
// markdown fences and surrounding prose.
func extractObject(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// cleanRelPath normalizes a model-suggested directory into a safe relative
// path: no leading slash, no parent traversal.
func cleanRelPath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return ""
	}
	return cleaned
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
