package analyzer

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ResponseParser turns a model completion into an Outcome. It never fails:
// unusable completions come back as parse failures carrying the raw text.
type ResponseParser interface {
	Parse(completion string) Outcome
}

// IndexParser takes everything between the first '[' and the last ']' of the
// completion and decodes it as a JSON array of findings. Only malformed JSON
// is rejected; loosely typed fields are coerced to strings.
type IndexParser struct{}

func (IndexParser) Parse(completion string) Outcome {
	text := strings.TrimSpace(completion)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]") + 1
	if start < 0 || end <= start {
		return parseFailure(text, ReasonJSONNotFound)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end]), &elems); err != nil {
		return parseFailure(text, ReasonInvalidJSON)
	}

	findings := make([]Finding, 0, len(elems))
	for _, raw := range elems {
		findings = append(findings, decodeFinding(raw))
	}

	return Outcome{
		Status:   StatusSuccess,
		Findings: findings,
	}
}

// The full trimmed text is kept, not just the slice that failed to decode.
func parseFailure(text string, reason Reason) Outcome {
	return Outcome{
		Status:  StatusParseFailure,
		RawText: text,
		Reason:  reason,
	}
}

type looseFinding struct {
	Problem        json.RawMessage `json:"problema"`
	Category       json.RawMessage `json:"tipo"`
	Severity       json.RawMessage `json:"gravidade"`
	Analysis       json.RawMessage `json:"analise"`
	Recommendation json.RawMessage `json:"recomendacao"`
	Precedents     json.RawMessage `json:"precedentes"`
}

// decodeFinding accepts any well-formed element. An element that is not an
// object becomes a finding whose problem is the element's text.
func decodeFinding(raw json.RawMessage) Finding {
	var loose looseFinding
	if err := json.Unmarshal(raw, &loose); err != nil {
		return Finding{Problem: looseString(raw), Precedents: []string{}}
	}

	return Finding{
		Problem:        looseString(loose.Problem),
		Category:       Category(looseString(loose.Category)),
		Severity:       Severity(looseString(loose.Severity)),
		Analysis:       looseString(loose.Analysis),
		Recommendation: looseString(loose.Recommendation),
		Precedents:     looseStrings(loose.Precedents),
	}
}

// looseString returns a JSON string's value, "" for null or absent, and the
// compact JSON text for anything else.
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// looseStrings accepts an array of anything or a single value.
func looseStrings(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 || string(raw) == "null" {
		return out
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := looseString(raw); s != "" {
			out = append(out, s)
		}
		return out
	}

	for _, item := range items {
		if s := looseString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
