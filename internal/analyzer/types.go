package analyzer

import (
	"encoding/json"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/llm"
)

type Category string

const (
	CategoryProcedural    Category = "processual"
	CategoryContradiction Category = "contradição"
	CategoryReasoning     Category = "fundamentação"
	CategoryDeadline      Category = "prazo"
)

type Severity string

const (
	SeverityHigh   Severity = "alta"
	SeverityMedium Severity = "média"
	SeverityLow    Severity = "baixa"
)

// Finding is one problem the model identified in a process document.
// The JSON keys match the schema the prompts ask the model for.
type Finding struct {
	Problem        string   `json:"problema"`
	Category       Category `json:"tipo"`
	Severity       Severity `json:"gravidade"`
	Analysis       string   `json:"analise"`
	Recommendation string   `json:"recomendacao"`
	Precedents     []string `json:"precedentes"`
}

type Status string

const (
	StatusSuccess      Status = "success"
	StatusParseFailure Status = "parse_failure"
)

// Reason tells the two kinds of parse failure apart.
type Reason string

const (
	ReasonJSONNotFound Reason = "json_not_found"
	ReasonInvalidJSON  Reason = "invalid_json"
)

type Tier string

const (
	TierAdvanced Tier = "advanced"
	TierBasic    Tier = "basic"
)

// Outcome is the result of one analysis. Findings is set when Status is
// StatusSuccess; RawText and Reason are set when it is StatusParseFailure.
type Outcome struct {
	Status   Status    `json:"status"`
	Findings []Finding `json:"analysis,omitempty"`
	RawText  string    `json:"rawText,omitempty"`
	Reason   Reason    `json:"error,omitempty"`
	Tier     Tier      `json:"tier,omitempty"`
	Provider llm.Kind  `json:"provider,omitempty"`
}

func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// MarshalJSON always writes "analysis" for a success, as [] when nothing was
// found, and leaves it out of a parse failure.
func (o Outcome) MarshalJSON() ([]byte, error) {
	type wire Outcome
	if !o.Succeeded() {
		return json.Marshal(wire(o))
	}

	findings := o.Findings
	if findings == nil {
		findings = []Finding{}
	}
	return json.Marshal(struct {
		wire
		Findings []Finding `json:"analysis"`
	}{wire(o), findings})
}
