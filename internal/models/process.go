package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/analyzer"
)

type ProcessStatus string

const (
	ProcessPending     ProcessStatus = "PENDING"
	ProcessAnalyzed    ProcessStatus = "ANALYZED"
	ProcessNeedsReview ProcessStatus = "NEEDS_REVIEW"
)

type Process struct {
	ID                     string        `json:"id" db:"id"`
	Name                   *string       `json:"name,omitempty" db:"name"`
	Type                   *string       `json:"type,omitempty" db:"type"`
	Status                 ProcessStatus `json:"status" db:"status"`
	ProcessText            string        `json:"process_text" db:"process_text"`
	Analysis               Findings      `json:"analysis" db:"analysis"`
	AnalysisRaw            *string       `json:"analysis_raw,omitempty" db:"analysis_raw"`
	AnalysisError          *string       `json:"analysis_error,omitempty" db:"analysis_error"`
	AdditionalInstructions *string       `json:"additional_instructions,omitempty" db:"additional_instructions"`
	FileURL                *string       `json:"file_url,omitempty" db:"file_url"`
	UserID                 string        `json:"user_id" db:"user_id"`
	CreatedAt              time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at" db:"updated_at"`
}

// ApplyOutcome copies an analysis result onto the process and sets its status.
func (p *Process) ApplyOutcome(outcome analyzer.Outcome) {
	if outcome.Succeeded() {
		p.Status = ProcessAnalyzed
		p.Analysis = Findings(outcome.Findings)
		p.AnalysisRaw = nil
		p.AnalysisError = nil
		return
	}

	raw := outcome.RawText
	reason := string(outcome.Reason)
	p.Status = ProcessNeedsReview
	p.Analysis = nil
	p.AnalysisRaw = &raw
	p.AnalysisError = &reason
}

// Findings is stored as a JSON column. A nil value is NULL.
type Findings []analyzer.Finding

func (f Findings) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	data, err := json.Marshal([]analyzer.Finding(f))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (f *Findings) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan findings: %w", err)
	}
	if data == nil {
		*f = nil
		return nil
	}
	return json.Unmarshal(data, (*[]analyzer.Finding)(f))
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", src)
	}
}

// AnalyzeFileRequest carries one upload through the assistant service.
type AnalyzeFileRequest struct {
	File         []byte
	Filename     string
	ContentType  string
	Instructions string
	Name         string
	Type         string
	UserID       string
}
