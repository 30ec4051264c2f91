package models

import (
	"testing"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/analyzer"
)

func TestFindingsValueAndScan(t *testing.T) {
	in := Findings{{
		Problem:    "Prazo recursal perdido",
		Category:   analyzer.CategoryDeadline,
		Severity:   analyzer.SeverityHigh,
		Precedents: []string{"Súmula 197 do TST"},
	}}

	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	var out Findings
	if err := out.Scan([]byte(v.(string))); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(out) != 1 || out[0].Problem != "Prazo recursal perdido" || out[0].Precedents[0] != "Súmula 197 do TST" {
		t.Errorf("Scan() = %+v", out)
	}
}

func TestFindingsNull(t *testing.T) {
	v, err := Findings(nil).Value()
	if err != nil || v != nil {
		t.Fatalf("Value() = %v, %v; want NULL", v, err)
	}

	out := Findings{{Problem: "stale"}}
	if err := out.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error: %v", err)
	}
	if out != nil {
		t.Errorf("Scan(nil) = %+v, want nil", out)
	}

	if err := out.Scan(42); err == nil {
		t.Error("expected error for unsupported source type")
	}
}

func TestAddressScan(t *testing.T) {
	var a Address
	if err := a.Scan(`{"city":"São Paulo","state":"SP","zip_code":"01001-000"}`); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if a.City != "São Paulo" || a.State != "SP" || a.ZipCode != "01001-000" {
		t.Errorf("Scan() = %+v", a)
	}

	if err := a.Scan(nil); err != nil || a != (Address{}) {
		t.Errorf("Scan(nil) = %+v, %v", a, err)
	}
}

func TestApplyOutcome(t *testing.T) {
	p := &Process{}
	p.ApplyOutcome(analyzer.Outcome{
		Status:   analyzer.StatusSuccess,
		Findings: []analyzer.Finding{{Problem: "x"}},
	})
	if p.Status != ProcessAnalyzed || len(p.Analysis) != 1 || p.AnalysisRaw != nil {
		t.Errorf("success: %+v", p)
	}

	p.ApplyOutcome(analyzer.Outcome{
		Status:  analyzer.StatusParseFailure,
		RawText: "texto livre",
		Reason:  analyzer.ReasonInvalidJSON,
	})
	if p.Status != ProcessNeedsReview || p.Analysis != nil {
		t.Errorf("parse failure: %+v", p)
	}
	if p.AnalysisRaw == nil || *p.AnalysisRaw != "texto livre" {
		t.Errorf("AnalysisRaw = %v", p.AnalysisRaw)
	}
	if p.AnalysisError == nil || *p.AnalysisError != "invalid_json" {
		t.Errorf("AnalysisError = %v", p.AnalysisError)
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleAdmin.Valid() || !RoleUser.Valid() || Role("root").Valid() {
		t.Error("unexpected Role.Valid result")
	}
}
