package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/extractor"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/llm"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/models"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
)

const petition = "EXCELENTÍSSIMO SENHOR JUIZ DO TRABALHO. O reclamante requer o pagamento de horas extras."

var sampleFinding = analyzer.Finding{
	Problem:        "Ausência de controle de jornada",
	Category:       analyzer.CategoryProcedural,
	Severity:       analyzer.SeverityHigh,
	Analysis:       "A empresa não juntou cartões de ponto.",
	Recommendation: "Requerer a exibição dos documentos.",
	Precedents:     []string{"Súmula 338 TST"},
}

type assistantFixture struct {
	service   AssistantService
	analyzer  *stubAnalyzer
	storage   *memoryStorage
	processes *memoryProcesses
}

func newAssistantFixture(outcome analyzer.Outcome, err error) *assistantFixture {
	stub := &stubAnalyzer{outcome: outcome, err: err}
	store := newMemoryStorage()
	processes := newMemoryProcesses()
	users := newMemoryUsers(
		models.User{ID: "u-1", Email: "ana@example.com", Role: models.RoleUser, IsActive: true},
		models.User{ID: "u-2", Email: "bia@example.com", Role: models.RoleUser, IsActive: true},
	)
	logger := utils.NewNopLogger()

	return &assistantFixture{
		service: NewAssistantService(
			extractor.New(),
			stub,
			store,
			processes,
			NewProcessService(processes, users, logger),
			logger,
		),
		analyzer:  stub,
		storage:   store,
		processes: processes,
	}
}

func successOutcome() analyzer.Outcome {
	return analyzer.Outcome{
		Status:   analyzer.StatusSuccess,
		Findings: []analyzer.Finding{sampleFinding},
		Tier:     analyzer.TierAdvanced,
		Provider: llm.KindOpenAI,
	}
}

func txtRequest(text string) *models.AnalyzeFileRequest {
	return &models.AnalyzeFileRequest{
		File:         []byte(text),
		Filename:     "peticao inicial.txt",
		ContentType:  "text/plain",
		Instructions: "Foque em horas extras.",
		Name:         "Processo 123",
		UserID:       "u-1",
	}
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d", want)
	}
	if got := utils.StatusCode(err); got != want {
		t.Fatalf("status = %d, want %d (err: %v)", got, want, err)
	}
}

func TestAnalyzeFileAndCreateProcess(t *testing.T) {
	f := newAssistantFixture(successOutcome(), nil)

	process, err := f.service.AnalyzeFileAndCreateProcess(context.Background(), txtRequest(petition))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if process.Status != models.ProcessAnalyzed {
		t.Errorf("Status = %s, want ANALYZED", process.Status)
	}
	if len(process.Analysis) != 1 || process.Analysis[0].Problem != sampleFinding.Problem {
		t.Errorf("Analysis = %+v", process.Analysis)
	}
	if process.UserID != "u-1" || process.Name == nil || *process.Name != "Processo 123" {
		t.Errorf("ownership/name not set: %+v", process)
	}
	if process.Type != nil {
		t.Errorf("Type = %v, want nil for an empty value", *process.Type)
	}
	if process.ProcessText != petition {
		t.Errorf("ProcessText = %q", process.ProcessText)
	}
	if process.FileURL == nil || !strings.HasPrefix(*process.FileURL, "http://store.local/processes-bucket/processes/") ||
		!strings.HasSuffix(*process.FileURL, "/peticao_inicial.txt") {
		t.Errorf("FileURL = %v", process.FileURL)
	}

	if len(f.analyzer.calls) != 1 || f.analyzer.calls[0].ForceBasic {
		t.Errorf("analyzer calls = %+v, want one advanced call", f.analyzer.calls)
	}
	if f.analyzer.calls[0].Instructions != "Foque em horas extras." {
		t.Errorf("instructions not forwarded: %+v", f.analyzer.calls[0])
	}

	stored, _ := f.processes.GetByID(context.Background(), process.ID)
	if stored == nil {
		t.Fatal("process was not persisted")
	}
	if len(f.storage.objects) != 1 {
		t.Errorf("uploaded objects = %d, want 1", len(f.storage.objects))
	}
}

func TestAnalyzeFileParseFailureNeedsReview(t *testing.T) {
	f := newAssistantFixture(analyzer.Outcome{
		Status:  analyzer.StatusParseFailure,
		RawText: "Não encontrei problemas relevantes.",
		Reason:  analyzer.ReasonJSONNotFound,
		Tier:    analyzer.TierAdvanced,
	}, nil)

	process, err := f.service.AnalyzeFileAndCreateProcess(context.Background(), txtRequest(petition))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if process.Status != models.ProcessNeedsReview {
		t.Errorf("Status = %s, want NEEDS_REVIEW", process.Status)
	}
	if process.AnalysisRaw == nil || *process.AnalysisRaw != "Não encontrei problemas relevantes." {
		t.Errorf("AnalysisRaw = %v", process.AnalysisRaw)
	}
	if process.AnalysisError == nil || *process.AnalysisError != "json_not_found" {
		t.Errorf("AnalysisError = %v", process.AnalysisError)
	}
}

func TestAnalyzeFileValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *models.AnalyzeFileRequest
		want int
	}{
		{"empty file", &models.AnalyzeFileRequest{Filename: "a.txt"}, http.StatusBadRequest},
		{"unsupported extension", &models.AnalyzeFileRequest{File: []byte(petition), Filename: "a.odt"}, http.StatusBadRequest},
		{"too little text", &models.AnalyzeFileRequest{File: []byte("  a b c  \n d "), Filename: "a.txt"}, http.StatusBadRequest},
		{"unreadable pdf", &models.AnalyzeFileRequest{File: []byte("not a pdf at all"), Filename: "a.pdf"}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAssistantFixture(successOutcome(), nil)
			_, err := f.service.AnalyzeFileAndCreateProcess(context.Background(), tt.req)
			assertStatus(t, err, tt.want)
			if len(f.analyzer.calls) != 0 {
				t.Error("analyzer must not run on invalid input")
			}
		})
	}
}

func TestAnalyzeFileAnalyzerErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"both tiers failed", &analyzer.AnalysisUnavailableError{Basic: errors.New("down")}, http.StatusBadGateway},
		{"unsupported provider", &llm.UnsupportedProviderError{Kind: "mistral"}, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAssistantFixture(analyzer.Outcome{}, tt.err)
			_, err := f.service.AnalyzeFileAndCreateProcess(context.Background(), txtRequest(petition))
			assertStatus(t, err, tt.want)
			if len(f.storage.objects) != 0 {
				t.Error("nothing should be uploaded when analysis fails")
			}
		})
	}
}

func TestAnalyzeFileUploadFailure(t *testing.T) {
	f := newAssistantFixture(successOutcome(), nil)
	f.storage.uploadErr = errors.New("bucket gone")

	_, err := f.service.AnalyzeFileAndCreateProcess(context.Background(), txtRequest(petition))
	assertStatus(t, err, http.StatusInternalServerError)

	all, _ := f.processes.List(context.Background())
	if len(all) != 0 {
		t.Error("process must not be saved when the upload fails")
	}
}

func TestAnalyzeFileSaveFailureRemovesBlob(t *testing.T) {
	f := newAssistantFixture(successOutcome(), nil)
	f.processes.failing = true

	_, err := f.service.AnalyzeFileAndCreateProcess(context.Background(), txtRequest(petition))
	assertStatus(t, err, http.StatusInternalServerError)

	if len(f.storage.deleted) != 1 || len(f.storage.objects) != 0 {
		t.Errorf("blob not cleaned up: deleted=%v objects=%d", f.storage.deleted, len(f.storage.objects))
	}
}

func TestReadFileUsesBasicTier(t *testing.T) {
	outcome := successOutcome()
	outcome.Tier = analyzer.TierBasic
	outcome.Provider = llm.KindGemini
	f := newAssistantFixture(outcome, nil)

	got, err := f.service.ReadFile(context.Background(), txtRequest(petition))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !got.Succeeded() || got.Tier != analyzer.TierBasic {
		t.Errorf("outcome = %+v", got)
	}
	if len(f.analyzer.calls) != 1 || !f.analyzer.calls[0].ForceBasic {
		t.Errorf("calls = %+v, want one ForceBasic call", f.analyzer.calls)
	}
	if len(f.storage.objects) != 0 {
		t.Error("ReadFile must not store the upload")
	}
	all, _ := f.processes.List(context.Background())
	if len(all) != 0 {
		t.Error("ReadFile must not create a process")
	}
}

func TestAssistantProcessAccess(t *testing.T) {
	f := newAssistantFixture(successOutcome(), nil)
	ctx := context.Background()

	process, err := f.service.AnalyzeFileAndCreateProcess(ctx, txtRequest(petition))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := f.service.ListProcesses(ctx, "u-1")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListProcesses(u-1) = %d, %v", len(list), err)
	}
	list, err = f.service.ListProcesses(ctx, "u-2")
	if err != nil || len(list) != 0 || list == nil {
		t.Fatalf("ListProcesses(u-2) = %v, %v; want empty non-nil", list, err)
	}

	if _, err := f.service.GetProcess(ctx, process.ID, Caller{UserID: "u-1", Role: models.RoleUser}); err != nil {
		t.Errorf("owner should read the process: %v", err)
	}
	_, err = f.service.GetProcess(ctx, process.ID, Caller{UserID: "u-2", Role: models.RoleUser})
	assertStatus(t, err, http.StatusForbidden)
}

func TestAnalyzeFileInstructionsVerbatim(t *testing.T) {
	f := newAssistantFixture(successOutcome(), nil)
	req := txtRequest(petition)
	req.Instructions = "  Considere a Súmula 331.\n"

	process, err := f.service.AnalyzeFileAndCreateProcess(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.analyzer.calls[0].Instructions; got != "  Considere a Súmula 331.\n" {
		t.Errorf("analyzer instructions = %q, want them untouched", got)
	}
	if process.AdditionalInstructions == nil {
		t.Error("non-blank instructions should be stored")
	}

	f = newAssistantFixture(successOutcome(), nil)
	req = txtRequest(petition)
	req.Instructions = " \n\t "
	process, err = f.service.AnalyzeFileAndCreateProcess(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if process.AdditionalInstructions != nil {
		t.Errorf("blank instructions stored as %q", *process.AdditionalInstructions)
	}
}
