package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/extractor"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/llm"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/models"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/storage"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
)

// MinTextLength is the smallest number of non-whitespace characters worth analyzing.
const MinTextLength = 10

type AssistantService interface {
	// AnalyzeFileAndCreateProcess runs the full pipeline and persists the result.
	AnalyzeFileAndCreateProcess(ctx context.Context, req *models.AnalyzeFileRequest) (*models.Process, error)
	// ReadFile analyzes an upload in the basic tier without storing anything.
	ReadFile(ctx context.Context, req *models.AnalyzeFileRequest) (*analyzer.Outcome, error)
	ListProcesses(ctx context.Context, userID string) ([]models.Process, error)
	GetProcess(ctx context.Context, id string, caller Caller) (*models.Process, error)
}

type assistantService struct {
	extractor extractor.Extractor
	analyzer  analyzer.Analyzer
	storage   storage.Storage
	processes ProcessService
	repo      repository.ProcessRepository
	logger    *utils.Logger
}

func NewAssistantService(
	ext extractor.Extractor,
	llmAnalyzer analyzer.Analyzer,
	store storage.Storage,
	repo repository.ProcessRepository,
	processes ProcessService,
	logger *utils.Logger,
) AssistantService {
	return &assistantService{
		extractor: ext,
		analyzer:  llmAnalyzer,
		storage:   store,
		processes: processes,
		repo:      repo,
		logger:    logger,
	}
}

func (s *assistantService) AnalyzeFileAndCreateProcess(ctx context.Context, req *models.AnalyzeFileRequest) (*models.Process, error) {
	text, err := s.extract(req)
	if err != nil {
		return nil, err
	}

	outcome, err := s.analyzer.Analyze(ctx, text, analyzer.Options{Instructions: req.Instructions})
	if err != nil {
		return nil, s.analysisError(err, req.Filename)
	}

	key, err := storage.ObjectKey(req.Filename)
	if err != nil {
		return nil, utils.NewBadRequestError("Invalid file name")
	}
	fileURL, err := s.storage.Upload(ctx, key, req.File, req.ContentType)
	if err != nil {
		s.logger.Error("Failed to upload file", "error", err, "key", key)
		return nil, utils.NewInternalError("Failed to store file").Wrap(err)
	}

	process := &models.Process{
		ID:          utils.GenerateID(),
		Name:        optional(req.Name),
		Type:        optional(req.Type),
		Status:      models.ProcessPending,
		ProcessText: text,
		FileURL:     &fileURL,
		UserID:      req.UserID,
	}
	if strings.TrimSpace(req.Instructions) != "" {
		process.AdditionalInstructions = &req.Instructions
	}
	process.ApplyOutcome(outcome)

	if err := s.repo.Create(ctx, process); err != nil {
		s.logger.Error("Failed to save process", "error", err, "id", process.ID)
		// Attempt to cleanup the blob
		_ = s.storage.Delete(ctx, key)
		return nil, utils.NewInternalError("Failed to save process").Wrap(err)
	}

	s.logger.Info("Process analyzed",
		"id", process.ID,
		"user_id", req.UserID,
		"status", process.Status,
		"tier", outcome.Tier,
		"provider", outcome.Provider,
		"findings", len(outcome.Findings))

	return process, nil
}

func (s *assistantService) ReadFile(ctx context.Context, req *models.AnalyzeFileRequest) (*analyzer.Outcome, error) {
	text, err := s.extract(req)
	if err != nil {
		return nil, err
	}

	outcome, err := s.analyzer.Analyze(ctx, text, analyzer.Options{
		Instructions: req.Instructions,
		ForceBasic:   true,
	})
	if err != nil {
		return nil, s.analysisError(err, req.Filename)
	}

	s.logger.Info("File read", "filename", req.Filename, "status", outcome.Status, "provider", outcome.Provider)
	return &outcome, nil
}

func (s *assistantService) ListProcesses(ctx context.Context, userID string) ([]models.Process, error) {
	return s.processes.FindByUser(ctx, userID)
}

func (s *assistantService) GetProcess(ctx context.Context, id string, caller Caller) (*models.Process, error) {
	return s.processes.FindOneWithPermission(ctx, id, caller)
}

func (s *assistantService) extract(req *models.AnalyzeFileRequest) (string, error) {
	if len(req.File) == 0 {
		return "", utils.NewBadRequestError("No file provided")
	}

	kind, err := extractor.KindFromFilename(req.Filename)
	if err != nil {
		return "", utils.NewBadRequestError("Unsupported file type. Allowed: pdf, doc, docx, txt")
	}

	text, err := s.extractor.Extract(req.File, kind)
	if err != nil {
		s.logger.Warn("Failed to extract text", "error", err, "filename", req.Filename, "kind", kind)
		return "", utils.NewAppError(http.StatusUnprocessableEntity, "Could not extract text from the file").Wrap(err)
	}

	if countNonSpace(text) < MinTextLength {
		return "", utils.NewBadRequestError("The file has too little text to analyze")
	}

	return text, nil
}

func (s *assistantService) analysisError(err error, filename string) error {
	var unavailable *analyzer.AnalysisUnavailableError
	var unsupported *llm.UnsupportedProviderError

	switch {
	case errors.As(err, &unavailable):
		s.logger.Error("Analysis unavailable", "error", err, "filename", filename)
		return utils.NewBadGatewayError("Analysis is temporarily unavailable").Wrap(err)
	case errors.As(err, &unsupported):
		s.logger.Error("LLM provider misconfigured", "error", err)
		return utils.NewInternalError("LLM provider is not configured").Wrap(err)
	default:
		s.logger.Error("Failed to analyze file", "error", err, "filename", filename)
		return utils.NewInternalError("Failed to analyze file").Wrap(err)
	}
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
