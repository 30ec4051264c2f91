package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/auth"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/db"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/extractor"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/llm"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/models"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/services"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
)

const petition = "EXCELENTÍSSIMO SENHOR JUIZ DO TRABALHO. O reclamante requer horas extras e adicional noturno."

type fixedAnalyzer struct{}

func (fixedAnalyzer) Analyze(_ context.Context, _ string, opts analyzer.Options) (analyzer.Outcome, error) {
	tier, kind := analyzer.TierAdvanced, llm.KindOpenAI
	if opts.ForceBasic {
		tier, kind = analyzer.TierBasic, llm.KindGemini
	}
	return analyzer.Outcome{
		Status: analyzer.StatusSuccess,
		Findings: []analyzer.Finding{{
			Problem:    "Cálculo de horas extras sem base documental",
			Category:   analyzer.CategoryReasoning,
			Severity:   analyzer.SeverityMedium,
			Precedents: []string{},
		}},
		Tier:     tier,
		Provider: kind,
	}, nil
}

type nullStorage struct{}

func (nullStorage) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	return "http://localhost:9000/processes/" + key, nil
}
func (nullStorage) Download(context.Context, string) ([]byte, error) { return nil, nil }
func (nullStorage) Delete(context.Context, string) error            { return nil }

type testServer struct {
	handler http.Handler
	tokens  *auth.TokenManager
	users   services.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "processes.db")
	if err := db.RunMigrations(db.DriverSQLite, dbFile); err != nil {
		t.Fatalf("RunMigrations() error: %v", err)
	}
	conn, err := db.Connect(context.Background(), db.DriverSQLite, dbFile)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	logger := utils.NewNopLogger()
	tokens := auth.NewTokenManager("router-test", time.Hour)
	userRepo := repository.NewUserRepository(conn)
	processRepo := repository.NewProcessRepository(conn)

	userService := services.NewUserService(userRepo, tokens, logger)
	processService := services.NewProcessService(processRepo, userRepo, logger)
	assistantService := services.NewAssistantService(extractor.New(), fixedAnalyzer{}, nullStorage{}, processRepo, processService, logger)

	if err := userService.EnsureAdmin(context.Background(), "admin@example.com", "admin-pass"); err != nil {
		t.Fatalf("EnsureAdmin() error: %v", err)
	}

	return &testServer{
		handler: NewRouter(Deps{
			Assistant:   assistantService,
			Processes:   processService,
			Users:       userService,
			UserLoader:  userRepo,
			Tokens:      tokens,
			DB:          conn,
			MaxFileSize: 1 << 20,
			CORSOrigins: []string{"*"},
			Logger:      logger,
		}),
		tokens: tokens,
		users:  userService,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(t *testing.T, path, token, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	mw.WriteField("instructions", "Verifique a prescrição.")
	mw.WriteField("name", "Reclamação trabalhista")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Email: email, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var resp models.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("response should carry a request id")
	}
}

func TestPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/assistant/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Error("preflight should carry CORS headers")
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/v1/assistant/process", "/api/v1/processes/my-processes", "/api/v1/users"} {
		if rec := s.do(t, http.MethodGet, path, "", nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestAnalyzeFlow(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, "admin@example.com", "admin-pass")

	rec := s.do(t, http.MethodPost, "/api/v1/users", adminToken, models.CreateUserRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: %d %s", rec.Code, rec.Body.String())
	}
	ana := decode[models.User](t, rec)

	rec = s.do(t, http.MethodPost, "/api/v1/users", "", models.CreateUserRequest{Name: "X", Email: "x@example.com", Password: "secret1"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create user: %d", rec.Code)
	}

	anaToken := s.login(t, "ana@example.com", "secret1")

	rec = s.do(t, http.MethodPost, "/api/v1/users", anaToken, models.CreateUserRequest{Name: "X", Email: "x@example.com", Password: "secret1"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin create user: %d, want 403", rec.Code)
	}

	rec = s.upload(t, "/api/v1/assistant/analyze", anaToken, "peticao.txt", petition)
	if rec.Code != http.StatusCreated {
		t.Fatalf("analyze: %d %s", rec.Code, rec.Body.String())
	}
	process := decode[models.Process](t, rec)
	if process.Status != models.ProcessAnalyzed || process.UserID != ana.ID || len(process.Analysis) != 1 {
		t.Errorf("process = %+v", process)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/processes/"+process.ID, anaToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get process: %d %s", rec.Code, rec.Body.String())
	}
	stored := decode[models.Process](t, rec)
	if stored.Analysis[0].Problem != process.Analysis[0].Problem {
		t.Errorf("stored analysis = %+v", stored.Analysis)
	}

	mine := decode[[]models.Process](t, s.do(t, http.MethodGet, "/api/v1/processes/my-processes", anaToken, nil))
	if len(mine) != 1 {
		t.Errorf("my-processes = %d, want 1", len(mine))
	}
	assistantList := decode[[]models.Process](t, s.do(t, http.MethodGet, "/api/v1/assistant/process", anaToken, nil))
	if len(assistantList) != 1 {
		t.Errorf("assistant/process = %d, want 1", len(assistantList))
	}

	if rec := s.do(t, http.MethodGet, "/api/v1/processes", anaToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("user listing all processes: %d, want 403", rec.Code)
	}
	all := decode[[]models.Process](t, s.do(t, http.MethodGet, "/api/v1/processes", adminToken, nil))
	if len(all) != 1 {
		t.Errorf("all processes = %d", len(all))
	}

	byUser := decode[[]models.Process](t, s.do(t, http.MethodGet, "/api/v1/processes/user/"+ana.ID, adminToken, nil))
	if len(byUser) != 1 {
		t.Errorf("processes by user = %d", len(byUser))
	}
	if rec := s.do(t, http.MethodGet, "/api/v1/processes/user/"+utils.GenerateID(), adminToken, nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown user: %d, want 404", rec.Code)
	}
}

func TestUploadReturnsBasicOutcome(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin@example.com", "admin-pass")

	rec := s.upload(t, "/api/v1/assistant/upload", token, "peticao.txt", petition)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	outcome := decode[analyzer.Outcome](t, rec)
	if outcome.Tier != analyzer.TierBasic || outcome.Provider != llm.KindGemini {
		t.Errorf("outcome = %+v", outcome)
	}

	rec = s.upload(t, "/api/v1/assistant/upload", token, "peticao.odt", petition)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported extension: %d, want 400", rec.Code)
	}
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, "admin@example.com", "admin-pass")

	user := decode[models.User](t, s.do(t, http.MethodPost, "/api/v1/users", adminToken, models.CreateUserRequest{
		Name: "Bia", Email: "bia@example.com", Password: "secret1",
	}))
	token := s.login(t, "bia@example.com", "secret1")

	if rec := s.do(t, http.MethodGet, "/api/v1/users/"+user.ID, token, nil); rec.Code != http.StatusOK {
		t.Fatalf("self read: %d", rec.Code)
	}

	rec := s.do(t, http.MethodPatch, "/api/v1/users/"+user.ID, adminToken, map[string]any{"is_active": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate: %d %s", rec.Code, rec.Body.String())
	}

	if rec := s.do(t, http.MethodGet, "/api/v1/users/"+user.ID, token, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("deactivated user: %d, want 401", rec.Code)
	}

	if rec := s.do(t, http.MethodDelete, "/api/v1/users/"+user.ID, adminToken, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete: %d", rec.Code)
	}
}
