package router

import (
	"net/http"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/auth"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/handlers"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/middleware"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/models"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/services"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"

	"github.com/gorilla/mux"
)

type Deps struct {
	Assistant   services.AssistantService
	Processes   services.ProcessService
	Users       services.UserService
	UserLoader  middleware.UserLoader
	Tokens      *auth.TokenManager
	DB          handlers.Pinger
	MaxFileSize int64
	CORSOrigins []string
	Logger      *utils.Logger
}

func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	logger := d.Logger

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(middleware.Recovery(logger))

	assistantHandler := handlers.NewAssistantHandler(d.Assistant, d.MaxFileSize, logger)
	processHandler := handlers.NewProcessHandler(d.Processes, logger)
	userHandler := handlers.NewUserHandler(d.Users, logger)
	healthHandler := handlers.NewHealthHandler(d.DB, logger)

	// Preflight requests need a matching route for the CORS middleware to run.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public
	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/auth/login", userHandler.Login).Methods(http.MethodPost)

	// Authenticated
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.Auth(d.Tokens, d.UserLoader))
	admin := middleware.RequireRole(models.RoleAdmin)

	protected.HandleFunc("/assistant/analyze", assistantHandler.Analyze).Methods(http.MethodPost)
	protected.HandleFunc("/assistant/upload", assistantHandler.Upload).Methods(http.MethodPost)
	protected.HandleFunc("/assistant/process", assistantHandler.ListProcesses).Methods(http.MethodGet)
	protected.HandleFunc("/assistant/process/{id}", assistantHandler.GetProcess).Methods(http.MethodGet)

	protected.Handle("/processes", admin(http.HandlerFunc(processHandler.FindAll))).Methods(http.MethodGet)
	protected.HandleFunc("/processes/my-processes", processHandler.FindMine).Methods(http.MethodGet)
	protected.Handle("/processes/user/{userId}", admin(http.HandlerFunc(processHandler.FindByUser))).Methods(http.MethodGet)
	protected.HandleFunc("/processes/{id}", processHandler.FindOne).Methods(http.MethodGet)

	protected.Handle("/users", admin(http.HandlerFunc(userHandler.Create))).Methods(http.MethodPost)
	protected.Handle("/users", admin(http.HandlerFunc(userHandler.List))).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id}", userHandler.Get).Methods(http.MethodGet)
	protected.Handle("/users/{id}", admin(http.HandlerFunc(userHandler.Update))).Methods(http.MethodPatch)
	protected.Handle("/users/{id}", admin(http.HandlerFunc(userHandler.Delete))).Methods(http.MethodDelete)

	return r
}
