package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	openai "github.com/sashabaranov/go-openai"

	"actionskit/internal/agent"
	"actionskit/internal/config"
	"actionskit/internal/db"
	"actionskit/internal/store"
	"actionskit/internal/types"
	"actionskit/pkg/assistant"
)

type Server struct {
	router        *chi.Mux
	store         *store.MemoryStore
	cfg           config.Config
	database      *db.DB
	databaseStore *store.DatabaseStore
	turnLog       *store.FileTurnLog
	agent         *agent.Agent
}

func NewServer(cfg config.Config) (*Server, error) {
	ms := store.NewMemoryStore(cfg.MaxTranscript)
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", assistant.VersionHeader},
		MaxAge:         300,
	}))

	var talk *agent.SmallTalk
	if cfg.OpenAIAPIKey != "" {
		client := openai.NewClient(cfg.OpenAIAPIKey)
		var err error
		talk, err = agent.LoadSmallTalk(cfg.PersonaFile, client, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to load persona: %w", err)
		}
	} else {
		log.Println("warning: OPENAI_API_KEY not provided, small talk disabled")
	}

	var database *db.DB
	var audit agent.AuditLog
	var databaseStore *store.DatabaseStore
	turnLog := store.NewFileTurnLog(cfg.TurnLogFile)
	if cfg.DatabaseURL != "" {
		var err error
		database, err = db.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.EnsureSchema(); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		log.Println("database connection established")
		databaseStore = store.NewDatabaseStore(database)
		audit = databaseStore
	} else {
		log.Println("warning: DB_URL not provided, using file-based turn log only")
		audit = turnLog
	}

	s := &Server{
		router:        r,
		store:         ms,
		cfg:           cfg,
		database:      database,
		databaseStore: databaseStore,
		turnLog:       turnLog,
		agent:         agent.New(ms, talk, audit),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Method(http.MethodPost, "/api/webhook", assistant.Webhook(s.agent.Handlers()))
	s.router.Get("/api/turns/{conversationID}", s.handleTurns)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) Close() {
	if s.database != nil {
		s.database.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.database != nil {
		if err := s.database.HealthCheck(); err != nil {
			log.Println("database health check failed:", err)
			status["status"] = "degraded"
			status["database"] = err.Error()
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

// handleTurns exposes the audit trail for a conversation, newest first.
func (s *Server) handleTurns(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	var records []types.TurnRecord
	var err error
	if s.databaseStore != nil {
		records, err = s.databaseStore.Recent(conversationID, limit)
	} else {
		records, err = s.recentFromFile(conversationID, limit)
	}
	if err != nil {
		log.Println("failed to load turn records:", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load turn records")
		return
	}
	if records == nil {
		records = []types.TurnRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

func (s *Server) recentFromFile(conversationID string, limit int) ([]types.TurnRecord, error) {
	all, err := s.turnLog.ReadAll()
	if err != nil {
		return nil, err
	}
	var out []types.TurnRecord
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if all[i].ConversationID == conversationID {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}
