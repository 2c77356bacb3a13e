package web

import (
	"net/http"
	"time"

	"league-app/internal/league"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type Options struct {
	Logger zerolog.Logger
	// CORSOrigins defaults to any origin when empty.
	CORSOrigins []string
}

type Server struct {
	engine  *league.Engine
	log     zerolog.Logger
	origins []string
}

func NewServer(engine *league.Engine, opts Options) *Server {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{engine: engine, log: opts.Logger, origins: origins}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(s.log))
	r.Use(withRequestID)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/teams", func(r chi.Router) {
		r.Get("/", s.handleTeamList)
		r.Post("/", s.handleTeamCreate)
		r.Put("/{teamID}", s.handleTeamRename)
		r.Get("/{teamID}/players", s.handlePlayerList)
		r.Post("/{teamID}/players", s.handlePlayerCreate)
	})
	r.Get("/players/{playerID}", s.handlePlayerShow)
	r.Post("/players/{playerID}/rebuild", s.handlePlayerRebuild)

	r.Route("/tables", func(r chi.Router) {
		r.Get("/", s.handleTableList)
		r.Post("/", s.handleTableCreate)
		r.Get("/{tableID}", s.handleTableShow)
		r.Get("/{tableID}/standings", s.handleStandings)
		r.Post("/{tableID}/rebuild", s.handleTableRebuild)
	})

	r.Route("/rounds", func(r chi.Router) {
		r.Get("/", s.handleRoundList)
		r.Post("/", s.handleRoundCreate)
		r.Put("/{roundID}", s.handleRoundRename)
		r.Post("/{roundID}/archive", s.handleRoundArchive)
		r.Delete("/{roundID}", s.handleRoundDelete)
		r.Get("/{roundID}/fights", s.handleFightList)
		r.Post("/{roundID}/fights", s.handleFightCreate)
	})

	r.Route("/fights/{fightID}", func(r chi.Router) {
		r.Get("/", s.handleFightShow)
		r.Put("/", s.handleFightUpdate)
		r.Delete("/", s.handleFightDelete)
		r.Get("/goals", s.handleGoalList)
		r.Post("/goals", s.handleGoalCreate)
	})
	r.Put("/goals/{goalID}", s.handleGoalUpdate)
	r.Delete("/goals/{goalID}", s.handleGoalDelete)

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
