// Package httpapi wires the shift service's HTTP surface: a shallow
// CRUD layer alongside the core weighing/billing subsystems.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"ganshmuel/platform/internal/httpjson"
	shiftcfg "ganshmuel/platform/internal/shift/config"
	"ganshmuel/platform/internal/shift/shifts"
	"ganshmuel/platform/internal/shift/store"
)

type Deps struct {
	DB     *pgxpool.Pool
	Config shiftcfg.Config
	Logger zerolog.Logger
}

type App struct {
	db     *pgxpool.Pool
	cfg    shiftcfg.Config
	log    zerolog.Logger
	shifts *shifts.Service
}

func NewRouter(deps Deps) http.Handler {
	app := &App{
		db:     deps.DB,
		cfg:    deps.Config,
		log:    deps.Logger,
		shifts: shifts.New(store.New(deps.DB)),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(app.loggingMiddleware)

	r.Get("/healthz", app.handleHealth)
	r.Get("/health", app.handleHealth)

	r.Route("/", func(api chi.Router) {
		api.Post("/shifts", app.handleStart)
		api.Post("/shifts/{id}/end", app.handleEnd)
		api.Get("/shifts/{id}", app.handleGet)
		api.Get("/shifts", app.handleList)
	})

	return r
}

func (a *App) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request_completed")
	})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	healthy := true
	if err := a.db.Ping(r.Context()); err != nil {
		healthy = false
	}
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"service":  "shift-service",
		"database": map[bool]string{true: "connected", false: "disconnected"}[healthy],
	})
}

func (a *App) handleStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Operator string `json:"operator"`
		Notes    string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}
	s, err := a.shifts.Start(r.Context(), body.Operator, body.Notes)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, s)
}

func (a *App) handleEnd(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid shift id")
		return
	}
	s, err := a.shifts.End(r.Context(), id)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, s)
}

func (a *App) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid shift id")
		return
	}
	s, err := a.shifts.Get(r.Context(), id)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	if s == nil {
		httpjson.WriteAPIError(w, http.StatusNotFound, "NOT_FOUND", "shift not found")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, s)
}

func (a *App) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := a.shifts.List(r.Context())
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, list)
}
