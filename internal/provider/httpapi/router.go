// Package httpapi wires the provider-registration service's HTTP
// surface, following the same chi.Router + App{db,cfg} shape as the
// other services.
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

	"ganshmuel/platform/internal/apperr"
	"ganshmuel/platform/internal/httpjson"
	"ganshmuel/platform/internal/provider/auth"
	"ganshmuel/platform/internal/provider/billingclient"
	"ganshmuel/platform/internal/provider/candidates"
	providercfg "ganshmuel/platform/internal/provider/config"
	"ganshmuel/platform/internal/provider/store"
)

type Deps struct {
	DB     *pgxpool.Pool
	Config providercfg.Config
	Logger zerolog.Logger
}

type App struct {
	db         *pgxpool.Pool
	cfg        providercfg.Config
	log        zerolog.Logger
	candidates *candidates.Service
	issuer     *auth.Issuer
}

func NewRouter(deps Deps) (http.Handler, error) {
	candidateRepo := store.NewCandidateRepo(deps.DB)
	billingCl := billingclient.New(deps.Config.BillingServiceURL)

	issuer, err := auth.NewIssuer(deps.Config.JWTSecret, deps.Config.JWTTTL, deps.Config.AdminUsername, deps.Config.AdminPassword)
	if err != nil {
		return nil, err
	}

	app := &App{
		db:         deps.DB,
		cfg:        deps.Config,
		log:        deps.Logger,
		candidates: candidates.New(candidateRepo, billingCl),
		issuer:     issuer,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(app.loggingMiddleware)

	r.Get("/healthz", app.handleHealth)
	r.Get("/health", app.handleHealth)

	r.Post("/auth/login", app.handleLogin)
	r.Post("/candidates", app.handleCreateCandidate)
	r.Get("/candidates", app.handleListCandidates)
	r.Get("/candidates/{id}", app.handleGetCandidate)

	r.Group(func(admin chi.Router) {
		admin.Use(issuer.RequireAdmin)
		admin.Post("/candidates/{id}/approve", app.handleApprove)
		admin.Post("/candidates/{id}/reject", app.handleReject)
	})

	return r, nil
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
		"service":  "provider-registration-service",
		"database": map[bool]string{true: "connected", false: "disconnected"}[healthy],
	})
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}
	token, err := a.issuer.Login(body.Username, body.Password)
	if err != nil {
		httpjson.WriteAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{"access_token": token, "token_type": "bearer"})
}

func (a *App) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CompanyName     string   `json:"company_name"`
		ContactEmail    string   `json:"contact_email"`
		Phone           *string  `json:"phone"`
		Products        []string `json:"products"`
		TruckCount      int      `json:"truck_count"`
		CapacityTonsDay int      `json:"capacity_tons_per_day"`
		Location        *string  `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpjson.WriteAPIError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid json")
		return
	}
	c, err := a.candidates.Create(r.Context(), candidates.CreateInput{
		CompanyName:     body.CompanyName,
		ContactEmail:    body.ContactEmail,
		Phone:           body.Phone,
		Products:        body.Products,
		TruckCount:      body.TruckCount,
		CapacityTonsDay: body.CapacityTonsDay,
		Location:        body.Location,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			httpjson.WriteAPIError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error())
			return
		}
		httpjson.WriteErr(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, c)
}

func (a *App) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := candidates.ListInput{}
	if s := q.Get("status"); s != "" {
		in.Status = &s
	}
	if p := q.Get("product"); p != "" {
		in.Product = &p
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		in.Page = page
	}
	pageSize := q.Get("page_size")
	if pageSize == "" {
		pageSize = q.Get("limit")
	}
	if ps, err := strconv.Atoi(pageSize); err == nil {
		in.PageSize = ps
	}

	list, err := a.candidates.List(r.Context(), in)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, list)
}

func (a *App) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := a.candidates.Get(r.Context(), id)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	if c == nil {
		httpjson.WriteAPIError(w, http.StatusNotFound, "NOT_FOUND", "candidate not found")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, c)
}

func (a *App) handleApprove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := a.candidates.Approve(r.Context(), id)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, c)
}

func (a *App) handleReject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Reason *string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	c, err := a.candidates.Reject(r.Context(), id, body.Reason)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, c)
}
