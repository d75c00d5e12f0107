// Package httpapi wires the billing service's HTTP surface, following
// the same chi.Router + App{db,cfg} + writeJSON shape as the weight
// service.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"ganshmuel/platform/internal/billing/billing"
	billingcfg "ganshmuel/platform/internal/billing/config"
	"ganshmuel/platform/internal/billing/rates"
	"ganshmuel/platform/internal/billing/registry"
	"ganshmuel/platform/internal/billing/store"
	"ganshmuel/platform/internal/billing/weightclient"
	"ganshmuel/platform/internal/httpjson"
	"ganshmuel/platform/internal/timefmt"
)

type Deps struct {
	DB     *pgxpool.Pool
	Config billingcfg.Config
	Logger zerolog.Logger
}

type App struct {
	db       *pgxpool.Pool
	cfg      billingcfg.Config
	log      zerolog.Logger
	registry *registry.Service
	rates    *rates.Service
	billing  *billing.Service
}

func NewRouter(deps Deps) http.Handler {
	providerRepo := store.NewProviderRepo(deps.DB)
	truckRepo := store.NewTruckRepo(deps.DB)
	rateRepo := store.NewRateRepo(deps.DB)

	ratesSvc := rates.New(rateRepo)
	weightCl := weightclient.New(deps.Config.WeightServiceURL)

	app := &App{
		db:       deps.DB,
		cfg:      deps.Config,
		log:      deps.Logger,
		registry: registry.New(providerRepo, truckRepo),
		rates:    ratesSvc,
		billing:  billing.New(providerRepo, truckRepo, ratesSvc, weightCl),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(app.loggingMiddleware)

	r.Get("/healthz", app.handleHealth)
	r.Get("/health", app.handleHealth)

	r.Route("/", func(api chi.Router) {
		api.Post("/provider", app.handleCreateProvider)
		api.Get("/provider/{id}", app.handleGetProvider)
		api.Put("/provider/{id}", app.handleRenameProvider)
		api.Post("/truck", app.handleUpsertTruck)
		api.Put("/truck/{id}", app.handleUpdateTruck)
		api.Get("/truck/{id}", app.handleGetTruck)
		api.Get("/rates", app.handleListRates)
		api.Post("/rates", app.handleReplaceRates)
		api.Get("/bill/{provider_id}", app.handleBill)
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
		"service":  "billing-service",
		"database": map[bool]string{true: "connected", false: "disconnected"}[healthy],
	})
}

func (a *App) handleCreateProvider(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}
	p, err := a.registry.CreateProvider(r.Context(), body.Name)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, p)
}

func (a *App) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid provider id")
		return
	}
	p, err := a.registry.GetProvider(r.Context(), id)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	if p == nil {
		httpjson.WriteAPIError(w, http.StatusNotFound, "NOT_FOUND", "provider not found")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, p)
}

func (a *App) handleRenameProvider(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid provider id")
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}
	p, err := a.registry.RenameProvider(r.Context(), id, body.Name)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, p)
}

func (a *App) handleUpsertTruck(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID         string `json:"id"`
		ProviderID int64  `json:"provider_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}
	created, err := a.registry.UpsertTruck(r.Context(), body.ID, body.ProviderID)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpjson.WriteJSON(w, status, map[string]any{"id": body.ID, "provider_id": body.ProviderID, "created": created})
}

func (a *App) handleUpdateTruck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		ProviderID int64 `json:"provider_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}
	if existing, err := a.registry.GetTruck(r.Context(), id); err != nil {
		httpjson.WriteErr(w, err)
		return
	} else if existing == nil {
		httpjson.WriteAPIError(w, http.StatusNotFound, "NOT_FOUND", "truck not found")
		return
	}
	if _, err := a.registry.UpsertTruck(r.Context(), id, body.ProviderID); err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "provider_id": body.ProviderID})
}

func (a *App) handleGetTruck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := a.registry.GetTruck(r.Context(), id)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	if t == nil {
		httpjson.WriteAPIError(w, http.StatusNotFound, "NOT_FOUND", "truck not found")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, t)
}

func (a *App) handleListRates(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	list, err := a.rates.List(r.Context())
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	if format == "excel" {
		data, err := rates.WriteExcel(list)
		if err != nil {
			httpjson.WriteAPIError(w, http.StatusInternalServerError, "INTERNAL", "could not render rate sheet")
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="rates.xlsx"`)
		w.Write(data)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, list)
}

func (a *App) handleReplaceRates(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" || contentType == "application/octet-stream" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "could not read upload")
			return
		}
		rows, err := rates.ParseExcel(data)
		if err != nil {
			httpjson.WriteErr(w, err)
			return
		}
		if err := a.rates.ReplaceFromRows(r.Context(), rows); err != nil {
			httpjson.WriteErr(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, map[string]any{"message": fmt.Sprintf("%d rates loaded", len(rows))})
		return
	}

	var rows []store.Rate
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}
	if err := a.rates.ReplaceFromRows(r.Context(), rows); err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{"message": fmt.Sprintf("%d rates loaded", len(rows))})
}

func (a *App) handleBill(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(chi.URLParam(r, "provider_id"), 10, 64)
	if err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid provider id")
		return
	}
	q := r.URL.Query()
	fromT, toT, err := timefmt.DefaultRange(q.Get("from"), q.Get("to"), time.Now())
	if err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	bill, err := a.billing.Generate(r.Context(), providerID, timefmt.Format(fromT), timefmt.Format(toT))
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, bill)
}
