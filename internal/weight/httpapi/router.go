// Package httpapi wires the weight service's HTTP surface, following
// the teacher's chi.Router + App{db,cfg} + writeJSON/writeAPIError
// shape.
package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"ganshmuel/platform/internal/apperr"
	"ganshmuel/platform/internal/httpjson"
	"ganshmuel/platform/internal/timefmt"
	"ganshmuel/platform/internal/weight/batchfile"
	weightcfg "ganshmuel/platform/internal/weight/config"
	"ganshmuel/platform/internal/weight/containers"
	"ganshmuel/platform/internal/weight/query"
	"ganshmuel/platform/internal/weight/store"
	"ganshmuel/platform/internal/weight/weighing"
)

type Deps struct {
	DB     *pgxpool.Pool
	Config weightcfg.Config
	Logger zerolog.Logger
}

type App struct {
	db         *pgxpool.Pool
	cfg        weightcfg.Config
	log        zerolog.Logger
	containers *containers.Service
	engine     *weighing.Engine
	query      *query.Service
	containerRepo *store.ContainerRepo
}

func NewRouter(deps Deps) http.Handler {
	containerRepo := store.NewContainerRepo(deps.DB)
	txRepo := store.NewTransactionRepo(deps.DB)

	app := &App{
		db:            deps.DB,
		cfg:           deps.Config,
		log:           deps.Logger,
		containers:    containers.New(containerRepo),
		engine:        weighing.New(deps.DB, containerRepo, txRepo),
		query:         query.New(txRepo, containerRepo),
		containerRepo: containerRepo,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(app.loggingMiddleware)

	r.Get("/healthz", app.handleHealth)
	r.Get("/health", app.handleHealth)

	r.Route("/", func(api chi.Router) {
		api.Post("/weight", app.handleWeight)
		api.Post("/batch-weight", app.handleBatchWeight)
		api.Get("/weight", app.handleListWeight)
		api.Get("/item/{id}", app.handleItem)
		api.Get("/session/{id}", app.handleSession)
		api.Get("/unknown", app.handleUnknown)
		api.Post("/container", app.handleRegisterContainer)
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
		"service":  "weight-service",
		"database": map[bool]string{true: "connected", false: "disconnected"}[healthy],
	})
}

func parseContainers(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (a *App) handleWeight(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Direction  string `json:"direction"`
		Truck      string `json:"truck"`
		Containers any    `json:"containers"`
		Weight     int    `json:"weight"`
		Unit       string `json:"unit"`
		Produce    string `json:"produce"`
		Force      bool   `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}

	var containerIDs []string
	switch v := body.Containers.(type) {
	case string:
		containerIDs = parseContainers(v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				containerIDs = append(containerIDs, strings.TrimSpace(s))
			}
		}
	}

	resp, err := a.engine.Record(r.Context(), weighing.Request{
		Direction:  body.Direction,
		Truck:      body.Truck,
		Containers: containerIDs,
		Weight:     body.Weight,
		Unit:       body.Unit,
		Produce:    body.Produce,
		Force:      body.Force,
	})
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}

	httpjson.WriteJSON(w, http.StatusOK, weighResponseJSON(resp))
}

func weighResponseJSON(resp weighing.Response) map[string]any {
	out := map[string]any{
		"id":         resp.ID,
		"session_id": resp.SessionID,
		"direction":  resp.Direction,
		"truck":      resp.Truck,
		"bruto":      resp.Bruto,
	}
	if resp.TruckTara != nil {
		out["truck_tara"] = *resp.TruckTara
	} else {
		out["truck_tara"] = nil
	}
	if resp.Neto != nil {
		out["neto"] = *resp.Neto
	} else {
		out["neto"] = "na"
	}
	return out
}

func (a *App) handleRegisterContainer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID     string `json:"id"`
		Weight int    `json:"weight"`
		Unit   string `json:"unit"`
		Force  bool   `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}
	created, err := a.containers.Upsert(r.Context(), body.ID, body.Weight, body.Unit, body.Force)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpjson.WriteJSON(w, status, map[string]any{"id": body.ID, "created": created})
}

func (a *App) handleBatchWeight(w http.ResponseWriter, r *http.Request) {
	var body struct {
		File string `json:"file"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}

	path, err := batchfile.ResolvePath(a.cfg.UploadDir, body.File)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		httpjson.WriteAPIError(w, http.StatusNotFound, "NOT_FOUND", "batch file not found")
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		httpjson.WriteAPIError(w, http.StatusInternalServerError, "INTERNAL", "could not stat batch file")
		return
	}

	parsed, err := batchfile.ParseByExtension(body.File, st.Size(), f)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}
	if parsed.UsedHeuristic {
		a.log.Warn().Str("file", body.File).Msg("batch file used the >500kg-implies-lbs unit heuristic")
	}

	result, err := a.containers.BatchUpsert(r.Context(), parsed.Rows, true, true)
	if err != nil {
		httpjson.WriteErr(w, err)
		return
	}

	httpjson.WriteJSON(w, http.StatusOK, map[string]any{
		"processed": result.Processed,
		"updated":   result.Updated,
		"skipped":   result.Skipped,
		"errors":    result.Errors,
	})
}

func (a *App) handleListWeight(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := timefmt.DefaultRange(q.Get("from"), q.Get("to"), time.Now())
	if err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	var directions []store.Direction
	if f := q.Get("filter"); f != "" {
		for _, d := range strings.Split(f, ",") {
			directions = append(directions, store.Direction(strings.TrimSpace(d)))
		}
	}

	txs, err := a.query.InWindow(r.Context(), from, to, directions)
	if err != nil {
		httpjson.WriteErr(w, apperr.Wrap(apperr.KindInternal, "query failed", err))
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, txs)
}

func (a *App) handleItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()
	from, to, err := timefmt.DefaultRange(q.Get("from"), q.Get("to"), time.Now())
	if err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	kind, err := a.query.Classify(r.Context(), id)
	if err != nil {
		httpjson.WriteErr(w, apperr.Wrap(apperr.KindInternal, "lookup failed", err))
		return
	}

	switch kind {
	case query.KindContainer:
		info, err := a.query.ContainerInfo(r.Context(), id, from, to)
		if err != nil {
			httpjson.WriteErr(w, apperr.Wrap(apperr.KindInternal, "query failed", err))
			return
		}
		tare := any("na")
		if info.TareKg != nil {
			tare = *info.TareKg
		}
		httpjson.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "tare": tare, "sessions": info.SessionIDs})
	case query.KindTruck:
		info, err := a.query.TruckInfo(r.Context(), id, from, to)
		if err != nil {
			httpjson.WriteErr(w, apperr.Wrap(apperr.KindInternal, "query failed", err))
			return
		}
		avg := any("na")
		if info.AvgTruckTaraKg != nil {
			avg = *info.AvgTruckTaraKg
		}
		httpjson.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "truckTara": avg, "sessions": info.SessionIDs})
	default:
		httpjson.WriteAPIError(w, http.StatusNotFound, "NOT_FOUND", "item not found")
	}
}

func (a *App) handleSession(w http.ResponseWriter, r *http.Request) {
	txRepo := store.NewTransactionRepo(a.db)
	id := chi.URLParam(r, "id")
	txs, err := txRepo.BySessionID(r.Context(), id)
	if err != nil {
		httpjson.WriteErr(w, apperr.Wrap(apperr.KindInternal, "query failed", err))
		return
	}
	if len(txs) == 0 {
		httpjson.WriteAPIError(w, http.StatusNotFound, "NOT_FOUND", "session not found")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, txs)
}

func (a *App) handleUnknown(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := timefmt.DefaultRange(q.Get("from"), q.Get("to"), time.Now())
	if err != nil {
		httpjson.WriteAPIError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	ids, err := a.query.UnknownContainers(r.Context(), from, to)
	if err != nil {
		httpjson.WriteErr(w, apperr.Wrap(apperr.KindInternal, "query failed", err))
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, ids)
}
