package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ppiankov/aidaily/internal/pipeline"
	"go.uber.org/zap"
)

const actionGenerateReport = "generate_report"

type runRequest struct {
	Action string `json:"action"`
}

type runResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Data    *runData `json:"data,omitempty"`
}

type runData struct {
	Date          string `json:"date"`
	Products      int    `json:"products"`
	TotalAnalyzed int    `json:"total_products_analyzed"`
}

// newAPIRouter serves health, status and the run trigger
func newAPIRouter(p *pipeline.Pipeline) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, p.Status())
	})
	r.Post("/run", runHandler(p))
	return r
}

// runHandler performs a full run; an empty body means generate_report
func runHandler(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req runRequest
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, runResponse{Error: "read request: " + err.Error()})
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				writeJSON(w, http.StatusBadRequest, runResponse{Error: "invalid request body"})
				return
			}
		}
		if req.Action == "" {
			req.Action = actionGenerateReport
		}
		if req.Action != actionGenerateReport {
			writeJSON(w, http.StatusBadRequest, runResponse{Error: "unknown action: " + req.Action})
			return
		}

		// The run outlives a client that disconnects
		rep, err := p.RunOnce(context.WithoutCancel(r.Context()))
		switch {
		case errors.Is(err, pipeline.ErrRunInProgress):
			writeJSON(w, http.StatusConflict, runResponse{Error: err.Error()})
			return
		case err != nil:
			zap.L().Error("triggered run failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, runResponse{Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, runResponse{
			Success: true,
			Message: "daily report generated and delivered",
			Data: &runData{
				Date:          rep.GeneratedAt.Format("2006-01-02"),
				Products:      rep.RelevantCount,
				TotalAnalyzed: rep.TotalAnalyzed,
			},
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
