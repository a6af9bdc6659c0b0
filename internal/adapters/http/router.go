package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirillkom/program-assistant/internal/config"
	"github.com/kirillkom/program-assistant/internal/core/domain"
	"github.com/kirillkom/program-assistant/internal/core/ports"
	"github.com/kirillkom/program-assistant/internal/observability/metrics"
)

const (
	serviceName  = "api"
	maxBodyBytes = 64 << 10
)

var routePaths = []string{"/healthz", "/metrics", "/v1/ask", "/v1/search", "/v1/recommend"}

// HealthFunc reports extra status fields such as corpus size or breaker states.
type HealthFunc func() map[string]any

type RouterDeps struct {
	Answerer    ports.QuestionAnswerer
	Searcher    ports.ChunkSearcher
	Classifier  ports.IntentClassifier
	Recommender ports.ElectiveRecommender
	Health      HealthFunc
	Metrics     *metrics.HTTPServerMetrics
	Logger      *slog.Logger
}

type Router struct {
	cfg  config.Config
	deps RouterDeps
}

func NewRouter(cfg config.Config, deps RouterDeps) *Router {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Router{cfg: cfg, deps: deps}
}

// KnownPaths lists the routes reported as distinct metric labels.
func KnownPaths() []string {
	return append([]string(nil), routePaths...)
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/ask", rt.ask)
	mux.HandleFunc("POST /v1/search", rt.search)
	mux.HandleFunc("POST /v1/recommend", rt.recommend)
	if rt.deps.Metrics != nil {
		mux.Handle("GET /metrics", rt.deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.deps.Metrics, serviceName)
	if rt.deps.Metrics != nil {
		handler = rt.deps.Metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(rt.deps.Logger, handler)
	return requestIDMiddleware(handler)
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type askRequest struct {
	Question string `json:"question"`
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Results []domain.RetrievedChunk `json:"results"`
}

type recommendRequest struct {
	Text string `json:"text"`
	// Program overrides detection from Text when set.
	Program domain.Program `json:"program"`
	TopK    int            `json:"top_k"`
}

type recommendResponse struct {
	Program         domain.Program         `json:"program,omitempty"`
	Tags            []domain.BackgroundTag `json:"tags"`
	Recommendations []string               `json:"recommendations"`
	Text            string                 `json:"text,omitempty"`
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok"}
	if rt.deps.Health != nil {
		for k, v := range rt.deps.Health() {
			payload[k] = v
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !rt.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	if rt.cfg.QuestionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.cfg.QuestionTimeout)
		defer cancel()
	}
	reply, err := rt.deps.Answerer.AnswerQuestion(ctx, req.Question)
	if err != nil {
		rt.writeError(w, r, "ask", err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !rt.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		rt.writeError(w, r, "search", domain.WrapError(domain.ErrInvalidInput, "search", errors.New("query is required")))
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = rt.cfg.RAGTopK
	}

	results, err := rt.deps.Searcher.Search(r.Context(), req.Query, topK)
	if err != nil {
		rt.writeError(w, r, "search", err)
		return
	}
	if results == nil {
		results = []domain.RetrievedChunk{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (rt *Router) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if !rt.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" && req.Program == "" {
		rt.writeError(w, r, "recommend", domain.WrapError(domain.ErrInvalidInput, "recommend", errors.New("text is required")))
		return
	}
	if req.Program != "" && !req.Program.Valid() {
		rt.writeError(w, r, "recommend", domain.WrapError(domain.ErrInvalidInput, "recommend", errors.New("unknown program")))
		return
	}

	resp := recommendResponse{
		Tags:            rt.deps.Classifier.BackgroundTags(req.Text),
		Recommendations: []string{},
	}
	if resp.Tags == nil {
		resp.Tags = []domain.BackgroundTag{}
	}

	program := req.Program
	if program == "" {
		detected, ok := rt.deps.Classifier.DetectProgram(req.Text)
		if !ok {
			resp.Text = domain.AskProgramMessage
			writeJSON(w, http.StatusOK, resp)
			return
		}
		program = detected
	}
	resp.Program = program

	topK := req.TopK
	if topK <= 0 {
		topK = rt.cfg.RecommendTopK
	}
	if recs := rt.deps.Recommender.Recommend(r.Context(), resp.Tags, program, topK); len(recs) > 0 {
		resp.Recommendations = recs
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:     "invalid json",
			RequestID: requestIDFromContext(r.Context()),
		})
		return false
	}
	return true
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := mapErrorToHTTPStatus(err)
	requestID := requestIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		rt.deps.Logger.Error("request_failed",
			slog.String("request_id", requestID),
			slog.String("operation", op),
			slog.Any("error", err),
		)
	}
	writeJSON(w, status, errorResponse{Error: userMessage(op, status), RequestID: requestID})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
