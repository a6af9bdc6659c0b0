package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestHTTPMiddlewareNormalizesUnknownPaths(t *testing.T) {
	m := NewHTTPServerMetrics("api", "/v1/ask")
	h := m.Middleware("api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/ask", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/123", nil))
	m.RecordRateLimited("api", "/v1/ask")

	out := scrape(t, m.Handler())
	for _, want := range []string{
		`assistant_http_requests_total{method="POST",path="/v1/ask",service="api",status="418"} 1`,
		`assistant_http_requests_total{method="GET",path="other",service="api",status="418"} 1`,
		`assistant_http_rate_limited_total{path="/v1/ask",service="api"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPipelineMetricsSharesRegistry(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	p := NewPipelineMetrics(m.Registry(), "api")
	p.ObserveReply("snippets", 10*time.Millisecond)
	p.ObserveRelevance(0.01, false)
	p.ObserveGeneration("ollama", time.Second, errors.New("boom"))

	out := scrape(t, m.Handler())
	for _, want := range []string{
		`assistant_pipeline_replies_total{kind="snippets",service="api"} 1`,
		`assistant_pipeline_relevance_score_count{service="api",verdict="off_topic"} 1`,
		`assistant_llm_generations_total{generator="ollama",service="api",status="error"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestWorkerMetrics(t *testing.T) {
	m := NewWorkerMetrics("worker")
	m.StartQuestion()
	m.FinishQuestion("worker", "success", 20*time.Millisecond)
	m.ObserveQueueLag("worker", -time.Second)

	out := scrape(t, m.Handler())
	if !strings.Contains(out, `assistant_worker_questions_total{service="worker",status="success"} 1`) {
		t.Fatalf("missing question counter in:\n%s", out)
	}
	if !strings.Contains(out, `assistant_worker_questions_in_flight{service="worker"} 0`) {
		t.Fatalf("in-flight gauge not decremented:\n%s", out)
	}
	if strings.Contains(out, "assistant_worker_queue_lag_seconds_count") {
		t.Fatalf("negative lag must not be observed")
	}
}
