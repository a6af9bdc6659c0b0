package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/kirillkom/program-assistant/internal/core/domain"
	"github.com/kirillkom/program-assistant/internal/core/ports"
	"github.com/kirillkom/program-assistant/internal/infrastructure/resilience"
)

const drainTimeout = 30 * time.Second

// QuestionRequest is what the chat platform publishes for every user message.
type QuestionRequest struct {
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	// SentAtMs is the sender clock in unix milliseconds, used for lag metrics.
	SentAtMs int64 `json:"sent_at_ms,omitempty"`
}

// QuestionReply carries either a reply or a user-safe failure text.
type QuestionReply struct {
	RequestID string        `json:"request_id"`
	Reply     *domain.Reply `json:"reply,omitempty"`
	Failed    bool          `json:"failed,omitempty"`
	Text      string        `json:"text,omitempty"`
}

// Recorder receives worker measurements.
type Recorder interface {
	StartQuestion()
	FinishQuestion(service, status string, duration time.Duration)
	ObserveQueueLag(service string, lag time.Duration)
}

type Bus struct {
	conn       *nats.Conn
	subject    string
	queueGroup string
	executor   *resilience.Executor
	logger     *slog.Logger
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

func New(url, subject, queueGroup string, options Options) (*Bus, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("program-assistant"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Bus{
		conn:       conn,
		subject:    subject,
		queueGroup: queueGroup,
		executor:   options.ResilienceExecutor,
		logger:     logger,
	}, nil
}

func (b *Bus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

// Ask sends one question and waits for the worker reply. It is the call the
// chat platform makes; a missing request id is generated.
func (b *Bus) Ask(ctx context.Context, req QuestionRequest) (*QuestionReply, error) {
	if strings.TrimSpace(req.RequestID) == "" {
		req.RequestID = uuid.NewString()
	}
	if req.SentAtMs == 0 {
		req.SentAtMs = time.Now().UnixMilli()
	}
	return b.ask(ctx, req, b.conn.RequestWithContext)
}

type requestFunc func(ctx context.Context, subject string, data []byte) (*nats.Msg, error)

func (b *Bus) ask(ctx context.Context, req QuestionRequest, request requestFunc) (*QuestionReply, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal question: %w", err)
	}

	msg, err := resilience.Do(ctx, b.executor, "nats.request", func(ctx context.Context) (*nats.Msg, error) {
		msg, err := request(ctx, b.subject, payload)
		if err != nil {
			return nil, fmt.Errorf("nats request: %w", err)
		}
		return msg, nil
	}, classifyNATSError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded(err)
	}

	var reply QuestionReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return &reply, nil
}

type ServeOptions struct {
	// Concurrency bounds questions answered at once. Defaults to 1.
	Concurrency int
	// Timeout bounds answering one question. Zero disables it.
	Timeout  time.Duration
	Service  string
	Recorder Recorder
}

// Serve answers questions from the queue group until ctx is canceled. On
// shutdown the subscription is drained: questions already delivered are still
// answered before Serve returns.
func (b *Bus) Serve(ctx context.Context, answerer ports.QuestionAnswerer, opts ServeOptions) error {
	h := newHandler(answerer, opts, b.logger)
	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWork()

	var work inflight
	sub, err := b.conn.QueueSubscribe(b.subject, b.queueGroup, func(msg *nats.Msg) {
		if !work.begin() {
			b.logger.Warn("question_dropped_after_shutdown", slog.String("subject", msg.Subject))
			return
		}
		h.slots <- struct{}{}
		go func() {
			defer work.done()
			defer func() { <-h.slots }()

			reply := h.handle(workCtx, msg.Data)
			b.respond(msg, reply)
		}()
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := b.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	b.logger.Info("worker_subscribed",
		slog.String("subject", b.subject),
		slog.String("queue_group", b.queueGroup),
		slog.Int("concurrency", cap(h.slots)),
	)

	<-ctx.Done()
	drainErr := sub.Drain()
	if drainErr == nil {
		deadline := time.Now().Add(drainTimeout)
		for sub.IsValid() && time.Now().Before(deadline) {
			time.Sleep(50 * time.Millisecond)
		}
	}
	work.closeAndWait()
	if drainErr != nil {
		return fmt.Errorf("nats drain subscription: %w", drainErr)
	}
	if err := b.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

// inflight counts questions being answered. Once closed it refuses new work,
// so nothing is added to the group while it is being waited on.
type inflight struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func (f *inflight) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.wg.Add(1)
	return true
}

func (f *inflight) done() {
	f.wg.Done()
}

func (f *inflight) closeAndWait() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.wg.Wait()
}

func (b *Bus) respond(msg *nats.Msg, reply QuestionReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		b.logger.Error("reply_encode_failed", slog.String("request_id", reply.RequestID), slog.Any("error", err))
		return
	}
	if err := msg.Respond(data); err != nil && !errors.Is(err, nats.ErrMsgNoReply) {
		b.logger.Warn("reply_send_failed", slog.String("request_id", reply.RequestID), slog.Any("error", err))
	}
}

type handler struct {
	answerer ports.QuestionAnswerer
	timeout  time.Duration
	service  string
	recorder Recorder
	logger   *slog.Logger
	slots    chan struct{}
}

func newHandler(answerer ports.QuestionAnswerer, opts ServeOptions, logger *slog.Logger) *handler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Service == "" {
		opts.Service = "worker"
	}
	return &handler{
		answerer: answerer,
		timeout:  opts.Timeout,
		service:  opts.Service,
		recorder: opts.Recorder,
		logger:   logger,
		slots:    make(chan struct{}, opts.Concurrency),
	}
}

func (h *handler) handle(ctx context.Context, data []byte) QuestionReply {
	started := time.Now()
	if h.recorder != nil {
		h.recorder.StartQuestion()
	}
	reply, status := h.answer(ctx, data)
	if h.recorder != nil {
		h.recorder.FinishQuestion(h.service, status, time.Since(started))
	}
	return reply
}

func (h *handler) answer(ctx context.Context, data []byte) (QuestionReply, string) {
	var req QuestionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.logger.Warn("question_decode_failed", slog.Any("error", err))
		return QuestionReply{Failed: true, Text: domain.ApologyMessage}, "invalid"
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.SentAtMs > 0 && h.recorder != nil {
		h.recorder.ObserveQueueLag(h.service, time.Since(time.UnixMilli(req.SentAtMs)))
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	reply, err := h.answerer.AnswerQuestion(ctx, req.Text)
	switch {
	case err == nil:
		h.logger.Info("question_answered",
			slog.String("request_id", req.RequestID),
			slog.String("user_id", req.UserID),
			slog.String("kind", string(reply.Kind)),
		)
		return QuestionReply{RequestID: req.RequestID, Reply: reply}, "success"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return QuestionReply{RequestID: req.RequestID, Failed: true, Text: domain.EmptyQuestionMessage}, "invalid"
	default:
		h.logger.Error("question_failed",
			slog.String("request_id", req.RequestID),
			slog.String("user_id", req.UserID),
			slog.Any("error", err),
		)
		return QuestionReply{RequestID: req.RequestID, Failed: true, Text: domain.ApologyMessage}, "error"
	}
}
