// Package gateway routes inbound conversation events to the handler that the
// current conversation mode admits and turns pipeline results into outbound
// messages.
package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cortexhub/mediabot/internal/channel"
	"github.com/cortexhub/mediabot/internal/conversation"
	"github.com/cortexhub/mediabot/internal/metrics"
	"github.com/cortexhub/mediabot/internal/pipeline"
)

// Options carries the router knobs taken from configuration. The limit fields
// mirror the adapters' own validation and exist only to word user messages.
type Options struct {
	CallTimeout     time.Duration
	QueueSize       int
	MaxVideoSeconds float64
	MaxTranslateLen int
	MaxSynthesisLen int
}

// Router dispatches events to per-conversation workers so that one slow
// pipeline call never stalls another conversation. Events of a single
// conversation are handled strictly in order.
type Router struct {
	store     *conversation.Store
	transport channel.Transport
	adapters  map[pipeline.Kind]pipeline.Adapter
	opts      Options
	logger    *slog.Logger

	mu      sync.Mutex
	workers map[string]chan *channel.Event
	wg      sync.WaitGroup
	closed  bool
}

func New(store *conversation.Store, transport channel.Transport, adapters []pipeline.Adapter, opts Options, logger *slog.Logger) *Router {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	byKind := make(map[pipeline.Kind]pipeline.Adapter, len(adapters))
	for _, a := range adapters {
		byKind[a.Kind()] = a
	}
	return &Router{
		store:     store,
		transport: transport,
		adapters:  byKind,
		opts:      opts,
		logger:    logger,
		workers:   make(map[string]chan *channel.Event),
	}
}

// Dispatch enqueues one event for its conversation's worker. It never blocks:
// if the conversation's queue is full the event is dropped with a warning.
func (r *Router) Dispatch(evt *channel.Event) {
	if evt == nil || evt.ConversationID == "" {
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	queue, ok := r.workers[evt.ConversationID]
	if !ok {
		queue = make(chan *channel.Event, r.opts.QueueSize)
		r.workers[evt.ConversationID] = queue
		r.wg.Add(1)
		go r.worker(queue)
	}
	r.mu.Unlock()

	select {
	case queue <- evt:
	default:
		r.logger.Warn("conversation queue full, dropping event",
			"conversation", evt.ConversationID, "kind", evt.Kind)
	}
}

// Run consumes the adapter's inbound stream until it closes or ctx is done.
func (r *Router) Run(ctx context.Context, events <-chan *channel.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			r.Dispatch(evt)
		}
	}
}

// Close stops accepting events and waits for in-flight handlers to finish.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for _, queue := range r.workers {
		close(queue)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Router) worker(queue <-chan *channel.Event) {
	defer r.wg.Done()
	for evt := range queue {
		r.handle(evt)
	}
}

// invoke runs one pipeline adapter with the progress-message protocol: a
// "processing" notice is shown while the engine works and removed afterwards.
// The second return is false when the conversation moved on while the run was
// in flight; such results are dropped, not delivered.
func (r *Router) invoke(c *conversation.Conversation, req pipeline.Request) (pipeline.Result, bool) {
	adapter, ok := r.adapters[req.Kind]
	if !ok {
		r.logger.Error("no adapter registered", "kind", req.Kind)
		return pipeline.Result{Failure: pipeline.FailEngineUnavailable}, true
	}

	procID, err := r.transport.SendText(c.ID, msgProcessing, nil)
	if err != nil {
		metrics.TransportSendFailures.Inc()
		r.logger.Warn("progress message failed", "conversation", c.ID, "error", err)
	}

	generation := c.Generation()
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.CallTimeout)
	defer cancel()

	start := time.Now()
	res := adapter.Run(ctx, req)
	metrics.PipelineDuration.WithLabelValues(string(req.Kind)).Observe(time.Since(start).Seconds())
	metrics.PipelineRuns.WithLabelValues(string(req.Kind), outcomeLabel(res)).Inc()

	if procID != "" {
		if err := r.transport.DeleteMessage(c.ID, procID); err != nil {
			r.logger.Warn("progress message cleanup failed", "conversation", c.ID, "error", err)
		}
	}

	if c.Generation() != generation {
		metrics.StaleResultsDiscarded.Inc()
		r.logger.Info("discarding stale result",
			"conversation", c.ID, "kind", req.Kind)
		return res, false
	}
	return res, true
}

func outcomeLabel(res pipeline.Result) string {
	if res.OK() {
		return "success"
	}
	return string(res.Failure)
}

// send delivers text best-effort. Transport failures never roll back a state
// transition that already happened.
func (r *Router) send(conversationID, text string, kb *channel.Keyboard) string {
	id, err := r.transport.SendText(conversationID, text, kb)
	if err != nil {
		metrics.TransportSendFailures.Inc()
		r.logger.Error("send failed", "conversation", conversationID, "error", err)
	}
	return id
}
