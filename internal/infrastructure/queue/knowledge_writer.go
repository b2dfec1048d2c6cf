package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawmart/support-system/internal/api/metrics"
)

const (
	channelBuffer  = 64
	persistTimeout = 10 * time.Second
)

// KnowledgeAdder is the interface the writer drains into; in production it
// is the service.KnowledgeBase.
type KnowledgeAdder interface {
	Add(ctx context.Context, question, answer string) error
}

type pendingEntry struct {
	question string
	answer   string
}

// KnowledgeWriter serializes knowledge-base appends through a single worker
// goroutine, giving the index its single-writer discipline and keeping chat
// responses from blocking on persistence. The call is non-blocking up to
// channelBuffer capacity; beyond that the entry is dropped with a warning
// rather than stalling a request.
type KnowledgeWriter struct {
	entries chan pendingEntry
	kb      KnowledgeAdder
	log     zerolog.Logger
	done    chan struct{}
}

// NewKnowledgeWriter creates a KnowledgeWriter draining into kb.
func NewKnowledgeWriter(kb KnowledgeAdder, log zerolog.Logger) *KnowledgeWriter {
	return &KnowledgeWriter{
		entries: make(chan pendingEntry, channelBuffer),
		kb:      kb,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start launches the worker goroutine. The worker stops when ctx is
// cancelled, after draining whatever is already buffered.
func (w *KnowledgeWriter) Start(ctx context.Context) {
	go w.run(ctx)
}

// Enqueue offers a generated Q/A pair for persistence.
func (w *KnowledgeWriter) Enqueue(question, answer string) {
	select {
	case w.entries <- pendingEntry{question: question, answer: answer}:
	default:
		w.log.Warn().Str("question", question).Msg("knowledge writer queue full, dropping entry")
	}
}

// Wait blocks until the worker has exited. Used during shutdown.
func (w *KnowledgeWriter) Wait() {
	<-w.done
}

func (w *KnowledgeWriter) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case entry := <-w.entries:
			w.persist(entry)
		}
	}
}

// drain flushes buffered entries after cancellation so accepted work is not
// lost on shutdown.
func (w *KnowledgeWriter) drain() {
	for {
		select {
		case entry := <-w.entries:
			w.persist(entry)
		default:
			return
		}
	}
}

func (w *KnowledgeWriter) persist(entry pendingEntry) {
	// Fresh context: the originating request is long gone.
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := w.kb.Add(ctx, entry.question, entry.answer); err != nil {
		w.log.Error().Err(err).Str("question", entry.question).Msg("knowledge persist failed")
		return
	}
	metrics.KnowledgeEntriesTotal.Inc()
}
