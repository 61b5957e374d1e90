package audit

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/foundation/term/executor"
)

// Record is the audit record produced by the executor for every execution
type Record = executor.AuditRecord

// Sink delivers a single record to its destination
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// Config holds emitter settings
type Config struct {
	QueueSize       int           // pending records before new ones are dropped
	Workers         int           // concurrent deliveries
	RateLimit       float64       // records per second, 0 = unlimited
	Burst           int           // limiter burst, defaults to QueueSize
	MaxOutputLength int           // 0 = unlimited
	WriteTimeout    time.Duration // per delivery
	Logger          *mdwlog.Logger
}

// DefaultConfig returns default emitter settings
func DefaultConfig() Config {
	return Config{
		QueueSize:       256,
		Workers:         2,
		MaxOutputLength: 500,
		WriteTimeout:    5 * time.Second,
	}
}

// Stats is a snapshot of emitter counters
type Stats struct {
	Queued    int    `json:"queued"`
	Capacity  int    `json:"capacity"`
	Emitted   uint64 `json:"emitted"`
	Delivered uint64 `json:"delivered"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
}

// Emitter hands records to a sink on background workers. Emit never
// blocks and never retries: a record that cannot be queued is dropped.
type Emitter struct {
	sink    Sink
	cfg     Config
	queue   chan Record
	limiter *rate.Limiter
	logger  *mdwlog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	emitted   atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

// NewEmitter starts the workers for sink
func NewEmitter(sink Sink, cfg Config) *Emitter {
	defaults := DefaultConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.MaxOutputLength < 0 {
		cfg.MaxOutputLength = 0
	}
	if sink == nil {
		sink = NopSink{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = mdwlog.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Emitter{
		sink:   sink,
		cfg:    cfg,
		queue:  make(chan Record, cfg.QueueSize),
		logger: logger.WithName("audit"),
		ctx:    ctx,
		cancel: cancel,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = cfg.QueueSize
		}
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for i := 0; i < cfg.Workers; i++ {
		e.wg.Add(1)
		go e.work()
	}
	return e
}

// Emit queues rec for delivery
func (e *Emitter) Emit(rec Record) {
	e.emitted.Add(1)
	rec.Output = Truncate(rec.Output, e.cfg.MaxOutputLength)

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.drop(rec, "emitter closed")
		return
	}
	if e.limiter != nil && !e.limiter.Allow() {
		e.drop(rec, "rate limited")
		return
	}

	select {
	case e.queue <- rec:
	default:
		e.drop(rec, "queue full")
	}
}

func (e *Emitter) drop(rec Record, reason string) {
	e.dropped.Add(1)
	e.logger.Warn("Audit record dropped", mdwlog.Fields{
		"recordID": rec.ID,
		"command":  rec.Command,
		"reason":   reason,
	})
}

func (e *Emitter) work() {
	defer e.wg.Done()
	for rec := range e.queue {
		e.deliver(rec)
	}
}

func (e *Emitter) deliver(rec Record) {
	ctx, cancel := context.WithTimeout(e.ctx, e.cfg.WriteTimeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("sink panicked: %v", r)
			}
		}()
		return e.sink.Write(ctx, rec)
	}()

	if err != nil {
		e.failed.Add(1)
		e.logger.WarnWithErr("Audit delivery failed", err, mdwlog.Fields{
			"recordID": rec.ID,
			"command":  rec.Command,
		})
		return
	}
	e.delivered.Add(1)
}

// Close stops accepting records and waits for the queue to drain. When ctx
// ends first, in-flight deliveries are cancelled and ctx's error returned.
// The sink is closed after a complete drain if it implements io.Closer.
func (e *Emitter) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		e.cancel()
		return ctx.Err()
	}
	e.cancel()

	if c, ok := e.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Stats returns a snapshot of the emitter counters
func (e *Emitter) Stats() Stats {
	return Stats{
		Queued:    len(e.queue),
		Capacity:  cap(e.queue),
		Emitted:   e.emitted.Load(),
		Delivered: e.delivered.Load(),
		Failed:    e.failed.Load(),
		Dropped:   e.dropped.Load(),
	}
}

// QueueLoad returns the fraction of the queue in use
func (e *Emitter) QueueLoad() float64 {
	return float64(len(e.queue)) / float64(cap(e.queue))
}

// Truncate shortens text to at most limit bytes plus an ellipsis without
// splitting a rune. A limit of 0 disables truncation.
func Truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit] + "..."
}
