package task

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/small-frappuccino/rolemenu/pkg/log"
)

// Handler processes a task payload.
type Handler func(ctx context.Context, payload any) error

// Options configures how a task is dispatched and executed.
type Options struct {
	// GroupKey serializes execution for tasks sharing the same group. Used to
	// guarantee per-guild ordering. Empty means the global group.
	GroupKey string

	// IdempotencyKey deduplicates tasks enqueued within IdempotencyTTL. A
	// task with the same key already in flight is not enqueued again.
	IdempotencyKey string

	// MaxAttempts controls retries on handler error. Zero uses the router
	// default.
	MaxAttempts int

	// IdempotencyTTL overrides the router default when non-zero.
	IdempotencyTTL time.Duration
}

// Task encapsulates work to be executed by the router.
type Task struct {
	Type    string
	Payload any
	Options Options
}

// Config configures Router behavior.
type Config struct {
	DefaultMaxAttempts int
	InitialBackoff     time.Duration
	MaxBackoff         time.Duration
	IdempotencyTTL     time.Duration
	GroupBuffer        int
	CleanupInterval    time.Duration
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		DefaultMaxAttempts: 3,
		InitialBackoff:     1 * time.Second,
		MaxBackoff:         30 * time.Second,
		IdempotencyTTL:     60 * time.Second,
		GroupBuffer:        64,
		CleanupInterval:    2 * time.Minute,
	}
}

// Errors returned by the router.
var (
	ErrRouterClosed    = errors.New("task router is closed")
	ErrUnknownTaskType = errors.New("unknown task type")
	ErrDuplicateTask   = errors.New("duplicate task (idempotency key present)")
)

const globalGroup = "_global"

// Router is a minimal in-memory dispatcher with per-group serialization,
// idempotency deduplication and retry with exponential backoff.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	groups   map[string]*groupWorker
	inflight map[string]time.Time // idempotency key -> expiry
	closed   bool
	cfg      Config
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}

	randMu sync.Mutex // jitter RNG
}

type groupWorker struct {
	key string
	ch  chan *enqueued
}

type enqueued struct {
	task    Task
	attempt int
}

// NewRouter creates a Router, filling zero config values with defaults.
func NewRouter(cfg Config) *Router {
	def := Defaults()
	if cfg.DefaultMaxAttempts <= 0 {
		cfg.DefaultMaxAttempts = def.DefaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = def.IdempotencyTTL
	}
	if cfg.GroupBuffer <= 0 {
		cfg.GroupBuffer = def.GroupBuffer
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	r := &Router{
		handlers: make(map[string]Handler),
		groups:   make(map[string]*groupWorker),
		inflight: make(map[string]time.Time),
		cfg:      cfg,
		stopCh:   make(chan struct{}),
	}
	r.wg.Add(1)
	go r.cleanupLoop()
	return r
}

// RegisterHandler registers a handler for the given task type.
func (r *Router) RegisterHandler(taskType string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[taskType] = handler
}

// Dispatch enqueues a task, respecting grouping and idempotency.
func (r *Router) Dispatch(ctx context.Context, t Task) error {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return ErrRouterClosed
	}
	handler, ok := r.handlers[t.Type]
	if !ok || handler == nil {
		r.mu.Unlock()
		return ErrUnknownTaskType
	}

	if key := t.Options.IdempotencyKey; key != "" {
		ttl := t.Options.IdempotencyTTL
		if ttl <= 0 {
			ttl = r.cfg.IdempotencyTTL
		}
		if expiry, exists := r.inflight[key]; exists && time.Now().Before(expiry) {
			r.mu.Unlock()
			return ErrDuplicateTask
		}
		r.inflight[key] = time.Now().Add(ttl)
	}

	groupKey := t.Options.GroupKey
	if groupKey == "" {
		groupKey = globalGroup
	}
	gw := r.ensureGroupLocked(groupKey)
	r.mu.Unlock()

	// The send happens outside the lock: a full group buffer must not block
	// other dispatchers or Close.
	select {
	case gw.ch <- &enqueued{task: t, attempt: 1}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stopCh:
		return ErrRouterClosed
	}
}

// Close stops the router and waits for workers to exit. Enqueued tasks not
// yet picked up may be dropped.
func (r *Router) Close() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		close(r.stopCh)
		r.wg.Wait()
	})
}

func (r *Router) ensureGroupLocked(key string) *groupWorker {
	if gw, ok := r.groups[key]; ok {
		return gw
	}
	gw := &groupWorker{key: key, ch: make(chan *enqueued, r.cfg.GroupBuffer)}
	r.groups[key] = gw
	r.wg.Add(1)
	go r.groupLoop(gw)
	return gw
}

func (r *Router) groupLoop(gw *groupWorker) {
	defer r.wg.Done()

	for {
		var enq *enqueued
		select {
		case <-r.stopCh:
			return
		case enq = <-gw.ch:
		}

		r.mu.RLock()
		handler := r.handlers[enq.task.Type]
		r.mu.RUnlock()

		if handler == nil {
			log.ApplicationLogger().Warn("task dropped (handler not registered)",
				"type", enq.task.Type, "group", gw.key)
			continue
		}

		err := handler(context.Background(), enq.task.Payload)
		if err == nil {
			continue
		}

		maxAttempts := enq.task.Options.MaxAttempts
		if maxAttempts <= 0 {
			maxAttempts = r.cfg.DefaultMaxAttempts
		}
		if enq.attempt >= maxAttempts {
			log.ErrorLogger().Error("task failed; max attempts reached",
				"type", enq.task.Type, "group", gw.key, "attempts", enq.attempt, "err", err)
			continue
		}

		delay := r.backoff(enq.attempt)
		log.ApplicationLogger().Warn("task failed, scheduling retry",
			"type", enq.task.Type, "group", gw.key,
			"attempt", enq.attempt+1, "max_attempts", maxAttempts,
			"backoff", delay.String(), "err", err)

		r.wg.Add(1)
		go func(et *enqueued, d time.Duration) {
			defer r.wg.Done()
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
				et.attempt++
				// Group channels stay open for the router's lifetime, so
				// this send cannot panic. Non-blocking so a full buffer
				// cannot wedge the timer goroutine; a dropped retry is
				// logged, not lost silently.
				select {
				case gw.ch <- et:
				default:
					log.ErrorLogger().Error("retry dropped (group buffer full)",
						"type", et.task.Type, "group", gw.key)
				}
			case <-r.stopCh:
			}
		}(enq, delay)
	}
}

// backoff computes initial * 2^(attempt-1), capped, with 10% jitter.
func (r *Router) backoff(attempt int) time.Duration {
	d := r.cfg.InitialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d > r.cfg.MaxBackoff {
			d = r.cfg.MaxBackoff
			break
		}
	}
	r.randMu.Lock()
	defer r.randMu.Unlock()
	jitter := int64(float64(d) * 0.1)
	if jitter > 0 {
		d += time.Duration(rand.Int63n(2*jitter+1) - jitter)
	}
	return min(max(d, r.cfg.InitialBackoff), r.cfg.MaxBackoff)
}

func (r *Router) cleanupLoop() {
	defer r.wg.Done()
	t := time.NewTicker(r.cfg.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-r.stopCh:
			return
		case <-t.C:
			now := time.Now()
			r.mu.Lock()
			for k, expiry := range r.inflight {
				if now.After(expiry) {
					delete(r.inflight, k)
				}
			}
			r.mu.Unlock()
		}
	}
}
