// Package dispatch runs order side effects outside the request cycle.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/pkg/metrics"
	"go.uber.org/zap"
)

// Options retry policy of a job. Timeout bounds one attempt; an attempt that times
// out fails the job. MaxExceptions caps failed attempts before Tries is reached.
// QueueSize bounds the jobs waiting for a free worker, retries included.
type Options struct {
	Workers       int
	QueueSize     int
	Tries         int
	Timeout       time.Duration
	MaxExceptions int
	Backoff       time.Duration
}

func DefaultOptions() Options {
	return Options{
		Workers:       8,
		QueueSize:     1024,
		Tries:         5,
		Timeout:       120 * time.Second,
		MaxExceptions: 3,
		Backoff:       5 * time.Second,
	}
}

// OrderLine one product line carried by the event
type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// OrderEvent immutable snapshot of a created order
type OrderEvent struct {
	Event      string      `json:"event"`
	OrderID    int64       `json:"order_id"`
	CustomerID int64       `json:"customer_id"`
	Amount     int64       `json:"amount"`
	Status     string      `json:"status"`
	Lines      []OrderLine `json:"lines"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func NewOrderEvent(order *domain.Order) OrderEvent {
	ev := OrderEvent{
		Event:      "order.created",
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Amount:     order.Amount,
		Status:     order.Status,
		Lines:      make([]OrderLine, 0, len(order.OrderDetails)),
		OccurredAt: order.CreatedAt,
	}
	for _, d := range order.OrderDetails {
		ev.Lines = append(ev.Lines, OrderLine{ProductID: d.ProductID, Quantity: d.Quantity})
	}
	return ev
}

// Notifier delivers the side effect of a created order
type Notifier interface {
	Name() string
	Notify(ctx context.Context, ev OrderEvent) error
}

// job one pending delivery with the attempts already spent on it
type job struct {
	ev         OrderEvent
	attempt    int
	exceptions int
}

// Dispatcher feeds queued jobs to the worker pool. Backoff is a timer that puts the
// job back on the queue, so a waiting retry never holds a worker.
type Dispatcher struct {
	opts     Options
	notifier Notifier
	pool     *ants.Pool
	queue    chan job

	mu     sync.RWMutex
	closed bool
	timers map[*time.Timer]struct{}
	fed    chan struct{}
}

func New(opts Options, notifier Notifier) (*Dispatcher, error) {
	def := DefaultOptions()
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = def.QueueSize
	}
	if opts.Tries <= 0 {
		opts.Tries = def.Tries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxExceptions <= 0 {
		opts.MaxExceptions = def.MaxExceptions
	}
	if opts.Backoff < 0 {
		opts.Backoff = 0
	}
	pool, err := ants.NewPool(opts.Workers,
		ants.WithPanicHandler(func(p interface{}) {
			zap.L().Error("dispatcher worker panic", zap.String("namespace", "dispatch"), zap.Any("panic", p))
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create dispatcher pool")
	}
	d := &Dispatcher{
		opts:     opts,
		notifier: notifier,
		pool:     pool,
		queue:    make(chan job, opts.QueueSize),
		timers:   make(map[*time.Timer]struct{}),
		fed:      make(chan struct{}),
	}
	go d.feed()
	return d, nil
}

// feed hands queued jobs to the pool, Submit blocks while every worker is busy
func (d *Dispatcher) feed() {
	defer close(d.fed)
	for j := range d.queue {
		j := j
		if err := d.pool.Submit(func() { d.run(j) }); err != nil {
			metrics.RecordDispatch(d.notifier.Name(), "rejected")
			zap.L().Error("order side effect not started",
				zap.String("namespace", "dispatch"),
				zap.Int64("order_id", j.ev.OrderID),
				zap.Error(err))
		}
	}
}

// Enqueue never blocks and never fails the caller. A job is dropped, and logged,
// only when the queue is full or the dispatcher is closed.
func (d *Dispatcher) Enqueue(order *domain.Order) {
	d.push(job{ev: NewOrderEvent(order), attempt: 1})
}

func (d *Dispatcher) push(j job) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	reason := "dispatcher closed"
	if !d.closed {
		select {
		case d.queue <- j:
			return
		default:
			reason = "queue full"
		}
	}
	metrics.RecordDispatch(d.notifier.Name(), "rejected")
	zap.L().Error("order side effect not queued",
		zap.String("namespace", "dispatch"),
		zap.Int64("order_id", j.ev.OrderID),
		zap.Int("attempt", j.attempt),
		zap.String("reason", reason))
}

func (d *Dispatcher) run(j job) {
	err := d.attempt(j.ev)
	if err == nil {
		metrics.RecordDispatch(d.notifier.Name(), "success")
		return
	}

	j.exceptions++
	timedOut := errors.Is(err, context.DeadlineExceeded)
	log := zap.L().With(
		zap.String("namespace", "dispatch"),
		zap.String("notifier", d.notifier.Name()),
		zap.Int64("order_id", j.ev.OrderID),
		zap.Int("attempt", j.attempt),
		zap.Error(err))

	if timedOut || j.exceptions >= d.opts.MaxExceptions || j.attempt >= d.opts.Tries {
		metrics.RecordDispatch(d.notifier.Name(), "failed")
		log.Error("order side effect failed", zap.Bool("timeout", timedOut), zap.Int("exceptions", j.exceptions))
		return
	}

	metrics.RecordDispatch(d.notifier.Name(), "retry")
	log.Warn("order side effect retry scheduled")
	d.retry(j, d.opts.Backoff*time.Duration(j.attempt))
}

// retry puts the job back on the queue once delay has passed
func (d *Dispatcher) retry(j job, delay time.Duration) {
	j.attempt++
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		zap.L().Warn("dispatcher closing, retry abandoned",
			zap.String("namespace", "dispatch"), zap.Int64("order_id", j.ev.OrderID))
		return
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		d.mu.Lock()
		delete(d.timers, t)
		d.mu.Unlock()
		d.push(j)
	})
	d.timers[t] = struct{}{}
}

func (d *Dispatcher) attempt(ev OrderEvent) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.ObserveDispatchAttempt(d.notifier.Name(), time.Since(start))
		if p := recover(); p != nil {
			err = errors.Errorf("notifier panic: %v", p)
		}
	}()

	err = d.notifier.Notify(ctx, ev)
	if err != nil && ctx.Err() == context.DeadlineExceeded && !errors.Is(err, context.DeadlineExceeded) {
		err = errors.Wrap(context.DeadlineExceeded, err.Error())
	}
	return err
}

// Running jobs currently executing
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Queued jobs waiting for a worker
func (d *Dispatcher) Queued() int {
	return len(d.queue)
}

// Close stops pending retries, runs what is already queued and waits up to
// timeout for the workers.
func (d *Dispatcher) Close(timeout time.Duration) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for t := range d.timers {
		t.Stop()
	}
	d.timers = nil
	close(d.queue)
	d.mu.Unlock()

	deadline := time.Now().Add(timeout)
	select {
	case <-d.fed:
	case <-time.After(timeout):
		return errors.New("dispatcher queue not drained before timeout")
	}
	return d.pool.ReleaseTimeout(time.Until(deadline))
}
