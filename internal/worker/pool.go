package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipt = "jobs:receipt"
	QueueEmail   = "jobs:email"
)

// maxJobAttempts is how many times a job runs before it lands in the DLQ.
const maxJobAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts,omitempty"`
}

// Processor handles the payload of one job type.
type Processor interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReceipt pushes a receipt job for a freshly recorded sale.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, payload ReceiptJobPayload) error {
	return d.enqueue(ctx, QueueReceipt, "receipt", payload)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool runs a fixed number of goroutines draining the registered queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Processor
	queues   []string
	wg       sync.WaitGroup
}

// NewPool registers one Processor per queue name.
func NewPool(rdb *redis.Client, handlers map[string]Processor) *Pool {
	queues := make([]string, 0, len(handlers))
	// Receipts first so BRPOP drains them before emails.
	for _, q := range []string{QueueReceipt, QueueEmail} {
		if _, ok := handlers[q]; ok {
			queues = append(queues, q)
		}
	}
	for q := range handlers {
		if q != QueueReceipt && q != QueueEmail {
			queues = append(queues, q)
		}
	}
	return &Pool{rdb: rdb, handlers: handlers, queues: queues}
}

// Start launches numWorkers goroutines. They stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", p.queues).Msg("worker pool started")
}

// Wait blocks until every worker goroutine has returned.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
		}
		// Blocking pop: waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.handle(ctx, result[0], result[1])
	}
}

// handle runs a single job. Failures are re-queued with an incremented
// attempt counter until maxJobAttempts, then moved to the DLQ.
func (p *Pool) handle(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		SendToDLQ(ctx, p.rdb, queue, "unknown", quoted, "malformed envelope: "+err.Error(), 0)
		return
	}
	proc, ok := p.handlers[queue]
	if !ok {
		log.Error().Str("queue", queue).Msg("no processor registered for queue")
		return
	}

	err := proc.Process(ctx, job.Payload)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxJobAttempts || errors.Is(err, ErrPermanent) {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	log.Warn().Err(err).Str("queue", queue).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, re-queued")
	if pushErr := push(ctx, p.rdb, queue, job); pushErr != nil {
		log.Error().Err(pushErr).Str("queue", queue).Msg("failed to re-queue job")
	}
}

// ErrPermanent marks failures that retrying cannot fix, such as a payload
// that does not decode.
var ErrPermanent = errors.New("permanent job failure")
