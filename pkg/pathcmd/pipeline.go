package pathcmd

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/paulschiretz/pgl-mirror/pkg/metrics"
	"github.com/paulschiretz/pgl-mirror/pkg/pool"
	"github.com/paulschiretz/pgl-mirror/pkg/progress"
)

// Env carries everything command execution needs. It is shared by all
// commands of a run and read-only after construction.
type Env struct {
	log     *slog.Logger
	metrics metrics.Metrics
	buffers *pool.BufferPool
	dryRun  bool
}

// NewEnv assembles an execution environment.
func NewEnv(log *slog.Logger, m metrics.Metrics, buffers *pool.BufferPool, dryRun bool) *Env {
	return &Env{log: log, metrics: m, buffers: buffers, dryRun: dryRun}
}

// Pipeline is an unbounded FIFO command queue with a single consumer
// goroutine. Producers enqueue without ever blocking; the consumer
// executes strictly in enqueue order, one command at a time. A failing
// command is logged and recorded in its Result, never stopping the
// drain. Cancellation discards commands that have not started yet.
type Pipeline struct {
	env  *Env
	sink progress.Sink

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*Command
	closed bool

	pending  sync.WaitGroup
	enqueued atomic.Int64
	executed atomic.Int64
	done     chan struct{}
}

// NewPipeline creates the queue and starts its consumer, which runs
// until Close has been called and the queue is drained, or until ctx is
// canceled.
func NewPipeline(ctx context.Context, env *Env, sink progress.Sink) *Pipeline {
	p := &Pipeline{
		env:  env,
		sink: sink,
		done: make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	go p.consume(ctx)
	return p
}

// Enqueue adds a command to the back of the queue. It never blocks;
// after Close it fails with ErrPipelineClosed.
func (p *Pipeline) Enqueue(cmd *Command) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPipelineClosed
	}
	p.queue = append(p.queue, cmd)
	p.pending.Add(1)
	p.enqueued.Add(1)
	p.cond.Signal()
	return nil
}

// Flush blocks until every command enqueued so far has reached a
// terminal Result, or ctx is canceled.
func (p *Pipeline) Flush(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(drained)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-drained:
		return nil
	}
}

// Close stops intake. Already-enqueued commands still execute; Wait
// returns once the drain finishes.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.cond.Broadcast()
}

// Wait blocks until the consumer has exited.
func (p *Pipeline) Wait() {
	<-p.done
}

// consume is the single consumer loop. At most one command executes at
// any instant.
func (p *Pipeline) consume(ctx context.Context) {
	defer close(p.done)

	// The cond has no notion of ctx; wake the wait when it fires.
	stopWake := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.cond.Broadcast()
	})
	defer stopWake()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed && ctx.Err() == nil {
			p.cond.Wait()
		}

		if ctx.Err() != nil {
			// Enqueued but not started: discarded, never executed.
			for _, cmd := range p.queue {
				cmd.Result = &Result{OK: false, Message: "discarded, run canceled", Err: context.Cause(ctx)}
				p.pending.Done()
			}
			dropped := len(p.queue)
			p.queue = nil
			p.closed = true
			p.mu.Unlock()
			if dropped > 0 {
				p.env.log.Info("pipeline canceled", "discarded", dropped)
			}
			return
		}

		if len(p.queue) == 0 {
			p.mu.Unlock()
			return // closed and drained
		}

		cmd := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.runOne(ctx, cmd)
		p.pending.Done()
	}
}

// runOne executes a single command and records its outcome. Failures
// are contained here; only cancellation escapes, via the loop's ctx
// check.
func (p *Pipeline) runOne(ctx context.Context, cmd *Command) {
	res := execute(ctx, cmd, p.env)
	cmd.Result = &res

	total := p.enqueued.Load()
	n := p.executed.Add(1)
	if total > 0 {
		p.sink.Report(int(n*100/total), cmd.Op.String()+" "+cmd.File.Key())
	}

	switch {
	case res.OK && res.Err != nil:
		p.env.log.Info("command skipped", "op", cmd.Op.String(), "path", cmd.File.Key(), "result", res.Message)
	case res.OK:
		p.env.log.Debug("command done", "op", cmd.Op.String(), "path", cmd.File.Key(), "result", res.Message)
	case errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded):
		p.env.log.Info("command canceled", "op", cmd.Op.String(), "path", cmd.File.Key())
	default:
		p.env.metrics.AddFailures(1)
		p.env.log.Error("command failed", "op", cmd.Op.String(), "path", cmd.File.Key(), "error", res.Err)
	}
}
