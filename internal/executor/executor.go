// Package executor runs slow jobs (AI calls, transcription) on a bounded
// pool so a burst of uploads cannot exhaust the server, and puts a hard
// deadline on each of them.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/logger"
)

// ErrDeadline is the cause attached to the apperror.ErrTimeout returned when
// a job outlives its deadline.
var ErrDeadline = errors.New("executor: deadline exceeded")

// Pool limits how many jobs run at the same time.
type Pool struct {
	slots chan struct{}
	log   *logger.Logger
	wg    sync.WaitGroup
}

// NewPool creates a pool with size concurrent slots. Sizes below one are
// treated as one.
func NewPool(size int, log *logger.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	log.Info().Int("poolSize", size).Msg("starting worker pool")
	return &Pool{
		slots: make(chan struct{}, size),
		log:   log,
	}
}

// Size is the number of concurrent slots.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// InFlight is the number of slots currently held.
func (p *Pool) InFlight() int {
	return len(p.slots)
}

// Wait blocks until every started job has returned, including jobs whose
// caller already gave up on them.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Run waits for a free slot, then calls fn with a context that expires after
// timeout (no deadline if timeout <= 0). The timeout starts when Run is
// called, so waiting for a slot counts against it.
//
// If the deadline passes first, Run returns an apperror.ErrTimeout at once;
// fn keeps its slot until it notices the cancelled context and returns.
// Cancelling ctx returns ctx.Err().
func Run[T any](ctx context.Context, p *Pool, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// the deadline covers time spent queued for a slot
	select {
	case p.slots <- struct{}{}:
	case <-runCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		p.log.Warn().Dur("timeout", timeout).Msg("job deadline passed while waiting for a slot")
		return zero, apperror.Timeout("The operation timed out.", ErrDeadline)
	}

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() { <-p.slots }()
		defer func() {
			if r := recover(); r != nil {
				p.log.Error().Interface("panic", r).Msg("job panicked")
				done <- result{err: fmt.Errorf("executor: job panicked: %v", r)}
			}
		}()

		v, err := fn(runCtx)
		done <- result{val: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return zero, apperror.Timeout("The operation timed out.", ErrDeadline)
		}
		return r.val, r.err
	case <-runCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		p.log.Warn().Dur("timeout", timeout).Msg("job exceeded its deadline")
		return zero, apperror.Timeout("The operation timed out.", ErrDeadline)
	}
}
