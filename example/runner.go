/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package example

import (
	"context"
	"errors"
	"time"

	"github.com/gatecore/gatecore"
)

/*****************************
 *          Runner
 *****************************/

// Handler processes one dispatched Gateway event; called from a
// WorkerPool goroutine, never from the Runner's own driving loop, so a
// slow handler never stalls the next frame read.
type Handler func(event gatecore.DispatchEvent)

// Runner drives a single gatecore.Shard: its Run goroutine makes every
// call into the Shard except RecvRaw, which a separate recv goroutine
// per Transport generation calls, and it fans dispatched events out to
// a WorkerPool so a slow Handler never blocks the read loop.
type Runner struct {
	shard      *gatecore.Shard
	logger     gatecore.Logger
	workerPool WorkerPool
	rateLimit  IdentifyRateLimiter
	handler    Handler

	recvInterval time.Duration

	frames   <-chan gatecore.Frame
	recvErrs <-chan error
}

// NewRunner wires a Shard to a Handler, a Logger, and a WorkerPool.
func NewRunner(shard *gatecore.Shard, logger gatecore.Logger, pool WorkerPool, limiter IdentifyRateLimiter, handler Handler) *Runner {
	return &Runner{
		shard:        shard,
		logger:       logger,
		workerPool:   pool,
		rateLimit:    limiter,
		handler:      handler,
		recvInterval: 250 * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled, the shard returns a fatal
// *gatecore.ProtocolError, or a Connect, reconnect, Identify or Resume
// call fails; that error is returned. It performs the full connect → handshake →
// identify-or-resume → heartbeat-and-dispatch lifecycle. A fresh recv
// goroutine is started against each Transport generation; the prior
// generation's goroutine exits on its own once its Transport is closed.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.shard.Connect(ctx); err != nil {
		return err
	}

	heartbeatTicker := time.NewTicker(r.recvInterval)
	defer heartbeatTicker.Stop()

	r.startRecvLoop()

	for {
		select {
		case <-ctx.Done():
			r.shard.Close()
			return ctx.Err()

		case <-heartbeatTicker.C:
			if !r.shard.DoHeartbeat() {
				r.logger.Warn("heartbeat unhealthy, reconnecting")
				if err := r.reconnect(ctx); err != nil {
					return err
				}
			}

		case frame := <-r.frames:
			action, err := r.shard.HandleEvent(frame, nil)
			if actErr := r.act(ctx, action, err); actErr != nil {
				return actErr
			}

		case recvErr := <-r.recvErrs:
			action, err := r.shard.HandleEvent(gatecore.Frame{}, recvErr)
			if actErr := r.act(ctx, action, err); actErr != nil {
				return actErr
			}
		}
	}
}

// startRecvLoop launches one goroutine reading the shard's current
// Transport generation, delivering every frame or terminal error on its
// own pair of channels, and installs them as the Runner's active pair.
// A stale generation's goroutine exits harmlessly once its closed
// Transport returns an error; its send is dropped since nothing selects
// on the old channel pair anymore.
func (r *Runner) startRecvLoop() {
	frames := make(chan gatecore.Frame)
	errs := make(chan error, 1)
	go func() {
		for {
			frame, err := r.shard.RecvRaw()
			if err != nil {
				errs <- err
				return
			}
			frames <- frame
		}
	}()
	r.frames = frames
	r.recvErrs = errs
}

func (r *Runner) act(ctx context.Context, action *gatecore.Action, err error) error {
	if err != nil {
		var protoErr *gatecore.ProtocolError
		if errors.As(err, &protoErr) && protoErr.Fatal() {
			return protoErr
		}
		r.logger.Warn("protocol error, reconnecting: " + err.Error())
		return r.reconnect(ctx)
	}
	if action == nil {
		return nil
	}

	switch action.Kind {
	case gatecore.ActionHeartbeat:
		if !r.shard.DoHeartbeat() {
			return r.reconnect(ctx)
		}
	case gatecore.ActionIdentify:
		if r.rateLimit != nil {
			r.rateLimit.Wait()
		}
		return r.shard.Identify()
	case gatecore.ActionReconnect:
		return r.reconnect(ctx)
	case gatecore.ActionDispatch:
		event := action.Event
		r.workerPool.Submit(func() { r.handler(event) })
	}
	return nil
}

func (r *Runner) reconnect(ctx context.Context) error {
	if err := r.shard.Reinitialize(ctx); err != nil {
		return err
	}
	r.startRecvLoop()
	if _, ok := r.shard.SessionID(); ok {
		return r.shard.Resume()
	}
	return nil
}
