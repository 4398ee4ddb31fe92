// Package router wires together the table, neighbor set, socket layer and
// codec into the single-threaded control loop: the only goroutine that
// ever calls a table.Table method. Every other goroutine in the process
// — socket readers, timer callbacks — communicates with it over channels
// and the socket layer's locked datagram queue.
package router

import (
	"context"
	"time"

	"github.com/jackyisme123/RIP-v2/config"
	"github.com/jackyisme123/RIP-v2/neighbor"
	"github.com/jackyisme123/RIP-v2/netio"
	"github.com/jackyisme123/RIP-v2/ripmetrics"
	"github.com/jackyisme123/RIP-v2/riplog"
	"github.com/jackyisme123/RIP-v2/table"
	"github.com/jackyisme123/RIP-v2/timer"
	"github.com/jackyisme123/RIP-v2/wire"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// boundedWait caps how long the control loop can go without rechecking the
// periodic tick and cancellation, even with no socket activity.
const boundedWait = time.Second

// Router runs one RIP speaker: its table, its neighbor links, and the
// control loop that advances both on received updates and on its own
// clock.
type Router struct {
	cfg       *config.Config
	neighbors *neighbor.Set
	table     *table.Table
	net       *netio.Layer
	integrity wire.Integrity
	metrics   *ripmetrics.Counters
	log       *logrus.Entry

	period  time.Duration
	timeout time.Duration
	gcTime  time.Duration
}

// Option configures a Router at construction time.
type Option func(*Router)

// WithIntegrity overrides the default content-integrity implementation.
func WithIntegrity(i wire.Integrity) Option {
	return func(r *Router) { r.integrity = i }
}

// WithLogger overrides the default logrus entry.
func WithLogger(log *logrus.Entry) Option {
	return func(r *Router) { r.log = log }
}

// WithMetrics overrides the default counter set.
func WithMetrics(m *ripmetrics.Counters) Option {
	return func(r *Router) { r.metrics = m }
}

// WithPeriod overrides the periodic-advertisement base interval. Tests
// shrink this, along with WithTimeout and WithGCTime, to exercise the aging
// pipeline on a real clock without waiting on production-sized windows.
func WithPeriod(d time.Duration) Option {
	return func(r *Router) { r.period = d }
}

// WithTimeout overrides the route staleness window.
func WithTimeout(d time.Duration) Option {
	return func(r *Router) { r.timeout = d }
}

// WithGCTime overrides the garbage-collection window.
func WithGCTime(d time.Duration) Option {
	return func(r *Router) { r.gcTime = d }
}

// New builds a Router from a validated config. It does no I/O; sockets are
// bound when Run starts.
func New(cfg *config.Config, opts ...Option) *Router {
	r := &Router{
		cfg:       cfg,
		neighbors: neighbor.NewSet(cfg.Outputs),
		integrity: wire.DigestIntegrity{},
		log:       riplog.New(cfg.RouterID, false),
		period:    5 * time.Second,
		timeout:   30 * time.Second,
		gcTime:    20 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = ripmetrics.New()
	}
	r.table = table.New(cfg.RouterID, r.metrics)
	return r
}

// Run binds sockets, installs the directly-configured routes, sends the
// startup advertisement burst, and then runs the control loop until ctx is
// canceled. A bind failure is returned wrapped with the failing step and
// is fatal: the caller should log it and exit non-zero.
func (r *Router) Run(ctx context.Context) error {
	net, err := netio.Bind(ctx, r.cfg.InputPorts, r.metrics, r.log)
	if err != nil {
		return errors.Wrap(err, "starting socket layer")
	}
	r.net = net
	defer r.net.Close()

	now := time.Now()
	for _, link := range r.neighbors.All() {
		r.table.InstallDirect(link.ID, link.Cost, now)
	}
	r.advertise()

	tickCh := make(chan struct{}, 1)
	wake := func() {
		select {
		case tickCh <- struct{}{}:
		default:
		}
	}
	tick := timer.New(timer.Jitter(r.period, 0.8, 1.2), wake)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("shutting down")
			return nil

		case <-tickCh:
			r.periodicTick()
			tick.ResetAfter(timer.Jitter(r.period, 0.8, 1.2))

		case <-net.Notify():
			r.drainInbound()

		case <-time.After(boundedWait):
			// Nothing to do; this case exists only to bound how long the
			// loop can block on a quiet socket before rechecking ctx and
			// the periodic tick.
		}
	}
}

// periodicTick runs one pass of the periodic schedule in the order the
// control loop guarantees: advertise, then age out stale routes, then
// garbage-collect. A tick that times out any route immediately sends a
// triggered update carrying the freshly-poisoned route, ahead of the next
// periodic advertisement.
func (r *Router) periodicTick() {
	r.advertise()

	now := time.Now()
	expired := r.table.TimeoutScan(now, r.timeout)
	if len(expired) > 0 {
		r.log.WithField("destinations", expired).Debug("routes timed out")
		if r.metrics != nil {
			r.metrics.TriggeredUpdates.Increment()
		}
		r.advertise()
	}

	reaped := r.table.GCScan(now, r.gcTime)
	if len(reaped) > 0 {
		r.log.WithField("destinations", reaped).Debug("routes garbage collected")
	}

	if r.metrics != nil {
		r.log.Debug(r.metrics.String())
	}
}

// advertise sends the full table, with poisoned reverse applied per
// neighbor, to every configured neighbor link.
func (r *Router) advertise() {
	snap := r.table.Snapshot()
	if len(snap) == 0 {
		return
	}
	for _, link := range r.neighbors.All() {
		entries := make([]wire.Entry, 0, len(snap))
		for _, e := range snap {
			metric := e.Metric
			if e.FirstHop == link.ID {
				metric = wire.Infinity
			}
			entries = append(entries, wire.Entry{Dest: e.Dest, NextHop: e.FirstHop, Metric: metric})
		}
		payload := wire.Encode(r.cfg.RouterID, link.ID, entries, r.integrity)
		if err := r.net.Send(link.Port, payload); err != nil {
			r.log.WithError(err).WithField("neighbor", link.ID).Warn("advertisement send failed")
		}
	}
}

// drainInbound processes every datagram queued since the last drain.
func (r *Router) drainInbound() {
	for _, dg := range r.net.Drain() {
		r.handleDatagram(dg)
	}
}

func (r *Router) handleDatagram(dg netio.Datagram) {
	if r.metrics != nil {
		r.metrics.PacketsReceived.Increment()
	}

	_, entries, err := wire.Decode(dg.Payload, r.cfg.RouterID, r.integrity)
	if err != nil {
		r.log.WithError(err).Debug("dropping malformed packet")
		if r.metrics != nil {
			r.metrics.PacketsDropped.Increment()
		}
		return
	}
	if len(entries) == 0 {
		return
	}

	senderID := entries[0].Source
	cost, ok := r.neighbors.Cost(senderID)
	if !ok {
		r.log.WithField("sender", senderID).Debug("dropping update from unconfigured neighbor")
		return
	}

	now := time.Now()
	for _, e := range entries {
		if e.Dest == r.cfg.RouterID {
			// The neighbor is echoing its own directly-configured route to
			// reach us: this is purely a liveness signal for the direct
			// link, not a distance to relax. If the entry needs installing
			// from scratch (a direct link revived after a full GC reap),
			// it gets our configured cost to that neighbor, not the
			// packet's self-reported metric.
			r.table.Refresh(senderID, r.cfg.RouterID, cost, now)
			continue
		}
		metric := e.Metric + cost
		if metric > wire.Infinity {
			metric = wire.Infinity
		}
		r.table.Update(table.Entry{Dest: e.Dest, FirstHop: senderID, Metric: metric}, now)
	}
}

// RouteTo exposes the current route to dest, for tests and diagnostics.
func (r *Router) RouteTo(dest int) (table.Entry, bool) {
	return r.table.Get(dest)
}

// Counters exposes the router's metrics, for tests and diagnostics.
func (r *Router) Counters() *ripmetrics.Counters {
	return r.metrics
}
