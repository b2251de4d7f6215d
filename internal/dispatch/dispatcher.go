package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tradel/internal/metrics"
	"tradel/internal/subscriber"
)

// ErrRejected marks a delivery the provider refused (bad address, opt-out).
// Transports wrap it with the provider's reason.
var ErrRejected = errors.New("recipient rejected")

// Transport delivers one text message to one address.
type Transport interface {
	Send(ctx context.Context, address, text string) error
}

type Registry interface {
	ListActive(ctx context.Context) ([]*subscriber.Subscriber, error)
}

// Result is the outcome of one delivery attempt. Err is empty on success.
type Result struct {
	SubscriberID string `json:"subscriber_id"`
	Phone        string `json:"phone"`
	Err          string `json:"error,omitempty"`
}

func (r Result) Delivered() bool {
	return r.Err == ""
}

// Report aggregates a broadcast: every attempted recipient appears exactly
// once, in registration order.
type Report struct {
	Attempted int      `json:"attempted"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Results   []Result `json:"results"`
}

const (
	defaultSendTimeout = 10 * time.Second
	defaultWorkers     = 8
)

const canaryMessage = "This is a TEST alert from TradeL. Your alerts are working perfectly!"

// Dispatcher fans one message out to every active subscriber. Sends run
// concurrently; a failure for one recipient never aborts the others, and a
// slow send is cut off by the per-send timeout.
type Dispatcher struct {
	registry    Registry
	transport   Transport
	sendTimeout time.Duration
	workers     int
}

func NewDispatcher(registry Registry, transport Transport) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		transport:   transport,
		sendTimeout: defaultSendTimeout,
		workers:     defaultWorkers,
	}
}

// Broadcast resolves the active subscriber set and attempts delivery to each.
// A failure to resolve the set is fatal to the call; per-recipient failures
// are captured in the report only. Callers must inspect the report, not just
// the returned error, to learn of partial failures.
func (d *Dispatcher) Broadcast(ctx context.Context, text string) (*Report, error) {
	subs, err := d.registry.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve active subscribers: %w", err)
	}

	log.Printf("Broadcasting to %d active subscribers", len(subs))
	start := time.Now()
	metrics.BroadcastsTotal.Inc()

	report := &Report{
		Attempted: len(subs),
		Results:   make([]Result, len(subs)),
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, d.workers)
	for i, sub := range subs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, sub *subscriber.Subscriber) {
			defer wg.Done()
			defer func() { <-sem }()
			report.Results[i] = d.sendOne(ctx, sub, text)
		}(i, sub)
	}
	wg.Wait()

	for _, res := range report.Results {
		if res.Delivered() {
			report.Succeeded++
			metrics.AlertsSentTotal.WithLabelValues("delivered").Inc()
		} else {
			report.Failed++
			metrics.AlertsSentTotal.WithLabelValues("failed").Inc()
		}
	}
	metrics.BroadcastDuration.Observe(time.Since(start).Seconds())

	if report.Failed > 0 {
		log.Printf("Broadcast done: %d delivered, %d failed", report.Succeeded, report.Failed)
	}
	return report, nil
}

// TestBroadcast sends a fixed canary message to all active subscribers to
// validate the end-to-end wiring to the provider.
func (d *Dispatcher) TestBroadcast(ctx context.Context) (*Report, error) {
	return d.Broadcast(ctx, canaryMessage)
}

func (d *Dispatcher) sendOne(ctx context.Context, sub *subscriber.Subscriber, text string) Result {
	res := Result{SubscriberID: sub.ID, Phone: sub.Phone}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	err := d.transport.Send(sendCtx, sub.Phone, text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			res.Err = "timeout"
		} else {
			res.Err = err.Error()
		}
		log.Printf("Alert failed for %s (%s): %s", sub.ID, sub.Name, res.Err)
	}
	return res
}
