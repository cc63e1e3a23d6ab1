package ingest

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/itohio/goneo/pkg/series"
	"github.com/itohio/goneo/pkg/trainer"
)

// DefaultPollInterval is the tick of the poll loop.
const DefaultPollInterval = 50 * time.Millisecond

// LineSource is the part of a device the poll loop reads from.
type LineSource interface {
	Available() bool
	ReadLine() ([]byte, error)
}

// Poll runs one tick: it reads up to maxLines queued lines from src and
// ingests them. Malformed and undecodable lines are logged and skipped. A
// read error is published as a PollError and ends the tick.
//
// The returned events are the ones this tick produced (SampleAppended and
// PollError); subscribers of ing have already seen them.
func Poll(src LineSource, ing *Ingestor, maxLines int) []Event {
	if maxLines <= 0 {
		maxLines = 1
	}

	var events []Event
	for n := 0; n < maxLines && src.Available(); n++ {
		line, err := src.ReadLine()
		if err != nil {
			if errors.Is(err, trainer.ErrNoData) {
				break
			}
			events = append(events, ing.ReportError(err))
			break
		}

		s, ok, err := ing.Ingest(line)
		if err != nil {
			log.Printf("Discarding line: %v", err)
			continue
		}

		if ok && s.Sequence >= 0 {
			events = append(events, SampleAppended{
				Sample: s,
				Point:  series.Point{Seq: s.Sequence, Value: s.Value},
			})
		}
	}

	return events
}

// Poller drives Poll on a fixed interval on its own goroutine.
type Poller struct {
	src      LineSource
	ing      *Ingestor
	interval time.Duration
	maxLines int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller. Zero values select DefaultPollInterval and one line per tick.
func NewPoller(src LineSource, ing *Ingestor, interval time.Duration, maxLines int) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxLines <= 0 {
		maxLines = 1
	}

	return &Poller{
		src:      src,
		ing:      ing,
		interval: interval,
		maxLines: maxLines,
	}
}

// Start runs the poll loop in a goroutine until ctx is cancelled or Stop is
// called. Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		p.Run(ctx)
	}()
}

// Stop cancels the poll loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the poll loop was started and not stopped.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}

// Run polls on every tick until ctx is done. It blocks. A panic during a
// tick is logged and the loop keeps running.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick runs one Poll, recovering from panics in the source or subscribers.
func (p *Poller) tick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in poll tick: %v", r)
		}
	}()

	Poll(p.src, p.ing, p.maxLines)
}
