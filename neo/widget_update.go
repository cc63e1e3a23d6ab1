package main

import (
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"github.com/itohio/goneo/pkg/ingest"
)

// redrawInterval throttles chart updates to ~60 FPS.
const redrawInterval = 16 * time.Millisecond

// UpdateWidgetOnMainThread schedules a widget update function to run on the main Fyne thread.
// Fyne widgets cannot be updated directly from goroutines.
func UpdateWidgetOnMainThread(callback func()) {
	if callback == nil {
		return
	}
	fyne.Do(callback)
}

// updateThrottle limits redraws per channel. A redraw that comes too soon
// after the previous one is deferred, so the newest data is always drawn.
type updateThrottle struct {
	mu      sync.Mutex
	last    map[ingest.Channel]time.Time
	pending map[ingest.Channel]*time.Timer
}

// request runs draw now if ch was not redrawn within redrawInterval.
// Otherwise it schedules a single trailing draw for the end of the interval;
// further requests before that are coalesced into it.
func (t *updateThrottle) request(ch ingest.Channel, now time.Time, draw func()) {
	t.mu.Lock()
	if t.last == nil {
		t.last = make(map[ingest.Channel]time.Time)
		t.pending = make(map[ingest.Channel]*time.Timer)
	}

	wait := redrawInterval - now.Sub(t.last[ch])
	if wait <= 0 {
		t.last[ch] = now
		t.mu.Unlock()
		draw()
		return
	}

	if t.pending[ch] == nil {
		var timer *time.Timer
		timer = time.AfterFunc(wait, func() {
			t.mu.Lock()
			if t.pending[ch] != timer {
				// Cancelled by reset
				t.mu.Unlock()
				return
			}
			delete(t.pending, ch)
			t.last[ch] = time.Now()
			t.mu.Unlock()
			draw()
		})
		t.pending[ch] = timer
	}
	t.mu.Unlock()
}

// reset forgets redraw times and cancels deferred draws.
func (t *updateThrottle) reset() {
	t.mu.Lock()
	for _, timer := range t.pending {
		timer.Stop()
	}
	t.last = nil
	t.pending = nil
	t.mu.Unlock()
}

// handleEvent reacts to ingestor events. It is called on the goroutine that
// produced the event: the poller for samples and errors, the UI thread for
// mode changes and connections.
func handleEvent(state *appState, ev ingest.Event) {
	switch e := ev.(type) {
	case ingest.SampleAppended:
		ch := e.Sample.Channel
		state.throttle.request(ch, time.Now(), func() {
			redrawChannel(state, ch)
		})

	case ingest.ModeChanged:
		log.Printf("Mode changed to %s", e.Mode)
		state.throttle.reset()
		UpdateWidgetOnMainThread(func() {
			applyMode(state, e.Mode)
		})

	case ingest.Connected:
		log.Printf("Session %s started on %s at %d baud", e.SessionID, e.Port, e.BaudRate)
		state.throttle.reset()
		UpdateWidgetOnMainThread(func() {
			for _, c := range state.charts {
				c.Clear()
			}
		})

	case ingest.Disconnected:
		log.Printf("Session %s disconnected", e.SessionID)

	case ingest.PollError:
		log.Printf("Poll error: %v", e.Err)
		UpdateWidgetOnMainThread(func() {
			dialog.ShowError(e.Err, state.window)
		})
	}
}

// redrawChannel pushes the channel's current series to its chart.
func redrawChannel(state *appState, ch ingest.Channel) {
	points := state.ingestor.Series(ch).Points()
	UpdateWidgetOnMainThread(func() {
		if c := state.charts[ch]; c != nil {
			c.UpdateData(points)
		}
	})
}
