package messaging

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cespare/xxhash/v2"

	"github.com/opd-ai/voxchatter/ax25"
)

// Fingerprint hashes the addressing and bytes of a frame.
func Fingerprint(from, to ax25.Station, frame []byte) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(from.String())
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(to.String())
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(frame)
	return d.Sum64()
}

// echoTable counts recently sent fingerprints. Each registration expires on
// its own after the window; lookups never change the count.
type echoTable struct {
	mu         sync.Mutex
	clock      clock.Clock
	window     time.Duration
	counts     map[uint64]int
	timers     map[*clock.Timer]struct{}
	generation uint64
}

func newEchoTable(clk clock.Clock, window time.Duration) *echoTable {
	return &echoTable{
		clock:  clk,
		window: window,
		counts: make(map[uint64]int),
		timers: make(map[*clock.Timer]struct{}),
	}
}

// register adds one reference to fp and schedules its expiry. The returned
// cancel removes the reference early; it is a no-op once expired.
func (e *echoTable) register(fp uint64) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.counts[fp]++
	gen := e.generation

	var once sync.Once
	var timer *clock.Timer
	release := func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if timer != nil {
				delete(e.timers, timer)
			}
			if gen != e.generation {
				return
			}
			e.decrement(fp)
		})
	}

	timer = e.clock.AfterFunc(e.window, release)
	e.timers[timer] = struct{}{}

	return func() {
		if timer.Stop() {
			release()
		}
	}
}

// decrement must be called with mu held.
func (e *echoTable) decrement(fp uint64) {
	if n := e.counts[fp]; n <= 1 {
		delete(e.counts, fp)
	} else {
		e.counts[fp] = n - 1
	}
}

func (e *echoTable) contains(fp uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts[fp] > 0
}

func (e *echoTable) count(fp uint64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts[fp]
}

func (e *echoTable) size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.counts)
}

// clear drops every entry and stops pending expiries.
func (e *echoTable) clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for t := range e.timers {
		t.Stop()
	}
	e.timers = make(map[*clock.Timer]struct{})
	e.counts = make(map[uint64]int)
	e.generation++
}
