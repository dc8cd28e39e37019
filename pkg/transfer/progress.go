package transfer

import "sync"

// ProgressFunc is how an operation reports its own progress, as a percentage
type ProgressFunc func(percent int)

// Event reports the overall progress of a transfer
type Event struct {
	Percent   float64
	Completed int
	Total     int
}

// aggregator maintains the mean of the latest progress of each item.
//
// Regressions reported by an item are ignored, so the overall percentage never decreases.
type aggregator struct {
	mu        sync.Mutex
	last      []int
	sum       int
	completed int
	emitted   Event
	notify    func(Event)
}

func newAggregator(total int, notify func(Event)) *aggregator {
	return &aggregator{
		last:    make([]int, total),
		notify:  notify,
		emitted: Event{Percent: -1, Total: total},
	}
}

func (a *aggregator) reporter(i int) ProgressFunc {
	return func(percent int) {
		a.update(i, percent)
	}
}

func (a *aggregator) update(i, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if percent <= a.last[i] {
		return
	}
	a.sum += percent - a.last[i]
	a.last[i] = percent
	a.emit()
}

func (a *aggregator) done(i int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sum += 100 - a.last[i]
	a.last[i] = 100
	a.completed++
	a.emit()
}

func (a *aggregator) emit() {
	ev := Event{
		Percent:   float64(a.sum) / float64(len(a.last)),
		Completed: a.completed,
		Total:     len(a.last),
	}
	if ev == a.emitted {
		return
	}
	a.emitted = ev
	a.notify(ev)
}
