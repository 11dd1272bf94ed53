package fetcher

// DefaultStopThreshold is the number of consecutive identical bodies after
// which a fetch run is considered past the end of its pagination.
const DefaultStopThreshold = 3

// RepeatGuard detects runs of identical page bodies. Paginated sites often
// serve the same "no more results" page for every index past the last real
// one; a short streak of byte-identical bodies is a cheap signal to stop
// fetching.
//
// A guard belongs to a single fetch run and is only touched from the run's
// coordinator goroutine, so it carries no locking of its own.
type RepeatGuard struct {
	lastBody  string
	hasLast   bool
	streak    int
	threshold int
	stopped   bool
}

// NewRepeatGuard creates a guard that raises its stop signal once the given
// number of consecutive repeats is reached. A non-positive threshold uses
// DefaultStopThreshold.
func NewRepeatGuard(threshold int) *RepeatGuard {
	if threshold <= 0 {
		threshold = DefaultStopThreshold
	}
	return &RepeatGuard{threshold: threshold}
}

// Observe records one page body and reports whether it repeats the
// immediately preceding one. Reaching the configured streak sets the stop
// signal; the signal never resets.
func (g *RepeatGuard) Observe(body string) bool {
	if g.hasLast && body == g.lastBody {
		g.streak++
		if g.streak >= g.threshold {
			g.stopped = true
		}
		return true
	}
	g.streak = 0
	g.lastBody = body
	g.hasLast = true
	return false
}

// Stopped reports whether the repeat streak has reached the threshold.
// Distinct from Observe's return value: a single repeat means "skip this
// page", a raised stop signal means "end the whole run".
func (g *RepeatGuard) Stopped() bool {
	return g.stopped
}

// Streak returns the current count of consecutive repeats.
func (g *RepeatGuard) Streak() int {
	return g.streak
}
