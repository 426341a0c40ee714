package session

import (
	"sync"

	"github.com/jrsteele09/go-auth-client/token"
)

type refreshResult struct {
	pair *token.Pair
	err  error
}

// refreshLock is the single shared in-flight-refresh handle: at most one
// outstanding refresh at any time plus a FIFO queue of waiters resolved from
// the one outcome. The generation counter identifies the lock epoch; logout
// bumps it so a refresh that completes afterwards discards its result.
type refreshLock struct {
	mu         sync.Mutex
	inFlight   bool
	generation uint64
	waiters    []chan refreshResult
}

// begin returns leader=true when the caller must perform the network
// refresh itself. Followers receive a buffered channel resolved, in FIFO
// enqueue order, with the leader's outcome.
func (l *refreshLock) begin() (leader bool, wait <-chan refreshResult, gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inFlight {
		ch := make(chan refreshResult, 1)
		l.waiters = append(l.waiters, ch)
		return false, ch, l.generation
	}
	l.inFlight = true
	return true, nil, l.generation
}

// active reports whether gen is still the live epoch. The leader checks
// this before persisting its result, so a refresh racing a logout never
// resurrects cleared state.
func (l *refreshLock) active(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation == gen
}

// complete resolves all queued waiters with the leader's outcome and clears
// the in-flight flag. Returns false when the epoch changed mid-flight; the
// reset that bumped it already drained the queue and the result is dropped.
func (l *refreshLock) complete(gen uint64, pair *token.Pair, err error) bool {
	l.mu.Lock()
	if l.generation != gen {
		l.mu.Unlock()
		return false
	}
	waiters := l.waiters
	l.waiters = nil
	l.inFlight = false
	l.mu.Unlock()

	result := refreshResult{pair: pair, err: err}
	for _, ch := range waiters {
		ch <- result
	}
	return true
}

// reset empties the lock as logout's terminal step. Pending waiters are
// rejected with AuthenticationRequiredErr: the session they were waiting on
// no longer exists.
func (l *refreshLock) reset() {
	l.mu.Lock()
	l.generation++
	l.inFlight = false
	waiters := l.waiters
	l.waiters = nil
	l.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshResult{err: AuthenticationRequiredErr}
	}
}
