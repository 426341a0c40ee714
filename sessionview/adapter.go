// Package sessionview exposes session state and actions to the consuming
// surface as a read-only, event-driven projection of the coordinator.
// Updates are purely reactive to coordinator transitions; there is no
// polling loop.
package sessionview

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultErrorDisplayWindow is how long LastError stays visible before it
// is cleared automatically.
const DefaultErrorDisplayWindow = 5 * time.Second

// State is the read-only session projection handed to the surface. It is a
// value; mutating a copy has no effect on the adapter.
type State struct {
	Authenticated bool
	Claims        *token.Claims
	Loading       bool
	LastError     error
}

// Adapter projects coordinator transitions into State values and fans them
// out to subscribers. All mutating calls delegate to the coordinator and
// resolve once the resulting transition has been applied.
type Adapter struct {
	coordinator *session.Coordinator
	log         zerolog.Logger
	errWindow   time.Duration

	mu     sync.Mutex
	state  State
	subs   map[int]chan State
	nextID int
}

// AdapterOption defines a function type to modify the Adapter instance.
type AdapterOption func(*Adapter)

// WithErrorDisplayWindow overrides how long transient errors stay visible.
// Zero disables auto-clearing.
func WithErrorDisplayWindow(window time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.errWindow = window
	}
}

// New initializes an Adapter and registers it on the coordinator. The
// projection starts in Loading until the coordinator settles the initial
// state (typically via Restore at process start).
func New(coordinator *session.Coordinator, logger zerolog.Logger, options ...AdapterOption) (*Adapter, error) {
	if coordinator == nil {
		return nil, errors.New("[sessionview.New] session coordinator is required")
	}

	adapter := &Adapter{
		coordinator: coordinator,
		log:         logger,
		errWindow:   DefaultErrorDisplayWindow,
		state:       State{Loading: true},
		subs:        make(map[int]chan State),
	}

	for _, opt := range options {
		opt(adapter)
	}

	coordinator.AddListener(adapter.onEvent)
	return adapter, nil
}

// State returns the current projection.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Subscribe returns a channel receiving every subsequent State and a cancel
// function releasing the subscription. The channel holds the latest value;
// slow consumers observe the most recent state, not every intermediate one.
func (a *Adapter) Subscribe() (<-chan State, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	ch := make(chan State, 1)
	a.subs[id] = ch

	// The channel is deliberately not closed on cancel: a publish taken
	// from an earlier snapshot may still deliver to it.
	cancel := func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
	return ch, cancel
}

// Login delegates to the coordinator; the projection updates through the
// resulting transitions.
func (a *Adapter) Login(ctx context.Context, email, password string) error {
	_, err := a.coordinator.Login(ctx, email, password)
	return err
}

// Logout delegates to the coordinator.
func (a *Adapter) Logout(ctx context.Context) error {
	return a.coordinator.Logout(ctx)
}

// Refresh manually triggers a token refresh, e.g. for a periodic health
// check driven by the surface.
func (a *Adapter) Refresh(ctx context.Context) error {
	_, err := a.coordinator.Refresh(ctx)
	return err
}

// ClearError removes the transient error from the projection.
func (a *Adapter) ClearError() {
	a.mu.Lock()
	if a.state.LastError == nil {
		a.mu.Unlock()
		return
	}
	a.state.LastError = nil
	state := a.state
	subs := a.snapshotSubs()
	a.mu.Unlock()

	a.publish(state, subs)
}

func (a *Adapter) onEvent(event session.Event) {
	a.mu.Lock()
	a.state = State{
		Authenticated: event.State == session.StateAuthenticated,
		Claims:        event.Claims,
		Loading:       event.State == session.StateAuthenticating || event.State == session.StateRefreshing,
		LastError:     event.Err,
	}
	state := a.state
	subs := a.snapshotSubs()
	a.mu.Unlock()

	a.publish(state, subs)

	if event.Err != nil && a.errWindow > 0 {
		time.AfterFunc(a.errWindow, a.ClearError)
	}
}

func (a *Adapter) snapshotSubs() []chan State {
	subs := make([]chan State, 0, len(a.subs))
	for _, ch := range a.subs {
		subs = append(subs, ch)
	}
	return subs
}

// publish replaces any undelivered value so subscribers always see the
// latest state.
func (a *Adapter) publish(state State, subs []chan State) {
	for _, ch := range subs {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}
