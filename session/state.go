package session

import "github.com/jrsteele09/go-auth-client/token"

// State is the coordinator's lifecycle position. Anonymous and
// Authenticated are the stable rest states; Authenticating and Refreshing
// cover the in-flight network operations.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateRefreshing     State = "refreshing"
)

// Event describes a state transition. Claims is set when the transition
// lands in StateAuthenticated; Err carries the failure that caused a
// transition back to StateAnonymous, if any.
type Event struct {
	State  State
	Claims *token.Claims
	Err    error
}

// Listener receives coordinator state transitions. Listeners are invoked
// synchronously in registration order and must not block.
type Listener func(Event)
