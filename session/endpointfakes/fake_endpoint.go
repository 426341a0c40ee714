package endpointfakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/token"
)

var _ session.Endpoint = (*FakeEndpoint)(nil)

// FakeEndpoint is a scriptable session.Endpoint with call counters. Assign
// the *Fn fields to script outcomes; unassigned calls succeed with the
// corresponding *Result field. Set Hold before a call to make Refresh block
// until Release is invoked, for exercising in-flight coordination.
type FakeEndpoint struct {
	LoginFn   func(ctx context.Context, email, password string) (*token.Pair, error)
	RefreshFn func(ctx context.Context, refreshToken string) (*token.Pair, error)
	LogoutFn  func(ctx context.Context, refreshToken string) error

	LoginResult   *token.Pair
	RefreshResult *token.Pair

	lock         sync.Mutex
	loginCalls   int
	refreshCalls int
	logoutCalls  int
	hold         chan struct{}
}

func NewFakeEndpoint() *FakeEndpoint {
	return &FakeEndpoint{}
}

func (f *FakeEndpoint) Login(ctx context.Context, email, password string) (*token.Pair, error) {
	f.lock.Lock()
	f.loginCalls++
	fn := f.LoginFn
	result := f.LoginResult
	f.lock.Unlock()

	if fn != nil {
		return fn(ctx, email, password)
	}
	return result, nil
}

func (f *FakeEndpoint) Refresh(ctx context.Context, refreshToken string) (*token.Pair, error) {
	f.lock.Lock()
	f.refreshCalls++
	fn := f.RefreshFn
	result := f.RefreshResult
	hold := f.hold
	f.lock.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fn != nil {
		return fn(ctx, refreshToken)
	}
	return result, nil
}

func (f *FakeEndpoint) Logout(ctx context.Context, refreshToken string) error {
	f.lock.Lock()
	f.logoutCalls++
	fn := f.LogoutFn
	f.lock.Unlock()

	if fn != nil {
		return fn(ctx, refreshToken)
	}
	return nil
}

// Hold makes subsequent Refresh calls block until Release.
func (f *FakeEndpoint) Hold() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.hold = make(chan struct{})
}

// Release unblocks held Refresh calls.
func (f *FakeEndpoint) Release() {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.hold != nil {
		close(f.hold)
		f.hold = nil
	}
}

func (f *FakeEndpoint) LoginCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.loginCalls
}

func (f *FakeEndpoint) RefreshCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.refreshCalls
}

func (f *FakeEndpoint) LogoutCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.logoutCalls
}
