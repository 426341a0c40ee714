package gatekeeper

// Navigator abstracts the consuming surface's navigation: on a terminal
// authentication failure the gatekeeper redirects to the login entry point,
// carrying the original destination as the return path. Implementations
// must tolerate repeated calls; the gatekeeper additionally skips the
// redirect when the surface is already at the login path.
type Navigator interface {
	CurrentPath() string
	RedirectToLogin(returnPath string)
}

// NopNavigator is a Navigator for surfaces without navigation (batch jobs,
// CLIs).
type NopNavigator struct{}

var _ Navigator = NopNavigator{}

func (NopNavigator) CurrentPath() string    { return "" }
func (NopNavigator) RedirectToLogin(string) {}
