package token

// Storage is the persistent key-value store backing the token store.
// Implementations are synchronous; write failures are reported but the
// store treats storage as best-effort and logs rather than propagates them.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}
