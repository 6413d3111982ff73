// ABOUTME: Load lifecycle of a directory screen
// ABOUTME: Keeps a missing area permission apart from other load failures
package directory

// LoadState is what a screen shows while or after loading.
type LoadState int

const (
	StateLoading LoadState = iota
	StateReady
	StatePermissionDenied
	StateUnauthorized
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePermissionDenied:
		return "permission denied"
	case StateUnauthorized:
		return "unauthorized"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
