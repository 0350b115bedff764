package server

// Phase is a step of the content server startup sequence.
//
//	INIT -> SPAWNING_PRELOAD -> PRELOAD_SUCCEEDED -> LISTENING
//	                         \-> PRELOAD_FAILED -> TERMINATED
//
// Once LISTENING the catalog is never reloaded.
type Phase int32

const (
	PhaseInit Phase = iota
	PhaseSpawningPreload
	PhasePreloadSucceeded
	PhaseListening
	PhasePreloadFailed
	PhaseTerminated
)

// String returns the upper-case phase name used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "INIT"
	case PhaseSpawningPreload:
		return "SPAWNING_PRELOAD"
	case PhasePreloadSucceeded:
		return "PRELOAD_SUCCEEDED"
	case PhaseListening:
		return "LISTENING"
	case PhasePreloadFailed:
		return "PRELOAD_FAILED"
	case PhaseTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}
