package command

// Rejection codes surfaced by tick orchestration.
const (
	RejectionAlreadyProgressed  = "already-progressed"
	RejectionStateMismatch      = "state-mismatch"
	RejectionTransitionNotFound = "transition-not-found"
	RejectionInvalidCommand     = "invalid-command"
	// RejectionGuardBlocked marks a mechanically valid transition whose write
	// was vetoed by coherence gates.
	RejectionGuardBlocked = "guard-blocked"
)

// Rejection explains why a command did not fire.
type Rejection struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Rejected pairs a command with the reason it was filtered out.
type Rejected struct {
	Command   Command   `json:"command"`
	Rejection Rejection `json:"rejection"`
}
