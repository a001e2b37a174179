package auth

import "github.com/videoauth/auth-service/internal/idp"

// rotationState tags the progress of the two-step temporary-password
// exchange. The session token travels inside the value, never through
// implicit control flow, so the transitions below are the only way to
// reach COMPLETE.
type rotationState int

const (
	rotationInit rotationState = iota
	rotationAuthenticating
	rotationChallengeReceived
	rotationResponding
	rotationComplete
	rotationFailed
)

// passwordRotation is the state-tagged value threaded through
// ConfirmTemporaryPassword. A rotation ends in exactly one of
// rotationComplete (tokens set) or rotationFailed (failure set).
type passwordRotation struct {
	state   rotationState
	session string
	tokens  *idp.TokenSet
	failure *Error
}

func (r *passwordRotation) fail(e *Error) {
	r.state = rotationFailed
	r.failure = e
}

// receiveChallenge records the provider's challenge leg. The opaque session
// must be echoed unmodified on the responding leg.
func (r *passwordRotation) receiveChallenge(session string) {
	r.state = rotationChallengeReceived
	r.session = session
}

func (r *passwordRotation) complete(tokens *idp.TokenSet) {
	r.state = rotationComplete
	r.tokens = tokens
}
