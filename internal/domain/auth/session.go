package auth

import "time"

// SessionArtifact is the signed, time-bounded value stored in the session cookie.
type SessionArtifact struct {
	Value     string
	TTL       time.Duration
	ExpiresAt time.Time
}

// MaxAgeSeconds returns the cookie Max-Age for the artifact.
func (a SessionArtifact) MaxAgeSeconds() int { return int(a.TTL / time.Second) }

// SessionState is the per-request state of the session cookie.
type SessionState int

const (
	// SessionNoArtifact means no cookie was presented.
	SessionNoArtifact SessionState = iota
	// SessionValid means the cookie decoded successfully.
	SessionValid
	// SessionInvalid means a cookie was presented but failed verification.
	SessionInvalid
)

func (s SessionState) String() string {
	switch s {
	case SessionNoArtifact:
		return "no_artifact"
	case SessionValid:
		return "valid"
	case SessionInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// SessionOutcome is the result of decoding a session cookie.
// Err is set only when State is SessionInvalid and is meant for logs.
type SessionOutcome struct {
	State  SessionState
	Claims Claims
	Err    error
}

// Present reports whether the outcome carries an identity.
func (o SessionOutcome) Present() bool { return o.State == SessionValid }
