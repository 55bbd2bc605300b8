package model

// LoginState is a step of the login attempt state machine.
type LoginState int

const (
	LoginStateIdle LoginState = iota
	LoginStateAwaitingConsent
	LoginStateRequestingPlatformCode
	LoginStateRequestingPhoneGrant
	LoginStateExchangingSession
	LoginStateSuccess
	LoginStateFailed
)

func (s LoginState) String() string {
	switch s {
	case LoginStateIdle:
		return "idle"
	case LoginStateAwaitingConsent:
		return "awaiting_consent"
	case LoginStateRequestingPlatformCode:
		return "requesting_platform_code"
	case LoginStateRequestingPhoneGrant:
		return "requesting_phone_grant"
	case LoginStateExchangingSession:
		return "exchanging_session"
	case LoginStateSuccess:
		return "success"
	case LoginStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
