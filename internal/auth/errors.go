package auth

// Reason classifies why authentication failed. EmailUnverified is the one
// client-actionable case: the UI offers a resend-verification prompt for it.
type Reason string

const (
	ReasonNotFound        Reason = "account_not_found"
	ReasonBadPassword     Reason = "bad_password"
	ReasonEmailUnverified Reason = "email_unverified"
)

// Error is an authentication failure with a machine-readable reason.
type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string { return e.Message }

func failed(reason Reason, message string) *Error {
	return &Error{Reason: reason, Message: message}
}
