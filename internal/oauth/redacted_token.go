package oauth

const redacted = "[REDACTED]"

// RedactedToken holds an access token and refuses to print it. Every
// formatting and marshalling path yields "[REDACTED]"; only Value exposes
// the secret, for use in an Authorization header.
type RedactedToken struct {
	value string
}

// NewRedactedToken wraps value.
func NewRedactedToken(value string) RedactedToken {
	return RedactedToken{value: value}
}

// Value returns the raw token. Never log it.
func (t RedactedToken) Value() string { return t.value }

// IsEmpty reports whether no token is held.
func (t RedactedToken) IsEmpty() bool { return t.value == "" }

func (t RedactedToken) String() string { return redacted }

func (t RedactedToken) GoString() string { return "oauth.RedactedToken{" + redacted + "}" }

func (t RedactedToken) MarshalText() ([]byte, error) { return []byte(redacted), nil }

func (t RedactedToken) MarshalJSON() ([]byte, error) { return []byte(`"` + redacted + `"`), nil }
