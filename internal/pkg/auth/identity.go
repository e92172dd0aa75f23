package auth

// Identity is the resolved principal behind a websocket connection.
// A zero ID marks the anonymous identity: channels that require
// authentication (chat, notifications) reject it with their own close
// code, while signaling only uses the identity as a routing label.
type Identity struct {
	ID       int64
	FullName string
	Email    string
	Role     string
}

// Anonymous is the identity handed out when no token resolves.
var Anonymous = Identity{}

// IsAnonymous reports whether the identity failed to resolve to a user.
func (i Identity) IsAnonymous() bool { return i.ID == 0 }

// DisplayName returns the user's full name, falling back to the email
// address when no name is set.
func (i Identity) DisplayName() string {
	if i.FullName != "" {
		return i.FullName
	}
	return i.Email
}
