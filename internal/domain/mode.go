package domain

// Identity is the authenticated user as reported by the identity provider.
type Identity struct {
	ID    string
	Email string
}

// Mode selects which storage backend a call operates against. It is threaded
// explicitly through the orchestrator and storage selector instead of being
// read from ambient state, so a mid-session switch takes effect on the very
// next call.
type Mode struct {
	guest    bool
	identity Identity
}

// RemoteMode binds the durable multi-user backend to the given identity.
func RemoteMode(id Identity) Mode {
	return Mode{identity: id}
}

// GuestMode scopes all state to the device-local store under a synthetic owner.
func GuestMode() Mode {
	return Mode{guest: true}
}

func (m Mode) IsGuest() bool { return m.guest }

// Identity returns the bound identity and whether one is present. Guest mode
// never carries an identity.
func (m Mode) Identity() (Identity, bool) {
	if m.guest || m.identity.ID == "" {
		return Identity{}, false
	}
	return m.identity, true
}

// OwnerID is the identity ID in remote mode, empty otherwise. The local store
// substitutes its synthetic owner for the empty string.
func (m Mode) OwnerID() string {
	if m.guest {
		return ""
	}
	return m.identity.ID
}
