package types

type PresenceStatus struct {
	Online bool `json:"online"`
}
