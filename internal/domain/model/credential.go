package model

// Credentials is the opaque token consumed by submission, polling, index
// retrieval, and artifact download.
type Credentials struct {
	Token string
}
