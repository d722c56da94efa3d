// Package models holds the entities shared between the store, the actors
// and the HTTP layer.
package models

// User is the wire shape of a directory user. Password carries the plaintext
// credential on input only and is never echoed back to clients.
type User struct {
	UserName string `json:"userName"`
	Password string `json:"password,omitempty"`
}

// StoredUser is the persisted shape of a user. CredentialDigest holds the
// one-way hash of the credential and must never reach a client, hence the
// "-" tag.
type StoredUser struct {
	UserName         string `json:"userName"`
	CredentialDigest string `json:"-"`
}

// Public strips a stored user down to its client-visible fields.
func (u StoredUser) Public() User {
	return User{UserName: u.UserName}
}
