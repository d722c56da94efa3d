// Package messages defines the immutable envelopes exchanged between the
// pipeline and the actors: one Operation per store request, one Outcome per
// Operation, auth results, and the transport-level Response. Values are
// constructed once and never mutated after send.
package messages

import "github.com/jmross14/PelaghiSoftwareWebServer/internal/server/models"

// Operation is the tagged request variant consumed by the data accessor.
type Operation interface {
	isOperation()
}

// GetOne asks for a single user by username.
type GetOne struct {
	UserName string
}

// GetAll asks for every user in the directory.
type GetAll struct{}

// Insert asks to create the given user. User.Password carries the plaintext
// credential to be hashed.
type Insert struct {
	User models.User
}

// Update asks to replace the given user. An empty User.Password means the
// stored digest is carried over unchanged.
type Update struct {
	User models.User
}

// Delete asks to remove the given user.
type Delete struct {
	User models.User
}

func (GetOne) isOperation() {}
func (GetAll) isOperation() {}
func (Insert) isOperation() {}
func (Update) isOperation() {}
func (Delete) isOperation() {}

// Outcome is the tagged result variant paired with each Operation.
type Outcome interface {
	isOutcome()
}

// GetOneOutcome carries the found entity, or nil if absent. The lookup
// itself always succeeds.
type GetOneOutcome struct {
	Entity *models.StoredUser
}

// GetAllOutcome carries every user in the directory.
type GetAllOutcome struct {
	Entities []models.StoredUser
}

// InsertOutcome reports an insert. Existing is set when the username was
// already taken.
type InsertOutcome struct {
	Completed bool
	Existing  *models.StoredUser
}

// UpdateOutcome reports an update.
type UpdateOutcome struct {
	Completed bool
	NotFound  bool
}

// DeleteOutcome reports a delete.
type DeleteOutcome struct {
	Completed bool
	NotFound  bool
}

func (GetOneOutcome) isOutcome() {}
func (GetAllOutcome) isOutcome() {}
func (InsertOutcome) isOutcome() {}
func (UpdateOutcome) isOutcome() {}
func (DeleteOutcome) isOutcome() {}

// AuthOutcome is the result of a login attempt. Absence of a token, not an
// error, signals failure.
type AuthOutcome struct {
	Token string
}

// Empty reports whether the login failed.
func (a AuthOutcome) Empty() bool { return a.Token == "" }

// Unauthorized signals that a request failed token validation and must be
// answered without touching the data accessor.
type Unauthorized struct{}

// Response is the transport-level reply handed back to the caller.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}
