// Package store owns persistence of directory users. The rest of the system
// reaches the store only through the DataAccessor, which serializes access.
package store

import (
	"context"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/models"
)

// UserStore is the persistence contract for directory users.
//
// Get returns common.ErrNotFound when no row matches. Insert returns
// common.ErrAlreadyExists when the username is taken; uniqueness is also
// enforced by the table constraint, so a concurrent insert racing past an
// in-process existence check still fails here rather than corrupting data.
type UserStore interface {
	Get(ctx context.Context, userName string) (*models.StoredUser, error)
	GetAll(ctx context.Context) ([]models.StoredUser, error)
	Insert(ctx context.Context, user *models.StoredUser) error
	Update(ctx context.Context, user *models.StoredUser) error
	Delete(ctx context.Context, userName string) error
}
