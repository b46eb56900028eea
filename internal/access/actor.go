package access

import (
	"github.com/google/uuid"

	"github.com/gegsoft/paytrack-backend/pkg/enums"
)

// Actor identifies who is performing an operation. It is constructed from
// the authenticated request and passed explicitly into every service call;
// nothing in the domain layer reads identity from ambient state.
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     enums.Role
}

// IsSiteScoped reports whether the actor's visibility is limited to
// projects they are assigned to.
func (a Actor) IsSiteScoped() bool {
	return a.Role.IsSiteScoped()
}
