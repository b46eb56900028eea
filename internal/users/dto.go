package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgpagination "github.com/gegsoft/paytrack-backend/pkg/pagination"
)

// UserDTO is the transport shape that omits the credential hash.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	FullName    string     `json:"full_name"`
	Role        enums.Role `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateUserInput struct {
	Username string     `json:"username"`
	FullName string     `json:"full_name"`
	Password string     `json:"password"`
	Role     enums.Role `json:"role"`
	IsActive *bool      `json:"is_active"`
}

// CreateUserResult echoes the generated password exactly once, when the
// caller did not supply one.
type CreateUserResult struct {
	User         UserDTO `json:"user"`
	TempPassword string  `json:"temp_password,omitempty"`
}

type UpdateUserInput struct {
	FullName *string     `json:"full_name"`
	Role     *enums.Role `json:"role"`
	IsActive *bool       `json:"is_active"`
	Password *string     `json:"password"`
}

type ListParams struct {
	Role enums.Role
	pkgpagination.Params
}

type ListResult struct {
	Items  []UserDTO `json:"items"`
	Cursor string    `json:"cursor"`
}

type listQuery struct {
	role   enums.Role
	limit  int
	cursor *pkgpagination.Cursor
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
