package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gegsoft/paytrack-backend/internal/access"
	"github.com/gegsoft/paytrack-backend/internal/activity"
	"github.com/gegsoft/paytrack-backend/pkg/config"
	pkgdb "github.com/gegsoft/paytrack-backend/pkg/db"
	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgerrors "github.com/gegsoft/paytrack-backend/pkg/errors"
	pkgpagination "github.com/gegsoft/paytrack-backend/pkg/pagination"
	"github.com/gegsoft/paytrack-backend/pkg/security"
)

const targetTable = "users"

const tempPasswordLength = 16

type usersRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, opts listQuery) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service owns account management. Credential checks live in the auth
// package; this service only deals in hashes.
type Service interface {
	CreateUser(ctx context.Context, actor access.Actor, input CreateUserInput) (*CreateUserResult, error)
	GetUser(ctx context.Context, actor access.Actor, id uuid.UUID) (*UserDTO, error)
	ListUsers(ctx context.Context, actor access.Actor, params ListParams) (*ListResult, error)
	UpdateUser(ctx context.Context, actor access.Actor, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	DeleteUser(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

type service struct {
	repo        usersRepository
	passwordCfg config.PasswordConfig
	recorder    activity.Recorder
}

// NewService builds the user management service.
func NewService(repo usersRepository, passwordCfg config.PasswordConfig, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg, recorder: recorder}, nil
}

func (s *service) CreateUser(ctx context.Context, actor access.Actor, input CreateUserInput) (*CreateUserResult, error) {
	if err := access.Require(actor, enums.ResourceUser, enums.OperationCreate); err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full_name is required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}

	password := input.Password
	tempPassword := ""
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
		}
		password = generated
		tempPassword = generated
	}
	passwordHash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	user := &models.User{
		Username:     username,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: passwordHash,
		Role:         input.Role,
		IsActive:     isActive,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating user")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionCreate, targetTable, &created.ID, fmt.Sprintf("created %s account %q", created.Role, created.Username))
	return &CreateUserResult{User: *FromModel(created), TempPassword: tempPassword}, nil
}

func (s *service) GetUser(ctx context.Context, actor access.Actor, id uuid.UUID) (*UserDTO, error) {
	if err := access.Require(actor, enums.ResourceUser, enums.OperationView); err != nil {
		return nil, err
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) ListUsers(ctx context.Context, actor access.Actor, params ListParams) (*ListResult, error) {
	if err := access.Require(actor, enums.ResourceUser, enums.OperationView); err != nil {
		return nil, err
	}
	if params.Role != "" && !params.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", params.Role))
	}

	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, listQuery{role: params.Role, limit: limit + 1, cursor: cursor})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing users")
	}

	result := &ListResult{Items: make([]UserDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.Cursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	return result, nil
}

func (s *service) UpdateUser(ctx context.Context, actor access.Actor, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	if err := access.Require(actor, enums.ResourceUser, enums.OperationEdit); err != nil {
		return nil, err
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full_name must not be blank")
		}
		user.FullName = name
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", *input.Role))
		}
		// Admins cannot demote themselves out of user management.
		if actor.UserID == id && *input.Role != user.Role {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot change your own role")
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		if actor.UserID == id && !*input.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate your own account")
		}
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must not be blank")
		}
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating user")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionUpdate, targetTable, &user.ID, fmt.Sprintf("updated account %q", user.Username))
	return FromModel(user), nil
}

func (s *service) DeleteUser(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := access.Require(actor, enums.ResourceUser, enums.OperationDelete); err != nil {
		return err
	}
	if actor.UserID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account")
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting user")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionDelete, targetTable, &id, fmt.Sprintf("deleted account %q", user.Username))
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	return user, nil
}
