package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentia-hr/vacaciones-api/internal/dto"
	"github.com/talentia-hr/vacaciones-api/internal/models"
	"github.com/talentia-hr/vacaciones-api/internal/repository"
	appErrors "github.com/talentia-hr/vacaciones-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UserService handles user management use cases.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns a page of users matching the filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

// Get returns a single user by identifier.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	user.PasswordHash = ""
	return user, nil
}

// Create registers a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	if req.JefeID != nil {
		if err := s.checkManager(ctx, *req.JefeID); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:         req.Email,
		PasswordHash:  string(hash),
		FullName:      req.NombreCompleto,
		Role:          models.UserRole(req.Rol),
		AvailableDays: req.DiasDisponible,
		ManagerID:     req.JefeID,
		Active:        true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "email is already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.emitAudit(ctx, actor, user.ID, map[string]interface{}{"action": "create", "email": user.Email, "rol": user.Role})
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("rol", string(user.Role)))

	user.PasswordHash = ""
	return user, nil
}

// Update mutates an existing user. Only non-nil fields are applied.
func (s *UserService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if req.JefeID != nil && *req.JefeID != "" {
		if *req.JefeID == id {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a user cannot be their own manager")
		}
		if err := s.checkManager(ctx, *req.JefeID); err != nil {
			return nil, err
		}
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.NombreCompleto != nil {
		user.FullName = *req.NombreCompleto
	}
	if req.Rol != nil {
		user.Role = models.UserRole(*req.Rol)
	}
	if req.DiasDisponible != nil {
		user.AvailableDays = *req.DiasDisponible
	}
	if req.JefeID != nil {
		if *req.JefeID == "" {
			user.ManagerID = nil
		} else {
			user.ManagerID = req.JefeID
		}
	}
	if req.Activo != nil {
		user.Active = *req.Activo
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "email is already registered")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	s.emitAudit(ctx, actor, user.ID, map[string]interface{}{"action": "update"})

	user.PasswordHash = ""
	return user, nil
}

// Delete removes a user without existing vacation requests.
func (s *UserService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrHasRequests) {
			return appErrors.Clone(appErrors.ErrUserHasRequests, "user has vacation requests and cannot be deleted")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}

	s.emitAudit(ctx, actor, id, map[string]interface{}{"action": "delete"})
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *UserService) checkManager(ctx context.Context, managerID string) error {
	manager, err := s.repo.FindByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "referenced manager does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load manager")
	}
	if manager.Role == models.RoleEmpleado {
		return appErrors.Clone(appErrors.ErrValidation, "referenced manager must hold an approver role")
	}
	return nil
}

func (s *UserService) emitAudit(ctx context.Context, actor *models.JWTClaims, resourceID string, values map[string]interface{}) {
	payload, err := json.Marshal(values)
	if err != nil {
		payload = []byte(`{}`)
	}
	log := &models.AuditLog{
		UserID:     actorIDPtr(actor),
		Action:     models.AuditActionUserMutation,
		Resource:   "usuarios",
		ResourceID: &resourceID,
		NewValues:  payload,
	}
	if err := s.repo.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record user audit log", zap.Error(err))
	}
}
