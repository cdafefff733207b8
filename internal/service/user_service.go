package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// UserService handles user management workflows.
type UserService struct {
	repo      userRepository
	teachers  teacherReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, teachers teacherReader, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

// List returns users matching the filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list users")
	}
	return users, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user")
	}
	return user, nil
}

// Create adds a new user.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid create user payload")
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, validationError(nil, "invalid role")
	}
	username := strings.TrimSpace(req.Username)
	if err := s.ensureUsernameFree(ctx, username, ""); err != nil {
		return nil, err
	}
	teacherID, err := s.resolveTeacherLink(ctx, role, req.TeacherID, "")
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		TeacherID:    teacherID,
		Active:       active,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username or teacher link already in use")
		}
		return nil, appErrors.Store(err, "failed to create user")
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Update applies the non-nil fields of req.
func (s *UserService) Update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid update user payload")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user")
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != user.Username {
			if err := s.ensureUsernameFree(ctx, username, user.ID); err != nil {
				return nil, err
			}
			user.Username = username
		}
	}
	if req.Role != nil {
		role, ok := models.ParseRole(*req.Role)
		if !ok {
			return nil, validationError(nil, "invalid role")
		}
		user.Role = role
	}

	link := user.TeacherID
	if req.TeacherID != nil {
		link = req.TeacherID
	}
	if user.Role != models.RoleTeacher && req.TeacherID == nil {
		// A role change away from TEACHER drops the link.
		link = nil
	}
	teacherID, err := s.resolveTeacherLink(ctx, user.Role, link, user.ID)
	if err != nil {
		return nil, err
	}
	user.TeacherID = teacherID

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user.PasswordHash = string(hash)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		case errors.Is(err, models.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "username or teacher link already in use")
		}
		return nil, appErrors.Store(err, "failed to update user")
	}
	return user, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Store(err, "failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil && existing.ID != selfID:
		return appErrors.Clone(appErrors.ErrConflict, "username already exists")
	case err == nil, errors.Is(err, sql.ErrNoRows):
		return nil
	default:
		return appErrors.Store(err, "failed to check username uniqueness")
	}
}

// resolveTeacherLink enforces that only TEACHER accounts link a teacher, that
// the teacher exists, and that no other account already links it.
func (s *UserService) resolveTeacherLink(ctx context.Context, role models.UserRole, teacherID *string, selfID string) (*string, error) {
	id := trimmed(teacherID)
	if id == "" {
		return nil, nil
	}
	if role != models.RoleTeacher {
		return nil, validationError(nil, "only TEACHER accounts can be linked to a teacher")
	}
	if _, err := s.teachers.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, validationError(nil, "teacher does not exist")
		}
		return nil, appErrors.Store(err, "failed to load teacher")
	}
	linked, err := s.repo.List(ctx, models.UserFilter{TeacherID: id})
	if err != nil {
		return nil, appErrors.Store(err, "failed to check teacher link")
	}
	for _, u := range linked {
		if u.ID != selfID {
			return nil, appErrors.Clone(appErrors.ErrConflict, "teacher is already linked to another user")
		}
	}
	return &id, nil
}
