package services

import (
	"context"
	"errors"
	"strings"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/auth"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/models"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
)

type UserService interface {
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Get returns the user when caller is that user or an admin.
	Get(ctx context.Context, id string, caller Caller) (*models.User, error)
	Update(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id string) error
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	// EnsureAdmin creates an admin account for email unless one already exists.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type userService struct {
	repo   repository.UserRepository
	tokens *auth.TokenManager
	logger *utils.Logger
}

func NewUserService(repo repository.UserRepository, tokens *auth.TokenManager, logger *utils.Logger) UserService {
	return &userService{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

func (s *userService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Failed to look up email", "error", err)
		return nil, utils.NewInternalError("Failed to create user").Wrap(err)
	}
	if existing != nil {
		return nil, utils.NewConflictError("Email already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, passwordError(err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		ID:             utils.GenerateID(),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		DocumentNumber: req.DocumentNumber,
		Address:        req.Address,
		PasswordHash:   hash,
		IsActive:       true,
		Role:           role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to save user", "error", err, "email", user.Email)
		return nil, utils.NewInternalError("Failed to create user").Wrap(err)
	}

	s.logger.Info("User created", "id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list users", "error", err)
		return nil, utils.NewInternalError("Failed to retrieve users").Wrap(err)
	}
	return nonNil(users), nil
}

func (s *userService) Get(ctx context.Context, id string, caller Caller) (*models.User, error) {
	if !caller.IsAdmin() && caller.UserID != id {
		return nil, utils.NewForbiddenError("You do not have access to this user")
	}
	return s.find(ctx, id)
}

func (s *userService) Update(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			other, err := s.repo.GetByEmail(ctx, email)
			if err != nil {
				s.logger.Error("Failed to look up email", "error", err)
				return nil, utils.NewInternalError("Failed to update user").Wrap(err)
			}
			if other != nil {
				return nil, utils.NewConflictError("Email already registered")
			}
			user.Email = email
		}
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, passwordError(err)
		}
		user.PasswordHash = hash
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.DocumentNumber != nil {
		user.DocumentNumber = req.DocumentNumber
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to update user").Wrap(err)
	}

	s.logger.Info("User updated", "id", id)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete user", "error", err, "id", id)
		return utils.NewInternalError("Failed to delete user").Wrap(err)
	}
	if !deleted {
		return utils.NewNotFoundError("User not found")
	}

	s.logger.Info("User deleted", "id", id)
	return nil
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Failed to look up user", "error", err)
		return nil, utils.NewInternalError("Failed to log in").Wrap(err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}
	if !user.IsActive {
		return nil, utils.NewUnauthorizedError("User is inactive")
	}

	token, expiresAt, err := s.tokens.Sign(auth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to sign token", "error", err, "id", user.ID)
		return nil, utils.NewInternalError("Failed to log in").Wrap(err)
	}

	s.logger.Info("User logged in", "id", user.ID)
	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.logger.Debug("Admin bootstrap skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	_, err = s.Create(ctx, &models.CreateUserRequest{
		Name:     "Administrator",
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	return err
}

func (s *userService) find(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get user", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve user").Wrap(err)
	}
	if user == nil {
		return nil, utils.NewNotFoundError("User not found")
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func passwordError(err error) error {
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return utils.NewBadRequestError("password must be at least 6 characters")
	}
	return utils.NewInternalError("Failed to hash password").Wrap(err)
}
