package services

import (
	"context"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/models"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
)

// Caller is the authenticated user a service acts on behalf of.
type Caller struct {
	UserID string
	Role   models.Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

type ProcessService interface {
	FindAll(ctx context.Context) ([]models.Process, error)
	FindByUser(ctx context.Context, userID string) ([]models.Process, error)
	// FindOneWithPermission returns the process when caller owns it or is an admin.
	FindOneWithPermission(ctx context.Context, id string, caller Caller) (*models.Process, error)
}

type processService struct {
	processes repository.ProcessRepository
	users     repository.UserRepository
	logger    *utils.Logger
}

func NewProcessService(processes repository.ProcessRepository, users repository.UserRepository, logger *utils.Logger) ProcessService {
	return &processService{
		processes: processes,
		users:     users,
		logger:    logger,
	}
}

func (s *processService) FindAll(ctx context.Context) ([]models.Process, error) {
	processes, err := s.processes.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list processes", "error", err)
		return nil, utils.NewInternalError("Failed to retrieve processes").Wrap(err)
	}
	return nonNil(processes), nil
}

func (s *processService) FindByUser(ctx context.Context, userID string) ([]models.Process, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to get user", "error", err, "user_id", userID)
		return nil, utils.NewInternalError("Failed to retrieve user").Wrap(err)
	}
	if user == nil {
		return nil, utils.NewNotFoundError("User not found")
	}

	processes, err := s.processes.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list processes", "error", err, "user_id", userID)
		return nil, utils.NewInternalError("Failed to retrieve processes").Wrap(err)
	}
	return nonNil(processes), nil
}

func (s *processService) FindOneWithPermission(ctx context.Context, id string, caller Caller) (*models.Process, error) {
	process, err := s.processes.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get process", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve process").Wrap(err)
	}
	if process == nil {
		return nil, utils.NewNotFoundError("Process not found")
	}

	if !caller.IsAdmin() && process.UserID != caller.UserID {
		s.logger.Warn("Process access denied", "id", id, "user_id", caller.UserID)
		return nil, utils.NewForbiddenError("You do not have access to this process")
	}

	return process, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
