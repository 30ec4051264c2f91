package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/models"
	"github.com/jmoiron/sqlx"
)

type ProcessRepository interface {
	Create(ctx context.Context, p *models.Process) error
	// GetByID returns nil, nil when no process has that id.
	GetByID(ctx context.Context, id string) (*models.Process, error)
	List(ctx context.Context) ([]models.Process, error)
	ListByUser(ctx context.Context, userID string) ([]models.Process, error)
}

const processColumns = `id, name, type, status, process_text, analysis, analysis_raw, analysis_error,
		       additional_instructions, file_url, user_id, created_at, updated_at`

type processRepository struct {
	db *sqlx.DB
}

func NewProcessRepository(db *sqlx.DB) ProcessRepository {
	return &processRepository{db: db}
}

func (r *processRepository) Create(ctx context.Context, p *models.Process) error {
	query := `
		INSERT INTO processes (id, name, type, status, process_text, analysis, analysis_raw, analysis_error,
		                       additional_instructions, file_url, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Type,
		p.Status,
		p.ProcessText,
		p.Analysis,
		p.AnalysisRaw,
		p.AnalysisError,
		p.AdditionalInstructions,
		p.FileURL,
		p.UserID,
		p.CreatedAt,
		p.UpdatedAt,
	)

	return err
}

func (r *processRepository) GetByID(ctx context.Context, id string) (*models.Process, error) {
	var p models.Process
	query := `SELECT ` + processColumns + ` FROM processes WHERE id = $1`

	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *processRepository) List(ctx context.Context) ([]models.Process, error) {
	processes := []models.Process{}
	query := `SELECT ` + processColumns + ` FROM processes ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &processes, query); err != nil {
		return nil, err
	}
	return processes, nil
}

func (r *processRepository) ListByUser(ctx context.Context, userID string) ([]models.Process, error) {
	processes := []models.Process{}
	query := `SELECT ` + processColumns + ` FROM processes WHERE user_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &processes, query, userID); err != nil {
		return nil, err
	}
	return processes, nil
}
