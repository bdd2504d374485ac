package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"gramseva/pkg/platform/sentinel"
)

// PostgresStore persists the catalog in the services table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListActive(ctx context.Context, limit int) ([]Service, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, category, fees, processing_time,
		       required_documents, is_active, created_at, updated_at
		FROM services
		WHERE is_active = TRUE
		ORDER BY name
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Service, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, category, fees, processing_time,
		       required_documents, is_active, created_at, updated_at
		FROM services
		WHERE id = $1`,
		id,
	)
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Service{}, fmt.Errorf("service %s: %w", id, sentinel.ErrNotFound)
	}
	return svc, err
}

func (s *PostgresStore) Save(ctx context.Context, service Service) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO services (id, name, description, category, fees,
		                      processing_time, required_documents,
		                      is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		service.ID, service.Name, service.Description, service.Category,
		service.Fees, service.ProcessingTime, pq.Array(service.RequiredDocuments),
		service.IsActive, service.CreatedAt, service.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("service %s: %w", service.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("save service: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, service Service) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE services
		SET name = $2, description = $3, category = $4, fees = $5,
		    processing_time = $6, required_documents = $7,
		    is_active = $8, updated_at = $9
		WHERE id = $1`,
		service.ID, service.Name, service.Description, service.Category,
		service.Fees, service.ProcessingTime, pq.Array(service.RequiredDocuments),
		service.IsActive, service.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("service %s: %w", service.ID, sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (Service, error) {
	var svc Service
	err := row.Scan(
		&svc.ID, &svc.Name, &svc.Description, &svc.Category, &svc.Fees,
		&svc.ProcessingTime, pq.Array(&svc.RequiredDocuments),
		&svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt,
	)
	if err != nil {
		return Service{}, err
	}
	return svc, nil
}
