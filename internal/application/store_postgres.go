package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gramseva/internal/identity"
	"gramseva/pkg/platform/sentinel"
)

// PostgresStore persists applications, joining in service and applicant
// summaries so listings render without extra round trips.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectApplication = `
	SELECT a.id, a.service_id, a.citizen_id, a.status, a.application_data,
	       a.documents, a.remarks, a.assigned_to, a.submitted_at,
	       a.updated_at, a.completed_at,
	       s.id, s.name, s.category, s.fees,
	       p.id, p.full_name, p.email
	FROM applications a
	JOIN services s ON s.id = a.service_id
	JOIN profiles p ON p.id = a.citizen_id`

func (s *PostgresStore) List(ctx context.Context, query ListQuery) ([]Application, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch query.Role {
	case identity.RoleOfficer:
		rows, err = s.db.QueryContext(ctx,
			selectApplication+` ORDER BY a.submitted_at DESC LIMIT $1`,
			query.Limit,
		)
	case identity.RoleStaff:
		rows, err = s.db.QueryContext(ctx,
			selectApplication+` WHERE a.assigned_to = $1 OR a.assigned_to IS NULL
			ORDER BY a.submitted_at DESC LIMIT $2`,
			query.UserID, query.Limit,
		)
	default:
		rows, err = s.db.QueryContext(ctx,
			selectApplication+` WHERE a.citizen_id = $1
			ORDER BY a.submitted_at DESC LIMIT $2`,
			query.UserID, query.Limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Application, error) {
	row := s.db.QueryRowContext(ctx, selectApplication+` WHERE a.id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, fmt.Errorf("application %s: %w", id, sentinel.ErrNotFound)
	}
	return app, err
}

func (s *PostgresStore) Save(ctx context.Context, app Application) error {
	data, err := json.Marshal(app.ApplicationData)
	if err != nil {
		return fmt.Errorf("marshal application data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (id, service_id, citizen_id, status,
		                          application_data, documents, remarks,
		                          assigned_to, submitted_at, updated_at,
		                          completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		app.ID, app.ServiceID, app.CitizenID, app.Status,
		data, pq.Array(app.Documents), nullString(app.Remarks),
		nullString(app.AssignedTo), app.SubmittedAt, app.UpdatedAt,
		nullTime(app.CompletedAt),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("application %s: %w", app.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("save application: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, app Application) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, remarks = $3, assigned_to = $4, updated_at = $5,
		    completed_at = $6
		WHERE id = $1`,
		app.ID, app.Status, nullString(app.Remarks), nullString(app.AssignedTo),
		app.UpdatedAt, nullTime(app.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("application %s: %w", app.ID, sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var (
		app        Application
		data       []byte
		remarks    sql.NullString
		assignedTo sql.NullString
		completed  sql.NullTime
		service    ServiceSummary
		citizen    CitizenSummary
	)
	err := row.Scan(
		&app.ID, &app.ServiceID, &app.CitizenID, &app.Status, &data,
		pq.Array(&app.Documents), &remarks, &assignedTo, &app.SubmittedAt,
		&app.UpdatedAt, &completed,
		&service.ID, &service.Name, &service.Category, &service.Fees,
		&citizen.ID, &citizen.FullName, &citizen.Email,
	)
	if err != nil {
		return Application{}, err
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &app.ApplicationData); err != nil {
			return Application{}, fmt.Errorf("unmarshal application data: %w", err)
		}
	}
	app.Remarks = remarks.String
	app.AssignedTo = assignedTo.String
	if completed.Valid {
		t := completed.Time
		app.CompletedAt = &t
	}
	app.Service = &service
	app.Citizen = &citizen
	return app, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
