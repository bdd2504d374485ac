package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"gramseva/pkg/platform/sentinel"
)

const (
	pqUniqueViolation    = "23505"
	pqRecursivePolicyErr = "42P17"
)

// PostgresProfileStore persists profiles in PostgreSQL. Pure I/O; role checks
// and cache handling belong to the service.
type PostgresProfileStore struct {
	db *sql.DB
}

func NewPostgresProfileStore(db *sql.DB) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

func (s *PostgresProfileStore) Save(ctx context.Context, profile Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, email, phone, address, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Email,
		profile.Phone,
		profile.Address,
		string(profile.Role),
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", translatePQ(err))
	}
	return nil
}

func (s *PostgresProfileStore) Update(ctx context.Context, profile Profile) error {
	query := `
		UPDATE profiles
		SET full_name = $2, phone = $3, address = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Phone,
		profile.Address,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", translatePQ(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresProfileStore) FindByID(ctx context.Context, id string) (Profile, error) {
	query := `
		SELECT id, full_name, email, phone, address, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	var p Profile
	var role string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.FullName, &p.Email, &p.Phone, &p.Address, &role, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, sentinel.ErrNotFound
		}
		return Profile{}, fmt.Errorf("find profile by id: %w", translatePQ(err))
	}
	p.Role = Role(role)
	return p, nil
}

// PostgresCredentialStore persists password hashes.
type PostgresCredentialStore struct {
	db *sql.DB
}

func NewPostgresCredentialStore(db *sql.DB) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

func (s *PostgresCredentialStore) Save(ctx context.Context, creds Credentials) error {
	query := `
		INSERT INTO credentials (user_id, email, password_hash)
		VALUES ($1, lower($2), $3)
	`
	_, err := s.db.ExecContext(ctx, query, creds.UserID, creds.Email, creds.PasswordHash)
	if err != nil {
		return fmt.Errorf("save credentials: %w", translatePQ(err))
	}
	return nil
}

func (s *PostgresCredentialStore) FindByEmail(ctx context.Context, email string) (Credentials, error) {
	query := `
		SELECT user_id, email, password_hash
		FROM credentials
		WHERE email = lower($1)
	`
	var c Credentials
	err := s.db.QueryRowContext(ctx, query, email).Scan(&c.UserID, &c.Email, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Credentials{}, sentinel.ErrNotFound
		}
		return Credentials{}, fmt.Errorf("find credentials by email: %w", translatePQ(err))
	}
	return c, nil
}

// translatePQ maps driver errors onto sentinels so services never import pq.
// A recursive row-level-security policy surfaces as ErrPolicyDenied; the
// profile service substitutes a best-effort profile instead of failing the
// session.
func translatePQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return sentinel.ErrConflict
		case pqRecursivePolicyErr:
			return sentinel.ErrPolicyDenied
		}
	}
	return err
}
