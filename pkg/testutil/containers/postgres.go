//go:build integration

// Package containers spins up throwaway backing services for integration
// tests.
package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id         TEXT PRIMARY KEY,
	full_name  TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	phone      TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL DEFAULT 'citizen',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS credentials (
	user_id       TEXT PRIMARY KEY REFERENCES profiles(id),
	email         TEXT NOT NULL UNIQUE,
	password_hash BYTEA NOT NULL
);

CREATE TABLE IF NOT EXISTS services (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	description          TEXT NOT NULL,
	category             TEXT NOT NULL,
	fees                 NUMERIC NOT NULL DEFAULT 0,
	processing_time TEXT NOT NULL,
	required_documents   TEXT[] NOT NULL DEFAULT '{}',
	is_active            BOOLEAN NOT NULL DEFAULT TRUE,
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS applications (
	id               TEXT PRIMARY KEY,
	service_id       TEXT NOT NULL REFERENCES services(id),
	citizen_id       TEXT NOT NULL REFERENCES profiles(id),
	status           TEXT NOT NULL DEFAULT 'pending',
	application_data JSONB,
	documents        TEXT[] NOT NULL DEFAULT '{}',
	remarks          TEXT,
	assigned_to      TEXT,
	submitted_at     TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL,
	completed_at     TIMESTAMPTZ
);
`

// StartPostgres runs a disposable PostgreSQL with the portal schema applied
// and returns an open pool. The container is torn down with the test.
func StartPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("gramseva"),
		tcpostgres.WithUsername("gramseva"),
		tcpostgres.WithPassword("gramseva"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.ExecContext(ctx, schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}
