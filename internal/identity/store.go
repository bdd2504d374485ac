package identity

import "context"

// ProfileStore persists user profiles. Implementations return
// sentinel.ErrNotFound for missing rows and sentinel.ErrConflict for
// duplicate emails.
type ProfileStore interface {
	Save(ctx context.Context, profile Profile) error
	Update(ctx context.Context, profile Profile) error
	FindByID(ctx context.Context, id string) (Profile, error)
}

// CredentialStore persists password hashes keyed by email.
type CredentialStore interface {
	Save(ctx context.Context, creds Credentials) error
	FindByEmail(ctx context.Context, email string) (Credentials, error)
}

// SessionStore tracks live sessions so logout can revoke them.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	FindByID(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
