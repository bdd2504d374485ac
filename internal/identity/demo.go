package identity

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DemoUserID is the fixed synthetic identity used by stand-in sessions when
// the backing store is unreachable or unconfigured.
const DemoUserID = "demo-user-id"

var demoSeededAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// DemoAccount is one of the seeded portal accounts used in demo mode and by
// the devseed tool.
type DemoAccount struct {
	Profile  Profile
	Password string
}

// DemoAccounts returns the three seeded accounts, one per role.
func DemoAccounts() []DemoAccount {
	return []DemoAccount{
		{
			Password: "admin123",
			Profile: Profile{
				ID:        "demo-officer-id",
				FullName:  "Admin Officer",
				Email:     "admin@gp.gov.in",
				Role:      RoleOfficer,
				CreatedAt: demoSeededAt,
				UpdatedAt: demoSeededAt,
			},
		},
		{
			Password: "staff123",
			Profile: Profile{
				ID:        "demo-staff-id",
				FullName:  "Staff Member",
				Email:     "staff@gp.gov.in",
				Role:      RoleStaff,
				CreatedAt: demoSeededAt,
				UpdatedAt: demoSeededAt,
			},
		},
		{
			Password: "citizen123",
			Profile: Profile{
				ID:        "demo-citizen-id",
				FullName:  "John Citizen",
				Email:     "citizen@gp.gov.in",
				Role:      RoleCitizen,
				CreatedAt: demoSeededAt,
				UpdatedAt: demoSeededAt,
			},
		},
	}
}

// SeedDemoStores loads the demo accounts into memory stores. Used once at
// startup when the portal runs without a configured database.
func SeedDemoStores(ctx context.Context, profiles ProfileStore, creds CredentialStore) error {
	for _, account := range DemoAccounts() {
		if err := profiles.Save(ctx, account.Profile); err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		err = creds.Save(ctx, Credentials{
			UserID:       account.Profile.ID,
			Email:        account.Profile.Email,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// DemoProfile is the stand-in profile attached to fallback sessions.
func DemoProfile(email string, now time.Time) Profile {
	return Profile{
		ID:        DemoUserID,
		FullName:  "Demo User",
		Email:     email,
		Role:      RoleCitizen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
