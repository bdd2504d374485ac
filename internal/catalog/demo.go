package catalog

import (
	"context"
	"time"
)

var demoSeededAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// DemoServices returns the fixed catalog shown when the backing store is
// unreachable or unconfigured. IDs and timestamps are deterministic so demo
// sessions look the same on every visit.
func DemoServices() []Service {
	return []Service{
		{
			ID:                "demo-service-1",
			Name:              "Birth Certificate",
			Description:       "Registration of birth and issue of a certified birth certificate",
			Category:          CategoryCertificates,
			Fees:              0,
			ProcessingTime:    "7 days",
			RequiredDocuments: []string{"Hospital discharge summary", "Parent ID proof"},
			IsActive:          true,
			CreatedAt:         demoSeededAt,
			UpdatedAt:         demoSeededAt,
		},
		{
			ID:                "demo-service-2",
			Name:              "Caste Certificate",
			Description:       "Issue of a caste certificate for education and employment",
			Category:          CategoryCertificates,
			Fees:              0,
			ProcessingTime:    "10 days",
			RequiredDocuments: []string{"Ration card", "School leaving certificate"},
			IsActive:          true,
			CreatedAt:         demoSeededAt,
			UpdatedAt:         demoSeededAt,
		},
		{
			ID:                "demo-service-3",
			Name:              "Income Certificate",
			Description:       "Certification of annual household income",
			Category:          CategoryCertificates,
			Fees:              30,
			ProcessingTime:    "5 days",
			RequiredDocuments: []string{"Salary slips", "Ration card"},
			IsActive:          true,
			CreatedAt:         demoSeededAt,
			UpdatedAt:         demoSeededAt,
		},
		{
			ID:                "demo-service-4",
			Name:              "Water Connection",
			Description:       "New household water supply connection",
			Category:          CategoryUtilities,
			Fees:              500,
			ProcessingTime:    "21 days",
			RequiredDocuments: []string{"Property tax receipt", "ID proof"},
			IsActive:          true,
			CreatedAt:         demoSeededAt,
			UpdatedAt:         demoSeededAt,
		},
		{
			ID:                "demo-service-5",
			Name:              "Trade License",
			Description:       "License to run a shop or small business within panchayat limits",
			Category:          CategoryLicenses,
			Fees:              200,
			ProcessingTime:    "15 days",
			RequiredDocuments: []string{"Premises ownership or rent deed", "ID proof"},
			IsActive:          true,
			CreatedAt:         demoSeededAt,
			UpdatedAt:         demoSeededAt,
		},
	}
}

// SeedDemoStore loads the demo catalog into a store. Used at startup in demo
// mode and by the devseed tool.
func SeedDemoStore(ctx context.Context, store Store) error {
	for _, svc := range DemoServices() {
		if err := store.Save(ctx, svc); err != nil {
			return err
		}
	}
	return nil
}
