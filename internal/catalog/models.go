package catalog

import "time"

// Category buckets services for browsing and stats.
type Category string

const (
	CategoryCertificates Category = "certificates"
	CategoryLicenses     Category = "licenses"
	CategoryPermits      Category = "permits"
	CategoryPayments     Category = "payments"
	CategoryUtilities    Category = "utilities"
)

// Valid reports whether the category is one of the known buckets.
func (c Category) Valid() bool {
	switch c {
	case CategoryCertificates, CategoryLicenses, CategoryPermits, CategoryPayments, CategoryUtilities:
		return true
	}
	return false
}

// Service is one offering in the panchayat catalog. Rows are never deleted;
// deactivation flips IsActive so historical applications keep their join.
type Service struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Category          Category  `json:"category"`
	Fees              float64   `json:"fees"`
	ProcessingTime    string    `json:"processing_time"`
	RequiredDocuments []string  `json:"required_documents"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateInput carries the fields an officer supplies when adding a service.
type CreateInput struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Category          Category `json:"category"`
	Fees              float64  `json:"fees"`
	ProcessingTime    string   `json:"processing_time"`
	RequiredDocuments []string `json:"required_documents"`
}

// Update carries partial edits; nil means leave the field as is.
type Update struct {
	Name              *string   `json:"name,omitempty"`
	Description       *string   `json:"description,omitempty"`
	Category          *Category `json:"category,omitempty"`
	Fees              *float64  `json:"fees,omitempty"`
	ProcessingTime    *string   `json:"processing_time,omitempty"`
	RequiredDocuments *[]string `json:"required_documents,omitempty"`
}
