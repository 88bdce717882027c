package distribution

import (
	"time"

	"github.com/google/uuid"
)

// Distribution is one day's meal service at a school.
type Distribution struct {
	ID        uuid.UUID `json:"id"`
	SchoolID  uuid.UUID `json:"school_id"`
	ServedOn  time.Time `json:"served_on"`
	Portions  int       `json:"portions"`
	Menu      string    `json:"menu"`
	CreatedAt time.Time `json:"created_at"`
}

// Receipt records a student collecting a portion. ServedOn and Menu are
// copied from the distribution when listing.
type Receipt struct {
	ID             uuid.UUID `json:"id"`
	DistributionID uuid.UUID `json:"distribution_id"`
	StudentID      uuid.UUID `json:"-"`
	ServedOn       time.Time `json:"served_on"`
	Menu           string    `json:"menu"`
	ReceivedAt     time.Time `json:"received_at"`
}

type SchoolSummary struct {
	SchoolID      uuid.UUID `json:"school_id"`
	Name          string    `json:"name"`
	Distributions int       `json:"distributions"`
	Portions      int       `json:"portions"`
	Receipts      int       `json:"receipts"`
}

type ProvinceSummary struct {
	ProvinceID    string          `json:"province_id"`
	ProvinceName  string          `json:"province_name"`
	Distributions int             `json:"distributions"`
	Portions      int             `json:"portions"`
	Receipts      int             `json:"receipts"`
	Schools       []SchoolSummary `json:"schools,omitempty"`
}
