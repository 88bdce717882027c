package account

import (
	"time"

	"github.com/google/uuid"
)

type Government struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Password     string    `json:"-" db:"password"`
	ProvinceID   string    `json:"province_id" db:"province_id"`
	ProvinceName string    `json:"province_name" db:"province_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type School struct {
	ID           uuid.UUID `json:"id" db:"id"`
	NPSN         string    `json:"npsn" db:"npsn"`
	Name         string    `json:"name" db:"name"`
	Password     string    `json:"-" db:"password"`
	GovernmentID uuid.UUID `json:"government_id" db:"government_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Student struct {
	ID            uuid.UUID `json:"id" db:"id"`
	StudentNumber string    `json:"student_number" db:"student_number"`
	Name          string    `json:"name" db:"name"`
	Class         string    `json:"class" db:"class"`
	Grade         int       `json:"grade" db:"grade"`
	Password      string    `json:"-" db:"password"`
	SchoolID      uuid.UUID `json:"school_id" db:"school_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
