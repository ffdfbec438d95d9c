package model

import "time"

type LicenseStatus string

const (
	LicenseStatusActive    LicenseStatus = "active"
	LicenseStatusInactive  LicenseStatus = "inactive"
	LicenseStatusSuspended LicenseStatus = "suspended"
)

func (s LicenseStatus) Valid() bool {
	switch s {
	case LicenseStatusActive, LicenseStatusInactive, LicenseStatusSuspended:
		return true
	}
	return false
}

type License struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	Name      string        `json:"name"`
	Vendor    string        `json:"vendor"`
	Status    LicenseStatus `json:"status"`
	Seats     int           `json:"seats"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	CreatedAt time.Time     `json:"created_at"`
}
