package mq

import "time"

// ContractExpiringPayload is published by the expiry scanner for active
// contracts whose end date falls inside the warning window.
type ContractExpiringPayload struct {
	ContractID int64     `json:"contract_id"`
	UserID     int64     `json:"user_id"`
	Number     string    `json:"number"`
	Title      string    `json:"title"`
	EndDate    time.Time `json:"end_date"`
}

// LicenseExpiringPayload is published by the expiry scanner for active
// licenses whose end date falls inside the warning window.
type LicenseExpiringPayload struct {
	LicenseID int64     `json:"license_id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Vendor    string    `json:"vendor"`
	EndDate   time.Time `json:"end_date"`
}
