package model

import "time"

type ContractStatus string

const (
	ContractStatusDraft      ContractStatus = "draft"
	ContractStatusActive     ContractStatus = "active"
	ContractStatusExpired    ContractStatus = "expired"
	ContractStatusTerminated ContractStatus = "terminated"
	ContractStatusRenewed    ContractStatus = "renewed"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusActive, ContractStatusExpired,
		ContractStatusTerminated, ContractStatusRenewed:
		return true
	}
	return false
}

// contractTransitions lists the allowed status moves. Terminated and
// renewed are terminal; an expired contract may still be renewed.
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractStatusDraft:   {ContractStatusActive},
	ContractStatusActive:  {ContractStatusExpired, ContractStatusTerminated, ContractStatusRenewed},
	ContractStatusExpired: {ContractStatusRenewed},
}

// CanTransition reports whether moving from one status to another is allowed.
func (s ContractStatus) CanTransition(to ContractStatus) bool {
	for _, allowed := range contractTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Contract struct {
	ID           int64          `json:"id"`
	Number       string         `json:"number"`
	UserID       int64          `json:"user_id"`
	Title        string         `json:"title"`
	Counterparty string         `json:"counterparty"`
	Status       ContractStatus `json:"status"`
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
	ValueCents   int64          `json:"value_cents"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
