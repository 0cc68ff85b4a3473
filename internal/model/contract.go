package model

import "time"

// Contract binds an operator to a procurement unit and carries its rule set.
type Contract struct {
	ID                string         `json:"id"`
	OperatorID        string         `json:"operatorId"`
	ProcurementUnitID string         `json:"procurementUnitId"`
	Description       string         `json:"description,omitempty"`
	StartDate         time.Time      `json:"startDate"`
	EndDate           time.Time      `json:"endDate"`
	Rules             []ContractRule `json:"rules"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// Inspection is a review period over which weekly execution requirements apply.
type Inspection struct {
	ID         string    `json:"id"`
	OperatorID string    `json:"operatorId"`
	Season     string    `json:"season,omitempty"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	MaxDate    time.Time `json:"maxDate,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LastDate returns the last date requirements may be generated for.
// MaxDate wins when set, otherwise EndDate.
func (i Inspection) LastDate() time.Time {
	if !i.MaxDate.IsZero() {
		return i.MaxDate
	}
	return i.EndDate
}
