package models

import "time"

// Fee types offered by the finance office.
var FeeTypes = []string{"Tuition", "Lab Fee", "Library Fee", "Registration", "Examination", "Hostel", "Transport", "Other"}

// Recurring periods.
var RecurringPeriods = []string{"monthly", "quarterly", "semester", "annual"}

// Fee is a charge definition scoped to a department.
type Fee struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Amount          float64   `json:"amount"`
	Department      string    `json:"department"`
	Description     string    `json:"description,omitempty"`
	DueDate         string    `json:"dueDate,omitempty"`
	IsRecurring     bool      `json:"isRecurring"`
	RecurringPeriod string    `json:"recurringPeriod,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FeeFilter narrows and orders fee listings.
type FeeFilter struct {
	Search     string
	Department string
	Type       string
	SortBy     string
	SortOrder  string
}
