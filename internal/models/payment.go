package models

import "time"

// PaymentStatus enumerates payment lifecycle states.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusRefunded  PaymentStatus = "Refunded"
)

// PaymentMethods accepted at the cashier.
var PaymentMethods = []string{"Credit Card", "Debit Card", "Bank Transfer", "Cash", "Check", "Online Payment", "Mobile Payment"}

// Payment records money received from a student. Date is a calendar day
// formatted as YYYY-MM-DD.
type Payment struct {
	ID            string        `json:"id"`
	StudentID     string        `json:"studentId"`
	StudentName   string        `json:"studentName"`
	FeeID         string        `json:"feeId,omitempty"`
	Amount        float64       `json:"amount"`
	Method        string        `json:"method"`
	Status        PaymentStatus `json:"status"`
	Date          string        `json:"date"`
	TransactionID string        `json:"transactionId"`
	ReceiptNumber string        `json:"receiptNumber"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	RefundedAt    *time.Time    `json:"refundedAt,omitempty"`
}

// PaymentFilter narrows payment listings. StartDate/EndDate are inclusive
// calendar days.
type PaymentFilter struct {
	Search    string
	Status    PaymentStatus
	Method    string
	StartDate string
	EndDate   string
}

// PaymentStats summarises the payment ledger.
type PaymentStats struct {
	TotalCollected float64 `json:"totalCollected"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	Failed         int     `json:"failed"`
	Refunded       int     `json:"refunded"`
	Total          int     `json:"total"`
}
