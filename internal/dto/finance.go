package dto

import "github.com/noah-isme/eduflow-api/internal/models"

// FinanceDashboardResponse is the financial dashboard payload.
type FinanceDashboardResponse struct {
	TimeRange          string                  `json:"timeRange"`
	TotalRevenue       float64                 `json:"totalRevenue"`
	TotalFees          float64                 `json:"totalFees"`
	OutstandingBalance float64                 `json:"outstandingBalance"`
	TotalCollected     float64                 `json:"totalCollected"`
	TotalStudents      int                     `json:"totalStudents"`
	RecentTransactions []models.Payment        `json:"recentTransactions"`
	MonthlyRevenue     []models.RevenueBucket  `json:"monthlyRevenue"`
	PaymentMethods     []models.CategoryAmount `json:"paymentMethods"`
	DepartmentRevenue  []models.CategoryAmount `json:"departmentRevenue"`
	GeneratedAt        string                  `json:"generatedAt"`
}
