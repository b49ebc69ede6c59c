package models

import "time"

// ReportType selects a financial report.
type ReportType string

const (
	ReportTypeRevenue     ReportType = "revenue"
	ReportTypePayments    ReportType = "payments"
	ReportTypeOutstanding ReportType = "outstanding"
	ReportTypeDepartment  ReportType = "department"
	ReportTypeStudent     ReportType = "student"
)

// Breakdown is the time bucket granularity.
type Breakdown string

const (
	BreakdownDaily     Breakdown = "daily"
	BreakdownWeekly    Breakdown = "weekly"
	BreakdownMonthly   Breakdown = "monthly"
	BreakdownQuarterly Breakdown = "quarterly"
)

// DateRangeKey names a symbolic reporting window.
type DateRangeKey string

const (
	DateRangeLast3Months  DateRangeKey = "last3months"
	DateRangeLast6Months  DateRangeKey = "last6months"
	DateRangeLast12Months DateRangeKey = "last12months"
	DateRangeThisYear     DateRangeKey = "thisyear"
	DateRangeCustom       DateRangeKey = "custom"
)

// DateRange is the half-open interval [Start, End).
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the interval.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// RevenueBucket is one period of a revenue time series.
type RevenueBucket struct {
	Period       string  `json:"period"`
	Label        string  `json:"label,omitempty"`
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
}

// CategoryAmount is one slice of a categorical breakdown.
type CategoryAmount struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StudentOutstanding is the balance owed by one student.
type StudentOutstanding struct {
	StudentID   string  `json:"studentId"`
	StudentName string  `json:"studentName"`
	Department  string  `json:"department"`
	TotalFees   float64 `json:"totalFees"`
	TotalPaid   float64 `json:"totalPaid"`
	Outstanding float64 `json:"outstanding"`
}

// OutstandingSummary aggregates the retained outstanding list.
type OutstandingSummary struct {
	TotalOutstanding        float64 `json:"totalOutstanding"`
	StudentsWithOutstanding int     `json:"studentsWithOutstanding"`
	AverageOutstanding      float64 `json:"averageOutstanding"`
	LargestOutstanding      float64 `json:"largestOutstanding"`
}

// DepartmentRevenue aggregates payments by the paying student's department.
type DepartmentRevenue struct {
	Department        string  `json:"department"`
	Revenue           float64 `json:"revenue"`
	Transactions      int     `json:"transactions"`
	Students          int     `json:"students"`
	AveragePerStudent float64 `json:"averagePerStudent"`
}

// StudentPaymentSummary aggregates payments per student.
type StudentPaymentSummary struct {
	StudentID        string  `json:"studentId"`
	StudentName      string  `json:"studentName"`
	Department       string  `json:"department"`
	TotalPaid        float64 `json:"totalPaid"`
	TransactionCount int     `json:"transactionCount"`
	LastPayment      string  `json:"lastPayment,omitempty"`
}

// ReportFilter carries every report input. StartDate/EndDate apply to the
// custom range only and are inclusive calendar days.
type ReportFilter struct {
	ReportType    ReportType   `json:"reportType"`
	DateRange     DateRangeKey `json:"dateRange"`
	StartDate     string       `json:"startDate,omitempty"`
	EndDate       string       `json:"endDate,omitempty"`
	Department    string       `json:"department,omitempty"`
	PaymentMethod string       `json:"paymentMethod,omitempty"`
	Breakdown     Breakdown    `json:"breakdown"`
}

// PaymentRow is a payment line in report tables.
type PaymentRow struct {
	Date          string        `json:"date"`
	Student       string        `json:"student"`
	Amount        float64       `json:"amount"`
	Method        string        `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
}

// RevenueSummary heads the revenue report.
type RevenueSummary struct {
	TotalRevenue       float64 `json:"totalRevenue"`
	CompletedRevenue   float64 `json:"completedRevenue"`
	PendingRevenue     float64 `json:"pendingRevenue"`
	TotalTransactions  int     `json:"totalTransactions"`
	AverageTransaction float64 `json:"averageTransaction"`
}

// PaymentAnalysisSummary heads the payments report.
type PaymentAnalysisSummary struct {
	TotalMethods      int    `json:"totalMethods"`
	MostUsedMethod    string `json:"mostUsedMethod"`
	CompletedPayments int    `json:"completedPayments"`
	PendingPayments   int    `json:"pendingPayments"`
}

// DepartmentSummary heads the department report.
type DepartmentSummary struct {
	TotalDepartments  int     `json:"totalDepartments"`
	TopDepartment     string  `json:"topDepartment"`
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalTransactions int     `json:"totalTransactions"`
}

// StudentReportSummary heads the student report.
type StudentReportSummary struct {
	TotalStudents     int     `json:"totalStudents"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AveragePerStudent float64 `json:"averagePerStudent"`
	TopPayingStudent  string  `json:"topPayingStudent"`
}

// FinancialReport is one generated report. Summary, ChartData and TableData
// hold the type-specific shapes above. Skipped counts payments dropped for an
// unparseable date.
type FinancialReport struct {
	ReportType  ReportType   `json:"reportType"`
	Filters     ReportFilter `json:"filters"`
	Range       DateRange    `json:"range"`
	GeneratedAt time.Time    `json:"generatedAt"`
	Summary     interface{}  `json:"summary"`
	ChartData   interface{}  `json:"chartData"`
	TableData   interface{}  `json:"tableData"`
	Skipped     int          `json:"skipped"`
}

// ReportExportDocument is the JSON download of a report.
type ReportExportDocument struct {
	ReportType  ReportType   `json:"reportType"`
	GeneratedAt time.Time    `json:"generatedAt"`
	Filters     ReportFilter `json:"filters"`
	Summary     interface{}  `json:"summary"`
	Data        interface{}  `json:"data"`
}
