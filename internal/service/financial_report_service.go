package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/eduflow-api/internal/models"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
	"github.com/noah-isme/eduflow-api/pkg/export"
)

type paymentSource interface {
	All(ctx context.Context) ([]models.Payment, error)
}

type feeSource interface {
	All(ctx context.Context) ([]models.Fee, error)
}

// FinancialReportService builds the financial reports from the stored ledger.
type FinancialReportService struct {
	payments paymentSource
	fees     feeSource
	students studentLister
	exporter *export.JSONExporter
	topN     int
	logger   *zap.Logger
	now      func() time.Time
}

// NewFinancialReportService constructs the report builder. topN bounds ranked
// chart series and falls back to DefaultTopN.
func NewFinancialReportService(payments paymentSource, fees feeSource, students studentLister, topN int, logger *zap.Logger) *FinancialReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &FinancialReportService{
		payments: payments,
		fees:     fees,
		students: students,
		exporter: export.NewJSONExporter(),
		topN:     topN,
		logger:   logger,
		now:      time.Now,
	}
}

// NormalizeReportFilter fills defaults and rejects unknown report types or
// breakdowns.
func NormalizeReportFilter(filter models.ReportFilter) (models.ReportFilter, error) {
	if filter.ReportType == "" {
		filter.ReportType = models.ReportTypeRevenue
	}
	if filter.DateRange == "" {
		filter.DateRange = models.DateRangeLast6Months
	}
	if filter.Breakdown == "" {
		filter.Breakdown = models.BreakdownMonthly
	}
	switch filter.ReportType {
	case models.ReportTypeRevenue, models.ReportTypePayments, models.ReportTypeOutstanding, models.ReportTypeDepartment, models.ReportTypeStudent:
	default:
		return filter, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report type %q", filter.ReportType))
	}
	switch filter.Breakdown {
	case models.BreakdownDaily, models.BreakdownWeekly, models.BreakdownMonthly, models.BreakdownQuarterly:
	default:
		return filter, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported breakdown %q", filter.Breakdown))
	}
	if filter.PaymentMethod != "" && !containsString(models.PaymentMethods, filter.PaymentMethod) {
		return filter, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported payment method %q", filter.PaymentMethod))
	}
	return filter, nil
}

// Generate runs one report. Payments are narrowed by date range, then by the
// paying student's department, then by method.
func (s *FinancialReportService) Generate(ctx context.Context, filter models.ReportFilter) (*models.FinancialReport, error) {
	filter, err := NormalizeReportFilter(filter)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	window, err := ResolveDateRange(filter.DateRange, now, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.All(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load payments")
	}
	students, err := s.students.All(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load students")
	}

	filtered, skipped := FilterPaymentsByRange(payments, window)
	byID := indexStudents(students)
	if filter.Department != "" {
		filtered = filterPayments(filtered, func(p models.Payment) bool {
			st, ok := byID[p.StudentID]
			return ok && st.Department == filter.Department
		})
		students = filterStudents(students, filter.Department)
	}
	if filter.PaymentMethod != "" {
		filtered = filterPayments(filtered, func(p models.Payment) bool { return p.Method == filter.PaymentMethod })
	}

	report := &models.FinancialReport{
		ReportType:  filter.ReportType,
		Filters:     filter,
		Range:       window,
		GeneratedAt: now,
		Skipped:     skipped,
	}

	switch filter.ReportType {
	case models.ReportTypeRevenue:
		s.revenueReport(report, filtered, filter.Breakdown)
	case models.ReportTypePayments:
		s.paymentsReport(report, filtered)
	case models.ReportTypeOutstanding:
		fees, err := s.fees.All(ctx)
		if err != nil {
			return nil, storageError(err, "failed to load fees")
		}
		rows, summary := OutstandingBalances(fees, filtered, students)
		report.Summary = summary
		report.ChartData = TopN(rows, s.topN)
		report.TableData = rows
	case models.ReportTypeDepartment:
		s.departmentReport(report, filtered, byID)
	case models.ReportTypeStudent:
		s.studentReport(report, filtered, students)
	}

	if skipped > 0 {
		s.logger.Warn("payments skipped for unparseable date", zap.Int("skipped", skipped), zap.String("report_type", string(filter.ReportType)))
	}
	return report, nil
}

// Export renders the report as the JSON download document.
func (s *FinancialReportService) Export(ctx context.Context, filter models.ReportFilter) (*FileExport, error) {
	report, err := s.Generate(ctx, filter)
	if err != nil {
		return nil, err
	}
	body, err := s.exporter.Render(models.ReportExportDocument{
		ReportType:  report.ReportType,
		GeneratedAt: report.GeneratedAt,
		Filters:     report.Filters,
		Summary:     report.Summary,
		Data:        report.TableData,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report export")
	}
	return &FileExport{
		Filename:    fmt.Sprintf("financial_report_%s_%s.json", report.ReportType, report.GeneratedAt.Format(dateLayout)),
		ContentType: s.exporter.ContentType(),
		Body:        body,
	}, nil
}

func (s *FinancialReportService) revenueReport(report *models.FinancialReport, payments []models.Payment, breakdown models.Breakdown) {
	total := SumPayments(payments)
	completed := SumPayments(filterPayments(payments, func(p models.Payment) bool {
		return p.Status == models.PaymentStatusCompleted
	}))
	average := 0.0
	if len(payments) > 0 {
		average = roundMoney(total / float64(len(payments)))
	}
	chart, _ := BucketPayments(payments, breakdown)
	report.Summary = models.RevenueSummary{
		TotalRevenue:       total,
		CompletedRevenue:   completed,
		PendingRevenue:     roundMoney(total - completed),
		TotalTransactions:  len(payments),
		AverageTransaction: average,
	}
	report.ChartData = chart
	report.TableData = paymentRows(payments, false)
}

func (s *FinancialReportService) paymentsReport(report *models.FinancialReport, payments []models.Payment) {
	methods := BreakdownPaymentsByMethod(payments)
	summary := models.PaymentAnalysisSummary{TotalMethods: len(methods), MostUsedMethod: "N/A"}
	if len(methods) > 0 {
		summary.MostUsedMethod = methods[0].Category
	}
	for _, p := range payments {
		switch p.Status {
		case models.PaymentStatusCompleted:
			summary.CompletedPayments++
		case models.PaymentStatusPending:
			summary.PendingPayments++
		}
	}
	report.Summary = summary
	report.ChartData = WithPercentages(methods)
	report.TableData = paymentRows(payments, true)
}

func (s *FinancialReportService) departmentReport(report *models.FinancialReport, payments []models.Payment, students map[string]models.Student) {
	rows := DepartmentRevenues(payments, students)
	summary := models.DepartmentSummary{TotalDepartments: len(rows), TopDepartment: "N/A"}
	if len(rows) > 0 {
		summary.TopDepartment = rows[0].Department
	}
	for _, r := range rows {
		summary.TotalTransactions += r.Transactions
	}
	summary.TotalRevenue = SumPayments(payments)
	report.Summary = summary
	report.ChartData = rows
	report.TableData = rows
}

func (s *FinancialReportService) studentReport(report *models.FinancialReport, payments []models.Payment, students []models.Student) {
	rows := StudentPaymentSummaries(payments, students)
	summary := models.StudentReportSummary{TotalStudents: len(rows), TopPayingStudent: "N/A"}
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(decimal.NewFromFloat(r.TotalPaid))
	}
	summary.TotalRevenue = total.InexactFloat64()
	if len(rows) > 0 {
		summary.AveragePerStudent = roundMoney(summary.TotalRevenue / float64(len(rows)))
		summary.TopPayingStudent = rows[0].StudentName
	}
	report.Summary = summary
	report.ChartData = TopN(rows, s.topN)
	report.TableData = rows
}

func paymentRows(payments []models.Payment, withTransaction bool) []models.PaymentRow {
	rows := make([]models.PaymentRow, 0, len(payments))
	for _, p := range payments {
		row := models.PaymentRow{
			Date:    p.Date,
			Student: p.StudentName,
			Amount:  p.Amount,
			Method:  p.Method,
			Status:  p.Status,
		}
		if withTransaction {
			row.TransactionID = p.TransactionID
		}
		rows = append(rows, row)
	}
	return rows
}

func filterPayments(payments []models.Payment, keep func(models.Payment) bool) []models.Payment {
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func filterStudents(students []models.Student, department string) []models.Student {
	out := make([]models.Student, 0, len(students))
	for _, st := range students {
		if st.Department == department {
			out = append(out, st)
		}
	}
	return out
}

// ReportDataset flattens a report's table into rows for CSV or PDF rendering.
func ReportDataset(report *models.FinancialReport) (export.Dataset, string) {
	title := reportTitle(report.ReportType)
	money := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

	switch rows := report.TableData.(type) {
	case []models.PaymentRow:
		headers := []string{"Date", "Student", "Amount", "Method", "Status"}
		if report.ReportType == models.ReportTypePayments {
			headers = append(headers, "Transaction ID")
		}
		data := make([]map[string]string, 0, len(rows))
		for _, r := range rows {
			data = append(data, map[string]string{
				"Date": r.Date, "Student": r.Student, "Amount": money(r.Amount),
				"Method": r.Method, "Status": string(r.Status), "Transaction ID": r.TransactionID,
			})
		}
		return export.Dataset{Headers: headers, Rows: data}, title
	case []models.StudentOutstanding:
		data := make([]map[string]string, 0, len(rows))
		for _, r := range rows {
			data = append(data, map[string]string{
				"Student": r.StudentName, "Department": r.Department, "Total Fees": money(r.TotalFees),
				"Total Paid": money(r.TotalPaid), "Outstanding": money(r.Outstanding),
			})
		}
		return export.Dataset{Headers: []string{"Student", "Department", "Total Fees", "Total Paid", "Outstanding"}, Rows: data}, title
	case []models.DepartmentRevenue:
		data := make([]map[string]string, 0, len(rows))
		for _, r := range rows {
			data = append(data, map[string]string{
				"Department": r.Department, "Revenue": money(r.Revenue), "Transactions": strconv.Itoa(r.Transactions),
				"Students": strconv.Itoa(r.Students), "Average / Student": money(r.AveragePerStudent),
			})
		}
		return export.Dataset{Headers: []string{"Department", "Revenue", "Transactions", "Students", "Average / Student"}, Rows: data}, title
	case []models.StudentPaymentSummary:
		data := make([]map[string]string, 0, len(rows))
		for _, r := range rows {
			data = append(data, map[string]string{
				"Student": r.StudentName, "Department": r.Department, "Total Paid": money(r.TotalPaid),
				"Transactions": strconv.Itoa(r.TransactionCount), "Last Payment": r.LastPayment,
			})
		}
		return export.Dataset{Headers: []string{"Student", "Department", "Total Paid", "Transactions", "Last Payment"}, Rows: data}, title
	default:
		return export.Dataset{Headers: []string{"Report"}}, title
	}
}

func reportTitle(t models.ReportType) string {
	switch t {
	case models.ReportTypePayments:
		return "Payment Analysis"
	case models.ReportTypeOutstanding:
		return "Outstanding Balances"
	case models.ReportTypeDepartment:
		return "Department Breakdown"
	case models.ReportTypeStudent:
		return "Student Financial Summary"
	default:
		return "Revenue Report"
	}
}
