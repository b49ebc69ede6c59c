package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/eduflow-api/internal/models"
)

// DefaultTopN is the number of entries charted by ranked reports.
const DefaultTopN = 10

const unknownDepartment = "Unknown"

var hundred = decimal.NewFromInt(100)

// BucketKey returns the period key of date for breakdown. Weekly keys are the
// Sunday that starts the week.
func BucketKey(date time.Time, breakdown models.Breakdown) string {
	switch breakdown {
	case models.BreakdownDaily:
		return date.Format(dateLayout)
	case models.BreakdownWeekly:
		return date.AddDate(0, 0, -int(date.Weekday())).Format(dateLayout)
	case models.BreakdownQuarterly:
		return fmt.Sprintf("%04d-Q%d", date.Year(), (int(date.Month())-1)/3+1)
	default:
		return date.Format("2006-01")
	}
}

// BucketPayments groups payments into period buckets sorted by key. Only
// periods with at least one payment are emitted. The second result counts
// payments skipped for an unparseable date.
func BucketPayments(payments []models.Payment, breakdown models.Breakdown) ([]models.RevenueBucket, int) {
	revenue := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	skipped := 0
	for _, p := range payments {
		date, ok := ParsePaymentDate(p.Date)
		if !ok {
			skipped++
			continue
		}
		key := BucketKey(date, breakdown)
		revenue[key] = revenue[key].Add(decimal.NewFromFloat(p.Amount))
		counts[key]++
	}

	keys := make([]string, 0, len(revenue))
	for k := range revenue {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buckets := make([]models.RevenueBucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, models.RevenueBucket{
			Period:       k,
			Revenue:      revenue[k].InexactFloat64(),
			Transactions: counts[k],
		})
	}
	return buckets, skipped
}

// MonthlyRevenueWindow returns a continuous series of the last months months
// ending with now's month, with zero buckets for months without payments.
func MonthlyRevenueWindow(payments []models.Payment, now time.Time, months int) []models.RevenueBucket {
	if months <= 0 {
		months = 6
	}
	now = now.UTC()
	series := make([]models.RevenueBucket, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		month := time.Date(now.Year(), now.Month()-time.Month(months-1-i), 1, 0, 0, 0, 0, time.UTC)
		key := month.Format("2006-01")
		series[i] = models.RevenueBucket{Period: key, Label: month.Format("Jan 06")}
		index[key] = i
	}

	totals := make([]decimal.Decimal, months)
	for _, p := range payments {
		date, ok := ParsePaymentDate(p.Date)
		if !ok {
			continue
		}
		i, ok := index[date.Format("2006-01")]
		if !ok {
			continue
		}
		totals[i] = totals[i].Add(decimal.NewFromFloat(p.Amount))
		series[i].Transactions++
	}
	for i := range series {
		series[i].Revenue = totals[i].InexactFloat64()
	}
	return series
}

// BreakdownPaymentsByMethod sums payment amounts per method.
func BreakdownPaymentsByMethod(payments []models.Payment) []models.CategoryAmount {
	return breakdown(payments, func(p models.Payment) (string, float64) { return p.Method, p.Amount })
}

// BreakdownPaymentsByStatus sums payment amounts per status.
func BreakdownPaymentsByStatus(payments []models.Payment) []models.CategoryAmount {
	return breakdown(payments, func(p models.Payment) (string, float64) { return string(p.Status), p.Amount })
}

// BreakdownFeesByDepartment sums fee amounts per department.
func BreakdownFeesByDepartment(fees []models.Fee) []models.CategoryAmount {
	return breakdown(fees, func(f models.Fee) (string, float64) { return f.Department, f.Amount })
}

// breakdown partitions items by category. Categories are ordered by amount
// descending, then name.
func breakdown[T any](items []T, categorize func(T) (string, float64)) []models.CategoryAmount {
	amounts := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, item := range items {
		category, amount := categorize(item)
		amounts[category] = amounts[category].Add(decimal.NewFromFloat(amount))
		counts[category]++
	}

	out := make([]models.CategoryAmount, 0, len(amounts))
	for category, amount := range amounts {
		out = append(out, models.CategoryAmount{Category: category, Amount: amount.InexactFloat64(), Count: counts[category]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// WithPercentages fills Percentage as the share of the summed amount,
// rounded to one decimal. A zero total leaves every percentage at zero.
func WithPercentages(items []models.CategoryAmount) []models.CategoryAmount {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Amount))
	}
	out := make([]models.CategoryAmount, len(items))
	copy(out, items)
	if total.IsZero() {
		return out
	}
	for i := range out {
		out[i].Percentage = decimal.NewFromFloat(out[i].Amount).Div(total).Mul(hundred).Round(1).InexactFloat64()
	}
	return out
}

// OutstandingBalances charges each student the sum of the fees of their
// department, subtracts what they paid and keeps balances above zero, ranked
// largest first. The summary covers only the retained students.
func OutstandingBalances(fees []models.Fee, payments []models.Payment, students []models.Student) ([]models.StudentOutstanding, models.OutstandingSummary) {
	feesByDept := make(map[string]decimal.Decimal)
	for _, f := range fees {
		feesByDept[f.Department] = feesByDept[f.Department].Add(decimal.NewFromFloat(f.Amount))
	}
	paidByStudent := make(map[string]decimal.Decimal)
	for _, p := range payments {
		paidByStudent[p.StudentID] = paidByStudent[p.StudentID].Add(decimal.NewFromFloat(p.Amount))
	}

	rows := make([]models.StudentOutstanding, 0, len(students))
	total := decimal.Zero
	largest := decimal.Zero
	for _, s := range students {
		owed := feesByDept[s.Department]
		paid := paidByStudent[s.ID]
		outstanding := owed.Sub(paid)
		if !outstanding.IsPositive() {
			continue
		}
		total = total.Add(outstanding)
		if outstanding.GreaterThan(largest) {
			largest = outstanding
		}
		rows = append(rows, models.StudentOutstanding{
			StudentID:   s.ID,
			StudentName: s.Name(),
			Department:  s.Department,
			TotalFees:   owed.InexactFloat64(),
			TotalPaid:   paid.InexactFloat64(),
			Outstanding: outstanding.InexactFloat64(),
		})
	}

	summary := models.OutstandingSummary{
		TotalOutstanding:        total.InexactFloat64(),
		StudentsWithOutstanding: len(rows),
		LargestOutstanding:      largest.InexactFloat64(),
	}
	if len(rows) > 0 {
		summary.AverageOutstanding = total.Div(decimal.NewFromInt(int64(len(rows)))).Round(2).InexactFloat64()
	}
	return RankDescending(rows, func(r models.StudentOutstanding) float64 { return r.Outstanding }), summary
}

// RankDescending returns a copy of items sorted by value, largest first.
// Ties keep their input order.
func RankDescending[T any](items []T, value func(T) float64) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return value(out[i]) > value(out[j]) })
	return out
}

// TopN returns at most n leading items.
func TopN[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

// DepartmentRevenues attributes each payment to the department of the paying
// student; payments from unknown students fall under "Unknown".
func DepartmentRevenues(payments []models.Payment, students map[string]models.Student) []models.DepartmentRevenue {
	type acc struct {
		revenue      decimal.Decimal
		transactions int
		students     map[string]struct{}
	}
	byDept := make(map[string]*acc)
	order := make([]string, 0)
	for _, p := range payments {
		dept := unknownDepartment
		student, known := students[p.StudentID]
		if known && student.Department != "" {
			dept = student.Department
		}
		a, ok := byDept[dept]
		if !ok {
			a = &acc{students: make(map[string]struct{})}
			byDept[dept] = a
			order = append(order, dept)
		}
		a.revenue = a.revenue.Add(decimal.NewFromFloat(p.Amount))
		a.transactions++
		if known {
			a.students[student.ID] = struct{}{}
		}
	}

	out := make([]models.DepartmentRevenue, 0, len(order))
	for _, dept := range order {
		a := byDept[dept]
		row := models.DepartmentRevenue{
			Department:   dept,
			Revenue:      a.revenue.InexactFloat64(),
			Transactions: a.transactions,
			Students:     len(a.students),
		}
		if row.Students > 0 {
			row.AveragePerStudent = a.revenue.Div(decimal.NewFromInt(int64(row.Students))).Round(2).InexactFloat64()
		}
		out = append(out, row)
	}
	return RankDescending(out, func(r models.DepartmentRevenue) float64 { return r.Revenue })
}

// StudentPaymentSummaries totals payments per student, keeping students who
// paid something, largest payer first.
func StudentPaymentSummaries(payments []models.Payment, students []models.Student) []models.StudentPaymentSummary {
	type acc struct {
		paid  decimal.Decimal
		count int
		last  string
	}
	byStudent := make(map[string]*acc)
	for _, p := range payments {
		a, ok := byStudent[p.StudentID]
		if !ok {
			a = &acc{}
			byStudent[p.StudentID] = a
		}
		a.paid = a.paid.Add(decimal.NewFromFloat(p.Amount))
		a.count++
		if date, ok := ParsePaymentDate(p.Date); ok {
			if key := date.Format(dateLayout); key > a.last {
				a.last = key
			}
		}
	}

	out := make([]models.StudentPaymentSummary, 0, len(byStudent))
	for _, s := range students {
		a, ok := byStudent[s.ID]
		if !ok || !a.paid.IsPositive() {
			continue
		}
		out = append(out, models.StudentPaymentSummary{
			StudentID:        s.ID,
			StudentName:      s.Name(),
			Department:       s.Department,
			TotalPaid:        a.paid.InexactFloat64(),
			TransactionCount: a.count,
			LastPayment:      a.last,
		})
	}
	return RankDescending(out, func(r models.StudentPaymentSummary) float64 { return r.TotalPaid })
}

// SumPayments adds payment amounts without float drift.
func SumPayments(payments []models.Payment) float64 {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(decimal.NewFromFloat(p.Amount))
	}
	return total.InexactFloat64()
}

// SumFees adds fee amounts without float drift.
func SumFees(fees []models.Fee) float64 {
	total := decimal.Zero
	for _, f := range fees {
		total = total.Add(decimal.NewFromFloat(f.Amount))
	}
	return total.InexactFloat64()
}

// indexStudents builds the id lookup used to join payments to students.
func indexStudents(students []models.Student) map[string]models.Student {
	index := make(map[string]models.Student, len(students))
	for _, s := range students {
		index[s.ID] = s
	}
	return index
}

func roundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
