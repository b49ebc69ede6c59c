package service

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduflow-api/internal/models"
)

func samplePayments() []models.Payment {
	return []models.Payment{
		{ID: "p1", StudentID: "S1", Amount: 100, Date: "2024-01-15", Method: "Cash", Status: models.PaymentStatusCompleted},
		{ID: "p2", StudentID: "S1", Amount: 50, Date: "2024-01-20", Method: "Cash", Status: models.PaymentStatusPending},
		{ID: "p3", StudentID: "S2", Amount: 75, Date: "2024-02-01", Method: "Card", Status: models.PaymentStatusCompleted},
	}
}

func TestBucketPaymentsMonthly(t *testing.T) {
	buckets, skipped := BucketPayments(samplePayments(), models.BreakdownMonthly)

	assert.Zero(t, skipped)
	assert.Equal(t, []models.RevenueBucket{
		{Period: "2024-01", Revenue: 150, Transactions: 2},
		{Period: "2024-02", Revenue: 75, Transactions: 1},
	}, buckets)
}

func TestBucketPaymentsKeys(t *testing.T) {
	date := time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC) // Thursday

	assert.Equal(t, "2024-05-16", BucketKey(date, models.BreakdownDaily))
	assert.Equal(t, "2024-05-12", BucketKey(date, models.BreakdownWeekly))
	assert.Equal(t, "2024-05", BucketKey(date, models.BreakdownMonthly))
	assert.Equal(t, "2024-Q2", BucketKey(date, models.BreakdownQuarterly))
	assert.Equal(t, "2023-12-31", BucketKey(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), models.BreakdownWeekly))
}

func TestBucketPaymentsIgnoresInputOrder(t *testing.T) {
	payments := samplePayments()
	first, _ := BucketPayments(payments, models.BreakdownWeekly)

	reversed := make([]models.Payment, len(payments))
	copy(reversed, payments)
	sort.Slice(reversed, func(i, j int) bool { return reversed[i].ID > reversed[j].ID })
	second, _ := BucketPayments(reversed, models.BreakdownWeekly)

	assert.Equal(t, first, second)
}

func TestBucketPaymentsSkipsBadDates(t *testing.T) {
	payments := append(samplePayments(), models.Payment{Amount: 10, Date: "not-a-date"})

	buckets, skipped := BucketPayments(payments, models.BreakdownQuarterly)
	assert.Equal(t, 1, skipped)
	require.Len(t, buckets, 1)
	assert.Equal(t, 225.0, buckets[0].Revenue)
}

func TestMonthlyRevenueWindowSeedsEmptyMonths(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	series := MonthlyRevenueWindow(samplePayments(), now, 3)
	require.Len(t, series, 3)
	assert.Equal(t, "2024-01", series[0].Period)
	assert.Equal(t, "Jan 24", series[0].Label)
	assert.Equal(t, 150.0, series[0].Revenue)
	assert.Equal(t, 75.0, series[1].Revenue)
	assert.Equal(t, "2024-03", series[2].Period)
	assert.Zero(t, series[2].Revenue)
	assert.Zero(t, series[2].Transactions)
}

func TestBreakdownIsPartition(t *testing.T) {
	payments := append(samplePayments(), models.Payment{Amount: 0.1, Method: "Card"}, models.Payment{Amount: 0.2, Method: "Check"})

	methods := BreakdownPaymentsByMethod(payments)
	var sum float64
	count := 0
	for _, m := range methods {
		sum += m.Amount
		count += m.Count
	}
	assert.InDelta(t, SumPayments(payments), sum, 1e-9)
	assert.Equal(t, len(payments), count)
	assert.Equal(t, "Cash", methods[0].Category)
}

func TestWithPercentagesRoundsToOneDecimal(t *testing.T) {
	items := WithPercentages([]models.CategoryAmount{
		{Category: "A", Amount: 1},
		{Category: "B", Amount: 2},
	})
	assert.Equal(t, 33.3, items[0].Percentage)
	assert.Equal(t, 66.7, items[1].Percentage)

	zero := WithPercentages([]models.CategoryAmount{{Category: "A"}})
	assert.Zero(t, zero[0].Percentage)
}

func TestBreakdownFeesByDepartment(t *testing.T) {
	fees := []models.Fee{
		{Department: "CS", Amount: 1000},
		{Department: "CS", Amount: 200},
		{Department: "Math", Amount: 500},
	}
	depts := BreakdownFeesByDepartment(fees)
	require.Len(t, depts, 2)
	assert.Equal(t, models.CategoryAmount{Category: "CS", Amount: 1200, Count: 2}, depts[0])
}

func TestOutstandingBalancesScenario(t *testing.T) {
	fees := []models.Fee{{Department: "CS", Amount: 1000}}
	payments := []models.Payment{{StudentID: "S1", Amount: 400}}
	students := []models.Student{{ID: "S1", FirstName: "Ada", Department: "CS"}}

	rows, summary := OutstandingBalances(fees, payments, students)
	require.Len(t, rows, 1)
	assert.Equal(t, 600.0, rows[0].Outstanding)
	assert.Equal(t, 600.0, summary.TotalOutstanding)
	assert.Equal(t, 600.0, summary.AverageOutstanding)
	assert.Equal(t, 600.0, summary.LargestOutstanding)
	assert.Equal(t, 1, summary.StudentsWithOutstanding)
}

func TestOutstandingBalancesExcludesSettled(t *testing.T) {
	fees := []models.Fee{{Department: "CS", Amount: 1000}, {Department: "Math", Amount: 300}}
	payments := []models.Payment{
		{StudentID: "paid", Amount: 1000},
		{StudentID: "over", Amount: 1500},
		{StudentID: "part", Amount: 100},
	}
	students := []models.Student{
		{ID: "paid", Department: "CS"},
		{ID: "over", Department: "CS"},
		{ID: "part", Department: "Math"},
		{ID: "none", Department: "CS"},
	}

	rows, summary := OutstandingBalances(fees, payments, students)
	require.Len(t, rows, 2)
	assert.Equal(t, "none", rows[0].StudentID)
	assert.Equal(t, "part", rows[1].StudentID)
	for _, r := range rows {
		assert.Greater(t, r.Outstanding, 0.0)
	}
	assert.Equal(t, 1000.0, summary.LargestOutstanding)
	assert.Equal(t, 1200.0, summary.TotalOutstanding)
	assert.Equal(t, 600.0, summary.AverageOutstanding)

	_, empty := OutstandingBalances(nil, nil, nil)
	assert.Zero(t, empty.LargestOutstanding)
	assert.Zero(t, empty.AverageOutstanding)
}

func TestRankDescendingAndTopN(t *testing.T) {
	values := []float64{3, 9, 1, 9, 4}
	ranked := RankDescending(values, func(v float64) float64 { return v })
	assert.Equal(t, []float64{9, 9, 4, 3, 1}, ranked)
	assert.Equal(t, []float64{3, 9, 1, 9, 4}, values, "input is left untouched")

	assert.Equal(t, []float64{9, 9}, TopN(ranked, 2))
	assert.Len(t, TopN(ranked, 10), 5)
}

func TestDepartmentRevenues(t *testing.T) {
	students := indexStudents([]models.Student{
		{ID: "S1", Department: "CS"},
		{ID: "S2", Department: "Math"},
		{ID: "S3", Department: "CS"},
	})
	payments := []models.Payment{
		{StudentID: "S1", Amount: 100},
		{StudentID: "S1", Amount: 100},
		{StudentID: "S3", Amount: 400},
		{StudentID: "S2", Amount: 50},
		{StudentID: "ghost", Amount: 20},
	}

	rows := DepartmentRevenues(payments, students)
	require.Len(t, rows, 3)
	assert.Equal(t, models.DepartmentRevenue{Department: "CS", Revenue: 600, Transactions: 3, Students: 2, AveragePerStudent: 300}, rows[0])
	assert.Equal(t, "Unknown", rows[2].Department)
	assert.Zero(t, rows[2].Students)
}

func TestStudentPaymentSummaries(t *testing.T) {
	students := []models.Student{
		{ID: "S1", FirstName: "John", LastName: "Smith"},
		{ID: "S2", FirstName: "Sarah", LastName: "Johnson"},
		{ID: "S3", FirstName: "Idle"},
	}
	rows := StudentPaymentSummaries(samplePayments(), students)
	require.Len(t, rows, 2)
	assert.Equal(t, "John Smith", rows[0].StudentName)
	assert.Equal(t, 150.0, rows[0].TotalPaid)
	assert.Equal(t, 2, rows[0].TransactionCount)
	assert.Equal(t, "2024-01-20", rows[0].LastPayment)
}
