package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/repository"
	"github.com/noah-isme/eduflow-api/internal/service"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

type ledgerFixture struct {
	router  http.Handler
	student models.Student
	fee     models.Fee
}

func newLedgerFixture(t *testing.T) ledgerFixture {
	t.Helper()
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	students := repository.NewStudentRepository(store)
	fees := repository.NewFeeRepository(store)
	payments := repository.NewPaymentRepository(store)

	student := &models.Student{FirstName: "John", LastName: "Doe", Department: "Computer Science", Status: models.StudentStatusActive}
	require.NoError(t, students.Create(ctx, student))
	fee := &models.Fee{Name: "Tuition Fee", Type: "Tuition", Amount: 5000, Department: "Computer Science"}
	require.NoError(t, fees.Create(ctx, fee))

	paymentSvc := service.NewPaymentService(service.PaymentServiceParams{
		Repo:     payments,
		Students: students,
		Fees:     fees,
		Now:      func() time.Time { return time.Date(2024, 2, 10, 8, 30, 0, 0, time.UTC) },
	})
	feeSvc := service.NewFeeService(fees, nil, service.NewValidator(), nil)

	return ledgerFixture{
		router:  newTestRouter(NewPaymentHandler(paymentSvc), NewFeeHandler(feeSvc)),
		student: *student,
		fee:     *fee,
	}
}

func TestPaymentHandlerProcessRefundAndReceipt(t *testing.T) {
	f := newLedgerFixture(t)

	rec := perform(t, f.router, http.MethodPost, "/api/v1/payments", service.PaymentRequest{
		StudentID: f.student.ID,
		FeeID:     f.fee.ID,
		Method:    "Credit Card",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var payment models.Payment
	decodeEnvelope(t, rec, &payment)
	assert.Equal(t, 5000.0, payment.Amount)
	assert.Equal(t, "2024-02-10", payment.Date)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)

	rec = perform(t, f.router, http.MethodGet, "/api/v1/payments/"+payment.ID+"/receipt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "receipt_"+payment.ReceiptNumber+".txt")
	assert.Contains(t, rec.Body.String(), "PAYMENT RECEIPT")
	assert.Contains(t, rec.Body.String(), "$5,000.00")

	rec = perform(t, f.router, http.MethodGet, "/api/v1/payments/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.PaymentStats
	decodeEnvelope(t, rec, &stats)
	assert.Equal(t, 5000.0, stats.TotalCollected)
	assert.Equal(t, 1, stats.Completed)

	rec = perform(t, f.router, http.MethodPost, "/api/v1/payments/"+payment.ID+"/refund", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeEnvelope(t, rec, &payment)
	assert.Equal(t, models.PaymentStatusRefunded, payment.Status)

	rec = perform(t, f.router, http.MethodPost, "/api/v1/payments/"+payment.ID+"/refund", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = perform(t, f.router, http.MethodDelete, "/api/v1/payments/"+payment.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPaymentHandlerRejectsUnknownStudent(t *testing.T) {
	f := newLedgerFixture(t)

	rec := perform(t, f.router, http.MethodPost, "/api/v1/payments", service.PaymentRequest{
		StudentID: "ghost",
		Amount:    100,
		Method:    "Cash",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "student does not exist")
}

func TestPaymentHandlerListFilters(t *testing.T) {
	f := newLedgerFixture(t)

	for _, method := range []string{"Cash", "Credit Card"} {
		rec := perform(t, f.router, http.MethodPost, "/api/v1/payments", service.PaymentRequest{
			StudentID: f.student.ID,
			Amount:    250,
			Method:    method,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := perform(t, f.router, http.MethodGet, "/api/v1/payments?method=Cash", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var payments []models.Payment
	decodeEnvelope(t, rec, &payments)
	require.Len(t, payments, 1)
	assert.Equal(t, "Cash", payments[0].Method)
}

func TestFeeHandlerDuplicateAndExport(t *testing.T) {
	f := newLedgerFixture(t)

	rec := perform(t, f.router, http.MethodPost, "/api/v1/fees/"+f.fee.ID+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var copied models.Fee
	decodeEnvelope(t, rec, &copied)
	assert.Equal(t, "Tuition Fee (Copy)", copied.Name)
	assert.NotEqual(t, f.fee.ID, copied.ID)

	rec = perform(t, f.router, http.MethodGet, "/api/v1/fees?search=copy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fees []models.Fee
	decodeEnvelope(t, rec, &fees)
	assert.Len(t, fees, 1)

	rec = perform(t, f.router, http.MethodGet, "/api/v1/fees/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "fees_export_")
	assert.Contains(t, rec.Body.String(), "Tuition Fee (Copy)")
}

func TestFeeHandlerValidation(t *testing.T) {
	f := newLedgerFixture(t)

	rec := perform(t, f.router, http.MethodPost, "/api/v1/fees", service.FeeRequest{
		Name:        "Bus Pass",
		Type:        "Transport",
		Amount:      120,
		Department:  "All",
		IsRecurring: true,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "recurringPeriod")

	rec = perform(t, f.router, http.MethodGet, "/api/v1/fees/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
