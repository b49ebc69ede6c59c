package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/repository"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
	"github.com/noah-isme/eduflow-api/pkg/messaging"
)

type fakePublisher struct {
	events []messaging.Event
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event messaging.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type paymentFixture struct {
	svc       *PaymentService
	students  *repository.StudentRepository
	fees      *repository.FeeRepository
	payments  *repository.PaymentRepository
	publisher *fakePublisher
	spy       *spyInvalidator
	student   models.Student
}

var paymentClock = time.Date(2024, 2, 10, 8, 30, 0, 0, time.UTC)

func newPaymentFixture(t *testing.T) paymentFixture {
	t.Helper()
	store := kvstore.NewMemoryStore()
	f := paymentFixture{
		students:  repository.NewStudentRepository(store),
		fees:      repository.NewFeeRepository(store),
		payments:  repository.NewPaymentRepository(store),
		publisher: &fakePublisher{},
		spy:       &spyInvalidator{},
	}
	student := models.Student{FirstName: "Grace", LastName: "Hopper", Department: "Computer Science"}
	require.NoError(t, f.students.Create(context.Background(), &student))
	f.student = student
	f.svc = NewPaymentService(PaymentServiceParams{
		Repo:      f.payments,
		Students:  f.students,
		Fees:      f.fees,
		Cache:     f.spy,
		Publisher: f.publisher,
		Now:       func() time.Time { return paymentClock },
	})
	return f
}

func TestPaymentServiceProcess(t *testing.T) {
	f := newPaymentFixture(t)

	payment, err := f.svc.Process(context.Background(), PaymentRequest{
		StudentID: f.student.ID,
		Amount:    250.5,
		Method:    "Credit Card",
	})
	require.NoError(t, err)

	assert.Equal(t, "Grace Hopper", payment.StudentName)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, "2024-02-10", payment.Date)
	assert.Equal(t, "TXN1707553800000", payment.TransactionID)
	assert.Equal(t, "RCP1707553800000", payment.ReceiptNumber)
	assert.Equal(t, 1, f.spy.calls)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, EventPaymentProcessed, f.publisher.events[0].Type)
}

func TestPaymentServiceProcessUsesFeeAmount(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	fee := models.Fee{Name: "Lab", Type: "Lab Fee", Amount: 120, Department: "Computer Science"}
	require.NoError(t, f.fees.Create(ctx, &fee))

	payment, err := f.svc.Process(ctx, PaymentRequest{StudentID: f.student.ID, FeeID: fee.ID, Method: "Cash", TransactionID: "T-1"})
	require.NoError(t, err)

	assert.Equal(t, 120.0, payment.Amount)
	assert.Equal(t, "T-1", payment.TransactionID)
}

func TestPaymentServiceProcessRejects(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	cases := map[string]struct {
		req  PaymentRequest
		want string
	}{
		"unknown student": {PaymentRequest{StudentID: "ghost", Amount: 10, Method: "Cash"}, "student does not exist"},
		"zero amount":     {PaymentRequest{StudentID: f.student.ID, Method: "Cash"}, "amount must be greater than 0"},
		"bad method":      {PaymentRequest{StudentID: f.student.ID, Amount: 10, Method: "Barter"}, "method must be one of"},
		"missing method":  {PaymentRequest{StudentID: f.student.ID, Amount: 10}, "method is required"},
		"unknown fee":     {PaymentRequest{StudentID: f.student.ID, FeeID: "nope", Method: "Cash"}, "fee does not exist"},
		"bad date":        {PaymentRequest{StudentID: f.student.ID, Amount: 10, Method: "Cash", Date: "02/10/2024"}, "date must be YYYY-MM-DD"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Process(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	all, err := f.payments.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPaymentServicePublishFailureDoesNotFailWrite(t *testing.T) {
	f := newPaymentFixture(t)
	f.publisher.err = errors.New("nats down")

	payment, err := f.svc.Process(context.Background(), PaymentRequest{StudentID: f.student.ID, Amount: 10, Method: "Cash"})
	require.NoError(t, err)
	assert.NotEmpty(t, payment.ID)
}

func TestPaymentServiceRefund(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	payment, err := f.svc.Process(ctx, PaymentRequest{StudentID: f.student.ID, Amount: 10, Method: "Cash"})
	require.NoError(t, err)

	refunded, err := f.svc.Refund(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, refunded.Status)
	require.NotNil(t, refunded.RefundedAt)
	assert.True(t, refunded.RefundedAt.Equal(paymentClock))
	assert.Equal(t, EventPaymentRefunded, f.publisher.events[1].Type)

	_, err = f.svc.Refund(ctx, payment.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	_, err = f.svc.Refund(ctx, "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestPaymentServiceReceipt(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	payment, err := f.svc.Process(ctx, PaymentRequest{StudentID: f.student.ID, Amount: 1234.5, Method: "Bank Transfer", Notes: "Spring term"})
	require.NoError(t, err)

	receipt, err := f.svc.Receipt(ctx, payment.ID)
	require.NoError(t, err)

	body := string(receipt.Body)
	assert.Equal(t, "receipt_RCP1707553800000.txt", receipt.Filename)
	assert.True(t, strings.HasPrefix(body, "PAYMENT RECEIPT\n"))
	assert.Contains(t, body, "Amount: $1,234.50")
	assert.Contains(t, body, "Payment Method: Bank Transfer")
	assert.Contains(t, body, "Notes: Spring term")
	assert.Contains(t, body, "Generated on: 2024-02-10 08:30:00 UTC")
}

func TestPaymentServiceStatsAndDelete(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	require.NoError(t, f.payments.ReplaceAll(ctx, []models.Payment{
		{ID: "p1", Amount: 100.1, Status: models.PaymentStatusCompleted, Date: "2024-01-01"},
		{ID: "p2", Amount: 200.2, Status: models.PaymentStatusCompleted, Date: "2024-01-02"},
		{ID: "p3", Amount: 50, Status: models.PaymentStatusPending, Date: "2024-01-03"},
		{ID: "p4", Amount: 75, Status: models.PaymentStatusRefunded, Date: "2024-01-04"},
	}))

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 300.3, stats.TotalCollected)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Refunded)
	assert.Equal(t, 4, stats.Total)

	require.NoError(t, f.svc.Delete(ctx, "p3"))
	assert.True(t, appErrors.Is(f.svc.Delete(ctx, "p3"), appErrors.ErrNotFound))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "$999.99", FormatCurrency(999.99))
	assert.Equal(t, "$1,234,567.80", FormatCurrency(1234567.8))
	assert.Equal(t, "-$12.50", FormatCurrency(-12.5))
}
