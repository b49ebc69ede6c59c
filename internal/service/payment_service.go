package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/repository"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
	"github.com/noah-isme/eduflow-api/pkg/messaging"
)

// Payment event types.
const (
	EventPaymentProcessed = "payment.processed"
	EventPaymentRefunded  = "payment.refunded"
)

type paymentRepository interface {
	All(ctx context.Context) ([]models.Payment, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type feeFinder interface {
	FindByID(ctx context.Context, id string) (*models.Fee, error)
}

// EventPublisher emits domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event messaging.Event) error
}

// PaymentRequest is the payload for processing a payment. Amount may be
// omitted when FeeID is given; the fee amount is used instead.
type PaymentRequest struct {
	StudentID     string  `json:"studentId" validate:"required"`
	FeeID         string  `json:"feeId"`
	Amount        float64 `json:"amount" validate:"gte=0"`
	Method        string  `json:"method" validate:"required"`
	Date          string  `json:"date" validate:"omitempty,ymd"`
	TransactionID string  `json:"transactionId"`
	Notes         string  `json:"notes"`
}

// PaymentServiceParams groups payment service dependencies.
type PaymentServiceParams struct {
	Repo      paymentRepository
	Students  studentFinder
	Fees      feeFinder
	Cache     dashboardInvalidator
	Publisher EventPublisher
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Now       func() time.Time
}

// PaymentService records payments and refunds.
type PaymentService struct {
	repo      paymentRepository
	students  studentFinder
	fees      feeFinder
	cache     dashboardInvalidator
	publisher EventPublisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService constructs the payment service.
func NewPaymentService(params PaymentServiceParams) *PaymentService {
	if params.Validator == nil {
		params.Validator = NewValidator()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &PaymentService{
		repo:      params.Repo,
		students:  params.Students,
		fees:      params.Fees,
		cache:     params.Cache,
		publisher: params.Publisher,
		metrics:   params.Metrics,
		validator: params.Validator,
		logger:    params.Logger,
		now:       params.Now,
	}
}

// List returns payments newest first.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	payments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storageError(err, "failed to list payments")
	}
	return payments, nil
}

// Get returns a single payment.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, storageError(err, "failed to load payment")
	}
	return payment, nil
}

// Process records a completed payment for an existing student.
func (s *PaymentService) Process(ctx context.Context, req PaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid payment payload")
	}
	if !containsString(models.PaymentMethods, req.Method) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid payment payload: method must be one of [%s]", strings.Join(models.PaymentMethods, ", ")))
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid payment payload: student does not exist")
		}
		return nil, storageError(err, "failed to load student")
	}

	amount := req.Amount
	if req.FeeID != "" {
		fee, err := s.fees.FindByID(ctx, req.FeeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "invalid payment payload: fee does not exist")
			}
			return nil, storageError(err, "failed to load fee")
		}
		if amount == 0 {
			amount = fee.Amount
		}
	}
	if amount <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid payment payload: amount must be greater than 0")
	}

	now := s.now().UTC()
	date := req.Date
	if date == "" {
		date = now.Format(dateLayout)
	}
	stamp := now.UnixMilli()
	txn := strings.TrimSpace(req.TransactionID)
	if txn == "" {
		txn = fmt.Sprintf("TXN%d", stamp)
	}

	payment := &models.Payment{
		StudentID:     student.ID,
		StudentName:   student.Name(),
		FeeID:         req.FeeID,
		Amount:        roundMoney(amount),
		Method:        req.Method,
		Status:        models.PaymentStatusCompleted,
		Date:          date,
		TransactionID: txn,
		ReceiptNumber: fmt.Sprintf("RCP%d", stamp),
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, storageError(err, "failed to record payment")
	}
	s.invalidate(ctx)
	s.logger.Info("payment processed",
		zap.String("payment_id", payment.ID),
		zap.String("student_id", payment.StudentID),
		zap.Float64("amount", payment.Amount),
	)
	s.publish(ctx, EventPaymentProcessed, payment)
	return payment, nil
}

// Refund marks a payment as refunded.
func (s *PaymentService) Refund(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusRefunded {
		return nil, appErrors.Clone(appErrors.ErrConflict, "payment already refunded")
	}
	refundedAt := s.now().UTC()
	payment.Status = models.PaymentStatusRefunded
	payment.RefundedAt = &refundedAt
	if err := s.repo.Update(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, storageError(err, "failed to refund payment")
	}
	s.invalidate(ctx)
	s.publish(ctx, EventPaymentRefunded, payment)
	return payment, nil
}

// Delete removes a payment from the ledger.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return storageError(err, "failed to delete payment")
	}
	s.invalidate(ctx)
	return nil
}

// Receipt renders a plain-text receipt for a payment.
func (s *PaymentService) Receipt(ctx context.Context, id string) (*FileExport, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString("PAYMENT RECEIPT\n")
	b.WriteString("================\n")
	fmt.Fprintf(&b, "Receipt Number: %s\n", payment.ReceiptNumber)
	fmt.Fprintf(&b, "Date: %s\n\n", payment.Date)
	fmt.Fprintf(&b, "Student: %s\n", payment.StudentName)
	fmt.Fprintf(&b, "Amount: %s\n", FormatCurrency(payment.Amount))
	fmt.Fprintf(&b, "Payment Method: %s\n", payment.Method)
	fmt.Fprintf(&b, "Transaction ID: %s\n", payment.TransactionID)
	fmt.Fprintf(&b, "Status: %s\n", payment.Status)
	if payment.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", payment.Notes)
	}
	fmt.Fprintf(&b, "\nGenerated on: %s\n", s.now().UTC().Format("2006-01-02 15:04:05 MST"))

	return &FileExport{
		Filename:    fmt.Sprintf("receipt_%s.txt", payment.ReceiptNumber),
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(b.String()),
	}, nil
}

// Stats summarises the whole ledger. TotalCollected counts completed payments only.
func (s *PaymentService) Stats(ctx context.Context) (*models.PaymentStats, error) {
	payments, err := s.repo.All(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load payments")
	}
	stats := &models.PaymentStats{Total: len(payments)}
	collected := decimal.Zero
	for _, p := range payments {
		switch p.Status {
		case models.PaymentStatusCompleted:
			stats.Completed++
			collected = collected.Add(decimal.NewFromFloat(p.Amount))
		case models.PaymentStatusPending:
			stats.Pending++
		case models.PaymentStatusFailed:
			stats.Failed++
		case models.PaymentStatusRefunded:
			stats.Refunded++
		}
	}
	stats.TotalCollected = collected.Round(2).InexactFloat64()
	return stats, nil
}

func (s *PaymentService) publish(ctx context.Context, eventType string, payment *models.Payment) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, messaging.Event{
		Type:       eventType,
		OccurredAt: s.now().UTC().Format(time.RFC3339),
		Payload:    payment,
	})
	s.metrics.RecordPaymentEvent(eventType, err)
	if err != nil {
		s.logger.Warn("payment event not published", zap.String("type", eventType), zap.String("payment_id", payment.ID), zap.Error(err))
	}
}

func (s *PaymentService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateDashboards(ctx)
	}
}

// FormatCurrency renders an amount as $1,234.56.
func FormatCurrency(amount float64) string {
	fixed := decimal.NewFromFloat(amount).Abs().StringFixed(2)
	whole, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + "$" + grouped.String() + "." + frac
}
