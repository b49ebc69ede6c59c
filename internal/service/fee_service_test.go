package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/repository"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

func validFeeRequest() FeeRequest {
	return FeeRequest{
		Name:       "Tuition Fall",
		Type:       "Tuition",
		Amount:     1500,
		Department: "Computer Science",
		DueDate:    "2024-09-30",
	}
}

func newFeeServiceForTest(t *testing.T) (*FeeService, *spyInvalidator) {
	t.Helper()
	spy := &spyInvalidator{}
	svc := NewFeeService(repository.NewFeeRepository(kvstore.NewMemoryStore()), spy, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC) }
	return svc, spy
}

func TestFeeServiceCreateValidatesType(t *testing.T) {
	svc, spy := newFeeServiceForTest(t)
	ctx := context.Background()

	req := validFeeRequest()
	req.Type = "Parking"
	_, err := svc.Create(ctx, req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Contains(t, err.Error(), "type must be one of")

	req = validFeeRequest()
	req.Amount = 0
	_, err = svc.Create(ctx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be greater than 0")

	req = validFeeRequest()
	req.IsRecurring = true
	_, err = svc.Create(ctx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recurringPeriod is required")
	assert.Zero(t, spy.calls)
}

func TestFeeServiceDuplicate(t *testing.T) {
	svc, spy := newFeeServiceForTest(t)
	ctx := context.Background()
	original, err := svc.Create(ctx, validFeeRequest())
	require.NoError(t, err)

	copyFee, err := svc.Duplicate(ctx, original.ID)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, copyFee.ID)
	assert.Equal(t, "Tuition Fall (Copy)", copyFee.Name)
	assert.Equal(t, original.Amount, copyFee.Amount)
	assert.Equal(t, 2, spy.calls)

	fees, err := svc.List(ctx, models.FeeFilter{})
	require.NoError(t, err)
	assert.Len(t, fees, 2)

	_, err = svc.Duplicate(ctx, "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestFeeServiceUpdateKeepsCreatedAt(t *testing.T) {
	svc, _ := newFeeServiceForTest(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, validFeeRequest())
	require.NoError(t, err)

	req := validFeeRequest()
	req.Amount = 1750.5
	updated, err := svc.Update(ctx, created.ID, req)
	require.NoError(t, err)

	assert.Equal(t, 1750.5, updated.Amount)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, err = svc.Update(ctx, "missing", req)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestFeeServiceExport(t *testing.T) {
	svc, _ := newFeeServiceForTest(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, validFeeRequest())
	require.NoError(t, err)
	lab := validFeeRequest()
	lab.Name = "Lab"
	lab.Type = "Lab Fee"
	lab.Department = "Physics"
	_, err = svc.Create(ctx, lab)
	require.NoError(t, err)

	file, err := svc.Export(ctx, models.FeeFilter{Department: "Physics"})
	require.NoError(t, err)

	assert.Equal(t, "fees_export_2024-03-05.json", file.Filename)
	assert.Equal(t, "application/json", file.ContentType)
	var decoded []models.Fee
	require.NoError(t, json.Unmarshal(file.Body, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Lab", decoded[0].Name)
}

func TestFeeServiceDeleteMissing(t *testing.T) {
	svc, _ := newFeeServiceForTest(t)
	err := svc.Delete(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
