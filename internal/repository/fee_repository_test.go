package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

func TestFeeRepositoryListSortsAndFilters(t *testing.T) {
	repo := NewFeeRepository(kvstore.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, repo.ReplaceAll(ctx, []models.Fee{
		{ID: "1", Name: "Tuition", Type: "Tuition", Amount: 5000, Department: "Computer Science"},
		{ID: "2", Name: "Lab access", Type: "Lab Fee", Amount: 300, Department: "Computer Science", Description: "Weekly lab"},
		{ID: "3", Name: "Books", Type: "Library Fee", Amount: 120, Department: "English"},
	}))

	fees, err := repo.List(ctx, models.FeeFilter{SortBy: "amount", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, fees, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{fees[0].ID, fees[1].ID, fees[2].ID})

	fees, err = repo.List(ctx, models.FeeFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Books", fees[0].Name)

	fees, err = repo.List(ctx, models.FeeFilter{Search: "weekly"})
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, "2", fees[0].ID)

	fees, err = repo.List(ctx, models.FeeFilter{Department: "Computer Science", Type: "Tuition"})
	require.NoError(t, err)
	assert.Len(t, fees, 1)
}

func TestFeeRepositoryUpdateKeepsCreatedAt(t *testing.T) {
	repo := NewFeeRepository(kvstore.NewMemoryStore())
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return start }

	fee := &models.Fee{Name: "Lab", Amount: 100}
	require.NoError(t, repo.Create(ctx, fee))

	repo.now = func() time.Time { return start.Add(24 * time.Hour) }
	require.NoError(t, repo.Update(ctx, &models.Fee{ID: fee.ID, Name: "Lab", Amount: 150}))

	got, err := repo.FindByID(ctx, fee.ID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, got.Amount)
	assert.Equal(t, start, got.CreatedAt)
	assert.Equal(t, start.Add(24*time.Hour), got.UpdatedAt)
}
