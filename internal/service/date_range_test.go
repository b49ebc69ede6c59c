package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduflow-api/internal/models"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
)

func TestResolveDateRangeSymbolic(t *testing.T) {
	now := time.Date(2024, 5, 17, 15, 30, 0, 0, time.UTC)
	nextMidnight := time.Date(2024, 5, 18, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		key   models.DateRangeKey
		start time.Time
	}{
		{models.DateRangeLast3Months, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{models.DateRangeLast6Months, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)},
		{"", time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)},
		{models.DateRangeLast12Months, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)},
		{models.DateRangeThisYear, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(string(tc.key), func(t *testing.T) {
			r, err := ResolveDateRange(tc.key, now, "", "")
			require.NoError(t, err)
			assert.Equal(t, tc.start, r.Start)
			assert.Equal(t, nextMidnight, r.End)
		})
	}
}

func TestResolveDateRangeCustomIsInclusive(t *testing.T) {
	r, err := ResolveDateRange(models.DateRangeCustom, time.Now(), "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	assert.True(t, r.Contains(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestResolveDateRangeCustomOpenBounds(t *testing.T) {
	r, err := ResolveDateRange(models.DateRangeCustom, time.Now(), "", "")
	require.NoError(t, err)
	assert.True(t, r.Contains(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2090, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestResolveDateRangeRejectsBadInput(t *testing.T) {
	_, err := ResolveDateRange(models.DateRangeCustom, time.Now(), "01/02/2024", "")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = ResolveDateRange(models.DateRangeCustom, time.Now(), "2024-03-01", "2024-02-01")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = ResolveDateRange("lastweek", time.Now(), "", "")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestFilterPaymentsByRangeCountsUnparseable(t *testing.T) {
	r := models.DateRange{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
	payments := []models.Payment{
		{ID: "in", Date: "2024-01-15"},
		{ID: "legacy", Date: "2024-01-20T10:00:00Z"},
		{ID: "out", Date: "2024-02-01"},
		{ID: "bad", Date: "yesterday"},
	}

	kept, skipped := FilterPaymentsByRange(payments, r)
	require.Len(t, kept, 2)
	assert.Equal(t, "in", kept[0].ID)
	assert.Equal(t, "legacy", kept[1].ID)
	assert.Equal(t, 1, skipped)
}
