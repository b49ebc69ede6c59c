package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/eduflow-api/internal/models"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// unboundedEnd closes custom ranges given without an end date.
var unboundedEnd = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// ResolveDateRange turns a symbolic range into a concrete half-open UTC
// interval. Month based ranges start on the first day of the month N months
// before now; every range ends at the midnight following now. Custom ranges
// treat endDate as inclusive and leave a missing bound open.
func ResolveDateRange(key models.DateRangeKey, now time.Time, startDate, endDate string) (models.DateRange, error) {
	now = now.UTC()
	end := startOfDay(now).AddDate(0, 0, 1)

	switch key {
	case models.DateRangeLast3Months:
		return models.DateRange{Start: monthsBack(now, 3), End: end}, nil
	case "", models.DateRangeLast6Months:
		return models.DateRange{Start: monthsBack(now, 6), End: end}, nil
	case models.DateRangeLast12Months:
		return models.DateRange{Start: monthsBack(now, 12), End: end}, nil
	case models.DateRangeThisYear:
		return models.DateRange{Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), End: end}, nil
	case models.DateRangeCustom:
		r := models.DateRange{End: unboundedEnd}
		if strings.TrimSpace(startDate) != "" {
			start, err := time.Parse(dateLayout, strings.TrimSpace(startDate))
			if err != nil {
				return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
			}
			r.Start = start
		}
		if strings.TrimSpace(endDate) != "" {
			last, err := time.Parse(dateLayout, strings.TrimSpace(endDate))
			if err != nil {
				return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
			}
			r.End = last.AddDate(0, 0, 1)
		}
		if !r.Start.Before(r.End) {
			return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "startDate must not be after endDate")
		}
		return r, nil
	default:
		return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported date range %q", key))
	}
}

// FilterPaymentsByRange keeps payments dated inside r. Payments whose date
// cannot be parsed are dropped and counted.
func FilterPaymentsByRange(payments []models.Payment, r models.DateRange) ([]models.Payment, int) {
	out := make([]models.Payment, 0, len(payments))
	skipped := 0
	for _, p := range payments {
		date, ok := ParsePaymentDate(p.Date)
		if !ok {
			skipped++
			continue
		}
		if r.Contains(date) {
			out = append(out, p)
		}
	}
	return out, skipped
}

// ParsePaymentDate accepts YYYY-MM-DD and, for older records, RFC 3339
// timestamps. The result is truncated to a UTC calendar day.
func ParsePaymentDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return startOfDay(t.UTC()), true
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthsBack(now time.Time, months int) time.Time {
	return time.Date(now.Year(), now.Month()-time.Month(months), 1, 0, 0, 0, 0, time.UTC)
}
