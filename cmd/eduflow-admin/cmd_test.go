package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/repository"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

func newTestAdmin() (*admin, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &admin{
		store:  kvstore.NewMemoryStore(),
		out:    &out,
		errOut: &errOut,
		logger: zap.NewNop(),
		topN:   10,
	}, &out, &errOut
}

func TestAdminSeed(t *testing.T) {
	a, out, _ := newTestAdmin()
	ctx := context.Background()

	require.NoError(t, a.run(ctx, []string{"seed"}))
	assert.Equal(t, "seeded 3 students, 3 courses\n", out.String())

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"seed"}))
	assert.Equal(t, "seeded 0 students, 0 courses\n", out.String())

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"seed", "-force"}))
	assert.Equal(t, "seeded 3 students, 3 courses\n", out.String())
}

func TestAdminReportPrintsExportDocument(t *testing.T) {
	a, out, _ := newTestAdmin()
	ctx := context.Background()
	require.NoError(t, a.run(ctx, []string{"seed"}))

	students, err := repository.NewStudentRepository(a.store).All(ctx)
	require.NoError(t, err)
	today := time.Now().UTC().Format("2006-01-02")
	payments := repository.NewPaymentRepository(a.store)
	require.NoError(t, payments.Create(ctx, &models.Payment{StudentID: students[0].ID, Amount: 400, Method: "Cash", Status: models.PaymentStatusCompleted, Date: today}))
	require.NoError(t, payments.Create(ctx, &models.Payment{StudentID: students[1].ID, Amount: 600, Method: "Credit Card", Status: models.PaymentStatusCompleted, Date: today}))
	out.Reset()

	require.NoError(t, a.run(ctx, []string{"report", "-type", "department", "-range", "last3months"}))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "department", doc["reportType"])
	rows, ok := doc["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 2)
}

func TestAdminRejectsBadInput(t *testing.T) {
	a, _, errOut := newTestAdmin()
	ctx := context.Background()

	assert.ErrorIs(t, a.run(ctx, nil), errUsage)
	assert.Contains(t, errOut.String(), "usage: eduflow-admin")

	assert.ErrorIs(t, a.run(ctx, []string{"migrate"}), errUsage)
	assert.ErrorIs(t, a.run(ctx, []string{"report", "-bogus"}), errUsage)

	err := a.run(ctx, []string{"report", "-type", "forecast"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, errUsage)
}
