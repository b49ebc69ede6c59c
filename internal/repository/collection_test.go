package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("store down") }
func (brokenStore) Set(context.Context, string, []byte) error   { return errors.New("store down") }
func (brokenStore) Delete(context.Context, string) error        { return errors.New("store down") }

func TestCollectionEmptyKeyYieldsEmptySlice(t *testing.T) {
	repo := NewFeeRepository(kvstore.NewMemoryStore())

	fees, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, fees)
	assert.Empty(t, fees)
}

func TestCollectionReadsLegacyKeyAndMigratesOnWrite(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, LegacyKeyCourses, []byte(`[{"id":"c1","code":"CS101","name":"Intro"}]`)))

	repo := NewCourseRepository(store)
	courses, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS101", courses[0].Code)

	require.NoError(t, repo.Create(ctx, &models.Course{Code: "MATH201"}, nil))

	raw, err := store.Get(ctx, KeyCourses)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "CS101")
	assert.Contains(t, string(raw), "MATH201")
}

func TestCollectionRejectsCorruptBlob(t *testing.T) {
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), KeyFees, []byte(`{not json`)))

	_, err := NewFeeRepository(store).All(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode fees")
}

func TestCollectionSurfacesStoreFailures(t *testing.T) {
	repo := NewPaymentRepository(brokenStore{})

	_, err := repo.All(context.Background())
	require.Error(t, err)

	err = repo.ReplaceAll(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
}

func TestCollectionConcurrentInsertsAreNotLost(t *testing.T) {
	repo := NewPaymentRepository(kvstore.NewMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Create(ctx, &models.Payment{Amount: 10}))
		}()
	}
	wg.Wait()

	payments, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, payments, 25)
}

func TestCollectionDeleteMissingReturnsNotFound(t *testing.T) {
	repo := NewFeeRepository(kvstore.NewMemoryStore())

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
