package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/valuation-dashboard/internal/valuation"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()
	c := New("acme.xlsx", nil)

	_, err := uuid.Parse(c.ID)
	require.NoError(t, err)

	store.Put(c)
	got, err := store.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	updated, err := store.Update(c.ID, func(ctx *Context) error {
		ctx.Company = "ACME"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME", updated.Company)
	assert.Empty(t, got.Company, "earlier snapshot is unchanged")

	got, err = store.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACME", got.Company)

	require.NoError(t, store.Delete(c.ID))
	_, err = store.Get(c.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(store.Delete(c.ID), ErrNotFound))
}

func TestUpdatePropagatesError(t *testing.T) {
	store := NewStore()
	c := New("acme.xlsx", nil)
	store.Put(c)

	boom := errors.New("boom")
	got, err := store.Update(c.ID, func(*Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, c.ID, got.ID)

	_, err = store.Update("missing", func(*Context) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetAssumptionsClearsResults(t *testing.T) {
	c := New("acme.xlsx", nil)
	c.DCF = &valuation.DCFResult{}
	c.EPS = []valuation.EPSRow{{Year: 0}}
	c.Verdict = &valuation.VerdictResult{}

	c.SetAssumptions(valuation.Assumptions{ForecastYears: 3})
	assert.Equal(t, 3, c.Assumptions.ForecastYears)
	assert.Nil(t, c.DCF)
	assert.Nil(t, c.EPS)
	assert.Nil(t, c.Verdict)
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := New("tab.xlsx", nil)
			store.Put(c)
			_, _ = store.Get(c.ID)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, store.Len())
}

func TestSnapshotsDuringConcurrentUpdates(t *testing.T) {
	store := NewStore()
	c := New("tab.xlsx", nil)
	c.SetAssumptions(valuation.Assumptions{ForecastYears: 1, WACC: 10})
	store.Put(c)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(years int) {
			defer wg.Done()
			_, err := store.Update(c.ID, func(ctx *Context) error {
				ctx.SetAssumptions(valuation.Assumptions{ForecastYears: years, WACC: float64(years) * 10})
				return nil
			})
			assert.NoError(t, err)
		}(i + 1)
		go func() {
			defer wg.Done()
			got, err := store.Get(c.ID)
			if !assert.NoError(t, err) {
				return
			}
			a := got.Assumptions
			assert.Equal(t, float64(a.ForecastYears)*10, a.WACC, "snapshot mixes two updates")
		}()
	}
	wg.Wait()
}
