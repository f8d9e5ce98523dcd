package city

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/logger"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

func newTestService() *Service {
	countries := []CountrySummary{{ID: 1, NameEn: "Lebanon"}, {ID: 2, NameEn: "Jordan"}}
	return NewService(NewInMemoryRepository(countries, nil), logger.Discard())
}

func TestCreate_RequiresExistingCountry(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), CreateRequest{NameAr: "x", NameEn: "X", CountryID: 99})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	created, err := svc.Create(context.Background(), CreateRequest{NameAr: "بيروت", NameEn: "Beirut", CountryID: 1})
	require.NoError(t, err)
	require.NotNil(t, created.Country)
	assert.Equal(t, "Lebanon", created.Country.NameEn)
}

func TestUpdate_MovesCityToAnotherCountry(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	created, err := svc.Create(ctx, CreateRequest{NameAr: "a", NameEn: "Amman", CountryID: 1})
	require.NoError(t, err)

	target := 2
	updated, err := svc.Update(ctx, created.ID, UpdateRequest{CountryID: &target})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CountryID)
	assert.Equal(t, "Jordan", updated.Country.NameEn)
	assert.Equal(t, "Amman", updated.NameEn)
}

func TestList_PaginationBoundsAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.repo.(*InMemoryRepository).now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	ids := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		c, err := svc.Create(ctx, CreateRequest{NameAr: "c", NameEn: "C", CountryID: 1})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	require.NoError(t, svc.Delete(ctx, ids[4]))

	cases := []struct {
		limit, offset, want int
	}{
		{limit: 2, offset: 0, want: 2},
		{limit: 2, offset: 3, want: 1},
		{limit: 10, offset: 10, want: 0},
		{limit: 0, offset: 0, want: 4},
	}
	for _, tc := range cases {
		page, err := svc.List(ctx, pagination.New(tc.limit, tc.offset, DefaultListLimit))
		require.NoError(t, err)
		assert.Len(t, page.Cities, tc.want, "limit=%d offset=%d", tc.limit, tc.offset)
		assert.Equal(t, 4, page.Total)
	}

	page, err := svc.List(ctx, pagination.New(10, 0, DefaultListLimit))
	require.NoError(t, err)
	assert.Equal(t, ids[3], page.Cities[0].ID, "newest active city first")

	_, err = svc.GetByID(ctx, ids[4])
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
