package banner

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
)

func TestDefaultWindow_SevenDaysFromMidnight(t *testing.T) {
	now := time.Date(2024, 3, 10, 17, 45, 12, 0, time.UTC)

	start, end := DefaultWindow(now)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 7*24*time.Hour, end.Sub(start))
	assert.Equal(t, start, Day(start))
	assert.Equal(t, end, Day(end))
}

func TestWindow_UsesGivenDates(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	start := time.Date(2024, 4, 1, 13, 30, 0, 0, time.UTC)

	from, to, err := Window(now, &start, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 4, 8, 0, 0, 0, 0, time.UTC), to)

	end := time.Date(2024, 4, 3, 23, 59, 0, 0, time.UTC)
	from, to, err = Window(now, &start, &end)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), to)
	assert.True(t, !to.Before(from))
}

func TestWindow_RejectsInvertedDates(t *testing.T) {
	now := time.Now()
	start := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC)

	_, _, err := Window(now, &start, &end)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, _, err = normalise(&start, &end)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestDay_ConvertsToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*60*60)
	local := time.Date(2024, 5, 2, 1, 0, 0, 0, zone)

	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Day(local))
}

func TestDate_UnmarshalJSON(t *testing.T) {
	var req UpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"startDate":"2026-10-20","endDate":"2026-10-27T15:04:05+03:00"}`), &req))
	require.NotNil(t, req.StartDate)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), req.StartDate.Time)
	assert.True(t, req.EndDate.Equal(time.Date(2026, 10, 27, 12, 4, 5, 0, time.UTC)))

	req = UpdateRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"startDate":null}`), &req))
	assert.Nil(t, req.StartDate)
	assert.Nil(t, req.StartDate.Ptr())

	for _, raw := range []string{`{"startDate":"20/10/2026"}`, `{"startDate":20261020}`} {
		assert.Error(t, json.Unmarshal([]byte(raw), &UpdateRequest{}), raw)
	}
}
