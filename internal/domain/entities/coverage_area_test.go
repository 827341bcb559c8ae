package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArea(t *testing.T, radiusMiles float64, postalCodes []string) *CoverageArea {
	t.Helper()
	area, err := NewCoverageArea("provider-1", GeoPoint{Latitude: 40.0, Longitude: -74.0}, radiusMiles, postalCodes)
	require.NoError(t, err)
	return area
}

func TestNewCoverageArea_Validation(t *testing.T) {
	center := GeoPoint{Latitude: 40.0, Longitude: -74.0}

	t.Run("requires provider id", func(t *testing.T) {
		_, err := NewCoverageArea("", center, 5, nil)
		assert.Error(t, err)
	})

	t.Run("rejects invalid center", func(t *testing.T) {
		_, err := NewCoverageArea("provider-1", GeoPoint{Latitude: 100, Longitude: 0}, 5, nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive radius", func(t *testing.T) {
		_, err := NewCoverageArea("provider-1", center, 0, nil)
		assert.Error(t, err)
		_, err = NewCoverageArea("provider-1", center, -3, nil)
		assert.Error(t, err)
	})

	t.Run("rejects malformed postal codes", func(t *testing.T) {
		for _, code := range []string{"1234", "123456", "abcde", "10001-12"} {
			_, err := NewCoverageArea("provider-1", center, 5, []string{code})
			assert.Error(t, err, "code %q should be rejected", code)
		}
	})

	t.Run("accepts zip and zip+4", func(t *testing.T) {
		area, err := NewCoverageArea("provider-1", center, 5, []string{"10001", "10001-1234"})
		require.NoError(t, err)
		assert.Len(t, area.PostalCodes, 2)
	})

	t.Run("deduplicates postal codes", func(t *testing.T) {
		area, err := NewCoverageArea("provider-1", center, 5, []string{"10001", "10001"})
		require.NoError(t, err)
		assert.Equal(t, []string{"10001"}, area.PostalCodes)
	})

	t.Run("assigns identity and timestamps", func(t *testing.T) {
		area, err := NewCoverageArea("provider-1", center, 5, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, area.ID)
		assert.False(t, area.CreatedAt.IsZero())
		assert.Equal(t, area.CreatedAt, area.UpdatedAt)
	})
}

func TestCoverageArea_Contains(t *testing.T) {
	inside := GeoPoint{Latitude: 40.03, Longitude: -74.0}  // about 2 miles out
	outside := GeoPoint{Latitude: 40.2, Longitude: -74.0}  // about 14 miles out

	t.Run("radius alone when no allow-list", func(t *testing.T) {
		area := newTestArea(t, 5, nil)

		ok, err := area.Contains(inside, "10002")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = area.Contains(outside, "10002")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("allow-list excludes unlisted codes inside the radius", func(t *testing.T) {
		area := newTestArea(t, 5, []string{"10001"})

		ok, err := area.Contains(inside, "10002")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = area.Contains(inside, "10001")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing postal code falls back to radius", func(t *testing.T) {
		area := newTestArea(t, 5, []string{"10001"})

		ok, err := area.Contains(inside, "")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("radius always applies", func(t *testing.T) {
		area := newTestArea(t, 5, []string{"10001"})

		ok, err := area.Contains(outside, "10001")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCoverageArea_UpdateCenter(t *testing.T) {
	area := newTestArea(t, 5, nil)
	before := area.UpdatedAt

	err := area.UpdateCenter(GeoPoint{Latitude: 95, Longitude: 0})
	assert.Error(t, err)
	assert.Equal(t, 40.0, area.Center.Latitude)

	err = area.UpdateCenter(GeoPoint{Latitude: 41.0, Longitude: -73.5})
	require.NoError(t, err)
	assert.Equal(t, 41.0, area.Center.Latitude)
	assert.False(t, area.UpdatedAt.Before(before))
}

func TestCoverageArea_UpdateRadius(t *testing.T) {
	area := newTestArea(t, 5, nil)

	err := area.UpdateRadius(-1)
	assert.Error(t, err)
	assert.Equal(t, 5.0, area.RadiusMiles)

	err = area.UpdateRadius(12)
	require.NoError(t, err)
	assert.Equal(t, 12.0, area.RadiusMiles)
}

func TestCoverageArea_AddPostalCode(t *testing.T) {
	area := newTestArea(t, 5, nil)

	added, err := area.AddPostalCode("10001")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = area.AddPostalCode("10001")
	require.NoError(t, err)
	assert.False(t, added, "duplicate add should be a no-op")
	assert.Equal(t, []string{"10001"}, area.PostalCodes)

	_, err = area.AddPostalCode("not-a-zip")
	assert.Error(t, err)
}

func TestCoverageArea_RemovePostalCode(t *testing.T) {
	area := newTestArea(t, 5, []string{"10001", "10002"})

	assert.True(t, area.RemovePostalCode("10001"))
	assert.False(t, area.RemovePostalCode("10001"))
	assert.Equal(t, []string{"10002"}, area.PostalCodes)
}
