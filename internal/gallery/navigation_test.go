package gallery_test

import (
	"errors"
	"testing"

	"lightbox/internal/gallery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPreviousRoundTrip(t *testing.T) {
	for n := 1; n <= 20; n++ {
		for i := 0; i < n; i++ {
			assert.Equal(t, i, gallery.Previous(gallery.Next(i, n), n), "n=%d i=%d", n, i)
			assert.Equal(t, i, gallery.Next(gallery.Previous(i, n), n), "n=%d i=%d", n, i)
		}
	}
}

func TestNextPreviousStayInRange(t *testing.T) {
	for n := 1; n <= 20; n++ {
		for i := 0; i < n; i++ {
			next := gallery.Next(i, n)
			prev := gallery.Previous(i, n)
			assert.True(t, next >= 0 && next < n, "next(%d, %d) = %d", i, n, next)
			assert.True(t, prev >= 0 && prev < n, "previous(%d, %d) = %d", i, n, prev)
		}
	}
}

func TestNextWraps(t *testing.T) {
	assert.Equal(t, 0, gallery.Next(2, 3))
	assert.Equal(t, 2, gallery.Previous(0, 3))
	assert.Equal(t, 0, gallery.Next(0, 1))
	assert.Equal(t, 0, gallery.Previous(0, 1))
}

func TestEmptyLengthKeepsCurrent(t *testing.T) {
	assert.Equal(t, 0, gallery.Next(0, 0))
	assert.Equal(t, 0, gallery.Previous(0, 0))
	assert.Equal(t, 3, gallery.Next(3, -1))
}

func TestGoToRejectsOutOfRange(t *testing.T) {
	i, err := gallery.GoTo(4, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, i)

	for _, idx := range []int{-1, 6, 100} {
		_, err := gallery.GoTo(idx, 6)
		var oor *gallery.OutOfRangeError
		require.True(t, errors.As(err, &oor), "GoTo(%d)", idx)
		assert.Equal(t, idx, oor.Index)
		assert.Equal(t, 6, oor.Length)
	}

	_, err = gallery.GoTo(0, 0)
	assert.Error(t, err)
}
