package pagination

import (
	"encoding/base64"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 123456789, time.FixedZone("CEST", 2*3600))
	encoded := EncodeCursor("fireflies.abc/def+1", ts)
	require.NotEmpty(t, encoded)
	assert.Equal(t, encoded, url.QueryEscape(encoded), "cursor must not need escaping")

	c, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, "fireflies.abc/def+1", c.LastID)
	assert.True(t, ts.Equal(c.Timestamp))
}

func TestEncodeCursor_EmptyID(t *testing.T) {
	assert.Empty(t, EncodeCursor("", time.Now()))
}

func TestDecodeCursor(t *testing.T) {
	c, err := DecodeCursor("")
	assert.NoError(t, err)
	assert.Nil(t, c)

	invalid := []string{
		"not base64!",
		base64.RawURLEncoding.EncodeToString([]byte("no-json")),
		base64.RawURLEncoding.EncodeToString([]byte(`{"t":"2025-01-01T00:00:00Z"}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"i":"x"}`)),
	}
	for _, in := range invalid {
		_, err := DecodeCursor(in)
		assert.ErrorIs(t, err, ErrInvalidCursor, in)
	}
}

type row struct {
	id string
	at time.Time
}

func rowKey(r row) (string, time.Time) { return r.id, r.at }

func TestPaginate(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{{"c", base.Add(3 * time.Hour)}, {"b", base.Add(2 * time.Hour)}, {"a", base.Add(time.Hour)}}

	t.Run("overfetch trimmed", func(t *testing.T) {
		page := Paginate(rows, 2, rowKey)
		assert.Len(t, page.Items, 2)
		assert.True(t, page.HasMore)

		c, err := DecodeCursor(page.Cursor)
		require.NoError(t, err)
		assert.Equal(t, "b", c.LastID)
		assert.True(t, base.Add(2*time.Hour).Equal(c.Timestamp))
	})

	t.Run("last page", func(t *testing.T) {
		page := Paginate(rows, 3, rowKey)
		assert.Len(t, page.Items, 3)
		assert.False(t, page.HasMore)
		assert.Empty(t, page.Cursor)
	})

	t.Run("nil rows become empty", func(t *testing.T) {
		page := Paginate[row](nil, 5, rowKey)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
	})
}
