package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBeforeBreaksTiesByID(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := &Message{ID: "a", CreatedAt: at}
	b := &Message{ID: "b", CreatedAt: at}
	later := &Message{ID: "0", CreatedAt: at.Add(time.Millisecond)}

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
	assert.True(t, b.Before(later))
}

func TestValidateContent(t *testing.T) {
	assert.ErrorIs(t, ValidateContent(""), ErrEmptyContent)
	assert.NoError(t, ValidateContent("hi"))
	assert.NoError(t, ValidateContent(strings.Repeat("й", MaxMessageRunes)))
	assert.ErrorIs(t, ValidateContent(strings.Repeat("й", MaxMessageRunes+1)), ErrContentTooLong)
}

func TestPageBoundaryAdmits(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := &Message{ID: "m", CreatedAt: at}

	var none *PageBoundary
	assert.True(t, none.Admits(m))

	assert.True(t, (&PageBoundary{CreatedAt: at, MessageID: "n"}).Admits(m))
	assert.False(t, (&PageBoundary{CreatedAt: at, MessageID: "m"}).Admits(m))
	assert.False(t, (&PageBoundary{CreatedAt: at}).Admits(m))
	assert.True(t, (&PageBoundary{CreatedAt: at.Add(time.Millisecond)}).Admits(m))
}

func TestBoundaryFromID(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, createdAt, err := NewMessageIDs(func() time.Time { return at.Add(750 * time.Microsecond) }).Next()
	require.NoError(t, err)
	assert.Equal(t, at, createdAt)

	b, ok := BoundaryFromID(id)
	require.True(t, ok)
	assert.Equal(t, &PageBoundary{CreatedAt: at, MessageID: id}, b)
	assert.False(t, b.Admits(&Message{ID: id, CreatedAt: createdAt}))

	_, ok = BoundaryFromID(uuid.NewString())
	assert.False(t, ok, "v4 ids carry no timestamp")
	_, ok = BoundaryFromID("nope")
	assert.False(t, ok)
}

func TestMessageIDsAreTimeOrdered(t *testing.T) {
	gen := NewMessageIDs(nil)
	prev, _, err := gen.Next()
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		next, _, err := gen.Next()
		require.NoError(t, err)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestMessageIDsEmbedCreatedAt(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := at
	gen := NewMessageIDs(func() time.Time { return now })

	var prev string
	for i := 0; i < 0x1000+5; i++ {
		id, createdAt, err := gen.Next()
		require.NoError(t, err)
		u := uuid.MustParse(id)
		assert.Equal(t, uuid.Version(7), u.Version())
		assert.Equal(t, uuid.RFC4122, u.Variant())

		b, ok := BoundaryFromID(id)
		require.True(t, ok)
		assert.Equal(t, createdAt, b.CreatedAt)
		assert.Less(t, prev, id)
		prev = id
	}

	// The sequence ran out, so the generator moved to the next millisecond.
	_, createdAt, err := gen.Next()
	require.NoError(t, err)
	assert.Equal(t, at.Add(time.Millisecond), createdAt)

	// A clock that steps back does not reorder ids.
	now = at.Add(-time.Hour)
	id, createdAt, err := gen.Next()
	require.NoError(t, err)
	assert.Less(t, prev, id)
	assert.Equal(t, at.Add(time.Millisecond), createdAt)
}
