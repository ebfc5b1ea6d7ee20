package subjecttest_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multicast/core/subject"
	"github.com/dmitrymomot/multicast/core/subject/subjecttest"
)

func TestRecorder_Marble(t *testing.T) {
	t.Parallel()

	tl := subjecttest.NewTimeline()
	s := subject.New[int]()
	rec := subjecttest.NewRecorder[int](tl).WithFormat(func(v int) string {
		return string(rune('a' + v))
	})
	_, err := s.Subscribe(rec.Observer())
	require.NoError(t, err)

	tl.Advance(1)
	require.NoError(t, s.Next(0))
	require.NoError(t, s.Next(1))
	tl.Advance(2)
	require.NoError(t, s.Next(2))
	assert.Equal(t, "-(ab)-c", rec.Marble())

	tl.Advance(1)
	require.NoError(t, s.Complete())
	tl.Advance(5)

	assert.Equal(t, "-(ab)-c|", rec.Marble())
	assert.Equal(t, []int{0, 1, 2}, rec.Values())
	assert.True(t, rec.Completed())
	assert.NoError(t, rec.Err())
}

func TestRecorder_Accessors(t *testing.T) {
	t.Parallel()

	tl := subjecttest.NewTimeline()
	tl.Advance(-3)
	require.Zero(t, tl.Now())

	s := subject.New[int]()
	rec := subjecttest.NewRecorder[int](tl).WithFormat(strconv.Itoa)
	_, err := s.Subscribe(rec.Observer())
	require.NoError(t, err)

	boom := errors.New("boom")
	require.NoError(t, s.Next(4))
	tl.Advance(2)
	require.NoError(t, s.Error(boom))

	assert.Equal(t, []subject.Notification[int]{
		subject.OnNext(4),
		subject.OnError[int](boom),
	}, rec.Notifications())

	records := rec.Records()
	require.Len(t, records, 2)
	assert.Equal(t, 0, records[0].Frame)
	assert.Equal(t, 2, records[1].Frame)

	assert.Same(t, boom, rec.Err())
	assert.False(t, rec.Completed())
	assert.Equal(t, "4-#", rec.Marble())
}
