package subject_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multicast/core/logger"
	"github.com/dmitrymomot/multicast/core/subject"
)

// collect records values as-is, errors as "E" and completion as "C".
func collect(out *[]any) subject.Observer[int] {
	return subject.Observer[int]{
		Next:     func(v int) { *out = append(*out, v) },
		Error:    func(error) { *out = append(*out, "E") },
		Complete: func() { *out = append(*out, "C") },
	}
}

func newSubject() *subject.Subject[int] {
	return subject.New[int](subject.WithLogger(logger.Discard()))
}

func mustSubscribe(t *testing.T, s subject.Observable[int], o subject.Observer[int]) *subject.Subscription {
	t.Helper()
	sub, err := s.Subscribe(o)
	require.NoError(t, err)
	return sub
}

func TestSubject_PumpsValuesThrough(t *testing.T) {
	t.Parallel()

	s := subject.New[string](subject.WithLogger(logger.Discard()))
	var got []string
	completed := false

	_, err := s.Subscribe(subject.Observer[string]{
		Next:     func(v string) { got = append(got, v) },
		Complete: func() { completed = true },
	})
	require.NoError(t, err)

	require.NoError(t, s.Next("foo"))
	require.NoError(t, s.Next("bar"))
	require.NoError(t, s.Complete())

	assert.Equal(t, []string{"foo", "bar"}, got)
	assert.True(t, completed)
}

func TestSubject_FanOut(t *testing.T) {
	t.Parallel()

	s := newSubject()
	results := make([][]any, 3)
	for i := range results {
		mustSubscribe(t, s, collect(&results[i]))
	}

	for v := 1; v <= 5; v++ {
		require.NoError(t, s.Next(v))
	}
	require.NoError(t, s.Complete())

	for i := range results {
		assert.Equal(t, []any{1, 2, 3, 4, 5, "C"}, results[i], "listener %d", i)
	}
}

func TestSubject_SubscriptionOrder(t *testing.T) {
	t.Parallel()

	s := newSubject()
	var order []string
	mustSubscribe(t, s, subject.NextFunc(func(int) { order = append(order, "first") }))
	mustSubscribe(t, s, subject.NextFunc(func(int) { order = append(order, "second") }))
	mustSubscribe(t, s, subject.NextFunc(func(int) { order = append(order, "third") }))

	require.NoError(t, s.Next(1))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestSubject_ArriveAndLeave(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		terminate func(s *subject.Subject[int])
		want1     []any
		want2     []any
		want3     []any
	}{
		{
			name: "subject does not complete",
			want1: []any{5, 6, 7},
			want2: []any{6, 7, 8},
			want3: []any{11},
		},
		{
			name:      "subject completes",
			terminate: func(s *subject.Subject[int]) { _ = s.Complete() },
			want1:     []any{5, 6, 7},
			want2:     []any{6, 7, "C"},
			want3:     []any{"C"},
		},
		{
			name:      "subject errors",
			terminate: func(s *subject.Subject[int]) { _ = s.Error(errors.New("err")) },
			want1:     []any{5, 6, 7},
			want2:     []any{6, 7, "E"},
			want3:     []any{"E"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newSubject()
			var r1, r2, r3 []any

			for v := 1; v <= 4; v++ {
				require.NoError(t, s.Next(v))
			}
			sub1 := mustSubscribe(t, s, collect(&r1))
			require.NoError(t, s.Next(5))
			sub2 := mustSubscribe(t, s, collect(&r2))
			require.NoError(t, s.Next(6))
			require.NoError(t, s.Next(7))
			sub1.Unsubscribe()

			if tt.terminate != nil {
				tt.terminate(s)
				sub2.Unsubscribe()
				sub3 := mustSubscribe(t, s, collect(&r3))
				sub3.Unsubscribe()
			} else {
				require.NoError(t, s.Next(8))
				sub2.Unsubscribe()
				require.NoError(t, s.Next(9))
				require.NoError(t, s.Next(10))
				sub3 := mustSubscribe(t, s, collect(&r3))
				require.NoError(t, s.Next(11))
				sub3.Unsubscribe()
			}

			assert.Equal(t, tt.want1, r1)
			assert.Equal(t, tt.want2, r2)
			assert.Equal(t, tt.want3, r3)
		})
	}
}

func TestSubject_CompletesBeforeAnyValue(t *testing.T) {
	t.Parallel()

	s := newSubject()
	r1 := []any{}
	var r2, r3 []any

	sub1 := mustSubscribe(t, s, collect(&r1))
	sub2 := mustSubscribe(t, s, collect(&r2))
	sub1.Unsubscribe()
	require.NoError(t, s.Complete())
	sub2.Unsubscribe()
	sub3 := mustSubscribe(t, s, collect(&r3))
	sub3.Unsubscribe()

	assert.Empty(t, r1)
	assert.Equal(t, []any{"C"}, r2)
	assert.Equal(t, []any{"C"}, r3)
}

func TestSubject_Dispose(t *testing.T) {
	t.Parallel()

	t.Run("rejects new subscribers and keeps earlier deliveries", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		var r1, r2, r3 []any

		sub1 := mustSubscribe(t, s, collect(&r1))
		require.NoError(t, s.Next(1))
		require.NoError(t, s.Next(2))
		sub2 := mustSubscribe(t, s, collect(&r2))
		require.NoError(t, s.Next(3))
		require.NoError(t, s.Next(4))
		require.NoError(t, s.Next(5))

		sub1.Unsubscribe()
		sub2.Unsubscribe()
		require.NoError(t, s.Dispose())

		sub3, err := s.Subscribe(collect(&r3))
		require.ErrorIs(t, err, subject.ErrDisposed)
		assert.Nil(t, sub3)

		assert.Equal(t, []any{1, 2, 3, 4, 5}, r1)
		assert.Equal(t, []any{3, 4, 5}, r2)
		assert.Empty(t, r3)
	})

	t.Run("rejects every sink operation", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		require.NoError(t, s.Dispose())

		assert.ErrorIs(t, s.Next(1), subject.ErrDisposed)
		assert.ErrorIs(t, s.Error(errors.New("a")), subject.ErrDisposed)
		assert.ErrorIs(t, s.Complete(), subject.ErrDisposed)
		assert.ErrorIs(t, s.Dispose(), subject.ErrDisposed)
		assert.True(t, s.Disposed())
	})

	t.Run("disposal check wins over terminal state", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		require.NoError(t, s.Complete())
		require.NoError(t, s.Dispose())

		assert.ErrorIs(t, s.Next(1), subject.ErrDisposed)
		assert.ErrorIs(t, s.Complete(), subject.ErrDisposed)
		_, err := s.Subscribe(subject.Observer[int]{})
		assert.ErrorIs(t, err, subject.ErrDisposed)
	})

	t.Run("drops listeners without signalling them", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		var got []any
		sub := mustSubscribe(t, s, collect(&got))

		require.NoError(t, s.Next(1))
		require.NoError(t, s.Dispose())

		assert.Equal(t, []any{1}, got)
		assert.True(t, sub.Closed())
		assert.Zero(t, s.Len())
	})
}

func TestSubject_StickyTermination(t *testing.T) {
	t.Parallel()

	t.Run("no next after complete", func(t *testing.T) {
		t.Parallel()

		s := subject.New[string](subject.WithLogger(logger.Discard()))
		var got []string
		mustSubscribeString(t, s, subject.Observer[string]{
			Next:     func(v string) { got = append(got, v) },
			Complete: func() { got = append(got, "C") },
		})

		require.NoError(t, s.Next("a"))
		require.NoError(t, s.Complete())
		require.NoError(t, s.Next("b"))

		assert.Equal(t, []string{"a", "C"}, got)
	})

	t.Run("no next after error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("wut?")
		s := newSubject()
		var got []any
		mustSubscribe(t, s, subject.Observer[int]{
			Next:  func(v int) { got = append(got, v) },
			Error: func(err error) { got = append(got, err) },
		})

		require.NoError(t, s.Next(1))
		require.NoError(t, s.Error(boom))
		require.NoError(t, s.Next(2))

		assert.Equal(t, []any{1, boom}, got)
	})

	t.Run("first terminal signal wins", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		var got []any
		mustSubscribe(t, s, collect(&got))

		require.NoError(t, s.Complete())
		require.NoError(t, s.Error(errors.New("late")))
		require.NoError(t, s.Complete())

		var late []any
		mustSubscribe(t, s, collect(&late))

		assert.Equal(t, []any{"C"}, got)
		assert.Equal(t, []any{"C"}, late)
		assert.NoError(t, s.Err())
	})

	t.Run("late subscriber receives the latched error verbatim", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		s := newSubject()
		require.NoError(t, s.Error(boom))
		require.NoError(t, s.Next(1))

		var received []error
		sub := mustSubscribe(t, s, subject.Observer[int]{
			Next:  func(int) { t.Fatal("value after termination") },
			Error: func(err error) { received = append(received, err) },
		})

		require.Len(t, received, 1)
		assert.Same(t, boom, received[0])
		assert.True(t, sub.Closed())
		sub.Unsubscribe()
		assert.Same(t, boom, s.Err())
		assert.True(t, s.Terminated())
	})

	t.Run("nil error is rejected", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		require.ErrorIs(t, s.Error(nil), subject.ErrNilError)
		assert.False(t, s.Terminated())

		var got []any
		mustSubscribe(t, s, collect(&got))
		require.NoError(t, s.Next(1))
		assert.Equal(t, []any{1}, got)
	})

	t.Run("termination closes registered subscriptions", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		sub := mustSubscribe(t, s, subject.Observer[int]{})
		require.NoError(t, s.Complete())

		assert.True(t, sub.Closed())
		assert.False(t, s.Observed())
	})
}

func mustSubscribeString(t *testing.T, s subject.Observable[string], o subject.Observer[string]) {
	t.Helper()
	_, err := s.Subscribe(o)
	require.NoError(t, err)
}

func TestSubject_DuplicateObserver(t *testing.T) {
	t.Parallel()

	s := newSubject()
	var got []any
	o := collect(&got)

	sub1 := mustSubscribe(t, s, o)
	sub2 := mustSubscribe(t, s, o)
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Next(1))
	sub1.Unsubscribe()
	require.NoError(t, s.Next(2))
	sub2.Unsubscribe()
	require.NoError(t, s.Next(3))

	assert.Equal(t, []any{1, 1, 2}, got)
}

func TestSubscription_UnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newSubject()
	var a, b []any
	subA := mustSubscribe(t, s, collect(&a))
	mustSubscribe(t, s, collect(&b))

	subA.Unsubscribe()
	subA.Unsubscribe()
	assert.True(t, subA.Closed())
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Next(1))
	assert.Empty(t, a)
	assert.Equal(t, []any{1}, b)

	var nilSub *subject.Subscription
	assert.NotPanics(t, nilSub.Unsubscribe)
	assert.True(t, nilSub.Closed())
}

func TestSubject_Reentrancy(t *testing.T) {
	t.Parallel()

	t.Run("listener added during delivery misses the current value", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		var late []any
		added := false
		mustSubscribe(t, s, subject.NextFunc(func(int) {
			if !added {
				added = true
				mustSubscribe(t, s, collect(&late))
			}
		}))

		require.NoError(t, s.Next(1))
		require.NoError(t, s.Next(2))

		assert.Equal(t, []any{2}, late)
	})

	t.Run("listener removed during delivery still gets the current value", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		var r2 []any
		var sub2 *subject.Subscription
		mustSubscribe(t, s, subject.NextFunc(func(v int) {
			if v == 1 {
				sub2.Unsubscribe()
			}
		}))
		sub2 = mustSubscribe(t, s, collect(&r2))

		require.NoError(t, s.Next(1))
		require.NoError(t, s.Next(2))

		assert.Equal(t, []any{1}, r2)
		assert.True(t, sub2.Closed())
		assert.Equal(t, 1, s.Len())
	})

	t.Run("nested push skips listeners removed before it started", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		var ra, rb, rc []any
		var subC *subject.Subscription
		mustSubscribe(t, s, subject.NextFunc(func(v int) {
			ra = append(ra, v)
			if v == 1 {
				subC.Unsubscribe()
				require.NoError(t, s.Next(2))
			}
		}))
		mustSubscribe(t, s, collect(&rb))
		subC = mustSubscribe(t, s, collect(&rc))

		require.NoError(t, s.Next(1))
		require.NoError(t, s.Next(3))

		assert.Equal(t, []any{1, 2, 3}, ra)
		assert.Equal(t, []any{2, 1, 3}, rb)
		assert.Equal(t, []any{1}, rc)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("self unsubscribe stops further deliveries", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		var r1, r2 []any
		var sub1 *subject.Subscription
		sub1 = mustSubscribe(t, s, subject.NextFunc(func(v int) {
			r1 = append(r1, v)
			sub1.Unsubscribe()
		}))
		mustSubscribe(t, s, collect(&r2))

		for v := 1; v <= 3; v++ {
			require.NoError(t, s.Next(v))
		}

		assert.Equal(t, []any{1}, r1)
		assert.Equal(t, []any{1, 2, 3}, r2)
	})

	t.Run("complete from a callback stops the value for later listeners", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		var r1, r2 []any
		mustSubscribe(t, s, subject.Observer[int]{
			Next: func(v int) {
				r1 = append(r1, v)
				require.NoError(t, s.Complete())
			},
			Complete: func() { r1 = append(r1, "C") },
		})
		mustSubscribe(t, s, collect(&r2))

		require.NoError(t, s.Next(1))

		assert.Equal(t, []any{1, "C"}, r1)
		assert.Equal(t, []any{"C"}, r2)
		assert.Zero(t, s.Len())
	})

	t.Run("dispose from a callback is a hard stop", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		var r2 []any
		mustSubscribe(t, s, subject.NextFunc(func(int) {
			require.NoError(t, s.Dispose())
		}))
		mustSubscribe(t, s, collect(&r2))

		require.NoError(t, s.Next(1))

		assert.Empty(t, r2)
		assert.ErrorIs(t, s.Next(2), subject.ErrDisposed)
	})

	t.Run("subscribe during completion gets the latched completion", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		var late []any
		var lateSub *subject.Subscription
		mustSubscribe(t, s, subject.Observer[int]{
			Complete: func() {
				lateSub = mustSubscribe(t, s, collect(&late))
			},
		})

		require.NoError(t, s.Complete())

		assert.Equal(t, []any{"C"}, late)
		assert.True(t, lateSub.Closed())
	})

	t.Run("unsubscribe during completion does not skip the signal", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		var r2 []any
		var sub2 *subject.Subscription
		mustSubscribe(t, s, subject.Observer[int]{
			Complete: func() { sub2.Unsubscribe() },
		})
		sub2 = mustSubscribe(t, s, collect(&r2))

		require.NoError(t, s.Complete())
		assert.Equal(t, []any{"C"}, r2)
	})
}

// Random churn from inside callbacks must leave every listener with a gap-free,
// duplicate-free run of the pushed sequence, and the first listener with all of it.
func TestSubject_ChurnInvariance(t *testing.T) {
	t.Parallel()

	const pushes = 500
	rng := rand.New(rand.NewPCG(7, 42))

	s := newSubject()
	var stable []int
	mustSubscribe(t, s, subject.NextFunc(func(v int) { stable = append(stable, v) }))

	type churner struct {
		seen []int
		sub  *subject.Subscription
	}
	var churners []*churner

	var attach func()
	attach = func() {
		c := &churner{}
		c.sub = mustSubscribe(t, s, subject.NextFunc(func(v int) {
			c.seen = append(c.seen, v)
			switch rng.IntN(4) {
			case 0:
				attach()
			case 1:
				c.sub.Unsubscribe()
			case 2:
				if len(churners) > 0 {
					churners[rng.IntN(len(churners))].sub.Unsubscribe()
				}
			}
		}))
		churners = append(churners, c)
	}
	for range 5 {
		attach()
	}

	for v := range pushes {
		require.NoError(t, s.Next(v))
		if rng.IntN(10) == 0 {
			attach()
		}
	}

	want := make([]int, pushes)
	for i := range want {
		want[i] = i
	}
	require.Equal(t, want, stable)

	for i, c := range churners {
		for j := 1; j < len(c.seen); j++ {
			require.Equal(t, c.seen[j-1]+1, c.seen[j], "churner %d saw a gap or duplicate: %v", i, c.seen)
		}
	}

	live := 0
	for _, c := range churners {
		if !c.sub.Closed() {
			live++
		}
	}
	assert.Equal(t, live+1, s.Len())
}

func TestSubject_ListenerFaults(t *testing.T) {
	t.Parallel()

	t.Run("panic propagates and aborts the push", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		var r2 []any
		fail := true
		mustSubscribe(t, s, subject.NextFunc(func(int) {
			if fail {
				panic("listener fault")
			}
		}))
		mustSubscribe(t, s, collect(&r2))

		require.PanicsWithValue(t, "listener fault", func() { _ = s.Next(1) })
		assert.Empty(t, r2)

		fail = false
		require.NoError(t, s.Next(2))
		assert.Equal(t, []any{2}, r2)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("panic during completion still clears the registry", func(t *testing.T) {
		t.Parallel()

		s := newSubject()
		sub := mustSubscribe(t, s, subject.Observer[int]{
			Complete: func() { panic("boom") },
		})

		require.Panics(t, func() { _ = s.Complete() })
		assert.True(t, s.Terminated())
		assert.True(t, sub.Closed())
		assert.Zero(t, s.Len())
	})

	t.Run("panic handler isolates listeners", func(t *testing.T) {
		t.Parallel()

		var faults []*subject.PanicError
		s := subject.New[int](
			subject.WithName("isolated"),
			subject.WithLogger(logger.Discard()),
			subject.WithPanicHandler(func(err *subject.PanicError) { faults = append(faults, err) }),
		)

		boom := errors.New("boom")
		var r2 []any
		mustSubscribe(t, s, subject.Observer[int]{
			Next:     func(int) { panic(boom) },
			Complete: func() { panic("complete fault") },
		})
		mustSubscribe(t, s, collect(&r2))

		require.NoError(t, s.Next(1))
		require.NoError(t, s.Complete())

		assert.Equal(t, []any{1, "C"}, r2)
		require.Len(t, faults, 2)
		assert.Equal(t, subject.KindNext, faults[0].Kind)
		assert.ErrorIs(t, faults[0], boom)
		assert.Equal(t, subject.KindComplete, faults[1].Kind)
		assert.Contains(t, faults[1].Error(), "complete fault")
	})
}

func TestSubject_AsObserver(t *testing.T) {
	t.Parallel()

	source := func(o subject.Observer[int]) {
		for v := 1; v <= 5; v++ {
			o.Next(v)
		}
		o.Complete()
	}

	s := newSubject()
	var got []any
	mustSubscribe(t, s, collect(&got))

	source(s.AsObserver())

	assert.Equal(t, []any{1, 2, 3, 4, 5, "C"}, got)
	assert.True(t, s.Terminated())

	disposed := newSubject()
	require.NoError(t, disposed.Dispose())
	assert.NotPanics(t, func() { source(disposed.AsObserver()) })
}

func TestSubject_Observed(t *testing.T) {
	t.Parallel()

	s := newSubject()
	assert.False(t, s.Observed())

	sub := mustSubscribe(t, s, subject.Observer[int]{})
	assert.True(t, s.Observed())
	assert.Equal(t, 1, s.Len())

	sub.Unsubscribe()
	assert.False(t, s.Observed())
}
