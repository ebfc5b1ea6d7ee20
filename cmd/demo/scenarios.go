package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/multicast/core/subject"
)

// listener records what one observer saw as a printable sequence.
type listener struct {
	name string
	seen []string
}

func (l *listener) observer() subject.Observer[int] {
	return subject.Observer[int]{
		Next:     func(v int) { l.seen = append(l.seen, fmt.Sprint(v)) },
		Error:    func(err error) { l.seen = append(l.seen, "error("+err.Error()+")") },
		Complete: func() { l.seen = append(l.seen, "complete") },
	}
}

func (l *listener) String() string {
	return l.name + "=[" + strings.Join(l.seen, " ") + "]"
}

func attach(s *subject.Subject[int], l *listener) (*subject.Subscription, error) {
	return s.Subscribe(l.observer())
}

// churn attaches and detaches listeners between pushes. Late joiners miss
// earlier values and detached listeners stop receiving immediately.
func churn(log *slog.Logger) ([]*listener, error) {
	s := subject.New[int](subject.WithName("churn"), subject.WithLogger(log))
	l1, l2, l3 := &listener{name: "L1"}, &listener{name: "L2"}, &listener{name: "L3"}

	push := func(vs ...int) error {
		for _, v := range vs {
			if err := s.Next(v); err != nil {
				return err
			}
		}
		return nil
	}

	if err := push(1, 2, 3, 4); err != nil {
		return nil, err
	}
	sub1, err := attach(s, l1)
	if err != nil {
		return nil, err
	}
	if err := push(5); err != nil {
		return nil, err
	}
	sub2, err := attach(s, l2)
	if err != nil {
		return nil, err
	}
	if err := push(6, 7); err != nil {
		return nil, err
	}
	sub1.Unsubscribe()
	if err := push(8); err != nil {
		return nil, err
	}
	sub2.Unsubscribe()
	if err := push(9, 10); err != nil {
		return nil, err
	}
	sub3, err := attach(s, l3)
	if err != nil {
		return nil, err
	}
	if err := push(11); err != nil {
		return nil, err
	}
	sub3.Unsubscribe()

	return []*listener{l1, l2, l3}, nil
}

// latch completes the subject between attaches. Listeners arriving after
// completion get it replayed on attach.
func latch(log *slog.Logger) ([]*listener, error) {
	s := subject.New[int](subject.WithName("latch"), subject.WithLogger(log))
	l1, l2, l3 := &listener{name: "L1"}, &listener{name: "L2"}, &listener{name: "L3"}

	sub1, err := attach(s, l1)
	if err != nil {
		return nil, err
	}
	sub2, err := attach(s, l2)
	if err != nil {
		return nil, err
	}
	sub1.Unsubscribe()
	if err := s.Complete(); err != nil {
		return nil, err
	}
	sub2.Unsubscribe()
	sub3, err := attach(s, l3)
	if err != nil {
		return nil, err
	}
	sub3.Unsubscribe()

	return []*listener{l1, l2, l3}, nil
}

// lockout disposes the subject and shows that attach is refused while earlier
// observations are untouched.
func lockout(log *slog.Logger) ([]*listener, error) {
	s := subject.New[int](subject.WithName("lockout"), subject.WithLogger(log))
	l1 := &listener{name: "L1"}

	if _, err := attach(s, l1); err != nil {
		return nil, err
	}
	for _, v := range []int{1, 2} {
		if err := s.Next(v); err != nil {
			return nil, err
		}
	}
	if err := s.Dispose(); err != nil {
		return nil, err
	}

	l2 := &listener{name: "L2"}
	if _, err := attach(s, l2); !errors.Is(err, subject.ErrDisposed) {
		return nil, fmt.Errorf("attach after dispose: want %v, got %v", subject.ErrDisposed, err)
	}
	l2.seen = append(l2.seen, "refused")

	return []*listener{l1, l2}, nil
}

func runScenarios(w io.Writer, log *slog.Logger) error {
	scenarios := []struct {
		name string
		run  func(*slog.Logger) ([]*listener, error)
	}{
		{name: "churn", run: churn},
		{name: "latch", run: latch},
		{name: "lockout", run: lockout},
	}

	for _, sc := range scenarios {
		ls, err := sc.run(log)
		if err != nil {
			return fmt.Errorf("%s: %w", sc.name, err)
		}
		parts := make([]string, len(ls))
		for i, l := range ls {
			parts[i] = l.String()
		}
		if _, err := fmt.Fprintf(w, "%-8s %s\n", sc.name+":", strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}
