// Package subjecttest records subject signals on a virtual timeline so tests can
// assert exact sequencing, either as notification lists or as marble strings.
//
//	tl := subjecttest.NewTimeline()
//	rec := subjecttest.NewRecorder[string](tl)
//	_, _ = s.Subscribe(rec.Observer())
//
//	tl.Advance(3)
//	_ = s.Next("x")
//	tl.Advance(3)
//	_ = s.Complete()
//
//	rec.Marble() // "---x--|"
package subjecttest

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/multicast/core/subject"
)

// Timeline is a virtual clock shared by recorders. Frame zero is the start.
type Timeline struct {
	frame int
}

// NewTimeline returns a timeline at frame zero.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Advance moves the clock forward by n frames.
func (tl *Timeline) Advance(n int) {
	if n > 0 {
		tl.frame += n
	}
}

// Now returns the current frame.
func (tl *Timeline) Now() int {
	return tl.frame
}

// Record is a notification stamped with the frame it arrived on.
type Record[T any] struct {
	Frame        int
	Notification subject.Notification[T]
}

// Recorder captures every signal delivered to its observer.
type Recorder[T any] struct {
	timeline *Timeline
	start    int
	records  []Record[T]
	format   func(T) string
}

// NewRecorder creates a recorder whose marble frames are relative to the
// timeline's current frame.
func NewRecorder[T any](tl *Timeline) *Recorder[T] {
	return &Recorder[T]{
		timeline: tl,
		start:    tl.Now(),
		format:   func(v T) string { return fmt.Sprint(v) },
	}
}

// WithFormat sets how values are rendered by Marble.
func (r *Recorder[T]) WithFormat(fn func(T) string) *Recorder[T] {
	r.format = fn
	return r
}

// Observer returns a listener that records into r.
func (r *Recorder[T]) Observer() subject.Observer[T] {
	return subject.Observer[T]{
		Next:     func(v T) { r.add(subject.OnNext(v)) },
		Error:    func(err error) { r.add(subject.OnError[T](err)) },
		Complete: func() { r.add(subject.OnComplete[T]()) },
	}
}

func (r *Recorder[T]) add(n subject.Notification[T]) {
	r.records = append(r.records, Record[T]{Frame: r.timeline.Now() - r.start, Notification: n})
}

// Records returns every record in arrival order.
func (r *Recorder[T]) Records() []Record[T] {
	return append([]Record[T](nil), r.records...)
}

// Notifications returns the recorded signals without frames.
func (r *Recorder[T]) Notifications() []subject.Notification[T] {
	out := make([]subject.Notification[T], 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Notification)
	}
	return out
}

// Values returns the recorded values in order.
func (r *Recorder[T]) Values() []T {
	out := make([]T, 0, len(r.records))
	for _, rec := range r.records {
		if rec.Notification.Kind == subject.KindNext {
			out = append(out, rec.Notification.Value)
		}
	}
	return out
}

// Completed reports whether a completion was recorded.
func (r *Recorder[T]) Completed() bool {
	for _, rec := range r.records {
		if rec.Notification.Kind == subject.KindComplete {
			return true
		}
	}
	return false
}

// Err returns the recorded error, if any.
func (r *Recorder[T]) Err() error {
	for _, rec := range r.records {
		if rec.Notification.Kind == subject.KindError {
			return rec.Notification.Err
		}
	}
	return nil
}

// Marble renders the recording: "-" for a frame with no signal, the formatted value
// for a next, "|" for completion and "#" for an error. Several signals on one frame
// are grouped in parentheses. Rendering stops at the terminal frame, or at the
// timeline's current frame while the recording is still open.
func (r *Recorder[T]) Marble() string {
	last := r.timeline.Now() - r.start
	byFrame := make(map[int][]string)
	for _, rec := range r.records {
		byFrame[rec.Frame] = append(byFrame[rec.Frame], r.symbol(rec.Notification))
		if rec.Notification.Terminal() {
			last = rec.Frame
		}
	}

	var b strings.Builder
	for f := 0; f <= last; f++ {
		symbols := byFrame[f]
		switch len(symbols) {
		case 0:
			b.WriteByte('-')
		case 1:
			b.WriteString(symbols[0])
		default:
			b.WriteByte('(')
			b.WriteString(strings.Join(symbols, ""))
			b.WriteByte(')')
		}
	}
	return b.String()
}

func (r *Recorder[T]) symbol(n subject.Notification[T]) string {
	switch n.Kind {
	case subject.KindComplete:
		return "|"
	case subject.KindError:
		return "#"
	default:
		return r.format(n.Value)
	}
}
