package subject_test

import (
	"fmt"

	"github.com/dmitrymomot/multicast/core/subject"
)

func ExampleSubject() {
	s := subject.New[int]()

	var l1, l2, l3 []int
	record := func(out *[]int) subject.Observer[int] {
		return subject.NextFunc(func(v int) { *out = append(*out, v) })
	}

	for v := 1; v <= 4; v++ {
		_ = s.Next(v)
	}
	sub1, _ := s.Subscribe(record(&l1))
	_ = s.Next(5)
	sub2, _ := s.Subscribe(record(&l2))
	_ = s.Next(6)
	_ = s.Next(7)
	sub1.Unsubscribe()
	_ = s.Next(8)
	sub2.Unsubscribe()
	_ = s.Next(9)
	_ = s.Next(10)
	sub3, _ := s.Subscribe(record(&l3))
	_ = s.Next(11)
	sub3.Unsubscribe()

	fmt.Println(l1, l2, l3)
	// Output: [5 6 7] [6 7 8] [11]
}

func ExampleSubject_Subscribe_afterComplete() {
	s := subject.New[string]()
	_ = s.Complete()

	sub, _ := s.Subscribe(subject.Observer[string]{
		Complete: func() { fmt.Println("complete") },
	})
	fmt.Println("closed:", sub.Closed())
	// Output:
	// complete
	// closed: true
}
