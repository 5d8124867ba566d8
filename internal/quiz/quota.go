package quiz

import (
	"fmt"

	"github.com/samber/lo"
)

// Quota maps a question type to a target count.
type Quota map[Type]int

// Total returns the sum over all known types.
func (q Quota) Total() int {
	return lo.SumBy(Types, func(t Type) int { return q[t] })
}

// Validate rejects negative counts and unknown types.
func (q Quota) Validate() error {
	for t, n := range q {
		if !t.Valid() {
			return fmt.Errorf("unknown question type %q", t)
		}
		if n < 0 {
			return fmt.Errorf("%s count must not be negative, got %d", t, n)
		}
	}
	return nil
}

// Met reports whether got covers every type's target in q.
func (q Quota) Met(got Quota) bool {
	return lo.EveryBy(Types, func(t Type) bool { return got[t] >= q[t] })
}

// Count tallies questions by type.
func Count(qs []Question) Quota {
	out := Quota{}
	for _, q := range qs {
		out[q.Type()]++
	}
	return out
}

func (q Quota) String() string {
	return fmt.Sprintf("multiple_choice=%d identification=%d true_false=%d",
		q[MultipleChoiceType], q[IdentificationType], q[TrueFalseType])
}
