package quota

import (
	"slices"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/studyquest/studyquest/internal/quiz"
)

func TestDistribute(t *testing.T) {
	tests := []struct {
		total, n int
		want     []int
	}{
		{2, 3, []int{1, 1, 0}},
		{1, 3, []int{1, 0, 0}},
		{0, 3, []int{0, 0, 0}},
		{7, 2, []int{4, 3}},
		{10, 1, []int{10}},
		{9, 3, []int{3, 3, 3}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Distribute(tt.total, tt.n), "Distribute(%d, %d)", tt.total, tt.n)
	}
}

func TestDistribute_Properties(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for n := 1; n <= 12; n++ {
			got := Distribute(total, n)
			if len(got) != n {
				t.Fatalf("Distribute(%d, %d): len %d", total, n, len(got))
			}
			if s := lo.Sum(got); s != total {
				t.Fatalf("Distribute(%d, %d): sum %d", total, n, s)
			}
			if slices.Max(got)-slices.Min(got) > 1 {
				t.Fatalf("Distribute(%d, %d): uneven %v", total, n, got)
			}
			// Extras go to the earliest chunks.
			if !slices.IsSortedFunc(got, func(a, b int) int { return b - a }) {
				t.Fatalf("Distribute(%d, %d): extras not front-loaded %v", total, n, got)
			}
		}
	}
}

func TestDistribute_Degenerate(t *testing.T) {
	assert.Nil(t, Distribute(5, 0))
	assert.Equal(t, []int{0, 0}, Distribute(-3, 2))
}

func TestSplit(t *testing.T) {
	q := quiz.Quota{
		quiz.MultipleChoiceType: 2,
		quiz.IdentificationType: 1,
		quiz.TrueFalseType:      1,
	}
	got := Split(q, 3)
	assert.Equal(t, []quiz.Quota{
		{quiz.MultipleChoiceType: 1, quiz.IdentificationType: 1, quiz.TrueFalseType: 1},
		{quiz.MultipleChoiceType: 1, quiz.IdentificationType: 0, quiz.TrueFalseType: 0},
		{quiz.MultipleChoiceType: 0, quiz.IdentificationType: 0, quiz.TrueFalseType: 0},
	}, got)
}

func TestCap(t *testing.T) {
	requested := quiz.Quota{quiz.MultipleChoiceType: 3, quiz.TrueFalseType: 1}
	generated := quiz.Quota{quiz.MultipleChoiceType: 2, quiz.TrueFalseType: 2}
	share := quiz.Quota{quiz.MultipleChoiceType: 2, quiz.TrueFalseType: 1}

	got := Cap(share, requested, generated)
	assert.Equal(t, 1, got[quiz.MultipleChoiceType])
	assert.Equal(t, 0, got[quiz.TrueFalseType], "overshoot never goes negative")
	assert.Equal(t, 0, got[quiz.IdentificationType])
}
