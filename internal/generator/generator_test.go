package generator

import (
	"math/rand"
	"testing"

	"github.com/verte-zerg/mathdrill/internal/model"
)

func TestGenerateStaysInRange(t *testing.T) {
	g := NewWithSource(rand.NewSource(1))
	for _, d := range model.Difficulties {
		ranges := RangesFor(d)
		for _, op := range model.Operators {
			r := ranges.For(op)
			for i := 0; i < 500; i++ {
				q := g.Generate([]model.Operator{op}, d)
				if q.Op != op {
					t.Fatalf("expected op %s, got %s", op, q.Op)
				}
				switch op {
				case model.OpDiv:
					if q.Right < r.Min || q.Right > r.Max {
						t.Fatalf("%s divisor %d out of [%d,%d]", d, q.Right, r.Min, r.Max)
					}
					if q.Answer < r.Min || q.Answer > r.Max {
						t.Fatalf("%s quotient %d out of [%d,%d]", d, q.Answer, r.Min, r.Max)
					}
					if q.Left != q.Right*q.Answer {
						t.Fatalf("dividend %d != %d*%d", q.Left, q.Right, q.Answer)
					}
				default:
					if q.Left < r.Min || q.Left > r.Max || q.Right < r.Min || q.Right > r.Max {
						t.Fatalf("%s %s operands %d,%d out of [%d,%d]", d, op, q.Left, q.Right, r.Min, r.Max)
					}
				}
			}
		}
	}
}

func TestGenerateAnswers(t *testing.T) {
	g := NewWithSource(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		q := g.Generate(model.Operators, model.Medium)
		var want int
		switch q.Op {
		case model.OpAdd:
			want = q.Left + q.Right
		case model.OpSub:
			want = q.Left - q.Right
		case model.OpMul:
			want = q.Left * q.Right
		case model.OpDiv:
			if q.Left%q.Right != 0 {
				t.Fatalf("non-integer quotient for %s", q.Text())
			}
			want = q.Left / q.Right
		}
		if q.Answer != want {
			t.Fatalf("%s: expected %d, got %d", q.Text(), want, q.Answer)
		}
	}
}

func TestSubtractionSignByTier(t *testing.T) {
	g := NewWithSource(rand.NewSource(3))
	sub := []model.Operator{model.OpSub}
	for _, d := range []model.Difficulty{model.Easy, model.Medium} {
		for i := 0; i < 1000; i++ {
			if q := g.Generate(sub, d); q.Answer < 0 {
				t.Fatalf("%s produced negative result %s", d, q.Text())
			}
		}
	}
	negative := false
	for i := 0; i < 1000 && !negative; i++ {
		negative = g.Generate(sub, model.Hard).Answer < 0
	}
	if !negative {
		t.Fatalf("expected hard subtraction to produce a negative result")
	}
}

func TestGenerateUsesOnlyGivenOperators(t *testing.T) {
	g := NewWithSource(rand.NewSource(11))
	ops := []model.Operator{model.OpMul, model.OpDiv}
	seen := map[model.Operator]bool{}
	for i := 0; i < 200; i++ {
		seen[g.Generate(ops, model.Easy).Op] = true
	}
	if seen[model.OpAdd] || seen[model.OpSub] {
		t.Fatalf("unexpected operator in %v", seen)
	}
	if !seen[model.OpMul] || !seen[model.OpDiv] {
		t.Fatalf("expected both operators, got %v", seen)
	}
}

func TestUnknownDifficultyFallsBackToMedium(t *testing.T) {
	if RangesFor("nightmare") != RangesFor(model.Medium) {
		t.Fatalf("expected medium ranges for unknown tier")
	}
}

func TestQuestionText(t *testing.T) {
	q := model.Question{Op: model.OpDiv, Left: 42, Right: 6, Answer: 7}
	if got := q.Text(); got != "42 / 6" {
		t.Fatalf("unexpected text %q", got)
	}
}
