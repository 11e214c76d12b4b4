// Package generator builds arithmetic questions.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/mathdrill/internal/model"
)

// Range is an inclusive operand interval.
type Range struct {
	Min int
	Max int
}

// Ranges holds the operand interval per operator for a difficulty tier.
type Ranges struct {
	Add Range
	Sub Range
	Mul Range
	Div Range
}

var tiers = map[model.Difficulty]Ranges{
	model.Easy: {
		Add: Range{1, 20},
		Sub: Range{1, 20},
		Mul: Range{1, 10},
		Div: Range{1, 10},
	},
	model.Medium: {
		Add: Range{5, 99},
		Sub: Range{5, 99},
		Mul: Range{2, 12},
		Div: Range{2, 12},
	},
	model.Hard: {
		Add: Range{10, 200},
		Sub: Range{10, 200},
		Mul: Range{2, 20},
		Div: Range{2, 20},
	},
}

// RangesFor returns the operand intervals for a tier. Unknown tiers use medium.
func RangesFor(d model.Difficulty) Ranges {
	if r, ok := tiers[d]; ok {
		return r
	}
	return tiers[model.Medium]
}

// For returns the interval used for op.
func (r Ranges) For(op model.Operator) Range {
	switch op {
	case model.OpSub:
		return r.Sub
	case model.OpMul:
		return r.Mul
	case model.OpDiv:
		return r.Div
	default:
		return r.Add
	}
}

// Generator produces randomized arithmetic questions.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Generator drawing from src.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Generate picks an operator uniformly from ops and builds a question for the tier.
// ops must be non-empty.
func (g *Generator) Generate(ops []model.Operator, d model.Difficulty) model.Question {
	op := ops[g.rnd.Intn(len(ops))]
	r := RangesFor(d).For(op)

	switch op {
	case model.OpSub:
		a, b := g.pick(r), g.pick(r)
		// Hard allows negative results.
		if d != model.Hard && b > a {
			a, b = b, a
		}
		return model.Question{Op: op, Left: a, Right: b, Answer: a - b}
	case model.OpMul:
		a, b := g.pick(r), g.pick(r)
		return model.Question{Op: op, Left: a, Right: b, Answer: a * b}
	case model.OpDiv:
		divisor, quotient := g.pick(r), g.pick(r)
		return model.Question{Op: op, Left: divisor * quotient, Right: divisor, Answer: quotient}
	default:
		a, b := g.pick(r), g.pick(r)
		return model.Question{Op: model.OpAdd, Left: a, Right: b, Answer: a + b}
	}
}

func (g *Generator) pick(r Range) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + g.rnd.Intn(r.Max-r.Min+1)
}
