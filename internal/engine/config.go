package engine

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/mathdrill/internal/model"
)

const (
	// MaxTimerSec bounds user supplied timers.
	MaxTimerSec = 3600
	// BuzzerSec is the fixed buzzer mode duration.
	BuzzerSec = 60
)

var validate = validator.New()

// NormalizeConfig validates cfg and returns it with operators de-duplicated in
// canonical order, the timer clamped, and buzzer mode forced to BuzzerSec.
func NormalizeConfig(cfg model.SessionConfig) (model.SessionConfig, error) {
	if cfg.TimerSec < 0 {
		cfg.TimerSec = 0
	}
	if err := validate.Struct(cfg); err != nil {
		return model.SessionConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	seen := map[model.Operator]bool{}
	for _, op := range cfg.Operators {
		seen[op] = true
	}
	ops := make([]model.Operator, 0, len(seen))
	for _, op := range model.Operators {
		if seen[op] {
			ops = append(ops, op)
		}
	}
	cfg.Operators = ops

	cfg.TimerSec = min(cfg.TimerSec, MaxTimerSec)
	if cfg.Mode == model.ModeBuzzer {
		cfg.TimerSec = BuzzerSec
	}
	return cfg, nil
}
