package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice rolling.
// All rolls are logged at debug level with pool size, values, and
// classification, so a disputed roll can always be audited.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source { return r.src }

// Pool rolls and classifies a standard dice pool.
//
// Postcondition: outcome logged at debug level.
func (r *Roller) Pool(dice int, limit *int) Outcome {
	o := RollPool(r.src, dice, limit)
	r.logPool("pool roll", o)
	return o
}

// Exploding rolls a pool under the Rule of Six.
//
// Postcondition: outcome logged at debug level, including explosion count.
func (r *Roller) Exploding(dice int, limit *int) Outcome {
	o := RollExploding(r.src, dice, limit)
	r.logPool("exploding roll", o)
	return o
}

// Sum rolls dice n-sided dice and returns the raw values.
func (r *Roller) Sum(dice, sides int) []int {
	rolls := RollSum(r.src, dice, sides)
	r.logger.Debug("sum roll",
		zap.Int("dice", dice),
		zap.Int("sides", sides),
		zap.Ints("rolls", rolls),
		zap.Int("total", Sum(rolls)),
	)
	return rolls
}

func (r *Roller) logPool(msg string, o Outcome) {
	fields := []zap.Field{
		zap.Int("dice", o.Dice),
		zap.Ints("rolls", o.Rolls),
		zap.Int("successes", o.Successes),
		zap.Int("fails", o.Fails),
		zap.Bool("glitch", o.Glitch),
		zap.Bool("critical_glitch", o.CriticalGlitch),
	}
	if o.Limit != nil {
		fields = append(fields, zap.Int("limit", *o.Limit))
	}
	if o.Explosions > 0 {
		fields = append(fields, zap.Int("explosions", o.Explosions))
	}
	r.logger.Debug(msg, fields...)
}
