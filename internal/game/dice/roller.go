package dice

import "go.uber.org/zap"

// Roll evaluates expr against src.
//
// Postcondition: len(result.Dice) == expr.Count and every die is in [1, expr.Sides].
func Roll(expr Expression, src Source) RollResult {
	faces := make([]int, expr.Count)
	for i := range faces {
		faces[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{Expression: expr.Raw, Dice: faces, Modifier: expr.Modifier}
}

// Roller rolls against a Source and logs every result at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller returns a Roller. A nil logger disables logging.
//
// Precondition: src must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr and logs the outcome.
func (r *Roller) Roll(expr Expression) RollResult {
	res := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", res.Expression),
		zap.Ints("dice", res.Dice),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	return res
}

// RollExpr parses and rolls expr.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// D20 rolls one twenty-sided die and returns its face.
func (r *Roller) D20() int {
	return r.Roll(D20).Total()
}
