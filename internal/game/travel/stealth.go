package travel

import (
	"math"

	"go.uber.org/zap"
)

// StealthResult is the outcome of one stealth check.
type StealthResult struct {
	Success bool
	Roll    int
	DC      int
}

// StealthCheck rolls a d20 against round(biome.stealth_dc + mode.stealth_dc_mod).
// The roll succeeds when it meets or beats the DC. Only the dice source is
// consumed; no state changes.
//
// Postcondition: Returns an ErrNotFound-wrapped error for an unknown biome or mode.
func (e *Engine) StealthCheck(biomeID, modeID string) (StealthResult, error) {
	biome, err := e.catalogs.Biomes.Get(biomeID)
	if err != nil {
		return StealthResult{}, err
	}
	mode, err := e.catalogs.Modes.Get(modeID)
	if err != nil {
		return StealthResult{}, err
	}
	dc := int(math.RoundToEven(biome.StealthDC + mode.StealthDCMod))
	roll := e.roller.D20()
	res := StealthResult{Success: roll >= dc, Roll: roll, DC: dc}
	e.logger.Debug("stealth check",
		zap.String("biome", biomeID),
		zap.String("mode", modeID),
		zap.Int("roll", roll),
		zap.Int("dc", dc),
		zap.Bool("success", res.Success),
	)
	return res, nil
}
