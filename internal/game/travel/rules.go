package travel

import (
	"fmt"

	"github.com/cory-johannsen/hexcrawl/internal/config"
	"github.com/cory-johannsen/hexcrawl/internal/game/catalog"
	"github.com/cory-johannsen/hexcrawl/internal/game/party"
)

// RuleInput is what a CostRule may consult.
type RuleInput struct {
	Leader *party.Member
	Mode   catalog.TravelMode
	Biome  catalog.Biome
}

// CostRule adjusts a move's raw cost from the leader's stats. Rules are
// optional and only apply when configured.
type CostRule interface {
	// Adjust returns raw modified for in. The floor of 1 is applied by the
	// caller afterwards.
	Adjust(raw float64, in RuleInput) (float64, error)
}

// PaceRule slows a party whose leader is slower than Baseline and speeds up
// one whose leader is faster: raw += (Baseline - leader.Speed) / 10.
type PaceRule struct {
	Baseline int
}

// Adjust implements CostRule. A missing leader leaves raw unchanged.
func (r PaceRule) Adjust(raw float64, in RuleInput) (float64, error) {
	if in.Leader == nil {
		return raw, nil
	}
	return raw + float64(r.Baseline-in.Leader.Speed)/10, nil
}

// ScriptCaller runs a named script function that returns a number.
type ScriptCaller interface {
	CallNumber(fn string, args ...any) (float64, error)
}

// AdjustCostHook is the script function ScriptRule calls.
const AdjustCostHook = "adjust_cost"

// ScriptRule delegates to a script function
// adjust_cost(raw, leader_speed, leader_con, mode_id, biome_id).
type ScriptRule struct {
	Scripts ScriptCaller
}

// Adjust implements CostRule by calling the script hook. A missing leader
// passes zero speed and con.
//
// Postcondition: Script errors are returned unchanged.
func (r ScriptRule) Adjust(raw float64, in RuleInput) (float64, error) {
	speed, con := 0, 0
	if in.Leader != nil {
		speed, con = in.Leader.Speed, in.Leader.Con
	}
	return r.Scripts.CallNumber(AdjustCostHook, raw, speed, con, in.Mode.ID, in.Biome.ID)
}

// RuleFromConfig returns the rule named by cfg.LeaderRule, or nil for "none".
// scripts may be nil unless the rule is "script".
func RuleFromConfig(cfg config.TravelConfig, scripts ScriptCaller) (CostRule, error) {
	switch cfg.LeaderRule {
	case "", config.LeaderRuleNone:
		return nil, nil
	case config.LeaderRulePace:
		return PaceRule{Baseline: cfg.PaceBaseline}, nil
	case config.LeaderRuleScript:
		if scripts == nil {
			return nil, fmt.Errorf("leader rule %q requires content.script_dir", cfg.LeaderRule)
		}
		return ScriptRule{Scripts: scripts}, nil
	default:
		return nil, fmt.Errorf("unknown leader rule %q", cfg.LeaderRule)
	}
}
