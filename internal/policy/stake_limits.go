package policy

// StakeLimitPolicy defines per-player wagering limits, in points.
type StakeLimitPolicy struct {
	SingleStakeMax int64 `json:"single_stake_max"`
	DailyStakeMax  int64 `json:"daily_stake_max"`
}

// DefaultStakeLimits returns the platform-wide default limits.
func DefaultStakeLimits() StakeLimitPolicy {
	return StakeLimitPolicy{
		SingleStakeMax: 10_000,
		DailyStakeMax:  50_000,
	}
}

// StakeEvaluation holds the result of a stake limits check.
type StakeEvaluation struct {
	Allowed       bool   `json:"allowed"`
	BreachedLimit string `json:"breached_limit,omitempty"`
	LimitValue    int64  `json:"limit_value,omitempty"`
	RequestedAmt  int64  `json:"requested_amount,omitempty"`
}

// EvaluateStakeLimits checks a coupon stake against the player's limits.
// dailyStaked is the running total already wagered today.
func EvaluateStakeLimits(policy StakeLimitPolicy, stake, dailyStaked int64) StakeEvaluation {
	// Single coupon limit
	if policy.SingleStakeMax > 0 && stake > policy.SingleStakeMax {
		return StakeEvaluation{
			Allowed:       false,
			BreachedLimit: "single_stake",
			LimitValue:    policy.SingleStakeMax,
			RequestedAmt:  stake,
		}
	}

	// Daily wagering limit
	if policy.DailyStakeMax > 0 && dailyStaked+stake > policy.DailyStakeMax {
		return StakeEvaluation{
			Allowed:       false,
			BreachedLimit: "daily_stake",
			LimitValue:    policy.DailyStakeMax,
			RequestedAmt:  dailyStaked + stake,
		}
	}

	return StakeEvaluation{Allowed: true}
}
