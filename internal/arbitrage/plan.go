package arbitrage

// scenarioBankrolls are the preset bankrolls shown in the deep-dive view.
var scenarioBankrolls = []float64{100, 500, 1000, 5000, 10000}

// SidePlan is the per-leg breakdown of a stake plan.
type SidePlan struct {
	Stake        float64 `json:"stake"`
	Winnings     float64 `json:"winnings"`
	FeeOnWin     float64 `json:"fee_on_winnings"`
	ProfitIfWins float64 `json:"profit_if_wins"`
}

// Scenario scales a plan to a preset bankroll.
type Scenario struct {
	Bankroll    float64 `json:"bankroll"`
	StakeA      float64 `json:"stake_a"`
	StakeB      float64 `json:"stake_b"`
	TotalStaked float64 `json:"total_staked"`
	GrossProfit float64 `json:"gross_profit"`
	ProfitIfA   float64 `json:"profit_if_a"`
	ProfitIfB   float64 `json:"profit_if_b"`
}

// StakePlan is the detailed equal-payout breakdown for the deep-dive view:
// fee-adjusted profit on each outcome plus scaled bankroll scenarios. All
// fields are rounded to two decimals; the plan is a terminal presentation
// value.
type StakePlan struct {
	Stakes
	SideA     SidePlan   `json:"side_a"`
	SideB     SidePlan   `json:"side_b"`
	Scenarios []Scenario `json:"scenarios"`
}

// Plan computes the full stake breakdown for probabilities pa, pb, winnings
// fee fractions fa, fb and the given bankroll. Fees reduce the winning leg's
// profit; the losing leg's stake is lost in full either way.
func Plan(pa, pb, fa, fb, bankroll float64) (StakePlan, error) {
	base, err := Allocate(pa, pb, bankroll)
	if err != nil {
		return StakePlan{}, err
	}

	winA := base.StakeA/pa - base.StakeA
	winB := base.StakeB/pb - base.StakeB
	feeA := winA * fa
	feeB := winB * fb

	profitIfA := base.StakeA/pa - base.TotalStaked - feeA
	profitIfB := base.StakeB/pb - base.TotalStaked - feeB

	plan := StakePlan{
		Stakes: Stakes{
			StakeA:           Round2(base.StakeA),
			StakeB:           Round2(base.StakeB),
			TotalStaked:      Round2(base.TotalStaked),
			Payout:           Round2(base.Payout),
			GuaranteedProfit: Round2(base.GuaranteedProfit),
			ROIPct:           Round2(base.ROIPct),
		},
		SideA: SidePlan{
			Stake:        Round2(base.StakeA),
			Winnings:     Round2(winA),
			FeeOnWin:     Round2(feeA),
			ProfitIfWins: Round2(profitIfA),
		},
		SideB: SidePlan{
			Stake:        Round2(base.StakeB),
			Winnings:     Round2(winB),
			FeeOnWin:     Round2(feeB),
			ProfitIfWins: Round2(profitIfB),
		},
	}

	for _, br := range scenarioBankrolls {
		scale := br / bankroll
		plan.Scenarios = append(plan.Scenarios, Scenario{
			Bankroll:    br,
			StakeA:      Round2(base.StakeA * scale),
			StakeB:      Round2(base.StakeB * scale),
			TotalStaked: Round2(base.TotalStaked * scale),
			GrossProfit: Round2(base.GuaranteedProfit * scale),
			ProfitIfA:   Round2(profitIfA * scale),
			ProfitIfB:   Round2(profitIfB * scale),
		})
	}

	return plan, nil
}
