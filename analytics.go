package folioval

import "math"

// Performance analytics. All functions are pure and operate on the realized
// (non-projected) monthly series; every formula guards its denominator and
// returns a defined neutral value instead of letting NaN or Inf propagate.

// goalMonthsCap bounds the goal simulation so an unreachable target answers
// "unreachable" instead of looping forever.
const goalMonthsCap = 1200

// CAGRResult carries the compound annual growth rate plus a reliability
// flag: with less than a year of history the value is only indicative, and
// the presentation layer must say so.
type CAGRResult struct {
	Value    Percent
	Reliable bool
}

// CAGR computes (final/initial)^(1/years) - 1. It returns a zero, unreliable
// result when initial <= 0 or years <= 0.
func CAGR(initial, final, years float64) CAGRResult {
	if initial <= 0 || years <= 0 {
		return CAGRResult{}
	}
	rate := math.Pow(final/initial, 1/years) - 1
	return CAGRResult{Value: Percent(100 * rate), Reliable: years >= 1}
}

// monthlyReturns extracts the period return ratios of a series. The first
// point has no prior period and is skipped.
func monthlyReturns(series []MonthlyPoint) []float64 {
	if len(series) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(series)-1)
	for _, p := range series[1:] {
		returns = append(returns, p.PeriodReturn.Ratio())
	}
	return returns
}

// TimeWeightedReturn chain-links each period's (1 + return) across the
// series, neutralizing the timing of cash flows.
func TimeWeightedReturn(series []MonthlyPoint) Percent {
	twr := 1.0
	for _, r := range monthlyReturns(series) {
		twr *= 1 + r
	}
	return Percent(100 * (twr - 1))
}

// AnnualizedTWR annualizes the chain-linked return over the series length.
func AnnualizedTWR(series []MonthlyPoint) Percent {
	periods := len(series) - 1
	if periods <= 0 {
		return 0
	}
	years := float64(periods) / 12
	twr := 1 + TimeWeightedReturn(series).Ratio()
	if twr <= 0 {
		// A total loss (or worse) cannot be annualized meaningfully.
		return Percent(-100)
	}
	return Percent(100 * (math.Pow(twr, 1/years) - 1))
}

// DrawdownResult locates the deepest peak-to-trough decline of the equity
// series.
type DrawdownResult struct {
	Max         Percent // drawdown as a percentage of the peak
	PeakIndex   int
	TroughIndex int
}

// MaxDrawdown scans the equity series once, tracking the running peak, and
// retains the (peak, trough) pair that produced the deepest decline. An
// empty or flat series yields zero.
func MaxDrawdown(series []MonthlyPoint) DrawdownResult {
	result := DrawdownResult{}
	peak, peakIndex := math.Inf(-1), 0
	for i, p := range series {
		value := p.TotalEquity.AsFloat()
		if value > peak {
			peak, peakIndex = value, i
		}
		if peak <= 0 {
			continue
		}
		if dd := Percent(100 * (peak - value) / peak); dd > result.Max {
			result.Max = dd
			result.PeakIndex = peakIndex
			result.TroughIndex = i
		}
	}
	return result
}

// RecoveryTime returns the number of periods after the trough until equity
// reaches the pre-drawdown peak again, or 0 when not yet recovered.
func RecoveryTime(series []MonthlyPoint, dd DrawdownResult) int {
	if dd.Max == 0 || dd.PeakIndex >= len(series) {
		return 0
	}
	peak := series[dd.PeakIndex].TotalEquity.AsFloat()
	for i := dd.TroughIndex + 1; i < len(series); i++ {
		if series[i].TotalEquity.AsFloat() >= peak {
			return i - dd.TroughIndex
		}
	}
	return 0
}

// mean and stdDev are the sample statistics used by the risk ratios.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// SharpeRatio is (mean monthly return - monthly risk-free rate) divided by
// the monthly return standard deviation. Fewer than 2 observations or zero
// variance yields 0.
func SharpeRatio(series []MonthlyPoint, monthlyRiskFree float64) float64 {
	returns := monthlyReturns(series)
	sd := stdDev(returns)
	if len(returns) < 2 || sd == 0 {
		return 0
	}
	return (mean(returns) - monthlyRiskFree) / sd
}

// SortinoRatio shares Sharpe's numerator but divides by the standard
// deviation of the negative returns only. When there is no downside period
// it returns +Inf as an explicit sentinel.
func SortinoRatio(series []MonthlyPoint, monthlyRiskFree float64) float64 {
	returns := monthlyReturns(series)
	if len(returns) < 2 {
		return 0
	}
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return math.Inf(1)
	}
	sd := stdDev(downside)
	if sd == 0 {
		return 0
	}
	return (mean(returns) - monthlyRiskFree) / sd
}

// Volatility is the monthly return standard deviation annualized by √12.
func Volatility(series []MonthlyPoint) Percent {
	return Percent(100 * stdDev(monthlyReturns(series)) * math.Sqrt(12))
}

// GoalProjection is the outcome of a months-to-goal simulation.
type GoalProjection struct {
	Months   int  // months until the target is reached
	Achieved bool // target already at or below current equity
	Reached  bool // target reached within the simulation cap
}

// ProjectGoal simulates month-by-month compounding,
// value = value*(1+monthlyRate) + contribution, until the target is reached
// or the hard cap of 1200 months expires. It reports "already achieved"
// when target <= current and an explicit unreached result instead of
// looping indefinitely.
func ProjectGoal(current, target, monthlyContribution, annualGrowth float64) GoalProjection {
	if target <= current {
		return GoalProjection{Achieved: true, Reached: true}
	}
	monthlyRate := math.Pow(1+annualGrowth, 1.0/12) - 1
	value := current
	for months := 1; months <= goalMonthsCap; months++ {
		value = value*(1+monthlyRate) + monthlyContribution
		if value >= target {
			return GoalProjection{Months: months, Reached: true}
		}
	}
	return GoalProjection{}
}

// Summary aggregates every performance statistic over the realized series.
type Summary struct {
	Months       int
	StartEquity  Money
	EndEquity    Money
	CAGR         CAGRResult
	TWR          Percent
	TWRAnnual    Percent
	MaxDrawdown  DrawdownResult
	RecoveryTime int
	Sharpe       float64
	Sortino      float64
	NoDownside   bool
	Volatility   Percent
	Goal         GoalProjection
}

// GoalInput parameterizes the goal projection of a summary.
type GoalInput struct {
	Target              float64
	MonthlyContribution float64
	AnnualGrowth        float64
}

// NewSummary computes the full performance summary from a monthly series.
// Projected points are stripped first. initialOverride, when positive,
// replaces the series' first equity as the CAGR baseline (caller-supplied
// initial investment). An empty series yields all-neutral values.
func NewSummary(series []MonthlyPoint, annualRiskFree, initialOverride float64, goal GoalInput) Summary {
	realized := Realized(series)
	s := Summary{Months: len(realized)}
	if len(realized) == 0 {
		return s
	}
	s.StartEquity = realized[0].TotalEquity
	s.EndEquity = realized[len(realized)-1].TotalEquity

	years := float64(len(realized)-1) / 12
	initial := s.StartEquity.AsFloat()
	if initialOverride > 0 {
		initial = initialOverride
	}
	s.CAGR = CAGR(initial, s.EndEquity.AsFloat(), years)
	s.TWR = TimeWeightedReturn(realized)
	s.TWRAnnual = AnnualizedTWR(realized)
	s.MaxDrawdown = MaxDrawdown(realized)
	s.RecoveryTime = RecoveryTime(realized, s.MaxDrawdown)

	monthlyRiskFree := annualRiskFree / 12
	s.Sharpe = SharpeRatio(realized, monthlyRiskFree)
	s.Sortino = SortinoRatio(realized, monthlyRiskFree)
	s.NoDownside = math.IsInf(s.Sortino, 1)
	s.Volatility = Volatility(realized)

	if goal.Target > 0 {
		s.Goal = ProjectGoal(s.EndEquity.AsFloat(), goal.Target, goal.MonthlyContribution, goal.AnnualGrowth)
	}
	return s
}
