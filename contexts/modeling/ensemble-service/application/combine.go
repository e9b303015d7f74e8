package application

import (
	"math"

	"helix/contexts/modeling/ensemble-service/domain/entities"
	domainerrors "helix/contexts/modeling/ensemble-service/domain/errors"
)

const (
	riskLowUpperBound      = 0.33
	riskModerateUpperBound = 0.66
	highVoteThreshold      = 0.5
)

func combineScores(
	strategy entities.Strategy,
	inputs []entities.MethodOutput,
	routeWeights map[string]float64,
) (float64, error) {
	switch strategy {
	case entities.StrategyWeightedAverage:
		var weighted, total float64
		for _, input := range inputs {
			weight, ok := routeWeights[input.Method]
			if !ok {
				weight = 1
			}
			weighted += input.RiskScore * weight
			total += weight
		}
		if total <= 0 {
			return 0, domainerrors.ErrNoUsableInput
		}
		return weighted / total, nil
	case entities.StrategyMajorityVote:
		var high int
		for _, input := range inputs {
			if input.RiskScore >= highVoteThreshold {
				high++
			}
		}
		return float64(high) / float64(len(inputs)), nil
	case entities.StrategyConfidenceWeighted:
		var weighted, total float64
		for _, input := range inputs {
			weighted += input.RiskScore * input.Confidence
			total += input.Confidence
		}
		if total <= 0 {
			return 0, domainerrors.ErrNoUsableInput
		}
		return weighted / total, nil
	default:
		return 0, domainerrors.ErrUnknownStrategy
	}
}

// agreementOf is one minus the population standard deviation of the input
// scores, floored at zero. Identical scores agree perfectly.
func agreementOf(inputs []entities.MethodOutput) float64 {
	var sum float64
	for _, input := range inputs {
		sum += input.RiskScore
	}
	mean := sum / float64(len(inputs))

	var variance float64
	for _, input := range inputs {
		diff := input.RiskScore - mean
		variance += diff * diff
	}
	variance /= float64(len(inputs))

	agreement := 1 - math.Sqrt(variance)
	if agreement < 0 {
		return 0
	}
	return agreement
}

func riskLevelOf(score float64) entities.RiskLevel {
	switch {
	case score < riskLowUpperBound:
		return entities.RiskLevelLow
	case score < riskModerateUpperBound:
		return entities.RiskLevelModerate
	default:
		return entities.RiskLevelHigh
	}
}
