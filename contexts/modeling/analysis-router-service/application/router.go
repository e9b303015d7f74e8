package application

import (
	"math"
	"sort"

	"helix/contexts/modeling/analysis-router-service/domain/entities"
	domainerrors "helix/contexts/modeling/analysis-router-service/domain/errors"
)

const requestedWeightFloor = 0.3

// routeMethods maps a data profile plus explicitly requested methods to a
// weighted, normalized method set. The rules are deterministic: the same
// profile always yields the same routes.
func routeMethods(profile entities.DataProfile, requested []entities.Method) ([]entities.MethodRoute, error) {
	weights := make(map[entities.Method]float64)
	reasons := make(map[entities.Method]string)

	include := func(method entities.Method, weight float64, reason string) {
		if current, ok := weights[method]; !ok || weight > current {
			weights[method] = weight
			reasons[method] = reason
		}
	}

	if profile.SampleCount >= 30 {
		include(entities.MethodGNN, 1.0, "sample count supports graph neural network inference")
	} else {
		include(entities.MethodQualitative, 1.0, "low sample count favors qualitative modeling")
	}
	if profile.HasTimeSeries {
		include(entities.MethodDynamical, 1.0, "time series available")
	}
	if profile.PriorKnowledge {
		include(entities.MethodQualitative, 0.8, "prior regulatory knowledge available")
	} else {
		include(entities.MethodQualitative, 0.5, "qualitative baseline")
	}

	for _, method := range requested {
		if !method.Valid() {
			return nil, domainerrors.ErrUnknownRequestedMethod
		}
		if weight, ok := weights[method]; !ok || weight < requestedWeightFloor {
			include(method, requestedWeightFloor, "explicitly requested")
		}
	}

	// High noise degrades every method equally before normalization.
	if profile.NoiseLevel > 0.5 {
		for method := range weights {
			weights[method] /= 2
		}
	}

	if len(weights) == 0 {
		return nil, domainerrors.ErrNoApplicableMethod
	}

	var total float64
	for _, weight := range weights {
		total += weight
	}
	if total <= 0 || math.IsNaN(total) {
		return nil, domainerrors.ErrNoApplicableMethod
	}

	routes := make([]entities.MethodRoute, 0, len(weights))
	for method, weight := range weights {
		routes = append(routes, entities.MethodRoute{
			Method: method,
			Weight: weight / total,
			Reason: reasons[method],
		})
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Weight != routes[j].Weight {
			return routes[i].Weight > routes[j].Weight
		}
		return routes[i].Method < routes[j].Method
	})
	return routes, nil
}
