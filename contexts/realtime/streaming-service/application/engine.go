package application

import (
	"fmt"
	"math"
	"sync"

	"helix/contexts/realtime/streaming-service/domain/entities"
)

// alertSignal is a rule hit before it becomes a persisted Alert.
type alertSignal struct {
	Severity  entities.Severity
	Kind      entities.AlertKind
	Threshold float64
	Message   string
}

type band struct {
	low  float64
	high float64
}

func (b band) outside(value float64) (float64, bool) {
	if value < b.low {
		return b.low, true
	}
	if value > b.high {
		return b.high, true
	}
	return 0, false
}

var criticalBands = map[entities.Metric]band{
	entities.MetricHeartRate:       {low: 40, high: 140},
	entities.MetricSystolicBP:      {low: 80, high: 180},
	entities.MetricRespiratoryRate: {low: 8, high: 30},
	entities.MetricTemperature:     {low: 35.0, high: 39.5},
}

var warningBands = map[entities.Metric]band{
	entities.MetricHeartRate: {low: 50, high: 120},
}

const (
	spo2CriticalBelow = 85
	spo2WarningBelow  = 92
)

// evaluateThresholds returns at most one signal per event: the most severe
// rule that fires.
func evaluateThresholds(metric entities.Metric, value float64) []alertSignal {
	if metric == entities.MetricSpO2 {
		if value < spo2CriticalBelow {
			return []alertSignal{{
				Severity:  entities.SeverityCritical,
				Kind:      entities.AlertKindThreshold,
				Threshold: spo2CriticalBelow,
				Message:   fmt.Sprintf("spo2 %.1f below critical floor %.0f", value, float64(spo2CriticalBelow)),
			}}
		}
		if value < spo2WarningBelow {
			return []alertSignal{{
				Severity:  entities.SeverityWarning,
				Kind:      entities.AlertKindThreshold,
				Threshold: spo2WarningBelow,
				Message:   fmt.Sprintf("spo2 %.1f below warning floor %.0f", value, float64(spo2WarningBelow)),
			}}
		}
		return nil
	}

	if critical, ok := criticalBands[metric]; ok {
		if threshold, breached := critical.outside(value); breached {
			return []alertSignal{{
				Severity:  entities.SeverityCritical,
				Kind:      entities.AlertKindThreshold,
				Threshold: threshold,
				Message:   fmt.Sprintf("%s %.1f outside critical range [%.1f, %.1f]", metric, value, critical.low, critical.high),
			}}
		}
	}
	if warning, ok := warningBands[metric]; ok {
		if threshold, breached := warning.outside(value); breached {
			return []alertSignal{{
				Severity:  entities.SeverityWarning,
				Kind:      entities.AlertKindThreshold,
				Threshold: threshold,
				Message:   fmt.Sprintf("%s %.1f outside warning range [%.1f, %.1f]", metric, value, warning.low, warning.high),
			}}
		}
	}
	return nil
}

// TrendTracker keeps a bounded sliding window of recent readings per
// (patient, metric) pair. Oldest readings are evicted once the window is
// full, so memory stays proportional to the number of active streams.
type TrendTracker struct {
	mu        sync.Mutex
	window    int
	deviation float64
	readings  map[string][]float64
}

func NewTrendTracker(windowSize int, deviation float64) *TrendTracker {
	if windowSize <= 0 {
		windowSize = 12
	}
	if deviation <= 0 {
		deviation = 0.25
	}
	return &TrendTracker{
		window:    windowSize,
		deviation: deviation,
		readings:  make(map[string][]float64),
	}
}

// Observe records a reading and reports a trend signal when the window was
// already full and the new value deviates from the window mean by more than
// the configured fraction.
func (t *TrendTracker) Observe(patientID string, metric entities.Metric, value float64) (alertSignal, bool) {
	key := patientID + "|" + string(metric)

	t.mu.Lock()
	defer t.mu.Unlock()

	window := t.readings[key]
	var signal alertSignal
	var fired bool
	if len(window) >= t.window {
		var sum float64
		for _, reading := range window {
			sum += reading
		}
		mean := sum / float64(len(window))
		if mean != 0 && math.Abs(value-mean)/math.Abs(mean) > t.deviation {
			signal = alertSignal{
				Severity:  entities.SeverityWarning,
				Kind:      entities.AlertKindTrend,
				Threshold: mean,
				Message:   fmt.Sprintf("%s %.1f deviates more than %.0f%% from recent mean %.1f", metric, value, t.deviation*100, mean),
			}
			fired = true
		}
	}

	window = append(window, value)
	if len(window) > t.window {
		window = window[len(window)-t.window:]
	}
	t.readings[key] = window
	return signal, fired
}
