package executors

import (
	"context"

	"helix/contexts/orchestration/workflow-service/domain/entities"
	"helix/contexts/orchestration/workflow-service/ports"
)

// Registry maps workflow types to the executor responsible for them.
type Registry map[entities.WorkflowType]ports.Executor

func (r Registry) ExecutorFor(workflowType entities.WorkflowType) (ports.Executor, bool) {
	executor, ok := r[workflowType]
	return executor, ok
}

// StubExecutor completes immediately with a fixed result. It reports progress
// in even steps so progress plumbing can be observed without a real backend.
type StubExecutor struct {
	Steps  int
	Result map[string]any
}

func (e StubExecutor) Execute(
	ctx context.Context,
	_ entities.Workflow,
	report ports.ProgressFunc,
) (map[string]any, error) {
	steps := e.Steps
	if steps <= 0 {
		steps = 4
	}
	for i := 1; i <= steps; i++ {
		if err := report(ctx, float64(i)/float64(steps)); err != nil {
			return nil, err
		}
	}
	result := map[string]any{"status": "completed"}
	for key, value := range e.Result {
		result[key] = value
	}
	return result, nil
}

// DefaultRegistry wires a stub executor for every known workflow type.
func DefaultRegistry() Registry {
	return Registry{
		entities.TypeGRNInference:       StubExecutor{Result: map[string]any{"kind": "grn_inference"}},
		entities.TypeEnsemblePrediction: StubExecutor{Result: map[string]any{"kind": "ensemble_prediction"}},
		entities.TypeExplanation:        StubExecutor{Result: map[string]any{"kind": "explanation"}},
	}
}
