package entities

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusRunning, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusFailed, false},
		{StatusRunning, StatusCompleted, true},
		{StatusRunning, StatusFailed, true},
		{StatusRunning, StatusCancelled, true},
		{StatusRunning, StatusPending, true},
		{StatusFailed, StatusPending, true},
		{StatusFailed, StatusRunning, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusRunning, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusRunning, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestWorkflowTypeValid(t *testing.T) {
	for _, valid := range []WorkflowType{TypeGRNInference, TypeEnsemblePrediction, TypeExplanation} {
		if !valid.Valid() {
			t.Errorf("expected %s to be valid", valid)
		}
	}
	if WorkflowType("drug_discovery").Valid() {
		t.Error("expected unknown workflow type to be invalid")
	}
}

func TestTerminal(t *testing.T) {
	cases := []struct {
		name     string
		workflow Workflow
		terminal bool
	}{
		{"pending", Workflow{Status: StatusPending}, false},
		{"running", Workflow{Status: StatusRunning}, false},
		{"completed", Workflow{Status: StatusCompleted}, true},
		{"cancelled", Workflow{Status: StatusCancelled}, true},
		{"failed with attempts left", Workflow{Status: StatusFailed, Attempts: 1, MaxAttempts: 3}, false},
		{"failed exhausted", Workflow{Status: StatusFailed, Attempts: 3, MaxAttempts: 3}, true},
	}
	for _, tc := range cases {
		if got := tc.workflow.Terminal(); got != tc.terminal {
			t.Errorf("%s: Terminal() = %v, want %v", tc.name, got, tc.terminal)
		}
	}
}
