package entities

import "time"

type InteractionSign string

const (
	SignActivation InteractionSign = "activation"
	SignInhibition InteractionSign = "inhibition"
)

func (s InteractionSign) Valid() bool {
	return s == SignActivation || s == SignInhibition
}

type Interaction struct {
	Regulator string
	Target    string
	Sign      InteractionSign
}

type ModelStatus string

const (
	ModelStatusDraft     ModelStatus = "draft"
	ModelStatusValidated ModelStatus = "validated"
	ModelStatusVerified  ModelStatus = "verified"
)

type GRNModel struct {
	ModelID   string
	Name      string
	Organism  string
	Genes     []string
	Edges     []Interaction
	Status    ModelStatus
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PropertyResult struct {
	Property string
	Holds    bool
	Witness  string
}

// VerificationReport records the outcome of checking CTL properties against a
// model's qualitative dynamics.
type VerificationReport struct {
	ModelID    string
	Properties []PropertyResult
	AllHold    bool
	CheckedAt  time.Time
}
