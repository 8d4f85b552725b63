package secondary

import "context"

// PlanStepRecord mirrors one step in the external plan store.
type PlanStepRecord struct {
	Description string `json:"description"`
	Status      string `json:"status"`
}

// PlanDocument is the objective plus the ordered step list as read from
// the external plan store. Warden never writes step status.
type PlanDocument struct {
	Objective string           `json:"objective"`
	Steps     []PlanStepRecord `json:"steps"`
}

// PlanProvider reads the objective and plan owned by the external store.
// A missing plan is not an error: providers return an empty document so
// the planner can demand human input for it.
type PlanProvider interface {
	Load(ctx context.Context) (*PlanDocument, error)
}
