// Package store persists contracts, inspections, execution requirements and
// rule templates.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/rules"
)

// ErrNotFound is wrapped by lookups that match no row.
var ErrNotFound = eris.New("store: not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return eris.Is(err, ErrNotFound)
}

// ContractFilter specifies criteria for listing contracts.
type ContractFilter struct {
	OperatorID        string `json:"operator_id,omitempty"`
	ProcurementUnitID string `json:"procurement_unit_id,omitempty"`
	Limit             int    `json:"limit,omitempty"`
	Offset            int    `json:"offset,omitempty"`
}

// InspectionFilter specifies criteria for listing inspections.
type InspectionFilter struct {
	OperatorID string `json:"operator_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

const defaultListLimit = 100

// Store defines the persistence interface of the inspection service.
type Store interface {
	// Contracts
	CreateContract(ctx context.Context, c model.Contract) (*model.Contract, error)
	GetContract(ctx context.Context, id string) (*model.Contract, error)
	ListContracts(ctx context.Context, filter ContractFilter) ([]model.Contract, error)
	UpdateContractRules(ctx context.Context, id string, rules []model.ContractRule) error

	// Inspections
	CreateInspection(ctx context.Context, insp model.Inspection) (*model.Inspection, error)
	GetInspection(ctx context.Context, id string) (*model.Inspection, error)
	ListInspections(ctx context.Context, filter InspectionFilter) ([]model.Inspection, error)

	// Execution requirements
	ListRequirements(ctx context.Context, inspectionID string) ([]model.ExecutionRequirement, error)
	ReplaceRequirements(ctx context.Context, inspectionID string, rows []model.ExecutionRequirement) error

	// Rule templates. UpsertRuleTemplates makes each non-empty template in
	// the batch authoritative: rules no longer listed are removed.
	UpsertRuleTemplates(ctx context.Context, templates []rules.Template) (int64, error)
	GetRuleTemplate(ctx context.Context, name string) (*rules.Template, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

func notFound(entity, id string) error {
	return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
}
