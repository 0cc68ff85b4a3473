package service

import (
	"context"
	"slices"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/requirement"
	"github.com/sells-group/inspection-cli/internal/resilience"
	"github.com/sells-group/inspection-cli/internal/store"
)

const maxLoadConcurrency = 4

// RequirementService loads an inspection's requirement state, applies one
// transition and saves the rows when they changed.
type RequirementService struct {
	store store.Store
	retry resilience.RetryConfig
}

// NewRequirementService creates a RequirementService.
func NewRequirementService(st store.Store, retry resilience.RetryConfig) *RequirementService {
	return &RequirementService{store: st, retry: retry}
}

// CreateInspection validates and stores a new inspection.
func (s *RequirementService) CreateInspection(ctx context.Context, insp model.Inspection) (*model.Inspection, error) {
	if err := ValidateInspection(insp); err != nil {
		return nil, err
	}
	created, err := storeCall(ctx, s.retry, "create_inspection", func(ctx context.Context) (*model.Inspection, error) {
		return s.store.CreateInspection(ctx, insp)
	})
	if err != nil {
		return nil, eris.Wrap(err, "service: create inspection")
	}
	return created, nil
}

// GetInspection returns a stored inspection.
func (s *RequirementService) GetInspection(ctx context.Context, id string) (*model.Inspection, error) {
	insp, err := storeCall(ctx, s.retry, "get_inspection", func(ctx context.Context) (*model.Inspection, error) {
		return s.store.GetInspection(ctx, id)
	})
	if err != nil {
		return nil, eris.Wrap(err, "service: get inspection")
	}
	return insp, nil
}

// Load reads the inspection and its rows in parallel.
func (s *RequirementService) Load(ctx context.Context, inspectionID string) (requirement.State, error) {
	var (
		insp *model.Inspection
		rows []model.ExecutionRequirement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		insp, err = s.GetInspection(gctx, inspectionID)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = storeCall(gctx, s.retry, "list_requirements", func(ctx context.Context) ([]model.ExecutionRequirement, error) {
			return s.store.ListRequirements(ctx, inspectionID)
		})
		if err != nil {
			return eris.Wrap(err, "service: list requirements")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return requirement.State{}, err
	}

	return requirement.NewState(*insp, requirement.Sort(rows)), nil
}

// LoadMany loads several inspections concurrently. The result is keyed by
// inspection ID.
func (s *RequirementService) LoadMany(ctx context.Context, inspectionIDs []string) (map[string]requirement.State, error) {
	var (
		mu     sync.Mutex
		states = make(map[string]requirement.State, len(inspectionIDs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLoadConcurrency)
	for _, id := range inspectionIDs {
		g.Go(func() error {
			st, err := s.Load(gctx, id)
			if err != nil {
				return eris.Wrapf(err, "service: load inspection %s", id)
			}
			mu.Lock()
			states[id] = st
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return states, nil
}

// Select makes sure rows exist for the given week, generating them when the
// week is within the inspection period.
func (s *RequirementService) Select(ctx context.Context, inspectionID string, week, year int) (requirement.State, error) {
	if err := checkWeek(week, year); err != nil {
		return requirement.State{}, err
	}
	return s.apply(ctx, inspectionID, "select", func(st requirement.State) (requirement.State, error) {
		return requirement.Derive(st, week, year), nil
	})
}

// AppendNextWeek generates the week after the last stored week.
func (s *RequirementService) AppendNextWeek(ctx context.Context, inspectionID string) (requirement.State, error) {
	return s.apply(ctx, inspectionID, "append_next_week", func(st requirement.State) (requirement.State, error) {
		return requirement.AppendNextWeek(st), nil
	})
}

// RemoveWeek deletes every row of the given week.
func (s *RequirementService) RemoveWeek(ctx context.Context, inspectionID string, week, year int) (requirement.State, error) {
	if err := checkWeek(week, year); err != nil {
		return requirement.State{}, err
	}
	return s.apply(ctx, inspectionID, "remove_week", func(st requirement.State) (requirement.State, error) {
		return requirement.RemoveWeek(st, model.ExecutionRequirement{Week: week, Year: year}), nil
	})
}

// SetRequirement validates edit.Requirement and stores it on the matching row.
func (s *RequirementService) SetRequirement(ctx context.Context, inspectionID string, edit model.ExecutionRequirement) (requirement.State, error) {
	value, err := requirement.ValidateRequirement(edit.Requirement)
	if err != nil {
		return requirement.State{}, err
	}
	return s.apply(ctx, inspectionID, "set_requirement", func(st requirement.State) (requirement.State, error) {
		if _, ok := st.Find(edit); !ok {
			return st, eris.Wrapf(store.ErrNotFound, "requirement row %s", edit.Key())
		}
		return requirement.SetRequirement(st, edit, value), nil
	})
}

// Import replaces the inspection's rows with rows read from a file. Rows are
// validated, sorted and de-duplicated by key, the last occurrence winning.
func (s *RequirementService) Import(ctx context.Context, inspectionID string, rows []model.ExecutionRequirement) (requirement.State, error) {
	byKey := make(map[string]int, len(rows))
	clean := make([]model.ExecutionRequirement, 0, len(rows))
	for _, r := range rows {
		if err := checkWeek(r.Week, r.Year); err != nil {
			return requirement.State{}, err
		}
		value, err := requirement.ValidateRequirement(r.Requirement)
		if err != nil {
			return requirement.State{}, eris.Wrapf(err, "row %s", r.Key())
		}
		r.Requirement = value
		if i, ok := byKey[r.Key()]; ok {
			clean[i] = r
			continue
		}
		byKey[r.Key()] = len(clean)
		clean = append(clean, r)
	}

	return s.apply(ctx, inspectionID, "import", func(st requirement.State) (requirement.State, error) {
		st.Rows = requirement.Sort(clean)
		return st, nil
	})
}

func (s *RequirementService) apply(ctx context.Context, inspectionID, op string, transition func(requirement.State) (requirement.State, error)) (requirement.State, error) {
	log := zap.L().With(zap.String("inspection_id", inspectionID), zap.String("op", op))

	before, err := s.Load(ctx, inspectionID)
	if err != nil {
		return requirement.State{}, err
	}

	after, err := transition(before)
	if err != nil {
		return requirement.State{}, err
	}
	if slices.Equal(before.Rows, after.Rows) {
		log.Debug("requirements: unchanged", zap.Int("rows", len(after.Rows)))
		return after, nil
	}

	err = storeExec(ctx, s.retry, "replace_requirements", func(ctx context.Context) error {
		return s.store.ReplaceRequirements(ctx, inspectionID, after.Rows)
	})
	if err != nil {
		return requirement.State{}, eris.Wrap(err, "service: save requirements")
	}

	log.Info("requirements: saved",
		zap.Int("rows_before", len(before.Rows)),
		zap.Int("rows_after", len(after.Rows)),
	)
	return after, nil
}

func checkWeek(week, year int) error {
	if week < 1 || week > 53 {
		return invalid("week %d out of range 1..53", week)
	}
	if year < 1 {
		return invalid("year %d out of range", year)
	}
	return nil
}
