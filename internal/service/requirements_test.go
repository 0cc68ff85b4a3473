package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/requirement"
	"github.com/sells-group/inspection-cli/internal/store"
)

// The inspection runs from week 10 to week 13 of 2024.
func newInspection(t *testing.T, svc *RequirementService) *model.Inspection {
	t.Helper()
	insp, err := svc.CreateInspection(context.Background(), model.Inspection{
		OperatorID: "op-1",
		Season:     "2024-spring",
		StartDate:  day(2024, 3, 4),
		EndDate:    day(2024, 3, 31),
	})
	require.NoError(t, err)
	return insp
}

func TestRequirementService_LoadEmpty(t *testing.T) {
	svc := NewRequirementService(newTestStore(t), fastRetry())
	insp := newInspection(t, svc)

	st, err := svc.Load(context.Background(), insp.ID)
	require.NoError(t, err)
	assert.Empty(t, st.Rows)
	assert.Equal(t, day(2024, 3, 4), st.StartDate)
	assert.Equal(t, 202413, st.MaxWeekKey())
}

func TestRequirementService_LoadUnknown(t *testing.T) {
	svc := NewRequirementService(newTestStore(t), fastRetry())
	_, err := svc.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}

func TestRequirementService_SelectBootstrapsStartWeek(t *testing.T) {
	svc := NewRequirementService(newTestStore(t), fastRetry())
	insp := newInspection(t, svc)
	ctx := context.Background()

	st, err := svc.Select(ctx, insp.ID, 12, 2024)
	require.NoError(t, err)
	require.Len(t, st.Rows, model.RowsPerWeek)
	assert.Equal(t, []requirement.WeekRef{{Week: 10, Year: 2024}}, st.Weeks())

	reloaded, err := svc.Load(ctx, insp.ID)
	require.NoError(t, err)
	assert.Equal(t, st.Rows, reloaded.Rows)
}

func TestRequirementService_SelectCopiesReferenceWeek(t *testing.T) {
	svc := NewRequirementService(newTestStore(t), fastRetry())
	insp := newInspection(t, svc)
	ctx := context.Background()

	_, err := svc.Select(ctx, insp.ID, 10, 2024)
	require.NoError(t, err)
	_, err = svc.SetRequirement(ctx, insp.ID, model.ExecutionRequirement{
		Week: 10, Year: 2024, Area: model.AreaCenter, EquipmentClass: 3, Requirement: " 25,5 ",
	})
	require.NoError(t, err)

	st, err := svc.Select(ctx, insp.ID, 11, 2024)
	require.NoError(t, err)
	assert.Len(t, st.Rows, 2*model.RowsPerWeek)

	row, ok := st.Find(model.ExecutionRequirement{Week: 11, Year: 2024, Area: model.AreaCenter, EquipmentClass: 3})
	require.True(t, ok)
	assert.Equal(t, "25,5", row.Requirement)
}

func TestRequirementService_SelectPastMaxDoesNotWrite(t *testing.T) {
	cs := &countingStore{Store: newTestStore(t)}
	svc := NewRequirementService(cs, fastRetry())
	insp := newInspection(t, svc)
	ctx := context.Background()

	_, err := svc.Select(ctx, insp.ID, 10, 2024)
	require.NoError(t, err)
	require.Equal(t, int32(1), cs.replaces.Load())

	st, err := svc.Select(ctx, insp.ID, 20, 2024)
	require.NoError(t, err)
	assert.Len(t, st.Rows, model.RowsPerWeek)
	assert.Equal(t, int32(1), cs.replaces.Load())
}

func TestRequirementService_SelectInvalidWeek(t *testing.T) {
	svc := NewRequirementService(newTestStore(t), fastRetry())
	insp := newInspection(t, svc)

	_, err := svc.Select(context.Background(), insp.ID, 0, 2024)
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))

	_, err = svc.RemoveWeek(context.Background(), insp.ID, 54, 2024)
	assert.True(t, IsInvalidInput(err))
}

func TestRequirementService_AppendAndRemove(t *testing.T) {
	svc := NewRequirementService(newTestStore(t), fastRetry())
	insp := newInspection(t, svc)
	ctx := context.Background()

	st, err := svc.AppendNextWeek(ctx, insp.ID)
	require.NoError(t, err)
	assert.Len(t, st.Weeks(), 1)

	for range 5 {
		st, err = svc.AppendNextWeek(ctx, insp.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, []requirement.WeekRef{
		{Week: 10, Year: 2024}, {Week: 11, Year: 2024}, {Week: 12, Year: 2024}, {Week: 13, Year: 2024},
	}, st.Weeks())

	st, err = svc.RemoveWeek(ctx, insp.ID, 11, 2024)
	require.NoError(t, err)
	assert.Len(t, st.Rows, 3*model.RowsPerWeek)

	reloaded, err := svc.Load(ctx, insp.ID)
	require.NoError(t, err)
	assert.Equal(t, []requirement.WeekRef{
		{Week: 10, Year: 2024}, {Week: 12, Year: 2024}, {Week: 13, Year: 2024},
	}, reloaded.Weeks())
}

func TestRequirementService_SetRequirementErrors(t *testing.T) {
	svc := NewRequirementService(newTestStore(t), fastRetry())
	insp := newInspection(t, svc)
	ctx := context.Background()

	_, err := svc.Select(ctx, insp.ID, 10, 2024)
	require.NoError(t, err)

	_, err = svc.SetRequirement(ctx, insp.ID, model.ExecutionRequirement{
		Week: 10, Year: 2024, Area: model.AreaOther, EquipmentClass: 1, Requirement: "101",
	})
	assert.ErrorIs(t, err, requirement.ErrInvalidRequirement)

	_, err = svc.SetRequirement(ctx, insp.ID, model.ExecutionRequirement{
		Week: 11, Year: 2024, Area: model.AreaOther, EquipmentClass: 1, Requirement: "10",
	})
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}

func TestRequirementService_Import(t *testing.T) {
	svc := NewRequirementService(newTestStore(t), fastRetry())
	insp := newInspection(t, svc)
	ctx := context.Background()

	rows := requirement.GenerateForWeek(2024, 12, nil)
	rows = append(rows, model.ExecutionRequirement{
		Week: 12, Year: 2024, Area: model.AreaCenter, EquipmentClass: 1, Requirement: "40",
	})

	st, err := svc.Import(ctx, insp.ID, rows)
	require.NoError(t, err)
	assert.Len(t, st.Rows, model.RowsPerWeek)
	row, ok := st.Find(model.ExecutionRequirement{Week: 12, Year: 2024, Area: model.AreaCenter, EquipmentClass: 1})
	require.True(t, ok)
	assert.Equal(t, "40", row.Requirement)

	bad := []model.ExecutionRequirement{{Week: 12, Year: 2024, Area: model.AreaCenter, EquipmentClass: 1, Requirement: "abc"}}
	_, err = svc.Import(ctx, insp.ID, bad)
	assert.ErrorIs(t, err, requirement.ErrInvalidRequirement)
}

func TestRequirementService_RetriesTransientLoad(t *testing.T) {
	cs := &countingStore{Store: newTestStore(t)}
	cs.transientList.Store(2)
	svc := NewRequirementService(cs, fastRetry())
	insp := newInspection(t, svc)

	st, err := svc.Load(context.Background(), insp.ID)
	require.NoError(t, err)
	assert.Empty(t, st.Rows)
	assert.Zero(t, cs.transientList.Load())
}

func TestRequirementService_LoadMany(t *testing.T) {
	svc := NewRequirementService(newTestStore(t), fastRetry())
	ctx := context.Background()
	a := newInspection(t, svc)
	b := newInspection(t, svc)

	_, err := svc.AppendNextWeek(ctx, a.ID)
	require.NoError(t, err)

	states, err := svc.LoadMany(ctx, []string{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Len(t, states[a.ID].Rows, model.RowsPerWeek)
	assert.Empty(t, states[b.ID].Rows)

	_, err = svc.LoadMany(ctx, []string{a.ID, "missing"})
	assert.True(t, store.IsNotFound(err))
}
