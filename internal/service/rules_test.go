package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/rules"
	"github.com/sells-group/inspection-cli/internal/store"
)

func testTemplates(t *testing.T) *rules.TemplateSet {
	t.Helper()
	ts, err := rules.NewTemplateSet(
		rules.Template{Name: "default", Rules: []model.ContractRule{
			{Category: "equipmentAge", Name: "max", Value: "12"},
			{Category: "emissionClass", Name: "min", Value: "5"},
			{Category: "execution", Name: "reporting", Value: "weekly"},
		}},
		rules.Template{Name: "electric", Rules: []model.ContractRule{
			{Category: "emissionClass", Name: "min", Value: "9"},
		}},
	)
	require.NoError(t, err)
	return ts
}

func createContract(t *testing.T, svc *RuleService, rs []model.ContractRule) *model.Contract {
	t.Helper()
	c, err := svc.CreateContract(context.Background(), model.Contract{
		OperatorID:        "op-1",
		ProcurementUnitID: "pu-1",
		StartDate:         day(2024, 1, 1),
		EndDate:           day(2025, 12, 31),
		Rules:             rs,
	})
	require.NoError(t, err)
	return c
}

func TestRuleService_MergeTemplate(t *testing.T) {
	st := &countingStore{Store: newTestStore(t)}
	svc := NewRuleService(st, testTemplates(t), fastRetry())
	ctx := context.Background()

	c := createContract(t, svc, []model.ContractRule{
		{Category: "equipmentAge", Name: "max", Value: "15"},
		{Category: "emissionClass", Name: "min", Value: "5"},
	})

	report, err := svc.MergeTemplate(ctx, c.ID, "default")
	require.NoError(t, err)
	assert.Equal(t, []string{"equipmentAge:max"}, report.Substituted)
	require.Len(t, report.Dropped, 1)
	assert.Equal(t, "execution:reporting", report.Dropped[0].IdentityKey())
	assert.Equal(t, int32(1), st.ruleUpdates.Load())

	got, err := svc.GetContract(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Rules, 2)
	assert.Equal(t, "12", got.Rules[0].Value)
	assert.Equal(t, "5", got.Rules[1].Value)

	// A second merge finds nothing to change and does not write.
	report, err = svc.MergeTemplate(ctx, c.ID, "default")
	require.NoError(t, err)
	assert.False(t, report.Changed())
	assert.Equal(t, int32(1), st.ruleUpdates.Load())
}

func TestRuleService_MergeTemplate_SeedsEmptyContract(t *testing.T) {
	st := newTestStore(t)
	svc := NewRuleService(st, testTemplates(t), fastRetry())
	ctx := context.Background()

	c := createContract(t, svc, nil)
	report, err := svc.MergeTemplate(ctx, c.ID, "electric")
	require.NoError(t, err)
	assert.Len(t, report.Rules, 1)

	got, err := svc.GetContract(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Rules, got.Rules)
}

func TestRuleService_StoredTemplateWins(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.UpsertRuleTemplates(ctx, []rules.Template{{Name: "electric", Rules: []model.ContractRule{
		{Category: "emissionClass", Name: "min", Value: "11"},
	}}})
	require.NoError(t, err)

	svc := NewRuleService(st, testTemplates(t), fastRetry())
	tmpl, err := svc.Template(ctx, "electric")
	require.NoError(t, err)
	assert.Equal(t, "11", tmpl.Rules[0].Value)
}

func TestRuleService_MergeTemplate_Errors(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	svc := NewRuleService(st, testTemplates(t), fastRetry())
	c := createContract(t, svc, nil)

	_, err := svc.MergeTemplate(ctx, c.ID, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, rules.ErrUnknownTemplate)

	_, err = svc.MergeTemplate(ctx, "no-such-contract", "default")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))

	bare := NewRuleService(st, nil, fastRetry())
	_, err = bare.MergeTemplate(ctx, c.ID, "default")
	assert.ErrorIs(t, err, rules.ErrUnknownTemplate)
}

func TestRuleService_CreateContractInvalid(t *testing.T) {
	svc := NewRuleService(newTestStore(t), nil, fastRetry())
	_, err := svc.CreateContract(context.Background(), model.Contract{})
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
}

func TestRuleService_SeedTemplates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	svc := NewRuleService(st, testTemplates(t), fastRetry())
	n, err := svc.SeedTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	stored, err := st.GetRuleTemplate(ctx, "default")
	require.NoError(t, err)
	assert.Len(t, stored.Rules, 3)

	n, err = NewRuleService(st, nil, fastRetry()).SeedTemplates(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
