package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sells-group/inspection-cli/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func rule(category, name, value string) model.ContractRule {
	return model.ContractRule{Category: category, Name: name, Value: value}
}

func TestMergeRules_Example(t *testing.T) {
	target := []model.ContractRule{rule("equipmentType", "age", "5")}
	source := []model.ContractRule{rule("equipmentType", "age", "7")}

	got := MergeRules(target, source)
	assert.Equal(t, []model.ContractRule{rule("equipmentType", "age", "7")}, got)
}

func TestMergeRules_EmptyTargetReturnsSource(t *testing.T) {
	source := []model.ContractRule{
		rule("equipmentType", "age", "7"),
		rule("emissionClass", "min", "4"),
	}

	assert.Equal(t, source, MergeRules(nil, source))
	assert.Equal(t, source, MergeRules([]model.ContractRule{}, source))
}

func TestMergeRules_PreservesTargetIdentitySetAndOrder(t *testing.T) {
	target := []model.ContractRule{
		rule("b", "two", "1"),
		rule("a", "one", "1"),
		rule("c", "three", "1"),
	}
	source := []model.ContractRule{
		rule("a", "one", "2"),
		rule("c", "three", "1"),
		rule("d", "four", "9"),
	}

	got := MergeRules(target, source)
	require.Len(t, got, len(target))
	for i := range got {
		assert.Equal(t, target[i].IdentityKey(), got[i].IdentityKey())
	}
}

func TestMergeRules_KeepsTargetWhenValueUnchanged(t *testing.T) {
	target := []model.ContractRule{{
		Category: "equipmentType", Name: "age", Value: "5", Description: "saved description",
	}}
	source := []model.ContractRule{{
		Category: "equipmentType", Name: "age", Value: "5", Description: "template description",
	}}

	got := MergeRules(target, source)
	if diff := cmp.Diff(target, got); diff != "" {
		t.Errorf("merged rules mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeRules_ConditionChangeSubstitutes(t *testing.T) {
	target := []model.ContractRule{{Category: "a", Name: "n", Value: "5"}}
	source := []model.ContractRule{{Category: "a", Name: "n", Condition: "max", Value: "5"}}

	got := MergeRules(target, source)
	assert.Equal(t, source, got)
}

func TestMergeRules_DropsSourceOnlyRules(t *testing.T) {
	target := []model.ContractRule{rule("a", "one", "1")}
	source := []model.ContractRule{rule("a", "one", "1"), rule("z", "new", "3")}

	got := MergeRules(target, source)
	for _, r := range got {
		assert.NotEqual(t, "z:new", r.IdentityKey())
	}
}

func TestMerge_Report(t *testing.T) {
	target := []model.ContractRule{rule("a", "one", "1"), rule("b", "two", "2")}
	source := []model.ContractRule{rule("a", "one", "1"), rule("b", "two", "3"), rule("z", "new", "3")}

	report := Merge(target, source)
	assert.True(t, report.Changed())
	assert.Equal(t, []string{"b:two"}, report.Substituted)
	assert.Equal(t, []model.ContractRule{rule("z", "new", "3")}, report.Dropped)
	assert.Equal(t, []model.ContractRule{rule("a", "one", "1"), rule("b", "two", "3")}, report.Rules)
}

func TestMerge_NoChanges(t *testing.T) {
	target := []model.ContractRule{rule("a", "one", "1")}
	report := Merge(target, target)
	assert.False(t, report.Changed())
	assert.Empty(t, report.Dropped)
}
