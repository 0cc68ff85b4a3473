package model

// RuleCategory groups contract rules, e.g. equipment-type rules.
type RuleCategory string

const (
	RuleCategoryEquipment     RuleCategory = "equipmentType"
	RuleCategoryEquipmentAge  RuleCategory = "equipmentAge"
	RuleCategoryEmissionClass RuleCategory = "emissionClass"
	RuleCategoryExecution     RuleCategory = "execution"
)

// ContractRule is a single named rule attached to a contract.
type ContractRule struct {
	Category    string `json:"category" yaml:"category"`
	Name        string `json:"name" yaml:"name"`
	Condition   string `json:"condition,omitempty" yaml:"condition,omitempty"`
	Value       string `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// IdentityKey returns the structural identity of the rule: category and name.
func (r ContractRule) IdentityKey() string {
	return r.Category + ":" + r.Name
}

// ValueKey returns the identity extended with the value-bearing fields.
// Two rules with equal ValueKey carry the same effective value.
func (r ContractRule) ValueKey() string {
	cond := r.Condition
	if cond == "" {
		cond = "value"
	}
	return r.IdentityKey() + ":" + cond + ":" + r.Value
}
