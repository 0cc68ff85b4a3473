// Package rules reconciles contract rule sets with default rule templates.
package rules

import "github.com/sells-group/inspection-cli/internal/model"

// MergeReport describes the outcome of merging a source rule set into a target.
type MergeReport struct {
	Rules []model.ContractRule `json:"rules"`
	// Substituted lists identity keys whose value was taken from the source.
	Substituted []string `json:"substituted"`
	// Dropped lists source rules that have no identity match in the target.
	Dropped []model.ContractRule `json:"dropped"`
}

// Changed reports whether any target rule received a new value.
func (r MergeReport) Changed() bool {
	return len(r.Substituted) > 0
}

// MergeRules keeps the structure of targetSet and pulls in values from
// sourceSet where a same-identity rule carries a different value. An empty
// target returns the source unchanged. Source-only rules are not added.
func MergeRules(targetSet, sourceSet []model.ContractRule) []model.ContractRule {
	return Merge(targetSet, sourceSet).Rules
}

// Merge is MergeRules with a report of what was substituted and dropped.
func Merge(targetSet, sourceSet []model.ContractRule) MergeReport {
	if len(targetSet) == 0 {
		return MergeReport{Rules: sourceSet}
	}

	report := MergeReport{Rules: make([]model.ContractRule, 0, len(targetSet))}
	for _, target := range targetSet {
		source, ok := findByIdentity(sourceSet, target.IdentityKey())
		if ok && source.ValueKey() != target.ValueKey() {
			report.Rules = append(report.Rules, source)
			report.Substituted = append(report.Substituted, target.IdentityKey())
			continue
		}
		report.Rules = append(report.Rules, target)
	}

	for _, source := range sourceSet {
		if _, ok := findByIdentity(targetSet, source.IdentityKey()); !ok {
			report.Dropped = append(report.Dropped, source)
		}
	}
	return report
}

func findByIdentity(set []model.ContractRule, key string) (model.ContractRule, bool) {
	for _, r := range set {
		if r.IdentityKey() == key {
			return r, true
		}
	}
	return model.ContractRule{}, false
}
