package service

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/resilience"
	"github.com/sells-group/inspection-cli/internal/rules"
	"github.com/sells-group/inspection-cli/internal/store"
)

// RuleService merges default rule templates into contract rule sets.
type RuleService struct {
	store     store.Store
	templates *rules.TemplateSet
	retry     resilience.RetryConfig
}

// NewRuleService creates a RuleService. templates may be nil, in which case
// templates are only looked up in the store.
func NewRuleService(st store.Store, templates *rules.TemplateSet, retry resilience.RetryConfig) *RuleService {
	return &RuleService{store: st, templates: templates, retry: retry}
}

// CreateContract validates and stores a new contract.
func (s *RuleService) CreateContract(ctx context.Context, c model.Contract) (*model.Contract, error) {
	if err := ValidateContract(c); err != nil {
		return nil, err
	}
	created, err := storeCall(ctx, s.retry, "create_contract", func(ctx context.Context) (*model.Contract, error) {
		return s.store.CreateContract(ctx, c)
	})
	if err != nil {
		return nil, eris.Wrap(err, "service: create contract")
	}
	return created, nil
}

// GetContract returns a stored contract.
func (s *RuleService) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	c, err := storeCall(ctx, s.retry, "get_contract", func(ctx context.Context) (*model.Contract, error) {
		return s.store.GetContract(ctx, id)
	})
	if err != nil {
		return nil, eris.Wrap(err, "service: get contract")
	}
	return c, nil
}

// Template resolves a rule template, preferring the stored copy over the
// one loaded from file.
func (s *RuleService) Template(ctx context.Context, name string) (rules.Template, error) {
	tmpl, err := storeCall(ctx, s.retry, "get_rule_template", func(ctx context.Context) (*rules.Template, error) {
		return s.store.GetRuleTemplate(ctx, name)
	})
	if err == nil {
		return *tmpl, nil
	}
	if !store.IsNotFound(err) {
		return rules.Template{}, eris.Wrap(err, "service: get rule template")
	}
	if s.templates == nil {
		return rules.Template{}, eris.Wrapf(rules.ErrUnknownTemplate, "template %q", name)
	}
	return s.templates.Get(name)
}

// MergeTemplate merges the named template into the contract's rules and
// stores the result when anything changed.
func (s *RuleService) MergeTemplate(ctx context.Context, contractID, templateName string) (*rules.MergeReport, error) {
	log := zap.L().With(zap.String("contract_id", contractID), zap.String("template", templateName))

	contract, err := s.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.Template(ctx, templateName)
	if err != nil {
		return nil, err
	}

	report := rules.Merge(contract.Rules, tmpl.Rules)
	for _, d := range report.Dropped {
		log.Warn("rules: template rule has no match in contract, not added",
			zap.String("rule", d.IdentityKey()),
			zap.String("value", d.Value),
		)
	}

	seeded := len(contract.Rules) == 0 && len(report.Rules) > 0
	if !report.Changed() && !seeded {
		log.Debug("rules: contract already matches template")
		return &report, nil
	}

	err = storeExec(ctx, s.retry, "update_contract_rules", func(ctx context.Context) error {
		return s.store.UpdateContractRules(ctx, contractID, report.Rules)
	})
	if err != nil {
		return nil, eris.Wrap(err, "service: update contract rules")
	}

	log.Info("rules: merged template",
		zap.Strings("substituted", report.Substituted),
		zap.Int("dropped", len(report.Dropped)),
		zap.Bool("seeded", seeded),
	)
	return &report, nil
}

// SeedTemplates writes every loaded template to the store.
func (s *RuleService) SeedTemplates(ctx context.Context) (int64, error) {
	if s.templates == nil {
		return 0, nil
	}
	names := s.templates.Names()
	list := make([]rules.Template, 0, len(names))
	for _, name := range names {
		tmpl, err := s.templates.Get(name)
		if err != nil {
			return 0, err
		}
		list = append(list, tmpl)
	}

	n, err := storeCall(ctx, s.retry, "upsert_rule_templates", func(ctx context.Context) (int64, error) {
		return s.store.UpsertRuleTemplates(ctx, list)
	})
	if err != nil {
		return 0, eris.Wrap(err, "service: seed templates")
	}
	zap.L().Info("rules: seeded templates", zap.Int("templates", len(list)), zap.Int64("rules", n))
	return n, nil
}
