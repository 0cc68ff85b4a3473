package rules

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/inspection-cli/internal/model"
)

// ErrUnknownTemplate is returned when a template name is not defined.
var ErrUnknownTemplate = eris.New("rules: unknown template")

// Template is a named set of default contract rules.
type Template struct {
	Name        string               `yaml:"-" json:"name"`
	Description string               `yaml:"description" json:"description,omitempty"`
	Rules       []model.ContractRule `yaml:"rules" json:"rules"`
}

// TemplateSet indexes templates by name.
type TemplateSet struct {
	templates map[string]Template
}

// NewTemplateSet validates and indexes the given templates.
func NewTemplateSet(templates ...Template) (*TemplateSet, error) {
	ts := &TemplateSet{templates: make(map[string]Template, len(templates))}
	for _, t := range templates {
		if t.Name == "" {
			return nil, eris.New("rules: template without name")
		}
		if _, dup := ts.templates[t.Name]; dup {
			return nil, eris.Errorf("rules: duplicate template %q", t.Name)
		}
		if err := validateRules(t.Name, t.Rules); err != nil {
			return nil, err
		}
		ts.templates[t.Name] = t
	}
	return ts, nil
}

// LoadTemplates reads rule templates from a YAML file of the form
//
//	templates:
//	  default:
//	    rules:
//	      - {category: equipmentType, name: age, value: "5"}
func LoadTemplates(path string) (*TemplateSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read templates %s", path)
	}
	return ParseTemplates(data)
}

// ParseTemplates parses the YAML template document.
func ParseTemplates(data []byte) (*TemplateSet, error) {
	var doc struct {
		Templates map[string]Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "rules: parse templates")
	}

	templates := make([]Template, 0, len(doc.Templates))
	for name, t := range doc.Templates {
		t.Name = name
		templates = append(templates, t)
	}
	return NewTemplateSet(templates...)
}

// Get returns the named template.
func (ts *TemplateSet) Get(name string) (Template, error) {
	t, ok := ts.templates[name]
	if !ok {
		return Template{}, eris.Wrapf(ErrUnknownTemplate, "rules: template %q", name)
	}
	return t, nil
}

// Names returns template names sorted alphabetically.
func (ts *TemplateSet) Names() []string {
	names := make([]string, 0, len(ts.templates))
	for name := range ts.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateRules(template string, rules []model.ContractRule) error {
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.Category == "" || r.Name == "" {
			return eris.Errorf("rules: template %q rule %d: category and name are required", template, i)
		}
		key := r.IdentityKey()
		if seen[key] {
			return eris.Errorf("rules: template %q: duplicate rule %s", template, key)
		}
		seen[key] = true
	}
	return nil
}
