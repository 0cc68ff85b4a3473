// Package i18n holds the user-facing labels of the service. A Localizer is
// chosen per request or per command and passed to whatever renders output.
package i18n

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"

	"github.com/sells-group/inspection-cli/internal/model"
)

// Supported languages; the first one is the fallback.
var supported = []language.Tag{language.Finnish, language.Swedish, language.English}

var matcher = language.NewMatcher(supported)

// Header keys.
const (
	HeaderArea           = "area"
	HeaderEquipmentClass = "equipmentClass"
	HeaderWeek           = "week"
	HeaderYear           = "year"
	HeaderRequirement    = "requirement"
	HeaderCategory       = "category"
	HeaderName           = "name"
	HeaderCondition      = "condition"
	HeaderValue          = "value"
)

var headers = map[language.Tag]map[string]string{
	language.Finnish: {
		HeaderArea:           "Alue",
		HeaderEquipmentClass: "Kalustoluokka",
		HeaderWeek:           "Viikko",
		HeaderYear:           "Vuosi",
		HeaderRequirement:    "Vaatimus (%)",
		HeaderCategory:       "Kategoria",
		HeaderName:           "Nimi",
		HeaderCondition:      "Ehto",
		HeaderValue:          "Arvo",
	},
	language.Swedish: {
		HeaderArea:           "Område",
		HeaderEquipmentClass: "Materielklass",
		HeaderWeek:           "Vecka",
		HeaderYear:           "År",
		HeaderRequirement:    "Krav (%)",
		HeaderCategory:       "Kategori",
		HeaderName:           "Namn",
		HeaderCondition:      "Villkor",
		HeaderValue:          "Värde",
	},
	language.English: {
		HeaderArea:           "Area",
		HeaderEquipmentClass: "Equipment class",
		HeaderWeek:           "Week",
		HeaderYear:           "Year",
		HeaderRequirement:    "Requirement (%)",
		HeaderCategory:       "Category",
		HeaderName:           "Name",
		HeaderCondition:      "Condition",
		HeaderValue:          "Value",
	},
}

var areas = map[language.Tag]map[model.Area]string{
	language.Finnish: {model.AreaCenter: "Keskusta", model.AreaOther: "Muu"},
	language.Swedish: {model.AreaCenter: "Centrum", model.AreaOther: "Övrigt"},
	language.English: {model.AreaCenter: "Center", model.AreaOther: "Other"},
}

// Localizer renders labels in one language.
type Localizer struct {
	tag language.Tag
}

// Default returns the Finnish localizer.
func Default() Localizer {
	return Localizer{tag: supported[0]}
}

// Parse returns the localizer best matching a BCP 47 tag such as "sv-FI".
func Parse(s string) (Localizer, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return Localizer{}, eris.Wrapf(err, "i18n: parse language %q", s)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Localizer{}, eris.Errorf("i18n: unsupported language %q", s)
	}
	return Localizer{tag: supported[idx]}, nil
}

// FromAcceptLanguage picks a localizer from an Accept-Language header,
// returning fallback when nothing matches.
func FromAcceptLanguage(header string, fallback Localizer) Localizer {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return Localizer{tag: supported[idx]}
}

// Tag returns the language of the localizer.
func (l Localizer) Tag() language.Tag {
	if l.tag == language.Und {
		return supported[0]
	}
	return l.tag
}

// Header returns the column label for key, or key itself when unknown.
func (l Localizer) Header(key string) string {
	if s, ok := headers[l.Tag()][key]; ok {
		return s
	}
	return key
}

// Area returns the display name of an operating area.
func (l Localizer) Area(a model.Area) string {
	if s, ok := areas[l.Tag()][a]; ok {
		return s
	}
	return string(a)
}

// ParseArea accepts an area code or its display name in any supported language.
func ParseArea(s string) (model.Area, error) {
	if a, err := model.ParseArea(s); err == nil {
		return a, nil
	}
	want := strings.TrimSpace(s)
	for _, names := range areas {
		for a, name := range names {
			if strings.EqualFold(name, want) {
				return a, nil
			}
		}
	}
	return "", eris.Errorf("i18n: unknown area %q", s)
}
