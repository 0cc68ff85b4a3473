package requirement

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// MaxRequirementLength is the longest accepted requirement text.
const MaxRequirementLength = 7

// ErrInvalidRequirement is returned for requirement values that are not a
// percentage between 0 and 100.
var ErrInvalidRequirement = eris.New("requirement: invalid value")

// ValidateRequirement checks a user-entered requirement and returns it
// trimmed. Both "," and "." are accepted as the decimal separator.
func ValidateRequirement(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", eris.Wrap(ErrInvalidRequirement, "requirement: empty value")
	}
	if len(v) > MaxRequirementLength {
		return "", eris.Wrapf(ErrInvalidRequirement, "requirement: %q longer than %d characters", v, MaxRequirementLength)
	}
	f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", eris.Wrapf(ErrInvalidRequirement, "requirement: %q is not a number", v)
	}
	if f < 0 || f > 100 {
		return "", eris.Wrapf(ErrInvalidRequirement, "requirement: %q outside 0-100", v)
	}
	return v, nil
}
