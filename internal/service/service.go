// Package service runs the load, transform and save cycle of contracts and
// inspections on top of a Store.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/resilience"
)

// ErrInvalidInput is wrapped by every validation failure raised here.
var ErrInvalidInput = eris.New("service: invalid input")

func invalid(format string, args ...any) error {
	return eris.Wrapf(ErrInvalidInput, format, args...)
}

// IsInvalidInput reports whether err is a validation failure.
func IsInvalidInput(err error) bool {
	return eris.Is(err, ErrInvalidInput)
}

// storeCall retries fn on transient store errors and logs every retry
// under the given operation name.
func storeCall[T any](ctx context.Context, cfg resilience.RetryConfig, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg.OnRetry = resilience.RetryLogger("store", op)
	return resilience.DoVal(ctx, cfg, fn)
}

func storeExec(ctx context.Context, cfg resilience.RetryConfig, op string, fn func(ctx context.Context) error) error {
	cfg.OnRetry = resilience.RetryLogger("store", op)
	return resilience.Do(ctx, cfg, fn)
}

// ValidateContract checks the fields a contract must carry before it is stored.
func ValidateContract(c model.Contract) error {
	var problems []string
	if strings.TrimSpace(c.OperatorID) == "" {
		problems = append(problems, "operatorId is required")
	}
	if strings.TrimSpace(c.ProcurementUnitID) == "" {
		problems = append(problems, "procurementUnitId is required")
	}
	problems = append(problems, checkDates(c.StartDate, c.EndDate)...)
	for i, r := range c.Rules {
		if r.Category == "" || r.Name == "" {
			problems = append(problems, fmt.Sprintf("rule %d needs category and name", i))
		}
	}
	if len(problems) > 0 {
		return invalid("contract: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateInspection checks the fields an inspection must carry before it is stored.
func ValidateInspection(i model.Inspection) error {
	var problems []string
	if strings.TrimSpace(i.OperatorID) == "" {
		problems = append(problems, "operatorId is required")
	}
	problems = append(problems, checkDates(i.StartDate, i.EndDate)...)
	if !i.MaxDate.IsZero() && i.MaxDate.Before(i.StartDate) {
		problems = append(problems, "maxDate is before startDate")
	}
	if len(problems) > 0 {
		return invalid("inspection: %s", strings.Join(problems, "; "))
	}
	return nil
}

func checkDates(start, end time.Time) []string {
	var problems []string
	if start.IsZero() {
		problems = append(problems, "startDate is required")
	}
	if end.IsZero() {
		problems = append(problems, "endDate is required")
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		problems = append(problems, "endDate is before startDate")
	}
	return problems
}
