// Package assertion checks the live page against oracle-requested expectations.
package assertion

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"flow_navigator/domain/entities"
	"flow_navigator/domain/interfaces"
)

// Evaluator produces verdicts for assert and verify actions
type Evaluator struct {
	logger *logrus.Logger
}

// NewEvaluator - creates new assertion evaluator
func NewEvaluator(logger *logrus.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Evaluate - runs one assertion. loc is the already resolved element (nth by
// index, else first), or nil for page-level subtypes; count looks at every
// match of the selector. Failures are reported in the verdict, never raised.
func (e *Evaluator) Evaluate(ctx context.Context, page interfaces.Page, a entities.AssertAction, loc interfaces.Locator) entities.Verdict {
	v := entities.Verdict{
		Subtype:     a.Subtype,
		Selector:    a.Selector,
		Expected:    a.ExpectedValue(),
		Description: a.Description,
	}
	if v.Description == "" {
		v.Description = fmt.Sprintf("Assertion of type '%s'", a.Subtype)
	}

	if err := e.check(ctx, page, a, loc, &v); err != nil {
		v.Success = false
		v.Message = fmt.Sprintf("Assertion execution failed: %v", err)
	}

	e.logger.WithFields(logrus.Fields{
		"subtype":  v.Subtype,
		"selector": v.Selector,
		"success":  v.Success,
	}).Info(v.Message)

	return v
}

func (e *Evaluator) check(ctx context.Context, page interfaces.Page, a entities.AssertAction, loc interfaces.Locator, v *entities.Verdict) error {
	expected := v.Expected

	if needsExpected(a.Subtype) && expected == nil {
		v.Message = fmt.Sprintf("No expected value provided for %s assertion", a.Subtype)
		return nil
	}
	if needsElement(a.Subtype) && (loc == nil || a.Selector == "") {
		v.Message = fmt.Sprintf("No selector provided for %s assertion", a.Subtype)
		return nil
	}

	switch a.Subtype {
	case entities.AssertNotVisible:
		n, err := loc.Count()
		if err != nil {
			return err
		}
		hidden := true
		if n > 0 {
			if hidden, err = loc.IsHidden(); err != nil {
				return err
			}
		}
		v.Actual = hidden
		v.Success = hidden
		if hidden {
			v.Message = "Element is not visible as expected"
		} else {
			v.Message = "Element is still visible"
		}

	case entities.AssertText:
		text, err := loc.InnerText()
		if err != nil {
			return err
		}
		want := strings.TrimSpace(entities.ValueString(expected))
		v.Actual = text
		v.Success = strings.Contains(strings.ToLower(text), strings.ToLower(want))
		if v.Success {
			v.Message = fmt.Sprintf("Element text contains '%s'", want)
		} else {
			v.Message = fmt.Sprintf("Element text '%s' does not contain '%s'", text, want)
		}

	case entities.AssertValue:
		actual, err := loc.InputValue()
		if err != nil {
			return err
		}
		want := entities.ValueString(expected)
		v.Actual = actual
		v.Success = actual == want
		v.Message = fmt.Sprintf("Input value: expected '%s', got '%s'", want, actual)

	case entities.AssertAttribute:
		if a.Attribute == "" {
			v.Message = "Missing attribute name for attribute assertion"
			return nil
		}
		actual, err := loc.GetAttribute(a.Attribute)
		if err != nil {
			return err
		}
		want := entities.ValueString(expected)
		v.Actual = actual
		v.Success = actual == want
		v.Message = fmt.Sprintf("Attribute '%s': expected '%s', got '%s'", a.Attribute, want, actual)

	case entities.AssertCount:
		n, err := page.Locator(a.Selector).Count()
		if err != nil {
			return err
		}
		v.Actual = n
		want, ok := toInt(expected)
		if !ok {
			v.Message = fmt.Sprintf("Expected count '%v' is not a number, found %d elements", expected, n)
			return nil
		}
		v.Success = n == want
		if v.Success {
			v.Message = fmt.Sprintf("Found %d elements as expected", n)
		} else {
			v.Message = fmt.Sprintf("Expected %d elements, but found %d", want, n)
		}

	case entities.AssertURL:
		current := page.URL()
		want := entities.ValueString(expected)
		v.Actual = current
		v.Success = strings.Contains(current, want)
		if v.Success {
			v.Message = fmt.Sprintf("URL contains '%s'", want)
		} else {
			v.Message = fmt.Sprintf("URL '%s' does not contain '%s'", current, want)
		}

	case entities.AssertTitle:
		title, err := page.Title(ctx)
		if err != nil {
			return err
		}
		want := entities.ValueString(expected)
		v.Actual = title
		v.Success = strings.Contains(strings.ToLower(title), strings.ToLower(want))
		if v.Success {
			v.Message = fmt.Sprintf("Title contains '%s'", want)
		} else {
			v.Message = fmt.Sprintf("Title '%s' does not contain '%s'", title, want)
		}

	case entities.AssertEnabled:
		enabled, err := loc.IsEnabled()
		if err != nil {
			return err
		}
		want := toBool(expected)
		v.Expected = want
		v.Actual = enabled
		v.Success = enabled == want
		v.Message = fmt.Sprintf("Enabled state: expected %t, got %t", want, enabled)

	case entities.AssertSelected:
		checked, err := loc.IsChecked()
		if err != nil {
			return err
		}
		want := toBool(expected)
		v.Expected = want
		v.Actual = checked
		v.Success = checked == want
		v.Message = fmt.Sprintf("Selected state: expected %t, got %t", want, checked)

	case entities.AssertVisibility:
		visible, err := loc.IsVisible()
		if err != nil {
			return err
		}
		want := toBool(expected)
		v.Expected = want
		v.Actual = visible
		v.Success = visible == want
		v.Message = fmt.Sprintf("Visibility expected: %t, actual: %t", want, visible)

	default:
		v.Message = fmt.Sprintf("Unknown assertion subtype: %s", a.Subtype)
	}
	return nil
}

func needsExpected(s entities.AssertionSubtype) bool {
	switch s {
	case entities.AssertText, entities.AssertTitle, entities.AssertCount,
		entities.AssertAttribute, entities.AssertValue, entities.AssertURL:
		return true
	}
	return false
}

func needsElement(s entities.AssertionSubtype) bool {
	switch s {
	case entities.AssertNotVisible, entities.AssertText, entities.AssertValue, entities.AssertAttribute,
		entities.AssertCount, entities.AssertEnabled, entities.AssertSelected, entities.AssertVisibility:
		return true
	}
	return false
}

// toInt - coerces a loosely typed expected count
func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case float64:
		if val != float64(int(val)) {
			return 0, false
		}
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		return n, err == nil
	}
	return 0, false
}

// toBool - coerces a loosely typed expected flag; absent means true
func toBool(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return strings.TrimSpace(val) != ""
		}
		return b
	case float64:
		return val != 0
	case int:
		return val != 0
	}
	return true
}
