package assertion

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"flow_navigator/domain/entities"
	"flow_navigator/domain/interfaces"
	"flow_navigator/infrastructure/browser/browsertest"
)

func fixturePage() *browsertest.Page {
	page := browsertest.NewPage("https://shop.test/checkout?step=2")
	page.PageTitle = "Checkout | Cake Shop"
	page.Add("#total", &browsertest.Element{Text: "Total: $42.00"})
	page.Add("#email", &browsertest.Element{Value: "a@b.c", Attrs: map[string]string{"type": "email"}})
	page.Add(".item", &browsertest.Element{}, &browsertest.Element{})
	page.Add("#terms", &browsertest.Element{Checked: true})
	page.Add("#pay", &browsertest.Element{Disabled: true})
	page.Add("#spinner", &browsertest.Element{Hidden: true})
	return page
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		action  entities.AssertAction
		success bool
		actual  any
	}{
		{
			name:    "text contains case-insensitive",
			action:  entities.AssertAction{Subtype: entities.AssertText, Target: entities.Target{Selector: "#total"}, Expected: "total: $42"},
			success: true,
			actual:  "Total: $42.00",
		},
		{
			name:    "text falls back to value",
			action:  entities.AssertAction{Subtype: entities.AssertText, Target: entities.Target{Selector: "#total"}, Value: "$99"},
			success: false,
			actual:  "Total: $42.00",
		},
		{
			name:    "url from url field",
			action:  entities.AssertAction{Subtype: entities.AssertURL, URL: "/checkout"},
			success: true,
			actual:  "https://shop.test/checkout?step=2",
		},
		{
			name:    "title",
			action:  entities.AssertAction{Subtype: entities.AssertTitle, Expected: "cake shop"},
			success: true,
			actual:  "Checkout | Cake Shop",
		},
		{
			name:    "count coerces string",
			action:  entities.AssertAction{Subtype: entities.AssertCount, Target: entities.Target{Selector: ".item"}, Expected: "2"},
			success: true,
			actual:  2,
		},
		{
			name:    "count from json number",
			action:  entities.AssertAction{Subtype: entities.AssertCount, Target: entities.Target{Selector: ".item"}, Expected: float64(3)},
			success: false,
			actual:  2,
		},
		{
			name:    "count with non numeric expected",
			action:  entities.AssertAction{Subtype: entities.AssertCount, Target: entities.Target{Selector: ".item"}, Expected: "two"},
			success: false,
			actual:  2,
		},
		{
			name:    "input value",
			action:  entities.AssertAction{Subtype: entities.AssertValue, Target: entities.Target{Selector: "#email"}, Expected: "a@b.c"},
			success: true,
			actual:  "a@b.c",
		},
		{
			name:    "attribute",
			action:  entities.AssertAction{Subtype: entities.AssertAttribute, Target: entities.Target{Selector: "#email"}, Attribute: "type", Expected: "email"},
			success: true,
			actual:  "email",
		},
		{
			name:    "enabled defaults to true",
			action:  entities.AssertAction{Subtype: entities.AssertEnabled, Target: entities.Target{Selector: "#pay"}},
			success: false,
			actual:  false,
		},
		{
			name:    "enabled false as string",
			action:  entities.AssertAction{Subtype: entities.AssertEnabled, Target: entities.Target{Selector: "#pay"}, Expected: "false"},
			success: true,
			actual:  false,
		},
		{
			name:    "selected",
			action:  entities.AssertAction{Subtype: entities.AssertSelected, Target: entities.Target{Selector: "#terms"}, Expected: true},
			success: true,
			actual:  true,
		},
		{
			name:    "visibility",
			action:  entities.AssertAction{Subtype: entities.AssertVisibility, Target: entities.Target{Selector: "#spinner"}, Expected: false},
			success: true,
			actual:  false,
		},
		{
			name:    "not visible for hidden element",
			action:  entities.AssertAction{Subtype: entities.AssertNotVisible, Target: entities.Target{Selector: "#spinner"}},
			success: true,
			actual:  true,
		},
		{
			name:    "not visible for missing element",
			action:  entities.AssertAction{Subtype: entities.AssertNotVisible, Target: entities.Target{Selector: "#gone"}},
			success: true,
			actual:  true,
		},
		{
			name:    "not visible for shown element",
			action:  entities.AssertAction{Subtype: entities.AssertNotVisible, Target: entities.Target{Selector: "#total"}},
			success: false,
			actual:  false,
		},
	}

	logger, _ := test.NewNullLogger()
	ev := NewEvaluator(logger)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := fixturePage()
			var loc interfaces.Locator
			if tt.action.Selector != "" {
				loc = page.Locator(tt.action.Selector).Nth(0)
			}

			v := ev.Evaluate(context.Background(), page, tt.action, loc)

			assert.Equal(t, tt.success, v.Success, v.Message)
			assert.Equal(t, tt.actual, v.Actual)
			assert.NotEmpty(t, v.Message)
			assert.NotEmpty(t, v.Description)
		})
	}
}

func TestEvaluate_ValidationFailures(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ev := NewEvaluator(logger)
	page := fixturePage()

	v := ev.Evaluate(context.Background(), page, entities.AssertAction{Subtype: entities.AssertTitle}, nil)
	assert.False(t, v.Success)
	assert.Contains(t, v.Message, "No expected value")

	v = ev.Evaluate(context.Background(), page, entities.AssertAction{
		Subtype: entities.AssertAttribute, Target: entities.Target{Selector: "#email"}, Expected: "x",
	}, page.Locator("#email"))
	assert.False(t, v.Success)
	assert.Contains(t, v.Message, "Missing attribute name")

	v = ev.Evaluate(context.Background(), page, entities.AssertAction{
		Subtype: "element_present", Target: entities.Target{Selector: "#email"},
	}, page.Locator("#email"))
	assert.False(t, v.Success)
	assert.Equal(t, "Unknown assertion subtype: element_present", v.Message)

	v = ev.Evaluate(context.Background(), page, entities.AssertAction{
		Subtype: entities.AssertText, Target: entities.Target{Selector: "#gone"}, Expected: "x",
	}, page.Locator("#gone"))
	assert.False(t, v.Success)
	assert.Contains(t, v.Message, "Assertion execution failed")
}

func TestEvaluate_UsesIndexedMatch(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ev := NewEvaluator(logger)

	page := browsertest.NewPage("https://shop.test/options")
	page.Add(".opt",
		&browsertest.Element{Value: "small", Attrs: map[string]string{"data-size": "s"}},
		&browsertest.Element{Value: "large", Checked: true, Disabled: true, Attrs: map[string]string{"data-size": "l"}},
	)
	second := page.Locator(".opt").Nth(1)

	tests := []struct {
		name   string
		action entities.AssertAction
		actual any
	}{
		{
			name:   "input value",
			action: entities.AssertAction{Subtype: entities.AssertValue, Expected: "large"},
			actual: "large",
		},
		{
			name:   "attribute",
			action: entities.AssertAction{Subtype: entities.AssertAttribute, Attribute: "data-size", Expected: "l"},
			actual: "l",
		},
		{
			name:   "selected",
			action: entities.AssertAction{Subtype: entities.AssertSelected},
			actual: true,
		},
		{
			name:   "enabled",
			action: entities.AssertAction{Subtype: entities.AssertEnabled, Expected: false},
			actual: false,
		},
		{
			name:   "count spans every match",
			action: entities.AssertAction{Subtype: entities.AssertCount, Expected: 2},
			actual: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := 1
			tt.action.Target = entities.Target{Selector: ".opt", Index: &idx}

			v := ev.Evaluate(context.Background(), page, tt.action, second)

			assert.True(t, v.Success, v.Message)
			assert.Equal(t, tt.actual, v.Actual)
		})
	}
}
