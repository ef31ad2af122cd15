package executor

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flow_navigator/application/assertion"
	"flow_navigator/domain/entities"
	"flow_navigator/infrastructure/browser/browsertest"
)

func newTestExecutor() *Executor {
	logger, _ := test.NewNullLogger()
	return NewExecutor(Settings{
		ActionTimeout:     time.Second,
		NavigationTimeout: time.Second,
		Attempts:          3,
		RetryDelay:        time.Millisecond,
	}, assertion.NewEvaluator(logger), logger)
}

func intPtr(i int) *int { return &i }

func TestExecute_Click(t *testing.T) {
	page := browsertest.NewPage("https://app.test/")
	btn := &browsertest.Element{Text: "Sign in"}
	page.Add("#submit", btn)

	res := newTestExecutor().Execute(context.Background(), page,
		entities.ClickAction{Target: entities.Target{Selector: "#submit"}})

	assert.True(t, res.Success, res.Message)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, btn.Clicks)
}

func TestExecute_IndexTieBreak(t *testing.T) {
	tests := []struct {
		name    string
		matches int
		index   *int
		want    int
	}{
		{name: "single match ignores index", matches: 1, index: intPtr(5), want: 0},
		{name: "index in range", matches: 3, index: intPtr(2), want: 2},
		{name: "index out of range", matches: 3, index: intPtr(7), want: 0},
		{name: "negative index", matches: 3, index: intPtr(-1), want: 0},
		{name: "no index", matches: 3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := browsertest.NewPage("https://app.test/")
			els := make([]*browsertest.Element, tt.matches)
			for i := range els {
				els[i] = &browsertest.Element{}
			}
			page.Add(".card", els...)

			res := newTestExecutor().Execute(context.Background(), page,
				entities.ClickAction{Target: entities.Target{Selector: ".card", Index: tt.index}})

			require.True(t, res.Success, res.Message)
			for i, el := range els {
				if i == tt.want {
					assert.Equal(t, 1, el.Clicks, "element %d", i)
				} else {
					assert.Zero(t, el.Clicks, "element %d", i)
				}
			}
		})
	}
}

func TestPick_SingleMatchNeverConsultsIndex(t *testing.T) {
	page := browsertest.NewPage("https://app.test/")
	page.Add("#only", &browsertest.Element{})

	loc := Pick(page.Locator("#only"), 1, intPtr(3))

	assert.Equal(t, 0, loc.(*browsertest.Locator).Index())
}

func TestExecute_RetriesTransientFailures(t *testing.T) {
	page := browsertest.NewPage("https://app.test/")
	btn := &browsertest.Element{FailClicks: 1}
	page.Add("#late", btn)
	page.Delays["#late"] = 1

	res := newTestExecutor().Execute(context.Background(), page,
		entities.ClickAction{Target: entities.Target{Selector: "#late"}})

	assert.True(t, res.Success, res.Message)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 1, btn.Clicks)
}

func TestExecute_GivesUpAfterBudget(t *testing.T) {
	page := browsertest.NewPage("https://app.test/")
	page.Add("#disabled", &browsertest.Element{Disabled: true})

	res := newTestExecutor().Execute(context.Background(), page,
		entities.ClickAction{Target: entities.Target{Selector: "#disabled"}})

	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Attempts)
	assert.Contains(t, res.Message, "not interactable")
	assert.Len(t, page.WaitCalls, 3)
}

func TestExecute_MalformedActionsFailFast(t *testing.T) {
	page := browsertest.NewPage("https://app.test/")
	ex := newTestExecutor()

	res := ex.Execute(context.Background(), page, entities.FillAction{Verb: entities.ActionFill, Value: "x"})
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "No selector provided for action.", res.Message)

	res = ex.Execute(context.Background(), page,
		entities.FromSpec(entities.ActionSpec{Type: "hover", Selector: "#menu"}))
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	assert.Contains(t, res.Message, "unknown action type: hover")

	assert.Empty(t, page.WaitCalls)
}

func TestExecute_FillSelectPressSubmit(t *testing.T) {
	page := browsertest.NewPage("https://app.test/")
	input := &browsertest.Element{}
	sel := &browsertest.Element{}
	form := &browsertest.Element{IsForm: true}
	page.Add("#user", input).Add("#size", sel).Add("#search", form)
	ex := newTestExecutor()
	ctx := context.Background()

	target := func(s string) entities.Target { return entities.Target{Selector: s} }

	require.True(t, ex.Execute(ctx, page, entities.FillAction{Verb: entities.ActionInput, Target: target("#user"), Value: "alice"}).Success)
	require.True(t, ex.Execute(ctx, page, entities.SelectAction{Target: target("#size"), Value: "L"}).Success)
	require.True(t, ex.Execute(ctx, page, entities.KeyPressAction{Verb: entities.ActionEnter, Target: target("#user")}).Success)
	require.True(t, ex.Execute(ctx, page, entities.KeyPressAction{Verb: entities.ActionPress, Target: target("#user"), Key: "Tab"}).Success)
	require.True(t, ex.Execute(ctx, page, entities.SubmitAction{Target: target("#search")}).Success)

	assert.Equal(t, "alice", input.Value)
	assert.Equal(t, []string{"L"}, sel.Selected)
	assert.Equal(t, []string{"Enter", "Tab"}, input.Presses)
	assert.Equal(t, 1, form.Submitted)
}

func TestExecute_Navigate(t *testing.T) {
	page := browsertest.NewPage("https://app.test/")
	ex := newTestExecutor()

	res := ex.Execute(context.Background(), page, entities.NavigateAction{URL: "https://app.test/"})
	assert.True(t, res.Success)
	assert.Equal(t, "Already at target URL.", res.Message)
	assert.Empty(t, page.GotoCalls)

	res = ex.Execute(context.Background(), page, entities.NavigateAction{URL: "https://app.test/cart"})
	assert.True(t, res.Success)
	assert.Equal(t, []string{"https://app.test/cart"}, page.GotoCalls)

	res = ex.Execute(context.Background(), page, entities.NavigateAction{})
	assert.False(t, res.Success)
}

func TestExecute_AssertIsEvaluatedOnce(t *testing.T) {
	page := browsertest.NewPage("https://app.test/")
	page.Add("#banner", &browsertest.Element{Text: "Welcome back", Hidden: true})

	res := newTestExecutor().Execute(context.Background(), page, entities.AssertAction{
		Verb:     entities.ActionAssert,
		Subtype:  entities.AssertText,
		Target:   entities.Target{Selector: "#banner"},
		Expected: "goodbye",
	})

	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	require.NotNil(t, res.Verdict)
	assert.Equal(t, "Welcome back", res.Verdict.Actual)
	assert.Empty(t, page.WaitCalls)
}
