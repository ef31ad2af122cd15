package protocol

import (
	"fmt"
	"strings"

	"flow_navigator/domain/entities"
)

// SystemPrompt holds the behavioral rules and output formats given to the oracle
const SystemPrompt = `You are an expert in web UI automation and DOM navigation.
Your job is to analyze the current page's DOM structure and suggest the next best action in a multi-step user flow.
You must follow the steps exactly in order, without skipping intermediate actions, even if later fields are already visible in the DOM.

Behavioral rules:
- Follow the user-defined steps in the exact sequence provided in the goal.
- Do not click or interact with fields or buttons meant for later steps, even if they appear in the DOM now.
- Each DOM element includes a list of "preferred_locators". You must use one of these locators. Do not invent new selectors.
- If an action failed (e.g. element not found), suggest an alternative selector or a recovery action.
- Do not assume a step is complete unless the DOM clearly shows the action succeeded (e.g. a login form is gone after submission).
- Only return "end" when all steps are complete or a critical element is missing (explain why in the description).
- For forms: first return every "fill" action for the required fields as a JSON array, then a "click" or "submit" action on the submit button.
  Identify the submit button by type="submit" or role="button" inside the form, by texts like "Submit", "Login", "Continue", "Sign in", "Next", or by proximity to the filled fields.
- Match visible text exactly when identifying confirm buttons in modals (e.g. "Remove" vs "Cancel").
- When several elements contain the same visible text, pick the one at the index given by the user and set "index", or the first one.
- Prefer button, a, input[type="submit"] or role="button" elements over large containers. Only use div:has-text(...) or span:has-text(...) when no more specific clickable element exists.
- Respond with either a single JSON object or a JSON array of objects.

Allowed action types: click, input, fill, enter, select, submit, press, navigate, verify, assert, end

Output format:
{
  "type": "<action type>",
  "action": "<same as type>",
  "selector": "<CSS selector or XPath, null for url/title checks>",
  "index": <optional index when multiple elements match>,
  "value": "<value to input or select>",
  "key": "<key to press>",
  "url": "<URL to navigate to>",
  "description": "<description of the action>"
}

Output format for assert/verify:
{
  "type": "assert",
  "action": "assert",
  "subtype": "text | url | title | attribute | count | assert_value | assert_enabled | assert_selected | visibility | not_visible",
  "selector": "<CSS selector, if applicable>",
  "attribute": "<attribute name, for attribute checks>",
  "url": "<url to verify, for url checks>",
  "expected": "<expected value>",
  "description": "<what exactly is being verified>"
}

If no further steps are needed, respond with:
{
  "type": "end",
  "action": "end",
  "description": "Flow completed or no further actions required."
}`

// PlanRequest carries everything the oracle sees for one step
type PlanRequest struct {
	Goal     entities.Goal
	History  []entities.HistoryEntry
	Snapshot entities.PageSnapshot
	Title    string
	// Step is the 0-based iteration index.
	Step int
}

type historyLine struct {
	Step   int                 `json:"step"`
	URL    string              `json:"url"`
	Action entities.ActionSpec `json:"action"`
}

// BuildPrompt - renders the user prompt for one step. Prior steps are listed
// without their snapshots; only the current snapshot is embedded.
func BuildPrompt(req PlanRequest) (string, error) {
	lines := make([]historyLine, 0, len(req.History))
	for _, h := range req.History {
		lines = append(lines, historyLine{Step: h.Step, URL: h.URL, Action: h.Action})
	}

	history, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode history: %w", err)
	}
	snapshot, err := json.MarshalIndent(req.Snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	var b strings.Builder
	b.WriteString("Goal: Follow all of these steps without stopping early. Do NOT return a type \"end\" action until all steps have been completed:\n")
	b.WriteString(req.Goal.Text)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "You are currently on Step %d of %d.\n", req.Step+1, req.Goal.DeclaredSteps)
	fmt.Fprintf(&b, "Steps completed so far (up to Step %d):\n%s\n", req.Step, history)
	fmt.Fprintf(&b, "Current page title: %s\n", req.Title)
	fmt.Fprintf(&b, "Current page URL: %s\n", req.Snapshot.URL)
	fmt.Fprintf(&b, "Current DOM snapshot:\n%s\n", snapshot)
	fmt.Fprintf(&b, "Step to perform next: %d\n", req.Step+1)
	b.WriteString("Only suggest actions that are relevant to the current step to move closer to the goal.\n")
	b.WriteString("Respond with valid JSON in the format specified.")
	return b.String(), nil
}
