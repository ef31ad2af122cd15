package terminal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flow_navigator/domain/entities"
)

func newTestTerminal(input string) (*TerminalInterface, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewTerminalInterface(strings.NewReader(input), out, &bytes.Buffer{}), out
}

func TestReadGoal(t *testing.T) {
	term, _ := newTestTerminal("\n1. Open login\n2. Sign in\n\nignored\n")

	goal, err := term.ReadGoal()
	require.NoError(t, err)
	assert.Equal(t, "1. Open login\n2. Sign in", goal)
	assert.Equal(t, 2, entities.NewGoal(goal).DeclaredSteps)
}

func TestReadGoal_EOFWithoutNewline(t *testing.T) {
	term, _ := newTestTerminal("1. Open cart")

	goal, err := term.ReadGoal()
	require.NoError(t, err)
	assert.Equal(t, "1. Open cart", goal)
}

func TestReadGoal_Empty(t *testing.T) {
	term, _ := newTestTerminal("")

	_, err := term.ReadGoal()
	assert.ErrorIs(t, err, ErrNoGoal)
}

func TestPrintResult(t *testing.T) {
	term, out := newTestTerminal("")

	require.NoError(t, term.PrintResult(&entities.RunResult{
		RunID:  "run-1",
		Status: entities.RunStatusCompleted,
	}, nil))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "ended_complete", got["status"])
	assert.Equal(t, "run-1", got["run_id"])
}

func TestPrintResult_PrematureEnd(t *testing.T) {
	term, out := newTestTerminal("")

	entries := []entities.ActionLogEntry{{Step: 1, ActionType: "click", Success: true}}
	result := &entities.RunResult{Status: entities.RunStatusPremature, ActionLog: entries}
	err := &entities.PrematureEndError{CompletedSteps: 1, ExpectedSteps: 3, ActionLog: entries}

	require.NoError(t, term.PrintResult(result, err))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "premature_end", got["error"])
	assert.Equal(t, "ended_premature", got["status"])
	assert.EqualValues(t, 1, got["completed_steps"])
	assert.EqualValues(t, 3, got["expected_steps"])
	assert.Len(t, got["actions_log"], 1)
}

func TestPrintResult_Failure(t *testing.T) {
	term, out := newTestTerminal("")

	require.NoError(t, term.PrintResult(nil, errors.New("failed to launch browser: boom")))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "failed to launch browser: boom", got["error"])
	assert.NotContains(t, got, "completed_steps")
}

func TestResolveGoal(t *testing.T) {
	term, _ := newTestTerminal("1. From stdin\n\n")

	goal, err := resolveGoal(term, "1. From flag", "")
	require.NoError(t, err)
	assert.Equal(t, "1. From flag", goal)

	path := filepath.Join(t.TempDir(), "goal.txt")
	require.NoError(t, os.WriteFile(path, []byte("1. From file\n"), 0644))
	goal, err = resolveGoal(term, "", path)
	require.NoError(t, err)
	assert.Equal(t, "1. From file\n", goal)

	goal, err = resolveGoal(term, "", "")
	require.NoError(t, err)
	assert.Equal(t, "1. From stdin", goal)

	_, err = resolveGoal(term, "", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestSnapshotCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<html><body>
		<h1>Checkout</h1>
		<form><input id="email" name="email" placeholder="Email"><button type="submit">Pay now</button></form>
	</body></html>`), 0644))

	out := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"snapshot", "--file", path, "--log-level", "error"})

	require.NoError(t, cmd.Execute())

	var snap entities.PageSnapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, path, snap.URL)

	var tags []string
	for _, el := range snap.Elements {
		tags = append(tags, el.Tag)
	}
	assert.Contains(t, tags, "h1")
	assert.Contains(t, tags, "input")
	assert.Contains(t, tags, "button")
}

func TestSnapshotCommand_RequiresSource(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"snapshot"})

	assert.Error(t, cmd.Execute())
}

func TestRunCommand_RequiresURL(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--goal", "1. Open"})

	assert.Error(t, cmd.Execute())
}
