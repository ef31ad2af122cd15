package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"flow_navigator/domain/entities"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNoGoal is returned when the interactive prompt ends without any goal text
var ErrNoGoal = errors.New("no goal provided")

// TerminalInterface reads goals from the user and prints run outcomes
type TerminalInterface struct {
	reader *bufio.Reader
	out    io.Writer
	prompt io.Writer
}

// NewTerminalInterface - creates terminal bound to in/out. Prompts go to prompt,
// results go to out.
func NewTerminalInterface(in io.Reader, out, prompt io.Writer) *TerminalInterface {
	return &TerminalInterface{
		reader: bufio.NewReader(in),
		out:    out,
		prompt: prompt,
	}
}

// ReadGoal - reads goal lines until an empty line or EOF
func (t *TerminalInterface) ReadGoal() (string, error) {
	fmt.Fprintln(t.prompt, "Flow Navigator")
	fmt.Fprintln(t.prompt, "==============")
	fmt.Fprintln(t.prompt, "Enter the user story, one numbered step per line. Finish with an empty line.")
	fmt.Fprintln(t.prompt)

	var lines []string
	for {
		fmt.Fprint(t.prompt, "> ")
		input, err := t.reader.ReadString('\n')
		line := strings.TrimRight(input, "\r\n")

		if strings.TrimSpace(line) == "" {
			if err == nil && len(lines) == 0 {
				continue
			}
			break
		}
		lines = append(lines, line)

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
	}

	if len(lines) == 0 {
		return "", ErrNoGoal
	}
	return strings.Join(lines, "\n"), nil
}

// errorPayload is printed instead of a result when a run fails
type errorPayload struct {
	Error          string                    `json:"error"`
	Status         entities.RunStatus        `json:"status,omitempty"`
	CompletedSteps *int                      `json:"completed_steps,omitempty"`
	ExpectedSteps  *int                      `json:"expected_steps,omitempty"`
	ActionLog      []entities.ActionLogEntry `json:"actions_log,omitempty"`
}

func newErrorPayload(result *entities.RunResult, err error) errorPayload {
	payload := errorPayload{Error: err.Error()}
	if result != nil {
		payload.Status = result.Status
		payload.ActionLog = result.ActionLog
	}

	var premature *entities.PrematureEndError
	if errors.As(err, &premature) {
		payload.Error = "premature_end"
		payload.CompletedSteps = &premature.CompletedSteps
		payload.ExpectedSteps = &premature.ExpectedSteps
		payload.ActionLog = premature.ActionLog
	}
	return payload
}

// PrintResult - writes result as JSON, or an error payload when err is set
func (t *TerminalInterface) PrintResult(result *entities.RunResult, err error) error {
	if err != nil {
		return t.PrintJSON(newErrorPayload(result, err))
	}
	return t.PrintJSON(result)
}

// PrintJSON - writes v as indented JSON
func (t *TerminalInterface) PrintJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(t.out, string(data))
	return err
}
