package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gamalabs/agentpool/core"
	"github.com/gamalabs/agentpool/internal/util"
	"github.com/gamalabs/agentpool/model"
)

// ModelAgent executes every task by rendering it into a prompt and calling
// a text-completion model. It is the worker for open-ended tasks where the
// domain logic lives in the model, not in code.
type ModelAgent struct {
	BaseAgent

	model        model.Model
	instructions string
}

// ModelAgentOptions configure a ModelAgent beyond its base Config.
type ModelAgentOptions struct {
	Config Config
	// Instructions is the system-level steering text sent with every task.
	Instructions string
	// Capabilities seeds the initial capability set.
	Capabilities []core.Capability
}

// NewModelAgent constructs a ModelAgent in StateInitializing.
func NewModelAgent(id, name string, kind core.Kind, m model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{Config: DefaultConfig()}
	for _, fn := range optFns {
		fn(&opts)
	}
	a := &ModelAgent{
		BaseAgent:    NewBaseAgent(id, name, kind, func(c *Config) { *c = opts.Config }),
		model:        m,
		instructions: opts.Instructions,
	}
	for _, c := range opts.Capabilities {
		a.AddCapability(c)
	}
	return a
}

// Execute renders the task into a prompt and calls the model under the
// effective deadline. Model errors surface as TaskError.
func (a *ModelAgent) Execute(ctx context.Context, task *core.TaskRequest) (*core.TaskResult, error) {
	execCtx, cancel := a.deadline(ctx, task)
	defer cancel()

	prompt, err := renderPrompt(task)
	if err != nil {
		return nil, core.NewTaskError(a.ID(), task.ID, task.Name, err)
	}

	// Instructions may carry {{ }} markers expanded against the task inputs.
	instructions, err := util.RenderTemplate(a.instructions, task.Inputs)
	if err != nil {
		return nil, core.NewTaskError(a.ID(), task.ID, task.Name, err)
	}

	started := time.Now()
	resp, err := a.model.Complete(execCtx, model.Request{
		Instructions: instructions,
		Prompt:       prompt,
	})
	finished := time.Now()

	if err != nil {
		a.AppendHistory(fmt.Sprintf("%s %s failed after %s", task.Name, task.ID, finished.Sub(started)))
		return nil, core.NewTaskError(a.ID(), task.ID, task.Name, err)
	}

	a.AppendHistory(fmt.Sprintf("%s %s completed in %s", task.Name, task.ID, finished.Sub(started)))

	info := a.model.Info()
	meta := map[string]any{
		"model":         info.Name,
		"provider":      info.Provider,
		"finish_reason": resp.FinishReason,
	}
	if resp.Usage != nil {
		meta["total_tokens"] = resp.Usage.TotalTokens
	}

	return &core.TaskResult{
		TaskID:     task.ID,
		AgentID:    a.ID(),
		Name:       task.Name,
		Payload:    resp.Text,
		Meta:       meta,
		StartedAt:  started,
		FinishedAt: finished,
	}, nil
}

// renderPrompt flattens a task into deterministic text: the task name
// followed by its inputs in sorted key order. Determinism matters because
// the rendered form feeds the result cache key indirectly via the payload.
func renderPrompt(task *core.TaskRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString("Task: ")
	sb.WriteString(task.Name)

	if len(task.Inputs) > 0 {
		keys := make([]string, 0, len(task.Inputs))
		for k := range task.Inputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nInputs:")
		for _, k := range keys {
			v, err := json.Marshal(task.Inputs[k])
			if err != nil {
				return "", fmt.Errorf("render input %q: %w", k, err)
			}
			sb.WriteString(fmt.Sprintf("\n  %s: %s", k, v))
		}
	}
	return sb.String(), nil
}

var _ core.Agent = (*ModelAgent)(nil)
