package trajectory

import "encoding/json"

// Entry is one (task, trial) attempt from a trajectory file.
type Entry struct {
	TaskID int       `json:"task_id"`
	Trial  int       `json:"trial"`
	Reward *float64  `json:"reward,omitempty"`
	Info   Info      `json:"info"`
	Traj   []Message `json:"traj"`
}

// Info carries either the ground truth for a completed run or the error
// marker for a crashed one, never both.
type Info struct {
	Task       *Task           `json:"task,omitempty"`
	RewardInfo json.RawMessage `json:"reward_info,omitempty"`
	Error      string          `json:"error,omitempty"`
	Traceback  string          `json:"traceback,omitempty"`
}

type Task struct {
	Instruction string   `json:"instruction"`
	Actions     []Action `json:"actions"`
}

// Action is one expected or observed tool call. Older trajectory files use
// "kwargs" instead of "arguments"; both decode into Arguments.
type Action struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
		Kwargs    map[string]any `json:"kwargs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Name = raw.Name
	a.Arguments = raw.Arguments
	if a.Arguments == nil {
		a.Arguments = raw.Kwargs
	}
	return nil
}

type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

type ToolCall struct {
	Function ToolFunction `json:"function"`
}

// ToolFunction holds a structured call in the FC format. Arguments is a
// JSON-encoded string as emitted by the model API, not a decoded object.
type ToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Crashed reports whether the entry terminated abnormally before producing
// a scoreable outcome.
func (e *Entry) Crashed() bool {
	return e.Info.Error != ""
}

// Completed reports whether the entry ran to completion with ground truth
// attached.
func (e *Entry) Completed() bool {
	return e.Info.Task != nil && len(e.Traj) > 0
}

// Failed reports a zero reward. Entries without a reward field (crashed
// runs) do not count as failures.
func (e *Entry) Failed() bool {
	return e.Reward != nil && *e.Reward == 0.0
}
