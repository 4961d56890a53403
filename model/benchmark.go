package model

// The benchmark engine emits one result tree per invocation. Controls are
// grouped hierarchically (by section, by service) and the same control id can
// legitimately appear under more than one group.

// StatusCounts are the engine-reported per-status resource counts for a
// control or group.
type StatusCounts struct {
	Alarm int `json:"alarm"`
	OK    int `json:"ok"`
	Info  int `json:"info"`
	Skip  int `json:"skip"`
	Error int `json:"error"`
}

// GroupSummary wraps the status counts of a group subtree.
type GroupSummary struct {
	Status StatusCounts `json:"status"`
}

// EngineResult is one node of the engine's nested result tree. The root node
// represents the whole benchmark run.
type EngineResult struct {
	GroupID     string            `json:"group_id,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	Summary     *GroupSummary     `json:"summary,omitempty"`
	Groups      []EngineResult    `json:"groups,omitempty"`
	Controls    []EngineControl   `json:"controls,omitempty"`
}

// EngineControl is one evaluated control as reported by the engine.
type EngineControl struct {
	ControlID   string                `json:"control_id"`
	Title       string                `json:"title,omitempty"`
	Description string                `json:"description,omitempty"`
	Severity    string                `json:"severity,omitempty"`
	Tags        map[string]string     `json:"tags,omitempty"`
	Summary     StatusCounts          `json:"summary"`
	Results     []EngineControlResult `json:"results,omitempty"`
}

// EngineControlResult is one per-resource evaluation within a control.
type EngineControlResult struct {
	Status     string            `json:"status"` // alarm | ok | info | skip | error
	Reason     string            `json:"reason,omitempty"`
	Resource   string            `json:"resource,omitempty"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
}
