package battle

// Display is the presentation payload for one step of an encounter. Every
// field is descriptive text; numeric health and damage never appear here.
type Display struct {
	Actor           string
	Target          string
	ActorState      string
	TargetState     string
	Narrative       string
	InjuryNarrative string
	Message         string
}

// Lines returns the non-empty narrative lines in reading order.
func (d Display) Lines() []string {
	var out []string
	for _, s := range []string{d.Narrative, d.InjuryNarrative, d.Message} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Turn is everything produced by one Submit call.
type Turn struct {
	Displays []Display
	// Over is true once the encounter has finished.
	Over bool
	// Result is set on the Turn that finished the encounter.
	Result *Result
}
