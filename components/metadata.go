package components

// String returns the display name for a State.
func (s State) String() string {
	names := StateNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// StateNames returns the names of all states.
// The order matches the State constants.
func StateNames() []string {
	return []string{"idle", "wandering", "investigating", "chasing"}
}

// StateCount returns the number of decision states.
func StateCount() int {
	return len(StateNames())
}

// String returns the display name for a Behavior.
func (b Behavior) String() string {
	switch b {
	case Aggressive:
		return "aggressive"
	case Docile:
		return "docile"
	default:
		return "unknown"
	}
}

// ParseBehavior maps a behavior name to its constant.
func ParseBehavior(name string) (Behavior, bool) {
	switch name {
	case "aggressive", "":
		return Aggressive, true
	case "docile":
		return Docile, true
	}
	return Aggressive, false
}

// String returns the display name for a Sense. SenseNone renders empty,
// matching an unset stimulus.
func (s Sense) String() string {
	switch s {
	case SenseVision:
		return "vision"
	case SenseLight:
		return "light"
	case SenseNoise:
		return "noise"
	case SenseUnknown:
		return "unknown"
	default:
		return ""
	}
}

// FieldDescriptor describes a diagnostic field of an agent.
type FieldDescriptor struct {
	ID     string // Unique identifier
	Label  string // Display name
	Format string // Printf format (e.g., "%.2f")
	Group  string // Logical grouping
}

// ZombieFieldDescriptors returns metadata for the fields reported per agent
// in diagnostic dumps. IDs match the csv columns of telemetry.AgentSnapshot.
func ZombieFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "state", Label: "State", Group: "decision"},
		{ID: "reason", Label: "Reason", Group: "decision"},
		{ID: "current_stimulus", Label: "Stimulus", Group: "decision"},
		{ID: "debug_target", Label: "Target", Group: "decision"},
		{ID: "decision_timer", Label: "Decision", Format: "%.2f", Group: "timers"},
		{ID: "investigate_timer", Label: "Investigate", Format: "%.2f", Group: "timers"},
		{ID: "light_memories", Label: "Lights", Format: "%d", Group: "memory"},
		{ID: "noise_memories", Label: "Noises", Format: "%d", Group: "memory"},
	}
}
