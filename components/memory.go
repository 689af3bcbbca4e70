package components

// LightMemoryEntry records how curious an agent still is about one light.
type LightMemoryEntry struct {
	CooldownUntil float64
	ReturnChance  float64 // kept within [0.15, 0.9] by the habituation rules
	LastChecked   float64
}

// NoiseMemoryEntry suppresses reactions to one emitter.
type NoiseMemoryEntry struct {
	CooldownUntil float64
	LastHeard     float64
}

// Memory holds an agent's habituation ledgers. Keys are stimulus or emitter
// ids and may outlive the stimulus they name.
type Memory struct {
	Light map[string]LightMemoryEntry
	Noise map[string]NoiseMemoryEntry
}

// NewMemory returns empty ledgers.
func NewMemory() Memory {
	return Memory{
		Light: make(map[string]LightMemoryEntry),
		Noise: make(map[string]NoiseMemoryEntry),
	}
}

// Clone returns a deep copy of both ledgers.
func (m Memory) Clone() Memory {
	out := NewMemory()
	for k, v := range m.Light {
		out.Light[k] = v
	}
	for k, v := range m.Noise {
		out.Noise[k] = v
	}
	return out
}

// Empty reports whether both ledgers are empty.
func (m Memory) Empty() bool {
	return len(m.Light) == 0 && len(m.Noise) == 0
}
