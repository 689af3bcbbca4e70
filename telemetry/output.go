package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/lurch/config"
)

// AgentSnapshot is one agent row in agents.csv.
type AgentSnapshot struct {
	Tick             int32   `csv:"tick"`
	Time             float64 `csv:"time"`
	AgentID          uint32  `csv:"agent_id"`
	Behavior         string  `csv:"behavior"`
	State            string  `csv:"state"`
	Reason           string  `csv:"reason"`
	CurrentStimulus  string  `csv:"current_stimulus"`
	DebugTarget      string  `csv:"debug_target"`
	DecisionTimer    float64 `csv:"decision_timer"`
	InvestigateTimer float64 `csv:"investigate_timer"`
	LightMemories    int     `csv:"light_memories"`
	NoiseMemories    int     `csv:"noise_memories"`
	X                float64 `csv:"x"`
	Z                float64 `csv:"z"`
}

// RunInfo identifies one run; written to run.yaml.
type RunInfo struct {
	RunID     string    `yaml:"run_id"`
	Seed      int64     `yaml:"seed"`
	Scenario  string    `yaml:"scenario,omitempty"`
	StartedAt time.Time `yaml:"started_at"`
	Zombies   int       `yaml:"zombies"`
	Docile    int       `yaml:"docile"`
}

// NewRunInfo stamps a fresh run id.
func NewRunInfo(seed int64, scenario string, zombies, docile int) RunInfo {
	return RunInfo{
		RunID:     uuid.New().String(),
		Seed:      seed,
		Scenario:  scenario,
		StartedAt: time.Now().UTC(),
		Zombies:   zombies,
		Docile:    docile,
	}
}

// csvStream appends gocsv records to a file, writing the header once.
type csvStream struct {
	f             *os.File
	headerWritten bool
}

func openStream(dir, name string) (*csvStream, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvStream{f: f}, nil
}

func (s *csvStream) write(records any) error {
	if !s.headerWritten {
		if err := gocsv.Marshal(records, s.f); err != nil {
			return err
		}
		s.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, s.f)
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	telemetry *csvStream
	perf      *csvStream
	agents    *csvStream
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.telemetry, err = openStream(dir, "telemetry.csv"); err != nil {
		return nil, err
	}
	if om.perf, err = openStream(dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.agents, err = openStream(dir, "agents.csv"); err != nil {
		om.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteRunInfo saves run.yaml.
func (om *OutputManager) WriteRunInfo(info RunInfo) error {
	if om == nil {
		return nil
	}
	data, err := yaml.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshaling run info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "run.yaml"), data, 0644); err != nil {
		return fmt.Errorf("writing run.yaml: %w", err)
	}
	return nil
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.telemetry.write([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteAgents appends one row per agent to agents.csv.
func (om *OutputManager) WriteAgents(rows []AgentSnapshot) error {
	if om == nil || len(rows) == 0 {
		return nil
	}
	if err := om.agents.write(rows); err != nil {
		return fmt.Errorf("writing agents: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, s := range []*csvStream{om.telemetry, om.perf, om.agents} {
		if s == nil {
			continue
		}
		if err := s.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReadAgents decodes an agents.csv stream.
func ReadAgents(r io.Reader) ([]AgentSnapshot, error) {
	var rows []AgentSnapshot
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading agents: %w", err)
	}
	return rows, nil
}
