package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shipmind-ai/shipmind/core/nn"
)

// Artifact file names inside each model's directory.
const (
	weightsFile  = "model.json"
	metadataFile = "metadata.json"
)

// libraryVersion names the numeric backend the weights were produced with.
// Load rejects nothing on mismatch; the field exists for forensics.
const libraryVersion = "gonum v0.15.1"

// Metadata travels with the serialized weights so an artifact is
// self-describing.
type Metadata struct {
	Config         ModelConfig `json:"config"`
	SavedAt        time.Time   `json:"saved_at"`
	LibraryVersion string      `json:"library_version"`
}

// Outcome is the raw result of one inference before domain post-processing.
type Outcome struct {
	Raw          []float64
	Confidence   float64
	ModelVersion string
	GeneratedAt  time.Time
}

// TrainingSet holds parallel input and target vectors.
type TrainingSet struct {
	Inputs  [][]float64
	Targets [][]float64
}

// Model wraps one regression network together with its configuration and
// on-disk artifact. All methods are safe for concurrent use. Training holds
// the write lock for the whole run, so predictions block until it finishes.
type Model struct {
	cfg  ModelConfig
	dir  string
	seed int64

	mu   sync.RWMutex
	net  *nn.Network
	meta *Metadata
}

// NewModel prepares a model handle under artifactRoot/<name>. No network is
// built until Initialize, Compile or Train runs.
func NewModel(cfg ModelConfig, artifactRoot string, seed int64) *Model {
	return &Model{cfg: cfg, dir: filepath.Join(artifactRoot, cfg.Name), seed: seed}
}

func (m *Model) Name() string        { return m.cfg.Name }
func (m *Model) Config() ModelConfig { return m.cfg }
func (m *Model) ArtifactDir() string { return m.dir }

// Ready reports whether the model can serve predictions.
func (m *Model) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.net != nil
}

// Metadata returns a copy of the artifact metadata, or nil when the model
// has never been saved or loaded.
func (m *Model) Metadata() *Metadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.meta == nil {
		return nil
	}
	meta := *m.meta
	return &meta
}

// Initialize loads the persisted artifact when one exists and otherwise
// compiles a fresh network. A present but unreadable artifact yields a
// *ModelLoadError; callers may recover with Compile.
func (m *Model) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initializeLocked()
}

func (m *Model) initializeLocked() error {
	if _, err := os.Stat(filepath.Join(m.dir, weightsFile)); errors.Is(err, os.ErrNotExist) {
		return m.compileLocked()
	}
	return m.loadLocked()
}

// Compile discards any current network and builds a fresh one from the
// configured topology.
func (m *Model) Compile() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compileLocked()
}

func (m *Model) compileLocked() error {
	net, err := nn.New(m.cfg.Layers(), m.seed)
	if err != nil {
		return fmt.Errorf("compile %s: %w", m.cfg.Name, err)
	}
	m.net = net
	return nil
}

// Load replaces the in-memory network with the persisted artifact.
func (m *Model) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *Model) loadLocked() error {
	weightsPath := filepath.Join(m.dir, weightsFile)
	rawNet, err := os.ReadFile(weightsPath)
	if err != nil {
		return &ModelLoadError{Model: m.cfg.Name, Path: weightsPath, Err: err}
	}
	net := &nn.Network{}
	if err := json.Unmarshal(rawNet, net); err != nil {
		return &ModelLoadError{Model: m.cfg.Name, Path: weightsPath, Err: err}
	}
	if net.InputSize() != m.cfg.InputSize || net.OutputSize() != m.cfg.OutputSize {
		return &ModelLoadError{
			Model: m.cfg.Name,
			Path:  weightsPath,
			Err:   fmt.Errorf("stored topology %v does not match configured %v", net.Sizes(), m.cfg.Layers()),
		}
	}
	metaPath := filepath.Join(m.dir, metadataFile)
	rawMeta, err := os.ReadFile(metaPath)
	if err != nil {
		return &ModelLoadError{Model: m.cfg.Name, Path: metaPath, Err: err}
	}
	meta := &Metadata{}
	if err := json.Unmarshal(rawMeta, meta); err != nil {
		return &ModelLoadError{Model: m.cfg.Name, Path: metaPath, Err: err}
	}
	m.net = net
	m.meta = meta
	return nil
}

// Save persists the weights and metadata under the artifact directory.
func (m *Model) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(time.Now().UTC())
}

func (m *Model) saveLocked(now time.Time) error {
	if m.net == nil {
		return fmt.Errorf("save %s: %w", m.cfg.Name, nn.ErrNotCompiled)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("save %s: %w", m.cfg.Name, err)
	}
	rawNet, err := json.Marshal(m.net)
	if err != nil {
		return fmt.Errorf("save %s: %w", m.cfg.Name, err)
	}
	meta := &Metadata{Config: m.cfg, SavedAt: now, LibraryVersion: libraryVersion}
	rawMeta, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("save %s: %w", m.cfg.Name, err)
	}
	if err := os.WriteFile(filepath.Join(m.dir, weightsFile), rawNet, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", m.cfg.Name, err)
	}
	if err := os.WriteFile(filepath.Join(m.dir, metadataFile), rawMeta, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", m.cfg.Name, err)
	}
	m.meta = meta
	return nil
}

// Train validates and fits the set, then persists the updated artifact. The
// model auto-initializes first when needed; an unreadable artifact is
// replaced silently there, since its weights are about to be overwritten
// anyway.
func (m *Model) Train(set TrainingSet) (*nn.TrainResult, error) {
	if err := m.validateSet(set); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.net == nil {
		if err := m.initializeLocked(); err != nil {
			var loadErr *ModelLoadError
			if !errors.As(err, &loadErr) {
				return nil, err
			}
			if err := m.compileLocked(); err != nil {
				return nil, err
			}
		}
	}
	res, err := m.net.Train(set.Inputs, set.Targets, nn.TrainOptions{
		LearningRate:    m.cfg.LearningRate,
		Epochs:          m.cfg.Epochs,
		BatchSize:       m.cfg.BatchSize,
		ValidationSplit: m.cfg.ValidationSplit,
	})
	if err != nil {
		return nil, &TrainingError{Model: m.cfg.Name, Reason: err.Error()}
	}
	if err := m.saveLocked(time.Now().UTC()); err != nil {
		return nil, err
	}
	return res, nil
}

func (m *Model) validateSet(set TrainingSet) error {
	if len(set.Inputs) == 0 {
		return &TrainingError{Model: m.cfg.Name, Reason: "empty training set"}
	}
	if len(set.Inputs) != len(set.Targets) {
		return &TrainingError{
			Model:  m.cfg.Name,
			Reason: fmt.Sprintf("%d inputs but %d targets", len(set.Inputs), len(set.Targets)),
		}
	}
	for i := range set.Inputs {
		if len(set.Inputs[i]) != m.cfg.InputSize {
			return &TrainingError{
				Model:  m.cfg.Name,
				Reason: fmt.Sprintf("sample %d: input width %d, want %d", i, len(set.Inputs[i]), m.cfg.InputSize),
			}
		}
		if len(set.Targets[i]) != m.cfg.OutputSize {
			return &TrainingError{
				Model:  m.cfg.Name,
				Reason: fmt.Sprintf("sample %d: target width %d, want %d", i, len(set.Targets[i]), m.cfg.OutputSize),
			}
		}
	}
	return nil
}

// Predict runs one forward pass over an encoded feature vector.
func (m *Model) Predict(input []float64) (*Outcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.net == nil {
		return nil, ErrNotInitialized
	}
	raw, err := m.net.Forward(input)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", m.cfg.Name, err)
	}
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &InvalidPredictionError{Model: m.cfg.Name, Index: i, Value: v}
		}
	}
	return &Outcome{
		Raw:          raw,
		Confidence:   spreadConfidence(raw),
		ModelVersion: m.cfg.Version,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// Dispose drops the network. Predictions fail with ErrNotInitialized until
// the model is initialized again.
func (m *Model) Dispose() {
	m.mu.Lock()
	m.net = nil
	m.mu.Unlock()
}

// spreadConfidence scores how tightly the outputs cluster: 1-(max-min)/max
// clamped to [0,1]. A non-positive maximum scores zero.
func spreadConfidence(raw []float64) float64 {
	if len(raw) == 0 {
		return 0
	}
	lo, hi := raw[0], raw[0]
	for _, v := range raw[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= 0 {
		return 0
	}
	return clamp01(1 - (hi-lo)/hi)
}
