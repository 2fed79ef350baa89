package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactConfig locates the fitted model artifacts on disk.
type ArtifactConfig struct {
	ModelsDir          string `yaml:"models_dir" env:"MODELS_DIR"`
	VectorizerFile     string `yaml:"vectorizer_file" env:"VECTORIZER_FILE"`
	ControlModelFile   string `yaml:"control_model_file" env:"CONTROL_MODEL_FILE"`
	AlzheimerModelFile string `yaml:"alzheimer_model_file" env:"ALZHEIMER_MODEL_FILE"`
}

// DefaultArtifactConfig returns the default artifact locations.
func DefaultArtifactConfig() *ArtifactConfig {
	return &ArtifactConfig{
		ModelsDir:          "models",
		VectorizerFile:     "vectorizer.json",
		ControlModelFile:   "model_control.json",
		AlzheimerModelFile: "model_alz.json",
	}
}

// vectorizerArtifact is the on-disk form of the fitted vocabulary.
type vectorizerArtifact struct {
	Version    string         `json:"version"`
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// classifierArtifact is the on-disk form of one trained head and its
// per-feature weight vector.
type classifierArtifact struct {
	Version      string    `json:"version"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Weights      []float64 `json:"weights"`
}

// Bundle is the process-scoped, immutable set of loaded model artifacts.
// It is constructed exactly once at startup and shared read-only by every
// request; nothing in the pipeline mutates it afterwards.
type Bundle struct {
	Annotator  Annotator
	Vectorizer Vectorizer
	Ensemble   *Ensemble
}

// LoadBundle loads and validates all artifacts. Any incompatibility between
// the vectorizer's feature space and either classifier head is reported
// here, before the service accepts its first request; a failed load must
// keep the process from becoming ready.
func LoadBundle(cfg *ArtifactConfig) (*Bundle, error) {
	if cfg == nil {
		cfg = DefaultArtifactConfig()
	}

	annotator, err := NewProseAnnotator()
	if err != nil {
		return nil, fmt.Errorf("failed to load annotator: %w", err)
	}

	var vecArt vectorizerArtifact
	if err := readArtifact(filepath.Join(cfg.ModelsDir, cfg.VectorizerFile), &vecArt); err != nil {
		return nil, fmt.Errorf("failed to load vectorizer artifact: %w", err)
	}
	vectorizer, err := NewTFIDFVectorizer(vecArt.Version, vecArt.Vocabulary, vecArt.IDF)
	if err != nil {
		return nil, fmt.Errorf("invalid vectorizer artifact: %w", err)
	}

	control, err := loadClassifier(filepath.Join(cfg.ModelsDir, cfg.ControlModelFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load control model: %w", err)
	}
	alzheimer, err := loadClassifier(filepath.Join(cfg.ModelsDir, cfg.AlzheimerModelFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load alzheimer model: %w", err)
	}

	ensemble, err := NewEnsemble(control, alzheimer)
	if err != nil {
		return nil, fmt.Errorf("invalid classifier ensemble: %w", err)
	}

	if vectorizer.Dimension() != control.Dimension() {
		return nil, fmt.Errorf("artifact shape mismatch: vectorizer dimension %d, classifier dimension %d",
			vectorizer.Dimension(), control.Dimension())
	}

	return &Bundle{
		Annotator:  annotator,
		Vectorizer: vectorizer,
		Ensemble:   ensemble,
	}, nil
}

func loadClassifier(path string) (*WeightedLogisticClassifier, error) {
	var art classifierArtifact
	if err := readArtifact(path, &art); err != nil {
		return nil, err
	}
	return NewWeightedLogisticClassifier(art.Version, art.Coefficients, art.Intercept, art.Weights)
}

func readArtifact(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	return nil
}
