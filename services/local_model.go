package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// LocalModel is a keyword rule model serialized as YAML. It is loaded once
// at startup and is read-only afterwards.
type LocalModel struct {
	Version string   `yaml:"version"`
	Tasks   []string `yaml:"tasks"`
	Tables  `yaml:",inline"`

	classifier *Classifier
}

var errTaskNotSupported = errors.New("task not supported by local model")

// LoadLocalModel reads and validates a model file. An empty path means no
// local model and returns nil, nil.
func LoadLocalModel(path string) (*LocalModel, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read local model: %w", err)
	}
	return ParseLocalModel(raw)
}

// ParseLocalModel decodes a YAML model. Risk tiers and categories are
// required. Missing templates and routing keywords fall back to the built-in
// tables.
func ParseLocalModel(raw []byte) (*LocalModel, error) {
	var m LocalModel
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode local model: %w", err)
	}
	if strings.TrimSpace(m.Version) == "" {
		return nil, errors.New("local model has no version")
	}
	if len(m.RiskTiers) == 0 || len(m.Categories) == 0 {
		return nil, errors.New("local model needs risk_tiers and categories")
	}
	for _, tier := range m.RiskTiers {
		if riskRank(tier.Level) == 0 {
			return nil, fmt.Errorf("local model has unknown risk level %q", tier.Level)
		}
	}
	defaults := DefaultTables()
	if len(m.ContractKeywords) == 0 {
		m.ContractKeywords = defaults.ContractKeywords
	}
	if len(m.Templates) == 0 {
		m.Templates = defaults.Templates
	}
	if _, ok := m.Templates[CategoryGeneral]; !ok {
		m.Templates[CategoryGeneral] = defaults.Templates[CategoryGeneral]
	}
	if len(m.Tasks) == 0 {
		m.Tasks = []string{string(TaskAnalysis)}
	}
	m.classifier = NewClassifier(m.Tables)
	return &m, nil
}

// Supports reports whether the model was trained for task.
func (m *LocalModel) Supports(task Task) bool {
	return slices.Contains(m.Tasks, string(task))
}

// marshal serializes the model back to YAML.
func (m *LocalModel) marshal() ([]byte, error) {
	return yaml.Marshal(m)
}

// Predict returns the model's answer as a JSON document.
func (m *LocalModel) Predict(task Task, text, lang string) (string, error) {
	if !m.Supports(task) {
		return "", errTaskNotSupported
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty input")
	}

	var out any
	switch task {
	case TaskResearch:
		out = m.classifier.Research(text, lang)
	default:
		out = m.classifier.Analyze(text, lang)
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode prediction: %w", err)
	}
	return string(raw), nil
}
