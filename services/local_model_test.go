package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/itish2003/lawgic/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModelYAML = `
version: test-1
tasks: [analysis]
risk_tiers:
  - level: High
    indicators: [waives all rights]
  - level: Low
    indicators: [mutual agreement]
categories:
  - name: family
    keywords: [custody]
  - name: tenant_rights
    keywords: [landlord]
`

func TestParseLocalModel(t *testing.T) {
	m, err := ParseLocalModel([]byte(testModelYAML))
	require.NoError(t, err)

	assert.Equal(t, "test-1", m.Version)
	assert.True(t, m.Supports(TaskAnalysis))
	assert.False(t, m.Supports(TaskResearch))
	assert.Equal(t, DefaultTables().ContractKeywords, m.ContractKeywords)
	assert.Contains(t, m.Templates, CategoryGeneral)
}

func TestParseLocalModelRejects(t *testing.T) {
	tests := map[string]string{
		"not yaml":       "version: [",
		"no version":     "risk_tiers: [{level: High, indicators: [x]}]\ncategories: [{name: a, keywords: [b]}]",
		"no tiers":       "version: v\ncategories: [{name: a, keywords: [b]}]",
		"bad risk level": "version: v\nrisk_tiers: [{level: Severe, indicators: [x]}]\ncategories: [{name: a, keywords: [b]}]",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLocalModel([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLocalModelRoundTrip(t *testing.T) {
	m, err := ParseLocalModel([]byte(testModelYAML))
	require.NoError(t, err)

	raw, err := m.marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	loaded, err := LoadLocalModel(path)
	require.NoError(t, err)

	assert.Equal(t, m.Version, loaded.Version)
	assert.Equal(t, m.RiskTiers, loaded.RiskTiers)
	assert.Equal(t, m.Categories, loaded.Categories)
}

func TestLoadLocalModelMissingFile(t *testing.T) {
	_, err := LoadLocalModel(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadLocalModelEmptyPath(t *testing.T) {
	m, err := LoadLocalModel("  ")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestLoadBundledModel(t *testing.T) {
	m, err := LoadLocalModel(filepath.Join("..", "models", "model.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, m.Version)
	assert.True(t, m.Supports(TaskAnalysis))
}

func TestLocalModelPredict(t *testing.T) {
	m, err := ParseLocalModel([]byte(testModelYAML))
	require.NoError(t, err)

	raw, err := m.Predict(TaskAnalysis, "Who gets custody of the children?", "en")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	assert.Equal(t, string(models.KindLegalGuidance), out["analysis_type"])
	assert.Equal(t, "Family", out["category"])

	_, err = m.Predict(TaskResearch, "anything", "en")
	assert.ErrorIs(t, err, errTaskNotSupported)

	_, err = m.Predict(TaskAnalysis, " ", "en")
	assert.Error(t, err)
}
