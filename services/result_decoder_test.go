package services

import (
	"testing"

	"github.com/itish2003/lawgic/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```JSON\n{\"a\":1}```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```{\"a\":1}```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFences(tt.in), tt.in)
	}
}

func TestDecodeResultVariant(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		task Task
		want models.ResultKind
	}{
		{"tag wins over task", `{"analysis_type":"legal_guidance","summary":"s"}`, TaskResearch, models.KindLegalGuidance},
		{"findings imply contract", `{"findings":[{"clause":"c","risk":"low"}]}`, TaskAnalysis, models.KindContractFindings},
		{"research task", `{"topic":"Bail"}`, TaskResearch, models.KindResearchSummary},
		{"plain guidance", `{"category":"Employment","key_points":["k"]}`, TaskAnalysis, models.KindLegalGuidance},
		{"unknown tag uses task", `{"analysis_type":"other","topic":"t"}`, TaskResearch, models.KindResearchSummary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DecodeResult(tt.raw, tt.task)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Kind())
		})
	}
}

func TestDecodeResultRejects(t *testing.T) {
	for _, raw := range []string{"", "```json\n```", "[]", "{}", `{"error":"x"}`, `{"findings":"nope"}`, `{"category":"only"}`} {
		_, err := DecodeResult(raw, TaskAnalysis)
		assert.Error(t, err, raw)
	}
}

func TestDecodeContractNormalizes(t *testing.T) {
	res, err := DecodeResult(`{"findings":[{"clause":"a","risk":"low"},{"clause":"b","risk":"उच्च"},{"clause":"c","risk":"spicy"}],"source":"me","generated_at":"soon"}`, TaskAnalysis)
	require.NoError(t, err)

	got := res.(*models.ContractFindings)
	assert.Equal(t, models.RiskHigh, got.OverallRisk)
	assert.Equal(t, []string{models.RiskLow, models.RiskHigh, models.RiskMedium},
		[]string{got.Findings[0].Risk, got.Findings[1].Risk, got.Findings[2].Risk})
	assert.Equal(t, "Contract", got.Category)
	assert.Empty(t, got.Source)
	assert.NotNil(t, got.Recommendations)
}

func TestSystemPromptText(t *testing.T) {
	assert.Contains(t, SystemPromptText(TaskResearch, "en"), "EXACTLY 3")
	assert.Contains(t, SystemPromptText(TaskAnalysis, "en"), "contract_review")
	assert.Contains(t, SystemPromptText(TaskAnalysis, "HI"), "Respond in Hindi language.")
	assert.Contains(t, SystemPromptText(TaskResearch, "hi"), "legal_research")
	assert.Equal(t, SystemPromptText(TaskAnalysis, "en"), SystemPromptText(TaskAnalysis, "fr"))
	require.NotNil(t, GetSystemPrompt(TaskAnalysis, "en"))
}
