package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentIDMarshal(t *testing.T) {
	b, err := json.Marshal(StoredDocumentID(42))
	require.NoError(t, err)
	assert.Equal(t, "42", string(b))

	b, err = json.Marshal(DocumentID{})
	require.NoError(t, err)
	assert.Equal(t, `"demo_mode"`, string(b))
}

func TestAnalysisResponseShape(t *testing.T) {
	resp := AnalysisResponse{
		InputText:  "hello",
		Prediction: &ErrorResult{Error: "No input text provided", DemoNote: "Please provide text for legal analysis"},
	}
	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "hello", decoded["input_text"])
	assert.Equal(t, DocumentIDSentinel, decoded["document_id"])
	prediction := decoded["prediction"].(map[string]any)
	assert.Len(t, prediction, 2)
	assert.Contains(t, prediction, "error")
	assert.Contains(t, prediction, "demo_note")
}

func TestResultKinds(t *testing.T) {
	assert.Equal(t, KindContractFindings, (&ContractFindings{}).Kind())
	assert.Equal(t, KindLegalGuidance, (&LegalGuidance{}).Kind())
	assert.Equal(t, KindResearchSummary, (&ResearchSummary{}).Kind())
	assert.Equal(t, KindError, (&ErrorResult{}).Kind())
}
