package models

import (
	"encoding/json"
	"strconv"
)

// DocumentIDSentinel replaces the storage id when persistence fails.
const DocumentIDSentinel = "demo_mode"

// DocumentID is either a stored row id or the sentinel. It encodes as a JSON
// number or as the string "demo_mode".
type DocumentID struct {
	ID     uint
	Stored bool
}

func StoredDocumentID(id uint) DocumentID { return DocumentID{ID: id, Stored: true} }

func (d DocumentID) String() string {
	if !d.Stored {
		return DocumentIDSentinel
	}
	return strconv.FormatUint(uint64(d.ID), 10)
}

func (d DocumentID) MarshalJSON() ([]byte, error) {
	if !d.Stored {
		return json.Marshal(DocumentIDSentinel)
	}
	return json.Marshal(d.ID)
}

type AnalysisResponse struct {
	InputText  string     `json:"input_text"`
	Prediction Result     `json:"prediction"`
	DocumentID DocumentID `json:"document_id"`
}

type PredictResponse struct {
	Input      string `json:"input"`
	Prediction Result `json:"prediction"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	LocalModel  bool   `json:"local_model"`
	LLM         bool   `json:"llm"`
	VectorIndex string `json:"vector_index"`
}
