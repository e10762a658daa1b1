package models

// PredictRequest is the JSON body accepted by POST /api/predict/.
type PredictRequest struct {
	Text string `json:"text"`
}
