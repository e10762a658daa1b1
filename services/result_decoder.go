package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/itish2003/lawgic/models"
)

var errNoPayload = errors.New("model returned no usable payload")

// stripCodeFences removes a surrounding ``` or ```json fence.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if lang := strings.TrimSpace(s[:nl]); lang == "" || !strings.ContainsAny(lang, "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeResult parses a model's JSON output into one result variant. The
// variant comes from analysis_type when present, otherwise from the task and
// the fields that are set. Payloads carrying an "error" key are rejected so
// the next stage can answer.
func DecodeResult(raw string, task Task) (models.Result, error) {
	body := stripCodeFences(raw)
	if body == "" {
		return nil, errNoPayload
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	if len(fields) == 0 {
		return nil, errNoPayload
	}
	if _, ok := fields["error"]; ok {
		return nil, fmt.Errorf("model reported an error: %s", string(fields["error"]))
	}

	// Provenance is stamped by the dispatcher, never taken from the model.
	for _, k := range []string{"source", "model_version", "generated_at"} {
		delete(fields, k)
	}
	clean, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	switch resultKind(fields, task) {
	case models.KindContractFindings:
		return decodeContractFindings(clean)
	case models.KindResearchSummary:
		return decodeResearchSummary(clean)
	default:
		return decodeLegalGuidance(clean)
	}
}

func resultKind(fields map[string]json.RawMessage, task Task) models.ResultKind {
	if raw, ok := fields["analysis_type"]; ok {
		var tag string
		if json.Unmarshal(raw, &tag) == nil {
			switch models.ResultKind(strings.ToLower(strings.TrimSpace(tag))) {
			case models.KindContractFindings:
				return models.KindContractFindings
			case models.KindLegalGuidance:
				return models.KindLegalGuidance
			case models.KindResearchSummary:
				return models.KindResearchSummary
			}
		}
	}
	if task == TaskResearch {
		return models.KindResearchSummary
	}
	if _, ok := fields["findings"]; ok {
		return models.KindContractFindings
	}
	return models.KindLegalGuidance
}

func decodeContractFindings(raw []byte) (models.Result, error) {
	var r models.ContractFindings
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode contract findings: %w", err)
	}
	if len(r.Findings) == 0 && r.OverallRisk == "" {
		return nil, errNoPayload
	}
	r.AnalysisType = models.KindContractFindings
	if r.Category == "" {
		r.Category = "Contract"
	}

	top := ""
	for i := range r.Findings {
		r.Findings[i].Risk = normalizeRisk(r.Findings[i].Risk)
		if riskRank(r.Findings[i].Risk) > riskRank(top) {
			top = r.Findings[i].Risk
		}
	}
	if r.OverallRisk == "" {
		r.OverallRisk = top
	}
	r.OverallRisk = normalizeRisk(r.OverallRisk)
	if r.Findings == nil {
		r.Findings = []models.Finding{}
	}
	r.Recommendations = nonNil(r.Recommendations)
	r.Disclaimer = orDefault(r.Disclaimer, models.DefaultDisclaimer)
	return &r, nil
}

func decodeLegalGuidance(raw []byte) (models.Result, error) {
	var r models.LegalGuidance
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode legal guidance: %w", err)
	}
	if r.Summary == "" && len(r.KeyPoints) == 0 {
		return nil, errNoPayload
	}
	r.AnalysisType = models.KindLegalGuidance
	r.Category = orDefault(r.Category, "General")
	r.KeyPoints = nonNil(r.KeyPoints)
	r.Recommendations = nonNil(r.Recommendations)
	r.Disclaimer = orDefault(r.Disclaimer, models.DefaultDisclaimer)
	return &r, nil
}

// looseString accepts a JSON string or number. Models often emit years as
// numbers.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*s = looseString(b)
	return nil
}

type researchPayload struct {
	Topic         string `json:"topic"`
	RelevantCases []struct {
		CaseName string      `json:"case_name"`
		Year     looseString `json:"year"`
		Court    string      `json:"court"`
		Summary  string      `json:"summary"`
	} `json:"relevant_cases"`
	RelevantStatutes []struct {
		ActName string      `json:"act_name"`
		Year    looseString `json:"year"`
		Section looseString `json:"section"`
		Summary string      `json:"summary"`
	} `json:"relevant_statutes"`
	LegalPrinciples    []string `json:"legal_principles"`
	Jurisdiction       string   `json:"jurisdiction"`
	Analysis           string   `json:"analysis"`
	Remedies           []string `json:"remedies"`
	RecentDevelopments string   `json:"recent_developments"`
	References         []string `json:"references"`
	Disclaimer         string   `json:"disclaimer"`
}

func decodeResearchSummary(raw []byte) (models.Result, error) {
	var p researchPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode research summary: %w", err)
	}
	if p.Topic == "" && len(p.RelevantCases) == 0 {
		return nil, errNoPayload
	}

	r := &models.ResearchSummary{
		AnalysisType:       models.KindResearchSummary,
		Topic:              orDefault(p.Topic, "General Legal Research"),
		RelevantCases:      make([]models.CaseCitation, 0, len(p.RelevantCases)),
		RelevantStatutes:   make([]models.StatuteCitation, 0, len(p.RelevantStatutes)),
		LegalPrinciples:    nonNil(p.LegalPrinciples),
		Jurisdiction:       p.Jurisdiction,
		Analysis:           p.Analysis,
		Remedies:           nonNil(p.Remedies),
		RecentDevelopments: p.RecentDevelopments,
		References:         nonNil(p.References),
		Disclaimer:         orDefault(p.Disclaimer, models.DefaultDisclaimer),
	}
	for _, c := range p.RelevantCases {
		r.RelevantCases = append(r.RelevantCases, models.CaseCitation{
			CaseName: c.CaseName, Year: string(c.Year), Court: c.Court, Summary: c.Summary,
		})
	}
	for _, s := range p.RelevantStatutes {
		r.RelevantStatutes = append(r.RelevantStatutes, models.StatuteCitation{
			ActName: s.ActName, Year: string(s.Year), Section: string(s.Section), Summary: s.Summary,
		})
	}
	return r, nil
}

// normalizeRisk maps free-form risk labels onto High, Medium or Low. Unknown
// labels become Medium.
func normalizeRisk(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "critical", "severe", "उच्च":
		return models.RiskHigh
	case "low", "minimal", "none", "कम":
		return models.RiskLow
	default:
		return models.RiskMedium
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
