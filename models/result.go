package models

import "time"

// ResultKind tags the closed set of analysis result shapes.
type ResultKind string

const (
	KindContractFindings ResultKind = "contract_review"
	KindLegalGuidance    ResultKind = "legal_guidance"
	KindResearchSummary  ResultKind = "legal_research"
	KindError            ResultKind = "error"
)

// Source names the dispatcher stage that produced a result.
const (
	SourceLocalModel = "local_model"
	SourceGemini     = "gemini"
	SourceHeuristic  = "heuristic"
)

// Risk tiers used in findings and overall risk.
const (
	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
)

const DefaultDisclaimer = "This is general information only and not legal advice. Consult with a qualified attorney for advice specific to your situation."

// Result is implemented by every analysis shape returned to callers.
type Result interface {
	Kind() ResultKind
}

// ResultMeta is embedded in every non-error result.
type ResultMeta struct {
	Source       string    `json:"source"`
	ModelVersion string    `json:"model_version,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Finding is one flagged clause in a contract review.
type Finding struct {
	Clause      string `json:"clause"`
	Risk        string `json:"risk"`
	Rewrite     string `json:"rewrite"`
	Explanation string `json:"explanation"`
}

type ContractFindings struct {
	AnalysisType    ResultKind `json:"analysis_type"`
	Category        string     `json:"category"`
	Summary         string     `json:"summary,omitempty"`
	OverallRisk     string     `json:"overall_risk"`
	Findings        []Finding  `json:"findings"`
	Recommendations []string   `json:"recommendations"`
	Disclaimer      string     `json:"disclaimer"`
	ResultMeta
}

func (*ContractFindings) Kind() ResultKind { return KindContractFindings }

type LegalGuidance struct {
	AnalysisType    ResultKind `json:"analysis_type"`
	Category        string     `json:"category"`
	Summary         string     `json:"summary"`
	KeyPoints       []string   `json:"key_points"`
	Recommendations []string   `json:"recommendations"`
	Disclaimer      string     `json:"disclaimer"`
	ResultMeta
}

func (*LegalGuidance) Kind() ResultKind { return KindLegalGuidance }

type CaseCitation struct {
	CaseName string `json:"case_name"`
	Year     string `json:"year"`
	Court    string `json:"court"`
	Summary  string `json:"summary"`
}

type StatuteCitation struct {
	ActName string `json:"act_name"`
	Year    string `json:"year"`
	Section string `json:"section"`
	Summary string `json:"summary"`
}

type ResearchSummary struct {
	AnalysisType       ResultKind        `json:"analysis_type"`
	Topic              string            `json:"topic"`
	RelevantCases      []CaseCitation    `json:"relevant_cases"`
	RelevantStatutes   []StatuteCitation `json:"relevant_statutes"`
	LegalPrinciples    []string          `json:"legal_principles"`
	Jurisdiction       string            `json:"jurisdiction"`
	Analysis           string            `json:"analysis"`
	Remedies           []string          `json:"remedies"`
	RecentDevelopments string            `json:"recent_developments"`
	References         []string          `json:"references"`
	Disclaimer         string            `json:"disclaimer"`
	ResultMeta
}

func (*ResearchSummary) Kind() ResultKind { return KindResearchSummary }

// ErrorResult is returned for empty input. It is sent with HTTP 200.
type ErrorResult struct {
	Error    string `json:"error"`
	DemoNote string `json:"demo_note"`
}

func (*ErrorResult) Kind() ResultKind { return KindError }
