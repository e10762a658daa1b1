package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/itish2003/lawgic/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	heuristicVersion = "keyword-tables-v1"
	maxFindings      = 5
)

// Classifier is the network-free analyzer at the end of every dispatch chain.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	tables Tables
	title  cases.Caser
	now    func() time.Time
}

// ClassifierOption customizes a Classifier.
type ClassifierOption func(*Classifier)

// WithCategoryOrder reorders the query categories. Names not present in the
// tables are ignored and categories missing from order keep their relative
// position after the listed ones.
func WithCategoryOrder(order []string) ClassifierOption {
	return func(c *Classifier) {
		if len(order) == 0 {
			return
		}
		byName := make(map[string]CategoryRule, len(c.tables.Categories))
		for _, rule := range c.tables.Categories {
			byName[rule.Name] = rule
		}
		seen := make(map[string]bool, len(order))
		reordered := make([]CategoryRule, 0, len(c.tables.Categories))
		for _, name := range order {
			name = strings.ToLower(strings.TrimSpace(name))
			rule, ok := byName[name]
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			reordered = append(reordered, rule)
		}
		for _, rule := range c.tables.Categories {
			if !seen[rule.Name] {
				reordered = append(reordered, rule)
			}
		}
		c.tables.Categories = reordered
	}
}

// WithClock overrides the timestamp source, used by tests.
func WithClock(now func() time.Time) ClassifierOption {
	return func(c *Classifier) { c.now = now }
}

// NewClassifier builds a classifier over the given tables.
func NewClassifier(tables Tables, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		tables: tables,
		title:  cases.Title(language.English),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categories returns the query categories in the order they are tested.
func (c *Classifier) Categories() []string {
	names := make([]string, 0, len(c.tables.Categories))
	for _, rule := range c.tables.Categories {
		names = append(names, rule.Name)
	}
	return names
}

// Analyze routes text to contract mode or query mode. Empty text yields the
// language-specific "no input" error.
func (c *Classifier) Analyze(text, lang string) models.Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptyInputResult(TaskAnalysis, lang)
	}
	if c.IsContract(text) {
		return c.AnalyzeContract(text)
	}
	return c.AnalyzeQuery(text)
}

// IsContract reports whether any routing keyword appears in text.
func (c *Classifier) IsContract(text string) bool {
	return containsAny(strings.ToLower(text), c.tables.ContractKeywords) != ""
}

// AnalyzeContract scans text for risk indicators, highest tier first.
func (c *Classifier) AnalyzeContract(text string) *models.ContractFindings {
	lower := strings.ToLower(text)

	var findings []models.Finding
	overall := ""
	for _, tier := range c.tables.RiskTiers {
		for _, ind := range tier.Indicators {
			if !strings.Contains(lower, strings.ToLower(ind)) {
				continue
			}
			if overall == "" || riskRank(tier.Level) > riskRank(overall) {
				overall = tier.Level
			}
			if len(findings) < maxFindings {
				rewrite := suggestedRewrite(tier.Level, ind)
				findings = append(findings, models.Finding{
					Clause:      fmt.Sprintf("Found clause containing: '%s'", ind),
					Risk:        tier.Level,
					Rewrite:     rewrite,
					Explanation: "This clause may impact your rights and obligations. " + rewrite,
				})
			}
		}
	}

	if len(findings) == 0 {
		overall = models.RiskLow
		findings = []models.Finding{{
			Clause:      "General contract terms reviewed",
			Risk:        models.RiskLow,
			Rewrite:     "Standard contract language appears to be used",
			Explanation: "This contract appears to use standard terms. Consider having it reviewed by a legal professional for specific concerns.",
		}}
	}

	return &models.ContractFindings{
		AnalysisType:    models.KindContractFindings,
		Category:        c.categoryTitle("contract"),
		Summary:         fmt.Sprintf("Reviewed contract text and flagged %d clause(s); overall risk is %s.", len(findings), overall),
		OverallRisk:     overall,
		Findings:        findings,
		Recommendations: append([]string(nil), contractRecommendations...),
		Disclaimer:      models.DefaultDisclaimer,
		ResultMeta:      c.meta(),
	}
}

// AnalyzeQuery picks the first category with a keyword hit and returns its
// template. Text matching no category gets the general template.
func (c *Classifier) AnalyzeQuery(text string) *models.LegalGuidance {
	category := c.MatchCategory(text)
	tmpl, ok := c.tables.Templates[category]
	if !ok {
		tmpl = c.tables.Templates[CategoryGeneral]
	}
	return &models.LegalGuidance{
		AnalysisType:    models.KindLegalGuidance,
		Category:        c.categoryTitle(category),
		Summary:         tmpl.Summary,
		KeyPoints:       append([]string(nil), tmpl.KeyPoints...),
		Recommendations: append([]string(nil), tmpl.NextSteps...),
		Disclaimer:      models.DefaultDisclaimer,
		ResultMeta:      c.meta(),
	}
}

// MatchCategory returns the first category, in priority order, whose keywords
// appear in text.
func (c *Classifier) MatchCategory(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range c.tables.Categories {
		if containsAny(lower, rule.Keywords) != "" {
			return rule.Name
		}
	}
	return CategoryGeneral
}

// Research returns a static research summary for the detected topic.
func (c *Classifier) Research(text, lang string) models.Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptyInputResult(TaskResearch, lang)
	}
	topic := detectResearchTopic(text)
	return &models.ResearchSummary{
		AnalysisType:       models.KindResearchSummary,
		Topic:              topic.name,
		RelevantCases:      append([]models.CaseCitation(nil), topic.cases...),
		RelevantStatutes:   append([]models.StatuteCitation(nil), topic.statutes...),
		LegalPrinciples:    append([]string(nil), researchPrinciples...),
		Jurisdiction:       "India - Supreme Court and High Courts",
		Analysis:           fmt.Sprintf("The query concerns %s. The cases and statutes listed are the leading authorities for this area; verify their current status before relying on them.", topic.name),
		Remedies:           append([]string(nil), researchRemedies...),
		RecentDevelopments: "Recent judicial trends show increased emphasis on constitutional values and procedural fairness.",
		References:         append([]string(nil), researchReferences...),
		Disclaimer:         models.DefaultDisclaimer,
		ResultMeta:         c.meta(),
	}
}

func (c *Classifier) meta() models.ResultMeta {
	return models.ResultMeta{
		Source:       models.SourceHeuristic,
		ModelVersion: heuristicVersion,
		GeneratedAt:  c.now().UTC(),
	}
}

func (c *Classifier) categoryTitle(name string) string {
	return c.title.String(strings.ReplaceAll(name, "_", " "))
}

func detectResearchTopic(text string) researchTopic {
	lower := strings.ToLower(text)
	for _, topic := range researchTopics {
		if containsAny(lower, topic.keywords) != "" {
			return topic
		}
	}
	return generalResearchTopic
}

// EmptyInputResult is the structured "no input" error for a task.
func EmptyInputResult(task Task, lang string) *models.ErrorResult {
	hindi := strings.EqualFold(strings.TrimSpace(lang), "hi")
	switch {
	case task == TaskResearch && hindi:
		return &models.ErrorResult{Error: "कोई अनुसंधान प्रश्न प्रदान नहीं किया गया", DemoNote: "कृपया अनुसंधान के लिए एक कानूनी विषय प्रदान करें"}
	case task == TaskResearch:
		return &models.ErrorResult{Error: "No research query provided", DemoNote: "Please provide a legal topic for research"}
	case hindi:
		return &models.ErrorResult{Error: "कोई इनपुट टेक्स्ट प्रदान नहीं किया गया", DemoNote: "कृपया कानूनी विश्लेषण के लिए टेक्स्ट प्रदान करें"}
	default:
		return &models.ErrorResult{Error: "No input text provided", DemoNote: "Please provide text for legal analysis"}
	}
}

func suggestedRewrite(level, indicator string) string {
	switch level {
	case models.RiskHigh:
		return fmt.Sprintf("Consider revising clause about '%s' to include more balanced terms.", indicator)
	case models.RiskMedium:
		return fmt.Sprintf("Review clause about '%s' for potential modifications.", indicator)
	default:
		return fmt.Sprintf("Clause about '%s' appears standard.", indicator)
	}
}

func riskRank(level string) int {
	switch level {
	case models.RiskHigh:
		return 3
	case models.RiskMedium:
		return 2
	case models.RiskLow:
		return 1
	}
	return 0
}

// containsAny returns the first keyword found in lower, or "".
func containsAny(lower string, keywords []string) string {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return kw
		}
	}
	return ""
}
