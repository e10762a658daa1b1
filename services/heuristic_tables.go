package services

import "github.com/itish2003/lawgic/models"

// RiskTier is one severity level with its indicator phrases.
type RiskTier struct {
	Level      string   `yaml:"level" json:"level"`
	Indicators []string `yaml:"indicators" json:"indicators"`
}

// CategoryRule maps a legal category to the keywords that select it.
type CategoryRule struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// GuidanceTemplate is the static advice returned for a category.
type GuidanceTemplate struct {
	Summary   string   `yaml:"summary" json:"summary"`
	KeyPoints []string `yaml:"key_points" json:"key_points"`
	NextSteps []string `yaml:"next_steps" json:"next_steps"`
}

// Tables is everything the heuristic classifier knows. Tiers are scanned in
// slice order and categories are tested in slice order.
type Tables struct {
	ContractKeywords []string                    `yaml:"contract_keywords"`
	RiskTiers        []RiskTier                  `yaml:"risk_tiers"`
	Categories       []CategoryRule              `yaml:"categories"`
	Templates        map[string]GuidanceTemplate `yaml:"templates"`
}

const CategoryGeneral = "general"

// DefaultTables returns the built-in keyword tables.
func DefaultTables() Tables {
	return Tables{
		ContractKeywords: []string{"contract", "agreement", "terms", "clause"},
		RiskTiers: []RiskTier{
			{Level: models.RiskHigh, Indicators: []string{"terminate without notice", "no refund", "unlimited liability", "exclusive jurisdiction"}},
			{Level: models.RiskMedium, Indicators: []string{"late fees", "automatic renewal", "binding arbitration", "limitation of liability"}},
			{Level: models.RiskLow, Indicators: []string{"30 days notice", "reasonable efforts", "mutual agreement", "standard terms"}},
		},
		Categories: []CategoryRule{
			{Name: "tenant_rights", Keywords: []string{"rent", "landlord", "tenant", "eviction", "lease", "housing"}},
			{Name: "employment", Keywords: []string{"job", "work", "employer", "salary", "wage", "termination", "harassment"}},
			{Name: "contract", Keywords: []string{"contract", "agreement", "terms", "breach", "obligation"}},
			{Name: "criminal", Keywords: []string{"arrest", "police", "court", "criminal", "charges", "bail"}},
			{Name: "family", Keywords: []string{"divorce", "custody", "child support", "marriage", "domestic"}},
		},
		Templates: defaultTemplates(),
	}
}

func defaultTemplates() map[string]GuidanceTemplate {
	return map[string]GuidanceTemplate{
		"tenant_rights": {
			Summary: "This appears to be a tenant rights issue.",
			KeyPoints: []string{
				"Tenants have right to habitable living conditions",
				"Landlords must follow proper legal procedures",
				"Security deposits have specific legal protections",
				"Local tenant protection laws may apply",
			},
			NextSteps: []string{
				"Document all communications with your landlord",
				"Research your local tenant rights laws",
				"Contact local tenant rights organizations",
				"Consider consulting with a tenant rights attorney",
			},
		},
		"employment": {
			Summary: "This appears to be an employment law matter.",
			KeyPoints: []string{
				"Employees have rights to fair wages and safe working conditions",
				"Discrimination and harassment are prohibited by law",
				"Termination procedures must follow legal requirements",
				"Workers may have rights to unemployment benefits",
			},
			NextSteps: []string{
				"Document all workplace incidents and communications",
				"Review your employee handbook and contract",
				"Contact your HR department if appropriate",
				"Consider consulting with an employment attorney",
			},
		},
		"contract": {
			Summary: "This appears to be a contract law matter.",
			KeyPoints: []string{
				"Contract terms and obligations bind the parties who accepted them",
				"A breach may entitle the other party to damages or termination",
				"Unfair terms in standard form contracts can be challenged",
				"Written records of performance and communication matter",
			},
			NextSteps: []string{
				"Review all contract clauses carefully",
				"Ensure mutual obligations are clear",
				"Keep copies of all contract-related communications",
				"Consider legal consultation for complex terms",
			},
		},
		"criminal": {
			Summary: "This appears to involve criminal law matters.",
			KeyPoints: []string{
				"You have the right to remain silent",
				"You have the right to legal representation",
				"You are presumed innocent until proven guilty",
				"Police must follow proper procedures",
			},
			NextSteps: []string{
				"Contact a criminal defense attorney immediately",
				"Do not speak to police without an attorney present",
				"Gather all relevant documents and evidence",
				"Understand your bail and court appearance requirements",
			},
		},
		"family": {
			Summary: "This appears to be a family law matter.",
			KeyPoints: []string{
				"Courts decide custody in the best interests of the child",
				"Maintenance and child support obligations are enforceable",
				"Protection orders are available against domestic violence",
				"Mediation is often required before contested hearings",
			},
			NextSteps: []string{
				"Keep records of income, expenses and communications",
				"Contact a family law attorney or legal aid clinic",
				"Consider mediation where it is safe to do so",
				"Seek a protection order immediately if you are at risk",
			},
		},
		CategoryGeneral: {
			Summary: "This appears to be a general legal inquiry.",
			KeyPoints: []string{
				"Legal issues can be complex and fact-specific",
				"Professional legal advice is often necessary",
				"Documentation is crucial in legal matters",
				"Time limits may apply to legal actions",
			},
			NextSteps: []string{
				"Consult with a qualified attorney in the relevant area of law",
				"Gather all relevant documents and evidence",
				"Research applicable laws in your jurisdiction",
				"Act promptly as legal deadlines may apply",
			},
		},
	}
}

var contractRecommendations = []string{
	"Have the contract reviewed by a qualified attorney",
	"Negotiate any unfavorable terms before signing",
	"Keep copies of all contract-related communications",
	"Understand your termination and dispute resolution options",
}

// researchTopic is one research-mode topic with its citation tables.
type researchTopic struct {
	name     string
	keywords []string
	cases    []models.CaseCitation
	statutes []models.StatuteCitation
}

var contractCases = []models.CaseCitation{
	{CaseName: "Satyabrata Ghose v. Mugneeram Bangur & Co.", Year: "1954", Court: "Supreme Court of India", Summary: "Landmark case establishing the doctrine of frustration of contract under Indian Contract Act"},
	{CaseName: "Kailash Nath Associates v. Delhi Development Authority", Year: "2015", Court: "Supreme Court of India", Summary: "Recent ruling on breach of contract and compensation in government contracts"},
	{CaseName: "Indian Oil Corporation Ltd. v. Amritsar Gas Service", Year: "1991", Court: "Supreme Court of India", Summary: "Established principles of unfair terms in standard form contracts"},
}

var contractStatutes = []models.StatuteCitation{
	{ActName: "Indian Contract Act", Year: "1872", Section: "Section 1-266", Summary: "Primary legislation governing contracts in India"},
	{ActName: "Sale of Goods Act", Year: "1930", Section: "Section 1-66", Summary: "Governs sale of goods and related contracts"},
}

var employmentCases = []models.CaseCitation{
	{CaseName: "Vishaka v. State of Rajasthan", Year: "1997", Court: "Supreme Court of India", Summary: "Landmark judgment establishing guidelines for workplace sexual harassment prevention"},
	{CaseName: "Secretary, State of Karnataka v. Umadevi", Year: "2006", Court: "Supreme Court of India", Summary: "Important case on regularization of temporary and contractual employees"},
	{CaseName: "Workmen of American Express International Banking Corporation v. Management", Year: "1985", Court: "Supreme Court of India", Summary: "Established principles for retrenchment compensation and due process"},
}

var employmentStatutes = []models.StatuteCitation{
	{ActName: "Industrial Disputes Act", Year: "1947", Section: "Section 1-40", Summary: "Primary legislation for industrial relations and dispute resolution"},
	{ActName: "Sexual Harassment of Women at Workplace (Prevention, Prohibition and Redressal) Act", Year: "2013", Section: "Section 1-26", Summary: "Comprehensive law addressing workplace harassment"},
}

var generalCases = []models.CaseCitation{
	{CaseName: "Kesavananda Bharati v. State of Kerala", Year: "1973", Court: "Supreme Court of India", Summary: "Established the basic structure doctrine of the Constitution"},
	{CaseName: "Maneka Gandhi v. Union of India", Year: "1978", Court: "Supreme Court of India", Summary: "Expanded the scope of Article 21 and established procedural due process"},
	{CaseName: "K.S. Puttaswamy v. Union of India", Year: "2017", Court: "Supreme Court of India", Summary: "Recognized privacy as a fundamental right under Indian Constitution"},
}

var generalStatutes = []models.StatuteCitation{
	{ActName: "Constitution of India", Year: "1950", Section: "Articles 1-395", Summary: "Supreme law of India establishing fundamental rights and governance structure"},
	{ActName: "Code of Civil Procedure", Year: "1908", Section: "Section 1-158", Summary: "Procedural law governing civil litigation in India"},
}

// researchTopics is tested in order; the first topic with a keyword hit wins.
var researchTopics = []researchTopic{
	{name: "Contract Law in India", keywords: []string{"contract", "agreement", "breach"}, cases: contractCases, statutes: contractStatutes},
	{name: "Employment and Labour Law in India", keywords: []string{"employment", "workplace", "labor", "labour", "discrimination"}, cases: employmentCases, statutes: employmentStatutes},
	{name: "Criminal Law in India", keywords: []string{"criminal", "crime", "ipc", "crpc"}, cases: generalCases, statutes: generalStatutes},
	{name: "Property Law in India", keywords: []string{"property", "real estate", "land", "immovable"}, cases: generalCases, statutes: generalStatutes},
	{name: "Constitutional Law in India", keywords: []string{"constitutional", "fundamental rights", "directive principles"}, cases: generalCases, statutes: generalStatutes},
}

var generalResearchTopic = researchTopic{name: "General Legal Research", cases: generalCases, statutes: generalStatutes}

var researchPrinciples = []string{
	"Indian legal system follows common law principles with statutory modifications",
	"Supreme Court judgments are binding on all lower courts (Article 141)",
	"High Court decisions are binding within their territorial jurisdiction",
	"Parliamentary supremacy subject to constitutional basic structure",
}

var researchRemedies = []string{
	"Civil remedies under respective statutes",
	"Constitutional remedies through writ jurisdiction (Articles 32, 226)",
	"Alternative dispute resolution mechanisms",
	"Regulatory and administrative remedies",
}

var researchReferences = []string{
	"AIR (All India Reporter) citations",
	"Supreme Court Cases (SCC) database",
	"Indian Law Reports",
	"Manupatra and SCC Online databases",
}
