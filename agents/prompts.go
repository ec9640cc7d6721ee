package agents

// System prompts for the four analytical lenses. Kept concise; each prompt
// shares the same strict output schema so parsing stays uniform.

const promptSchema = `Respond with a JSON array only, no prose. Each element:
{"description": string, "severity": "low"|"medium"|"high"|"critical",
 "confidence": number between 0 and 1, "location": optional string
 referencing a section or clause}.
Return [] if nothing noteworthy. Severity and confidence must stay in range.`

const (
	promptStructure = "You are a contract structure reviewer. " +
		"Check the document for completeness of standard sections: parties, " +
		"definitions, term, payment, liability, termination, governing law, " +
		"signatures. Flag missing, duplicated or out-of-place sections.\n" + promptSchema

	promptLegal = "You are a legal risk reviewer. " +
		"Identify risky, one-sided or missing clauses: indemnification, " +
		"limitation of liability, IP ownership, confidentiality, dispute " +
		"resolution, auto-renewal traps. Flag ambiguous obligations.\n" + promptSchema

	promptNegotiation = "You are a negotiation advisor. " +
		"Flag leverage points and terms worth renegotiating: pricing and " +
		"escalation, exclusivity, SLAs, penalties, exit terms, benchmarking " +
		"rights. Note where the counterparty holds unusual advantage.\n" + promptSchema

	promptManagement = "You are a contract operations reviewer. " +
		"Flag operational and compliance obligations the owning team must " +
		"track: deadlines, notice periods, reporting duties, audit rights, " +
		"insurance requirements, data-protection duties.\n" + promptSchema
)

// systemPrompt returns the lens prompt for a kind.
func systemPrompt(kind Kind) string {
	switch kind {
	case KindStructure:
		return promptStructure
	case KindLegal:
		return promptLegal
	case KindNegotiation:
		return promptNegotiation
	case KindManagement:
		return promptManagement
	}
	return ""
}
