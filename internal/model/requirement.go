package model

// DomainSalesforce is the only business domain the pipeline targets.
const DomainSalesforce = "Salesforce"

// RequirementBreakdown is the structured interpretation of a free-text requirement.
type RequirementBreakdown struct {
	OriginalRequirement  string   `json:"originalRequirement"`
	Domain               string   `json:"domain"`
	Objects              []string `json:"objects"`
	Actions              []string `json:"actions"`
	IntegrationPoints    []string `json:"integrationPoints"`
	ClarificationsNeeded []string `json:"clarificationsNeeded"`
}

// EmptyBreakdown is the degraded breakdown used when the model output could
// not be interpreted. It means "not understood", not "nothing required".
func EmptyBreakdown() RequirementBreakdown {
	return RequirementBreakdown{
		Objects:              []string{},
		Actions:              []string{},
		IntegrationPoints:    []string{},
		ClarificationsNeeded: []string{},
	}
}

// IsEmpty reports whether b carries no information at all.
func (b RequirementBreakdown) IsEmpty() bool {
	return b.Domain == "" &&
		len(b.Objects) == 0 &&
		len(b.Actions) == 0 &&
		len(b.IntegrationPoints) == 0 &&
		len(b.ClarificationsNeeded) == 0
}

// NormalizeBreakdown coerces a decoded JSON object into a breakdown. Every
// list defaults to empty, domain defaults to Salesforce and the original
// requirement defaults to requirement.
func NormalizeBreakdown(raw map[string]any, requirement string) RequirementBreakdown {
	original := requirement
	for _, key := range []string{"originalRequirement", "Original requirement", "original_requirement"} {
		if v, ok := raw[key]; ok {
			if s := asString(v, ""); s != "" {
				original = s
				break
			}
		}
	}

	domain := asString(raw["domain"], "")
	if domain == "" {
		domain = DomainSalesforce
	}

	return RequirementBreakdown{
		OriginalRequirement:  original,
		Domain:               domain,
		Objects:              asStringSlice(raw["objects"]),
		Actions:              asStringSlice(raw["actions"]),
		IntegrationPoints:    asStringSlice(raw["integrationPoints"]),
		ClarificationsNeeded: asStringSlice(raw["clarificationsNeeded"]),
	}
}
