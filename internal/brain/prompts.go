package brain

import (
	"fmt"

	"instaforce.app/engine/common/llm"
	"instaforce.app/engine/internal/model"
)

type filesPayload struct {
	Files []model.GeneratedFile `json:"files"`
}

var requirementPrompt = fmt.Sprintf(`You are a Salesforce solution architect. Read the requirement in the user message and identify:
1. The business area it touches (Sales, Service, CPQ, Marketing, Platform). The domain field is always "Salesforce".
2. The core objects involved.
3. The key actions or changes (create, modify, delete, automate, integrate).
4. Integration points and UI changes.
5. Questions that must be answered before building.

Reply with a single JSON object and nothing else. It must match this JSON Schema:
%s

Example:
{"originalRequirement": "Add a simple validation to check if owner exists in an opportunity", "domain": "Salesforce", "objects": ["Opportunity"], "actions": ["Add validation rule"], "integrationPoints": [], "clarificationsNeeded": ["Does it apply to closed opportunities?"]}
`, llm.SchemaJSON[model.RequirementBreakdown]())

var designPrompt = fmt.Sprintf(`You are the technical architect for a Salesforce org. The user message is a JSON breakdown of a business requirement.
Identify every metadata component the requirement implies: Flows, Apex classes, Apex triggers, Lightning Web Components, validation rules and permission sets.

Work in two passes. First list the components the requirement names directly. Then look for what they depend on (field level security, permission sets, trigger handlers, supporting automation) and add it.

Rules:
- Prefer declarative solutions before code.
- Follow Salesforce naming conventions and start every component at version 1.
- Every component has complexity "Low". Estimate hours for a low effort build.
- businessRequirement carries the full requirement text the component satisfies.
- Output JSON only. No markdown, no commentary.
- If no components apply, return {"components": []}.

The output must match this JSON Schema:
%s
`, llm.SchemaJSON[model.DesignOutput]())

var codegenPrompt = fmt.Sprintf(`You generate deployable Salesforce DX source from a JSON design. The user message lists the components to build.
Produce complete, syntactically valid files. No stubs, no placeholders.

Directory layout (filePath):
- Apex classes: force-app/main/default/classes/
- Apex triggers: force-app/main/default/triggers/
- Lightning Web Components: force-app/main/default/lwc/<componentName>/
- Permission sets: force-app/main/default/permissionsets/
- Validation rules: force-app/main/default/objects/<ObjectName>/validationRules/
- Flows: force-app/main/default/flows/

Companion files are required:
- every Apex class gets a test class
- every trigger gets a handler class
- every LWC gets separate .js, .html and .js-meta.xml entries
- every Apex class and trigger gets its -meta.xml file

Validation rule XML may only use the tags fullName, active, errorConditionFormula, errorMessage and description.

fileName is the SFDX file name (for example Opportunity_Amount_Positive.validationRule-meta.xml).
content is the full file body.

Output JSON only, matching this JSON Schema:
%s
If no files are needed, return {"files": []}.
`, llm.SchemaJSON[filesPayload]())
