package model

// ComponentType names a kind of Salesforce metadata artifact.
type ComponentType string

const (
	ComponentTypeFlow           ComponentType = "Flow"
	ComponentTypeApexClass      ComponentType = "ApexClass"
	ComponentTypeApexTrigger    ComponentType = "ApexTrigger"
	ComponentTypeLWC            ComponentType = "LWC"
	ComponentTypePermissionSet  ComponentType = "PermissionSet"
	ComponentTypeValidationRule ComponentType = "ValidationRule"
)

// ComplexityLow is the only complexity the designer plans for.
const ComplexityLow = "Low"

// Valid reports whether t is one of the known component types.
func (t ComponentType) Valid() bool {
	switch t {
	case ComponentTypeFlow, ComponentTypeApexClass, ComponentTypeApexTrigger,
		ComponentTypeLWC, ComponentTypePermissionSet, ComponentTypeValidationRule:
		return true
	}
	return false
}

// Component is one planned configuration artifact.
type Component struct {
	Type                ComponentType     `json:"type" jsonschema:"enum=Flow,enum=ApexClass,enum=ApexTrigger,enum=LWC,enum=PermissionSet,enum=ValidationRule"`
	APIName             string            `json:"apiName"`
	Label               string            `json:"label"`
	Object              *string           `json:"object"`
	Description         string            `json:"description"`
	BusinessRequirement string            `json:"businessRequirement"`
	Complexity          string            `json:"complexity" jsonschema:"enum=Low"`
	EstimatedHours      int               `json:"estimatedHours" jsonschema:"minimum=0"`
	Fields              []FieldSpec       `json:"fields"`
	Actions             []ActionSpec      `json:"actions"`
	Dependencies        DependencySpec    `json:"dependencies"`
	NamingConventions   NamingConventions `json:"namingConventions"`
	ImplementationNotes []string          `json:"implementationNotes"`
}

type FieldSpec struct {
	FieldName    string `json:"fieldName"`
	FieldAPIName string `json:"fieldApiName"`
	DataType     string `json:"dataType"`
}

type ActionSpec struct {
	ActionType string `json:"actionType" jsonschema:"description=create | update | delete | validation | screen | callApex | decision | assignment"`
	Target     string `json:"target"`
	Logic      string `json:"logic"`
}

type DependencySpec struct {
	RequiresPermissionSet      bool     `json:"requiresPermissionSet"`
	RequiredPermissionSetNames []string `json:"requiredPermissionSetNames"`
	RequiresApex               bool     `json:"requiresApex"`
	RequiredApexClasses        []string `json:"requiredApexClasses"`
	RequiresLWC                bool     `json:"requiresLWC"`
	RequiredLWCs               []string `json:"requiredLWCs"`
}

type NamingConventions struct {
	APINameFormat string `json:"apiNameFormat"`
	Version       int    `json:"version"`
}

// NormalizeComponent fills every schema key of raw with a typed default.
// defaultBusinessReq is used when the model omitted businessRequirement.
// Normalizing an already normalized component is a no-op.
func NormalizeComponent(raw map[string]any, defaultBusinessReq string) Component {
	businessReq := defaultBusinessReq
	if v, ok := raw["businessRequirement"]; ok {
		businessReq = asString(v, defaultBusinessReq)
	}

	return Component{
		Type:                ComponentType(asString(raw["type"], "")),
		APIName:             asString(raw["apiName"], ""),
		Label:               asString(raw["label"], ""),
		Object:              asNullableString(raw["object"]),
		Description:         asString(raw["description"], ""),
		BusinessRequirement: businessReq,
		Complexity:          ComplexityLow,
		EstimatedHours:      asNonNegativeInt(raw["estimatedHours"]),
		Fields:              normalizeFields(raw["fields"]),
		Actions:             normalizeActions(raw["actions"]),
		Dependencies:        normalizeDependencies(raw["dependencies"]),
		NamingConventions:   normalizeNaming(raw["namingConventions"]),
		ImplementationNotes: asStringSlice(raw["implementationNotes"]),
	}
}

func normalizeFields(v any) []FieldSpec {
	objs := asObjects(v)
	fields := make([]FieldSpec, 0, len(objs))
	for _, obj := range objs {
		fields = append(fields, FieldSpec{
			FieldName:    asString(obj["fieldName"], ""),
			FieldAPIName: asString(obj["fieldApiName"], ""),
			DataType:     asString(obj["dataType"], ""),
		})
	}
	return fields
}

func normalizeActions(v any) []ActionSpec {
	objs := asObjects(v)
	actions := make([]ActionSpec, 0, len(objs))
	for _, obj := range objs {
		actions = append(actions, ActionSpec{
			ActionType: asString(obj["actionType"], ""),
			Target:     asString(obj["target"], ""),
			Logic:      asString(obj["logic"], ""),
		})
	}
	return actions
}

func normalizeDependencies(v any) DependencySpec {
	obj, _ := v.(map[string]any)
	return DependencySpec{
		RequiresPermissionSet:      asBool(obj["requiresPermissionSet"]),
		RequiredPermissionSetNames: asStringSlice(obj["requiredPermissionSetNames"]),
		RequiresApex:               asBool(obj["requiresApex"]),
		RequiredApexClasses:        asStringSlice(obj["requiredApexClasses"]),
		RequiresLWC:                asBool(obj["requiresLWC"]),
		RequiredLWCs:               asStringSlice(obj["requiredLWCs"]),
	}
}

func normalizeNaming(v any) NamingConventions {
	obj, _ := v.(map[string]any)
	version, ok := asInt(obj["version"])
	if !ok {
		version = 1
	}
	return NamingConventions{
		APINameFormat: asString(obj["apiNameFormat"], ""),
		Version:       version,
	}
}
