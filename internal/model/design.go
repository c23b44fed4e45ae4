package model

// DesignOutput is the designer's plan: the components plus a summary.
type DesignOutput struct {
	Components []Component `json:"components"`
	Summary    Summary     `json:"summary"`
}

type Summary struct {
	TotalComponents     int      `json:"totalComponents"`
	TotalEstimatedHours int      `json:"totalEstimatedHours"`
	Assumptions         []string `json:"assumptions"`
}

// EmptyDesign is the degraded design: no components, zero totals.
func EmptyDesign() DesignOutput {
	return DesignOutput{
		Components: []Component{},
		Summary:    Summary{Assumptions: []string{}},
	}
}

// TotalHours sums estimatedHours over components.
func TotalHours(components []Component) int {
	total := 0
	for _, c := range components {
		total += c.EstimatedHours
	}
	return total
}

// NormalizeDesign coerces an extracted JSON value into a DesignOutput.
//
// The value may be {components: [...], summary: {...}}, a single component
// object (recognized by a type or apiName key), or a bare list of components.
// Non-object list elements are dropped. A supplied summary is trusted; only
// its missing sub-fields are computed from the normalized components.
func NormalizeDesign(raw any, defaultBusinessReq string) DesignOutput {
	items, summaryRaw, _ := designItems(raw)

	components := make([]Component, 0, len(items))
	for _, item := range items {
		components = append(components, NormalizeComponent(item, defaultBusinessReq))
	}

	return DesignOutput{
		Components: components,
		Summary:    reconcileSummary(summaryRaw, components),
	}
}

// IsDesignPayload reports whether raw has one of the shapes NormalizeDesign
// reads components from. Scalars and unrelated objects do not.
func IsDesignPayload(raw any) bool {
	_, _, ok := designItems(raw)
	return ok
}

func designItems(raw any) (items []map[string]any, summaryRaw any, ok bool) {
	switch v := raw.(type) {
	case map[string]any:
		if list, isList := v["components"].([]any); isList {
			return asObjects(list), v["summary"], true
		}
		_, hasType := v["type"]
		_, hasName := v["apiName"]
		if hasType || hasName {
			return []map[string]any{v}, v["summary"], true
		}
		return nil, v["summary"], false
	case []any:
		return asObjects(v), nil, true
	}
	return nil, nil, false
}

// reconcileSummary keeps every supplied count. A count that is null or not a
// number cannot be carried in an int and is computed as if absent.
func reconcileSummary(raw any, components []Component) Summary {
	summary := Summary{
		TotalComponents:     len(components),
		TotalEstimatedHours: TotalHours(components),
		Assumptions:         []string{},
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return summary
	}
	if n, ok := asInt(obj["totalComponents"]); ok {
		summary.TotalComponents = n
	}
	if n, ok := asInt(obj["totalEstimatedHours"]); ok {
		summary.TotalEstimatedHours = n
	}
	if v, ok := obj["assumptions"]; ok {
		summary.Assumptions = asStringSlice(v)
	}
	return summary
}
