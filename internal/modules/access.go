package modules

// HasAccess decides whether role may use moduleID given the organization's
// enabled features. Unknown modules are denied. Core modules skip the feature
// check but still honour a declared role restriction.
func (r *Registry) HasAccess(moduleID string, features FeatureSet, role Role) bool {
	if r == nil {
		return false
	}
	d, ok := r.byID[moduleID]
	if !ok {
		return false
	}
	if !d.Core && !features.Has(d.Feature) {
		return false
	}
	return d.AllowsRole(role)
}

// Available returns, in display order, the modules role may use.
func (r *Registry) Available(features FeatureSet, role Role) []Descriptor {
	var out []Descriptor
	for _, d := range r.ordered {
		if r.HasAccess(d.ID, features, role) {
			out = append(out, d)
		}
	}
	return out
}
