package modules

import "sort"

// FeatureSet is an unordered set of feature flags.
type FeatureSet map[string]struct{}

// NewFeatureSet builds a set from flags, ignoring empty strings.
func NewFeatureSet(flags ...string) FeatureSet {
	fs := make(FeatureSet, len(flags))
	for _, f := range flags {
		if f != "" {
			fs[f] = struct{}{}
		}
	}
	return fs
}

// Has reports whether flag is enabled. A nil set has no flags.
func (fs FeatureSet) Has(flag string) bool {
	_, ok := fs[flag]
	return ok
}

// Add enables flag.
func (fs FeatureSet) Add(flag string) {
	if flag != "" {
		fs[flag] = struct{}{}
	}
}

// Remove disables flag.
func (fs FeatureSet) Remove(flag string) {
	delete(fs, flag)
}

// Clone returns an independent copy.
func (fs FeatureSet) Clone() FeatureSet {
	out := make(FeatureSet, len(fs))
	for f := range fs {
		out[f] = struct{}{}
	}
	return out
}

// Slice returns the flags sorted, so stored and signed forms are stable.
func (fs FeatureSet) Slice() []string {
	out := make([]string, 0, len(fs))
	for f := range fs {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
