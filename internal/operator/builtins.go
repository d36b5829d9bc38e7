package operator

// Builtins returns the static registration list of the built-in catalog.
func Builtins() []Descriptor {
	var out []Descriptor
	out = append(out, comparisonDescriptors()...)
	out = append(out, patternDescriptors()...)
	out = append(out, nullCheckDescriptors()...)
	out = append(out, dateDescriptors()...)
	out = append(out, membershipDescriptors()...)
	return out
}

// RegisterBuiltins registers every built-in operator into r.
func RegisterBuiltins(r *Registry) {
	for _, d := range Builtins() {
		r.MustRegister(d)
	}
}

// NewBuiltinRegistry returns a registry holding the built-in catalog.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}
