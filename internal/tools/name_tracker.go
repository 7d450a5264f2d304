package tools

// NameSeparator joins the workspace tool prefix and the operation name.
const NameSeparator = "_"

// NameTracker maps exposed tool names to catalog operations for one
// workspace. It is built once and never modified, so it needs no locking.
type NameTracker struct {
	prefix      string
	exposed     []string
	toOperation map[string]string
}

// NewNameTracker builds the mapping for every operation in catalog.
func NewNameTracker(prefix string, catalog Catalog) *NameTracker {
	nt := &NameTracker{
		prefix:      prefix,
		exposed:     make([]string, 0, len(catalog)),
		toOperation: make(map[string]string, len(catalog)),
	}
	for _, op := range catalog {
		name := nt.ExposedName(op)
		nt.exposed = append(nt.exposed, name)
		nt.toOperation[name] = op
	}
	return nt
}

// ExposedName returns the qualified tool name for op.
func (nt *NameTracker) ExposedName(op string) string {
	return nt.prefix + NameSeparator + op
}

// ExposedNames returns every qualified name in catalog order.
func (nt *NameTracker) ExposedNames() []string {
	out := make([]string, len(nt.exposed))
	copy(out, nt.exposed)
	return out
}

// Resolve returns the operation for an exact qualified name. Names belonging
// to another workspace's prefix never resolve.
func (nt *NameTracker) Resolve(qualified string) (string, error) {
	op, ok := nt.toOperation[qualified]
	if !ok {
		return "", &ToolNotFoundError{Name: qualified}
	}
	return op, nil
}
