package selection

// Role names a selection context. The workbench keeps exactly two: the
// primary view for single-example inspection and the reference view for
// paired comparison.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleReference Role = "reference"
)

// Pair groups the primary and reference contexts under their roles and
// tracks whether comparison mode is active.
type Pair struct {
	primary    *Context
	reference  *Context
	comparison bool
}

// NewPair creates a pair with empty contexts and comparison mode off.
func NewPair() *Pair {
	return &Pair{
		primary:   NewContext(RolePrimary),
		reference: NewContext(RoleReference),
	}
}

// Primary returns the primary selection context.
func (p *Pair) Primary() *Context {
	return p.primary
}

// Reference returns the reference selection context.
func (p *Pair) Reference() *Context {
	return p.reference
}

// ByRole resolves a context by role name. Unknown roles return nil.
func (p *Pair) ByRole(role Role) *Context {
	switch role {
	case RolePrimary:
		return p.primary
	case RoleReference:
		return p.reference
	default:
		return nil
	}
}

// ComparisonMode reports whether the reference view participates in commits.
func (p *Pair) ComparisonMode() bool {
	return p.comparison
}

// SetComparisonMode toggles the reference view on or off.
func (p *Pair) SetComparisonMode(active bool) {
	p.comparison = active
}
