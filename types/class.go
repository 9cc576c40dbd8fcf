package types

// Member is a non-static data member of a class.
type Member struct {
	Name string
	Type *Type
}

// Class describes a class: its optional base and its data members in
// declaration order. Classes from different translation units that turn
// out to be the same definition are linked to one canonical descriptor.
type Class struct {
	Name     string
	Base     *Class
	Members  []Member
	Tokens   string // Definition text with whitespace removed.
	Complete bool

	canon *Class
}

// NewClass returns an incomplete class named name.
func NewClass(name string) *Class {
	return &Class{Name: name}
}

// Canonical returns the descriptor c has been linked to, or c itself.
func (c *Class) Canonical() *Class {
	for c.canon != nil {
		c = c.canon
	}
	return c
}

// Link makes other the canonical descriptor for c.
func (c *Class) Link(other *Class) {
	from, to := c.Canonical(), other.Canonical()
	if from == to {
		return
	}
	from.canon = to
}

// Same reports whether c and other denote the same class.
func (c *Class) Same(other *Class) bool {
	return c.Canonical() == other.Canonical()
}

// Size is the size of the base subobject plus all members, unpadded.
// A class without data still occupies one byte, so distinct objects
// have distinct addresses.
func (c *Class) Size() (size int64) {
	c = c.Canonical()
	if c.Base != nil {
		size += c.Base.Size()
	}
	for _, m := range c.Members {
		size += m.Type.Size()
	}
	return max(size, 1)
}

// Member returns the data member declared directly in c.
func (c *Class) Member(name string) (m Member, ok bool) {
	for _, m = range c.Canonical().Members {
		if m.Name == name {
			ok = true
			return
		}
	}
	m = Member{}
	return
}

// IsDerivedFrom reports whether base is a proper base class of c.
func (c *Class) IsDerivedFrom(base *Class) bool {
	for b := c.Canonical().Base; b != nil; b = b.Canonical().Base {
		if b.Same(base) {
			return true
		}
	}
	return false
}
