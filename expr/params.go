package expr

// Param is one entry of a parameter list: a user-facing control with a
// current value and a min/max range, addressed in expressions by its
// internal name.
type Param struct {
	DisplayName  string
	InternalName string
	Value        float64
	Min          float64
	Max          float64

	next *Param
}

// ParamList is a singly linked association list of Params, matching the
// original source's representation: expressions resolve references by
// internal-name equality via a linear walk, not a map, since lists are
// typically tiny (a handful of knobs per effect).
type ParamList struct {
	head *Param
	tail *Param
}

// Add appends p to the list. Order is preserved for iteration but does
// not affect lookup.
func (l *ParamList) Add(p *Param) {
	p.next = nil
	if l.head == nil {
		l.head = p
		l.tail = p
		return
	}
	l.tail.next = p
	l.tail = p
}

// Lookup finds a parameter by internal name. The second return value is
// false if no parameter with that name exists.
func (l *ParamList) Lookup(internalName string) (*Param, bool) {
	for p := l.head; p != nil; p = p.next {
		if p.InternalName == internalName {
			return p, true
		}
	}
	return nil, false
}

// Each calls fn for every parameter in insertion order.
func (l *ParamList) Each(fn func(*Param)) {
	for p := l.head; p != nil; p = p.next {
		fn(p)
	}
}
