package research

// Form is the editable state behind the query screen. Every method returns a
// new Form; mode changes overwrite breadth and depth with the new mode's
// defaults.
type Form struct {
	Query   string
	Mode    Mode
	Breadth int
	Depth   int
}

func NewForm(mode Mode) Form {
	return Form{}.WithMode(mode)
}

func (f Form) WithQuery(query string) Form {
	f.Query = query
	return f
}

func (f Form) WithMode(mode Mode) Form {
	params := Derive(mode)
	f.Mode = params.Mode
	f.Breadth = params.DefaultBreadth
	f.Depth = params.DefaultDepth
	return f
}

func (f Form) WithBreadth(breadth int) Form {
	f.Breadth = clamp(breadth, MinValue, Derive(f.Mode).MaxBreadth)
	return f
}

func (f Form) WithDepth(depth int) Form {
	f.Depth = clamp(depth, MinValue, Derive(f.Mode).MaxDepth)
	return f
}

func (f Form) Params() Params {
	return Derive(f.Mode)
}

func (f Form) Request() Request {
	return Request{
		Query:   f.Query,
		Mode:    f.Mode,
		Breadth: f.Breadth,
		Depth:   f.Depth,
	}
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
