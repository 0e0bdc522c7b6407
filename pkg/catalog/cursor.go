package catalog

// PageSize is how many entries a single page shows before "load more".
const PageSize = 50

// Cursor tracks incremental pagination over a filtered view. It resets to the
// first page whenever the view is recomputed from scratch and only moves
// forward through an explicit Advance.
type Cursor struct {
	page int
}

func NewCursor() *Cursor {
	return &Cursor{page: 1}
}

func (c *Cursor) Page() int {
	if c.page < 1 {
		return 1
	}
	return c.page
}

func (c *Cursor) Reset() {
	c.page = 1
}

func (c *Cursor) Advance() {
	c.page = c.Page() + 1
}

// PageSlice returns the entries of the given 1-based page and whether more
// pages follow.
func PageSlice(view []*Entry, page, pageSize int) ([]*Entry, bool) {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(view) {
		return nil, false
	}
	end := start + pageSize
	if end > len(view) {
		end = len(view)
	}
	return view[start:end], end < len(view)
}
