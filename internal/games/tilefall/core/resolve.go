package core

// Resolver removes the component under a selection and lets the affected
// columns settle. The zero value is ready to use; it keeps no state between
// calls and may be reused across grids.
type Resolver struct{}

// ResolveSelection is Resolver{}.Resolve.
func ResolveSelection(s Surface, x, y int) ([]Coord, error) {
	return Resolver{}.Resolve(s, x, y)
}

// Resolve clears every cell 4-connected to (x, y) that shares its colour,
// then compacts each column that lost a cell. It returns the cleared
// coordinates. Selecting an empty cell changes nothing and returns no
// coordinates. An out-of-bounds selection returns an OutOfBoundsError and
// leaves s untouched.
func (Resolver) Resolve(s Surface, x, y int) ([]Coord, error) {
	seed, err := s.ColourAt(x, y)
	if err != nil {
		return nil, err
	}
	if seed.IsEmpty() {
		return nil, nil
	}

	removed := walk(s, C(x, y), seed, func(c Coord) {
		_ = s.SetColourAt(c.X, c.Y, Empty) // in bounds: walk filters first
	})
	Compact(s, touchedColumns(s.Width(), removed)...)
	return removed, nil
}

// FindComponent returns the cells Resolve would clear for (x, y) without
// modifying s.
func FindComponent(s Surface, x, y int) ([]Coord, error) {
	seed, err := s.ColourAt(x, y)
	if err != nil {
		return nil, err
	}
	if seed.IsEmpty() {
		return nil, nil
	}
	return walk(s, C(x, y), seed, nil), nil
}

// walk is an iterative flood fill from seed over cells of the given colour.
// Neighbours are pushed unconditionally; bounds and visited filtering happen
// on pop, so each cell is examined at most once.
func walk(s Surface, seed Coord, colour Colour, onMatch func(Coord)) []Coord {
	h := s.Height()
	visited := make([]bool, s.Width()*h)
	stack := []Coord{seed}
	var found []Coord

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !s.InBounds(c.X, c.Y) {
			continue
		}
		idx := c.X*h + c.Y
		if visited[idx] {
			continue
		}
		visited[idx] = true

		current, err := s.ColourAt(c.X, c.Y)
		if err != nil || current != colour {
			continue
		}

		if onMatch != nil {
			onMatch(c)
		}
		found = append(found, c)

		for _, n := range c.Neighbours() {
			stack = append(stack, n)
		}
	}

	return found
}

// touchedColumns returns the distinct columns of coords in ascending order.
func touchedColumns(width int, coords []Coord) []int {
	seen := make([]bool, width)
	for _, c := range coords {
		if c.X >= 0 && c.X < width {
			seen[c.X] = true
		}
	}
	var columns []int
	for x, ok := range seen {
		if ok {
			columns = append(columns, x)
		}
	}
	return columns
}

// Compact applies gravity to the given columns: coloured cells slide toward
// y = 0 keeping their relative order, and the freed cells at the top of the
// column become empty. Columns outside the surface are ignored.
func Compact(s Surface, columns ...int) {
	h := s.Height()
	for _, x := range columns {
		if !s.InBounds(x, 0) {
			continue
		}

		write := 0
		for y := range h {
			c, _ := s.ColourAt(x, y)
			if c.IsEmpty() {
				continue
			}
			if y != write {
				_ = s.SetColourAt(x, write, c)
			}
			write++
		}
		for y := write; y < h; y++ {
			_ = s.SetColourAt(x, y, Empty)
		}
	}
}
