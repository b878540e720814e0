package picker

import "slices"

// SelectionSet holds the selected grid positions of the active album.
// It never grows beyond its maximum.
type SelectionSet struct {
	max       int
	positions []int // in selection order
}

func NewSelectionSet(max int) *SelectionSet {
	if max < 1 {
		max = 1
	}
	return &SelectionSet{max: max}
}

func (s *SelectionSet) Max() int { return s.max }

func (s *SelectionSet) Len() int { return len(s.positions) }

func (s *SelectionSet) Full() bool { return len(s.positions) >= s.max }

func (s *SelectionSet) Contains(pos int) bool {
	return slices.Contains(s.positions, pos)
}

// Add inserts pos, returning false if it was already present
// or the set is full.
func (s *SelectionSet) Add(pos int) bool {
	if s.Contains(pos) || s.Full() {
		return false
	}
	s.positions = append(s.positions, pos)
	return true
}

func (s *SelectionSet) Remove(pos int) bool {
	i := slices.Index(s.positions, pos)
	if i < 0 {
		return false
	}
	s.positions = slices.Delete(s.positions, i, i+1)
	return true
}

func (s *SelectionSet) Clear() {
	s.positions = s.positions[:0]
}

// Positions returns the selected positions in grid order.
func (s *SelectionSet) Positions() []int {
	p := slices.Clone(s.positions)
	slices.Sort(p)
	return p
}
