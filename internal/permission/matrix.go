package permission

import (
	"math"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
)

// Matrix is the dense in-memory relation of which department may survey
// which. Each known department id gets a fixed position; cells[i][j] says
// whether ids[i] may survey ids[j]. The diagonal is always false.
type Matrix struct {
	ids   []int64
	index map[int64]int
	cells [][]bool
}

func NewMatrix() *Matrix {
	return &Matrix{index: map[int64]int{}}
}

// Initialize rebuilds the matrix for ids with every off-diagonal pair
// allowed. Used when the department set changes, before the authoritative
// state has been loaded.
func (m *Matrix) Initialize(ids []int64) {
	m.rebuild(ids, true)
}

// Reconcile rebuilds the matrix for ids with every pair disallowed, then
// allows exactly the listed pairs. Self pairs and unknown ids are ignored.
func (m *Matrix) Reconcile(pairs []Pair, ids []int64) {
	m.rebuild(ids, false)
	for _, p := range pairs {
		if p.IsSelf() {
			continue
		}
		i, j, ok := m.positions(p.FromDeptID, p.ToDeptID)
		if !ok {
			continue
		}
		m.cells[i][j] = true
	}
}

func (m *Matrix) rebuild(ids []int64, offDiagonal bool) {
	m.ids = make([]int64, 0, len(ids))
	m.index = make(map[int64]int, len(ids))
	for _, id := range ids {
		if _, dup := m.index[id]; dup {
			continue
		}
		m.index[id] = len(m.ids)
		m.ids = append(m.ids, id)
	}

	n := len(m.ids)
	m.cells = make([][]bool, n)
	for i := range m.cells {
		row := make([]bool, n)
		for j := range row {
			row[j] = offDiagonal && i != j
		}
		m.cells[i] = row
	}
}

// Toggle flips the (from, to) cell. Self pairs and unknown ids are ignored;
// the return value reports whether anything changed.
func (m *Matrix) Toggle(from, to int64) bool {
	if from == to {
		return false
	}
	i, j, ok := m.positions(from, to)
	if !ok {
		return false
	}
	m.cells[i][j] = !m.cells[i][j]
	return true
}

// SetAll sets every (deptID, other) cell to allowed.
func (m *Matrix) SetAll(deptID int64, allowed bool) error {
	i, ok := m.index[deptID]
	if !ok {
		return apperrors.ErrUnknownDepartment
	}
	for j := range m.cells[i] {
		if j == i {
			continue
		}
		m.cells[i][j] = allowed
	}
	return nil
}

func (m *Matrix) Allowed(from, to int64) bool {
	if from == to {
		return false
	}
	i, j, ok := m.positions(from, to)
	if !ok {
		return false
	}
	return m.cells[i][j]
}

// ToAllowedPairs is the sparse wire form: every allowed pair, ordered by the
// position of the source and then the target department.
func (m *Matrix) ToAllowedPairs() []Pair {
	pairs := make([]Pair, 0)
	for i, row := range m.cells {
		for j, allowed := range row {
			if allowed && i != j {
				pairs = append(pairs, Pair{FromDeptID: m.ids[i], ToDeptID: m.ids[j]})
			}
		}
	}
	return pairs
}

func (m *Matrix) DepartmentIDs() []int64 {
	out := make([]int64, len(m.ids))
	copy(out, m.ids)
	return out
}

func (m *Matrix) Len() int {
	return len(m.ids)
}

// SameDepartments reports whether ids is exactly the current department
// set, ignoring order.
func (m *Matrix) SameDepartments(ids []int64) bool {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := m.index[id]; !ok {
			return false
		}
		seen[id] = struct{}{}
	}
	return len(seen) == len(m.ids)
}

// Total is the number of toggleable cells, n*(n-1).
func (m *Matrix) Total() int {
	n := len(m.ids)
	if n < 2 {
		return 0
	}
	return n * (n - 1)
}

func (m *Matrix) CountAllowed() int {
	count := 0
	for i, row := range m.cells {
		for j, allowed := range row {
			if allowed && i != j {
				count++
			}
		}
	}
	return count
}

func (m *Matrix) CountRestricted() int {
	return m.Total() - m.CountAllowed()
}

// ProgressRate is the allowed share of toggleable cells as a rounded
// percentage; 0 when there is nothing to toggle.
func (m *Matrix) ProgressRate() int {
	total := m.Total()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(m.CountAllowed()) / float64(total) * 100))
}

// Clone returns an independent copy.
func (m *Matrix) Clone() *Matrix {
	cp := &Matrix{
		ids:   m.DepartmentIDs(),
		index: make(map[int64]int, len(m.index)),
		cells: make([][]bool, len(m.cells)),
	}
	for id, pos := range m.index {
		cp.index[id] = pos
	}
	for i, row := range m.cells {
		cp.cells[i] = append([]bool(nil), row...)
	}
	return cp
}

func (m *Matrix) positions(from, to int64) (int, int, bool) {
	i, ok := m.index[from]
	if !ok {
		return 0, 0, false
	}
	j, ok := m.index[to]
	if !ok {
		return 0, 0, false
	}
	return i, j, true
}
