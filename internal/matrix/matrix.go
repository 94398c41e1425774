package matrix

// Matrix is a dense pairwise cost table over an ordered node id list.
// Cells carry both distance (km) and time (minutes). A cell is either
// known or unknown; an unknown off-diagonal cell means "no cached cost",
// which is not the same as a zero-cost edge.
type Matrix struct {
	IDs      []int64
	distance [][]float64
	time     [][]float64
	known    [][]bool
}

// New builds an all-unknown matrix over ids. Cells whose two endpoints
// share the same id (the diagonal, plus duplicate-id node pairs) are
// known and zero by convention.
func New(ids []int64) *Matrix {
	n := len(ids)
	m := &Matrix{
		IDs:      append([]int64(nil), ids...),
		distance: make([][]float64, n),
		time:     make([][]float64, n),
		known:    make([][]bool, n),
	}
	for i := 0; i < n; i++ {
		m.distance[i] = make([]float64, n)
		m.time[i] = make([]float64, n)
		m.known[i] = make([]bool, n)
		for j := 0; j < n; j++ {
			if ids[i] == ids[j] {
				m.known[i][j] = true
			}
		}
	}
	return m
}

// Size returns the node count.
func (m *Matrix) Size() int { return len(m.IDs) }

// SetPair fills every cell whose endpoints match the unordered id pair,
// in both directions.
func (m *Matrix) SetPair(a, b int64, km, minutes float64) {
	for i, ia := range m.IDs {
		for j, jb := range m.IDs {
			if i == j {
				continue
			}
			if (ia == a && jb == b) || (ia == b && jb == a) {
				m.distance[i][j] = km
				m.time[i][j] = minutes
				m.known[i][j] = true
			}
		}
	}
}

// Known reports whether the cell holds a real cost.
func (m *Matrix) Known(i, j int) bool { return m.known[i][j] }

// DistanceAt returns the distance cell in km.
func (m *Matrix) DistanceAt(i, j int) float64 { return m.distance[i][j] }

// TimeAt returns the time cell in minutes.
func (m *Matrix) TimeAt(i, j int) float64 { return m.time[i][j] }
