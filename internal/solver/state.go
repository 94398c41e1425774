package solver

// state is a working solution: one stop sequence per vehicle plus the
// set of skipped optional nodes. Construction and improvement only ever
// hold feasible states; every mutation goes through a prior evaluate.
type state struct {
	p         *Problem
	routes    [][]int
	vehicleOf []int
	dropped   []bool
	groupOf   []int
}

func newState(p *Problem) *state {
	s := &state{
		p:         p,
		routes:    make([][]int, len(p.Vehicles)),
		vehicleOf: make([]int, len(p.Nodes)),
		dropped:   make([]bool, len(p.Nodes)),
		groupOf:   make([]int, len(p.Nodes)),
	}
	for i := range s.vehicleOf {
		s.vehicleOf[i] = -1
		s.groupOf[i] = -1
	}
	for g, members := range p.Groups {
		for _, n := range members {
			s.groupOf[n] = g
		}
	}
	return s
}

// groupVehicle returns the vehicle already hosting members of group g,
// or -1 when none are assigned yet.
func (s *state) groupVehicle(g int) int {
	for _, n := range s.p.Groups[g] {
		if v := s.vehicleOf[n]; v >= 0 {
			return v
		}
	}
	return -1
}

// allowedVehicle reports whether node n may ride on vehicle v without
// splitting its group.
func (s *state) allowedVehicle(n, v int) bool {
	g := s.groupOf[n]
	if g < 0 {
		return true
	}
	host := s.groupVehicle(g)
	return host < 0 || host == v
}

func (s *state) insert(n, v, pos int) {
	route := s.routes[v]
	route = append(route, 0)
	copy(route[pos+1:], route[pos:])
	route[pos] = n
	s.routes[v] = route
	s.vehicleOf[n] = v
	s.dropped[n] = false
}

func (s *state) remove(n int) {
	v := s.vehicleOf[n]
	if v < 0 {
		return
	}
	route := s.routes[v]
	for i, m := range route {
		if m == n {
			s.routes[v] = append(route[:i], route[i+1:]...)
			break
		}
	}
	s.vehicleOf[n] = -1
}

// pathCost sums costFn over depot -> seq -> depot.
func (s *state) pathCost(v int, seq []int, costFn func(v, i, j int) float64) float64 {
	if len(seq) == 0 {
		return 0
	}
	cost := costFn(v, 0, seq[0])
	for k := 1; k < len(seq); k++ {
		cost += costFn(v, seq[k-1], seq[k])
	}
	return cost + costFn(v, seq[len(seq)-1], 0)
}

// objective is the true minimization target: travel cost plus the fixed
// cost of every used vehicle plus the penalties of skipped nodes.
func (s *state) objective() float64 {
	total := 0.0
	for v, route := range s.routes {
		if len(route) == 0 {
			continue
		}
		total += s.pathCost(v, route, s.p.edgeCost)
		total += float64(s.p.Cfg.FixedVehicleCost)
	}
	for n, skipped := range s.dropped {
		if skipped {
			total += float64(s.p.Nodes[n].Penalty)
		}
	}
	return total
}

func (s *state) clone() *state {
	c := &state{
		p:         s.p,
		routes:    make([][]int, len(s.routes)),
		vehicleOf: append([]int(nil), s.vehicleOf...),
		dropped:   append([]bool(nil), s.dropped...),
		groupOf:   s.groupOf,
	}
	for v, route := range s.routes {
		c.routes[v] = append([]int(nil), route...)
	}
	return c
}

// insertion is the best found placement for one node.
type insertion struct {
	vehicle int
	pos     int
	delta   float64
	ok      bool
}

// bestInsertionOn scans every position of one vehicle for the cheapest
// feasible placement of node n, charging the fixed vehicle cost when
// the placement opens a fresh route.
func (s *state) bestInsertionOn(n, v int, costFn func(v, i, j int) float64) insertion {
	if !s.allowedVehicle(n, v) {
		return insertion{}
	}
	route := s.routes[v]
	base := s.pathCost(v, route, costFn)
	best := insertion{}

	candidate := make([]int, len(route)+1)
	for pos := 0; pos <= len(route); pos++ {
		copy(candidate, route[:pos])
		candidate[pos] = n
		copy(candidate[pos+1:], route[pos:])

		if !s.p.evaluate(v, candidate).feasible {
			continue
		}
		delta := s.pathCost(v, candidate, costFn) - base
		if len(route) == 0 {
			delta += float64(s.p.Cfg.FixedVehicleCost)
		}
		if !best.ok || delta < best.delta {
			best = insertion{vehicle: v, pos: pos, delta: delta, ok: true}
		}
	}
	return best
}

// bestInsertion scans every group-compatible vehicle for the cheapest
// feasible placement of node n.
func (s *state) bestInsertion(n int, costFn func(v, i, j int) float64) insertion {
	best := insertion{}
	for v := range s.p.Vehicles {
		if cand := s.bestInsertionOn(n, v, costFn); cand.ok && (!best.ok || cand.delta < best.delta) {
			best = cand
		}
	}
	return best
}

// groupInsertOn places every member on vehicle v, each at its cheapest
// feasible position in turn. When any member cannot be placed the state
// is rolled back and false is returned. The delta charges the fixed
// vehicle cost when the route was empty.
func (s *state) groupInsertOn(members []int, v int, costFn func(v, i, j int) float64) (float64, bool) {
	wasEmpty := len(s.routes[v]) == 0
	base := s.pathCost(v, s.routes[v], costFn)

	prior := make([]bool, len(members))
	for i, n := range members {
		prior[i] = s.dropped[n]
	}

	for placed, n := range members {
		best := s.bestInsertionOn(n, v, costFn)
		if !best.ok {
			for i := placed - 1; i >= 0; i-- {
				s.remove(members[i])
				s.dropped[members[i]] = prior[i]
			}
			return 0, false
		}
		s.insert(n, v, best.pos)
	}

	delta := s.pathCost(v, s.routes[v], costFn) - base
	if wasEmpty {
		delta += float64(s.p.Cfg.FixedVehicleCost)
	}
	return delta, true
}

// bestGroupVehicle finds the vehicle that can host the whole group at
// the lowest total insertion cost. The state is unchanged on return;
// trials run on clones.
func (s *state) bestGroupVehicle(members []int, costFn func(v, i, j int) float64) (int, float64, bool) {
	bestV, bestDelta, ok := -1, 0.0, false
	for v := range s.p.Vehicles {
		trial := s.clone()
		delta, placed := trial.groupInsertOn(members, v, costFn)
		if !placed {
			continue
		}
		if !ok || delta < bestDelta {
			bestV, bestDelta, ok = v, delta, true
		}
	}
	return bestV, bestDelta, ok
}
