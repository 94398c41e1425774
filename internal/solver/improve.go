package solver

import (
	"context"
	"time"
)

const (
	improveEps = 1e-9

	// glsAlpha scales arc penalties relative to the average arc cost.
	glsAlpha = 0.3

	// maxStagnantRounds stops the search early when penalization keeps
	// failing to uncover a better solution, so small instances do not
	// spin out the full wall-clock budget.
	maxStagnantRounds = 25
)

// guided runs a guided-local-search refinement over an initial feasible
// state: local search to a local optimum on a penalty-augmented cost,
// then penalize the highest-utility arcs of that optimum and repeat,
// keeping the best true-objective solution seen.
type guided struct {
	s      *state
	lambda float64
	pen    map[[2]int]int
}

func arcKey(i, j int) [2]int {
	if j < i {
		i, j = j, i
	}
	return [2]int{i, j}
}

func (g *guided) augCost(v, i, j int) float64 {
	return g.s.p.edgeCost(v, i, j) + g.lambda*float64(g.pen[arcKey(i, j)])
}

func (g *guided) augObjective() float64 {
	total := 0.0
	for v, route := range g.s.routes {
		if len(route) == 0 {
			continue
		}
		total += g.s.pathCost(v, route, g.augCost)
		total += float64(g.s.p.Cfg.FixedVehicleCost)
	}
	for n, skipped := range g.s.dropped {
		if skipped {
			total += float64(g.s.p.Nodes[n].Penalty)
		}
	}
	return total
}

// improve refines s until the deadline, the context, or stagnation cuts
// the search off. The returned state is the best one found; s itself is
// consumed.
func improve(ctx context.Context, s *state, deadline time.Time) *state {
	g := &guided{s: s, pen: make(map[[2]int]int)}
	g.lambda = glsAlpha * averageArcCost(s)

	best := s.clone()
	bestObj := s.objective()

	stagnant := 0
	for stagnant < maxStagnantRounds {
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			break
		}

		g.localSearch(deadline)

		if obj := s.objective(); obj < bestObj-improveEps {
			best = s.clone()
			bestObj = obj
			stagnant = 0
		} else {
			stagnant++
		}

		g.penalizeArcs()
	}

	return best
}

func averageArcCost(s *state) float64 {
	total, arcs := 0.0, 0
	for v, route := range s.routes {
		if len(route) == 0 {
			continue
		}
		total += s.pathCost(v, route, s.p.edgeCost)
		arcs += len(route) + 1
	}
	if arcs == 0 {
		return 1
	}
	return total / float64(arcs)
}

// localSearch iterates move passes to a local optimum of the augmented
// objective. Reinsertion of dropped nodes runs on the true objective so
// penalties never talk a skippable node back out of the plan falsely.
func (g *guided) localSearch(deadline time.Time) {
	for time.Now().Before(deadline) {
		improved := false
		if g.twoOptPass() {
			improved = true
		}
		if g.relocatePass() {
			improved = true
		}
		if g.swapPass() {
			improved = true
		}
		if g.reinsertPass() {
			improved = true
		}
		if g.openRoutePass() {
			improved = true
		}
		if !improved {
			return
		}
	}
}

// twoOptPass reverses in-route segments. Reversal never moves a node
// between vehicles, so group cohesion is untouched.
func (g *guided) twoOptPass() bool {
	s := g.s
	improved := false
	for v, route := range s.routes {
		if len(route) < 2 {
			continue
		}
		for i := 0; i < len(route)-1; i++ {
			for j := i + 1; j < len(route); j++ {
				candidate := append([]int(nil), route...)
				for a, b := i, j; a < b; a, b = a+1, b-1 {
					candidate[a], candidate[b] = candidate[b], candidate[a]
				}
				if s.pathCost(v, candidate, g.augCost) >= s.pathCost(v, route, g.augCost)-improveEps {
					continue
				}
				if !s.p.evaluate(v, candidate).feasible {
					continue
				}
				copy(route, candidate)
				improved = true
			}
		}
	}
	return improved
}

// relocatePass moves one node at a time to its cheapest placement
// anywhere in the solution, undoing moves that do not pay off.
func (g *guided) relocatePass() bool {
	s := g.s
	improved := false
	for n := 1; n < len(s.p.Nodes); n++ {
		v := s.vehicleOf[n]
		if v < 0 {
			continue
		}

		before := g.augObjective()
		oldPos := 0
		for i, m := range s.routes[v] {
			if m == n {
				oldPos = i
				break
			}
		}

		s.remove(n)
		best := s.bestInsertion(n, g.augCost)
		if !best.ok {
			s.insert(n, v, oldPos)
			continue
		}
		s.insert(n, best.vehicle, best.pos)
		if g.augObjective() < before-improveEps {
			improved = true
			continue
		}
		s.remove(n)
		s.insert(n, v, oldPos)
	}
	return improved
}

// swapPass exchanges two group-free nodes between different vehicles.
func (g *guided) swapPass() bool {
	s := g.s
	improved := false
	for n1 := 1; n1 < len(s.p.Nodes); n1++ {
		v1 := s.vehicleOf[n1]
		if v1 < 0 || s.groupOf[n1] >= 0 {
			continue
		}
		for n2 := n1 + 1; n2 < len(s.p.Nodes); n2++ {
			v2 := s.vehicleOf[n2]
			if v2 < 0 || v2 == v1 || s.groupOf[n2] >= 0 {
				continue
			}

			r1 := swapped(s.routes[v1], n1, n2)
			r2 := swapped(s.routes[v2], n2, n1)

			beforeCost := s.pathCost(v1, s.routes[v1], g.augCost) + s.pathCost(v2, s.routes[v2], g.augCost)
			afterCost := s.pathCost(v1, r1, g.augCost) + s.pathCost(v2, r2, g.augCost)
			if afterCost >= beforeCost-improveEps {
				continue
			}
			if !s.p.evaluate(v1, r1).feasible || !s.p.evaluate(v2, r2).feasible {
				continue
			}

			s.routes[v1], s.routes[v2] = r1, r2
			s.vehicleOf[n1], s.vehicleOf[n2] = v2, v1
			improved = true
		}
	}
	return improved
}

func swapped(route []int, out, in int) []int {
	r := append([]int(nil), route...)
	for i, n := range r {
		if n == out {
			r[i] = in
		}
	}
	return r
}

// reinsertPass gives dropped optional units another chance once routes
// have been reshaped, judged on the true objective. A dropped group
// only comes back whole, onto a single vehicle.
func (g *guided) reinsertPass() bool {
	s := g.s
	improved := false
	for n := 1; n < len(s.p.Nodes); n++ {
		if !s.dropped[n] || s.groupOf[n] >= 0 {
			continue
		}
		best := s.bestInsertion(n, s.p.edgeCost)
		if !best.ok || best.delta >= float64(s.p.Nodes[n].Penalty) {
			continue
		}
		s.insert(n, best.vehicle, best.pos)
		improved = true
	}

	for _, members := range s.p.Groups {
		if !allDropped(s, members) {
			continue
		}
		penalty := int64(0)
		for _, n := range members {
			penalty += s.p.Nodes[n].Penalty
		}
		v, delta, ok := s.bestGroupVehicle(members, s.p.edgeCost)
		if !ok || delta >= float64(penalty) {
			continue
		}
		if _, placed := s.groupInsertOn(members, v, s.p.edgeCost); placed {
			improved = true
		}
	}
	return improved
}

func allDropped(s *state, members []int) bool {
	for _, n := range members {
		if !s.dropped[n] {
			return false
		}
	}
	return true
}

// openRoutePass bundles dropped ungrouped nodes onto one still-empty
// vehicle. One optional node rarely justifies the fixed vehicle cost on
// its own, but a whole batch of skip penalties can; judging the bundle
// as a unit is what lets a fresh route open at all. Dropped groups are
// left to reinsertPass, which revives them whole.
func (g *guided) openRoutePass() bool {
	s := g.s
	v := -1
	for i, route := range s.routes {
		if len(route) == 0 {
			v = i
			break
		}
	}
	if v < 0 {
		return false
	}

	var seq []int
	taken := make(map[int]bool)
	saved := 0.0

	for {
		base := s.pathCost(v, seq, s.p.edgeCost)
		bestN, bestPos := -1, 0
		bestDelta := 0.0

		for n := 1; n < len(s.p.Nodes); n++ {
			if !s.dropped[n] || taken[n] || s.groupOf[n] >= 0 {
				continue
			}
			for pos := 0; pos <= len(seq); pos++ {
				candidate := make([]int, 0, len(seq)+1)
				candidate = append(candidate, seq[:pos]...)
				candidate = append(candidate, n)
				candidate = append(candidate, seq[pos:]...)
				if !s.p.evaluate(v, candidate).feasible {
					continue
				}
				delta := s.pathCost(v, candidate, s.p.edgeCost) - base
				if delta >= float64(s.p.Nodes[n].Penalty) {
					continue
				}
				if bestN < 0 || delta < bestDelta {
					bestN, bestPos, bestDelta = n, pos, delta
				}
			}
		}
		if bestN < 0 {
			break
		}
		next := make([]int, 0, len(seq)+1)
		next = append(next, seq[:bestPos]...)
		next = append(next, bestN)
		next = append(next, seq[bestPos:]...)
		seq = next
		taken[bestN] = true
		saved += float64(s.p.Nodes[bestN].Penalty)
	}

	if len(seq) == 0 {
		return false
	}
	cost := s.pathCost(v, seq, s.p.edgeCost) + float64(s.p.Cfg.FixedVehicleCost)
	if saved <= cost+improveEps {
		return false
	}

	s.routes[v] = seq
	for _, n := range seq {
		s.vehicleOf[n] = v
		s.dropped[n] = false
	}
	return true
}

// penalizeArcs bumps the penalty of the currently-used arcs with the
// highest utility, steering the next local search away from them.
func (g *guided) penalizeArcs() {
	s := g.s
	maxUtil := 0.0
	var top [][2]int

	for v, route := range s.routes {
		if len(route) == 0 {
			continue
		}
		path := make([]int, 0, len(route)+2)
		path = append(path, 0)
		path = append(path, route...)
		path = append(path, 0)

		for k := 1; k < len(path); k++ {
			key := arcKey(path[k-1], path[k])
			util := s.p.edgeCost(v, path[k-1], path[k]) / float64(1+g.pen[key])
			switch {
			case util > maxUtil+improveEps:
				maxUtil = util
				top = top[:0]
				top = append(top, key)
			case util > maxUtil-improveEps:
				top = append(top, key)
			}
		}
	}

	for _, key := range top {
		g.pen[key]++
	}
}
