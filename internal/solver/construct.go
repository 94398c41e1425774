package solver

import (
	"fmt"
	"sort"
)

// unit is one insertion decision: a single ungrouped node, or a whole
// retained group. Groups are all-or-none, every member rides the same
// vehicle or every member is skipped, so a unit's drop penalty is the
// sum over its members and it is mandatory as soon as one member is.
type unit struct {
	members   []int
	penalty   int64
	mandatory bool
}

func buildUnits(p *Problem) []unit {
	grouped := make([]bool, len(p.Nodes))
	units := make([]unit, 0, len(p.Nodes))

	for _, members := range p.Groups {
		u := unit{members: append([]int(nil), members...)}
		for _, n := range members {
			grouped[n] = true
			u.penalty += p.Nodes[n].Penalty
			if p.Nodes[n].Mandatory() {
				u.mandatory = true
			}
		}
		units = append(units, u)
	}
	for n := 1; n < len(p.Nodes); n++ {
		if grouped[n] {
			continue
		}
		units = append(units, unit{
			members:   []int{n},
			penalty:   p.Nodes[n].Penalty,
			mandatory: p.Nodes[n].Mandatory(),
		})
	}
	return units
}

// construct builds the initial solution by cheapest-arc insertion:
// mandatory units first, then the rest in descending penalty order,
// each placed where it adds the least cost. Optional units whose
// cheapest placement costs more than their skip penalty are dropped up
// front. A mandatory unit with no feasible placement makes the whole
// instance infeasible.
func construct(p *Problem) (*state, error) {
	s := newState(p)

	units := buildUnits(p)
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].mandatory != units[j].mandatory {
			return units[i].mandatory
		}
		return units[i].penalty > units[j].penalty
	})

	for _, u := range units {
		if len(u.members) == 1 {
			if err := s.constructSingle(u); err != nil {
				return nil, err
			}
			continue
		}
		if err := s.constructGroup(u); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *state) constructSingle(u unit) error {
	n := u.members[0]
	best := s.bestInsertion(n, s.p.edgeCost)

	if u.mandatory {
		if !best.ok {
			return fmt.Errorf("%w: order %d has no feasible placement", ErrInfeasible, derefOrder(s.p.Nodes[n]))
		}
		s.insert(n, best.vehicle, best.pos)
		return nil
	}

	if !best.ok || best.delta >= float64(u.penalty) {
		s.dropped[n] = true
		return nil
	}
	s.insert(n, best.vehicle, best.pos)
	return nil
}

func (s *state) constructGroup(u unit) error {
	v, delta, ok := s.bestGroupVehicle(u.members, s.p.edgeCost)
	if ok && (u.mandatory || delta < float64(u.penalty)) {
		if _, placed := s.groupInsertOn(u.members, v, s.p.edgeCost); placed {
			return nil
		}
	}

	if u.mandatory {
		return fmt.Errorf("%w: order group %v has no feasible vehicle", ErrInfeasible, groupOrderIDs(s.p, u.members))
	}
	for _, n := range u.members {
		s.dropped[n] = true
	}
	return nil
}

func derefOrder(n Node) int64 {
	if n.OrderID != nil {
		return *n.OrderID
	}
	return 0
}

func groupOrderIDs(p *Problem, members []int) []int64 {
	ids := make([]int64, 0, len(members))
	for _, n := range members {
		if p.Nodes[n].OrderID != nil {
			ids = append(ids, *p.Nodes[n].OrderID)
		}
	}
	return ids
}
