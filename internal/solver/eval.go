package solver

import "math"

// routeEval is the outcome of simulating one vehicle over one stop
// sequence. Arrivals and departures are aligned with the full path,
// depot start and depot return included.
type routeEval struct {
	feasible   bool
	cost       float64
	distanceKm float64
	timeMin    float64
	arrivals   []int
	departures []int
}

// evaluate simulates vehicle v driving depot -> seq -> depot. seq holds
// customer node indices only. Feasibility covers the visit cap, the
// distance cap, and, in time-matrix mode, node windows with bounded
// waiting plus the vehicle's own operating window.
func (p *Problem) evaluate(v int, seq []int) routeEval {
	if len(seq) == 0 {
		return routeEval{feasible: true}
	}

	veh := p.Vehicles[v]
	if len(seq) > veh.MaxVisits {
		return routeEval{}
	}

	path := make([]int, 0, len(seq)+2)
	path = append(path, 0)
	path = append(path, seq...)
	path = append(path, 0)

	var ev routeEval
	for k := 1; k < len(path); k++ {
		ev.distanceKm += p.edgeDistance(path[k-1], path[k])
		ev.cost += p.edgeCost(v, path[k-1], path[k])
	}
	if ev.distanceKm > veh.MaxDistanceKm {
		return routeEval{}
	}

	start := float64(p.Cfg.DayStartMin)
	if p.UseTimeMatrix {
		start = float64(veh.StartMin)
	}

	ev.arrivals = make([]int, len(path))
	ev.departures = make([]int, len(path))
	ev.arrivals[0] = int(math.Round(start))
	ev.departures[0] = ev.arrivals[0]

	clock := start
	for k := 1; k < len(path); k++ {
		clock += p.edgeTime(path[k-1], path[k])
		node := p.Nodes[path[k]]

		if p.UseTimeMatrix && path[k] != 0 {
			if wait := float64(node.WindowStart) - clock; wait > 0 {
				if wait > float64(p.Cfg.WaitingSlackMin) {
					return routeEval{}
				}
				clock = float64(node.WindowStart)
			}
			if clock > float64(node.WindowEnd) {
				return routeEval{}
			}
		}

		ev.arrivals[k] = int(math.Round(clock))
		if path[k] != 0 {
			clock += float64(p.Cfg.ServiceTimeMin)
		}
		ev.departures[k] = int(math.Round(clock))
	}

	if p.UseTimeMatrix && clock > float64(veh.EndMin) {
		return routeEval{}
	}

	ev.timeMin = clock - start
	ev.feasible = true
	return ev
}
