package vision

import (
	"math"

	"roof-measure/internal/domain/geometry"
)

// ConnectedRing полигон в связной крыше. Если Snapped, полигон сдвинут на Offset
// к соседу. Bridge задаёт полосу-перемычку к соседу, nil если она не понадобилась.
type ConnectedRing struct {
	Ring    geometry.Ring
	Snapped bool
	Offset  geometry.Point
	Bridge  geometry.Ring
}

// ConnectivityRepair сводит полигоны в одну связную крышу
type ConnectivityRepair struct {
	SnapDistance   float64
	BridgeDistance float64
	MaxThickness   float64
	ThicknessRatio float64 // толщина перемычки как доля зазора
}

// NewConnectivityRepair создаёт ремонт связности с порогами по умолчанию
func NewConnectivityRepair() *ConnectivityRepair {
	return &ConnectivityRepair{SnapDistance: 14, BridgeDistance: 60, MaxThickness: 12, ThicknessRatio: 0.28}
}

// Repair начинает с первого полигона и по проходам присоединяет остальные:
// близкие приваривает сдвигом, средние соединяет перемычкой. Полигоны, не
// присоединённые ни в одном проходе, отбрасываются. Входной срез не меняется.
func (c *ConnectivityRepair) Repair(rings []geometry.Ring) []ConnectedRing {
	if len(rings) == 0 {
		return nil
	}

	connected := []ConnectedRing{{Ring: rings[0].Clone()}}
	remaining := make([]geometry.Ring, 0, len(rings)-1)
	for _, r := range rings[1:] {
		if len(r) >= 3 {
			remaining = append(remaining, r)
		}
	}

	for len(remaining) > 0 {
		var left []geometry.Ring
		for _, r := range remaining {
			gap, from, to := nearestMidpoints(r, connected)
			switch {
			case gap <= c.SnapDistance:
				offset := to.Sub(from)
				connected = append(connected, ConnectedRing{Ring: r.Translate(offset), Snapped: true, Offset: offset})
			case gap <= c.BridgeDistance:
				connected = append(connected, ConnectedRing{Ring: r.Clone(), Bridge: c.bridge(from, to, gap)})
			default:
				left = append(left, r)
			}
		}
		if len(left) == len(remaining) {
			break
		}
		remaining = left
	}
	return connected
}

// bridge четырёхугольная полоса между двумя серединами рёбер
func (c *ConnectivityRepair) bridge(from, to geometry.Point, gap float64) geometry.Ring {
	half := math.Min(c.MaxThickness, c.ThicknessRatio*gap) / 2
	u := geometry.Segment{A: from, B: to}.Direction()
	n := geometry.Pt(-u.Y, u.X).Scale(half)
	return geometry.Ring{from.Add(n), to.Add(n), to.Sub(n), from.Sub(n)}
}

// nearestMidpoints ближайшая пара середин рёбер между r и присоединёнными полигонами
func nearestMidpoints(r geometry.Ring, connected []ConnectedRing) (float64, geometry.Point, geometry.Point) {
	best := math.Inf(1)
	var from, to geometry.Point
	for _, e := range r.Edges() {
		m := e.Midpoint()
		for _, cr := range connected {
			for _, ce := range cr.Ring.Edges() {
				if d := m.Dist(ce.Midpoint()); d < best {
					best, from, to = d, m, ce.Midpoint()
				}
			}
		}
	}
	return best, from, to
}
