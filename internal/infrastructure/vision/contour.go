package vision

import (
	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
)

// component связная область маски
type component struct {
	label int
	count int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

// labelComponents размечает восьмисвязные области переднего плана.
// Метки начинаются с 1, 0 — фон.
func labelComponents(m *entity.Mask) ([]component, []int) {
	labels := make([]int, len(m.Pix))
	var comps []component
	next := 1

	stack := make([]int, 0, 256)
	for start := range m.Pix {
		if m.Pix[start] == entity.MaskOff || labels[start] != 0 {
			continue
		}
		x0, y0 := start%m.Width, start/m.Width
		c := component{label: next, minX: x0, minY: y0, maxX: x0, maxY: y0}
		labels[start] = next
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%m.Width, i/m.Width
			c.count++
			c.minX, c.maxX = minInt(c.minX, x), maxInt(c.maxX, x)
			c.minY, c.maxY = minInt(c.minY, y), maxInt(c.maxY, y)

			for _, d := range neighbours8 {
				nx, ny := x+d[0], y+d[1]
				if !m.In(nx, ny) {
					continue
				}
				ni := ny*m.Width + nx
				if m.Pix[ni] == entity.MaskOff || labels[ni] != 0 {
					continue
				}
				labels[ni] = next
				stack = append(stack, ni)
			}
		}

		comps = append(comps, c)
		next++
	}
	return comps, labels
}

// traceOuterContour обходит внешнюю границу области методом Мура.
// Точки в координатах центров пикселей, коллинеарные промежуточные отброшены.
func traceOuterContour(labels []int, w, h int, c component) geometry.Ring {
	is := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && labels[y*w+x] == c.label
	}

	// первая точка при построчном проходе: слева от неё гарантированно фон
	sx, sy := -1, -1
	for y := c.minY; y <= c.maxY && sx < 0; y++ {
		for x := c.minX; x <= c.maxX; x++ {
			if is(x, y) {
				sx, sy = x, y
				break
			}
		}
	}
	if sx < 0 {
		return nil
	}

	if c.count == 1 {
		return geometry.Ring{geometry.Pt(float64(sx), float64(sy))}
	}

	dirIndex := func(dx, dy int) int {
		for i, d := range neighbours8 {
			if d[0] == dx && d[1] == dy {
				return i
			}
		}
		return 0
	}

	var pts geometry.Ring
	add := func(x, y int) {
		p := geometry.Pt(float64(x), float64(y))
		n := len(pts)
		if n > 0 && pts[n-1] == p {
			return
		}
		if n >= 2 {
			a, b := pts[n-2], pts[n-1]
			if (b.X-a.X)*(p.Y-b.Y)-(b.Y-a.Y)*(p.X-b.X) == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}

	// обход по часовой стрелке; поиск начинается после предыдущей точки границы
	cx, cy := sx, sy
	bx, by := sx-1, sy
	add(cx, cy)

	firstX, firstY := -1, -1
	maxSteps := 4*c.count + 8
	for step := 0; step < maxSteps; step++ {
		start := (dirIndex(bx-cx, by-cy) + 1) % 8
		nx, ny, found := 0, 0, false
		for k := 0; k < 8; k++ {
			d := neighbours8[(start+k)%8]
			if tx, ty := cx+d[0], cy+d[1]; is(tx, ty) {
				nx, ny, found = tx, ty, true
				break
			}
		}
		if !found {
			break
		}
		if cx == sx && cy == sy {
			// повторный выход из старта тем же шагом: контур замкнут
			if step > 0 && nx == firstX && ny == firstY {
				break
			}
			if step == 0 {
				firstX, firstY = nx, ny
			}
		}
		bx, by = cx, cy
		cx, cy = nx, ny
		if cx != sx || cy != sy {
			add(cx, cy)
		}
	}

	return dropCollinear(pts)
}

// dropCollinear удаляет вершины, лежащие на прямой между соседями, с учётом замыкания
func dropCollinear(r geometry.Ring) geometry.Ring {
	out := r
	for changed := true; changed && len(out) > 3; {
		changed = false
		for i := 0; i < len(out) && len(out) > 3; i++ {
			n := len(out)
			a, b, c := out[(i-1+n)%n], out[i], out[(i+1)%n]
			if (b.X-a.X)*(c.Y-b.Y)-(b.Y-a.Y)*(c.X-b.X) == 0 {
				out = append(out[:i:i], out[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return out
}
