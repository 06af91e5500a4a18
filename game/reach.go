package game

// Reachable counts the cells reachable from origin through cells for which
// blocked returns false. The origin itself is always counted, even when
// blocked would reject it.
func Reachable(grid Grid, origin Point, blocked func(Point) bool) int {
	if !grid.InBounds(origin) {
		return 0
	}
	visited := make([]bool, grid.Area())
	queue := make([]Point, 0, 64)

	visited[grid.Index(origin)] = true
	queue = append(queue, origin)
	count := 0

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		count++

		for _, d := range Directions {
			n := p.Add(d)
			if !grid.InBounds(n) {
				continue
			}
			idx := grid.Index(n)
			if visited[idx] || blocked(n) {
				continue
			}
			visited[idx] = true
			queue = append(queue, n)
		}
	}
	return count
}
