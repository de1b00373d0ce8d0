package board

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// ShortestDistance returns the breadth-first hop count from start to end,
// moving orthogonally through open cells. The second result is false when
// the end cannot be reached.
func (b *Board) ShortestDistance() (int, bool) {
	dist := make([][]int, b.Rows())
	for i := range dist {
		dist[i] = make([]int, b.Cols())
		for j := range dist[i] {
			dist[i][j] = -1
		}
	}

	dist[b.start.Row][b.start.Col] = 0
	queue := []Position{b.start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range current.Neighbors() {
			if next == b.end {
				return dist[current.Row][current.Col] + 1, true
			}
			if !b.IsOpen(next.Row, next.Col) || dist[next.Row][next.Col] != -1 {
				continue
			}
			dist[next.Row][next.Col] = dist[current.Row][current.Col] + 1
			queue = append(queue, next)
		}
	}

	return 0, false
}

// Reachable returns every open cell connected to the start, the start itself excluded
func (b *Board) Reachable() map[Position]bool {
	visited := map[Position]bool{b.start: true}
	queue := []Position{b.start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range current.Neighbors() {
			if visited[next] || !b.IsOpen(next.Row, next.Col) {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	delete(visited, b.start)
	return visited
}
