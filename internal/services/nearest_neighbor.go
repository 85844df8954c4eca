package services

import "math"

// Build an open path greedily, always extending to the nearest unvisited node.
//
// The algorithm minimizes the immediate edge at each step and makes no attempt
// at global optimality; twoOpt is expected to clean the result up.
func nearestNeighborOrder(dist [][]float64, start int) []int {
	n := len(dist)
	if n == 0 {
		return []int{}
	}

	visited := make([]bool, n)
	order := make([]int, 0, n)

	cur := start
	visited[cur] = true
	order = append(order, cur)

	for len(order) < n {
		next := -1
		minDist := math.Inf(1)

		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			// Strict comparison keeps the lowest index among equidistant nodes.
			if d := dist[cur][j]; next == -1 || d < minDist {
				minDist = d
				next = j
			}
		}

		visited[next] = true
		order = append(order, next)
		cur = next
	}

	return order
}
