package toposort

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// CycleError lists the nodes that could not be ordered: those on a
// dependency cycle and everything reachable from one.
type CycleError struct {
	Label string
	Nodes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected in %s dependencies involving: %s", e.Label, strings.Join(e.Nodes, ", "))
}

// TopologicalSort runs Kahn's algorithm on the given dependency graph and
// returns the nodes with every dependency before its dependents. Ties are
// broken by name, so the result does not depend on map iteration.
func TopologicalSort(graph map[string]map[string]bool, label string) ([]string, error) {
	inDegree := make(map[string]int)
	for _, node := range slices.Sorted(maps.Keys(graph)) {
		if _, ok := inDegree[node]; !ok {
			inDegree[node] = 0
		}
		for _, dep := range slices.Sorted(maps.Keys(graph[node])) {
			if _, exists := graph[dep]; !exists {
				return nil, fmt.Errorf("%s '%s' depends on undefined %s '%s'", label, node, label, dep)
			}
			inDegree[dep]++
		}
	}
	var queue []string
	for node, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, node)
		}
	}
	slices.Sort(queue)
	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)
		var ready []string
		for dep := range graph[node] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		slices.Sort(ready)
		queue = append(queue, ready...)
	}
	if len(result) != len(graph) {
		processed := make(map[string]bool, len(result))
		for _, v := range result {
			processed[v] = true
		}
		var unprocessed []string
		for node := range graph {
			if !processed[node] {
				unprocessed = append(unprocessed, node)
			}
		}
		slices.Sort(unprocessed)
		return nil, &CycleError{Label: label, Nodes: unprocessed}
	}
	slices.Reverse(result)
	return result, nil
}
