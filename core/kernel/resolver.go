package kernel

import "sort"

// Resolve computes an initialization order over the given manifests such
// that every module appears after all of its dependencies. The sort is
// deterministic: ties between independent modules are broken lexically, so
// boot order is reproducible across runs.
//
// Resolve is a pure function of its input; it performs no I/O and mutates
// nothing. It fails with MissingDependencyError when a manifest names an
// unregistered module and with CyclicDependencyError when the graph has a
// cycle, naming every module in the cycle.
func Resolve(manifests map[string]Manifest) ([]string, error) {
	// Validate edges before sorting so missing names are reported with the
	// declaring module attached. Modules are checked in name order so the
	// same problem is reported on every run.
	names := make([]string, 0, len(manifests))
	for name := range manifests {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		manifest := manifests[name]
		deps := append([]string(nil), manifest.DependsOn...)
		sort.Strings(deps)
		for _, dep := range deps {
			if _, ok := manifests[dep]; !ok {
				return nil, &MissingDependencyError{Module: name, Dependency: dep}
			}
		}
	}

	// Kahn's algorithm with a lexically ordered ready set.
	indegree := make(map[string]int, len(manifests))
	dependents := make(map[string][]string, len(manifests))
	for name, manifest := range manifests {
		if _, ok := indegree[name]; !ok {
			indegree[name] = 0
		}
		for _, dep := range manifest.DependsOn {
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(manifests))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		released := false
		for _, dependent := range dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
				released = true
			}
		}
		if released {
			sort.Strings(ready)
		}
	}

	if len(order) != len(manifests) {
		// Whatever Kahn could not place sits on or behind a cycle; extract
		// the actual cycle members so the error names only them.
		return nil, &CyclicDependencyError{Modules: findCycle(manifests, indegree)}
	}

	return order, nil
}

// findCycle walks the unplaced subgraph and returns the members of the
// first cycle encountered, sorted by name.
func findCycle(manifests map[string]Manifest, indegree map[string]int) []string {
	unplaced := make(map[string]bool)
	for name, deg := range indegree {
		if deg > 0 {
			unplaced[name] = true
		}
	}

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int)
	var cycle []string

	var visit func(name string, path []string) bool
	visit = func(name string, path []string) bool {
		state[name] = visiting
		path = append(path, name)

		for _, dep := range manifests[name].DependsOn {
			if !unplaced[dep] {
				continue
			}
			switch state[dep] {
			case visiting:
				// Found the back edge; the cycle is the path suffix
				// starting at dep.
				for i, member := range path {
					if member == dep {
						cycle = append(cycle, path[i:]...)
						return true
					}
				}
			case done:
				continue
			default:
				if visit(dep, path) {
					return true
				}
			}
		}

		state[name] = done
		return false
	}

	names := make([]string, 0, len(unplaced))
	for name := range unplaced {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if state[name] == 0 && visit(name, nil) {
			break
		}
	}

	sort.Strings(cycle)
	return cycle
}
