package grammar

// findFollowSets propagates follow sets along the forward links until no set grows. A config is
// revisited only when one of its sources changed it, so the cycles in the link graph are
// harmless.
func findFollowSets(a *Automaton) {
	for _, st := range a.States {
		for _, c := range st.Closure {
			c.status = configIncomplete
		}
	}

	passes := 0
	for progress := true; progress; {
		progress = false
		passes++
		for _, st := range a.States {
			for _, c := range st.Closure {
				if c.status == configComplete {
					continue
				}
				for _, dst := range c.fwd {
					if union(dst.Follow, c.Follow) {
						dst.status = configIncomplete
						progress = true
					}
				}
				c.status = configComplete
			}
		}
	}

	tracer().Debugf("follow sets converged after %v passes", passes)
}
