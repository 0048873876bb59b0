package outputcheck

// Check is one named validation with its outcome.
type Check struct {
	Name    string
	Passed  bool
	Message string
}

// Report aggregates the checks run against one artifact. A report fails
// when any required check fails; informational checks never flip it.
type Report struct {
	Kind   string
	Passed bool
	Checks []Check
}

func newReport(kind string) *Report {
	return &Report{Kind: kind, Passed: true}
}

// add records a required check; a failure fails the report.
func (r *Report) add(name string, passed bool, message string) {
	r.Checks = append(r.Checks, Check{Name: name, Passed: passed, Message: message})
	if !passed {
		r.Passed = false
	}
}

// note records an informational check that cannot fail the report.
func (r *Report) note(name string, message string) {
	r.Checks = append(r.Checks, Check{Name: name, Passed: true, Message: message})
}

// Failures returns the checks that did not pass.
func (r *Report) Failures() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}
