package domain

// ProbeSource identifies which step of the discovery walk produced an outcome.
type ProbeSource string

const (
	SourceKnown  ProbeSource = "known"
	SourceRoot   ProbeSource = "root"
	SourceFolder ProbeSource = "folder"
)

// ProbeOutcome records the result of one service probe during discovery.
// Discovery never aborts on a single failing probe; instead the failure is
// recorded here so callers and tests can inspect partial-failure counts.
type ProbeOutcome struct {
	Name   string      `json:"name"`
	Source ProbeSource `json:"source"`
	Folder string      `json:"folder,omitempty"`
	OK     bool        `json:"ok"`
	Reason string      `json:"reason,omitempty"`
}

// DiscoveryReport accumulates per-item outcomes for one discovery pass.
type DiscoveryReport struct {
	Outcomes []ProbeOutcome `json:"outcomes"`
}

// Success records a probe that yielded a dataset.
func (r *DiscoveryReport) Success(name string, source ProbeSource, folder string) {
	r.Outcomes = append(r.Outcomes, ProbeOutcome{Name: name, Source: source, Folder: folder, OK: true})
}

// Skip records a probe that failed and was skipped.
func (r *DiscoveryReport) Skip(name string, source ProbeSource, folder, reason string) {
	r.Outcomes = append(r.Outcomes, ProbeOutcome{Name: name, Source: source, Folder: folder, Reason: reason})
}

// Succeeded returns the number of probes that yielded a dataset.
func (r *DiscoveryReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK {
			n++
		}
	}
	return n
}

// Skipped returns the number of probes that failed and were skipped.
func (r *DiscoveryReport) Skipped() int {
	return len(r.Outcomes) - r.Succeeded()
}
