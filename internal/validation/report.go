package validation

// Report groups validation findings for one document by check category.
// Structure and timeline issues make a document structurally invalid;
// consistency findings and suspicious matches are warnings that are always
// surfaced but never block extraction.
type Report struct {
	VideoID     string   `json:"video_id"`
	Structure   []string `json:"structure,omitempty"`
	Timelines   []string `json:"timelines,omitempty"`
	Consistency []string `json:"consistency,omitempty"`
	Suspicious  []Match  `json:"suspicious,omitempty"`
	Extraction  []string `json:"extraction,omitempty"`
}

// StructurallyValid reports whether the document passed the structure and
// timeline-shape checks.
func (r *Report) StructurallyValid() bool {
	return len(r.Structure) == 0 && len(r.Timelines) == 0
}

// Clean reports whether no category produced any finding.
func (r *Report) Clean() bool {
	return r.StructurallyValid() &&
		len(r.Consistency) == 0 &&
		len(r.Suspicious) == 0 &&
		len(r.Extraction) == 0
}

// IssueCount returns the total number of findings across all categories.
func (r *Report) IssueCount() int {
	return len(r.Structure) + len(r.Timelines) + len(r.Consistency) + len(r.Suspicious) + len(r.Extraction)
}

// Issues flattens every finding into human-readable strings, grouped in
// category order: structure, timelines, consistency, suspicious, extraction.
func (r *Report) Issues() []string {
	issues := make([]string, 0, r.IssueCount())
	issues = append(issues, r.Structure...)
	issues = append(issues, r.Timelines...)
	issues = append(issues, r.Consistency...)
	for _, match := range r.Suspicious {
		issues = append(issues, match.String())
	}
	issues = append(issues, r.Extraction...)
	return issues
}

// Summary aggregates pass/fail counts across a batch of reports.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Summarize counts reports whose every category is empty as passed, matching
// the batch integrity runner's strictest reading.
func Summarize(reports []*Report) Summary {
	summary := Summary{Total: len(reports)}
	for _, report := range reports {
		if report.Clean() {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return summary
}
