package model

// Sufficiency is the blended estimate of whether a retrieved chunk set
// adequately answers a query. All components and the overall score are in [0,1].
type Sufficiency struct {
	Coverage          float64 `json:"coverage"`
	Redundancy        float64 `json:"redundancy"`
	CitationDensity   float64 `json:"citation_density"`
	ContradictionRate float64 `json:"contradiction_rate"`
	OverallScore      float64 `json:"overall_score"`
}

// IsSufficient reports whether the overall score meets the threshold
func (s Sufficiency) IsSufficient(threshold float64) bool {
	return s.OverallScore >= threshold
}
