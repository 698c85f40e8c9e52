package domain

// Stats are the rolling counters shown next to the map.
type Stats struct {
	Total  int `json:"total"`
	Last24 int `json:"last_24h"`
}

// ComputeStats derives the counters from the current report list.
// The 24-hour window is measured against "now" at call time, so the same
// list can yield different Last24 values on successive renders.
func ComputeStats(reports []Report) Stats {
	now := NowMillis()
	s := Stats{Total: len(reports)}
	for _, r := range reports {
		if now-r.Timestamp < dayMillis {
			s.Last24++
		}
	}
	return s
}
