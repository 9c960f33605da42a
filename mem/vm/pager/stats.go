package pager

// Stats are the counters accumulated over a run.
type Stats struct {
	TotalAccesses uint64 `json:"total_accesses" msgpack:"total_accesses"`
	Reads         uint64 `json:"reads" msgpack:"reads"`
	Writes        uint64 `json:"writes" msgpack:"writes"`
	Hits          uint64 `json:"hits" msgpack:"hits"`
	Faults        uint64 `json:"faults" msgpack:"faults"`
	ColdFaults    uint64 `json:"cold_faults" msgpack:"cold_faults"`
	Evictions     uint64 `json:"evictions" msgpack:"evictions"`
	Writebacks    uint64 `json:"writebacks" msgpack:"writebacks"`
}

// HitRatio returns the fraction of accesses served without a fault.
func (s Stats) HitRatio() float64 {
	if s.TotalAccesses == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.TotalAccesses)
}

// A RunReport is what a finished run hands to the presentation layer.
type RunReport struct {
	Config    Config `json:"config" msgpack:"config"`
	NumFrames int    `json:"num_frames" msgpack:"num_frames"`
	Stats     Stats  `json:"stats" msgpack:"stats"`
}
