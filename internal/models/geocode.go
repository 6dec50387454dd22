package models

// GeocodeResult is the outcome of one location resolution attempt. A result
// without a district code but with a label is degraded, not failed: the
// caller can still show the address but cannot scope a trade query with it.
type GeocodeResult struct {
	DistrictCode string `json:"district_code,omitempty"`
	Label        string `json:"label,omitempty"`
	Source       string `json:"source"`
}

// Degraded reports whether the resolution produced a display label only.
func (g GeocodeResult) Degraded() bool {
	return g.DistrictCode == ""
}
