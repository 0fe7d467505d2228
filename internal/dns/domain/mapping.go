package domain

// FeatureMapping is one entry of the cross-dialect knowledge base: a CoreDNS
// plugin and its Unbound counterpart (or the reverse). An empty name on
// either side means no equivalent exists in that dialect.
//
// Mapping tables are immutable reference data, built once and shared
// read-only across all migration requests.
type FeatureMapping struct {
	CoreDNSPlugin  string `json:"coredns_plugin,omitempty"`
	UnboundFeature string `json:"unbound_feature,omitempty"`
	Notes          string `json:"notes"`
	Supported      bool   `json:"supported"`
	RequiresManual bool   `json:"requires_manual,omitempty"`
}
