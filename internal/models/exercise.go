package models

// Exercise is one catalog record, resolved by slug id. Cues and swap
// candidates feed the UI; the safety flags gate advisories like
// binder-safety checkpoints.
type Exercise struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Cues             []string `json:"cues,omitempty"`
	SwapCandidates   []string `json:"swap_candidates,omitempty"`
	Regressions      []string `json:"regressions,omitempty"`
	BinderAware      bool     `json:"binder_aware"`
	HeavyBindingSafe bool     `json:"heavy_binding_safe"`
	PelvicFloorSafe  bool     `json:"pelvic_floor_safe"`
}
