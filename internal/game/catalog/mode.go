package catalog

// TravelMode is a named movement style. SpeedMod is added to the base move
// cost; StealthDCMod is added to the destination biome's stealth DC.
// TrailType, when set, names the trail laid behind the party while moving in
// this mode.
type TravelMode struct {
	ID           string  `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	SpeedMod     float64 `yaml:"speed_mod" json:"speed_mod"`
	StealthDCMod float64 `yaml:"stealth_dc_mod" json:"stealth_dc_mod"`
	TrailType    string  `yaml:"trail_type" json:"trail_type"`
	Description  string  `yaml:"description" json:"description"`
}

// Key implements Entry.
func (m TravelMode) Key() string { return m.ID }

// LaysTrail reports whether moving in this mode lays a trail.
func (m TravelMode) LaysTrail() bool { return m.TrailType != "" }

// FallbackModes returns the built-in travel modes used when no table exists.
func FallbackModes() *Library[TravelMode] {
	return mustLibrary("travel mode", []TravelMode{
		{ID: "reckless", Name: "Reckless", SpeedMod: -1, StealthDCMod: 4, Description: "Fast movement with risk"},
		{ID: "normal", Name: "Normal", SpeedMod: 0, StealthDCMod: 0, Description: "Standard travel pace"},
		{ID: "cautious", Name: "Cautious", SpeedMod: 1, StealthDCMod: -2, Description: "Slower, stealthier movement"},
		{ID: "exploring", Name: "Exploring", SpeedMod: 2, StealthDCMod: 1, Description: "Thorough scouting"},
		{ID: "trailblazing", Name: "Trailblazing", SpeedMod: 1, StealthDCMod: 2, TrailType: "footpath", Description: "Creates trails while moving"},
	})
}

// LoadModes reads the travel-mode table at path. A missing file (or empty
// path) yields FallbackModes.
func LoadModes(path string) (*Library[TravelMode], error) {
	return loadLibrary("travel mode", path, "modes", parseMode, FallbackModes)
}

func parseMode(r Row) (TravelMode, error) {
	id, err := r.Required("id")
	if err != nil {
		return TravelMode{}, err
	}
	m := TravelMode{
		ID:          id,
		Name:        r.String("name", id),
		TrailType:   r.String("trail_type", ""),
		Description: r.String("description", ""),
	}
	if m.TrailType == "none" {
		m.TrailType = ""
	}
	if m.SpeedMod, err = r.Float("speed_mod", 0); err != nil {
		return TravelMode{}, err
	}
	if m.StealthDCMod, err = r.Float("stealth_dc_mod", 0); err != nil {
		return TravelMode{}, err
	}
	return m, nil
}
