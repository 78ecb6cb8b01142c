package catalog

// TrailType describes a kind of trail laid between adjacent tiles.
// A negative CostMod makes travel along the trail cheaper.
type TrailType struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	CostMod     float64 `yaml:"cost_mod" json:"cost_mod"`
	Color       string  `yaml:"color" json:"color"`
	Width       float64 `yaml:"width" json:"width"`
	Description string  `yaml:"description" json:"description"`
}

// Key implements Entry.
func (t TrailType) Key() string { return t.ID }

const (
	defaultTrailColor = "#8b4513"
	defaultTrailWidth = 4.0
)

// FallbackTrails returns the built-in trail set used when no table exists.
func FallbackTrails() *Library[TrailType] {
	return mustLibrary("trail type", []TrailType{
		{ID: "footpath", Name: "Footpath", CostMod: 1.0, Color: defaultTrailColor, Width: 2, Description: "A worn track through the brush."},
		{ID: "road", Name: "Road", CostMod: 2.0, Color: "#a0522d", Width: 4, Description: "A packed dirt road."},
		{ID: "highway", Name: "Highway", CostMod: 3.0, Color: "#696969", Width: 6, Description: "A paved trade highway."},
	})
}

// LoadTrails reads the trail-type table at path. A missing file (or empty
// path) yields FallbackTrails.
func LoadTrails(path string) (*Library[TrailType], error) {
	return loadLibrary("trail type", path, "trails", parseTrail, FallbackTrails)
}

func parseTrail(r Row) (TrailType, error) {
	id, err := r.Required("id")
	if err != nil {
		return TrailType{}, err
	}
	t := TrailType{
		ID:          id,
		Name:        r.String("name", id),
		Color:       r.String("color", defaultTrailColor),
		Description: r.String("description", ""),
	}
	if t.CostMod, err = r.Float("cost_mod", 0); err != nil {
		return TrailType{}, err
	}
	if t.Width, err = r.Float("width", defaultTrailWidth); err != nil {
		return TrailType{}, err
	}
	return t, nil
}
