package spark

// Tier is a labeled rung on the reputation ladder.
type Tier struct {
	MinSpark float64 `json:"min_spark" koanf:"min_spark"`
	Label    string  `json:"label" koanf:"label"`
	Icon     string  `json:"icon" koanf:"icon"`
}

// DefaultTiers returns the production ladder, ascending by minimum spark.
// Returned as a fresh slice so callers can't mutate shared state.
func DefaultTiers() []Tier {
	return []Tier{
		{MinSpark: 0, Label: "Ember", Icon: "ember"},
		{MinSpark: 10, Label: "Spark", Icon: "spark"},
		{MinSpark: 25, Label: "Flame", Icon: "flame"},
		{MinSpark: 50, Label: "Blaze", Icon: "blaze"},
		{MinSpark: 90, Label: "Torch", Icon: "torch"},
		{MinSpark: 140, Label: "Beacon", Icon: "beacon"},
	}
}
