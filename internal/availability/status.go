package availability

// Status is the qualitative availability of a project over one day.
type Status string

const (
	Operational Status = "operational"
	Recovering  Status = "recovering"
	Failing     Status = "failing"
	Failed      Status = "failed"
	Unknown     Status = "unknown"
)

// Colour is the hex colour used for the status grid.
func (s Status) Colour() string {
	switch s {
	case Operational:
		return "#00FF00"
	case Recovering:
		return "#FFFF00"
	case Failing:
		return "#FFAA00"
	case Failed:
		return "#FF0000"
	default:
		return "#808080"
	}
}

func (s Status) Title() string {
	switch s {
	case Operational:
		return "Operational"
	case Recovering:
		return "Recovering"
	case Failing:
		return "Failing"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}
