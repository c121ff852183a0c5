package attendance

// Status is the single attendance outcome of a user on a day.
type Status string

const (
	StatusNotEmployed Status = "not_employed"
	StatusSuspended   Status = "suspended"
	StatusLOA         Status = "loa"
	StatusOffSchedule Status = "off_schedule"
	StatusHoliday     Status = "holiday"
	StatusClosed      Status = "closed"
	StatusVacation    Status = "vacation"
	StatusPresent     Status = "present"
	StatusAbsent      Status = "absent"
)

// Statuses lists every status in resolution priority order.
var Statuses = []Status{
	StatusNotEmployed,
	StatusSuspended,
	StatusLOA,
	StatusOffSchedule,
	StatusHoliday,
	StatusClosed,
	StatusVacation,
	StatusPresent,
	StatusAbsent,
}

type Display struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Display maps s to its label and colour. There is no default case: an
// unknown status yields the "Unknown" display and ok=false.
func (s Status) Display() (Display, bool) {
	switch s {
	case StatusNotEmployed:
		return Display{Label: "Not employed", Color: "grey"}, true
	case StatusSuspended:
		return Display{Label: "Suspended", Color: "darkred"}, true
	case StatusLOA:
		return Display{Label: "Leave of absence", Color: "purple"}, true
	case StatusOffSchedule:
		return Display{Label: "Off schedule", Color: "lightgrey"}, true
	case StatusHoliday:
		return Display{Label: "Public holiday", Color: "blue"}, true
	case StatusClosed:
		return Display{Label: "Office closed", Color: "slate"}, true
	case StatusVacation:
		return Display{Label: "Vacation", Color: "teal"}, true
	case StatusPresent:
		return Display{Label: "Present", Color: "green"}, true
	case StatusAbsent:
		return Display{Label: "Absent", Color: "red"}, true
	}
	return Display{Label: "Unknown", Color: "black"}, false
}

func (s Status) Valid() bool {
	_, ok := s.Display()
	return ok
}
