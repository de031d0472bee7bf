package entity

type Status string

const (
	StatusNew           Status = "new"
	StatusResearching   Status = "researching"
	StatusContacted     Status = "contacted"
	StatusReplied       Status = "replied"
	StatusMeetingBooked Status = "meeting_booked"
	StatusHotLead       Status = "hot_lead"
)

// pipelineOrder is the advisory progression of a lead.
var pipelineOrder = []Status{
	StatusNew,
	StatusResearching,
	StatusContacted,
	StatusReplied,
	StatusMeetingBooked,
	StatusHotLead,
}

func Statuses() []Status {
	out := make([]Status, len(pipelineOrder))
	copy(out, pipelineOrder)
	return out
}

// Known reports whether s is one of the pipeline labels.
func (s Status) Known() bool {
	return s.Rank() >= 0
}

// Rank is the position of s in the pipeline, or -1 for unknown labels.
func (s Status) Rank() int {
	for i, st := range pipelineOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) String() string {
	return string(s)
}
