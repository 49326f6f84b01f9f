package model

// MissionView is the serialized form of a committed mission.
type MissionView struct {
	MissionID string `json:"mission_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Team      string `json:"team"`
}

// ScheduleView is a dump of every port's committed missions.
type ScheduleView map[PortID][]MissionView

// NewScheduleView converts a schedule snapshot to its serialized form. Every
// port present in the snapshot is kept, including empty ones.
func NewScheduleView(snapshot map[PortID][]Mission) ScheduleView {
	view := make(ScheduleView, len(snapshot))
	for port, missions := range snapshot {
		list := make([]MissionView, 0, len(missions))
		for _, m := range missions {
			list = append(list, MissionView{
				MissionID: m.ID,
				StartTime: FormatTimestamp(m.Start),
				EndTime:   FormatTimestamp(m.End),
				Team:      m.Team,
			})
		}
		view[port] = list
	}
	return view
}
