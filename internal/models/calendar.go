package models

// DayType classifies a calendar date
type DayType string

const (
	DayWeek    DayType = "week"
	DayWeekend DayType = "weekend"
	DayHoliday DayType = "holiday"
)

// TimeOfDay buckets an hour of the day
type TimeOfDay string

const (
	LateNight    TimeOfDay = "late_night"
	EarlyMorning TimeOfDay = "early_morning"
	Morning      TimeOfDay = "morning"
	Noon         TimeOfDay = "noon"
	Eve          TimeOfDay = "eve"
	Night        TimeOfDay = "night"
)
