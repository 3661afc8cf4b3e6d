package keys

// SpendPeriod is the accrual window of a spend-permission entry
type SpendPeriod uint8

const (
	PeriodMinute SpendPeriod = iota
	PeriodHour
	PeriodDay
	PeriodWeek
	PeriodMonth
	PeriodYear
	PeriodForever
)

var periodNames = map[SpendPeriod]string{
	PeriodMinute:  "minute",
	PeriodHour:    "hour",
	PeriodDay:     "day",
	PeriodWeek:    "week",
	PeriodMonth:   "month",
	PeriodYear:    "year",
	PeriodForever: "forever",
}

// Valid reports whether the period is a recognized enum value
func (p SpendPeriod) Valid() bool {
	_, exists := periodNames[p]
	return exists
}

func (p SpendPeriod) String() string {
	name, exists := periodNames[p]
	if !exists {
		return "unknown"
	}
	return name
}

// ParseSpendPeriod converts a period name to its enum value
func ParseSpendPeriod(name string) (SpendPeriod, bool) {
	for period, periodName := range periodNames {
		if periodName == name {
			return period, true
		}
	}
	return 0, false
}
