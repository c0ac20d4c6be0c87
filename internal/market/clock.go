package market

// Session hours. The market trades 09:30-16:00; everything else is closed.
const (
	openHour    = 9
	openMinute  = 30
	closeHour   = 16
	closeMinute = 0

	daysPerMonth  = 30
	monthsPerYear = 12
)

// Clock is the simulated market calendar. One scheduler tick advances one
// simulated minute.
type Clock struct {
	Day    int  `json:"day"`
	Hour   int  `json:"hour"`
	Minute int  `json:"minute"`
	Open   bool `json:"open"`
}

// NewClock starts mid-session on day 1 so a fresh engine trades immediately.
func NewClock() Clock {
	return Clock{Day: 1, Hour: 10, Minute: 0, Open: true}
}

// Advance moves the clock one minute and applies session transitions.
// It reports whether this tick reopened the session (day rollover complete),
// which is the signal to reset index histories.
func (c *Clock) Advance() (reopened bool) {
	c.Minute++
	if c.Minute >= 60 {
		c.Minute = 0
		c.Hour++
		if c.Hour >= 24 {
			c.Hour = 0
		}
	}
	if c.Open && c.Hour == closeHour && c.Minute == closeMinute {
		c.Open = false
		c.Day++
		return false
	}
	if !c.Open && c.Hour == openHour && c.Minute == openMinute {
		c.Open = true
		return true
	}
	return false
}

// Month maps the running day counter onto a 12-month synthetic calendar.
func (c Clock) Month() int {
	return ((c.Day-1)/daysPerMonth)%monthsPerYear + 1
}

// DayOfMonth maps the running day counter onto a 30-day synthetic month.
func (c Clock) DayOfMonth() int {
	return (c.Day-1)%daysPerMonth + 1
}
