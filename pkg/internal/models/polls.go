package models

import "time"

type Poll struct {
	BaseModel

	Title       string     `json:"title"`
	Question    string     `json:"question"`
	ShareToken  string     `json:"share_token" gorm:"uniqueIndex"`
	EndDate     *time.Time `json:"end_date"`
	ShowResults bool       `json:"show_results_to_voters" gorm:"column:show_results_to_voters"`
	UserID      uint       `json:"user_id"`
	User        *User      `json:"user,omitempty"`
	Options     []Option   `json:"options"`
}

// Closed reports whether the poll no longer accepts votes at the given
// instant. A poll with an end date stays open through the whole of that
// day in UTC; votes on the next day are rejected.
func (p Poll) Closed(now time.Time) bool {
	if p.EndDate == nil {
		return false
	}
	d := p.EndDate.UTC()
	endOfDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return !now.UTC().Before(endOfDay)
}

type Option struct {
	BaseModel

	PollID uint   `json:"poll_id" gorm:"index"`
	Text   string `json:"option_text" gorm:"column:option_text"`
	Votes  int64  `json:"votes"`
}
