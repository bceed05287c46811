package models

import (
	"time"
)

// ActivityCategory is the kind of an activity
type ActivityCategory string

const (
	ActivityCategorySports ActivityCategory = "Sports"
	ActivityCategoryStudy  ActivityCategory = "Study"
	ActivityCategoryEvent  ActivityCategory = "Event"
	ActivityCategoryOther  ActivityCategory = "Other"
)

// Activity defines a capacity-bounded campus activity based on the 'activities' table.
// Participants and Waitlist are kept in join order.
type Activity struct {
	ID           int64            `json:"id" db:"id"`
	Title        string           `json:"title" db:"title"`
	Category     ActivityCategory `json:"category" db:"category"`
	Date         time.Time        `json:"date" db:"activity_date"`
	Time         string           `json:"time" db:"activity_time"`
	Location     string           `json:"location" db:"location"`
	Description  string           `json:"description" db:"description"`
	Capacity     int              `json:"capacity" db:"capacity"`
	College      string           `json:"college" db:"college"`
	CreatorID    int64            `json:"creatorId" db:"creator_id"`
	Participants []int64          `json:"participants" db:"participants"`
	Waitlist     []int64          `json:"waitlist" db:"waitlist"`
	Version      int64            `json:"version" db:"version"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time        `json:"updatedAt" db:"updated_at"`
}

// Clone returns a copy whose membership slices can be mutated independently
func (a *Activity) Clone() *Activity {
	c := *a
	c.Participants = append([]int64(nil), a.Participants...)
	c.Waitlist = append([]int64(nil), a.Waitlist...)
	return &c
}

// IsCreator reports whether userID created the activity
func (a *Activity) IsCreator(userID int64) bool {
	return a.CreatorID == userID
}
