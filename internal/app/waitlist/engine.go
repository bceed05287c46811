// Package waitlist holds the capacity rules for activity membership. The
// functions mutate the activity in place and never touch storage; callers
// persist the result with a version check.
package waitlist

import (
	"errors"

	"github.com/peerconnect/api/internal/app/models"
)

// Status is where a join placed the user
type Status string

const (
	StatusJoined     Status = "joined"
	StatusWaitlisted Status = "waitlist"
)

var (
	ErrAlreadyJoined     = errors.New("already joined")
	ErrAlreadyWaitlisted = errors.New("already on waitlist")
	ErrNotJoined         = errors.New("not joined")
)

// LeaveResult describes what a leave changed
type LeaveResult struct {
	// FromWaitlist is true when the user only held a waitlist spot
	FromWaitlist bool
	// Promoted is the user moved from the head of the waitlist, if any
	Promoted *int64
}

// Join places userID in the activity: as a participant while seats remain,
// otherwise at the end of the waitlist.
func Join(a *models.Activity, userID int64) (Status, error) {
	if indexOf(a.Participants, userID) >= 0 {
		return "", ErrAlreadyJoined
	}
	if indexOf(a.Waitlist, userID) >= 0 {
		return "", ErrAlreadyWaitlisted
	}

	if len(a.Participants) < a.Capacity {
		a.Participants = append(a.Participants, userID)
		return StatusJoined, nil
	}

	a.Waitlist = append(a.Waitlist, userID)
	return StatusWaitlisted, nil
}

// Leave removes userID. A departing participant frees a seat that goes to
// the head of the waitlist; a departing waitlister promotes nobody.
func Leave(a *models.Activity, userID int64) (LeaveResult, error) {
	if i := indexOf(a.Participants, userID); i >= 0 {
		a.Participants = remove(a.Participants, i)

		var result LeaveResult
		if len(a.Waitlist) > 0 {
			next := a.Waitlist[0]
			a.Waitlist = remove(a.Waitlist, 0)
			a.Participants = append(a.Participants, next)
			result.Promoted = &next
		}
		return result, nil
	}

	if i := indexOf(a.Waitlist, userID); i >= 0 {
		a.Waitlist = remove(a.Waitlist, i)
		return LeaveResult{FromWaitlist: true}, nil
	}

	return LeaveResult{}, ErrNotJoined
}

// Overflow is how many participants exceed capacity after a capacity cut.
func Overflow(a *models.Activity) int {
	if n := len(a.Participants) - a.Capacity; n > 0 {
		return n
	}
	return 0
}

func indexOf(ids []int64, id int64) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func remove(ids []int64, i int) []int64 {
	out := make([]int64, 0, len(ids)-1)
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...)
}
