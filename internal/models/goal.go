package models

import (
	"time"

	"github.com/google/uuid"
)

// Goal is written opportunistically by the goal advisor when the user's
// text mentions saving. Append-only.
type Goal struct {
	ID          uuid.UUID `db:"id"`
	OwnerID     string    `db:"owner_id"`
	GoalText    string    `db:"goal_text"`
	AdviceGiven string    `db:"advice_given"`
	RecordedAt  time.Time `db:"recorded_at"`
}
