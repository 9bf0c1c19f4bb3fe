package models

import "time"

const (
	SessionPending   = "pending"
	SessionConfirmed = "confirmed"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

// Session is a booking between a user and a counsellor. This service only
// reads sessions.
type Session struct {
	ID           string    `bson:"_id" firestore:"-" json:"id"`
	UserID       string    `bson:"userId" firestore:"userId" json:"userId"`
	CounsellorID string    `bson:"counsellorId" firestore:"counsellorId" json:"counsellorId"`
	Status       string    `bson:"status" firestore:"status" json:"status"`
	ScheduledAt  time.Time `bson:"scheduledAt" firestore:"scheduledAt" json:"scheduledAt"`
	CreatedAt    time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
}
