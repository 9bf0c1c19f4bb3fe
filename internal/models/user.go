package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleCounsellor Role = "counsellor"
)

// VerificationStatus is the single source of truth for a counsellor
// application. The stored isApproved flag is always derived from it.
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusVerified VerificationStatus = "verified"
	StatusRejected VerificationStatus = "rejected"
)

var ErrInconsistentVerification = errors.New("isApproved does not match verificationStatus")

// ParseVerificationStatus accepts the three known statuses, case-insensitively.
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch st := VerificationStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusVerified, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("invalid verification status %q", s)
	}
}

// IsApproved is the only value isApproved may hold for this status.
func (s VerificationStatus) IsApproved() bool {
	return s == StatusVerified
}

// ValidateVerification rejects a write that would set the two fields
// inconsistently.
func ValidateVerification(isApproved bool, status VerificationStatus) error {
	if _, err := ParseVerificationStatus(string(status)); err != nil {
		return err
	}
	if status.IsApproved() != isApproved {
		return fmt.Errorf("%w: isApproved=%t status=%s", ErrInconsistentVerification, isApproved, status)
	}
	return nil
}

type User struct {
	UID                string             `bson:"_id" firestore:"uid" json:"uid"`
	Email              string             `bson:"email" firestore:"email" json:"email"`
	DisplayName        string             `bson:"displayName" firestore:"displayName" json:"displayName"`
	Role               Role               `bson:"role" firestore:"role" json:"role"`
	IsApproved         bool               `bson:"isApproved" firestore:"isApproved" json:"isApproved"`
	VerificationStatus VerificationStatus `bson:"verificationStatus,omitempty" firestore:"verificationStatus,omitempty" json:"verificationStatus,omitempty"`
	PushToken          string             `bson:"fcmToken,omitempty" firestore:"fcmToken,omitempty" json:"-"`
	CreatedAt          time.Time          `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" firestore:"updatedAt" json:"updatedAt"`
}

// IsVisible reports whether end users may see and book this counsellor.
func (u *User) IsVisible() bool {
	return u.Role == RoleCounsellor && u.IsApproved && u.VerificationStatus == StatusVerified
}

// HasDrift reports a counsellor record whose verification fields cannot
// both be trusted: the status is missing or unknown, or isApproved
// disagrees with it.
func (u *User) HasDrift() bool {
	if u.Role != RoleCounsellor {
		return false
	}
	st, err := ParseVerificationStatus(string(u.VerificationStatus))
	if err != nil {
		return true
	}
	return st.IsApproved() != u.IsApproved
}

// ResolvedStatus is the status a drifted record is repaired to. A valid
// stored status wins; records without one fall back to isApproved.
func (u *User) ResolvedStatus() VerificationStatus {
	if st, err := ParseVerificationStatus(string(u.VerificationStatus)); err == nil {
		return st
	}
	if u.IsApproved {
		return StatusVerified
	}
	return StatusPending
}
