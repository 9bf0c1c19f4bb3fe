package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ActionBulkDelete is the discriminator for a bulk deletion request.
const ActionBulkDelete = "bulk-delete"

var validate = validator.New()

// ValidateRequest validates any request struct using go-playground/validator.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("validation error: %v", err)
	}
	var fields []string
	for _, fe := range err.(validator.ValidationErrors) {
		fields = append(fields, fmt.Sprintf("field %s: %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(fields, ", "))
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DeleteUsersRequest carries either a single userId or, with
// action "bulk-delete", a list of userIds.
type DeleteUsersRequest struct {
	Action  string   `json:"action,omitempty"`
	UserID  string   `json:"userId,omitempty"`
	UserIDs []string `json:"userIds,omitempty"`
}

// Validate enforces the shape of a deletion request.
func (r *DeleteUsersRequest) Validate() error {
	switch r.Action {
	case "":
		if strings.TrimSpace(r.UserID) == "" {
			return errors.New("userId is required")
		}
	case ActionBulkDelete:
		if len(r.UserIDs) == 0 {
			return errors.New("userIds must be a non-empty list")
		}
		for i, id := range r.UserIDs {
			if strings.TrimSpace(id) == "" {
				return fmt.Errorf("userIds[%d] is empty", i)
			}
		}
	default:
		return fmt.Errorf("unknown action %q", r.Action)
	}
	return nil
}

// VerificationRequest changes a counsellor's status. Status is parsed with
// ParseVerificationStatus. IsApproved may be sent by older clients; it is
// only accepted when it agrees with Status.
type VerificationRequest struct {
	Status     string `json:"status" validate:"required"`
	IsApproved *bool  `json:"isApproved,omitempty"`
}

type PushTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// NotificationRequest is the common body of the push endpoints.
type NotificationRequest struct {
	Title string            `json:"title" validate:"required,max=200"`
	Body  string            `json:"body" validate:"required,max=2000"`
	Data  map[string]string `json:"data,omitempty"`
}

type SendNotificationRequest struct {
	Token string `json:"token" validate:"required"`
	NotificationRequest
}

type BatchNotificationRequest struct {
	Tokens []string `json:"tokens" validate:"required,min=1,max=500,dive,required"`
	NotificationRequest
}

// UserListQuery is bound from the query string of GET /api/users. Status
// is parsed with ParseVerificationStatus.
type UserListQuery struct {
	Role    string `form:"role" validate:"omitempty,oneof=user counsellor"`
	Status  string `form:"status"`
	Search  string `form:"search"`
	Visible bool   `form:"visible"`
	Limit   int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset  int    `form:"offset" validate:"omitempty,min=0"`
}

// SessionListQuery is bound from the query string of GET /api/sessions.
type SessionListQuery struct {
	Status       string `form:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	UserID       string `form:"userId"`
	CounsellorID string `form:"counsellorId"`
	Limit        int    `form:"limit" validate:"omitempty,min=1,max=200"`
}
