package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerificationStatus(t *testing.T) {
	st, err := ParseVerificationStatus(" Verified ")
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, st)

	_, err = ParseVerificationStatus("approved")
	assert.Error(t, err)
}

func TestValidateVerification(t *testing.T) {
	assert.NoError(t, ValidateVerification(true, StatusVerified))
	assert.NoError(t, ValidateVerification(false, StatusPending))
	assert.NoError(t, ValidateVerification(false, StatusRejected))

	assert.ErrorIs(t, ValidateVerification(false, StatusVerified), ErrInconsistentVerification)
	assert.ErrorIs(t, ValidateVerification(true, StatusRejected), ErrInconsistentVerification)
	assert.Error(t, ValidateVerification(false, "unknown"))
}

func TestUser_IsVisible(t *testing.T) {
	tests := []struct {
		name string
		user User
		want bool
	}{
		{"verified counsellor", User{Role: RoleCounsellor, IsApproved: true, VerificationStatus: StatusVerified}, true},
		{"approved flag only", User{Role: RoleCounsellor, IsApproved: true, VerificationStatus: StatusPending}, false},
		{"status only", User{Role: RoleCounsellor, IsApproved: false, VerificationStatus: StatusVerified}, false},
		{"regular user", User{Role: RoleUser, IsApproved: true, VerificationStatus: StatusVerified}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.IsVisible())
		})
	}
}

func TestUser_HasDrift(t *testing.T) {
	assert.True(t, (&User{Role: RoleCounsellor, IsApproved: true, VerificationStatus: StatusPending}).HasDrift())
	assert.True(t, (&User{Role: RoleCounsellor, IsApproved: true}).HasDrift())
	assert.True(t, (&User{Role: RoleCounsellor, IsApproved: false}).HasDrift())
	assert.False(t, (&User{Role: RoleCounsellor, IsApproved: false, VerificationStatus: StatusRejected}).HasDrift())
	assert.False(t, (&User{Role: RoleUser, IsApproved: true}).HasDrift())
}

func TestUser_ResolvedStatus(t *testing.T) {
	assert.Equal(t, StatusPending, (&User{IsApproved: true, VerificationStatus: StatusPending}).ResolvedStatus())
	assert.Equal(t, StatusVerified, (&User{IsApproved: true}).ResolvedStatus())
	assert.Equal(t, StatusPending, (&User{IsApproved: false, VerificationStatus: "bogus"}).ResolvedStatus())
}

func TestDeleteUsersRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     DeleteUsersRequest
		wantErr bool
	}{
		{"single", DeleteUsersRequest{UserID: "u1"}, false},
		{"missing id", DeleteUsersRequest{}, true},
		{"blank id", DeleteUsersRequest{UserID: "  "}, true},
		{"bulk", DeleteUsersRequest{Action: ActionBulkDelete, UserIDs: []string{"u1", "u2"}}, false},
		{"bulk empty", DeleteUsersRequest{Action: ActionBulkDelete}, true},
		{"bulk with blank id", DeleteUsersRequest{Action: ActionBulkDelete, UserIDs: []string{"u1", ""}}, true},
		{"unknown action", DeleteUsersRequest{Action: "purge", UserIDs: []string{"u1"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(VerificationRequest{Status: "Verified"}))

	err := ValidateRequest(VerificationRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field Status: required")

	err = ValidateRequest(SessionListQuery{Status: "done"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field Status: oneof")

	err = ValidateRequest(BatchNotificationRequest{
		Tokens:              []string{},
		NotificationRequest: NotificationRequest{Title: "t", Body: "b"},
	})
	assert.Error(t, err)
}
