package storefront_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderas/storefront"
)

func TestSessionStateStatus(t *testing.T) {
	cases := []struct {
		name     string
		state    storefront.SessionState
		expected storefront.SessionStatus
	}{
		{
			name:     "zero value is uninitialized",
			state:    storefront.SessionState{},
			expected: storefront.StatusUninitialized,
		},
		{
			name:     "loading",
			state:    storefront.SessionState{IsLoading: true},
			expected: storefront.StatusLoading,
		},
		{
			name:     "logging in wins over loaded",
			state:    storefront.SessionState{IsLoggingIn: true, Loaded: true},
			expected: storefront.StatusLoggingIn,
		},
		{
			name:     "saving wins over token",
			state:    storefront.SessionState{IsSaving: true, Loaded: true, Token: "tok"},
			expected: storefront.StatusSaving,
		},
		{
			name:     "authenticated",
			state:    storefront.SessionState{Loaded: true, Token: "tok"},
			expected: storefront.StatusAuthenticated,
		},
		{
			name:     "unauthenticated",
			state:    storefront.SessionState{Loaded: true},
			expected: storefront.StatusUnauthenticated,
		},
		{
			name: "expired",
			state: storefront.SessionState{
				Loaded:     true,
				LoginError: storefront.MsgSessionExpired,
			},
			expected: storefront.StatusSessionExpired,
		},
		{
			name: "other login errors are just unauthenticated",
			state: storefront.SessionState{
				Loaded:     true,
				LoginError: storefront.MsgLoginFailed,
			},
			expected: storefront.StatusUnauthenticated,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.state.Status())
		})
	}
}

func TestSessionStateAuthenticated(t *testing.T) {
	assert.False(t, storefront.SessionState{}.Authenticated())
	assert.True(t, storefront.SessionState{Token: "tok"}.Authenticated())
}

func TestPersistedSessionRoundTrip(t *testing.T) {
	state := storefront.SessionState{
		ID:       "user-1",
		Email:    "pepe.rone@example.com",
		Password: "hunter22",
		Name:     "Pepe Rone",
		Phone:    "+15551234567",
		Token:    "tok",
		// Flags never make it into the blob.
		Loaded:    true,
		IsLoading: true,
	}

	blob, err := state.Persistable().Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "loaded")
	assert.NotContains(t, string(blob), "isLoading")

	stored, err := storefront.DecodePersistedSession(blob)
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.ID)
	assert.Equal(t, "pepe.rone@example.com", stored.Email)
	assert.Equal(t, "hunter22", stored.Password)
	assert.Equal(t, "Pepe Rone", stored.Name)
	assert.Equal(t, "+15551234567", stored.Phone)
	assert.Equal(t, "tok", stored.Token)
}

func TestDecodePersistedSessionRejectsGarbage(t *testing.T) {
	_, err := storefront.DecodePersistedSession([]byte("{nope"))
	assert.Error(t, err)
}
