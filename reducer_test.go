package storefront_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calderas/storefront"
)

func TestReduceSessionMergesPatch(t *testing.T) {
	prev := storefront.SessionState{
		ID:    "user-1",
		Email: "pepe.rone@example.com",
		Token: "old-token",
	}

	next := storefront.ReduceSession(prev, storefront.SessionEvent{
		Type: storefront.EventLoginSettled,
		Patch: storefront.SessionPatch{
			Token:  storefront.Ptr("new-token"),
			Loaded: storefront.Ptr(true),
		},
	})

	assert.Equal(t, "new-token", next.Token)
	assert.True(t, next.Loaded)
	assert.Equal(t, "user-1", next.ID, "nil fields are left untouched")
	assert.Equal(t, "pepe.rone@example.com", next.Email)

	// Input is a value; prev must not change.
	assert.Equal(t, "old-token", prev.Token)
}

func TestReduceSessionExplicitEmptyClearsField(t *testing.T) {
	prev := storefront.SessionState{
		Token:      "tok",
		LoginError: storefront.MsgSessionExpired,
	}

	next := storefront.ReduceSession(prev, storefront.SessionEvent{
		Type: storefront.EventLoginSettled,
		Patch: storefront.SessionPatch{
			Token:      storefront.Ptr(""),
			LoginError: storefront.Ptr(""),
		},
	})

	assert.Equal(t, "", next.Token)
	assert.Equal(t, "", next.LoginError)
}

func TestReduceSessionUnknownTypeIgnored(t *testing.T) {
	prev := storefront.SessionState{Token: "tok"}

	next := storefront.ReduceSession(prev, storefront.SessionEvent{
		Type: storefront.EventType("session.bogus"),
		Patch: storefront.SessionPatch{
			Token: storefront.Ptr(""),
		},
	})

	assert.Equal(t, prev, next)
}

func TestReduceSessionAllEventTypesApply(t *testing.T) {
	types := []storefront.EventType{
		storefront.EventSessionLoading,
		storefront.EventSessionLoaded,
		storefront.EventLoginStarted,
		storefront.EventLoginSettled,
		storefront.EventUserDataSaving,
		storefront.EventUserDataSaved,
	}

	for _, typ := range types {
		next := storefront.ReduceSession(storefront.SessionState{}, storefront.SessionEvent{
			Type:  typ,
			Patch: storefront.SessionPatch{Name: storefront.Ptr("applied")},
		})
		assert.Equal(t, "applied", next.Name, "type %s", typ)
	}
}
