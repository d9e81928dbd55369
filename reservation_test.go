package storefront_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderas/storefront"
)

func TestSelectPriceOptionUpdatesCurrent(t *testing.T) {
	store := storefront.NewStore()

	option := storefront.PriceOption{Heading: "4 Hours", Price: 120, Unit: "USD"}
	store.Dispatch(storefront.SelectPriceOption("prod-1", option))

	cur := store.State().CurrentReservation
	assert.Equal(t, "prod-1", cur.ProductID)
	assert.Equal(t, "4 Hours", cur.SelectedDuration)
	require.NotNil(t, cur.SelectedPriceOption)
	assert.Equal(t, float64(120), cur.SelectedPriceOption.Price)
}

func TestReservationUpdatedMergesFields(t *testing.T) {
	prev := storefront.AppState{
		CurrentReservation: storefront.CurrentReservation{
			ProductID:        "prod-1",
			SelectedDuration: "4 Hours",
		},
	}

	next := storefront.ReduceReservation(prev, storefront.ReservationEvent{
		Type: storefront.EventReservationUpdated,
		Current: &storefront.CurrentReservation{
			SelectedDuration: "Full Day",
		},
	})

	assert.Equal(t, "prod-1", next.CurrentReservation.ProductID, "empty fields leave previous values")
	assert.Equal(t, "Full Day", next.CurrentReservation.SelectedDuration)

	// A missing payload is a no-op.
	same := storefront.ReduceReservation(prev, storefront.ReservationEvent{
		Type: storefront.EventReservationUpdated,
	})
	assert.Equal(t, prev, same)
}

func TestResetCurrentReservation(t *testing.T) {
	prev := storefront.AppState{
		CurrentReservation: storefront.CurrentReservation{ProductID: "prod-1"},
	}

	next := storefront.ReduceReservation(prev, storefront.ResetCurrentReservation())
	assert.Equal(t, storefront.CurrentReservation{}, next.CurrentReservation)
}

func TestSubmitReservationAppendsAndClears(t *testing.T) {
	prev := storefront.AppState{
		Reservations: []storefront.Reservation{{ID: "res-1", ProductID: "prod-1"}},
		CurrentReservation: storefront.CurrentReservation{
			ProductID:        "prod-2",
			SelectedDuration: "4 Hours",
		},
	}

	next := storefront.ReduceReservation(prev, storefront.SubmitReservation(storefront.Reservation{
		ID:        "res-2",
		ProductID: "prod-2",
		Duration:  "4 Hours",
	}))

	require.Len(t, next.Reservations, 2)
	assert.Equal(t, "res-2", next.Reservations[1].ID)
	assert.Equal(t, storefront.CurrentReservation{}, next.CurrentReservation)
	assert.Len(t, prev.Reservations, 1, "previous snapshot untouched")
}

func TestNewProductDetailsView(t *testing.T) {
	product := storefront.Product{
		ID:    "prod-1",
		Name:  "Pontoon Boat",
		Image: "pontoon.jpg",
		Details: []storefront.ProductDetails{{
			Desc: "Slow, steady, and comfortable",
			Meta: []string{"Seats 8"},
			PricingTable: []storefront.PriceOption{
				{Heading: "4 Hours", Price: 120},
			},
		}},
	}
	category := storefront.Category{ID: "cat-1", Name: "Boats"}

	t.Run("not ready until both lists arrive", func(t *testing.T) {
		view := storefront.NewProductDetailsView(storefront.AppState{
			Reservations: []storefront.Reservation{},
		}, product, category)
		assert.False(t, view.Ready)
	})

	t.Run("ready view", func(t *testing.T) {
		state := storefront.AppState{
			Reservations: []storefront.Reservation{{ID: "res-1", ProductID: "prod-1"}},
			Locations:    []storefront.Location{{ID: "loc-1", Name: "North Dock"}},
			CurrentReservation: storefront.CurrentReservation{
				SelectedDuration: "4 Hours",
			},
		}

		view := storefront.NewProductDetailsView(state, product, category)
		assert.True(t, view.Ready)
		assert.Equal(t, "Pontoon Boat", view.Title)
		assert.Equal(t, "Boats", view.Category)
		assert.Equal(t, "Slow steady and comfortable", view.Description, "commas stripped")
		assert.Equal(t, "4 Hours", view.SelectedDuration)
		require.NotNil(t, view.Reservation)
		assert.Equal(t, "res-1", view.Reservation.ID)
	})
}

func TestNewProductSummaryView(t *testing.T) {
	view := storefront.NewProductSummaryView(storefront.Product{
		Name: "  Kayak ",
		Details: []storefront.ProductDetails{{
			Desc: " Single seat ",
		}},
	})

	assert.Equal(t, "Kayak", view.Name)
	assert.Equal(t, "Single seat", view.Description)

	empty := storefront.NewProductSummaryView(storefront.Product{Name: "Kayak"})
	assert.Equal(t, "", empty.Description)
}
