package storefront

import "strings"

// PriceOption is a single row of a product's pricing table. Heading doubles
// as the duration label when the option is selected.
type PriceOption struct {
	Heading string  `json:"heading"`
	Price   float64 `json:"price"`
	Unit    string  `json:"unit,omitempty"`
}

// ProductDetails is the descriptive block attached to a product.
type ProductDetails struct {
	Desc         string        `json:"desc,omitempty"`
	Meta         []string      `json:"meta,omitempty"`
	PricingTable []PriceOption `json:"pricingTable,omitempty"`
}

// Product is a catalog entry shown on the browsing screens.
type Product struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Image      string           `json:"image,omitempty"`
	CategoryID string           `json:"categoryId,omitempty"`
	Details    []ProductDetails `json:"details,omitempty"`
}

// Category groups products.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Location is a pickup location for reservations.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Reservation links a product to a confirmed price selection.
type Reservation struct {
	ID          string       `json:"id"`
	ProductID   string       `json:"productId"`
	LocationID  string       `json:"locationId,omitempty"`
	Duration    string       `json:"duration,omitempty"`
	PriceOption *PriceOption `json:"priceOption,omitempty"`
}

// CurrentReservation is the in-progress selection on the product detail
// screen.
type CurrentReservation struct {
	ProductID           string       `json:"productId,omitempty"`
	SelectedPriceOption *PriceOption `json:"selectedPriceOption,omitempty"`
	SelectedDuration    string       `json:"selectedDuration,omitempty"`
}

// ReservationEvent is the transition union for the reservation slice.
type ReservationEvent struct {
	Type        EventType
	Current     *CurrentReservation
	Reservation *Reservation
}

func (e ReservationEvent) EventType() EventType { return e.Type }

// ReduceReservation applies a reservation transition to the app state.
func ReduceReservation(prev AppState, ev ReservationEvent) AppState {
	next := prev
	switch ev.Type {
	case EventReservationUpdated:
		if ev.Current == nil {
			return prev
		}
		cur := prev.CurrentReservation
		if ev.Current.ProductID != "" {
			cur.ProductID = ev.Current.ProductID
		}
		if ev.Current.SelectedPriceOption != nil {
			cur.SelectedPriceOption = ev.Current.SelectedPriceOption
		}
		if ev.Current.SelectedDuration != "" {
			cur.SelectedDuration = ev.Current.SelectedDuration
		}
		next.CurrentReservation = cur
	case EventReservationReset:
		next.CurrentReservation = CurrentReservation{}
	case EventReservationSubmitted:
		if ev.Reservation == nil {
			return prev
		}
		reservations := make([]Reservation, len(prev.Reservations), len(prev.Reservations)+1)
		copy(reservations, prev.Reservations)
		next.Reservations = append(reservations, *ev.Reservation)
		next.CurrentReservation = CurrentReservation{}
	}
	return next
}

// SelectPriceOption builds the transition for picking a pricing row; the
// option's heading becomes the selected duration.
func SelectPriceOption(productID string, option PriceOption) ReservationEvent {
	return ReservationEvent{
		Type: EventReservationUpdated,
		Current: &CurrentReservation{
			ProductID:           productID,
			SelectedPriceOption: &option,
			SelectedDuration:    option.Heading,
		},
	}
}

// ResetCurrentReservation builds the transition fired when the detail
// screen switches product.
func ResetCurrentReservation() ReservationEvent {
	return ReservationEvent{Type: EventReservationReset}
}

// SubmitReservation builds the transition confirming the current
// selection.
func SubmitReservation(r Reservation) ReservationEvent {
	return ReservationEvent{Type: EventReservationSubmitted, Reservation: &r}
}

// ProductDetailsView is the snapshot the product detail screen renders.
type ProductDetailsView struct {
	Title               string
	Category            string
	Image               string
	Description         string
	Meta                []string
	PricingTable        []PriceOption
	Reservation         *Reservation
	SelectedPriceOption *PriceOption
	SelectedDuration    string
	// Ready is false until both reservations and locations have arrived;
	// the screen renders nothing before that.
	Ready bool
}

// NewProductDetailsView derives the detail screen's view model from the
// current snapshot.
func NewProductDetailsView(state AppState, product Product, category Category) ProductDetailsView {
	view := ProductDetailsView{
		Title:               product.Name,
		Category:            category.Name,
		Image:               product.Image,
		SelectedPriceOption: state.CurrentReservation.SelectedPriceOption,
		SelectedDuration:    state.CurrentReservation.SelectedDuration,
		Ready:               state.Reservations != nil && state.Locations != nil,
	}

	if len(product.Details) > 0 {
		details := product.Details[0]
		view.Description = strings.ReplaceAll(details.Desc, ",", "")
		view.Meta = details.Meta
		view.PricingTable = details.PricingTable
	}

	for i := range state.Reservations {
		if state.Reservations[i].ProductID == product.ID {
			view.Reservation = &state.Reservations[i]
			break
		}
	}

	return view
}

// ProductSummaryView is the snapshot a product card renders on the listing
// screen.
type ProductSummaryView struct {
	Name        string
	Description string
	Image       string
}

// NewProductSummaryView derives a listing card's view model.
func NewProductSummaryView(product Product) ProductSummaryView {
	view := ProductSummaryView{
		Name:  strings.TrimSpace(product.Name),
		Image: product.Image,
	}
	if len(product.Details) > 0 {
		view.Description = strings.TrimSpace(product.Details[0].Desc)
	}
	return view
}
