package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/booking"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/costs"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/itinerary"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/ranges"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

type partyJSON struct {
	Adults   int `json:"adults" validate:"min=0"`
	Children int `json:"children" validate:"min=0"`
}

func (p partyJSON) toDomain() domain.Party {
	return domain.Party{Adults: p.Adults, Children: p.Children}
}

func toPartyJSON(p domain.Party) partyJSON {
	return partyJSON{Adults: p.Adults, Children: p.Children}
}

type planJSON struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	StartDate        *openapi_types.Date `json:"startDate,omitempty"`
	EndDate          *openapi_types.Date `json:"endDate,omitempty"`
	BaseCity         string              `json:"baseCity,omitempty"`
	AllowCrossBorder bool                `json:"allowCrossBorder"`
	Currency         string              `json:"currency"`
	Party            partyJSON           `json:"party"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

func toPlanJSON(p domain.Plan) planJSON {
	return planJSON{
		ID:               string(p.ID),
		Title:            p.Title,
		StartDate:        toDate(p.StartDate),
		EndDate:          toDate(p.EndDate),
		BaseCity:         p.BaseCity,
		AllowCrossBorder: p.AllowCrossBorder,
		Currency:         p.Currency,
		Party:            toPartyJSON(p.Party),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type createPlanRequest struct {
	Title            string              `json:"title" validate:"required"`
	StartDate        *openapi_types.Date `json:"startDate"`
	EndDate          *openapi_types.Date `json:"endDate"`
	BaseCity         string              `json:"baseCity"`
	AllowCrossBorder bool                `json:"allowCrossBorder"`
	Currency         string              `json:"currency"`
	Party            *partyJSON          `json:"party"`
}

func (req createPlanRequest) toInput() itinerary.CreatePlanInput {
	in := itinerary.CreatePlanInput{
		Title:            req.Title,
		StartDate:        fromDate(req.StartDate),
		EndDate:          fromDate(req.EndDate),
		BaseCity:         req.BaseCity,
		AllowCrossBorder: req.AllowCrossBorder,
		Currency:         req.Currency,
	}
	if req.Party != nil {
		in.Party = req.Party.toDomain()
	}
	return in
}

// updatePlanRequest is a PATCH body: absent fields are kept, null clears where allowed.
type updatePlanRequest struct {
	Title            nullable.Nullable[string]             `json:"title"`
	StartDate        nullable.Nullable[openapi_types.Date] `json:"startDate"`
	EndDate          nullable.Nullable[openapi_types.Date] `json:"endDate"`
	BaseCity         nullable.Nullable[string]             `json:"baseCity"`
	AllowCrossBorder nullable.Nullable[bool]               `json:"allowCrossBorder"`
	Currency         nullable.Nullable[string]             `json:"currency"`
	Party            nullable.Nullable[partyJSON]          `json:"party"`
}

func (req updatePlanRequest) toInput() itinerary.UpdatePlanInput {
	asTime := func(d openapi_types.Date) time.Time { return d.Time }
	return itinerary.UpdatePlanInput{
		Title:            optional(req.Title, same[string]),
		StartDate:        optional(req.StartDate, asTime),
		EndDate:          optional(req.EndDate, asTime),
		BaseCity:         optional(req.BaseCity, same[string]),
		AllowCrossBorder: optional(req.AllowCrossBorder, same[bool]),
		Currency:         optional(req.Currency, same[string]),
		Party:            optional(req.Party, partyJSON.toDomain),
	}
}

type generateDaysRequest struct {
	Confirm bool `json:"confirm"`
}

type dayJSON struct {
	ID            string              `json:"id"`
	DayIndex      int                 `json:"dayIndex"`
	Date          *openapi_types.Date `json:"date,omitempty"`
	City          *string             `json:"city,omitempty"`
	EffectiveCity string              `json:"effectiveCity,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	Items         []itemJSON          `json:"items,omitempty"`
}

func toDayJSON(p domain.Plan, d domain.PlanDay) dayJSON {
	return dayJSON{
		ID:            string(d.ID),
		DayIndex:      d.DayIndex,
		Date:          toDate(d.Date),
		City:          d.City,
		EffectiveCity: d.EffectiveCity(p),
		Notes:         d.Notes,
	}
}

type updateDayRequest struct {
	City  nullable.Nullable[string] `json:"city"`
	Notes nullable.Nullable[string] `json:"notes"`
}

type boardJSON struct {
	Plan planJSON  `json:"plan"`
	Days []dayJSON `json:"days"`
}

func toBoardJSON(b domain.Board) boardJSON {
	out := boardJSON{Plan: toPlanJSON(b.Plan), Days: make([]dayJSON, 0, len(b.Days))}
	for _, d := range b.Days {
		dj := toDayJSON(b.Plan, d)
		items := b.ItemsFor(d.ID)
		dj.Items = make([]itemJSON, 0, len(items))
		for _, it := range items {
			dj.Items = append(dj.Items, toItemJSON(it))
		}
		out.Days = append(out.Days, dj)
	}
	return out
}

type snapshotJSON struct {
	Title       string   `json:"title,omitempty"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Description string   `json:"description,omitempty"`
	Link        string   `json:"link,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Image       string   `json:"image,omitempty"`
	SourceID    string   `json:"sourceId,omitempty"`
}

func (s snapshotJSON) toDomain() domain.Snapshot {
	return domain.Snapshot{
		Title:       s.Title,
		Subtitle:    s.Subtitle,
		Description: s.Description,
		Link:        s.Link,
		Price:       s.Price,
		Image:       s.Image,
		SourceID:    s.SourceID,
	}
}

func toSnapshotJSON(s domain.Snapshot) snapshotJSON {
	return snapshotJSON{
		Title:       s.Title,
		Subtitle:    s.Subtitle,
		Description: s.Description,
		Link:        s.Link,
		Price:       s.Price,
		Image:       s.Image,
		SourceID:    s.SourceID,
	}
}

type rangeMetaJSON struct {
	RangeID       string              `json:"rangeId"`
	StartDayID    string              `json:"startDayId"`
	StartDayIndex int                 `json:"startDayIndex"`
	EndDayID      string              `json:"endDayId"`
	EndDayIndex   int                 `json:"endDayIndex"`
	StartDate     *openapi_types.Date `json:"startDate,omitempty"`
	EndDate       *openapi_types.Date `json:"endDate,omitempty"`
}

func toRangeMetaJSON(r domain.RangeMeta) *rangeMetaJSON {
	if r.RangeID == "" {
		return nil
	}
	return &rangeMetaJSON{
		RangeID:       string(r.RangeID),
		StartDayID:    string(r.StartDayID),
		StartDayIndex: r.StartDayIndex,
		EndDayID:      string(r.EndDayID),
		EndDayIndex:   r.EndDayIndex,
		StartDate:     toDate(r.StartDate),
		EndDate:       toDate(r.EndDate),
	}
}

func (r *rangeMetaJSON) toDomain() domain.RangeMeta {
	if r == nil {
		return domain.RangeMeta{}
	}
	return domain.RangeMeta{
		RangeID:       domain.RangeID(r.RangeID),
		StartDayID:    domain.DayID(r.StartDayID),
		StartDayIndex: r.StartDayIndex,
		EndDayID:      domain.DayID(r.EndDayID),
		EndDayIndex:   r.EndDayIndex,
		StartDate:     fromDate(r.StartDate),
		EndDate:       fromDate(r.EndDate),
	}
}

// detailsJSON is the flattened union of every item details variant.
type detailsJSON struct {
	Hours     int            `json:"hours,omitempty"`
	Days      int            `json:"days,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	StartTime string         `json:"startTime,omitempty"`
	EndTime   string         `json:"endTime,omitempty"`
	Text      string         `json:"text,omitempty"`
	Range     *rangeMetaJSON `json:"range,omitempty"`
}

func (d detailsJSON) toDomain(t domain.ItemType) domain.ItemDetails {
	switch t {
	case domain.ItemTypeTrip:
		return domain.TripDetails{Hours: d.Hours, Days: d.Days, Notes: d.Notes}
	case domain.ItemTypeHotel:
		return domain.HotelDetails{Range: d.Range.toDomain(), Notes: d.Notes}
	case domain.ItemTypeCar:
		return domain.CarDetails{Range: d.Range.toDomain(), Notes: d.Notes}
	case domain.ItemTypePOI:
		return domain.POIDetails{StartTime: d.StartTime, EndTime: d.EndTime}
	case domain.ItemTypeRecommendation:
		return domain.RecommendationDetails{Notes: d.Notes}
	case domain.ItemTypeNote:
		return domain.NoteDetails{Text: d.Text}
	default:
		return nil
	}
}

func toDetailsJSON(details domain.ItemDetails) detailsJSON {
	switch d := details.(type) {
	case domain.TripDetails:
		return detailsJSON{Hours: d.Hours, Days: d.Days, Notes: d.Notes}
	case domain.HotelDetails:
		return detailsJSON{Notes: d.Notes, Range: toRangeMetaJSON(d.Range)}
	case domain.CarDetails:
		return detailsJSON{Notes: d.Notes, Range: toRangeMetaJSON(d.Range)}
	case domain.POIDetails:
		return detailsJSON{StartTime: d.StartTime, EndTime: d.EndTime}
	case domain.RecommendationDetails:
		return detailsJSON{Notes: d.Notes}
	case domain.NoteDetails:
		return detailsJSON{Text: d.Text}
	default:
		return detailsJSON{}
	}
}

type itemJSON struct {
	ID         string       `json:"id"`
	DayID      string       `json:"dayId"`
	Type       string       `json:"type"`
	CatalogRef *string      `json:"catalogRef,omitempty"`
	Snapshot   snapshotJSON `json:"snapshot"`
	Details    detailsJSON  `json:"details"`
	SortOrder  int64        `json:"sortOrder"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func toItemJSON(it domain.PlanItem) itemJSON {
	out := itemJSON{
		ID:        string(it.ID),
		DayID:     string(it.DayID),
		Type:      string(it.Type),
		Snapshot:  toSnapshotJSON(it.Snapshot),
		Details:   toDetailsJSON(it.Details),
		SortOrder: it.SortOrder,
		CreatedAt: it.CreatedAt,
	}
	if it.CatalogRef != nil {
		ref := string(*it.CatalogRef)
		out.CatalogRef = &ref
	}
	return out
}

type addItemRequest struct {
	DayID      string       `json:"dayId" validate:"required"`
	Type       string       `json:"type" validate:"required"`
	CatalogRef string       `json:"catalogRef"`
	Snapshot   snapshotJSON `json:"snapshot"`
	Details    *detailsJSON `json:"details"`
}

func (req addItemRequest) toInput() itinerary.AddItemInput {
	t := domain.ItemType(req.Type)
	in := itinerary.AddItemInput{
		DayID:      domain.DayID(req.DayID),
		Type:       t,
		CatalogRef: req.CatalogRef,
		Snapshot:   req.Snapshot.toDomain(),
	}
	if req.Details != nil {
		in.Details = req.Details.toDomain(t)
	}
	return in
}

// updateItemRequest replaces the snapshot and/or details of an item. The item type is fixed,
// so details are decoded against the stored type.
type updateItemRequest struct {
	Snapshot nullable.Nullable[snapshotJSON] `json:"snapshot"`
	Details  nullable.Nullable[detailsJSON]  `json:"details"`
}

func (req updateItemRequest) toPatch(t domain.ItemType) itinerary.ItemDataPatch {
	return itinerary.ItemDataPatch{
		Snapshot: optional(req.Snapshot, snapshotJSON.toDomain),
		Details: optional(req.Details, func(d detailsJSON) domain.ItemDetails {
			return d.toDomain(t)
		}),
	}
}

type moveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type dropRequest struct {
	DayID string `json:"dayId" validate:"required"`
	Index int    `json:"index" validate:"min=0"`
}

type addRangeRequest struct {
	StartDayID string              `json:"startDayId" validate:"required"`
	EndDayID   string              `json:"endDayId" validate:"required"`
	Type       string              `json:"type" validate:"required"`
	CatalogRef string              `json:"catalogRef"`
	Snapshot   snapshotJSON        `json:"snapshot"`
	Notes      string              `json:"notes"`
	StartDate  *openapi_types.Date `json:"startDate"`
	EndDate    *openapi_types.Date `json:"endDate"`
}

func (req addRangeRequest) toInput() ranges.AddRangeInput {
	return ranges.AddRangeInput{
		StartDayID: domain.DayID(req.StartDayID),
		EndDayID:   domain.DayID(req.EndDayID),
		Type:       domain.ItemType(req.Type),
		CatalogRef: req.CatalogRef,
		Snapshot:   req.Snapshot.toDomain(),
		Notes:      req.Notes,
		StartDate:  fromDate(req.StartDate),
		EndDate:    fromDate(req.EndDate),
	}
}

type rangeJSON struct {
	ID    string        `json:"id"`
	Type  string        `json:"type"`
	Meta  rangeMetaJSON `json:"meta"`
	Items []itemJSON    `json:"items"`
}

func toRangeJSON(r ranges.Range) rangeJSON {
	out := rangeJSON{ID: string(r.ID), Type: string(r.Type), Items: make([]itemJSON, 0, len(r.Items))}
	if m := toRangeMetaJSON(r.Meta); m != nil {
		out.Meta = *m
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, toItemJSON(it))
	}
	return out
}

type costLineJSON struct {
	Key    string  `json:"key"`
	Type   string  `json:"type"`
	ItemID string  `json:"itemId"`
	Title  string  `json:"title,omitempty"`
	Nights int     `json:"nights,omitempty"`
	Days   int     `json:"days,omitempty"`
	Total  float64 `json:"total"`
	Priced bool    `json:"priced"`
}

type costsJSON struct {
	TripsTotal  float64        `json:"tripsTotal"`
	HotelsTotal float64        `json:"hotelsTotal"`
	CarsTotal   float64        `json:"carsTotal"`
	Total       float64        `json:"total"`
	Currency    string         `json:"currency"`
	People      int            `json:"people"`
	Lines       []costLineJSON `json:"lines"`
}

func toCostsJSON(b costs.Breakdown) costsJSON {
	out := costsJSON{
		TripsTotal:  b.TripsTotal,
		HotelsTotal: b.HotelsTotal,
		CarsTotal:   b.CarsTotal,
		Total:       b.Total,
		Currency:    b.Currency,
		People:      b.People,
		Lines:       make([]costLineJSON, 0, len(b.Lines)),
	}
	for _, l := range b.Lines {
		out.Lines = append(out.Lines, costLineJSON{
			Key:    l.Key,
			Type:   string(l.Type),
			ItemID: string(l.ItemID),
			Title:  l.Title,
			Nights: l.Nights,
			Days:   l.Days,
			Total:  l.Total,
			Priced: l.Priced,
		})
	}
	return out
}

type customerJSON struct {
	Name    string              `json:"name"`
	Email   openapi_types.Email `json:"email"`
	Phone   string              `json:"phone"`
	Country string              `json:"country"`
}

type bookingRequest struct {
	Customer customerJSON `json:"customer"`
	Note     string       `json:"note"`
}

func (req bookingRequest) toRequest(idemKey string) booking.Request {
	return booking.Request{
		Customer: booking.Customer{
			Name:    req.Customer.Name,
			Email:   string(req.Customer.Email),
			Phone:   req.Customer.Phone,
			Country: req.Customer.Country,
		},
		Note:           req.Note,
		IdempotencyKey: idempotencyKey(idemKey),
	}
}

type submissionJSON struct {
	Kind           string               `json:"kind"`
	Key            string               `json:"key"`
	ItemID         string               `json:"itemId"`
	CatalogRef     *string              `json:"catalogRef,omitempty"`
	Title          string               `json:"title"`
	StartDate      openapi_types.Date   `json:"startDate"`
	EndDate        openapi_types.Date   `json:"endDate"`
	Nights         int                  `json:"nights,omitempty"`
	Days           int                  `json:"days,omitempty"`
	Party          partyJSON            `json:"party"`
	EstimatedTotal float64              `json:"estimatedTotal"`
	Currency       string               `json:"currency"`
	Notes          string               `json:"notes,omitempty"`
	BookingID      string               `json:"bookingId,omitempty"`
	Error          *submissionErrorJSON `json:"error,omitempty"`
}

type submissionErrorJSON struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toSubmissionJSON(s booking.Submission) submissionJSON {
	out := submissionJSON{
		Kind:           string(s.Kind),
		Key:            s.Key,
		ItemID:         string(s.ItemID),
		Title:          s.Title,
		StartDate:      openapi_types.Date{Time: s.StartDate},
		EndDate:        openapi_types.Date{Time: s.EndDate},
		Nights:         s.Nights,
		Days:           s.Days,
		Party:          toPartyJSON(s.Party),
		EstimatedTotal: s.EstimatedTotal,
		Currency:       s.Currency,
		Notes:          s.Notes,
	}
	if s.CatalogRef != nil {
		ref := string(*s.CatalogRef)
		out.CatalogRef = &ref
	}
	return out
}

type bookingResultJSON struct {
	Accepted []submissionJSON `json:"accepted"`
	Replayed []submissionJSON `json:"replayed"`
	Failed   []submissionJSON `json:"failed"`
}

func optional[T, U any](n nullable.Nullable[T], conv func(T) U) itinerary.Optional[U] {
	if !n.IsSpecified() {
		return itinerary.Unspecified[U]()
	}
	if n.IsNull() {
		return itinerary.Null[U]()
	}
	return itinerary.Some(conv(n.MustGet()))
}

func same[T any](v T) T { return v }

func toDate(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}

func fromDate(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
