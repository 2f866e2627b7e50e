package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// itemDataDoc is the persisted shape of an item's attached data payload.
type itemDataDoc struct {
	Title       string   `json:"title,omitempty"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Description string   `json:"description,omitempty"`
	Link        string   `json:"link,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Image       string   `json:"image,omitempty"`
	SourceID    string   `json:"source_id,omitempty"`

	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Text      string `json:"text,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Hours     int    `json:"hours,omitempty"`
	Days      int    `json:"days,omitempty"`

	Range *rangeDoc `json:"range,omitempty"`
}

type rangeDoc struct {
	RangeID       string `json:"range_id"`
	StartDayID    string `json:"start_day_id"`
	StartDayIndex int    `json:"start_day_index"`
	EndDayID      string `json:"end_day_id"`
	EndDayIndex   int    `json:"end_day_index"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

// MarshalItemData encodes a snapshot and its type-specific details into the persisted payload.
func MarshalItemData(s Snapshot, details ItemDetails) ([]byte, error) {
	doc := itemDataDoc{
		Title:       s.Title,
		Subtitle:    s.Subtitle,
		Description: s.Description,
		Link:        s.Link,
		Price:       s.Price,
		Image:       s.Image,
		SourceID:    s.SourceID,
	}
	switch d := details.(type) {
	case TripDetails:
		doc.Hours, doc.Days, doc.Notes = d.Hours, d.Days, d.Notes
	case HotelDetails:
		doc.Notes = d.Notes
		doc.Range = toRangeDoc(d.Range)
	case CarDetails:
		doc.Notes = d.Notes
		doc.Range = toRangeDoc(d.Range)
	case POIDetails:
		doc.StartTime, doc.EndTime = d.StartTime, d.EndTime
	case RecommendationDetails:
		doc.Notes = d.Notes
	case NoteDetails:
		doc.Text = d.Text
	case nil:
	default:
		return nil, fmt.Errorf("unsupported item details %T", details)
	}
	return json.Marshal(doc)
}

// UnmarshalItemData decodes a persisted payload for an item of type t.
func UnmarshalItemData(t ItemType, raw []byte) (Snapshot, ItemDetails, error) {
	var doc itemDataDoc
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return Snapshot{}, nil, fmt.Errorf("decode item data: %w", err)
		}
	}
	s := Snapshot{
		Title:       doc.Title,
		Subtitle:    doc.Subtitle,
		Description: doc.Description,
		Link:        doc.Link,
		Price:       doc.Price,
		Image:       doc.Image,
		SourceID:    doc.SourceID,
	}
	switch t {
	case ItemTypeTrip:
		return s, TripDetails{Hours: doc.Hours, Days: doc.Days, Notes: doc.Notes}, nil
	case ItemTypeHotel:
		return s, HotelDetails{Range: fromRangeDoc(doc.Range), Notes: doc.Notes}, nil
	case ItemTypeCar:
		return s, CarDetails{Range: fromRangeDoc(doc.Range), Notes: doc.Notes}, nil
	case ItemTypePOI:
		return s, POIDetails{StartTime: doc.StartTime, EndTime: doc.EndTime}, nil
	case ItemTypeRecommendation:
		return s, RecommendationDetails{Notes: doc.Notes}, nil
	case ItemTypeNote:
		return s, NoteDetails{Text: doc.Text}, nil
	default:
		return Snapshot{}, nil, fmt.Errorf("unknown item type %q", t)
	}
}

func toRangeDoc(r RangeMeta) *rangeDoc {
	if r.RangeID == "" {
		return nil
	}
	return &rangeDoc{
		RangeID:       string(r.RangeID),
		StartDayID:    string(r.StartDayID),
		StartDayIndex: r.StartDayIndex,
		EndDayID:      string(r.EndDayID),
		EndDayIndex:   r.EndDayIndex,
		StartDate:     formatDate(r.StartDate),
		EndDate:       formatDate(r.EndDate),
	}
}

func fromRangeDoc(d *rangeDoc) RangeMeta {
	if d == nil {
		return RangeMeta{}
	}
	return RangeMeta{
		RangeID:       RangeID(d.RangeID),
		StartDayID:    DayID(d.StartDayID),
		StartDayIndex: d.StartDayIndex,
		EndDayID:      DayID(d.EndDayID),
		EndDayIndex:   d.EndDayIndex,
		StartDate:     parseDate(d.StartDate),
		EndDate:       parseDate(d.EndDate),
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

// Malformed dates are treated as blank so the caller falls back to day dates.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
