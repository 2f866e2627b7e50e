package itinerary

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apperr"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/itemrepo"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/planrepo"
)

// AddItem attaches a single-day item to a day. Hotel and car stays spanning days go through
// the range manager.
func (s *Service) AddItem(ctx context.Context, in AddItemInput) (domain.PlanItem, error) {
	if !in.Type.Valid() {
		return domain.PlanItem{}, apperr.Validation("INVALID_ITEM_TYPE", "unknown item type", map[string]any{"type": string(in.Type)})
	}
	details := in.Details
	if details == nil {
		details = domain.EmptyDetails(in.Type)
	}
	if details.ItemType() != in.Type {
		return domain.PlanItem{}, detailsMismatch(in.Type, details)
	}
	if in.Type.RangeLinked() {
		if _, ok := (domain.PlanItem{Details: details}).Range(); ok {
			return domain.PlanItem{}, apperr.Validation("VALIDATION_ERROR", "range metadata is assigned by the range manager", map[string]any{"range": "must be empty"})
		}
	}

	day, err := s.plans.GetDay(ctx, in.DayID)
	if err != nil {
		if errors.Is(err, planrepo.ErrDayNotFound) {
			return domain.PlanItem{}, apperr.Validation("DAY_NOT_FOUND", "day does not exist", map[string]any{"dayId": string(in.DayID)})
		}
		return domain.PlanItem{}, apperr.Transport("get day", err)
	}

	ref, snap := ResolveCatalogRef(in.CatalogRef, in.Snapshot)
	if err := validateItemContent(in.Type, ref, snap, details); err != nil {
		return domain.PlanItem{}, err
	}

	it := domain.PlanItem{
		ID:         s.newItemID(),
		DayID:      day.ID,
		Type:       in.Type,
		CatalogRef: ref,
		Snapshot:   snap,
		Details:    details,
		SortOrder:  s.NextSortOrder(),
		CreatedAt:  s.clock.Now().UTC(),
	}
	if err := s.items.Insert(ctx, it); err != nil {
		return domain.PlanItem{}, apperr.Transport("insert item", err)
	}
	return it, nil
}

// UpdateDayFields applies a partial update to a day's city override and notes.
func (s *Service) UpdateDayFields(ctx context.Context, dayID domain.DayID, in DayPatch) (domain.PlanDay, error) {
	d, err := s.plans.GetDay(ctx, dayID)
	if err != nil {
		if errors.Is(err, planrepo.ErrDayNotFound) {
			return domain.PlanDay{}, dayNotFound()
		}
		return domain.PlanDay{}, apperr.Transport("get day", err)
	}
	if in.City.IsSpecified() {
		d.City = nil
		if city := domain.NormalizeHumanName(in.City.Value()); !in.City.IsNull() && city != "" {
			d.City = &city
		}
	}
	if in.Notes.IsSpecified() {
		d.Notes = ""
		if !in.Notes.IsNull() {
			d.Notes = strings.TrimSpace(in.Notes.Value())
		}
	}
	if err := s.plans.UpdateDay(ctx, d); err != nil {
		if errors.Is(err, planrepo.ErrDayNotFound) {
			return domain.PlanDay{}, dayNotFound()
		}
		return domain.PlanDay{}, apperr.Transport("update day", err)
	}
	return d, nil
}

// GetItem returns one item.
func (s *Service) GetItem(ctx context.Context, itemID domain.ItemID) (domain.PlanItem, error) {
	it, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, itemrepo.ErrNotFound) {
			return domain.PlanItem{}, itemNotFound()
		}
		return domain.PlanItem{}, apperr.Transport("get item", err)
	}
	return it, nil
}

// UpdateItemData replaces an item's snapshot and/or details. The item type never changes and
// range metadata of a range row is kept as stored. Editing a range row applies the change to
// every row of the range.
func (s *Service) UpdateItemData(ctx context.Context, itemID domain.ItemID, in ItemDataPatch) (domain.PlanItem, error) {
	it, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, itemrepo.ErrNotFound) {
			return domain.PlanItem{}, itemNotFound()
		}
		return domain.PlanItem{}, apperr.Transport("get item", err)
	}

	if in.Snapshot.IsSpecified() {
		it.Snapshot = domain.Snapshot{SourceID: it.Snapshot.SourceID}
		if !in.Snapshot.IsNull() {
			snap := in.Snapshot.Value()
			if snap.SourceID == "" {
				snap.SourceID = it.Snapshot.SourceID
			}
			it.Snapshot = snap
		}
	}
	if in.Details.IsSpecified() {
		details := domain.EmptyDetails(it.Type)
		if !in.Details.IsNull() && in.Details.Value() != nil {
			details = in.Details.Value()
		}
		if details.ItemType() != it.Type {
			return domain.PlanItem{}, detailsMismatch(it.Type, details)
		}
		if rm, ok := it.Range(); ok {
			details = domain.WithRange(details, rm)
		}
		it.Details = details
	}
	if err := validateItemContent(it.Type, it.CatalogRef, it.Snapshot, it.Details); err != nil {
		return domain.PlanItem{}, err
	}

	rows := []domain.PlanItem{it}
	if rm, ok := it.Range(); ok {
		if rows, err = s.items.ListByRange(ctx, rm.RangeID); err != nil {
			return domain.PlanItem{}, apperr.Transport("list range", err)
		}
	}
	for _, row := range rows {
		row.Snapshot = it.Snapshot
		row.Details = it.Details
		if err := s.items.UpdateData(ctx, row); err != nil {
			if errors.Is(err, itemrepo.ErrNotFound) {
				return domain.PlanItem{}, itemNotFound()
			}
			return domain.PlanItem{}, apperr.Transport("update item", err)
		}
	}
	return it, nil
}

// DeleteItem removes one item, or the whole range when the item is a range row.
// Deleting an item that does not exist succeeds.
func (s *Service) DeleteItem(ctx context.Context, itemID domain.ItemID) error {
	it, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, itemrepo.ErrNotFound) {
			return nil
		}
		return apperr.Transport("get item", err)
	}
	if rm, ok := it.Range(); ok {
		if _, err := s.items.DeleteByRange(ctx, rm.RangeID); err != nil {
			return apperr.Transport("delete range", err)
		}
		return nil
	}
	if err := s.items.Delete(ctx, itemID); err != nil && !errors.Is(err, itemrepo.ErrNotFound) {
		return apperr.Transport("delete item", err)
	}
	return nil
}

// ResolveCatalogRef splits a raw catalog identifier into a well-formed reference, or folds it
// into the snapshot's SourceID when it is not one. The identifier is never dropped.
func ResolveCatalogRef(raw string, snap domain.Snapshot) (*domain.CatalogRef, domain.Snapshot) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, snap
	}
	if u, err := uuid.Parse(raw); err == nil {
		ref := domain.CatalogRef(u.String())
		return &ref, snap
	}
	if snap.SourceID == "" {
		snap.SourceID = raw
	}
	return nil, snap
}

func validateItemContent(t domain.ItemType, ref *domain.CatalogRef, snap domain.Snapshot, details domain.ItemDetails) error {
	if t == domain.ItemTypeNote {
		if nd, _ := details.(domain.NoteDetails); strings.TrimSpace(nd.Text) == "" && strings.TrimSpace(snap.Title) == "" {
			return apperr.Validation("VALIDATION_ERROR", "note is empty", map[string]any{"text": "must be non-empty"})
		}
		return nil
	}
	if ref == nil && snap.SourceID == "" && strings.TrimSpace(snap.Title) == "" {
		return apperr.Validation("CATALOG_REF_REQUIRED", "item needs a catalog reference or a title", map[string]any{
			"catalogRef": "must be set when the snapshot has no title",
		})
	}
	if pd, ok := details.(domain.POIDetails); ok {
		if !validClock(pd.StartTime) || !validClock(pd.EndTime) {
			return apperr.Validation("VALIDATION_ERROR", "invalid schedule", map[string]any{"startTime": pd.StartTime, "endTime": pd.EndTime})
		}
		if pd.StartTime != "" && pd.EndTime != "" && pd.EndTime < pd.StartTime {
			return apperr.Validation("VALIDATION_ERROR", "invalid schedule", map[string]any{"endTime": "must not be before startTime"})
		}
	}
	return nil
}

// validClock accepts blank or a 24h "HH:MM" value.
func validClock(s string) bool {
	if s == "" {
		return true
	}
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h < 24 && m < 60
}

func detailsMismatch(t domain.ItemType, d domain.ItemDetails) error {
	return apperr.Validation("DETAILS_TYPE_MISMATCH", "details do not match the item type", map[string]any{
		"type":    string(t),
		"details": string(d.ItemType()),
	})
}

func dayNotFound() error {
	return apperr.NotFound("DAY_NOT_FOUND", "day not found")
}

func itemNotFound() error {
	return apperr.NotFound("ITEM_NOT_FOUND", "item not found")
}
