package itemrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/itemrepo"
)

// Repo is an in-memory implementation of itemrepo.Repository.
// It is safe for concurrent use. Multi-row writes are applied under one lock and are all-or-nothing.
type Repo struct {
	mu sync.RWMutex

	byID   map[domain.ItemID]domain.PlanItem
	ranges map[domain.RangeID]itemrepo.Range
}

func NewRepo() *Repo {
	return &Repo{
		byID:   make(map[domain.ItemID]domain.PlanItem),
		ranges: make(map[domain.RangeID]itemrepo.Range),
	}
}

func (r *Repo) Insert(ctx context.Context, it domain.PlanItem) error {
	_ = ctx
	if it.ID == "" {
		return itemrepo.ErrAlreadyExists // treat empty ID as invalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[it.ID]; ok {
		return itemrepo.ErrAlreadyExists
	}
	r.byID[it.ID] = cloneItem(it)
	return nil
}

func (r *Repo) InsertRange(ctx context.Context, rg itemrepo.Range, items []domain.PlanItem) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ranges[rg.ID]; ok {
		return itemrepo.ErrAlreadyExists
	}
	seen := make(map[domain.ItemID]struct{}, len(items))
	for _, it := range items {
		if it.ID == "" {
			return itemrepo.ErrAlreadyExists
		}
		if _, ok := r.byID[it.ID]; ok {
			return itemrepo.ErrAlreadyExists
		}
		if _, ok := seen[it.ID]; ok {
			return itemrepo.ErrAlreadyExists
		}
		seen[it.ID] = struct{}{}
	}
	r.ranges[rg.ID] = rg
	for _, it := range items {
		r.byID[it.ID] = cloneItem(it)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ItemID) (domain.PlanItem, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.byID[id]
	if !ok {
		return domain.PlanItem{}, itemrepo.ErrNotFound
	}
	return cloneItem(it), nil
}

func (r *Repo) ListByDays(ctx context.Context, dayIDs []domain.DayID) ([]domain.PlanItem, error) {
	_ = ctx
	want := make(map[domain.DayID]struct{}, len(dayIDs))
	for _, id := range dayIDs {
		want[id] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PlanItem, 0)
	for _, it := range r.byID {
		if _, ok := want[it.DayID]; ok {
			out = append(out, cloneItem(it))
		}
	}
	sortItems(out)
	return out, nil
}

func (r *Repo) ListByRange(ctx context.Context, id domain.RangeID) ([]domain.PlanItem, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PlanItem, 0)
	for _, it := range r.byID {
		if rm, ok := it.Range(); ok && rm.RangeID == id {
			out = append(out, cloneItem(it))
		}
	}
	sortItems(out)
	return out, nil
}

func (r *Repo) UpdateData(ctx context.Context, it domain.PlanItem) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[it.ID]
	if !ok {
		return itemrepo.ErrNotFound
	}
	upd := cloneItem(it)
	existing.Snapshot = upd.Snapshot
	existing.Details = upd.Details
	r.byID[it.ID] = existing
	return nil
}

func (r *Repo) UpdatePositions(ctx context.Context, ps []itemrepo.Position) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range ps {
		if _, ok := r.byID[p.ItemID]; !ok {
			return itemrepo.ErrNotFound
		}
	}
	for _, p := range ps {
		it := r.byID[p.ItemID]
		it.DayID = p.DayID
		it.SortOrder = p.SortOrder
		r.byID[p.ItemID] = it
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.ItemID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return itemrepo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Repo) DeleteByRange(ctx context.Context, id domain.RangeID) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for itemID, it := range r.byID {
		if rm, ok := it.Range(); ok && rm.RangeID == id {
			delete(r.byID, itemID)
			n++
		}
	}
	delete(r.ranges, id)
	return n, nil
}

func (r *Repo) DeleteByDays(ctx context.Context, dayIDs []domain.DayID) error {
	_ = ctx
	drop := make(map[domain.DayID]struct{}, len(dayIDs))
	for _, id := range dayIDs {
		drop[id] = struct{}{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for itemID, it := range r.byID {
		if _, ok := drop[it.DayID]; ok {
			delete(r.byID, itemID)
		}
	}
	for id, rg := range r.ranges {
		_, start := drop[rg.Meta.StartDayID]
		_, end := drop[rg.Meta.EndDayID]
		if start || end {
			delete(r.ranges, id)
		}
	}
	return nil
}

func sortItems(items []domain.PlanItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return string(a.ID) < string(b.ID)
	})
}

func cloneItem(it domain.PlanItem) domain.PlanItem {
	cp := it
	if it.CatalogRef != nil {
		v := *it.CatalogRef
		cp.CatalogRef = &v
	}
	if it.Snapshot.Price != nil {
		v := *it.Snapshot.Price
		cp.Snapshot.Price = &v
	}
	switch d := it.Details.(type) {
	case domain.HotelDetails:
		d.Range = cloneRange(d.Range)
		cp.Details = d
	case domain.CarDetails:
		d.Range = cloneRange(d.Range)
		cp.Details = d
	}
	return cp
}

func cloneRange(r domain.RangeMeta) domain.RangeMeta {
	cp := r
	cp.StartDate = cloneTimePtr(r.StartDate)
	cp.EndDate = cloneTimePtr(r.EndDate)
	return cp
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
