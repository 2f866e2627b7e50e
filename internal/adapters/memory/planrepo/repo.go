package planrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/planrepo"
)

// Repo is an in-memory implementation of planrepo.Repository.
// It is safe for concurrent use.
//
// Days are cascaded on plan deletion; items live in a separate repository and are removed
// by the itinerary service before days are dropped.
type Repo struct {
	mu sync.RWMutex

	plans     map[domain.PlanID]domain.Plan
	days      map[domain.DayID]domain.PlanDay
	dayIDsFor map[domain.PlanID][]domain.DayID
}

func NewRepo() *Repo {
	return &Repo{
		plans:     make(map[domain.PlanID]domain.Plan),
		days:      make(map[domain.DayID]domain.PlanDay),
		dayIDsFor: make(map[domain.PlanID][]domain.DayID),
	}
}

func (r *Repo) Create(ctx context.Context, p domain.Plan) error {
	_ = ctx
	if p.ID == "" {
		return planrepo.ErrAlreadyExists // treat empty ID as invalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[p.ID]; ok {
		return planrepo.ErrAlreadyExists
	}
	r.plans[p.ID] = clonePlan(p)
	return nil
}

func (r *Repo) Save(ctx context.Context, p domain.Plan) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[p.ID]; !ok {
		return planrepo.ErrNotFound
	}
	r.plans[p.ID] = clonePlan(p)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.PlanID) (domain.Plan, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plans[id]
	if !ok {
		return domain.Plan{}, planrepo.ErrNotFound
	}
	return clonePlan(p), nil
}

func (r *Repo) Delete(ctx context.Context, id domain.PlanID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return planrepo.ErrNotFound
	}
	r.dropDaysLocked(id)
	delete(r.plans, id)
	return nil
}

func (r *Repo) ListDays(ctx context.Context, planID domain.PlanID) ([]domain.PlanDay, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PlanDay, 0, len(r.dayIDsFor[planID]))
	for _, id := range r.dayIDsFor[planID] {
		out = append(out, cloneDay(r.days[id]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayIndex < out[j].DayIndex })
	return out, nil
}

func (r *Repo) GetDay(ctx context.Context, id domain.DayID) (domain.PlanDay, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.days[id]
	if !ok {
		return domain.PlanDay{}, planrepo.ErrDayNotFound
	}
	return cloneDay(d), nil
}

func (r *Repo) ReplaceDays(ctx context.Context, planID domain.PlanID, days []domain.PlanDay) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[planID]; !ok {
		return planrepo.ErrNotFound
	}
	for _, d := range days {
		if existing, ok := r.days[d.ID]; ok && existing.PlanID != planID {
			return planrepo.ErrAlreadyExists
		}
	}
	r.dropDaysLocked(planID)
	ids := make([]domain.DayID, 0, len(days))
	for _, d := range days {
		d.PlanID = planID
		r.days[d.ID] = cloneDay(d)
		ids = append(ids, d.ID)
	}
	r.dayIDsFor[planID] = ids
	return nil
}

func (r *Repo) UpdateDay(ctx context.Context, d domain.PlanDay) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.days[d.ID]
	if !ok {
		return planrepo.ErrDayNotFound
	}
	existing.City = cloneStringPtr(d.City)
	existing.Notes = d.Notes
	r.days[d.ID] = existing
	return nil
}

func (r *Repo) dropDaysLocked(planID domain.PlanID) {
	for _, id := range r.dayIDsFor[planID] {
		delete(r.days, id)
	}
	delete(r.dayIDsFor, planID)
}

func clonePlan(p domain.Plan) domain.Plan {
	cp := p
	cp.StartDate = cloneTimePtr(p.StartDate)
	cp.EndDate = cloneTimePtr(p.EndDate)
	return cp
}

func cloneDay(d domain.PlanDay) domain.PlanDay {
	cp := d
	cp.Date = cloneTimePtr(d.Date)
	cp.City = cloneStringPtr(d.City)
	return cp
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
