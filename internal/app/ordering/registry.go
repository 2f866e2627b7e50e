package ordering

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// Registry hands out the single Controller of each open plan.
type Registry struct {
	loader    BoardLoader
	positions PositionWriter
	log       zerolog.Logger

	mu   sync.Mutex
	open map[domain.PlanID]*Controller
}

func NewRegistry(loader BoardLoader, positions PositionWriter) *Registry {
	return &Registry{
		loader:    loader,
		positions: positions,
		log:       zerolog.Nop(),
		open:      make(map[domain.PlanID]*Controller),
	}
}

// WithLogger sets the logger handed to every controller and returns the registry.
func (r *Registry) WithLogger(l zerolog.Logger) *Registry {
	r.log = l
	return r
}

// Open returns the plan's controller, creating it on first use.
func (r *Registry) Open(planID domain.PlanID) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.open[planID]
	if !ok {
		c = NewController(planID, r.loader, r.positions).WithLogger(r.log)
		r.open[planID] = c
	}
	return c
}

// Invalidate marks an open plan's board stale after a write made outside its controller.
func (r *Registry) Invalidate(planID domain.PlanID) {
	r.mu.Lock()
	c, ok := r.open[planID]
	r.mu.Unlock()
	if ok {
		c.Invalidate()
	}
}

// Close forgets the plan's controller.
func (r *Registry) Close(planID domain.PlanID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.open, planID)
}
