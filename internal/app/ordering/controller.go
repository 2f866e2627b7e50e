// Package ordering owns the in-memory day board of one open plan and persists reorders.
package ordering

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apperr"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/itemrepo"
)

// BoardLoader reads a plan's full board.
type BoardLoader interface {
	LoadBoard(ctx context.Context, planID domain.PlanID) (domain.Board, error)
}

// PositionWriter persists item positions in one call.
type PositionWriter interface {
	UpdatePositions(ctx context.Context, ps []itemrepo.Position) error
}

// Controller is the board of one open plan. Every interaction renumbers the affected
// partitions, persists the changed positions and reloads the board wholesale.
// It is safe for concurrent use; interactions are serialised.
type Controller struct {
	planID    domain.PlanID
	loader    BoardLoader
	positions PositionWriter
	log       zerolog.Logger

	mu     sync.Mutex
	board  domain.Board
	loaded bool
}

func NewController(planID domain.PlanID, loader BoardLoader, positions PositionWriter) *Controller {
	return &Controller{
		planID:    planID,
		loader:    loader,
		positions: positions,
		log:       zerolog.Nop(),
	}
}

// WithLogger sets the controller logger and returns the controller.
func (c *Controller) WithLogger(l zerolog.Logger) *Controller {
	c.log = l.With().Str("component", "ordering").Str("planId", string(c.planID)).Logger()
	return c
}

// Load replaces the board with a fresh read.
func (c *Controller) Load(ctx context.Context) (domain.Board, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

// Invalidate marks the board stale; the next interaction reloads it first.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}

// Board returns the last loaded board.
func (c *Controller) Board() domain.Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board
}

// Partition returns one band of a day in display order.
func (c *Controller) Partition(dayID domain.DayID, p Partition) []domain.PlanItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return partitionItems(c.board, dayID, p)
}

// MoveUp swaps an item with its predecessor in the same band. It is a no-op for the first item.
func (c *Controller) MoveUp(ctx context.Context, itemID domain.ItemID) (domain.Board, error) {
	return c.swap(ctx, itemID, -1)
}

// MoveDown swaps an item with its successor in the same band. It is a no-op for the last item.
func (c *Controller) MoveDown(ctx context.Context, itemID domain.ItemID) (domain.Board, error) {
	return c.swap(ctx, itemID, +1)
}

// Drop moves an item to position toIndex of its band on day toDayID, which may be its own day.
// toIndex is clamped to the band. Rows of a hotel or car range only reorder within their day.
func (c *Controller) Drop(ctx context.Context, itemID domain.ItemID, toDayID domain.DayID, toIndex int) (domain.Board, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, err := c.findLocked(ctx, itemID)
	if err != nil {
		return domain.Board{}, err
	}
	if _, ok := c.board.Day(toDayID); !ok {
		return domain.Board{}, apperr.Validation("DAY_NOT_FOUND", "day is not part of this plan", map[string]any{"dayId": string(toDayID)})
	}
	// A range row belongs to its day; only its position within the day may change.
	if rm, ok := it.Range(); ok && toDayID != it.DayID {
		return domain.Board{}, apperr.Validation("RANGE_ROW_PINNED", "range rows cannot move to another day", map[string]any{
			"itemId":  string(itemID),
			"rangeId": string(rm.RangeID),
		})
	}
	p := PartitionOf(it.Type)

	src := without(partitionItems(c.board, it.DayID, p), itemID)
	dst := src
	if toDayID != it.DayID {
		dst = partitionItems(c.board, toDayID, p)
	}
	toIndex = min(max(toIndex, 0), len(dst))
	moved := it
	moved.DayID = toDayID
	dst = append(dst[:toIndex:toIndex], append([]domain.PlanItem{moved}, dst[toIndex:]...)...)

	changes := renumber(dst, p, itemID)
	if toDayID != it.DayID {
		changes = append(changes, renumber(src, p, "")...)
	}
	return c.persistLocked(ctx, changes)
}

func (c *Controller) swap(ctx context.Context, itemID domain.ItemID, delta int) (domain.Board, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, err := c.findLocked(ctx, itemID)
	if err != nil {
		return domain.Board{}, err
	}
	p := PartitionOf(it.Type)
	items := partitionItems(c.board, it.DayID, p)
	i := indexOf(items, itemID)
	j := i + delta
	if j < 0 || j >= len(items) {
		return c.board, nil
	}
	items[i], items[j] = items[j], items[i]
	return c.persistLocked(ctx, renumber(items, p, ""))
}

func (c *Controller) persistLocked(ctx context.Context, changes []itemrepo.Position) (domain.Board, error) {
	if len(changes) > 0 {
		if err := c.positions.UpdatePositions(ctx, changes); err != nil {
			if _, lerr := c.loadLocked(ctx); lerr != nil {
				c.log.Warn().Err(lerr).Msg("board reload after failed reorder")
			}
			if errors.Is(err, itemrepo.ErrNotFound) {
				return domain.Board{}, apperr.NotFound("ITEM_NOT_FOUND", "item not found")
			}
			return domain.Board{}, apperr.Transport("update positions", err)
		}
		c.log.Debug().Int("positions", len(changes)).Msg("positions persisted")
	}
	return c.loadLocked(ctx)
}

func (c *Controller) loadLocked(ctx context.Context) (domain.Board, error) {
	b, err := c.loader.LoadBoard(ctx, c.planID)
	if err != nil {
		return domain.Board{}, err
	}
	c.board = b
	c.loaded = true
	return b, nil
}

// findLocked looks the item up on the board, reloading once when it is not there.
func (c *Controller) findLocked(ctx context.Context, itemID domain.ItemID) (domain.PlanItem, error) {
	if c.loaded {
		if it, ok := findItem(c.board, itemID); ok {
			return it, nil
		}
	}
	if _, err := c.loadLocked(ctx); err != nil {
		return domain.PlanItem{}, err
	}
	if it, ok := findItem(c.board, itemID); ok {
		return it, nil
	}
	return domain.PlanItem{}, apperr.NotFound("ITEM_NOT_FOUND", "item not found")
}

// renumber assigns base + i*Step in list order and returns the positions that changed.
// The position of force is always returned.
func renumber(items []domain.PlanItem, p Partition, force domain.ItemID) []itemrepo.Position {
	var out []itemrepo.Position
	for i, it := range items {
		so := p.Base() + int64(i)*Step
		if so == it.SortOrder && it.ID != force {
			continue
		}
		out = append(out, itemrepo.Position{ItemID: it.ID, DayID: it.DayID, SortOrder: so})
	}
	return out
}

func partitionItems(b domain.Board, dayID domain.DayID, p Partition) []domain.PlanItem {
	var out []domain.PlanItem
	for _, it := range b.ItemsFor(dayID) {
		if PartitionOf(it.Type) == p {
			out = append(out, it)
		}
	}
	return out
}

func findItem(b domain.Board, id domain.ItemID) (domain.PlanItem, bool) {
	for _, items := range b.Items {
		for _, it := range items {
			if it.ID == id {
				return it, true
			}
		}
	}
	return domain.PlanItem{}, false
}

func indexOf(items []domain.PlanItem, id domain.ItemID) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func without(items []domain.PlanItem, id domain.ItemID) []domain.PlanItem {
	out := make([]domain.PlanItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
