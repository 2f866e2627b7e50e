package ordering_test

import (
	"context"
	"testing"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apptest"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/ordering"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

func TestRegistry_OneControllerPerPlan(t *testing.T) {
	t.Parallel()

	env := apptest.NewEnv(t)
	reg := ordering.NewRegistry(env.Itinerary, env.Items)

	a := reg.Open("plan-a")
	if reg.Open("plan-a") != a {
		t.Fatalf("Open() returned a different controller for the same plan")
	}
	if reg.Open("plan-b") == a {
		t.Fatalf("Open() shared a controller across plans")
	}
	reg.Close("plan-a")
	if reg.Open("plan-a") == a {
		t.Fatalf("Open() after Close() returned the closed controller")
	}
}

func TestRegistry_InvalidateReloadsBoard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := apptest.NewEnv(t)
	p, days := env.SeedPlan(t, jul1, 1, domain.Party{Adults: 2})
	first := env.AddItem(t, days[0].ID, domain.ItemTypeNote, "A")
	env.AddItem(t, days[0].ID, domain.ItemTypeNote, "B")

	reg := ordering.NewRegistry(env.Itinerary, env.Items)
	ctl := reg.Open(p.ID)
	if _, err := ctl.Load(ctx); err != nil {
		t.Fatalf("Load() err=%v", err)
	}

	env.AddItem(t, days[0].ID, domain.ItemTypeNote, "C")
	reg.Invalidate(p.ID)

	// Moving the first item up is a no-op but still observes the reload.
	b, err := ctl.MoveUp(ctx, first.ID)
	if err != nil {
		t.Fatalf("MoveUp() err=%v", err)
	}
	if got := titles(b.ItemsFor(days[0].ID)); !equal(got, []string{"A", "B", "C"}) {
		t.Fatalf("items=%v, want [A B C]", got)
	}
}
