package board

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/gridboard/layout"
)

func placement(id string, ref layout.AreaRef, x, y int) layout.Placement {
	return layout.Placement{
		ItemID:     id,
		Area:       ref,
		Breakpoint: layout.BreakpointLG,
		Shape:      layout.Shape{Location: layout.Location{X: x, Y: y}, Size: layout.Size{Width: 1, Height: 1}},
	}
}

func TestCoordinatorSameAreaAdd(t *testing.T) {
	b := testBoard()
	c := NewCoordinator(b, nil)

	c.HandleAdd(placement("A", mainRef, 0, 0))
	it, _ := b.Item("A")
	if it.ShapeFor(layout.BreakpointLG).Size.Width != 1 {
		t.Fatalf("shape not recorded: %+v", it.Shape)
	}
	if diff := cmp.Diff([]layout.AreaRef{mainRef}, c.Pending()); diff != "" {
		t.Fatalf("pending (-want +got):\n%s", diff)
	}

	c.Drain()
	c.HandleAdd(placement("A", mainRef, 0, 0))
	if len(c.Pending()) != 0 {
		t.Fatalf("unchanged shape must not schedule: %v", c.Pending())
	}
}

func TestCoordinatorCrossAreaAdd(t *testing.T) {
	b := testBoard()
	c := NewCoordinator(b, nil)

	c.HandleAdd(placement("B", mediaRef, 3, 1))
	if owner, _ := b.Owner("B"); owner != mediaRef {
		t.Fatalf("owner=%s want %s", owner, mediaRef)
	}
	media, _ := b.Area(mediaRef)
	if len(media.Apps) != 1 || media.Apps[0].ShapeFor(layout.BreakpointLG).Location != (layout.Location{X: 3, Y: 1}) {
		t.Fatalf("destination list: %+v", media.Apps)
	}
	c.Schedule(mainRef)
	if diff := cmp.Diff([]layout.AreaRef{mainRef, mediaRef}, c.Drain()); diff != "" {
		t.Fatalf("drained (-want +got):\n%s", diff)
	}
	if len(c.Pending()) != 0 {
		t.Fatalf("drain must clear pending")
	}
}

func TestCoordinatorIgnoresUnknownItems(t *testing.T) {
	b := testBoard()
	c := NewCoordinator(b, nil)
	c.HandleAdd(placement("ghost", mainRef, 0, 0))
	c.HandleChange(placement("ghost", mainRef, 0, 0))
	if len(c.Pending()) != 0 || len(b.Items()) != 3 {
		t.Fatalf("unknown item must not touch the model")
	}
}

// change 事件若来自非所属区域，按跨区域放入处理。
func TestCoordinatorChangeFromOtherArea(t *testing.T) {
	b := testBoard()
	c := NewCoordinator(b, nil)
	c.HandleChange(placement("S", mainRef, 4, 0))
	if owner, _ := b.Owner("S"); owner != mainRef {
		t.Fatalf("owner=%s want %s", owner, mainRef)
	}
	if diff := cmp.Diff([]layout.AreaRef{sideRef, mainRef}, c.Pending()); diff != "" {
		t.Fatalf("pending (-want +got):\n%s", diff)
	}
}

func TestCoordinatorMoveToUnknownArea(t *testing.T) {
	b := testBoard()
	c := NewCoordinator(b, nil)
	missing := layout.AreaRef{Type: layout.AreaCategory, ID: "missing"}
	c.HandleAdd(placement("A", missing, 0, 0))
	if owner, _ := b.Owner("A"); owner != mainRef {
		t.Fatalf("rejected move must keep the owner, got %s", owner)
	}
}

func TestCoordinatorHoldIgnoresPlacements(t *testing.T) {
	b := testBoard()
	c := NewCoordinator(b, nil)

	release := c.Hold()
	inner := c.Hold()
	c.HandleAdd(placement("A", mainRef, 5, 5))
	c.HandleChange(placement("B", mediaRef, 0, 0))
	inner()
	c.HandleAdd(placement("A", mainRef, 5, 5))
	if it, _ := b.Item("A"); it.ShapeFor(layout.BreakpointLG).Location != (layout.Location{}) {
		t.Fatalf("held coordinator wrote %+v", it.Shape)
	}
	if owner, _ := b.Owner("B"); owner != mainRef || len(c.Pending()) != 0 {
		t.Fatalf("held coordinator must not move or schedule")
	}

	release()
	if c.Held() {
		t.Fatalf("release must end the hold")
	}
	c.HandleAdd(placement("A", mainRef, 5, 5))
	if it, _ := b.Item("A"); it.ShapeFor(layout.BreakpointLG).Location != (layout.Location{X: 5, Y: 5}) {
		t.Fatalf("placement after release not recorded: %+v", it.Shape)
	}
}
