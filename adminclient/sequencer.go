package adminclient

import (
	"errors"
	"math"

	"portfolio-api/domain"
)

// DragState is the sequencer's gesture state. Only one drag can be active at a
// time; the state machine tracks a single source index.
type DragState int

const (
	Idle DragState = iota
	Dragging
)

var (
	errAlreadyDragging = errors.New("a drag is already active")
	errIndexOutOfRange = errors.New("index out of range")
)

// Sequencer converts pointer and keyboard gestures over a rendered, sorted
// list into permutations. It holds the currently displayed sequence; the
// caller renders from Items and feeds UI events back in.
type Sequencer[T any] struct {
	items  []T
	state  DragState
	source int
}

func NewSequencer[T any](items []T) *Sequencer[T] {
	s := &Sequencer[T]{items: make([]T, len(items))}
	copy(s.items, items)
	return s
}

func (s *Sequencer[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Sequencer[T]) State() DragState { return s.state }

// SetItems replaces the displayed sequence, e.g. after a refetch. Any active
// drag is cancelled.
func (s *Sequencer[T]) SetItems(items []T) {
	s.items = make([]T, len(items))
	copy(s.items, items)
	s.state = Idle
}

// Start begins a drag from the given index.
func (s *Sequencer[T]) Start(sourceIndex int) error {
	if s.state == Dragging {
		return errAlreadyDragging
	}
	if sourceIndex < 0 || sourceIndex >= len(s.items) {
		return errIndexOutOfRange
	}
	s.state = Dragging
	s.source = sourceIndex
	return nil
}

// Hover picks the candidate target index for the current drag position. The
// dragged item's bounding-box center is compared against the sibling centers;
// the nearest sibling wins. Returns -1 when no drag is active or there are no
// siblings.
func (s *Sequencer[T]) Hover(siblingCenters []float64, dragCenter float64) int {
	if s.state != Dragging || len(siblingCenters) == 0 {
		return -1
	}
	nearest := 0
	best := math.Abs(siblingCenters[0] - dragCenter)
	for i := 1; i < len(siblingCenters); i++ {
		if d := math.Abs(siblingCenters[i] - dragCenter); d < best {
			best = d
			nearest = i
		}
	}
	return nearest
}

// Drop completes the drag at targetIndex. It returns the new permutation and
// whether anything moved; dropping on the source index is a no-op.
func (s *Sequencer[T]) Drop(targetIndex int) ([]T, bool) {
	if s.state != Dragging {
		return s.Items(), false
	}
	s.state = Idle
	if targetIndex == s.source || targetIndex < 0 || targetIndex >= len(s.items) {
		return s.Items(), false
	}
	s.items = domain.Move(s.items, s.source, targetIndex)
	return s.Items(), true
}

// Cancel abandons the active drag with no effect on the sequence.
func (s *Sequencer[T]) Cancel() {
	s.state = Idle
}

// MoveUp shifts the focused item one position toward the front, with the same
// permutation semantics as a drop.
func (s *Sequencer[T]) MoveUp(index int) ([]T, bool) {
	if s.state == Dragging || index <= 0 || index >= len(s.items) {
		return s.Items(), false
	}
	s.items = domain.Move(s.items, index, index-1)
	return s.Items(), true
}

// MoveDown shifts the focused item one position toward the back.
func (s *Sequencer[T]) MoveDown(index int) ([]T, bool) {
	if s.state == Dragging || index < 0 || index >= len(s.items)-1 {
		return s.Items(), false
	}
	s.items = domain.Move(s.items, index, index+1)
	return s.Items(), true
}

// RanksInScope maps a permutation of a (possibly filtered) view onto order
// updates against the full scope. The slots occupied by the visible ids within
// fullIDs are refilled, in place, with the new visible order; hidden siblings
// keep their positions and are not touched. Each visible id is assigned the
// zero-based index of the slot it lands in.
func RanksInScope(fullIDs, visibleNew []string) []domain.OrderUpdate {
	visible := make(map[string]struct{}, len(visibleNew))
	for _, id := range visibleNew {
		visible[id] = struct{}{}
	}

	updates := make([]domain.OrderUpdate, 0, len(visibleNew))
	next := 0
	for slot, id := range fullIDs {
		if _, ok := visible[id]; !ok {
			continue
		}
		if next >= len(visibleNew) {
			break
		}
		updates = append(updates, domain.OrderUpdate{ID: visibleNew[next], Order: slot})
		next++
	}
	return updates
}
