// Package mouse provides hit-testing and click/drag/scroll handling for
// the TUI.
package mouse

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// doubleClickWindow is the maximum delay between two clicks on the same
// region for them to count as a double click.
const doubleClickWindow = 500 * time.Millisecond

// wheelStep is the number of rows scrolled per wheel tick.
const wheelStep = 3

// Rect is a rectangular screen region in cell coordinates.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point falls inside the rect. Right and
// bottom edges are exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Region is a named clickable area with an optional payload.
type Region struct {
	ID   string
	Rect Rect
	Data any
}

// HitMap holds the clickable regions registered during a render pass.
type HitMap struct {
	regions []Region
}

// NewHitMap creates an empty hit map.
func NewHitMap() *HitMap {
	return &HitMap{}
}

// Add registers a region. Later additions win on overlap.
func (hm *HitMap) Add(id string, rect Rect, data any) {
	hm.regions = append(hm.regions, Region{ID: id, Rect: rect, Data: data})
}

// AddRect is Add with unpacked coordinates.
func (hm *HitMap) AddRect(id string, x, y, w, h int, data any) {
	hm.Add(id, Rect{X: x, Y: y, W: w, H: h}, data)
}

// Test returns the topmost region containing the point, or nil.
func (hm *HitMap) Test(x, y int) *Region {
	for i := len(hm.regions) - 1; i >= 0; i-- {
		if hm.regions[i].Rect.Contains(x, y) {
			r := hm.regions[i]
			return &r
		}
	}
	return nil
}

// Clear removes all regions. Call at the start of each render.
func (hm *HitMap) Clear() {
	hm.regions = hm.regions[:0]
}

// Regions returns a copy of the registered regions.
func (hm *HitMap) Regions() []Region {
	out := make([]Region, len(hm.regions))
	copy(out, hm.regions)
	return out
}

// ActionType classifies a processed mouse event.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionClick
	ActionDoubleClick
	ActionScrollUp
	ActionScrollDown
	ActionScrollLeft
	ActionScrollRight
	ActionDrag
	ActionDragEnd
	ActionHover
)

// Action is the result of processing a mouse event.
type Action struct {
	Type   ActionType
	Region *Region
	X, Y   int
	Delta  int // scroll rows, negative is up
	DragDX int
	DragDY int
}

// ClickResult is returned by HandleClick.
type ClickResult struct {
	Region        *Region
	IsDoubleClick bool
}

// Handler tracks click and drag state across mouse events.
type Handler struct {
	HitMap *HitMap

	lastClickTime   time.Time
	lastClickRegion string

	dragging       bool
	dragStartX     int
	dragStartY     int
	dragRegion     string
	dragStartValue int
}

// NewHandler creates a handler with an empty hit map.
func NewHandler() *Handler {
	return &Handler{HitMap: NewHitMap()}
}

// Clear resets the hit map for a new render pass.
func (h *Handler) Clear() {
	h.HitMap.Clear()
}

// HandleClick hit-tests a click and tracks double clicks. A double
// click resets the tracking so a third click starts over.
func (h *Handler) HandleClick(x, y int) ClickResult {
	region := h.HitMap.Test(x, y)

	now := time.Now()
	isDouble := false
	if region != nil &&
		region.ID == h.lastClickRegion &&
		now.Sub(h.lastClickTime) <= doubleClickWindow {
		isDouble = true
		h.lastClickRegion = ""
		h.lastClickTime = time.Time{}
	} else if region != nil {
		h.lastClickRegion = region.ID
		h.lastClickTime = now
	} else {
		h.lastClickRegion = ""
	}

	return ClickResult{Region: region, IsDoubleClick: isDouble}
}

// StartDrag begins a drag anchored at the given point. startValue is
// the caller's value being adjusted, returned by DragStartValue.
func (h *Handler) StartDrag(x, y int, region string, startValue int) {
	h.dragging = true
	h.dragStartX = x
	h.dragStartY = y
	h.dragRegion = region
	h.dragStartValue = startValue
}

// IsDragging reports whether a drag is in progress.
func (h *Handler) IsDragging() bool {
	return h.dragging
}

// DragRegion returns the region name passed to StartDrag.
func (h *Handler) DragRegion() string {
	return h.dragRegion
}

// DragStartValue returns the value passed to StartDrag.
func (h *Handler) DragStartValue() int {
	return h.dragStartValue
}

// DragDelta returns the offset from the drag anchor.
func (h *Handler) DragDelta(x, y int) (int, int) {
	return x - h.dragStartX, y - h.dragStartY
}

// EndDrag clears drag state.
func (h *Handler) EndDrag() {
	h.dragging = false
	h.dragRegion = ""
	h.dragStartValue = 0
}

// HandleMouse turns a raw bubbletea mouse event into an Action.
func (h *Handler) HandleMouse(msg tea.MouseMsg) Action {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if msg.Shift {
				return Action{Type: ActionScrollLeft, X: msg.X, Y: msg.Y, Delta: -wheelStep}
			}
			return Action{Type: ActionScrollUp, X: msg.X, Y: msg.Y, Delta: -wheelStep}
		case tea.MouseButtonWheelDown:
			if msg.Shift {
				return Action{Type: ActionScrollRight, X: msg.X, Y: msg.Y, Delta: wheelStep}
			}
			return Action{Type: ActionScrollDown, X: msg.X, Y: msg.Y, Delta: wheelStep}
		case tea.MouseButtonWheelLeft:
			// Inverted for Mac natural scrolling
			return Action{Type: ActionScrollRight, X: msg.X, Y: msg.Y, Delta: wheelStep}
		case tea.MouseButtonWheelRight:
			return Action{Type: ActionScrollLeft, X: msg.X, Y: msg.Y, Delta: -wheelStep}
		case tea.MouseButtonLeft:
			result := h.HandleClick(msg.X, msg.Y)
			if result.Region == nil {
				return Action{Type: ActionNone, X: msg.X, Y: msg.Y}
			}
			if result.IsDoubleClick {
				return Action{Type: ActionDoubleClick, Region: result.Region, X: msg.X, Y: msg.Y}
			}
			return Action{Type: ActionClick, Region: result.Region, X: msg.X, Y: msg.Y}
		}

	case tea.MouseActionMotion:
		if h.dragging {
			dx, dy := h.DragDelta(msg.X, msg.Y)
			return Action{Type: ActionDrag, X: msg.X, Y: msg.Y, DragDX: dx, DragDY: dy}
		}
		return Action{Type: ActionHover, Region: h.HitMap.Test(msg.X, msg.Y), X: msg.X, Y: msg.Y}

	case tea.MouseActionRelease:
		if h.dragging {
			h.EndDrag()
			return Action{Type: ActionDragEnd, X: msg.X, Y: msg.Y}
		}
	}

	return Action{Type: ActionNone, X: msg.X, Y: msg.Y}
}
