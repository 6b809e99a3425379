package views

import (
	"errors"
	"fmt"
	"sync"
)

// Mode is the panel a management screen is showing
type Mode int

const (
	ModeList Mode = iota
	ModeCreate
	ModeEdit
	ModeDetails
)

func (m Mode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	case ModeDetails:
		return "details"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidTransition is returned when a screen cannot move between two modes
	ErrInvalidTransition = errors.New("invalid view transition")

	// ErrNoSelection is returned when a mode needs an item and none was given
	ErrNoSelection = errors.New("no item selected")
)

// transitions lists the modes reachable from each mode. Create and Edit are
// forms: leaving one means saving or discarding it, so neither can open the
// other directly.
var transitions = map[Mode]map[Mode]bool{
	ModeList:    {ModeList: true, ModeCreate: true, ModeEdit: true, ModeDetails: true},
	ModeCreate:  {ModeList: true, ModeDetails: true},
	ModeEdit:    {ModeList: true, ModeDetails: true},
	ModeDetails: {ModeList: true, ModeEdit: true, ModeDetails: true},
}

// CanTransition reports whether a screen in from may move to to
func CanTransition(from, to Mode) bool {
	return transitions[from][to]
}

// Screen is the mode of a list/create/edit/details screen together with the
// item the edit and details panels operate on. The zero value is a list
// screen with nothing selected.
type Screen[T any] struct {
	mu       sync.RWMutex
	mode     Mode
	selected *T
}

// NewScreen returns a screen showing the list
func NewScreen[T any]() *Screen[T] {
	return &Screen[T]{}
}

// Mode returns the current mode
func (s *Screen[T]) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Selected returns the item being edited or shown. ok is false in list and
// create modes.
func (s *Screen[T]) Selected() (item T, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return item, false
	}
	return *s.selected, true
}

// List returns to the list and clears the selection. It is always allowed.
func (s *Screen[T]) List() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeList
	s.selected = nil
}

// Create opens the empty create form
func (s *Screen[T]) Create() error {
	return s.move(ModeCreate, nil)
}

// Edit opens the edit form for item
func (s *Screen[T]) Edit(item *T) error {
	if item == nil {
		return fmt.Errorf("edit: %w", ErrNoSelection)
	}
	return s.move(ModeEdit, item)
}

// Details shows item
func (s *Screen[T]) Details(item *T) error {
	if item == nil {
		return fmt.Errorf("details: %w", ErrNoSelection)
	}
	return s.move(ModeDetails, item)
}

func (s *Screen[T]) move(to Mode, item *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !CanTransition(s.mode, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.mode, to)
	}
	s.mode = to
	if item != nil {
		cp := *item
		s.selected = &cp
	} else {
		s.selected = nil
	}
	return nil
}
