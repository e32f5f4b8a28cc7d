// Package input turns SDL2 events into viewer actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	Wheel  int32
}

// Actions is what the viewer does in response to one frame of events.
type Actions struct {
	Quit          bool
	Resize        bool
	Width, Height int

	ZoomSteps       int32
	ToggleCulling   bool
	ToggleBoxes     bool
	ToggleGrid      bool
	ToggleHeadlight bool
	Capture         bool
}

// Input polls SDL events once per frame.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{events: make([]Event, 0, 16)}
}

// Update drains the SDL event queue and returns the resulting actions.
func (i *Input) Update() Actions {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.events = append(i.events, Event{Type: EventKeyDown, Key: e.Keysym.Scancode})
			}

		case *sdl.MouseWheelEvent:
			i.events = append(i.events, Event{Type: EventMouseWheel, Wheel: e.Y})
		}
	}
	return Translate(i.events)
}

// Translate maps events to actions. The last resize wins.
func Translate(events []Event) Actions {
	var a Actions
	for _, e := range events {
		switch e.Type {
		case EventQuit:
			a.Quit = true
		case EventWindowResize:
			a.Resize = true
			a.Width, a.Height = e.Width, e.Height
		case EventMouseWheel:
			a.ZoomSteps += e.Wheel
		case EventKeyDown:
			switch e.Key {
			case sdl.SCANCODE_ESCAPE:
				a.Quit = true
			case sdl.SCANCODE_C:
				a.ToggleCulling = !a.ToggleCulling
			case sdl.SCANCODE_B:
				a.ToggleBoxes = !a.ToggleBoxes
			case sdl.SCANCODE_G:
				a.ToggleGrid = !a.ToggleGrid
			case sdl.SCANCODE_L:
				a.ToggleHeadlight = !a.ToggleHeadlight
			case sdl.SCANCODE_F12:
				a.Capture = true
			}
		}
	}
	return a
}
