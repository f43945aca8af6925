/*
Package tui
File: keys.go
Description:
    Key bindings. MapKey turns a terminal key event into an Action.
*/

package tui

import "github.com/gdamore/tcell/v2"

// Intent is what a key press asks the game to do.
type Intent int

const (
	IntentNone Intent = iota
	IntentClick
	IntentUp
	IntentDown
	IntentBuySelected
	IntentBuyIndex // Buy the upgrade at Action.Index in display order
	IntentQuit
)

// Action is a decoded key press.
type Action struct {
	Intent Intent
	Index  int
}

// MapKey translates a key event into an Action.
func MapKey(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return Action{Intent: IntentQuit}
	case tcell.KeyEnter:
		return Action{Intent: IntentClick}
	case tcell.KeyUp:
		return Action{Intent: IntentUp}
	case tcell.KeyDown:
		return Action{Intent: IntentDown}
	case tcell.KeyRune:
	default:
		return Action{}
	}

	switch r := ev.Rune(); {
	case r == ' ':
		return Action{Intent: IntentClick}
	case r == 'q' || r == 'Q':
		return Action{Intent: IntentQuit}
	case r == 'b' || r == 'B':
		return Action{Intent: IntentBuySelected}
	case r == 'k':
		return Action{Intent: IntentUp}
	case r == 'j':
		return Action{Intent: IntentDown}
	case r >= '1' && r <= '9':
		return Action{Intent: IntentBuyIndex, Index: int(r - '1')}
	}
	return Action{}
}
