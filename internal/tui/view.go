/*
Package tui
File: view.go
Description:
    Frame layout: header stats, the upgrade list, the tooltip for the
    selected upgrade, the status line, and the help line.
*/

package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/catalog"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/engine"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/format"
)

const (
	listTop  = 4
	decimals = 2
)

var (
	styleTitle    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleText     = tcell.StyleDefault
	styleMoney    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleDisabled = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleHelp     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// view is everything one frame draws besides the snapshot.
type view struct {
	selected  int
	tip       tooltip
	status    string
	threshold float64
}

func putString(s tcell.Screen, x, y int, str string, style tcell.Style) int {
	for _, r := range str {
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func (v view) money(n float64) string {
	return format.Dollar(n, v.threshold, decimals)
}

// draw renders one frame. It does not call Show.
func draw(s tcell.Screen, snap engine.Snapshot, v view) {
	s.Clear()
	_, height := s.Size()

	putString(s, 1, 0, "URANIUM CLICKER", styleTitle)
	x := putString(s, 1, 1, "Uranium: ", styleText)
	putString(s, x, 1, v.money(snap.Currency), styleMoney)
	x = putString(s, 1, 2, "Per click: ", styleText)
	x = putString(s, x, 2, v.money(snap.ClickPower), styleMoney)
	x = putString(s, x, 2, "   Income: ", styleText)
	putString(s, x, 2, format.Rate(snap.PassiveIncome, v.threshold, decimals), styleMoney)

	for i, u := range snap.Upgrades {
		style := styleText
		if !u.Affordable {
			style = styleDisabled
		}
		cursor := "  "
		if i == v.selected {
			cursor = "> "
			style = style.Reverse(true)
		}
		hotkey := " "
		if i < 9 {
			hotkey = fmt.Sprint(i + 1)
		}
		line := fmt.Sprintf("%s[%s] %-22s Lv %-4d %s", cursor, hotkey, u.Name, u.Level, v.money(u.NextCost))
		putString(s, 1, listTop+i, line, style)
	}

	y := listTop + len(snap.Upgrades) + 1
	if u, ok := snap.Upgrade(v.tip.id); ok && v.tip.active {
		putString(s, 1, y, u.Name, styleTitle)
		putString(s, 1, y+1, u.Description, styleText)
		putString(s, 1, y+2, tooltipStats(u, v), styleMoney)
		if v.tip.purchases > 0 {
			putString(s, 1, y+3, fmt.Sprintf("Bought %d this session", v.tip.purchases), styleStatus)
		}
	}

	if v.status != "" {
		putString(s, 1, height-2, v.status, styleStatus)
	}
	putString(s, 1, height-1, "space click  up/down select  b buy  1-9 buy  q quit", styleHelp)
}

func tooltipStats(u engine.UpgradeState, v view) string {
	if u.Kind == catalog.KindPassive {
		return fmt.Sprintf("Next: %s   Produces: %s", v.money(u.NextCost), format.Rate(u.Contribution, v.threshold, decimals))
	}
	return fmt.Sprintf("Next: %s   Adds per click: %s", v.money(u.NextCost), v.money(u.Contribution))
}
