package app

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/smartmd/internal/surface"
)

// RemapSelection moves sel from oldText to the equivalent place in newText.
// Offsets inside replaced text land at the start of the replacement.
func RemapSelection(oldText, newText string, sel surface.Selection) surface.Selection {
	if oldText == newText {
		return sel
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	return surface.Selection{
		Anchor: dmp.DiffXIndex(diffs, sel.Anchor),
		Head:   dmp.DiffXIndex(diffs, sel.Head),
	}.Clamp(len(newText))
}
