package gallery

import (
	"github.com/foomo/portfolio-mcp/service/vo"
)

const DefaultBatchSize = 6

// State holds one forward-only cursor per category. Cursors advance by a
// whole batch and may run past the end of their sequence.
type State struct {
	Athletics int  `json:"athletics"`
	Events    int  `json:"events"`
	Finished  bool `json:"finished"` // completion has been announced
}

func (s State) Cursor(c vo.Category) int {
	switch c {
	case vo.CategoryAthletics:
		return s.Athletics
	case vo.CategoryEvents:
		return s.Events
	}
	return 0
}

func (s State) withCursor(c vo.Category, cursor int) State {
	switch c {
	case vo.CategoryAthletics:
		s.Athletics = cursor
	case vo.CategoryEvents:
		s.Events = cursor
	}
	return s
}

func (s State) Exhausted(c vo.Category, total int) bool {
	return s.Cursor(c) >= total
}

// Complete reports whether every category of m is exhausted.
func (s State) Complete(m vo.ImageManifest) bool {
	for _, c := range vo.Categories {
		if !s.Exhausted(c, len(m.Items(c))) {
			return false
		}
	}
	return true
}

// Next returns the batch following the cursor of c and the advanced state.
// An exhausted category yields the unchanged state and no items.
func Next(s State, c vo.Category, items []vo.ImageDescriptor, batchSize int) (State, []vo.ImageDescriptor) {
	cursor := s.Cursor(c)
	if cursor >= len(items) {
		return s, nil
	}
	end := cursor + batchSize
	return s.withCursor(c, end), items[cursor:min(end, len(items))]
}
