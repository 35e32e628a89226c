// pattern: Functional Core

package tui

// Region defines a rectangular area within the terminal.
type Region struct {
	X      int // Left position (0-indexed)
	Y      int // Top position (0-indexed)
	Width  int // Width in cells
	Height int // Height in lines
}

// Layout holds computed regions for all UI components.
type Layout struct {
	Header    Region // Title + subtitle
	Tabs      Region // Projects / Sessions
	Content   Region // Active list
	StatusBar Region
}

// Fixed heights for chrome elements
const (
	headerHeight    = 2
	tabsHeight      = 1
	statusBarHeight = 1
	marginHeight    = 2 // Blank line above the tabs and above the status bar
	minContent      = 3
)

// ComputeLayout calculates regions based on terminal dimensions.
func ComputeLayout(width, height int) Layout {
	contentHeight := height - headerHeight - tabsHeight - statusBarHeight - marginHeight
	if contentHeight < minContent {
		contentHeight = minContent
	}

	y := 0
	header := Region{X: 0, Y: y, Width: width, Height: headerHeight}
	y += headerHeight + 1

	tabs := Region{X: 0, Y: y, Width: width, Height: tabsHeight}
	y += tabsHeight

	content := Region{X: 0, Y: y, Width: width, Height: contentHeight}
	y += contentHeight + 1

	statusBar := Region{X: 0, Y: y, Width: width, Height: statusBarHeight}

	return Layout{
		Header:    header,
		Tabs:      tabs,
		Content:   content,
		StatusBar: statusBar,
	}
}

// ContentListHeight returns the number of list rows that fit the content area.
func (l Layout) ContentListHeight() int {
	h := l.Content.Height
	if h < 1 {
		h = 1
	}
	return h
}
