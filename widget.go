package widgetprefs

// GridPosition is a column/row coordinate on the dashboard grid.
type GridPosition struct {
	Col int `json:"col" yaml:"col"`
	Row int `json:"row" yaml:"row"`
}

// GridSize is a width/height in grid units.
type GridSize struct {
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// Widget describes one unit of dashboard content.
// Widgets are immutable once handed to NewRegistry.
type Widget struct {
	// ID is the stable key used for visibility lookup. Unique within a Registry.
	ID string `json:"id" yaml:"id"`
	// Title is the display string.
	Title string `json:"title" yaml:"title"`
	// Position is an advisory layout hint; the registry does not enforce it.
	Position GridPosition `json:"position" yaml:"position"`
	// Size is the preferred size in grid units.
	Size GridSize `json:"size" yaml:"size"`
	// MinSize is surfaced to the layout surface and not enforced here.
	MinSize GridSize `json:"min_size" yaml:"min_size"`
	// DefaultVisible seeds a profile's visibility map the first time it is created.
	DefaultVisible bool `json:"default_visible" yaml:"default_visible"`
	// Payload is whatever the rendering surface needs to draw the widget.
	Payload any `json:"payload,omitempty" yaml:"payload,omitempty"`
}
