package window

// WindowBuilderOption defines a function that modifies the viewerWindow
// during construction.
type WindowBuilderOption func(*viewerWindow)

// WithTitle sets the window title.
//
// Parameters:
//   - title: the title bar text
//
// Returns:
//   - WindowBuilderOption: a function that applies the title to the window
func WithTitle(title string) WindowBuilderOption {
	return func(w *viewerWindow) {
		w.title = title
	}
}

// WithSize sets the initial window size in pixels. Non-positive dimensions
// are ignored and the defaults are kept.
//
// Parameters:
//   - width: initial width in pixels (must be > 0)
//   - height: initial height in pixels (must be > 0)
//
// Returns:
//   - WindowBuilderOption: a function that applies the size to the window
func WithSize(width, height int) WindowBuilderOption {
	return func(w *viewerWindow) {
		if width > 0 && height > 0 {
			w.width = width
			w.height = height
		}
	}
}
