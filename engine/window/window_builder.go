package window

// WindowBuilderOption is a functional option used to configure a Window during construction.
type WindowBuilderOption func(*desktopWindow)

// WithTitle sets the window title.
//
// Parameters:
//   - title: the title bar text
//
// Returns:
//   - WindowBuilderOption: a function that sets the title
func WithTitle(title string) WindowBuilderOption {
	return func(w *desktopWindow) {
		w.title = title
	}
}

// WithSize sets the initial window size in screen coordinates.
//
// Parameters:
//   - width, height: the initial size
//
// Returns:
//   - WindowBuilderOption: a function that sets the size
func WithSize(width, height int) WindowBuilderOption {
	return func(w *desktopWindow) {
		if width > 0 {
			w.width = width
		}
		if height > 0 {
			w.height = height
		}
	}
}
