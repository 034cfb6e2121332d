package assets

import "github.com/charmbracelet/log"

// LibraryBuilderOption is a functional option used to configure a Library during construction.
type LibraryBuilderOption func(*library)

// WithLogger sets the logger the library reports loads and reload failures to.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - LibraryBuilderOption: a function that sets the logger
func WithLogger(logger *log.Logger) LibraryBuilderOption {
	return func(l *library) {
		if logger != nil {
			l.logger = logger
		}
	}
}
