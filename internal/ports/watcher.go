package ports

// Watcher monitors input files and reports changes.
type Watcher interface {
	// Watch starts monitoring the given files and directories.
	// onChange is called with the absolute path of each changed file.
	Watch(paths []string, onChange func(path string)) error

	// Stop ends monitoring and releases resources. Safe to call twice.
	Stop() error
}
