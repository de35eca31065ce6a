package interfaces

// KeyBuilder canonizes resource identifiers into deterministic cache keys
type KeyBuilder interface {
	// URLKey normalizes a remote template URL
	URLKey(rawURL string) (string, error)
	// PathKey resolves a local template path to its absolute form
	PathKey(path string) (string, error)
	// PartialsKey builds the key of an ordered list of partial directories
	PartialsKey(dirs []string) (string, error)
}
