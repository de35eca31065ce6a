package interfaces

//go:generate mockgen -package=mock -source=filesystem.go -destination=mock/filesystem.go

// FileSystem reads template sources from disk
type FileSystem interface {
	// ReadFile returns the content of the file at path
	ReadFile(path string) ([]byte, error)

	// ListFilesRecursive returns the paths, relative to dir and '/'-separated,
	// of every file below dir whose extension is one of extensions
	ListFilesRecursive(dir string, extensions []string) ([]string, error)
}
