package interfaces

// OutputHandler delivers a generated document to its output target
type OutputHandler interface {
	// WriteToClipboard copies the document to the system clipboard
	WriteToClipboard(content string) error

	// WriteToStdout prints the document
	WriteToStdout(content string) error

	// WriteToFile stores the document at path, creating parent directories
	WriteToFile(content string, path string) error

	// OpenInEditor opens a temporary copy of the document in editor
	OpenInEditor(content string, editor string) error
}
