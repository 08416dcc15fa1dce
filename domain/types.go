package domain

// Status represents lifecycle states for block builder entities.
type Status string

const (
	// StatusDraft indicates a definition still under preparation.
	StatusDraft Status = "draft"
	// StatusPublish identifies a definition available to the editor.
	StatusPublish Status = "publish"
	// StatusTrash marks a definition that has been discarded but is still recoverable.
	StatusTrash Status = "trash"
)

// Valid reports whether the status is one of the recognised lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublish, StatusTrash:
		return true
	}
	return false
}

// Statuses returns every recognised lifecycle state.
func Statuses() []Status {
	return []Status{StatusDraft, StatusPublish, StatusTrash}
}
