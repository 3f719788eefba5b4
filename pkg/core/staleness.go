package core

import "time"

// Reasons returned by RedistillReason.
const (
	ReasonNoContent   = "no existing content"
	ReasonNoteChanged = "note content has changed"
	ReasonForced      = "forced"
)

// ShouldRedistill reports whether the cached distilled content of record must
// be regenerated for a note last modified at noteModified.
func ShouldRedistill(record NoteRecord, noteModified time.Time, force bool) bool {
	return RedistillReason(record, noteModified, force) != ""
}

// RedistillReason is ShouldRedistill with the reason attached.
// It returns an empty string when the cached content is usable.
func RedistillReason(record NoteRecord, noteModified time.Time, force bool) string {
	switch {
	case record.Distilled.IsEmpty():
		return ReasonNoContent
	case noteModified.After(record.LastUpdated):
		return ReasonNoteChanged
	case force:
		return ReasonForced
	default:
		return ""
	}
}
