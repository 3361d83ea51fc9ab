package message

import "fmt"

// DeleteResult reports what a delete selector removed
type DeleteResult struct {
	Path      string
	Selector  Selector
	Removed   int
	Remaining int
}

// String returns the report shown to the chat user
func (r DeleteResult) String() string {
	switch r.Selector.Kind {
	case SelectAll:
		return fmt.Sprintf("Removed all %d stored messages of %s.", r.Removed, r.Path)
	case SelectOld:
		if r.Removed == 0 {
			return fmt.Sprintf("%s only holds its latest message, nothing to remove.", r.Path)
		}
		return fmt.Sprintf("Removed %d older messages of %s, kept the latest one.", r.Removed, r.Path)
	case SelectRange:
		return fmt.Sprintf("Removed messages %d-%d (%d) of %s, %d remaining.",
			r.Selector.Start, r.Selector.End, r.Removed, r.Path, r.Remaining)
	default:
		return fmt.Sprintf("Removed message %d of %s, %d remaining.", r.Selector.Start, r.Path, r.Remaining)
	}
}
