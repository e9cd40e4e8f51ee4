package entity

import "strings"

// Callback payloads ride on inline buttons as short colon-delimited strings
// and must round-trip exactly: category:<name>, category:__other__,
// delete:<id>, force_save:<url>, cancel, done:<id>, edit:<id>,
// edit_title:<id>, edit_priority:<id>, priority:<id>:<level>.

type CallbackKind string

const (
	CallbackCategory     CallbackKind = "category"
	CallbackNewCategory  CallbackKind = "new_category"
	CallbackDelete       CallbackKind = "delete"
	CallbackForceSave    CallbackKind = "force_save"
	CallbackCancel       CallbackKind = "cancel"
	CallbackDone         CallbackKind = "done"
	CallbackEdit         CallbackKind = "edit"
	CallbackEditTitle    CallbackKind = "edit_title"
	CallbackEditPriority CallbackKind = "edit_priority"
	CallbackPriority     CallbackKind = "priority"
	CallbackUnknown      CallbackKind = "unknown"
)

// NewCategorySentinel is the synthetic "create new" choice on the category keyboard.
const NewCategorySentinel = "__other__"

// Callback is a decoded button payload. Value carries the category name, the
// record id, or the URL depending on Kind; Priority is set only for CallbackPriority.
type Callback struct {
	Kind     CallbackKind
	Value    string
	Priority TaskPriority
}

// ParseCallback decodes a raw payload. Anything malformed or unrecognized maps
// to CallbackUnknown so the caller can no-op acknowledge instead of failing.
func ParseCallback(data string) Callback {
	switch data {
	case "cancel":
		return Callback{Kind: CallbackCancel}
	case "category:" + NewCategorySentinel:
		return Callback{Kind: CallbackNewCategory}
	}

	prefix, rest, found := strings.Cut(data, ":")
	if !found || rest == "" {
		return Callback{Kind: CallbackUnknown, Value: data}
	}

	switch prefix {
	case "category":
		return Callback{Kind: CallbackCategory, Value: rest}
	case "delete":
		return Callback{Kind: CallbackDelete, Value: rest}
	case "force_save":
		return Callback{Kind: CallbackForceSave, Value: rest}
	case "done":
		return Callback{Kind: CallbackDone, Value: rest}
	case "edit":
		return Callback{Kind: CallbackEdit, Value: rest}
	case "edit_title":
		return Callback{Kind: CallbackEditTitle, Value: rest}
	case "edit_priority":
		return Callback{Kind: CallbackEditPriority, Value: rest}
	case "priority":
		id, level, ok := strings.Cut(rest, ":")
		if !ok || id == "" {
			return Callback{Kind: CallbackUnknown, Value: data}
		}
		switch TaskPriority(level) {
		case PriorityHigh, PriorityMedium, PriorityLow:
			return Callback{Kind: CallbackPriority, Value: id, Priority: TaskPriority(level)}
		}
		return Callback{Kind: CallbackUnknown, Value: data}
	}
	return Callback{Kind: CallbackUnknown, Value: data}
}

// Encoders for the button side. Kept next to the parser so the wire format
// lives in one file.

func CategoryCallback(name string) string      { return "category:" + name }
func NewCategoryCallback() string              { return "category:" + NewCategorySentinel }
func DeleteCallback(id string) string          { return "delete:" + id }
func ForceSaveCallback(url string) string      { return "force_save:" + url }
func CancelCallback() string                   { return "cancel" }
func DoneCallback(id string) string            { return "done:" + id }
func EditCallback(id string) string            { return "edit:" + id }
func EditTitleCallback(id string) string       { return "edit_title:" + id }
func EditPriorityCallback(id string) string    { return "edit_priority:" + id }
func PriorityCallback(id string, p TaskPriority) string {
	return "priority:" + id + ":" + string(p)
}
