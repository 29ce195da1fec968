package backend

// Notes format keys recognized by the backend. The key travels on the
// wire; the label is what users pick from.
const (
	// DefaultFormatKey is used when the user never touches the format
	// control.
	DefaultFormatKey = "type_1"

	// CustomFormatKey selects the custom-template format, which
	// requires a user-supplied prompt template.
	CustomFormatKey = "type_17"
)

// notesFormats maps the format keys to their display labels, in menu
// order. Kept in a slice so the order is stable.
var notesFormats = []FormatInfo{
	{Key: "type_1", Label: "Detailed Structured Study Notes"},
	{Key: "type_2", Label: "Conceptual Mind Map Style"},
	{Key: "type_3", Label: "Step-by-Step Explanation"},
	{Key: "type_4", Label: "Comparison Table"},
	{Key: "type_5", Label: "Key Terms and Definitions"},
	{Key: "type_6", Label: "Flashcard Style"},
	{Key: "type_7", Label: "Formula + Concept Sheet"},
	{Key: "type_8", Label: "Topic Clusters"},
	{Key: "type_9", Label: "Cause and Effect Notes"},
	{Key: "type_10", Label: "Exam-Ready Highlights"},
	{Key: "type_11", Label: "Practical Applications"},
	{Key: "type_12", Label: "Pros and Cons"},
	{Key: "type_13", Label: "Problem-Solution Format"},
	{Key: "type_14", Label: "Explainer with Analogies"},
	{Key: "type_15", Label: "Highlight + Expand"},
	{Key: "type_16", Label: "Quick Review Cheat Sheet"},
	{Key: CustomFormatKey, Label: "Custom Template"},
}

// Formats returns the built-in notes formats in menu order. Used as the
// local fallback when the backend's format listing is unreachable.
func Formats() []FormatInfo {
	out := make([]FormatInfo, len(notesFormats))
	copy(out, notesFormats)
	return out
}

// FormatLabel returns the display label for a format key, or the key
// itself when unknown.
func FormatLabel(key string) string {
	for _, f := range notesFormats {
		if f.Key == key {
			return f.Label
		}
	}
	return key
}

// ValidFormatKey reports whether the key names a known notes format.
func ValidFormatKey(key string) bool {
	for _, f := range notesFormats {
		if f.Key == key {
			return true
		}
	}
	return false
}

// IsCustomFormat reports whether the key selects the custom-template
// format.
func IsCustomFormat(key string) bool { return key == CustomFormatKey }
