package model

// Manual checklist categories.
const (
	ChecklistKeyboard     = "keyboard"
	ChecklistScreenReader = "screen reader"
	ChecklistVisual       = "visual"
	ChecklistCognitive    = "cognitive"
)

// ManualChecklistItem is one check automated scanning cannot verify.
type ManualChecklistItem struct {
	Category string `json:"category"`
	Item     string `json:"item"`
}

// manualChecklist is returned unconditionally with every audit so a report
// never implies that automated scanning verified everything.
var manualChecklist = []ManualChecklistItem{
	{ChecklistKeyboard, "All interactive elements can be reached and operated with the keyboard alone"},
	{ChecklistKeyboard, "Focus order follows the visual and logical reading order"},
	{ChecklistKeyboard, "A visible focus indicator is present on every focusable element"},
	{ChecklistKeyboard, "No keyboard trap exists in dialogs, menus, or embedded widgets"},
	{ChecklistScreenReader, "Page content is announced in a meaningful order"},
	{ChecklistScreenReader, "Images convey equivalent information through their text alternatives"},
	{ChecklistScreenReader, "Dynamic updates and status messages are announced"},
	{ChecklistScreenReader, "Form errors are announced and associated with their fields"},
	{ChecklistVisual, "Content remains usable at 200% zoom and 320px width without loss"},
	{ChecklistVisual, "Information is not conveyed by color alone"},
	{ChecklistVisual, "Text over images and gradients keeps sufficient contrast"},
	{ChecklistCognitive, "Instructions and error messages are clear and suggest a fix"},
	{ChecklistCognitive, "Navigation and labels are consistent across pages"},
	{ChecklistCognitive, "Time limits can be turned off, adjusted, or extended"},
}

// ManualChecklist returns a copy of the fixed manual verification checklist.
func ManualChecklist() []ManualChecklistItem {
	items := make([]ManualChecklistItem, len(manualChecklist))
	copy(items, manualChecklist)
	return items
}

// ManualChecklistCategories returns the checklist categories in display order.
func ManualChecklistCategories() []string {
	return []string{ChecklistKeyboard, ChecklistScreenReader, ChecklistVisual, ChecklistCognitive}
}
