package model

// categoryColors maps each event category to its display colour.
var categoryColors = map[EventCategory]string{
	CategoryRetreat:     "#e91e63",
	CategoryCamp:        "#2196f3",
	CategoryDayOff:      "#4caf50",
	CategoryAppointment: "#ff9800",
	CategoryOther:       "#9c27b0",
}

// CategoryColor returns the display colour for a category. Unknown categories
// fall back to the "other" colour.
func CategoryColor(category EventCategory) string {
	if color, ok := categoryColors[category]; ok {
		return color
	}
	return categoryColors[CategoryOther]
}
