package calendar

import "churchsite/internal/model"

// TypeStyle is the display color and label of an event category.
type TypeStyle struct {
	Category model.Category `json:"category"`
	Color    string         `json:"color"`
	Label    string         `json:"label"`
}

var typeStyles = map[model.Category]TypeStyle{
	model.CategoryWorship: {model.CategoryWorship, "#8b5cf6", "예배"},
	model.CategoryMeeting: {model.CategoryMeeting, "#3b82f6", "모임"},
	model.CategoryEvent:   {model.CategoryEvent, "#10b981", "행사"},
	model.CategoryService: {model.CategoryService, "#f59e0b", "봉사"},
	model.CategoryRetreat: {model.CategoryRetreat, "#ec4899", "수련회"},
	model.CategoryEtc:     {model.CategoryEtc, "#6b7280", "기타"},
}

// Classify maps any category value to its style. Unknown values get the
// "etc" style.
func Classify(c model.Category) TypeStyle {
	if s, ok := typeStyles[c]; ok {
		return s
	}
	return typeStyles[model.CategoryEtc]
}

// TypeStyles lists the style of every known category in display order.
func TypeStyles() []TypeStyle {
	out := make([]TypeStyle, 0, len(model.Categories))
	for _, c := range model.Categories {
		out = append(out, typeStyles[c])
	}
	return out
}
