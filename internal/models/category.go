package models

import "strings"

// Category — категория подписки.
type Category string

const (
	CategoryEntertainment Category = "entertainment"
	CategoryProductivity  Category = "productivity"
	CategoryUtilities     Category = "utilities"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryOther         Category = "other"
)

// CategoryMeta — данные для отображения категории.
type CategoryMeta struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var categories = map[Category]CategoryMeta{
	CategoryEntertainment: {Label: "Entertainment", Color: "#8b5cf6"},
	CategoryProductivity:  {Label: "Productivity", Color: "#10b981"},
	CategoryUtilities:     {Label: "Utilities", Color: "#f59e0b"},
	CategoryHealth:        {Label: "Health & Fitness", Color: "#ef4444"},
	CategoryEducation:     {Label: "Education", Color: "#3b82f6"},
	CategoryOther:         {Label: "Other", Color: "#6b7280"},
}

// Categories возвращает все категории в порядке отображения.
func Categories() []Category {
	return []Category{
		CategoryEntertainment,
		CategoryProductivity,
		CategoryUtilities,
		CategoryHealth,
		CategoryEducation,
		CategoryOther,
	}
}

// ParseCategory приводит строку к категории; пустые и неизвестные значения становятся other.
func ParseCategory(s string) Category {
	if c, ok := LookupCategory(s); ok {
		return c
	}
	return CategoryOther
}

// LookupCategory распознаёт категорию без подстановки other.
func LookupCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	_, ok := categories[c]
	return c, ok
}

// Normalize возвращает саму категорию или other, если она неизвестна.
func (c Category) Normalize() Category {
	return ParseCategory(string(c))
}

// Meta возвращает подпись и цвет категории.
func (c Category) Meta() CategoryMeta {
	return categories[c.Normalize()]
}
