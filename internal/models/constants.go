package models

import (
	"fmt"
	"strings"
)

// Category is one label of the fixed category set emitted by the categorizer.
type Category string

// Categories
const (
	CategoryDining         Category = "dining"
	CategoryTransportation Category = "transportation"
	CategoryShopping       Category = "shopping"
	CategoryEntertainment  Category = "entertainment"
	CategoryIncome         Category = "income"
	CategoryOther          Category = "other"
)

// AllCategories lists the category set in rule priority order, "other" last.
var AllCategories = []Category{
	CategoryDining,
	CategoryTransportation,
	CategoryShopping,
	CategoryEntertainment,
	CategoryIncome,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryDining:         "餐饮",
	CategoryTransportation: "交通",
	CategoryShopping:       "购物",
	CategoryEntertainment:  "娱乐",
	CategoryIncome:         "收入",
	CategoryOther:          "其他",
}

// Label returns the display name used in prompts.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// ParseCategory resolves a category from its identifier or display label.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range AllCategories {
		if strings.EqualFold(s, string(c)) || s == c.Label() {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionReportFile = 0644
)
