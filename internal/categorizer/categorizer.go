// Package categorizer assigns a spending category to a transaction description
// using an ordered keyword rule table: the first rule with a matching keyword wins,
// and descriptions matching no rule fall back to "other".
package categorizer

import (
	"fmt"
	"strings"

	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/models"
)

type compiledRule struct {
	category models.Category
	keywords []string
}

// Categorizer holds a read-only rule table and is safe for concurrent use.
type Categorizer struct {
	rules  []compiledRule
	logger logging.Logger
}

// NewCategorizer builds a categorizer from rules, evaluated in slice order.
// Keywords are matched case-insensitively as substrings.
func NewCategorizer(rules []models.CategoryRule, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.GetLogger()
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, keyword := range rule.Keywords {
			if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
				keywords = append(keywords, keyword)
			}
		}
		compiled = append(compiled, compiledRule{category: rule.Category, keywords: keywords})
	}

	return &Categorizer{rules: compiled, logger: logger}
}

// NewDefaultCategorizer returns a categorizer over DefaultRules.
func NewDefaultCategorizer(logger logging.Logger) *Categorizer {
	return NewCategorizer(DefaultRules(), logger)
}

// NewCategorizerFromSource loads rules from source, falling back to DefaultRules
// when the source provides none.
func NewCategorizerFromSource(source RuleSource, logger logging.Logger) (*Categorizer, error) {
	rules, err := source.LoadRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load category rules: %w", err)
	}
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return NewCategorizer(rules, logger), nil
}

// Categorize returns the category of the first rule whose keyword occurs in
// description, or models.CategoryOther. The amount sign plays no part.
func (c *Categorizer) Categorize(description string) models.Category {
	lowered := strings.ToLower(description)
	for _, rule := range c.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				c.logger.Debug("Description matched keyword rule",
					logging.F("keyword", keyword),
					logging.F(logging.FieldCategory, rule.category))
				return rule.category
			}
		}
	}
	return models.CategoryOther
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Categorizer) Rules() []models.CategoryRule {
	rules := make([]models.CategoryRule, 0, len(c.rules))
	for _, rule := range c.rules {
		keywords := make([]string, len(rule.keywords))
		copy(keywords, rule.keywords)
		rules = append(rules, models.CategoryRule{Category: rule.category, Keywords: keywords})
	}
	return rules
}
