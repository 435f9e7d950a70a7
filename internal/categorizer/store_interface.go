package categorizer

import "fjacquet/spending-coach/internal/models"

// RuleSource supplies an ordered rule table. store.RuleStore implements it.
type RuleSource interface {
	LoadRules() ([]models.CategoryRule, error)
}
