package models

// CategoryRule is one entry of the ordered keyword rule table.
type CategoryRule struct {
	Category Category `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// RulesFile represents the structure of the category rules YAML file.
type RulesFile struct {
	Rules []RuleConfig `yaml:"rules"`
}

// RuleConfig is the on-disk form of a CategoryRule before the category name is resolved.
type RuleConfig struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// CategorizedTransaction pairs a transaction with the category it was assigned.
type CategorizedTransaction struct {
	Date        string   `csv:"Date"`
	Description string   `csv:"Description"`
	Amount      string   `csv:"Amount"`
	Category    Category `csv:"Category"`
}
