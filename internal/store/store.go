// Package store loads and saves the keyword rule table used by the categorizer.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/models"
	"fjacquet/spending-coach/internal/parsererror"

	"gopkg.in/yaml.v3"
)

// RuleStore reads an ordered category rule table from a YAML file.
type RuleStore struct {
	RulesFile string
	logger    logging.Logger
}

// NewRuleStore creates a store for the given rules file. An empty path means no
// file is configured and LoadRules returns no rules.
func NewRuleStore(rulesFile string, logger logging.Logger) *RuleStore {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &RuleStore{RulesFile: rulesFile, logger: logger}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *RuleStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join(".spending-coach", filename),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		configPath := filepath.Join(homeDir, ".spending-coach", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadRules reads the rule table. Rules keep their file order, which is their
// priority. Unknown category names and rules without keywords are rejected.
func (s *RuleStore) LoadRules() ([]models.CategoryRule, error) {
	if strings.TrimSpace(s.RulesFile) == "" {
		return nil, nil
	}

	filePath, err := s.FindConfigFile(s.RulesFile)
	if err != nil {
		return nil, &parsererror.CategorizationError{Source: s.RulesFile, Err: err}
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &parsererror.CategorizationError{Source: filePath, Err: err}
	}

	var file models.RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &parsererror.CategorizationError{
			Source: filePath,
			Err:    fmt.Errorf("error parsing rules file: %w", err),
		}
	}

	rules, err := resolveRules(file.Rules)
	if err != nil {
		return nil, &parsererror.CategorizationError{Source: filePath, Err: err}
	}

	s.logger.Debug("Loaded category rules",
		logging.F(logging.FieldInputFile, filePath),
		logging.F(logging.FieldCount, len(rules)))
	return rules, nil
}

func resolveRules(configs []models.RuleConfig) ([]models.CategoryRule, error) {
	if len(configs) == 0 {
		return nil, errors.New("rules file defines no rules")
	}

	rules := make([]models.CategoryRule, 0, len(configs))
	for i, rc := range configs {
		category, err := models.ParseCategory(rc.Category)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}

		keywords := make([]string, 0, len(rc.Keywords))
		for _, keyword := range rc.Keywords {
			if keyword = strings.TrimSpace(keyword); keyword != "" {
				keywords = append(keywords, keyword)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no keywords", i+1, category)
		}

		rules = append(rules, models.CategoryRule{Category: category, Keywords: keywords})
	}
	return rules, nil
}

// SaveRules writes rules to path as YAML, creating parent directories as needed.
func (s *RuleStore) SaveRules(path string, rules []models.CategoryRule) error {
	file := models.RulesFile{Rules: make([]models.RuleConfig, 0, len(rules))}
	for _, rule := range rules {
		file.Rules = append(file.Rules, models.RuleConfig{
			Category: string(rule.Category),
			Keywords: rule.Keywords,
		})
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("error marshaling category rules: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing category rules: %w", err)
	}

	s.logger.Debug("Saved category rules",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(rules)))
	return nil
}
