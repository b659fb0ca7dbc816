package rules

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tradedocs/lcverify/internal/domain"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// File mirrors the YAML rule file.
type File struct {
	Version         string              `yaml:"version" validate:"required"`
	DefaultSeverity string              `yaml:"default_severity" validate:"required,oneof=critical high medium low"`
	ComparedFields  []string            `yaml:"compared_fields" validate:"required,min=1,dive,required"`
	Pairings        []PairingEntry      `yaml:"pairings" validate:"dive"`
	FieldSeverity   map[string]string   `yaml:"field_severity" validate:"dive,keys,required,endkeys,oneof=critical high medium low"`
	Mandatory       map[string][]string `yaml:"mandatory" validate:"required,dive,keys,required,endkeys,dive,required"`
	Rules           []RuleEntry         `yaml:"rules" validate:"dive"`
	Fallback        RuleEntry           `yaml:"fallback"`
}

type PairingEntry struct {
	Left  string `yaml:"left" validate:"required"`
	Right string `yaml:"right" validate:"required,nefield=Left"`
}

type RuleEntry struct {
	Field       string `yaml:"field"`
	Reference   string `yaml:"reference" validate:"required"`
	Explanation string `yaml:"explanation" validate:"required"`
	Advice      string `yaml:"advice"`
	Severity    string `yaml:"severity" validate:"omitempty,oneof=critical high medium low"`
}

var validate = validator.New()

// Default returns the rule set embedded in the binary.
func Default() (*RuleSet, error) {
	return Parse(defaultRulesYAML)
}

// MustDefault is Default for program start-up and tests.
func MustDefault() *RuleSet {
	rs, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded rules: %v", err))
	}
	return rs
}

// Load reads a rule file from disk. An empty path yields the embedded rules.
func Load(path string) (*RuleSet, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML rule file.
func Parse(data []byte) (*RuleSet, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("validate rules file: %w", err)
	}
	return f.build()
}

func (f *File) build() (*RuleSet, error) {
	rs := &RuleSet{
		version:         f.Version,
		mandatory:       make(map[domain.DocumentType][]domain.FieldName, len(f.Mandatory)),
		fieldSeverity:   make(map[domain.FieldName]domain.Severity, len(f.FieldSeverity)),
		defaultSeverity: domain.Severity(f.DefaultSeverity),
		rules:           make(map[domain.FieldName]UCPRule, len(f.Rules)),
	}

	for typeName, fields := range f.Mandatory {
		t, err := domain.ParseDocumentType(typeName)
		if err != nil {
			return nil, fmt.Errorf("mandatory: %w", err)
		}
		seen := make(map[string]bool, len(fields))
		names := make([]domain.FieldName, 0, len(fields))
		for _, name := range fields {
			if seen[name] {
				return nil, fmt.Errorf("mandatory %s: duplicate field %q", t, name)
			}
			seen[name] = true
			names = append(names, domain.FieldName(name))
		}
		rs.mandatory[t] = names
	}

	for name, sev := range f.FieldSeverity {
		rs.fieldSeverity[domain.FieldName(name)] = domain.Severity(sev)
	}

	for _, name := range f.ComparedFields {
		rs.comparedFields = append(rs.comparedFields, domain.FieldName(name))
	}

	for i, p := range f.Pairings {
		left, err := domain.ParseDocumentType(p.Left)
		if err != nil {
			return nil, fmt.Errorf("pairing %d: %w", i, err)
		}
		right, err := domain.ParseDocumentType(p.Right)
		if err != nil {
			return nil, fmt.Errorf("pairing %d: %w", i, err)
		}
		rs.pairings = append(rs.pairings, Pairing{Left: left, Right: right})
	}

	for i, r := range f.Rules {
		if r.Field == "" {
			return nil, fmt.Errorf("rule %d: field is required", i)
		}
		name := domain.FieldName(r.Field)
		if _, dup := rs.rules[name]; dup {
			return nil, fmt.Errorf("rule %d: duplicate rule for field %q", i, r.Field)
		}
		rs.rules[name] = r.toRule()
	}

	if f.Fallback.Reference == "" {
		return nil, fmt.Errorf("fallback: reference is required")
	}
	rs.fallback = f.Fallback.toRule()

	return rs, nil
}

func (r RuleEntry) toRule() UCPRule {
	return UCPRule{
		Field:       domain.FieldName(r.Field),
		Reference:   r.Reference,
		Explanation: r.Explanation,
		Advice:      r.Advice,
		Severity:    domain.Severity(r.Severity),
	}
}

func sortRules(rs []UCPRule) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Field < rs[j].Field })
}
