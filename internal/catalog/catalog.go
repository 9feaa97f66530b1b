// Package catalog holds the fixed configuration of CaseForge domains: their
// categories, skills and level tables. The catalog is loaded once at startup
// and passed to the components that need it; it is never mutated afterwards.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed domains.yaml
var domainsYAML []byte

// LevelTier is one entry of a domain's level table
type LevelTier struct {
	Level      int    `yaml:"level" json:"level"`
	Title      string `yaml:"title" json:"title"`
	XPRequired int    `yaml:"xp_required" json:"xp_required"`
}

// Domain is one fixed subject area with its own categories, skills and
// 5-tier level table (ascending XP requirements, level 1 at 0 XP)
type Domain struct {
	Name       string      `yaml:"name" json:"name"`
	Color      string      `yaml:"color" json:"color"`
	Categories []string    `yaml:"categories" json:"categories"`
	Skills     []string    `yaml:"skills" json:"skills"`
	Levels     []LevelTier `yaml:"levels" json:"levels"`
}

// LevelForXP returns the highest level whose XP requirement is covered by xp.
// Levels are evaluated against the full table each time, so a single large XP
// jump advances past intermediate levels.
func (d *Domain) LevelForXP(xp int) int {
	level := 1
	for _, tier := range d.Levels {
		if xp >= tier.XPRequired {
			level = tier.Level
		}
	}
	return level
}

// TitleForLevel returns the title for a level, or "" if the level is unknown
func (d *Domain) TitleForLevel(level int) string {
	for _, tier := range d.Levels {
		if tier.Level == level {
			return tier.Title
		}
	}
	return ""
}

// SkillsForLevel returns the skills unlocked at the given level: reaching
// level L unlocks the first L-1 skills of the domain's skill list.
func (d *Domain) SkillsForLevel(level int) []string {
	n := level - 1
	if n < 0 {
		n = 0
	}
	if n > len(d.Skills) {
		n = len(d.Skills)
	}
	return d.Skills[:n]
}

// Catalog is the immutable set of configured domains
type Catalog struct {
	domains map[string]*Domain
	names   []string
}

type catalogFile struct {
	Domains []Domain `yaml:"domains"`
}

// Load parses the embedded domain configuration and validates its level
// tables. It is called once at startup.
func Load() (*Catalog, error) {
	return parse(domainsYAML)
}

func parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse domain catalog: %w", err)
	}
	if len(file.Domains) == 0 {
		return nil, fmt.Errorf("domain catalog is empty")
	}

	c := &Catalog{domains: make(map[string]*Domain, len(file.Domains))}
	for i := range file.Domains {
		d := &file.Domains[i]
		if err := validateDomain(d); err != nil {
			return nil, fmt.Errorf("domain %q: %w", d.Name, err)
		}
		if _, exists := c.domains[d.Name]; exists {
			return nil, fmt.Errorf("duplicate domain %q", d.Name)
		}
		c.domains[d.Name] = d
		c.names = append(c.names, d.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

func validateDomain(d *Domain) error {
	if d.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(d.Levels) != 5 {
		return fmt.Errorf("expected 5 level tiers, got %d", len(d.Levels))
	}
	for i, tier := range d.Levels {
		if tier.Level != i+1 {
			return fmt.Errorf("level tiers out of order at index %d", i)
		}
		if i == 0 && tier.XPRequired != 0 {
			return fmt.Errorf("level 1 must require 0 XP")
		}
		if i > 0 && tier.XPRequired <= d.Levels[i-1].XPRequired {
			return fmt.Errorf("XP requirements must be strictly ascending")
		}
	}
	return nil
}

// Get returns the domain with the given name, or false if it is not configured
func (c *Catalog) Get(name string) (*Domain, bool) {
	d, ok := c.domains[name]
	return d, ok
}

// Names returns the configured domain names in sorted order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// All returns the configured domains in name order
func (c *Catalog) All() []*Domain {
	domains := make([]*Domain, 0, len(c.names))
	for _, name := range c.names {
		domains = append(domains, c.domains[name])
	}
	return domains
}
