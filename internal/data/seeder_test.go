package data

import (
	"testing"

	"github.com/caseforge/backend/internal/catalog"
)

func TestEmbeddedProblemsAreWellFormed(t *testing.T) {
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}

	problems, err := GetEmbeddedProblems()
	if err != nil {
		t.Fatalf("GetEmbeddedProblems: %v", err)
	}
	if len(problems) == 0 {
		t.Fatal("embedded problem set is empty")
	}

	covered := make(map[string]bool)
	for _, p := range problems {
		if p.Title == "" || p.Description == "" {
			t.Errorf("problem %q has empty title or description", p.Title)
		}
		if !p.Difficulty.IsValid() {
			t.Errorf("problem %q has invalid difficulty %q", p.Title, p.Difficulty)
		}
		if p.TimeLimitMinutes <= 0 {
			t.Errorf("problem %q has non-positive time limit", p.Title)
		}
		dom, ok := cat.Get(p.Domain)
		if !ok {
			t.Errorf("problem %q references unconfigured domain %q", p.Title, p.Domain)
			continue
		}
		covered[p.Domain] = true

		categoryKnown := false
		for _, c := range dom.Categories {
			if c == p.Category {
				categoryKnown = true
				break
			}
		}
		if !categoryKnown {
			t.Errorf("problem %q uses category %q not configured for %q", p.Title, p.Category, p.Domain)
		}
	}

	// Every configured domain ships at least one starter case.
	for _, name := range cat.Names() {
		if !covered[name] {
			t.Errorf("domain %q has no seed problems", name)
		}
	}
}
