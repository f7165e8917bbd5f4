package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/octobees/leads-scraper/internal/scraper"
)

// errNoTargets is returned for an input file without any website.
var errNoTargets = errors.New("no websites in input")

func readTargetsFile(path string) ([]scraper.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	return parseTargets(data)
}

// parseTargets accepts YAML or JSON: a list of targets, or {websites: [...]}.
// A bare string entry is taken as the url.
func parseTargets(data []byte) ([]scraper.Target, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, errNoTargets
	}

	list := root.Content[0]
	if list.Kind == yaml.MappingNode {
		var wrapped struct {
			Websites yaml.Node `yaml:"websites"`
		}
		if err := list.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("parse targets: %w", err)
		}
		list = &wrapped.Websites
	}
	if list.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("parse targets: expected a list of websites")
	}

	targets := make([]scraper.Target, 0, len(list.Content))
	for i, item := range list.Content {
		var t scraper.Target
		if item.Kind == yaml.ScalarNode {
			t.URL = item.Value
		} else if err := item.Decode(&t); err != nil {
			return nil, fmt.Errorf("parse target %d: %w", i+1, err)
		}
		t.URL = strings.TrimSpace(t.URL)
		t.CompanyName = strings.TrimSpace(t.CompanyName)
		targets = append(targets, t)
	}
	if len(targets) == 0 {
		return nil, errNoTargets
	}
	return targets, nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
