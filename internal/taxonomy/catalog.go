// Package taxonomy loads and navigates the hierarchical issue catalog:
// ticket type -> smart category -> category -> type -> item -> issues.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Issue is a leaf entry pairing a known problem with its scripted solution.
type Issue struct {
	Issue    string `json:"issue"`
	Solution string `json:"solution"`
}

// itemMap holds the issues under each item name.
type itemMap map[string][]Issue

type catalogData map[string]map[string]map[string]map[string]itemMap

// Catalog is the in-memory issue taxonomy. It is safe for concurrent reads;
// Reload swaps the whole tree under the write lock.
type Catalog struct {
	path   string
	logger *zap.Logger

	mu   sync.RWMutex
	data catalogData
}

// Load reads the catalog file and builds the navigable tree.
func Load(path string, logger *zap.Logger) (*Catalog, error) {
	c := &Catalog{path: path, logger: logger, data: catalogData{}}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the catalog file. On parse failure the previous tree is
// kept so navigation never goes dark mid-edit.
func (c *Catalog) Reload() error {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read taxonomy %s: %w", c.path, err)
	}
	var parsed catalogData
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parse taxonomy %s: %w", c.path, err)
	}

	c.mu.Lock()
	c.data = parsed
	c.mu.Unlock()

	c.logger.Info("taxonomy loaded", zap.String("path", c.path))
	return nil
}

// TicketTypes returns the top-level ticket types in sorted order.
func (c *Catalog) TicketTypes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.data)
}

// SmartCategories lists the smart categories under a ticket type.
func (c *Catalog) SmartCategories(ticketType string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.data[ticketType])
}

// Categories lists categories under a smart category.
func (c *Catalog) Categories(ticketType, smartCategory string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.data[ticketType][smartCategory])
}

// Types lists types under a category.
func (c *Catalog) Types(ticketType, smartCategory, category string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.data[ticketType][smartCategory][category])
}

// Items lists items under a type.
func (c *Catalog) Items(ticketType, smartCategory, category, typeName string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.data[ticketType][smartCategory][category][typeName])
}

// Issues lists the issues under an item, in file order.
func (c *Catalog) Issues(ticketType, smartCategory, category, typeName, item string) []Issue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	issues := c.data[ticketType][smartCategory][category][typeName][item]
	out := make([]Issue, len(issues))
	copy(out, issues)
	return out
}

// IssueSolution returns the issue at the given zero-based index, or false
// when the path or index does not resolve.
func (c *Catalog) IssueSolution(ticketType, smartCategory, category, typeName, item string, index int) (Issue, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	issues := c.data[ticketType][smartCategory][category][typeName][item]
	if index < 0 || index >= len(issues) {
		return Issue{}, false
	}
	return issues[index], true
}

// ValidPath reports whether the given prefix of a navigation path exists.
// Empty segments end the check early, so partial paths validate too.
func (c *Catalog) ValidPath(ticketType, smartCategory, category, typeName, item string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byType, ok := c.data[ticketType]
	if !ok {
		return false
	}
	if smartCategory == "" {
		return true
	}
	bySmart, ok := byType[smartCategory]
	if !ok {
		return false
	}
	if category == "" {
		return true
	}
	byCat, ok := bySmart[category]
	if !ok {
		return false
	}
	if typeName == "" {
		return true
	}
	byName, ok := byCat[typeName]
	if !ok {
		return false
	}
	if item == "" {
		return true
	}
	_, ok = byName[item]
	return ok
}

// SearchResult is one scored candidate from a keyword search.
type SearchResult struct {
	Issue         string
	Solution      string
	SmartCategory string
	Category      string
	Type          string
	Item          string
	IssueIndex    int
	Score         int
}

const maxSearchResults = 5

// Search scans every issue under a ticket type and scores it by keyword
// overlap: a query word in the issue text counts 3, in the solution text 1.
// Results are sorted by score descending, capped at five.
func (c *Catalog) Search(query, ticketType string) []SearchResult {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var results []SearchResult
	for smartCat, categories := range c.data[ticketType] {
		for category, types := range categories {
			for typeName, items := range types {
				for item, issues := range items {
					for idx, issue := range issues {
						issueText := strings.ToLower(issue.Issue)
						solutionText := strings.ToLower(issue.Solution)
						score := 0
						for _, word := range words {
							if strings.Contains(issueText, word) {
								score += 3
							}
							if strings.Contains(solutionText, word) {
								score++
							}
						}
						if score > 0 {
							results = append(results, SearchResult{
								Issue:         issue.Issue,
								Solution:      issue.Solution,
								SmartCategory: smartCat,
								Category:      category,
								Type:          typeName,
								Item:          item,
								IssueIndex:    idx,
								Score:         score,
							})
						}
					}
				}
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Issue < results[j].Issue
	})
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	return results
}

// MaxScore is the highest score a query of n words can reach, used to
// normalize raw scores into a 0-1 confidence.
func MaxScore(query string) int {
	return 4 * len(strings.Fields(query))
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
