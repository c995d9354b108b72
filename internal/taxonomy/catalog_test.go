package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

const sampleCatalog = `{
  "Incident": {
    "Network": {
      "Hardware": {
        "Network": {
          "Port": [
            {"issue": "Network port not working", "solution": "Check the cable"},
            {"issue": "Port is loose", "solution": "Secure the connector"}
          ]
        }
      },
      "Connectivity": {
        "VPN": {
          "VPN Client": [
            {"issue": "VPN connection fails", "solution": "Restart the VPN client"}
          ]
        }
      }
    }
  }
}`

func loadSample(t *testing.T) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxonomy.json")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	catalog, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return catalog
}

func TestNavigationLevels(t *testing.T) {
	catalog := loadSample(t)

	if got := catalog.TicketTypes(); len(got) != 1 || got[0] != "Incident" {
		t.Fatalf("unexpected ticket types %v", got)
	}
	if got := catalog.SmartCategories("Incident"); len(got) != 1 || got[0] != "Network" {
		t.Fatalf("unexpected smart categories %v", got)
	}
	categories := catalog.Categories("Incident", "Network")
	if len(categories) != 2 || categories[0] != "Connectivity" || categories[1] != "Hardware" {
		t.Fatalf("expected sorted categories, got %v", categories)
	}
	issues := catalog.Issues("Incident", "Network", "Hardware", "Network", "Port")
	if len(issues) != 2 || issues[0].Issue != "Network port not working" {
		t.Fatalf("unexpected issues %v", issues)
	}
}

func TestIssueSolutionBounds(t *testing.T) {
	catalog := loadSample(t)

	if _, ok := catalog.IssueSolution("Incident", "Network", "Hardware", "Network", "Port", 1); !ok {
		t.Fatal("expected index 1 to resolve")
	}
	if _, ok := catalog.IssueSolution("Incident", "Network", "Hardware", "Network", "Port", 2); ok {
		t.Fatal("expected index 2 out of range")
	}
	if _, ok := catalog.IssueSolution("Incident", "Network", "Hardware", "Network", "Missing", 0); ok {
		t.Fatal("expected unknown item to miss")
	}
}

func TestValidPathPrefixes(t *testing.T) {
	catalog := loadSample(t)

	if !catalog.ValidPath("Incident", "", "", "", "") {
		t.Fatal("ticket type alone should validate")
	}
	if !catalog.ValidPath("Incident", "Network", "Hardware", "", "") {
		t.Fatal("partial path should validate")
	}
	if catalog.ValidPath("Incident", "Network", "Nope", "", "") {
		t.Fatal("wrong category should not validate")
	}
	if catalog.ValidPath("Request", "", "", "", "") {
		t.Fatal("unknown ticket type should not validate")
	}
}

func TestSearchScoringAndOrder(t *testing.T) {
	catalog := loadSample(t)

	results := catalog.Search("network port not working", "Incident")
	if len(results) == 0 {
		t.Fatal("expected search results")
	}
	if results[0].Issue != "Network port not working" {
		t.Fatalf("expected exact issue first, got %q", results[0].Issue)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatal("results not sorted by score descending")
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	catalog := loadSample(t)
	if results := catalog.Search("   ", "Incident"); results != nil {
		t.Fatalf("expected no results for blank query, got %v", results)
	}
}

func TestReloadKeepsCatalogOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.json")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	catalog, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write broken catalog: %v", err)
	}
	if err := catalog.Reload(); err == nil {
		t.Fatal("expected reload error for broken file")
	}
	if got := catalog.TicketTypes(); len(got) != 1 {
		t.Fatalf("previous catalog should survive a failed reload, got %v", got)
	}
}
