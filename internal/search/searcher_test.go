package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/taxonomy"
)

const searchCatalog = `{
  "Incident": {
    "Network": {
      "Connectivity": {
        "VPN": {
          "VPN Client": [
            {"issue": "VPN connection fails", "solution": "Restart the VPN client and reconnect"}
          ]
        }
      }
    }
  }
}`

func newSearcher(t *testing.T) Searcher {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxonomy.json")
	if err := os.WriteFile(path, []byte(searchCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	catalog, err := taxonomy.Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return NewTaxonomySearcher(catalog, "Incident")
}

func TestSearchReturnsScaledConfidence(t *testing.T) {
	searcher := newSearcher(t)

	match, ok, err := searcher.Search(context.Background(), "vpn connection fails")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Issue != "VPN connection fails" {
		t.Fatalf("unexpected issue %q", match.Issue)
	}
	if match.Confidence <= 0 || match.Confidence > 1 {
		t.Fatalf("confidence out of range: %f", match.Confidence)
	}
}

func TestSearchNoMatch(t *testing.T) {
	searcher := newSearcher(t)

	_, ok, err := searcher.Search(context.Background(), "espresso machine broken")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no match for unrelated query")
	}
}

func TestSearchRespectsCancelledContext(t *testing.T) {
	searcher := newSearcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := searcher.Search(ctx, "vpn"); err == nil {
		t.Fatal("expected context error")
	}
}
