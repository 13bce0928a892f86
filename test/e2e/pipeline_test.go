package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/loopline-labs/sovscope/internal/adapter/handler"
	"github.com/loopline-labs/sovscope/internal/adapter/provider"
	"github.com/loopline-labs/sovscope/internal/core/domain"
)

// In-memory repository backing the API round-trip test.
type mockRepository struct {
	investigations map[string]*domain.Investigation
	evidence       map[string][]domain.EvidenceRecord
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		investigations: make(map[string]*domain.Investigation),
		evidence:       make(map[string][]domain.EvidenceRecord),
	}
}

func (m *mockRepository) SaveInvestigation(ctx context.Context, inv *domain.Investigation) error {
	m.investigations[inv.ID] = inv
	return nil
}

func (m *mockRepository) SaveEvidenceBatch(ctx context.Context, investigationID string, records []domain.EvidenceRecord) error {
	m.evidence[investigationID] = append(m.evidence[investigationID], records...)
	return nil
}

func (m *mockRepository) FindInvestigation(ctx context.Context, id string) (*domain.Investigation, error) {
	inv, ok := m.investigations[id]
	if !ok {
		return nil, errors.New("investigation not found")
	}
	return inv, nil
}

func (m *mockRepository) FindRecent(ctx context.Context, since time.Time, limit int) ([]domain.Investigation, error) {
	var out []domain.Investigation
	for _, inv := range m.investigations {
		out = append(out, *inv)
	}
	return out, nil
}

func (m *mockRepository) FindByQuery(ctx context.Context, query string, limit int) ([]domain.Investigation, error) {
	var out []domain.Investigation
	for _, inv := range m.investigations {
		if inv.Query == query {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *mockRepository) FindEvidence(ctx context.Context, investigationID string) ([]domain.EvidenceRecord, error) {
	return m.evidence[investigationID], nil
}

const searchPageHTML = `<html><body>
<div class="g">
  <a href="https://www.amazon.com/atomberg-efficio"><h3>Atomberg Efficio Review</h3></a>
  <div class="VwiC3b">In-depth review of the atomberg smart fan and its bldc motor efficiency</div>
</div>
<div class="g">
  <a href="https://example.com/compare"><h3>Atomberg vs Havells</h3></a>
  <div class="VwiC3b">atomberg versus havells detailed comparison of bldc ceiling fans</div>
</div>
<div class="g">
  <a href="https://example.org/guide"><h3>Havells Fan Guide</h3></a>
  <div class="VwiC3b">havells ceiling fan buying guide for large Indian rooms</div>
</div>
</body></html>`

// Scrape, analyze and serve: the whole investigation lifecycle against a
// stubbed search engine and an in-memory store.
func TestInvestigationLifecycle(t *testing.T) {
	searchEngine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchPageHTML))
	}))
	defer searchEngine.Close()

	cfg := domain.DefaultConfig()
	reg, err := domain.NewBrandRegistry(cfg.BrandPatterns)
	if err != nil {
		t.Fatalf("brand registry: %v", err)
	}

	// Collect
	p := provider.NewGoogleSearchProviderWithBaseURL(searchEngine.Client(), searchEngine.URL)
	records, err := p.Collect(context.Background(), "atomberg smart fan", 0)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("collected %d records, want 3", len(records))
	}

	// Analyze
	inv := domain.NewInvestigation("atomberg smart fan", cfg.FocusBrand, []string{"google"})
	result := inv.Analyze(records, reg, cfg)

	if inv.Records != 3 {
		t.Errorf("Records = %d, want 3", inv.Records)
	}
	if inv.FinishedAt.IsZero() {
		t.Error("FinishedAt not set after Analyze")
	}

	if !result.SoV.Stage.OK() {
		t.Fatalf("SoV stage = %+v, want ok", result.SoV.Stage)
	}
	if !result.Competitive.Stage.OK() {
		t.Fatalf("competitive stage = %+v, want ok", result.Competitive.Stage)
	}

	// Two records mention atomberg, two mention havells; atomberg takes the
	// authority and review engagement so it leads.
	if result.Aggregate.Mentions["atomberg"] != 2 || result.Aggregate.Mentions["havells"] != 2 {
		t.Errorf("mentions = %v, want atomberg 2 havells 2", result.Aggregate.Mentions)
	}
	if leader := result.SoV.Landscape.MarketLeader; leader != "atomberg" {
		t.Errorf("market leader = %s, want atomberg", leader)
	}
	if rank := result.SoV.Landscape.FocusBrandRank; rank != 1 {
		t.Errorf("focus brand rank = %d, want 1", rank)
	}
	if len(result.Insights) == 0 {
		t.Error("no insights generated for a successful run")
	}
	for brand, s := range result.Competitive.Scores {
		if s.TotalScore < 0 || s.TotalScore > 100 {
			t.Errorf("%s total score %v out of [0,100]", brand, s.TotalScore)
		}
	}

	// Persist and serve
	repo := newMockRepository()
	if err := repo.SaveEvidenceBatch(context.Background(), inv.ID, records); err != nil {
		t.Fatalf("save evidence: %v", err)
	}
	if err := repo.SaveInvestigation(context.Background(), inv); err != nil {
		t.Fatalf("save investigation: %v", err)
	}

	h := handler.NewRestHandler(repo)
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/investigations/{id}", h.GetInvestigation).Methods("GET")
	router.HandleFunc("/api/v1/investigations/{id}/brands/{brand}", h.GetBrandSoV).Methods("GET")
	api := httptest.NewServer(router)
	defer api.Close()

	resp, err := http.Get(api.URL + "/api/v1/investigations/" + inv.ID + "/brands/atomberg")
	if err != nil {
		t.Fatalf("api request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("api status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Exists     bool               `json:"exists"`
		SoVMetrics *domain.SoVMetrics `json:"sov_metrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode api response: %v", err)
	}
	if !body.Exists {
		t.Error("api reports focus brand missing from its own investigation")
	}
	if body.SoVMetrics == nil || body.SoVMetrics.TotalMentions != 2 {
		t.Errorf("api sov_metrics = %+v, want 2 mentions", body.SoVMetrics)
	}
}

// Evidence without any tracked brand degrades stage by stage instead of
// failing the run.
func TestInvestigationLifecycle_NoBrandData(t *testing.T) {
	cfg := domain.DefaultConfig()
	reg, err := domain.NewBrandRegistry(cfg.BrandPatterns)
	if err != nil {
		t.Fatalf("brand registry: %v", err)
	}

	records := []domain.EvidenceRecord{
		domain.NormalizeSearchResult("r1", "Generic appliance news", "nothing about tracked makers", "https://example.com/news", 1, "smart fan"),
	}

	inv := domain.NewInvestigation("smart fan", cfg.FocusBrand, []string{"google"})
	result := inv.Analyze(records, reg, cfg)

	if result.Aggregate.Records != 1 {
		t.Errorf("aggregate records = %d, want 1", result.Aggregate.Records)
	}
	if result.SoV.Stage.Status != domain.StageSkipped {
		t.Errorf("SoV stage = %+v, want skipped", result.SoV.Stage)
	}
	if result.Competitive.Stage.Status != domain.StageSkipped {
		t.Errorf("competitive stage = %+v, want skipped", result.Competitive.Stage)
	}
	if result.Insights != nil || result.Recommendations != nil {
		t.Errorf("insights = %v recommendations = %v, want none", result.Insights, result.Recommendations)
	}
	if inv.FinishedAt.IsZero() {
		t.Error("FinishedAt not set for a degraded run")
	}
}
