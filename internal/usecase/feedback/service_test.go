package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/objones25/FeedbackFlow/internal/domain"
	domcluster "github.com/objones25/FeedbackFlow/internal/domain/cluster"
	domitem "github.com/objones25/FeedbackFlow/internal/domain/item"
	"github.com/objones25/FeedbackFlow/internal/usecase/clustering"
)

// --- Mocks ---

type mockRepo struct {
	savedItems   []domitem.Item
	saveItemErr  error
	listItems    []domitem.Item
	listErr      error
	savedResult  *domcluster.Result
	saveResErr   error
	getResult    domcluster.Result
	getErr       error
	deletedIDs   []string
	lastRun      time.Time
	cachedThr    float64
	hasCachedThr bool
	invalidated  bool
}

func (m *mockRepo) SaveItems(_ context.Context, items []domitem.Item) error {
	m.savedItems = append(m.savedItems, items...)
	return m.saveItemErr
}

func (m *mockRepo) ListItems(_ context.Context) ([]domitem.Item, error) {
	return m.listItems, m.listErr
}

func (m *mockRepo) SaveResult(_ context.Context, result domcluster.Result) error {
	m.savedResult = &result
	return m.saveResErr
}

func (m *mockRepo) GetResult(_ context.Context) (domcluster.Result, error) {
	return m.getResult, m.getErr
}

func (m *mockRepo) GetItem(_ context.Context, id string) (domitem.Item, error) {
	for _, it := range m.listItems {
		if it.ID() == id {
			return it, nil
		}
	}
	return domitem.Item{}, domain.ErrNotFound
}

func (m *mockRepo) DeleteItem(_ context.Context, id string) error {
	for i, it := range m.listItems {
		if it.ID() == id {
			m.listItems = append(m.listItems[:i], m.listItems[i+1:]...)
			m.deletedIDs = append(m.deletedIDs, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockRepo) LastRunAt(_ context.Context) (time.Time, error) {
	if m.lastRun.IsZero() {
		return time.Time{}, domain.ErrNotFound
	}
	return m.lastRun, nil
}

func (m *mockRepo) CachedThreshold(_ context.Context) (float64, error) {
	if !m.hasCachedThr {
		return 0, domain.ErrNotFound
	}
	return m.cachedThr, nil
}

func (m *mockRepo) CacheThreshold(_ context.Context, threshold float64) error {
	m.cachedThr = threshold
	m.hasCachedThr = true
	return nil
}

func (m *mockRepo) InvalidateThreshold(_ context.Context) error {
	m.hasCachedThr = false
	m.invalidated = true
	return nil
}

type mockBatchEmbedder struct {
	result domain.BatchEmbeddingResult
	err    error
	texts  []string
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.texts = texts
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	if m.result.Embeddings == nil {
		// По одному одинаковому вектору на текст
		embeddings := make([][]float32, len(texts))
		for i := range texts {
			embeddings[i] = []float32{0.1, 0.2, 0.3}
		}
		return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
	}
	return m.result, nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

type mockSentiment struct {
	result domain.Sentiment
	err    error
	calls  int
}

func (m *mockSentiment) Score(_ context.Context, _ string) (domain.Sentiment, error) {
	m.calls++
	if m.err != nil {
		return domain.Sentiment{}, m.err
	}
	return m.result, nil
}

type mockAnalyzer struct {
	result domain.Analysis
	err    error
}

func (m *mockAnalyzer) Analyze(_ context.Context, _ string) (domain.Analysis, error) {
	if m.err != nil {
		return domain.Analysis{}, m.err
	}
	return m.result, nil
}

func newService(repo *mockRepo, batch *mockBatchEmbedder, embed *mockEmbedder,
	sent *mockSentiment, an *mockAnalyzer) *Service {
	return New(repo, batch, embed, sent, an, clustering.New(), zap.NewNop())
}

func mkItem(t *testing.T, id, text string, embedding []float32) domitem.Item {
	t.Helper()
	it, err := domitem.New(id, text, embedding)
	if err != nil {
		t.Fatalf("item.New: %v", err)
	}
	return it
}

// --- Sentence splitting ---

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"two sentences", "App is slow. Login fails!", []string{"App is slow", "Login fails"}},
		{"question mark", "Why is checkout broken?", []string{"Why is checkout broken"}},
		{"no terminator", "great product overall", []string{"great product overall"}},
		{"blank fragments", "ok... fine.", []string{"ok", "fine"}},
		{"empty", "   ", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitSentences(tc.input)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("sentence[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

// --- Ingest ---

func TestIngest_SplitsScoresAndSaves(t *testing.T) {
	repo := &mockRepo{}
	batch := &mockBatchEmbedder{}
	sent := &mockSentiment{result: domain.Sentiment{
		Label: domain.SentimentNegative, Score: -0.5, Confidence: 0.8,
	}}
	svc := newService(repo, batch, &mockEmbedder{}, sent, &mockAnalyzer{})

	items, err := svc.Ingest(context.Background(), []string{"App is slow. Login fails."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if len(batch.texts) != 2 {
		t.Errorf("expected 2 texts embedded, got %d", len(batch.texts))
	}
	if sent.calls != 2 {
		t.Errorf("expected 2 sentiment calls, got %d", sent.calls)
	}
	if len(repo.savedItems) != 2 {
		t.Errorf("expected 2 saved items, got %d", len(repo.savedItems))
	}

	s, ok := items[0].Sentiment()
	if !ok || s.Label != domain.SentimentNegative {
		t.Errorf("expected negative sentiment on item, got %v ok=%v", s, ok)
	}
	if items[0].ID() == items[1].ID() {
		t.Error("expected distinct item ids")
	}
}

func TestIngest_SentimentFailureIsNonFatal(t *testing.T) {
	repo := &mockRepo{}
	sent := &mockSentiment{err: errors.New("provider down")}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, sent, &mockAnalyzer{})

	items, err := svc.Ingest(context.Background(), []string{"App is slow."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := items[0].Sentiment(); ok {
		t.Error("expected unscored item when sentiment provider fails")
	}
}

func TestIngest_EmptyInput(t *testing.T) {
	svc := newService(&mockRepo{}, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	_, err := svc.Ingest(context.Background(), []string{"   ", "..."})
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestIngest_EmbedderFailure(t *testing.T) {
	batch := &mockBatchEmbedder{err: errors.New("quota exceeded")}
	svc := newService(&mockRepo{}, batch, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	_, err := svc.Ingest(context.Background(), []string{"App is slow."})
	if err == nil {
		t.Fatal("expected error when embedder fails")
	}
}

// --- Regroup / Preview ---

func TestRegroup_ClustersAndPersists(t *testing.T) {
	repo := &mockRepo{listItems: []domitem.Item{
		mkItem(t, "a", "checkout is slow", []float32{0.8, 0.2}),
		mkItem(t, "b", "checkout very slow", []float32{0.81, 0.19}),
		mkItem(t, "c", "love the design", []float32{0.1, 0.9}),
		mkItem(t, "d", "design looks great", []float32{0.11, 0.91}),
	}}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	result, err := svc.Regroup(context.Background(), 0.8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Clusters()) != 2 {
		t.Errorf("expected 2 clusters, got %d", len(result.Clusters()))
	}
	if repo.savedResult == nil {
		t.Fatal("expected result to be persisted")
	}
	if len(repo.savedResult.Clusters()) != 2 {
		t.Errorf("persisted %d clusters", len(repo.savedResult.Clusters()))
	}
}

func TestRegroup_ZeroThresholdUsesDefault(t *testing.T) {
	repo := &mockRepo{listItems: []domitem.Item{
		mkItem(t, "a", "one", []float32{1, 0}),
		mkItem(t, "b", "two", []float32{0.99, 0.01}),
	}}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	// Default 0.3: the near-identical pair groups
	result, err := svc.Regroup(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Clusters()) != 1 {
		t.Errorf("expected 1 cluster with default threshold, got %d", len(result.Clusters()))
	}
}

func TestPreview_DoesNotPersist(t *testing.T) {
	repo := &mockRepo{listItems: []domitem.Item{
		mkItem(t, "a", "one", []float32{1, 0}),
		mkItem(t, "b", "two", []float32{0.99, 0.01}),
	}}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	if _, err := svc.Preview(context.Background(), 0.3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.savedResult != nil {
		t.Error("preview must not persist the result")
	}
}

func TestRegroup_EmptyStore(t *testing.T) {
	svc := newService(&mockRepo{}, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	_, err := svc.Regroup(context.Background(), 0.3)
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

// --- MergeClusters ---

func mergeFixture(t *testing.T) (*mockRepo, []domitem.Item) {
	t.Helper()
	items := []domitem.Item{
		mkItem(t, "a", "checkout is slow", []float32{1, 0}),
		mkItem(t, "b", "checkout very slow", []float32{1, 0}),
		mkItem(t, "c", "payments time out", []float32{0, 1}),
		mkItem(t, "d", "payment page hangs", []float32{0, 1}),
	}
	c1 := domcluster.Reconstruct("c-1", []string{"a", "b"}, []float32{1, 0}, "checkout", 0.9)
	c2 := domcluster.Reconstruct("c-2", []string{"c", "d"}, []float32{0, 1}, "payments", 0.9)
	repo := &mockRepo{
		listItems: items,
		getResult: domcluster.NewResult([]domcluster.Cluster{c1, c2}, nil),
	}
	return repo, items
}

func TestMergeClusters_ReplacesPairWithMerged(t *testing.T) {
	repo, _ := mergeFixture(t)
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	merged, err := svc.MergeClusters(context.Background(), "c-1", "c-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if merged.Size() != 4 {
		t.Errorf("merged size = %d, want 4", merged.Size())
	}
	if merged.ID() == "c-1" || merged.ID() == "c-2" {
		t.Error("merged cluster must have a fresh id")
	}
	if repo.savedResult == nil {
		t.Fatal("expected updated result to be persisted")
	}
	saved := repo.savedResult.Clusters()
	if len(saved) != 1 {
		t.Fatalf("expected 1 cluster after merge, got %d", len(saved))
	}
	if saved[0].ID() != merged.ID() {
		t.Errorf("persisted cluster id = %s, want %s", saved[0].ID(), merged.ID())
	}
}

func TestMergeClusters_UnknownID(t *testing.T) {
	repo, _ := mergeFixture(t)
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	_, err := svc.MergeClusters(context.Background(), "c-1", "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMergeClusters_SameID(t *testing.T) {
	repo, _ := mergeFixture(t)
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	_, err := svc.MergeClusters(context.Background(), "c-1", "c-1")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

// --- Similar ---

func TestSimilar_ReturnsNeighbors(t *testing.T) {
	repo := &mockRepo{listItems: []domitem.Item{
		mkItem(t, "a", "checkout is slow", []float32{1, 0}),
		mkItem(t, "b", "love the design", []float32{0, 1}),
	}}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 0}}}
	svc := newService(repo, &mockBatchEmbedder{}, embed, &mockSentiment{}, &mockAnalyzer{})

	neighbors, err := svc.Similar(context.Background(), "slow checkout", 0.5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(neighbors) != 1 {
		t.Fatalf("expected 1 neighbor, got %d", len(neighbors))
	}
	if neighbors[0].Item.ID() != "a" {
		t.Errorf("neighbor = %s, want a", neighbors[0].Item.ID())
	}
}

func TestSimilar_EmptyQuery(t *testing.T) {
	svc := newService(&mockRepo{}, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	_, err := svc.Similar(context.Background(), "  ", 0.5, 10)
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

// --- Trends ---

func TestTrends_SentimentBreakdown(t *testing.T) {
	neg := domain.Sentiment{Label: domain.SentimentNegative, Score: -0.8, Confidence: 0.9}
	pos := domain.Sentiment{Label: domain.SentimentPositive, Score: 0.6, Confidence: 0.9}

	itemA := mkItem(t, "a", "checkout is slow", []float32{1, 0})
	itemB := mkItem(t, "b", "checkout very slow", []float32{1, 0})
	itemC := mkItem(t, "c", "love the checkout", []float32{1, 0})
	items := []domitem.Item{
		itemA.WithSentiment(neg),
		itemB.WithSentiment(neg),
		itemC.WithSentiment(pos),
		mkItem(t, "d", "no opinion", []float32{1, 0}),
	}
	c := domcluster.Reconstruct("c-1", []string{"a", "b", "c", "d"}, []float32{1, 0}, "checkout", 0.9)
	repo := &mockRepo{
		listItems: items,
		getResult: domcluster.NewResult([]domcluster.Cluster{c}, nil),
	}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	trends, err := svc.Trends(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trends) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(trends))
	}

	tr := trends[0]
	if tr.Negative != 2 || tr.Positive != 1 || tr.Neutral != 0 || tr.Unscored != 1 {
		t.Errorf("breakdown = %+v", tr)
	}
	// (-0.8 - 0.8 + 0.6) / 3
	wantAvg := (-0.8 - 0.8 + 0.6) / 3
	if diff := tr.AvgScore - wantAvg; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AvgScore = %f, want %f", tr.AvgScore, wantAvg)
	}
}

func TestTrends_MissingMember(t *testing.T) {
	c := domcluster.Reconstruct("c-1", []string{"ghost"}, []float32{1, 0}, "t", 0.5)
	repo := &mockRepo{getResult: domcluster.NewResult([]domcluster.Cluster{c}, nil)}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	_, err := svc.Trends(context.Background())
	if !errors.Is(err, domain.ErrMissingMember) {
		t.Errorf("expected ErrMissingMember, got %v", err)
	}
}

// --- Analyze ---

func TestAnalyze_Passthrough(t *testing.T) {
	an := &mockAnalyzer{result: domain.Analysis{Category: "billing", Urgency: "high"}}
	svc := newService(&mockRepo{}, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, an)

	result, err := svc.Analyze(context.Background(), "my invoice total is wrong")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Category != "billing" {
		t.Errorf("Category = %q", result.Category)
	}
}

func TestAnalyze_EmptyText(t *testing.T) {
	svc := newService(&mockRepo{}, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	_, err := svc.Analyze(context.Background(), "")
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

// --- Item lifecycle ---

func TestItem_ReturnsStored(t *testing.T) {
	repo := &mockRepo{listItems: []domitem.Item{
		mkItem(t, "a", "slow checkout", []float32{1, 0}),
	}}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	it, err := svc.Item(context.Background(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Text() != "slow checkout" {
		t.Errorf("text = %q", it.Text())
	}

	_, err = svc.Item(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveItem_PrunesLatestResult(t *testing.T) {
	c1 := domcluster.Reconstruct("c-1", []string{"a", "b"}, []float32{1, 0}, "checkout", 0.9)
	c2 := domcluster.Reconstruct("c-2", []string{"c"}, []float32{0, 1}, "login", 0.8)
	repo := &mockRepo{
		listItems: []domitem.Item{
			mkItem(t, "a", "slow checkout", []float32{1, 0}),
			mkItem(t, "b", "checkout hangs", []float32{1, 0}),
			mkItem(t, "c", "login fails", []float32{0, 1}),
		},
		getResult: domcluster.NewResult([]domcluster.Cluster{c1, c2}, []string{"x"}),
	}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	if err := svc.RemoveItem(context.Background(), "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.deletedIDs) != 1 || repo.deletedIDs[0] != "b" {
		t.Errorf("deleted = %v", repo.deletedIDs)
	}
	if !repo.invalidated {
		t.Error("expected threshold cache invalidation")
	}
	if repo.savedResult == nil {
		t.Fatal("expected pruned result to be persisted")
	}
	pruned, ok := repo.savedResult.ClusterByID("c-1")
	if !ok {
		t.Fatal("cluster c-1 missing from pruned result")
	}
	if pruned.Size() != 1 || pruned.MemberIDs()[0] != "a" {
		t.Errorf("c-1 members = %v", pruned.MemberIDs())
	}
}

func TestRemoveItem_DropsEmptiedCluster(t *testing.T) {
	c := domcluster.Reconstruct("c-1", []string{"a"}, []float32{1, 0}, "checkout", 0.9)
	repo := &mockRepo{
		listItems: []domitem.Item{mkItem(t, "a", "slow checkout", []float32{1, 0})},
		getResult: domcluster.NewResult([]domcluster.Cluster{c}, nil),
	}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	if err := svc.RemoveItem(context.Background(), "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.savedResult == nil {
		t.Fatal("expected pruned result to be persisted")
	}
	if len(repo.savedResult.Clusters()) != 0 {
		t.Errorf("expected no clusters, got %d", len(repo.savedResult.Clusters()))
	}
}

func TestRemoveItem_OutlierOnly(t *testing.T) {
	repo := &mockRepo{
		listItems: []domitem.Item{mkItem(t, "x", "odd one", []float32{1, 0})},
		getResult: domcluster.NewResult(nil, []string{"x", "y"}),
	}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	if err := svc.RemoveItem(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.savedResult == nil {
		t.Fatal("expected pruned result to be persisted")
	}
	got := repo.savedResult.Outliers()
	if len(got) != 1 || got[0] != "y" {
		t.Errorf("outliers = %v", got)
	}
}

func TestRemoveItem_UntouchedResultNotRewritten(t *testing.T) {
	c := domcluster.Reconstruct("c-1", []string{"a"}, []float32{1, 0}, "checkout", 0.9)
	repo := &mockRepo{
		listItems: []domitem.Item{
			mkItem(t, "a", "slow checkout", []float32{1, 0}),
			mkItem(t, "z", "not clustered yet", []float32{0, 1}),
		},
		getResult: domcluster.NewResult([]domcluster.Cluster{c}, nil),
	}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	if err := svc.RemoveItem(context.Background(), "z"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.savedResult != nil {
		t.Error("result should not be rewritten when the item was never clustered")
	}
}

func TestRemoveItem_Unknown(t *testing.T) {
	svc := newService(&mockRepo{}, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	err := svc.RemoveItem(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIngest_InvalidatesThresholdCache(t *testing.T) {
	repo := &mockRepo{cachedThr: 0.5, hasCachedThr: true}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	if _, err := svc.Ingest(context.Background(), []string{"App is slow."}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.invalidated {
		t.Error("expected threshold cache invalidation after ingest")
	}
}

// --- Threshold suggestion ---

func TestSuggestThreshold_UsesCache(t *testing.T) {
	repo := &mockRepo{
		cachedThr:    0.42,
		hasCachedThr: true,
		listErr:      errors.New("storage must not be hit on cache hit"),
	}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	got, err := svc.SuggestThreshold(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.42 {
		t.Errorf("threshold = %v, want cached 0.42", got)
	}
}

func TestSuggestThreshold_CachesComputed(t *testing.T) {
	repo := &mockRepo{listItems: []domitem.Item{
		mkItem(t, "a", "slow checkout", []float32{1, 0}),
		mkItem(t, "b", "checkout hangs", []float32{0.9, 0.1}),
		mkItem(t, "c", "login fails", []float32{0, 1}),
	}}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	got, err := svc.SuggestThreshold(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.hasCachedThr {
		t.Fatal("expected computed threshold to be cached")
	}
	if repo.cachedThr != got {
		t.Errorf("cached %v, returned %v", repo.cachedThr, got)
	}
}

// --- Last run ---

func TestLastRunAt_Passthrough(t *testing.T) {
	want := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	repo := &mockRepo{lastRun: want}
	svc := newService(repo, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{})

	got, err := svc.LastRunAt(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("last run = %v, want %v", got, want)
	}

	_, err = newService(&mockRepo{}, &mockBatchEmbedder{}, &mockEmbedder{}, &mockSentiment{}, &mockAnalyzer{}).
		LastRunAt(context.Background())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
