package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"interview-prep-service/internal/domain"
	"interview-prep-service/internal/logger"
)

type fakeStore struct {
	docs  map[string][]byte
	saves int
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string][]byte{}}
}

func (s *fakeStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, ok := s.docs[key]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return data, nil
}

func (s *fakeStore) Save(ctx context.Context, key string, data []byte) error {
	s.saves++
	s.docs[key] = append([]byte(nil), data...)
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	delete(s.docs, key)
	return nil
}

type fakeGenerator struct {
	calls int
	fail  bool
	count int
}

func (g *fakeGenerator) generate(prefix string) []domain.Question {
	n := g.count
	if n == 0 {
		n = 10
	}
	out := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Question{
			ID:       fmt.Sprintf("%s-%d", prefix, i),
			Question: fmt.Sprintf("%s question %d", prefix, i),
			Answer:   fmt.Sprintf("%s answer %d", prefix, i),
		})
	}
	return out
}

func (g *fakeGenerator) GenerateQuestions(ctx context.Context, role, experience, skills string) ([]domain.Question, error) {
	g.calls++
	if g.fail {
		return nil, errors.New("model unavailable")
	}
	return g.generate("gen"), nil
}

func (g *fakeGenerator) GenerateMoreQuestions(ctx context.Context, topic domain.Topic, existing []string) ([]domain.Question, error) {
	g.calls++
	if g.fail {
		return nil, errors.New("model unavailable")
	}
	return g.generate("more"), nil
}

func fixedClock() time.Time {
	return time.Date(2024, 7, 26, 12, 0, 0, 0, time.UTC)
}

func newTopicService(store DocumentStore, gen QuestionGenerator) *TopicService {
	return NewTopicServiceWithClock(store, gen, logger.NewNop(), fixedClock)
}

func TestLoadSeedsStarterCatalog(t *testing.T) {
	store := newFakeStore()
	svc := newTopicService(store, &fakeGenerator{})

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	topics := svc.List()
	if len(topics) != 3 {
		t.Fatalf("expected 3 starter topics, got %d", len(topics))
	}
	if topics[0].Title != "Frontend Developer" {
		t.Fatalf("unexpected first topic %q", topics[0].Title)
	}
	for _, topic := range topics {
		if len(topic.Questions) != 10 || topic.QACount != 10 {
			t.Fatalf("topic %s: expected 10 questions, got %d (count %d)", topic.ID, len(topic.Questions), topic.QACount)
		}
	}
	if _, ok := store.docs[TopicsDocumentKey]; !ok {
		t.Fatalf("expected starter catalog to be persisted")
	}
}

func TestLoadResetsMalformedDocument(t *testing.T) {
	store := newFakeStore()
	store.docs[TopicsDocumentKey] = []byte("{not json")
	svc := newTopicService(store, &fakeGenerator{})

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := len(svc.List()); got != 3 {
		t.Fatalf("expected starter catalog after reset, got %d topics", got)
	}

	var persisted []domain.Topic
	if err := json.Unmarshal(store.docs[TopicsDocumentKey], &persisted); err != nil {
		t.Fatalf("persisted document still malformed: %v", err)
	}
}

func TestCreatePrependsTopic(t *testing.T) {
	store := newFakeStore()
	svc := newTopicService(store, &fakeGenerator{})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	before := svc.List()

	topic, err := svc.Create(context.Background(), "Data Engineer", "3 Years", "Spark, Airflow , SQL", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if topic.Title != "Data Engineer" || topic.Experience != "3 Years" {
		t.Fatalf("unexpected topic %+v", topic)
	}
	if topic.Description != "Targeting Data Engineer roles with focus on Spark, Airflow , SQL" {
		t.Fatalf("unexpected default description %q", topic.Description)
	}
	wantSkills := []string{"Spark", "Airflow", "SQL"}
	if len(topic.Skills) != len(wantSkills) {
		t.Fatalf("expected skills %v, got %v", wantSkills, topic.Skills)
	}
	for i, s := range wantSkills {
		if topic.Skills[i] != s {
			t.Fatalf("expected skills %v, got %v", wantSkills, topic.Skills)
		}
	}
	if topic.QACount != 10 || len(topic.Questions) != 10 {
		t.Fatalf("expected 10 generated questions, got %d (count %d)", len(topic.Questions), topic.QACount)
	}
	if topic.LastUpdated != "26 Jul 2024" {
		t.Fatalf("unexpected date %q", topic.LastUpdated)
	}

	after := svc.List()
	if len(after) != len(before)+1 {
		t.Fatalf("expected %d topics, got %d", len(before)+1, len(after))
	}
	if after[0].ID != topic.ID {
		t.Fatalf("expected new topic first, got %s", after[0].ID)
	}
	for i, existing := range before {
		if after[i+1].ID != existing.ID {
			t.Fatalf("existing topic order disturbed at %d", i)
		}
	}
}

func TestCreateGenerationFailureCreatesNothing(t *testing.T) {
	store := newFakeStore()
	svc := newTopicService(store, &fakeGenerator{fail: true})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	saves := store.saves

	if _, err := svc.Create(context.Background(), "Data Engineer", "3 Years", "Spark", ""); err == nil {
		t.Fatalf("expected error from failed generation")
	}
	if got := len(svc.List()); got != 3 {
		t.Fatalf("expected no topic created, got %d", got)
	}
	if store.saves != saves {
		t.Fatalf("expected no persistence on failed create")
	}
}

func TestUpdateReplacesTopicByID(t *testing.T) {
	store := newFakeStore()
	svc := newTopicService(store, &fakeGenerator{})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	topic := svc.List()[1]
	topic.Description = "Rewritten description"
	topic.Skills = append(topic.Skills, "Terraform")

	if err := svc.Update(context.Background(), topic); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := svc.Get(topic.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "Rewritten description" {
		t.Fatalf("description not replaced: %q", got.Description)
	}
	if got.Skills[len(got.Skills)-1] != "Terraform" {
		t.Fatalf("skills not replaced: %v", got.Skills)
	}
	// Position in the list is unchanged.
	if svc.List()[1].ID != topic.ID {
		t.Fatalf("update moved the topic")
	}

	missing := topic
	missing.ID = "missing"
	if err := svc.Update(context.Background(), missing); !errors.Is(err, domain.ErrTopicNotFound) {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	store := newFakeStore()
	svc := newTopicService(store, &fakeGenerator{})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	before := svc.List()
	victim := before[1].ID

	if err := svc.Delete(context.Background(), victim); err != nil {
		t.Fatalf("delete: %v", err)
	}

	after := svc.List()
	if len(after) != len(before)-1 {
		t.Fatalf("expected %d topics, got %d", len(before)-1, len(after))
	}
	if after[0].ID != before[0].ID || after[1].ID != before[2].ID {
		t.Fatalf("expected remaining order preserved, got %s, %s", after[0].ID, after[1].ID)
	}

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, domain.ErrTopicNotFound) {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}
}

func TestToggleMasteryFlipsOneFlag(t *testing.T) {
	store := newFakeStore()
	svc := newTopicService(store, &fakeGenerator{})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	topic := svc.List()[0]
	qid := topic.Questions[3].ID

	updated, err := svc.ToggleMastery(context.Background(), topic.ID, qid)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if updated.MasteredCount() != 1 {
		t.Fatalf("expected 1 mastered, got %d", updated.MasteredCount())
	}
	if updated.ProgressPercent() != 10 {
		t.Fatalf("expected 10%%, got %d", updated.ProgressPercent())
	}
	for _, q := range updated.Questions {
		if q.ID != qid && q.IsMastered {
			t.Fatalf("unrelated question %s flipped", q.ID)
		}
	}

	updated, err = svc.ToggleMastery(context.Background(), topic.ID, qid)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if updated.MasteredCount() != 0 {
		t.Fatalf("expected toggle back to 0, got %d", updated.MasteredCount())
	}

	if _, err := svc.ToggleMastery(context.Background(), topic.ID, "missing"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestLoadMoreRefreshesCountSnapshot(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{}
	svc := newTopicService(store, gen)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	topic := svc.List()[0]

	gen.count = 4
	updated, err := svc.LoadMore(context.Background(), topic.ID)
	if err != nil {
		t.Fatalf("load more: %v", err)
	}
	if len(updated.Questions) != 14 {
		t.Fatalf("expected 14 questions, got %d", len(updated.Questions))
	}
	if updated.QACount != 14 {
		t.Fatalf("expected count snapshot refreshed to 14, got %d", updated.QACount)
	}
	// Existing questions keep their position; new ones are appended.
	if updated.Questions[0].ID != topic.Questions[0].ID {
		t.Fatalf("existing questions reordered")
	}
}

func TestTopicsRoundTripThroughStore(t *testing.T) {
	store := newFakeStore()
	svc := newTopicService(store, &fakeGenerator{})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	created, err := svc.Create(context.Background(), "SRE", "5 Years", "Kubernetes", "Reliability prep")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reloaded := newTopicService(store, &fakeGenerator{})
	if err := reloaded.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := reloaded.Get(created.ID)
	if err != nil {
		t.Fatalf("get after reload: %v", err)
	}
	if got.Title != "SRE" || got.Description != "Reliability prep" || len(got.Questions) != 10 {
		t.Fatalf("round trip lost data: %+v", got)
	}
}
