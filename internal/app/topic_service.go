package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"interview-prep-service/internal/domain"
	"interview-prep-service/internal/logger"
)

// TopicService owns the in-memory topic collection. Every mutation rewrites
// the whole serialized list to the document store: last-writer-wins, single
// writer, no diffing.
type TopicService struct {
	store     DocumentStore
	generator QuestionGenerator
	log       *logger.Logger
	now       func() time.Time
	rnd       *rand.Rand

	mu     sync.Mutex
	topics []domain.Topic
}

func NewTopicService(store DocumentStore, generator QuestionGenerator, log *logger.Logger) *TopicService {
	return NewTopicServiceWithClock(store, generator, log, time.Now)
}

// NewTopicServiceWithClock allows deterministic ids and dates in tests.
func NewTopicServiceWithClock(store DocumentStore, generator QuestionGenerator, log *logger.Logger, now func() time.Time) *TopicService {
	return &TopicService{
		store:     store,
		generator: generator,
		log:       log.With("component", "topics"),
		now:       now,
		rnd:       rand.New(rand.NewSource(now().UnixNano())),
	}
}

// Load hydrates the collection from the document store. An absent document
// seeds the starter catalog. A document that fails to parse is logged and
// replaced by the starter catalog rather than crashing startup.
func (s *TopicService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Load(ctx, TopicsDocumentKey)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		s.topics = StarterTopics()
		return s.persistLocked(ctx)
	}
	if err != nil {
		return fmt.Errorf("load topics: %w", err)
	}

	var topics []domain.Topic
	if err := json.Unmarshal(raw, &topics); err != nil {
		s.log.Warn("topics document malformed, resetting to starter catalog", "error", err.Error())
		s.topics = StarterTopics()
		return s.persistLocked(ctx)
	}
	s.topics = topics
	return nil
}

// List returns the topics most-recent-first, as stored.
func (s *TopicService) List() []domain.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Topic, len(s.topics))
	for i := range s.topics {
		out[i] = cloneTopic(s.topics[i])
	}
	return out
}

func (s *TopicService) Get(id string) (domain.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.topics {
		if s.topics[i].ID == id {
			return cloneTopic(s.topics[i]), nil
		}
	}
	return domain.Topic{}, domain.ErrTopicNotFound
}

// Create generates the initial question set and prepends the new topic.
// A failed generation surfaces the gateway error; no topic is created.
func (s *TopicService) Create(ctx context.Context, role, experience, skillsCSV, description string) (domain.Topic, error) {
	questions, err := s.generator.GenerateQuestions(ctx, role, experience, skillsCSV)
	if err != nil {
		return domain.Topic{}, fmt.Errorf("generate questions: %w", err)
	}

	skills := splitSkills(skillsCSV)
	if strings.TrimSpace(description) == "" {
		description = fmt.Sprintf("Targeting %s roles with focus on %s", role, skillsCSV)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	topic := domain.Topic{
		ID:          strconv.FormatInt(now.UnixMilli(), 10),
		Title:       role,
		Description: description,
		Skills:      skills,
		Experience:  experience,
		QACount:     len(questions),
		LastUpdated: domain.FormatDate(now),
		Color:       domain.Colors[s.rnd.Intn(len(domain.Colors))],
		Questions:   questions,
	}

	s.topics = append([]domain.Topic{topic}, s.topics...)
	if err := s.persistLocked(ctx); err != nil {
		return domain.Topic{}, err
	}
	return cloneTopic(topic), nil
}

// Update replaces a topic by id wholesale.
func (s *TopicService) Update(ctx context.Context, topic domain.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.topics {
		if s.topics[i].ID == topic.ID {
			s.topics[i] = cloneTopic(topic)
			return s.persistLocked(ctx)
		}
	}
	return domain.ErrTopicNotFound
}

// Delete removes exactly one topic; relative order of the rest is unchanged.
func (s *TopicService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.topics {
		if s.topics[i].ID == id {
			s.topics = append(s.topics[:i], s.topics[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return domain.ErrTopicNotFound
}

// ToggleMastery flips the flag on exactly one question and returns the
// updated topic. Progress is never cached; readers recompute it.
func (s *TopicService) ToggleMastery(ctx context.Context, topicID, questionID string) (domain.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.topics {
		if s.topics[i].ID != topicID {
			continue
		}
		for j := range s.topics[i].Questions {
			if s.topics[i].Questions[j].ID == questionID {
				s.topics[i].Questions[j].IsMastered = !s.topics[i].Questions[j].IsMastered
				if err := s.persistLocked(ctx); err != nil {
					return domain.Topic{}, err
				}
				return cloneTopic(s.topics[i]), nil
			}
		}
		return domain.Topic{}, domain.ErrQuestionNotFound
	}
	return domain.Topic{}, domain.ErrTopicNotFound
}

// LoadMore appends freshly generated questions to a topic and refreshes the
// QACount snapshot. The generator is asked to avoid the existing texts but
// uniqueness is not guaranteed.
func (s *TopicService) LoadMore(ctx context.Context, topicID string) (domain.Topic, error) {
	topic, err := s.Get(topicID)
	if err != nil {
		return domain.Topic{}, err
	}

	existing := make([]string, 0, len(topic.Questions))
	for _, q := range topic.Questions {
		existing = append(existing, q.Question)
	}

	more, err := s.generator.GenerateMoreQuestions(ctx, topic, existing)
	if err != nil {
		return domain.Topic{}, fmt.Errorf("generate more questions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.topics {
		if s.topics[i].ID == topicID {
			s.topics[i].Questions = append(s.topics[i].Questions, more...)
			s.topics[i].QACount = len(s.topics[i].Questions)
			if err := s.persistLocked(ctx); err != nil {
				return domain.Topic{}, err
			}
			return cloneTopic(s.topics[i]), nil
		}
	}
	return domain.Topic{}, domain.ErrTopicNotFound
}

func (s *TopicService) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}
	if err := s.store.Save(ctx, TopicsDocumentKey, data); err != nil {
		return fmt.Errorf("save topics: %w", err)
	}
	return nil
}

func splitSkills(csv string) []string {
	parts := strings.Split(csv, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}

func cloneTopic(t domain.Topic) domain.Topic {
	out := t
	out.Skills = append([]string(nil), t.Skills...)
	out.Questions = append([]domain.Question(nil), t.Questions...)
	return out
}
