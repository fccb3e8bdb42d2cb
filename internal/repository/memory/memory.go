// Package memory - документное хранилище в памяти процесса.
// Реализует те же интерфейсы, что и Postgres-репозитории, включая
// дописывание истории сообщения с проверкой ожидаемой длины.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"filterchat/internal/domain"
	"filterchat/internal/repository"
	apperrors "filterchat/pkg/errors"

	"github.com/google/uuid"
)

// NewRepositories собирает набор репозиториев поверх одного Store
func NewRepositories(store *Store) *repository.Repositories {
	return &repository.Repositories{
		Value:     &valueRepository{s: store},
		Filter:    &filterRepository{s: store},
		Message:   &messageRepository{s: store},
		User:      &userRepository{s: store},
		Chat:      &chatRepository{s: store},
		RateLimit: newRateLimitRepository(),
	}
}

type Store struct {
	mu       sync.RWMutex
	values   map[string]domain.Value
	filters  map[string]*domain.Filter
	messages map[string]*domain.Message
	users    map[string]*domain.User
	chats    map[string]*domain.Chat

	// InsertHook, если задан, подменяет генерацию ключей при вставке значения
	InsertHook func(valueType domain.ValueType) ([]string, error)
}

func NewStore() *Store {
	return &Store{
		values:   make(map[string]domain.Value),
		filters:  make(map[string]*domain.Filter),
		messages: make(map[string]*domain.Message),
		users:    make(map[string]*domain.User),
		chats:    make(map[string]*domain.Chat),
	}
}

func (s *Store) PutFilter(f *domain.Filter) *domain.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.FilterIDs == nil {
		f.FilterIDs = []string{}
	}
	s.filters[f.ID] = copyFilter(f)
	return f
}

func (s *Store) PutUser(u *domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.ID] = cloneUser(u)
	return u
}

func (s *Store) PutChat(c *domain.Chat) *domain.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cc := *c
	cc.UserIDs = append([]string{}, c.UserIDs...)
	cc.DefaultFilterIDs = append([]string{}, c.DefaultFilterIDs...)
	s.chats[c.ID] = &cc
	return c
}

// ValueCount - количество сохраненных значений
func (s *Store) ValueCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.DefaultFilterIDs = append([]string{}, u.DefaultFilterIDs...)
	c.AddedFilterIDs = append([]string{}, u.AddedFilterIDs...)
	return &c
}

func copyFilter(f *domain.Filter) *domain.Filter {
	c := *f
	c.FilterIDs = append([]string{}, f.FilterIDs...)
	return &c
}

type valueRepository struct{ s *Store }

func (r *valueRepository) Insert(_ context.Context, valueType domain.ValueType, content []byte) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := []string{uuid.NewString()}
	if r.s.InsertHook != nil {
		var err error
		if ids, err = r.s.InsertHook(valueType); err != nil {
			return nil, err
		}
	}

	for _, id := range ids {
		r.s.values[id] = domain.Value{ID: id, Type: valueType, Content: append([]byte(nil), content...)}
	}
	return ids, nil
}

func (r *valueRepository) GetByID(_ context.Context, id string) (*domain.Value, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.values[id]
	if !ok {
		return nil, fmt.Errorf("value %s: %w", id, apperrors.ErrNotFound)
	}
	v.Content = append([]byte(nil), v.Content...)
	return &v, nil
}

type filterRepository struct{ s *Store }

func (r *filterRepository) GetByID(_ context.Context, id string) (*domain.Filter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.filters[id]
	if !ok {
		return nil, fmt.Errorf("filter %s: %w", id, apperrors.ErrNotFound)
	}
	return copyFilter(f), nil
}

func (r *filterRepository) ListAll(_ context.Context) ([]*domain.Filter, error) {
	return r.list(func(*domain.Filter) bool { return true }), nil
}

func (r *filterRepository) ListByInputType(_ context.Context, inputType domain.ValueType) ([]*domain.Filter, error) {
	return r.list(func(f *domain.Filter) bool { return f.InputType == inputType }), nil
}

func (r *filterRepository) ListByIDs(_ context.Context, ids []string) ([]*domain.Filter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	filters := make([]*domain.Filter, 0, len(ids))
	for _, id := range ids {
		f, ok := r.s.filters[id]
		if !ok {
			return nil, fmt.Errorf("filter %s: %w", id, apperrors.ErrNotFound)
		}
		filters = append(filters, copyFilter(f))
	}
	return filters, nil
}

// list отдает фильтры в порядке name, id - как ORDER BY в Postgres
func (r *filterRepository) list(match func(*domain.Filter) bool) []*domain.Filter {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	filters := []*domain.Filter{}
	for _, f := range r.s.filters {
		if match(f) {
			filters = append(filters, copyFilter(f))
		}
	}
	sort.Slice(filters, func(i, j int) bool {
		if filters[i].Name != filters[j].Name {
			return filters[i].Name < filters[j].Name
		}
		return filters[i].ID < filters[j].ID
	})
	return filters
}

type messageRepository struct{ s *Store }

func (r *messageRepository) Create(_ context.Context, message *domain.Message) error {
	if !message.Consistent() {
		return fmt.Errorf("message history has %d values and %d filters: %w",
			len(message.ValueIDs), len(message.FilterIDs), apperrors.ErrIntegrity)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	message.MessageID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	if message.FilterIDs == nil {
		message.FilterIDs = []string{}
	}
	r.s.messages[message.MessageID] = message.Clone()
	return nil
}

func (r *messageRepository) GetByID(_ context.Context, messageID string) (*domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.messages[messageID]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", messageID, apperrors.ErrNotFound)
	}
	return m.Clone(), nil
}

func (r *messageRepository) ListByChatAndReceiver(_ context.Context, chatID, receiverID string) ([]*domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	messages := []*domain.Message{}
	for _, m := range r.s.messages {
		if m.ChatID == chatID && m.ReceiverID == receiverID {
			messages = append(messages, m.Clone())
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].MessageID < messages[j].MessageID
	})
	return messages, nil
}

func (r *messageRepository) AppendStep(_ context.Context, messageID string, expectedLen int, valueID, filterID string) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[messageID]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", messageID, apperrors.ErrNotFound)
	}
	if len(m.ValueIDs) != expectedLen {
		return nil, fmt.Errorf("message %s history is no longer %d values long: %w", messageID, expectedLen, apperrors.ErrConflict)
	}

	m.ValueIDs = append(m.ValueIDs, valueID)
	m.FilterIDs = append(m.FilterIDs, filterID)
	return m.Clone(), nil
}

type userRepository struct{ s *Store }

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *userRepository) AddFilter(_ context.Context, userID, filterID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	if !u.HasAddedFilter(filterID) {
		u.AddedFilterIDs = append(u.AddedFilterIDs, filterID)
	}
	return nil
}

type chatRepository struct{ s *Store }

func (r *chatRepository) GetByID(_ context.Context, id string) (*domain.Chat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.chats[id]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", id, apperrors.ErrNotFound)
	}
	cc := *c
	cc.UserIDs = append([]string{}, c.UserIDs...)
	cc.DefaultFilterIDs = append([]string{}, c.DefaultFilterIDs...)
	return &cc, nil
}

// rateLimitRepository - счетчики с окном фиксированной длины
type rateLimitRepository struct {
	mu      sync.Mutex
	buckets map[string]bucket
}

type bucket struct {
	count     int64
	expiresAt time.Time
}

func newRateLimitRepository() *rateLimitRepository {
	return &rateLimitRepository{buckets: make(map[string]bucket)}
}

func (r *rateLimitRepository) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	b, ok := r.buckets[key]
	if !ok || now.After(b.expiresAt) {
		b = bucket{expiresAt: now.Add(window)}
	}
	b.count++
	r.buckets[key] = b
	return b.count, nil
}

var (
	_ repository.ValueRepository     = (*valueRepository)(nil)
	_ repository.FilterRepository    = (*filterRepository)(nil)
	_ repository.MessageRepository   = (*messageRepository)(nil)
	_ repository.UserRepository      = (*userRepository)(nil)
	_ repository.ChatRepository      = (*chatRepository)(nil)
	_ repository.RateLimitRepository = (*rateLimitRepository)(nil)
)
