package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/models"
)

type memoryProcesses struct {
	mu      sync.Mutex
	items   map[string]models.Process
	failing bool
}

func newMemoryProcesses() *memoryProcesses {
	return &memoryProcesses{items: map[string]models.Process{}}
}

func (m *memoryProcesses) Create(_ context.Context, p *models.Process) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("insert failed")
	}
	m.items[p.ID] = *p
	return nil
}

func (m *memoryProcesses) GetByID(_ context.Context, id string) (*models.Process, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memoryProcesses) List(_ context.Context) ([]models.Process, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Process
	for _, p := range m.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryProcesses) ListByUser(ctx context.Context, userID string) ([]models.Process, error) {
	all, _ := m.List(ctx)
	var out []models.Process
	for _, p := range all {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memoryUsers struct {
	mu    sync.Mutex
	items map[string]models.User
}

func newMemoryUsers(users ...models.User) *memoryUsers {
	m := &memoryUsers{items: map[string]models.User{}}
	for _, u := range users {
		m.items[u.ID] = u
	}
	return m
}

func (m *memoryUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[u.ID] = *u
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) List(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.items {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryUsers) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[u.ID] = *u
	return nil
}

func (m *memoryUsers) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

type stubAnalyzer struct {
	outcome analyzer.Outcome
	err     error
	calls   []analyzer.Options
	texts   []string
}

func (s *stubAnalyzer) Analyze(_ context.Context, text string, opts analyzer.Options) (analyzer.Outcome, error) {
	s.calls = append(s.calls, opts)
	s.texts = append(s.texts, text)
	return s.outcome, s.err
}

type memoryStorage struct {
	objects   map[string][]byte
	uploadErr error
	deleted   []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.objects[key] = data
	return "http://store.local/processes-bucket/" + key, nil
}

func (m *memoryStorage) Download(_ context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}
