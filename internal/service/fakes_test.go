package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
)

type memoryCacheRepo struct {
	store   map[string][]byte
	deleted []string
	getErr  error
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	payload, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = payload
	return nil
}

func (m *memoryCacheRepo) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.store, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.store {
		if strings.HasPrefix(key, prefix) {
			delete(m.store, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
