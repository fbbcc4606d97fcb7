package tests

import (
	"fmt"
	"sync"

	"storefront/pkg/storefront/application/service"
	"storefront/pkg/storefront/domain/model"
	domainservice "storefront/pkg/storefront/domain/service"
)

var _ domainservice.EventDispatcher = &mockEventDispatcher{}

type mockEventDispatcher struct {
	mu     sync.Mutex
	events []domainservice.Event
}

func (m *mockEventDispatcher) Dispatch(event domainservice.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventDispatcher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.events))
	for _, event := range m.events {
		types = append(types, event.Type())
	}
	return types
}

func (m *mockEventDispatcher) count(eventType string) int {
	n := 0
	for _, t := range m.types() {
		if t == eventType {
			n++
		}
	}
	return n
}

func (m *mockEventDispatcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

var _ model.PasswordManager = &mockPasswordManager{}

type mockPasswordManager struct{}

func (m *mockPasswordManager) Hash(plainTextPassword string) (string, error) {
	return fmt.Sprintf("%s-hashed", plainTextPassword), nil
}

func (m *mockPasswordManager) Check(hashedPassword, plainTextPassword string) (bool, error) {
	return hashedPassword == fmt.Sprintf("%s-hashed", plainTextPassword), nil
}

var _ service.TokenIssuer = &mockTokenIssuer{}

type mockTokenIssuer struct{}

func (m *mockTokenIssuer) Issue(user model.User) (string, error) {
	return "token-" + user.ID.String(), nil
}
