// Package services provides the MediWise service layer: configuration, the HTTP transport
// with its session refresh decorator, the backend API façades and terminal rendering services.
package services

import (
	"errors"
	"fmt"
	"sync"
)

// ErrServiceNotInitialized is returned when a service is used before Initialize.
var ErrServiceNotInitialized = errors.New("service not initialized")

// Service is implemented by every component managed by the Registry.
type Service interface {
	Name() string
	Initialize() error
}

// Registry manages service registration and lifecycle.
// Services are initialized in registration order so later services may depend on earlier ones.
type Registry struct {
	mu       sync.RWMutex
	services map[string]Service
	order    []string
}

// NewRegistry creates a new service registry with an empty service map.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]Service),
	}
}

// RegisterService adds a service to the registry, returning an error if already registered.
func (r *Registry) RegisterService(service Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := service.Name()
	if _, exists := r.services[name]; exists {
		return fmt.Errorf("service %s already registered", name)
	}

	r.services[name] = service
	r.order = append(r.order, name)
	return nil
}

// GetService retrieves a service by name, returning an error if not found.
func (r *Registry) GetService(name string) (Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, exists := r.services[name]
	if !exists {
		return nil, fmt.Errorf("service %s not found", name)
	}

	return service, nil
}

// HasService reports whether a service with the given name is registered.
func (r *Registry) HasService(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.services[name]
	return exists
}

// InitializeAll initializes all registered services in registration order.
func (r *Registry) InitializeAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if err := r.services[name].Initialize(); err != nil {
			return fmt.Errorf("failed to initialize service %s: %w", name, err)
		}
	}

	return nil
}

// GetServiceAs looks up a service and asserts its concrete type.
func GetServiceAs[T Service](r *Registry, name string) (T, error) {
	var zero T
	service, err := r.GetService(name)
	if err != nil {
		return zero, err
	}
	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service %s has unexpected type %T", name, service)
	}
	return typed, nil
}
