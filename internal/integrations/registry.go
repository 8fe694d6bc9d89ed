package integrations

import (
	"context"
	"fmt"
	"sync"

	"asset-system/internal/integrations/dto"
)

type RegistryInterface interface {
	Register(directory EmployeeDirectory) error
	Get(name string) (EmployeeDirectory, error)
	SetActive(name string) error
	GetActive() (EmployeeDirectory, error)
}

// Registry хранит зарегистрированные справочники и знает, какой из них сейчас активен.
type Registry struct {
	directories map[string]EmployeeDirectory
	active      string
	mu          sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{directories: make(map[string]EmployeeDirectory)}
}

func (r *Registry) Register(directory EmployeeDirectory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := directory.Name()
	if _, exists := r.directories[name]; exists {
		return fmt.Errorf("справочник с именем '%s' уже зарегистрирован", name)
	}
	r.directories[name] = directory
	return nil
}

func (r *Registry) Get(name string) (EmployeeDirectory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	directory, exists := r.directories[name]
	if !exists {
		return nil, fmt.Errorf("справочник с именем '%s' не найден", name)
	}
	return directory, nil
}

func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.directories[name]; !exists {
		return fmt.Errorf("невозможно установить активным справочник '%s': он не зарегистрирован", name)
	}
	r.active = name
	return nil
}

func (r *Registry) GetActive() (EmployeeDirectory, error) {
	r.mu.RLock()
	activeName := r.active
	r.mu.RUnlock()

	if activeName == "" {
		return nil, fmt.Errorf("активный справочник не установлен")
	}
	return r.Get(activeName)
}

// Name и GetEmployee делают реестр самим справочником: вызов уходит в активный провайдер,
// так что провайдер можно переключить без пересоздания сервисов.
func (r *Registry) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

func (r *Registry) GetEmployee(ctx context.Context, tenantID, employeeID uint64) (*dto.EmployeeDTO, error) {
	directory, err := r.GetActive()
	if err != nil {
		return nil, err
	}
	return directory.GetEmployee(ctx, tenantID, employeeID)
}
