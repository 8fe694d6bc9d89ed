package hrapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"asset-system/internal/integrations/dto"
)

// Provider - справочник сотрудников во внешней HR-системе (OAuth password grant + REST).
type Provider struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	logger     *zap.Logger

	token       string
	tokenExpiry time.Time
	tokenMutex  sync.RWMutex
}

func New(baseURL, username, password string, timeout time.Duration, logger *zap.Logger) *Provider {
	return &Provider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		username:   username,
		password:   password,
		logger:     logger.Named("hrapi_provider"),
	}
}

func (p *Provider) Name() string {
	return "hrapi"
}

func (p *Provider) GetEmployee(ctx context.Context, tenantID, employeeID uint64) (*dto.EmployeeDTO, error) {
	var ext EmployeeDTO
	found, err := p.fetchJSON(ctx, fmt.Sprintf("/api/tenants/%d/employees/%d", tenantID, employeeID), &ext)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса сотрудника %d: %w", employeeID, err)
	}
	if !found {
		p.logger.Debug("Сотрудник не найден в HR-системе", zap.Uint64("employeeID", employeeID))
		return nil, nil
	}
	employee := mapEmployeeToInternal(ext)
	return &employee, nil
}
