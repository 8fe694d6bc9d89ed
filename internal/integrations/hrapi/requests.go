package hrapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// fetchJSON возвращает found=false на 404.
func (p *Provider) fetchJSON(ctx context.Context, endpoint string, dest interface{}) (bool, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return false, fmt.Errorf("не удалось получить токен аутентификации: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("ошибка создания GET-запроса: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("ошибка выполнения GET-запроса для '%s': %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("HR API для эндпоинта '%s' вернул статус: %s", endpoint, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return false, fmt.Errorf("ошибка парсинга JSON для эндпоинта %s: %w", endpoint, err)
	}
	return true, nil
}
