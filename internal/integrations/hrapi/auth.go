package hrapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

func (p *Provider) getToken(ctx context.Context) (string, error) {
	p.tokenMutex.RLock()
	if p.token != "" && time.Now().Before(p.tokenExpiry.Add(-1*time.Minute)) {
		defer p.tokenMutex.RUnlock()
		return p.token, nil
	}
	p.tokenMutex.RUnlock()

	p.tokenMutex.Lock()
	defer p.tokenMutex.Unlock()

	// другой поток мог уже обновить токен
	if p.token != "" && time.Now().Before(p.tokenExpiry.Add(-1*time.Minute)) {
		return p.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", p.username)
	form.Set("password", p.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса на аутентификацию: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка выполнения запроса на аутентификацию: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API аутентификации вернул статус: %s, тело ответа: %s", resp.Status, string(body))
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", fmt.Errorf("ошибка парсинга ответа с токеном: %w", err)
	}
	if authResp.AccessToken == "" {
		return "", fmt.Errorf("API аутентификации не вернул access_token")
	}

	p.token = authResp.AccessToken
	p.tokenExpiry = time.Now().Add(time.Second * time.Duration(authResp.ExpiresIn))
	return p.token, nil
}
