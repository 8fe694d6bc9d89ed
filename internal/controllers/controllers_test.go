package controllers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"asset-system/pkg/types"
	"asset-system/pkg/utils"
	"asset-system/pkg/validation"
)

var testActor = types.Actor{UserID: 7, TenantID: 1}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body"`
}

// newRequest собирает echo.Context как после AuthMiddleware. actor == nil - запрос без аутентификации.
func newRequest(method, target, body string, actor *types.Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validation.New()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if actor != nil {
		req = req.WithContext(utils.WithActor(context.Background(), *actor))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	env := decodeEnvelope(t, rec)
	if len(env.Body) > 0 {
		require.NoError(t, json.Unmarshal(env.Body, &body))
	}
	return body
}

func actorPtr() *types.Actor {
	a := testActor
	return &a
}

