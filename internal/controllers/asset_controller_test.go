package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/services"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

// stubAssetService реализует только методы, нужные тестам. Остальные паникуют через nil-интерфейс.
type stubAssetService struct {
	services.AssetServiceInterface

	err       error
	gotActor  types.Actor
	gotID     uint64
	gotDelete bool
}

func (s *stubAssetService) GetAsset(_ context.Context, actor types.Actor, id uint64) (*dto.AssetDTO, error) {
	s.gotActor, s.gotID = actor, id
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AssetDTO{ID: id, Name: "Ноутбук"}, nil
}

func (s *stubAssetService) CreateAsset(_ context.Context, actor types.Actor, req dto.CreateAssetDTO) (*dto.AssetDTO, error) {
	s.gotActor = actor
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AssetDTO{ID: 1, Name: req.Name}, nil
}

func (s *stubAssetService) DisposeAsset(_ context.Context, actor types.Actor, id uint64, _ dto.DisposeAssetDTO) (*dto.AssetDTO, error) {
	s.gotActor, s.gotID = actor, id
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AssetDTO{ID: id}, nil
}

func (s *stubAssetService) DeleteAsset(_ context.Context, actor types.Actor, id uint64) error {
	s.gotActor, s.gotID, s.gotDelete = actor, id, true
	return s.err
}

func newAssetController(svc *stubAssetService) *AssetController {
	return NewAssetController(svc, nil, zap.NewNop())
}

func TestFindAsset(t *testing.T) {
	t.Run("успех", func(t *testing.T) {
		svc := &stubAssetService{}
		c, rec := newRequest(http.MethodGet, "/api/assets/12", "", actorPtr())
		require.NoError(t, newAssetController(svc).FindAsset(withParam(c, "id", "12")))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeEnvelope(t, rec).Status)
		assert.Equal(t, uint64(12), svc.gotID)
		assert.Equal(t, testActor, svc.gotActor)
	})

	t.Run("без аутентификации", func(t *testing.T) {
		c, rec := newRequest(http.MethodGet, "/api/assets/12", "", nil)
		require.NoError(t, newAssetController(&stubAssetService{}).FindAsset(withParam(c, "id", "12")))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("неверный id", func(t *testing.T) {
		c, rec := newRequest(http.MethodGet, "/api/assets/abc", "", actorPtr())
		require.NoError(t, newAssetController(&stubAssetService{}).FindAsset(withParam(c, "id", "abc")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// Доменная ошибка внутри HttpError 500 определяет итоговый код ответа.
func TestAssetController_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		key  string
	}{
		{"не найден", apperrors.NewNotFoundError("asset", 3), http.StatusNotFound, ""},
		{"недопустимое состояние", apperrors.NewInvalidStateError("asset", 3, "disposed", "dispose"), http.StatusConflict, "current_state"},
		{"валидация", apperrors.NewValidationError("disposal_date", "дата в будущем"), http.StatusBadRequest, "field"},
		{"конфликт версий", apperrors.NewConcurrencyConflictError("asset", 3), http.StatusConflict, "retryable"},
		{"дубликат кода", apperrors.NewDuplicateError("asset_code", "код 'INV-1' уже используется"), http.StatusBadRequest, "field"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubAssetService{err: tc.err}
			c, rec := newRequest(http.MethodPost, "/api/assets/3/dispose", `{"reason":"сломан"}`, actorPtr())
			require.NoError(t, newAssetController(svc).DisposeAsset(withParam(c, "id", "3")))

			assert.Equal(t, tc.code, rec.Code)
			assert.False(t, decodeEnvelope(t, rec).Status)
			if tc.key != "" {
				assert.Contains(t, decodeBody(t, rec), tc.key)
			}
		})
	}
}

func TestDisposeAsset_EmptyBody(t *testing.T) {
	svc := &stubAssetService{}
	c, rec := newRequest(http.MethodPost, "/api/assets/4/dispose", "", actorPtr())
	require.NoError(t, newAssetController(svc).DisposeAsset(withParam(c, "id", "4")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(4), svc.gotID)
}

func TestCreateAsset(t *testing.T) {
	t.Run("валидация тела", func(t *testing.T) {
		svc := &stubAssetService{}
		c, rec := newRequest(http.MethodPost, "/api/assets", `{}`, actorPtr())
		require.NoError(t, newAssetController(svc).CreateAsset(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, types.Actor{}, svc.gotActor, "сервис не вызывается")
	})

	t.Run("битый json", func(t *testing.T) {
		c, rec := newRequest(http.MethodPost, "/api/assets", `{"name":`, actorPtr())
		require.NoError(t, newAssetController(&stubAssetService{}).CreateAsset(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("успех", func(t *testing.T) {
		svc := &stubAssetService{}
		body := `{"name":"Ноутбук Dell","asset_type_id":2,"purchase_date":"2025-01-10","purchase_cost":"1000"}`
		c, rec := newRequest(http.MethodPost, "/api/assets", body, actorPtr())
		require.NoError(t, newAssetController(svc).CreateAsset(c))

		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, testActor, svc.gotActor)
	})
}

func TestDeleteAsset(t *testing.T) {
	svc := &stubAssetService{err: apperrors.NewInvalidStateError("asset", 9, "assigned", "delete")}
	c, rec := newRequest(http.MethodDelete, "/api/assets/9", "", actorPtr())
	require.NoError(t, newAssetController(svc).DeleteAsset(withParam(c, "id", "9")))

	assert.True(t, svc.gotDelete)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
