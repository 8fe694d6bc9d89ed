package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"asset-system/internal/integrations/static"
	"asset-system/migrations"
	"asset-system/pkg/config"
	"asset-system/pkg/database/postgresql"
	"asset-system/pkg/service"
	"asset-system/pkg/validation"
)

// AssetFlowSuite гоняет полный жизненный цикл актива через HTTP на настоящей базе.
// Запускается только при заданном TEST_DATABASE_URL; Redis не нужен.
type AssetFlowSuite struct {
	suite.Suite
	Echo    *echo.Echo
	DB      *pgxpool.Pool
	Runtime *Runtime

	Token      string
	OtherToken string
	TypeID     uint64
	AssetID    uint64

	ContendedAssetID uint64
	AssignmentID     uint64
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body"`
}

func (s *AssetFlowSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		s.T().Skip("TEST_DATABASE_URL не задан")
	}

	ctx := context.Background()
	logger := zap.NewNop()

	db, err := postgresql.ConnectDB(ctx, dsn, logger)
	s.Require().NoError(err)
	s.DB = db
	s.Require().NoError(migrations.Up(ctx, db, logger))
	_, err = db.Exec(ctx, `TRUNCATE asset_history, asset_depreciations, asset_maintenances,
		asset_assignments, assets, asset_types RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)

	uploadDir, err := os.MkdirTemp("", "asset-flow-*")
	s.Require().NoError(err)

	cfg := &config.Config{
		Storage: config.StorageConfig{UploadDir: uploadDir, QREnabled: true, QRSize: 128},
		Assets:  config.AssetsConfig{HorizonDays: 30, RefreshBatchSize: 100, DashboardCacheTTL: time.Minute},
		Reports: config.ReportsConfig{ExportLimit: 1000},
	}
	jwtSvc := service.NewJWTService("integration-secret", time.Hour, 2*time.Hour, logger)

	s.Echo = echo.New()
	s.Echo.Validator = validation.New()
	s.Runtime = InitRouter(s.Echo, Deps{DB: db, JWT: jwtSvc, Employees: static.New(), Config: cfg}, &Loggers{
		Main: logger, Auth: logger, Asset: logger, Assignment: logger, Maintenance: logger, Report: logger,
	})

	s.Token, _, err = jwtSvc.GenerateTokens(1, 1)
	s.Require().NoError(err)
	s.OtherToken, _, err = jwtSvc.GenerateTokens(2, 2)
	s.Require().NoError(err)
}

func (s *AssetFlowSuite) TearDownSuite() {
	if s.Runtime != nil {
		s.Runtime.Bus.Wait()
		s.Runtime.CacheListener.Flush(context.Background())
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

func (s *AssetFlowSuite) do(method, path, token string, body interface{}) (int, apiResponse) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Header().Get(echo.HeaderContentType) == echo.MIMEApplicationJSON ||
		rec.Header().Get(echo.HeaderContentType) == echo.MIMEApplicationJSONCharsetUTF8 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec.Code, resp
}

// post выполняет запрос без проверок через s.Require, его можно вызывать из горутин.
func (s *AssetFlowSuite) post(path string, body []byte) int {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.Token)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec.Code
}

func (s *AssetFlowSuite) count(query string, args ...interface{}) int {
	var n int
	s.Require().NoError(s.DB.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

type rowCounts struct {
	Assignments  int
	Maintenances int
	History      int
	Status       string
}

func (s *AssetFlowSuite) snapshot(assetID uint64) rowCounts {
	var c rowCounts
	c.Assignments = s.count(`SELECT count(*) FROM asset_assignments WHERE asset_id = $1`, assetID)
	c.Maintenances = s.count(`SELECT count(*) FROM asset_maintenances WHERE asset_id = $1`, assetID)
	c.History = s.count(`SELECT count(*) FROM asset_history WHERE asset_id = $1`, assetID)
	s.Require().NoError(s.DB.QueryRow(context.Background(), `SELECT status FROM assets WHERE id = $1`, assetID).Scan(&c.Status))
	return c
}

func (s *AssetFlowSuite) decode(resp apiResponse, dst interface{}) {
	s.Require().NoError(json.Unmarshal(resp.Body, dst), string(resp.Body))
}

func (s *AssetFlowSuite) assetStatus(token string) (int, string) {
	code, resp := s.do(http.MethodGet, fmt.Sprintf("/api/assets/%d", s.AssetID), token, nil)
	if code != http.StatusOK {
		return code, ""
	}
	var asset struct {
		Status string `json:"status"`
	}
	s.decode(resp, &asset)
	return code, asset.Status
}

func (s *AssetFlowSuite) Test01_CreateAsset() {
	code, resp := s.do(http.MethodPost, "/api/asset-types", s.Token, map[string]interface{}{"name": "Ноутбук"})
	s.Require().Equal(http.StatusCreated, code, resp.Message)
	var assetType struct {
		ID uint64 `json:"id"`
	}
	s.decode(resp, &assetType)
	s.TypeID = assetType.ID

	code, resp = s.do(http.MethodPost, "/api/assets", s.Token, map[string]interface{}{
		"name":          "Ноутбук Dell Latitude",
		"asset_type_id": s.TypeID,
		"purchase_date": "2024-01-10",
		"purchase_cost": "120000",
		"depreciation": map[string]interface{}{
			"method": "straight_line", "useful_life_years": 4, "salvage_value": "20000",
		},
	})
	s.Require().Equal(http.StatusCreated, code, resp.Message)

	var asset struct {
		ID        uint64  `json:"id"`
		AssetCode string  `json:"asset_code"`
		Status    string  `json:"status"`
		QRCodeRef *string `json:"qr_code_ref"`
	}
	s.decode(resp, &asset)
	s.AssetID = asset.ID
	s.Equal("available", asset.Status)
	s.NotEmpty(asset.AssetCode)
	s.NotNil(asset.QRCodeRef)
}

func (s *AssetFlowSuite) Test02_OtherTenantSeesNothing() {
	code, _ := s.assetStatus(s.OtherToken)
	s.Equal(http.StatusNotFound, code)
}

func (s *AssetFlowSuite) Test03_AssignMaintainReturn() {
	code, resp := s.do(http.MethodPost, fmt.Sprintf("/api/assets/%d/assignments", s.AssetID), s.Token, map[string]interface{}{
		"employee_id": 100, "checkout_date": "2024-02-01",
	})
	s.Require().Equal(http.StatusCreated, code, resp.Message)
	var assignment struct {
		ID uint64 `json:"id"`
	}
	s.decode(resp, &assignment)

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/assets/%d/assignments", s.AssetID), s.Token, map[string]interface{}{
		"employee_id": 101, "checkout_date": "2024-02-02",
	})
	s.Equal(http.StatusConflict, code, "повторная выдача")

	code, resp = s.do(http.MethodPost, fmt.Sprintf("/api/assets/%d/maintenances", s.AssetID), s.Token, map[string]interface{}{
		"maintenance_type": "Замена клавиатуры", "start_date": "2024-06-01",
	})
	s.Require().Equal(http.StatusCreated, code, resp.Message)
	var maintenance struct {
		ID uint64 `json:"id"`
	}
	s.decode(resp, &maintenance)

	_, status := s.assetStatus(s.Token)
	s.Equal("under_maintenance", status)

	code, resp = s.do(http.MethodPost, fmt.Sprintf("/api/assignments/%d/return", assignment.ID), s.Token, map[string]interface{}{
		"checkin_date": "2024-06-02", "checkin_condition": "fair",
	})
	s.Require().Equal(http.StatusOK, code, resp.Message)
	_, status = s.assetStatus(s.Token)
	s.Equal("under_maintenance", status, "возврат не снимает обслуживание")

	path := fmt.Sprintf("/api/maintenances/%d/status", maintenance.ID)
	code, resp = s.do(http.MethodPut, path, s.Token, map[string]interface{}{"status": "in_progress"})
	s.Require().Equal(http.StatusOK, code, resp.Message)
	code, resp = s.do(http.MethodPut, path, s.Token, map[string]interface{}{
		"status": "completed", "end_date": "2024-06-05", "cost": "3500",
	})
	s.Require().Equal(http.StatusOK, code, resp.Message)

	_, status = s.assetStatus(s.Token)
	s.Equal("available", status)
}

func (s *AssetFlowSuite) Test04_HistoryAndSchedule() {
	code, resp := s.do(http.MethodGet, fmt.Sprintf("/api/assets/%d/history", s.AssetID), s.Token, nil)
	s.Require().Equal(http.StatusOK, code)
	var history []struct {
		EventType string `json:"event_type"`
	}
	s.decode(resp, &history)
	s.GreaterOrEqual(len(history), 5, "создание, выдача, обслуживание, возврат, завершение")

	code, resp = s.do(http.MethodGet, fmt.Sprintf("/api/assets/%d/depreciation-schedule", s.AssetID), s.Token, nil)
	s.Require().Equal(http.StatusOK, code)
	var schedule []json.RawMessage
	s.decode(resp, &schedule)
	s.Len(schedule, 4)
}

func (s *AssetFlowSuite) Test05_Reports() {
	s.Runtime.Bus.Wait()

	code, resp := s.do(http.MethodGet, "/api/reports/dashboard", s.Token, nil)
	s.Require().Equal(http.StatusOK, code, resp.Message)
	var summary struct {
		TotalAssets int64 `json:"total_assets"`
	}
	s.decode(resp, &summary)
	s.Equal(int64(1), summary.TotalAssets)

	code, resp = s.do(http.MethodGet, "/api/reports/depreciation?status=available", s.Token, nil)
	s.Require().Equal(http.StatusOK, code, resp.Message)
	var items []struct {
		AssetID uint64 `json:"asset_id"`
	}
	s.decode(resp, &items)
	s.Require().Len(items, 1)
	s.Equal(s.AssetID, items[0].AssetID)

	code, _ = s.do(http.MethodGet, "/api/reports/depreciation?format=xlsx", s.Token, nil)
	s.Equal(http.StatusOK, code)
}

func (s *AssetFlowSuite) Test06_DisposeFreezesAsset() {
	code, resp := s.do(http.MethodPost, fmt.Sprintf("/api/assets/%d/dispose", s.AssetID), s.Token, map[string]interface{}{
		"reason": "Разбит",
	})
	s.Require().Equal(http.StatusOK, code, resp.Message)

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/assets/%d/assignments", s.AssetID), s.Token, map[string]interface{}{
		"employee_id": 100, "checkout_date": "2024-07-01",
	})
	s.Equal(http.StatusConflict, code)

	code, _ = s.do(http.MethodPut, fmt.Sprintf("/api/assets/%d", s.AssetID), s.Token, map[string]interface{}{"name": "Новое имя"})
	s.Equal(http.StatusConflict, code)

	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/asset-types/%d", s.TypeID), s.Token, nil)
	s.Equal(http.StatusConflict, code, "тип с активами не удаляется")
}

func (s *AssetFlowSuite) Test07_ConcurrentAssignOneWins() {
	code, resp := s.do(http.MethodPost, "/api/assets", s.Token, map[string]interface{}{
		"name":          "Монитор LG 27",
		"asset_type_id": s.TypeID,
		"purchase_date": "2024-03-01",
		"purchase_cost": "30000",
	})
	s.Require().Equal(http.StatusCreated, code, resp.Message)
	var asset struct {
		ID uint64 `json:"id"`
	}
	s.decode(resp, &asset)
	s.ContendedAssetID = asset.ID

	const workers = 8
	path := fmt.Sprintf("/api/assets/%d/assignments", asset.ID)
	codes := make([]int, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		body, err := json.Marshal(map[string]interface{}{"employee_id": 100 + i%2, "checkout_date": "2024-03-05"})
		s.Require().NoError(err)
		wg.Add(1)
		go func(i int, body []byte) {
			defer wg.Done()
			<-start
			codes[i] = s.post(path, body)
		}(i, body)
	}
	close(start)
	wg.Wait()

	created, conflicts := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	s.Equal(1, created, "выдать актив может только один запрос: %v", codes)
	s.Equal(workers-1, conflicts, "остальные получают конфликт: %v", codes)

	s.Equal(1, s.count(`SELECT count(*) FROM asset_assignments WHERE asset_id = $1 AND checkin_date IS NULL`, asset.ID))
	s.Equal(1, s.count(`SELECT count(*) FROM asset_history WHERE asset_id = $1 AND event_type = 'ASSIGNED'`, asset.ID))
	s.Equal("assigned", s.snapshot(asset.ID).Status)

	s.Require().NoError(s.DB.QueryRow(context.Background(),
		`SELECT id FROM asset_assignments WHERE asset_id = $1 AND checkin_date IS NULL`, asset.ID).Scan(&s.AssignmentID))
}

func (s *AssetFlowSuite) Test08_RejectedOperationsLeaveNoRows() {
	s.Require().NotZero(s.ContendedAssetID)
	before := s.snapshot(s.ContendedAssetID)

	code, _ := s.do(http.MethodPost, fmt.Sprintf("/api/assets/%d/assignments", s.ContendedAssetID), s.Token, map[string]interface{}{
		"employee_id": 101, "checkout_date": "2024-03-06",
	})
	s.Equal(http.StatusConflict, code, "актив уже выдан")

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/assets/%d/dispose", s.ContendedAssetID), s.Token, map[string]interface{}{
		"reason": "Устарел",
	})
	s.Equal(http.StatusConflict, code, "списание при открытой выдаче")

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/assignments/%d/return", s.AssignmentID), s.Token, map[string]interface{}{
		"checkin_date": "2024-03-01", "checkin_condition": "good",
	})
	s.Equal(http.StatusBadRequest, code, "возврат раньше выдачи")

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/assets/%d/dispose", s.ContendedAssetID), s.Token, map[string]interface{}{
		"disposal_date": time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
	})
	s.Equal(http.StatusBadRequest, code, "дата списания в будущем")

	s.Equal(before, s.snapshot(s.ContendedAssetID), "отклонённые операции ничего не записали")
	s.Equal(1, s.count(`SELECT count(*) FROM asset_assignments WHERE asset_id = $1 AND checkin_date IS NULL`, s.ContendedAssetID))
}

func TestAssetFlowSuite(t *testing.T) {
	suite.Run(t, new(AssetFlowSuite))
}
