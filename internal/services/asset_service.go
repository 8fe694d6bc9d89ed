package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	uploadcfg "asset-system/config"
	"asset-system/internal/depreciation"
	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/events"
	"asset-system/internal/integrations"
	"asset-system/internal/repositories"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/eventbus"
	"asset-system/pkg/filestorage"
	"asset-system/pkg/qrcode"
	"asset-system/pkg/types"
	"asset-system/pkg/utils"
)

const (
	defaultRefreshBatch = 500
	historyPageLimit    = 500
	qrPathPrefix        = "assets/qr"
)

type AssetServiceInterface interface {
	CreateAsset(ctx context.Context, actor types.Actor, req dto.CreateAssetDTO) (*dto.AssetDTO, error)
	UpdateAsset(ctx context.Context, actor types.Actor, id uint64, req dto.UpdateAssetDTO) (*dto.AssetDTO, error)
	DisposeAsset(ctx context.Context, actor types.Actor, id uint64, req dto.DisposeAssetDTO) (*dto.AssetDTO, error)
	DeleteAsset(ctx context.Context, actor types.Actor, id uint64) error
	GetAsset(ctx context.Context, actor types.Actor, id uint64) (*dto.AssetDTO, error)
	ListAssets(ctx context.Context, actor types.Actor, filter types.Filter) ([]dto.AssetDTO, uint64, error)
	GetHistory(ctx context.Context, actor types.Actor, id uint64, limit, offset int) ([]dto.AssetHistoryDTO, uint64, error)
	GetDepreciationSchedule(ctx context.Context, actor types.Actor, id uint64) ([]depreciation.ScheduleLine, error)
	AttachDocument(ctx context.Context, actor types.Actor, id uint64, kind dto.AttachmentKind, file io.Reader, fileName string) (*dto.AssetDTO, error)
	RefreshDepreciation(ctx context.Context, asOf time.Time) (int, error)
}

type AssetService struct {
	txManager        repositories.TxManagerInterface
	assetRepo        repositories.AssetRepositoryInterface
	assetTypeRepo    repositories.AssetTypeRepositoryInterface
	assignmentRepo   repositories.AssignmentRepositoryInterface
	maintenanceRepo  repositories.MaintenanceRepositoryInterface
	depreciationRepo repositories.DepreciationRepositoryInterface
	historyRepo      repositories.AssetHistoryRepositoryInterface
	fileStorage      filestorage.FileStorageInterface
	qrGenerator      qrcode.GeneratorInterface
	employees        integrations.EmployeeDirectory
	bus              *eventbus.Bus
	logger           *zap.Logger

	refreshBatch int
	now          func() time.Time
}

// NewAssetService: fileStorage, qrGenerator, employees и bus могут быть nil - соответствующая функция отключается.
func NewAssetService(
	txManager repositories.TxManagerInterface,
	assetRepo repositories.AssetRepositoryInterface,
	assetTypeRepo repositories.AssetTypeRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	maintenanceRepo repositories.MaintenanceRepositoryInterface,
	depreciationRepo repositories.DepreciationRepositoryInterface,
	historyRepo repositories.AssetHistoryRepositoryInterface,
	fileStorage filestorage.FileStorageInterface,
	qrGenerator qrcode.GeneratorInterface,
	employees integrations.EmployeeDirectory,
	bus *eventbus.Bus,
	refreshBatch int,
	logger *zap.Logger,
) *AssetService {
	if refreshBatch <= 0 {
		refreshBatch = defaultRefreshBatch
	}
	return &AssetService{
		txManager:        txManager,
		assetRepo:        assetRepo,
		assetTypeRepo:    assetTypeRepo,
		assignmentRepo:   assignmentRepo,
		maintenanceRepo:  maintenanceRepo,
		depreciationRepo: depreciationRepo,
		historyRepo:      historyRepo,
		fileStorage:      fileStorage,
		qrGenerator:      qrGenerator,
		employees:        employees,
		bus:              bus,
		logger:           logger,
		refreshBatch:     refreshBatch,
		now:              time.Now,
	}
}

func (s *AssetService) today() time.Time {
	return utils.TruncateToDay(s.now())
}

func (s *AssetService) CreateAsset(ctx context.Context, actor types.Actor, req dto.CreateAssetDTO) (*dto.AssetDTO, error) {
	if req.PurchaseCost.IsNegative() {
		return nil, apperrors.NewValidationError("purchase_cost", "стоимость не может быть отрицательной")
	}
	if req.PurchaseDate.IsZero() {
		return nil, apperrors.NewValidationError("purchase_date", "дата покупки обязательна")
	}

	condition := entities.ConditionNew
	if req.Condition != "" {
		condition = entities.AssetCondition(req.Condition)
		if !condition.Valid() {
			return nil, apperrors.NewValidationError("condition", "неизвестное состояние '%s'", req.Condition)
		}
	}

	var policy *depreciation.Policy
	if req.Depreciation != nil {
		p := policyFromDTO(*req.Depreciation)
		if err := depreciation.ValidatePolicy(p, req.PurchaseCost); err != nil {
			return nil, err
		}
		policy = &p
	}

	if _, err := s.assetTypeRepo.FindAssetType(ctx, req.AssetTypeID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("asset_type_id", "тип актива #%d не найден", req.AssetTypeID)
		}
		return nil, err
	}

	today := s.today()
	var initial *entities.AssetAssignment
	if req.InitialAssignment != nil {
		var err error
		initial, err = s.buildInitialAssignment(ctx, actor, *req.InitialAssignment, condition, today)
		if err != nil {
			return nil, err
		}
		if initial.CheckoutDate.Before(req.PurchaseDate.Time) {
			return nil, apperrors.NewValidationError("checkout_date", "дата выдачи раньше даты покупки")
		}
	}

	asset := &entities.Asset{
		TenantID:           actor.TenantID,
		Name:               strings.TrimSpace(req.Name),
		AssetTypeID:        req.AssetTypeID,
		SerialNumber:       req.SerialNumber.Ptr(),
		AssetCode:          strings.TrimSpace(req.AssetCode.String),
		PurchaseDate:       req.PurchaseDate.Time,
		PurchaseCost:       req.PurchaseCost.Round(2),
		Status:             entities.AssetStatusAvailable,
		Condition:          condition,
		Location:           req.Location.Ptr(),
		Supplier:           req.Supplier.Ptr(),
		WarrantyExpiryDate: datePtr(req.WarrantyExpiryDate),
		Notes:              req.Notes.Ptr(),
		CreatedBy:          actor.UserID,
	}
	if asset.AssetCode == "" {
		asset.AssetCode = generateAssetCode()
	}
	if initial != nil {
		asset.Status = entities.AssetStatusAssigned
	}

	var dep *entities.AssetDepreciation
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.assetRepo.Create(ctx, tx, asset); err != nil {
			return err
		}
		if err := recordHistory(ctx, s.historyRepo, tx, asset.ID, actor.UserID, entities.HistoryCreated,
			nil, strPtr(string(asset.Status)), nil); err != nil {
			return err
		}

		if policy != nil {
			dep = s.calculateDepreciation(asset, *policy, today)
			if err := s.depreciationRepo.Upsert(ctx, tx, dep); err != nil {
				return err
			}
		}

		if initial != nil {
			initial.AssetID = asset.ID
			if _, err := s.assignmentRepo.Create(ctx, tx, initial); err != nil {
				return err
			}
			employee := fmt.Sprintf("%d", initial.EmployeeID)
			if err := recordHistory(ctx, s.historyRepo, tx, asset.ID, actor.UserID, entities.HistoryAssigned,
				nil, &employee, strPtr("выдан при регистрации")); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Ошибка создания актива", zap.String("code", asset.AssetCode), zap.Error(err))
		return nil, err
	}

	s.attachQRCode(ctx, asset)
	s.logger.Info("Актив создан", zap.Uint64("assetID", asset.ID), zap.String("code", asset.AssetCode),
		zap.String("status", string(asset.Status)))
	publishAssetChanged(ctx, s.bus, actor, asset.ID, entities.HistoryCreated)

	return s.composeDTO(ctx, asset, dep, today)
}

func (s *AssetService) buildInitialAssignment(
	ctx context.Context,
	actor types.Actor,
	req dto.InitialAssignmentDTO,
	condition entities.AssetCondition,
	today time.Time,
) (*entities.AssetAssignment, error) {
	if err := s.checkEmployee(ctx, actor, req.EmployeeID); err != nil {
		return nil, err
	}
	checkout := today
	if req.CheckoutDate != nil && !req.CheckoutDate.IsZero() {
		checkout = req.CheckoutDate.Time
	}
	expected := datePtr(req.ExpectedReturnDate)
	if expected != nil && expected.Before(checkout) {
		return nil, apperrors.NewValidationError("expected_return_date", "ожидаемая дата возврата раньше даты выдачи")
	}
	return &entities.AssetAssignment{
		EmployeeID:         req.EmployeeID,
		AssignedBy:         actor.UserID,
		CheckoutDate:       checkout,
		ExpectedReturnDate: expected,
		CheckoutCondition:  condition,
		Notes:              req.Notes.Ptr(),
	}, nil
}

func (s *AssetService) checkEmployee(ctx context.Context, actor types.Actor, employeeID uint64) error {
	return checkEmployee(ctx, s.employees, actor, employeeID)
}

func (s *AssetService) UpdateAsset(ctx context.Context, actor types.Actor, id uint64, req dto.UpdateAssetDTO) (*dto.AssetDTO, error) {
	if req.Status != nil {
		return nil, apperrors.NewValidationError("status", "статус меняется только операциями выдачи, обслуживания и списания")
	}
	if req.PurchaseCost.Valid && req.PurchaseCost.Decimal.IsNegative() {
		return nil, apperrors.NewValidationError("purchase_cost", "стоимость не может быть отрицательной")
	}
	if req.AssetTypeID.Valid {
		if _, err := s.assetTypeRepo.FindAssetType(ctx, req.AssetTypeID.Uint64); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError("asset_type_id", "тип актива #%d не найден", req.AssetTypeID.Uint64)
			}
			return nil, err
		}
	}

	today := s.today()
	var (
		asset *entities.Asset
		dep   *entities.AssetDepreciation
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		asset, err = lockAsset(ctx, s.assetRepo, tx, actor, id)
		if err != nil {
			return err
		}
		if asset.IsDisposed() {
			return apperrors.NewInvalidStateError("asset", id, string(asset.Status), "update")
		}

		changed, valuationChanged, err := applyAssetPatch(asset, req)
		if err != nil {
			return err
		}
		if len(changed) > 0 {
			if err := s.assetRepo.Update(ctx, tx, asset); err != nil {
				return err
			}
		}

		dep, err = s.depreciationRepo.FindByAsset(ctx, tx, id)
		if err != nil {
			return err
		}

		switch {
		case req.RemoveDepreciation:
			if dep != nil {
				if err := s.depreciationRepo.Delete(ctx, tx, id); err != nil {
					return err
				}
				changed = append(changed, "depreciation")
				dep = nil
			}
		case req.Depreciation != nil:
			policy := policyFromDTO(*req.Depreciation)
			if err := depreciation.ValidatePolicy(policy, asset.PurchaseCost); err != nil {
				return err
			}
			dep = s.calculateDepreciation(asset, policy, today)
			if err := s.depreciationRepo.Upsert(ctx, tx, dep); err != nil {
				return err
			}
			changed = append(changed, "depreciation")
		case dep != nil && valuationChanged:
			// стоимость или дата покупки изменились - пересчёт от даты покупки по действующей политике
			if err := depreciation.ValidatePolicy(dep.Policy(), asset.PurchaseCost); err != nil {
				return err
			}
			dep = s.calculateDepreciation(asset, dep.Policy(), today)
			if err := s.depreciationRepo.Upsert(ctx, tx, dep); err != nil {
				return err
			}
		}

		if len(changed) == 0 {
			return nil
		}
		return recordHistory(ctx, s.historyRepo, tx, id, actor.UserID, entities.HistoryUpdated,
			nil, strPtr(strings.Join(changed, ",")), nil)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Актив обновлён", zap.Uint64("assetID", id))
	publishAssetChanged(ctx, s.bus, actor, id, entities.HistoryUpdated)
	return s.composeDTO(ctx, asset, dep, today)
}

// applyAssetPatch возвращает изменённые поля и признак изменения стоимости или даты покупки.
func applyAssetPatch(asset *entities.Asset, req dto.UpdateAssetDTO) ([]string, bool, error) {
	var changed []string
	valuation := false

	if req.Name.Valid && strings.TrimSpace(req.Name.String) != asset.Name {
		asset.Name = strings.TrimSpace(req.Name.String)
		changed = append(changed, "name")
	}
	if req.AssetTypeID.Valid && req.AssetTypeID.Uint64 != asset.AssetTypeID {
		asset.AssetTypeID = req.AssetTypeID.Uint64
		changed = append(changed, "asset_type_id")
	}
	if req.SerialNumber.Valid && utils.DiffPtr(asset.SerialNumber, req.SerialNumber.Ptr()) {
		asset.SerialNumber = req.SerialNumber.Ptr()
		changed = append(changed, "serial_number")
	}
	if req.AssetCode.Valid {
		code := strings.TrimSpace(req.AssetCode.String)
		if code == "" {
			return nil, false, apperrors.NewValidationError("asset_code", "код не может быть пустым")
		}
		if code != asset.AssetCode {
			asset.AssetCode = code
			changed = append(changed, "asset_code")
		}
	}
	if req.PurchaseDate != nil && !req.PurchaseDate.IsZero() && !req.PurchaseDate.Time.Equal(asset.PurchaseDate) {
		asset.PurchaseDate = req.PurchaseDate.Time
		changed = append(changed, "purchase_date")
		valuation = true
	}
	if req.PurchaseCost.Valid && !req.PurchaseCost.Decimal.Equal(asset.PurchaseCost) {
		asset.PurchaseCost = req.PurchaseCost.Decimal.Round(2)
		changed = append(changed, "purchase_cost")
		valuation = true
	}
	if req.Condition.Valid {
		condition := entities.AssetCondition(req.Condition.String)
		if !condition.Valid() {
			return nil, false, apperrors.NewValidationError("condition", "неизвестное состояние '%s'", req.Condition.String)
		}
		if condition != asset.Condition {
			asset.Condition = condition
			changed = append(changed, "condition")
		}
	}
	if req.Location.Valid && utils.DiffPtr(asset.Location, req.Location.Ptr()) {
		asset.Location = req.Location.Ptr()
		changed = append(changed, "location")
	}
	if req.Supplier.Valid && utils.DiffPtr(asset.Supplier, req.Supplier.Ptr()) {
		asset.Supplier = req.Supplier.Ptr()
		changed = append(changed, "supplier")
	}
	if req.WarrantyExpiryDate != nil {
		warranty := datePtr(req.WarrantyExpiryDate)
		if utils.DiffPtr(asset.WarrantyExpiryDate, warranty) {
			asset.WarrantyExpiryDate = warranty
			changed = append(changed, "warranty_expiry_date")
		}
	}
	if req.Notes.Valid && utils.DiffPtr(asset.Notes, req.Notes.Ptr()) {
		asset.Notes = req.Notes.Ptr()
		changed = append(changed, "notes")
	}
	return changed, valuation, nil
}

func (s *AssetService) DisposeAsset(ctx context.Context, actor types.Actor, id uint64, req dto.DisposeAssetDTO) (*dto.AssetDTO, error) {
	today := s.today()
	disposalDate := today
	if req.DisposalDate != nil && !req.DisposalDate.IsZero() {
		disposalDate = utils.TruncateToDay(req.DisposalDate.Time)
	}
	if disposalDate.After(today) {
		return nil, apperrors.NewValidationError("disposal_date", "дата списания в будущем")
	}

	var (
		asset *entities.Asset
		dep   *entities.AssetDepreciation
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		asset, err = lockAsset(ctx, s.assetRepo, tx, actor, id)
		if err != nil {
			return err
		}
		if asset.IsDisposed() {
			return apperrors.NewInvalidStateError("asset", id, string(asset.Status), "dispose")
		}

		open, err := s.assignmentRepo.FindOpenByAsset(ctx, tx, id)
		if err != nil {
			return err
		}
		if open != nil {
			return apperrors.NewInvalidStateError("asset", id, string(asset.Status), "dispose")
		}
		active, err := s.maintenanceRepo.FindActiveByAsset(ctx, tx, id)
		if err != nil {
			return err
		}
		if active != nil {
			return apperrors.NewInvalidStateError("asset", id, string(asset.Status), "dispose")
		}
		if disposalDate.Before(asset.PurchaseDate) {
			return apperrors.NewValidationError("disposal_date", "дата списания раньше даты покупки")
		}

		// последний пересчёт: после списания стоимость больше не меняется
		dep, err = s.depreciationRepo.FindByAsset(ctx, tx, id)
		if err != nil {
			return err
		}
		if dep != nil {
			// Upsert, а не UpdateValue: дата списания может быть раньше последнего расчёта
			dep.CurrentValue = depreciation.ValueAsOf(dep.Policy(), asset.PurchaseCost, asset.PurchaseDate, disposalDate)
			dep.LastCalculatedDate = disposalDate
			if err := s.depreciationRepo.Upsert(ctx, tx, dep); err != nil {
				return err
			}
		}

		from := string(asset.Status)
		if err := s.assetRepo.TransitionStatus(ctx, tx, id, asset.Status, entities.AssetStatusDisposed); err != nil {
			return err
		}
		asset.Status = entities.AssetStatusDisposed
		return recordHistory(ctx, s.historyRepo, tx, id, actor.UserID, entities.HistoryDisposed,
			&from, strPtr(string(entities.AssetStatusDisposed)), req.Reason.Ptr())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Актив списан", zap.Uint64("assetID", id), zap.Time("date", disposalDate))
	publishAssetChanged(ctx, s.bus, actor, id, entities.HistoryDisposed)
	return s.composeDTO(ctx, asset, dep, today)
}

// DeleteAsset - мягкое удаление: строки истории и выдач остаются.
func (s *AssetService) DeleteAsset(ctx context.Context, actor types.Actor, id uint64) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		asset, err := lockAsset(ctx, s.assetRepo, tx, actor, id)
		if err != nil {
			return err
		}
		if asset.Status == entities.AssetStatusAssigned {
			return apperrors.NewInvalidStateError("asset", id, string(asset.Status), "delete")
		}
		open, err := s.assignmentRepo.FindOpenByAsset(ctx, tx, id)
		if err != nil {
			return err
		}
		if open != nil {
			return apperrors.NewInvalidStateError("asset", id, string(asset.Status), "delete")
		}

		if err := s.assetRepo.SoftDelete(ctx, tx, id); err != nil {
			return err
		}
		return recordHistory(ctx, s.historyRepo, tx, id, actor.UserID, entities.HistoryDeleted,
			strPtr(string(asset.Status)), nil, nil)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Актив удалён", zap.Uint64("assetID", id), zap.Uint64("userID", actor.UserID))
	publishAssetChanged(ctx, s.bus, actor, id, entities.HistoryDeleted)
	return nil
}

// GetAsset пересчитывает и сохраняет амортизацию, если последний расчёт был раньше сегодняшнего дня.
func (s *AssetService) GetAsset(ctx context.Context, actor types.Actor, id uint64) (*dto.AssetDTO, error) {
	asset, err := findAsset(ctx, s.assetRepo, actor, id)
	if err != nil {
		return nil, err
	}

	today := s.today()
	dep, err := s.depreciationRepo.FindByAsset(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if dep != nil && !asset.IsDisposed() && depreciation.NeedsRefresh(dep.LastCalculatedDate, today) {
		fresh, err := s.revalue(ctx, id, today)
		switch {
		case err != nil:
			// ответ всё равно содержит актуальную стоимость, запись догонит cron
			s.logger.Warn("Не удалось сохранить пересчёт амортизации", zap.Uint64("assetID", id), zap.Error(err))
			dep.CurrentValue = depreciation.ValueAsOf(dep.Policy(), asset.PurchaseCost, asset.PurchaseDate, today)
			dep.LastCalculatedDate = today
		case fresh != nil:
			dep = fresh
		default:
			// пересчитал кто-то другой
			if dep, err = s.depreciationRepo.FindByAsset(ctx, nil, id); err != nil {
				return nil, err
			}
		}
	}

	return s.composeDTO(ctx, asset, dep, today)
}

// composeDTO добавляет к активу амортизацию, открытую выдачу и активное обслуживание.
func (s *AssetService) composeDTO(ctx context.Context, asset *entities.Asset, dep *entities.AssetDepreciation, today time.Time) (*dto.AssetDTO, error) {
	result := assetEntityToDTO(asset)
	if dep != nil {
		result.CurrentValue = dep.CurrentValue
		result.Depreciation = buildDepreciationDTO(asset, dep)
	}

	open, err := s.assignmentRepo.FindOpenByAsset(ctx, nil, asset.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		result.OpenAssignment = assignmentEntityToDTO(open, today)
	}

	active, err := s.maintenanceRepo.FindActiveByAsset(ctx, nil, asset.ID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		result.ActiveMaintenance = maintenanceEntityToDTO(active)
	}
	return result, nil
}

func (s *AssetService) ListAssets(ctx context.Context, actor types.Actor, filter types.Filter) ([]dto.AssetDTO, uint64, error) {
	assets, total, err := s.assetRepo.List(ctx, actor.TenantID, filter)
	if err != nil {
		s.logger.Error("Ошибка получения списка активов", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AssetDTO, 0, len(assets))
	for i := range assets {
		result = append(result, *assetEntityToDTO(&assets[i]))
	}
	return result, total, nil
}

func (s *AssetService) GetHistory(ctx context.Context, actor types.Actor, id uint64, limit, offset int) ([]dto.AssetHistoryDTO, uint64, error) {
	if _, err := findAsset(ctx, s.assetRepo, actor, id); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > historyPageLimit {
		limit = historyPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.historyRepo.FindByAssetID(ctx, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.AssetHistoryDTO, 0, len(items))
	for _, h := range items {
		result = append(result, historyEntityToDTO(h))
	}
	return result, total, nil
}

func (s *AssetService) GetDepreciationSchedule(ctx context.Context, actor types.Actor, id uint64) ([]depreciation.ScheduleLine, error) {
	asset, err := findAsset(ctx, s.assetRepo, actor, id)
	if err != nil {
		return nil, err
	}
	dep, err := s.depreciationRepo.FindByAsset(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if dep == nil {
		return []depreciation.ScheduleLine{}, nil
	}
	lines := depreciation.Schedule(dep.Policy(), asset.PurchaseCost, asset.PurchaseDate)
	if lines == nil {
		lines = []depreciation.ScheduleLine{}
	}
	return lines, nil
}

// AttachDocument сохраняет файл в хранилище и записывает полученную ссылку как есть.
func (s *AssetService) AttachDocument(
	ctx context.Context,
	actor types.Actor,
	id uint64,
	kind dto.AttachmentKind,
	file io.Reader,
	fileName string,
) (*dto.AssetDTO, error) {
	if s.fileStorage == nil {
		return nil, apperrors.NewHttpError(http.StatusServiceUnavailable, "Хранилище файлов не настроено", nil, nil)
	}

	var uploadContext string
	switch kind {
	case dto.AttachmentImage:
		uploadContext = uploadcfg.UploadAssetImage
	case dto.AttachmentDocument:
		uploadContext = uploadcfg.UploadAssetDocument
	default:
		return nil, apperrors.NewValidationError("kind", "неизвестный тип вложения '%s'", kind)
	}

	// проверяем актив до записи файла, чтобы не оставлять сирот на диске
	asset, err := findAsset(ctx, s.assetRepo, actor, id)
	if err != nil {
		return nil, err
	}
	if asset.IsDisposed() {
		return nil, apperrors.NewInvalidStateError("asset", id, string(asset.Status), "attach_document")
	}

	ref, err := s.fileStorage.Save(ctx, file, fileName, uploadcfg.UploadContexts[uploadContext].PathPrefix)
	if err != nil {
		return nil, fmt.Errorf("не удалось сохранить файл: %w", err)
	}

	var dep *entities.AssetDepreciation
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		asset, err = lockAsset(ctx, s.assetRepo, tx, actor, id)
		if err != nil {
			return err
		}
		if asset.IsDisposed() {
			return apperrors.NewInvalidStateError("asset", id, string(asset.Status), "attach_document")
		}

		var old *string
		if kind == dto.AttachmentImage {
			old, asset.ImageRef = asset.ImageRef, &ref
		} else {
			old, asset.DocumentRef = asset.DocumentRef, &ref
		}
		if err := s.assetRepo.Update(ctx, tx, asset); err != nil {
			return err
		}
		if dep, err = s.depreciationRepo.FindByAsset(ctx, tx, id); err != nil {
			return err
		}
		return recordHistory(ctx, s.historyRepo, tx, id, actor.UserID, entities.HistoryDocument,
			old, &ref, strPtr(string(kind)))
	})
	if err != nil {
		if delErr := s.fileStorage.Delete(ref); delErr != nil {
			s.logger.Warn("Не удалось удалить файл после ошибки", zap.String("ref", ref), zap.Error(delErr))
		}
		return nil, err
	}

	publishAssetChanged(ctx, s.bus, actor, id, entities.HistoryDocument)
	return s.composeDTO(ctx, asset, dep, s.today())
}

// RefreshDepreciation пересчитывает все несписанные активы, у которых расчёт старше asOf.
// Возвращает число обновлённых записей.
func (s *AssetService) RefreshDepreciation(ctx context.Context, asOf time.Time) (int, error) {
	asOf = utils.TruncateToDay(asOf)
	updated := 0
	tenants := make(map[uint64]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		batch, err := s.depreciationRepo.ListDue(ctx, asOf, s.refreshBatch)
		if err != nil {
			return updated, fmt.Errorf("не удалось получить записи для пересчёта: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		progressed := 0
		for _, item := range batch {
			dep, err := s.revalue(ctx, item.AssetID, asOf)
			if err != nil {
				s.logger.Error("Ошибка пересчёта амортизации", zap.Uint64("assetID", item.AssetID), zap.Error(err))
				continue
			}
			progressed++
			if dep != nil {
				updated++
				tenants[item.TenantID] = struct{}{}
			}
		}

		// без прогресса та же пачка вернулась бы снова
		if progressed == 0 || len(batch) < s.refreshBatch {
			break
		}
	}

	if s.bus != nil && updated > 0 {
		ids := make([]uint64, 0, len(tenants))
		for id := range tenants {
			ids = append(ids, id)
		}
		s.bus.Publish(ctx, events.DepreciationRefreshedEvent{TenantIDs: ids, Updated: updated})
	}
	s.logger.Info("Пересчёт амортизации завершён", zap.Int("updated", updated), zap.Time("asOf", asOf))
	return updated, nil
}

// revalue пересчитывает стоимость на asOf под блокировкой строки актива, по данным, прочитанным в той же транзакции.
// Параллельное изменение стоимости, политики или списание не будет перезаписано устаревшим значением.
// Возвращает nil, если пересчёт уже не нужен (актив списан, удалён или посчитан на asOf и позже).
func (s *AssetService) revalue(ctx context.Context, assetID uint64, asOf time.Time) (*entities.AssetDepreciation, error) {
	var dep *entities.AssetDepreciation
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		asset, err := s.assetRepo.FindForUpdate(ctx, tx, assetID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil
			}
			return err
		}
		if asset.IsDisposed() {
			return nil
		}
		current, err := s.depreciationRepo.FindByAsset(ctx, tx, assetID)
		if err != nil || current == nil || !depreciation.NeedsRefresh(current.LastCalculatedDate, asOf) {
			return err
		}

		current.CurrentValue = depreciation.ValueAsOf(current.Policy(), asset.PurchaseCost, asset.PurchaseDate, asOf)
		current.LastCalculatedDate = asOf
		if err := s.depreciationRepo.UpdateValue(ctx, tx, assetID, current.CurrentValue, asOf); err != nil {
			return err
		}
		dep = current
		return nil
	})
	return dep, err
}

func (s *AssetService) calculateDepreciation(asset *entities.Asset, policy depreciation.Policy, today time.Time) *entities.AssetDepreciation {
	return &entities.AssetDepreciation{
		AssetID:            asset.ID,
		Method:             policy.Method,
		UsefulLifeYears:    policy.UsefulLifeYears,
		SalvageValue:       policy.SalvageValue,
		CurrentValue:       depreciation.ValueAsOf(policy, asset.PurchaseCost, asset.PurchaseDate, today),
		LastCalculatedDate: today,
	}
}

// attachQRCode - ошибка генерации не отменяет создание актива.
func (s *AssetService) attachQRCode(ctx context.Context, asset *entities.Asset) {
	if s.qrGenerator == nil || s.fileStorage == nil {
		return
	}
	png, err := s.qrGenerator.PNG(asset.AssetCode)
	if err != nil {
		s.logger.Warn("Не удалось сгенерировать QR-код", zap.Uint64("assetID", asset.ID), zap.Error(err))
		return
	}
	ref, err := s.fileStorage.Save(ctx, bytes.NewReader(png), asset.AssetCode+".png", qrPathPrefix)
	if err != nil {
		s.logger.Warn("Не удалось сохранить QR-код", zap.Uint64("assetID", asset.ID), zap.Error(err))
		return
	}
	asset.QRCodeRef = &ref
	if err := s.assetRepo.Update(ctx, nil, asset); err != nil {
		s.logger.Warn("Не удалось сохранить ссылку на QR-код", zap.Uint64("assetID", asset.ID), zap.Error(err))
		asset.QRCodeRef = nil
	}
}

func policyFromDTO(p dto.DepreciationPolicyDTO) depreciation.Policy {
	return depreciation.Policy{
		Method:          depreciation.Method(p.Method),
		UsefulLifeYears: p.UsefulLifeYears,
		SalvageValue:    p.SalvageValue.Round(2),
	}
}

func generateAssetCode() string {
	return "AST-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func datePtr(d *types.Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
