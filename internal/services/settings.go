package services

import (
	"context"
	"errors"
	"sort"

	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigStore reads and writes named configuration entries.
type ConfigStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// GormConfigStore keeps configuration entries in the settings table.
type GormConfigStore struct{ DB *gorm.DB }

func (s GormConfigStore) Get(ctx context.Context, key string) (string, bool, error) {
	var row models.Setting
	err := s.DB.WithContext(ctx).Where("name = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, translateDBError(err)
	}
	return row.Value, true, nil
}

func (s GormConfigStore) Set(ctx context.Context, key, value string) error {
	row := models.Setting{Name: key, Value: value}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	return translateDBError(err)
}

// SettingsService manages the architect commission and the payment tariffs.
type SettingsService struct {
	DB                         *gorm.DB
	Store                      ConfigStore
	DefaultArchitectCommission decimal.Decimal
}

func NewSettingsService(db *gorm.DB, defaultCommission decimal.Decimal) *SettingsService {
	return &SettingsService{DB: db, Store: GormConfigStore{DB: db}, DefaultArchitectCommission: defaultCommission}
}

// ArchitectCommission returns the global commission percentage, storing the default on first read.
func (s *SettingsService) ArchitectCommission(ctx context.Context) (decimal.Decimal, error) {
	raw, ok, err := s.Store.Get(ctx, models.SettingArchitectCommission)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		def := s.DefaultArchitectCommission.Round(1)
		if err := s.Store.Set(ctx, models.SettingArchitectCommission, def.StringFixed(1)); err != nil {
			return decimal.Zero, err
		}
		return def, nil
	}
	pct, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Join(ErrPersistence, err)
	}
	return pct, nil
}

// SetArchitectCommission replaces the global commission percentage.
func (s *SettingsService) SetArchitectCommission(ctx context.Context, pct decimal.Decimal) (decimal.Decimal, error) {
	v := validation.Violations{}
	validation.Percent("commission_percent", pct, v)
	if !v.Empty() {
		return decimal.Zero, violationsError(v)
	}
	pct = pct.Round(1)
	if err := s.Store.Set(ctx, models.SettingArchitectCommission, pct.StringFixed(1)); err != nil {
		return decimal.Zero, err
	}
	return pct, nil
}

// LookupFee returns the fee for (type, installments), or zero when no tariff is configured.
func (s *SettingsService) LookupFee(ctx context.Context, pt models.PaymentType, installments int) (decimal.Decimal, error) {
	var t models.PaymentTariff
	err := s.DB.WithContext(ctx).Where("payment_type = ? AND installments = ?", pt, installments).Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, translateDBError(err)
	}
	return t.FeePercent, nil
}

// UpsertTariff creates or updates the tariff for its (type, installments) pair.
func (s *SettingsService) UpsertTariff(ctx context.Context, t models.PaymentTariff) (*models.PaymentTariff, error) {
	v := validation.Violations{}
	if !t.PaymentType.Valid() {
		v["payment_type"] = "invalid_choice"
	}
	validation.PositiveInt("installments", t.Installments, v)
	validation.Percent("fee_percent", t.FeePercent, v)
	if !v.Empty() {
		return nil, violationsError(v)
	}
	t.ID = 0
	t.FeePercent = t.FeePercent.Round(1)
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_type"}, {Name: "installments"}},
		DoUpdates: clause.AssignmentColumns([]string{"fee_percent"}),
	}).Create(&t).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	var stored models.PaymentTariff
	if err := s.DB.WithContext(ctx).Where("payment_type = ? AND installments = ?", t.PaymentType, t.Installments).Take(&stored).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &stored, nil
}

// DeleteTariff removes a tariff. Deleting a missing tariff is not an error.
func (s *SettingsService) DeleteTariff(ctx context.Context, id uint) error {
	return translateDBError(s.DB.WithContext(ctx).Delete(&models.PaymentTariff{}, id).Error)
}

// TariffRow is one installment option of a payment type.
type TariffRow struct {
	Installments int             `json:"installments"`
	FeePercent   decimal.Decimal `json:"fee_percent"`
}

// TariffGroup lists the tariffs of one payment type.
type TariffGroup struct {
	PaymentType models.PaymentType `json:"payment_type"`
	Label       string             `json:"label"`
	Tariffs     []TariffRow        `json:"tariffs"`
}

// ListTariffs groups all tariffs by payment type, in the display order of payment types.
func (s *SettingsService) ListTariffs(ctx context.Context) ([]TariffGroup, error) {
	var rows []models.PaymentTariff
	if err := s.DB.WithContext(ctx).Order("installments").Find(&rows).Error; err != nil {
		return nil, translateDBError(err)
	}
	byType := map[models.PaymentType][]TariffRow{}
	for _, r := range rows {
		byType[r.PaymentType] = append(byType[r.PaymentType], TariffRow{Installments: r.Installments, FeePercent: r.FeePercent})
	}
	groups := []TariffGroup{}
	for _, pt := range models.PaymentTypes() {
		list, ok := byType[pt]
		if !ok {
			continue
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Installments < list[j].Installments })
		groups = append(groups, TariffGroup{PaymentType: pt, Label: pt.Label(), Tariffs: list})
	}
	return groups, nil
}
