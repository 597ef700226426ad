package service

import (
	"context"
	"strings"

	"github.com/bazaarlabs/settlement/internal/clock"
	"github.com/bazaarlabs/settlement/internal/settings/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
	Cache *Cache `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
	cache *Cache
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("settings.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
		cache: p.Cache,
	}
}

func (s *Service) Get(ctx context.Context, key string) (domain.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Setting{}, domain.ErrInvalidKey
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	setting, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return domain.Setting{}, err
	}
	if setting == nil {
		return domain.Setting{}, domain.ErrNotFound
	}

	if s.cache != nil {
		s.cache.Set(ctx, *setting)
	}

	return *setting, nil
}

func (s *Service) GetDecimal(ctx context.Context, key string) (decimal.Decimal, bool) {
	setting, err := s.Get(ctx, key)
	if err != nil {
		if err != domain.ErrNotFound {
			s.log.Warn("settings lookup failed", zap.String("key", key), zap.Error(err))
		}
		return decimal.Zero, false
	}

	value, err := decimal.NewFromString(strings.TrimSpace(setting.Value))
	if err != nil {
		s.log.Warn("setting value is not numeric",
			zap.String("key", key),
			zap.String("value", setting.Value),
		)
		return decimal.Zero, false
	}
	return value, true
}

func (s *Service) GetBool(ctx context.Context, key string) (bool, bool) {
	setting, err := s.Get(ctx, key)
	if err != nil {
		if err != domain.ErrNotFound {
			s.log.Warn("settings lookup failed", zap.String("key", key), zap.Error(err))
		}
		return false, false
	}

	switch strings.ToLower(strings.TrimSpace(setting.Value)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	default:
		s.log.Warn("setting value is not boolean",
			zap.String("key", key),
			zap.String("value", setting.Value),
		)
		return false, false
	}
}

func (s *Service) List(ctx context.Context, category string) ([]domain.Setting, error) {
	items, err := s.repo.List(ctx, s.db, strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}

	settings := make([]domain.Setting, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		settings = append(settings, *item)
	}
	return settings, nil
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertSettingRequest) (domain.Setting, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return domain.Setting{}, domain.ErrInvalidKey
	}

	switch req.ValueType {
	case domain.ValueTypeString, domain.ValueTypeNumber, domain.ValueTypeBoolean:
	default:
		return domain.Setting{}, domain.ErrInvalidValueType
	}

	existing, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return domain.Setting{}, err
	}
	if existing != nil && !existing.IsEditable {
		return domain.Setting{}, domain.ErrSettingNotEditable
	}

	now := s.clock.Now()
	setting := domain.Setting{
		ID:          s.genID.Generate(),
		Key:         key,
		Category:    strings.TrimSpace(req.Category),
		Value:       strings.TrimSpace(req.Value),
		ValueType:   req.ValueType,
		Label:       strings.TrimSpace(req.Label),
		Description: strings.TrimSpace(req.Description),
		IsPublic:    req.IsPublic,
		IsEditable:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing != nil {
		setting.ID = existing.ID
		setting.CreatedAt = existing.CreatedAt
		setting.IsEditable = existing.IsEditable
	}

	if err := s.repo.Upsert(ctx, s.db, &setting); err != nil {
		return domain.Setting{}, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, key)
	}

	s.log.Info("setting upserted", zap.String("key", key))
	return setting, nil
}
