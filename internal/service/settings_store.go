package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// SettingsRepository хранилище настроек агентства
type SettingsRepository interface {
	Get(ctx context.Context) (*model.AgencySettings, error)
	Save(ctx context.Context, s model.AgencySettings) error
}

// SettingsStore явный контейнер настроек агентства. Компоненты получают его
// через конструктор и подписываются на изменения вместо глобального состояния
type SettingsStore struct {
	repo   SettingsRepository
	tx     base.Transactor
	logger *zap.Logger

	mu       sync.RWMutex
	settings model.AgencySettings
	subs     map[int]func(model.AgencySettings)
	nextSub  int
}

func NewSettingsStore(repo SettingsRepository, tx base.Transactor, logger *zap.Logger) *SettingsStore {
	return &SettingsStore{
		repo:     repo,
		tx:       tx,
		logger:   logger,
		settings: model.AgencySettings{Airports: []model.AgencyAirport{}},
		subs:     make(map[int]func(model.AgencySettings)),
	}
}

// Snapshot копия текущих настроек
func (s *SettingsStore) Snapshot() model.AgencySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// Subscribe fn вызывается после каждого изменения. Возвращает функцию отписки
func (s *SettingsStore) Subscribe(fn func(model.AgencySettings)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Load читает настройки из базы. Если их там нет, остаются текущие
func (s *SettingsStore) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	stored, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if stored == nil {
		return nil
	}
	s.replace(*stored)
	return nil
}

// Update применяет частичное изменение, сохраняет в базу и оповещает подписчиков
func (s *SettingsStore) Update(ctx context.Context, patch model.AgencySettingsPatch) (model.AgencySettings, error) {
	next := s.Snapshot()
	applySettingsPatch(&next, patch)

	if err := validateSettings(next); err != nil {
		return model.AgencySettings{}, err
	}

	if s.repo != nil {
		err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			return s.repo.Save(ctx, next)
		})
		if err != nil {
			return model.AgencySettings{}, fmt.Errorf("update settings: %w", err)
		}
	}

	s.replace(next)
	s.logger.Info("Agency settings updated",
		zap.String("country", next.Country),
		zap.Int("airports", len(next.Airports)),
	)
	return next.Clone(), nil
}

// SaveFile сериализует настройки в YAML файл
func (s *SettingsStore) SaveFile(path string) error {
	data, err := yaml.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// LoadFile читает настройки из YAML файла. Отсутствующий файл не ошибка
func (s *SettingsStore) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings file: %w", err)
	}

	var loaded model.AgencySettings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("unmarshal settings: %w", err)
	}
	if loaded.Airports == nil {
		loaded.Airports = []model.AgencyAirport{}
	}
	if err := validateSettings(loaded); err != nil {
		return err
	}

	s.replace(loaded)
	return nil
}

func (s *SettingsStore) replace(next model.AgencySettings) {
	s.mu.Lock()
	s.settings = next.Clone()
	subs := make([]func(model.AgencySettings), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next.Clone())
	}
}

func applySettingsPatch(s *model.AgencySettings, p model.AgencySettingsPatch) {
	if p.AgencyName != nil {
		s.AgencyName = *p.AgencyName
	}
	if p.Country != nil {
		s.Country = *p.Country
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Airports != nil {
		airports := make([]model.AgencyAirport, 0, len(*p.Airports))
		for _, a := range *p.Airports {
			a.Code = strings.ToUpper(strings.TrimSpace(a.Code))
			airports = append(airports, a)
		}
		s.Airports = airports
	}
}

func validateSettings(s model.AgencySettings) error {
	seen := make(map[string]bool, len(s.Airports))
	for _, a := range s.Airports {
		code := strings.ToUpper(strings.TrimSpace(a.Code))
		if code == "" {
			return validationError("update settings", "airport code is required", "airports.code")
		}
		if seen[code] {
			return validationError("update settings", "duplicate airport code "+code, "airports.code")
		}
		seen[code] = true
	}
	return nil
}
