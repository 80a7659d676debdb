package airport

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

//go:embed airports.csv
var bundled []byte

// ErrEmptyDataset справочник прочитан, но в нём нет ни одного подходящего аэропорта
var ErrEmptyDataset = errors.New("airport dataset is empty")

// Source загружает справочник аэропортов
type Source func(ctx context.Context) ([]model.Airport, error)

// BundledSource справочник, встроенный в бинарник
func BundledSource() Source {
	return func(ctx context.Context) ([]model.Airport, error) {
		return ParseCSV(bytes.NewReader(bundled))
	}
}

// FileSource справочник из CSV файла на диске
func FileSource(path string) Source {
	return func(ctx context.Context) ([]model.Airport, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open airports file: %w", err)
		}
		defer f.Close()

		airports, err := ParseCSV(f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return airports, nil
	}
}

// Lookup поиск аэропортов. Справочник загружается при первом обращении
// и живёт до конца процесса. Неудачная загрузка не кешируется
type Lookup struct {
	source Source
	logger *zap.Logger

	mu       sync.RWMutex
	airports []model.Airport
	byCode   map[string]int
	loaded   bool

	group singleflight.Group
}

// NewLookup создаёт поиск поверх источника
func NewLookup(source Source, logger *zap.Logger) *Lookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lookup{
		source: source,
		logger: logger,
	}
}

// NewDefaultLookup использует файл из path, если он задан, иначе встроенный справочник
func NewDefaultLookup(path string, logger *zap.Logger) *Lookup {
	if path != "" {
		return NewLookup(FileSource(path), logger)
	}
	return NewLookup(BundledSource(), logger)
}

// Search ищет по IATA коду, названию, городу и стране без учёта регистра
func (l *Lookup) Search(ctx context.Context, query string) []model.Airport {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []model.Airport{}
	}
	if !l.ensure(ctx) {
		return []model.Airport{}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	result := []model.Airport{}
	for _, a := range l.airports {
		if matches(a, query) {
			result = append(result, a)
		}
	}
	return result
}

// GetByCode точное совпадение по IATA коду
func (l *Lookup) GetByCode(ctx context.Context, code string) (*model.Airport, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || !l.ensure(ctx) {
		return nil, false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	idx, ok := l.byCode[code]
	if !ok {
		return nil, false
	}
	a := l.airports[idx]
	return &a, true
}

// Len количество загруженных аэропортов
func (l *Lookup) Len(ctx context.Context) int {
	if !l.ensure(ctx) {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.airports)
}

func (l *Lookup) ensure(ctx context.Context) bool {
	l.mu.RLock()
	loaded := l.loaded
	l.mu.RUnlock()
	if loaded {
		return true
	}

	_, err, _ := l.group.Do("load", func() (interface{}, error) {
		l.mu.RLock()
		done := l.loaded
		l.mu.RUnlock()
		if done {
			return nil, nil
		}

		airports, err := l.source(ctx)
		if err != nil {
			return nil, err
		}
		if len(airports) == 0 {
			return nil, ErrEmptyDataset
		}

		byCode := make(map[string]int, len(airports))
		for i, a := range airports {
			if _, dup := byCode[a.IATACode]; !dup {
				byCode[a.IATACode] = i
			}
		}

		l.mu.Lock()
		l.airports = airports
		l.byCode = byCode
		l.loaded = true
		l.mu.Unlock()

		l.logger.Info("Airport dataset loaded", zap.Int("count", len(airports)))
		return nil, nil
	})
	if err != nil {
		l.logger.Warn("Failed to load airport dataset", zap.Error(err))
		return false
	}
	return true
}

func matches(a model.Airport, query string) bool {
	return strings.Contains(strings.ToLower(a.IATACode), query) ||
		strings.Contains(strings.ToLower(a.Name), query) ||
		strings.Contains(strings.ToLower(a.Municipality), query) ||
		strings.Contains(strings.ToLower(a.Country), query)
}
