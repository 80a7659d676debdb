package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"go.uber.org/zap"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	Search(ctx context.Context, query string, limit uint64) ([]*model.Customer, error)
	LatestNumber(ctx context.Context) (string, error)
	Update(ctx context.Context, id string, p model.CustomerPatch) (*model.Customer, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type CustomerService struct {
	repo   CustomerRepository
	tx     base.Transactor
	logger *zap.Logger
	now    func() time.Time
}

func NewCustomerService(repo CustomerRepository, tx base.Transactor, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		repo:   repo,
		tx:     tx,
		logger: logger,
		now:    time.Now,
	}
}

// NextCustomerNumber номер вида C{YY}{MM}{NNNN}. Последовательность продолжается
// от последнего созданного клиента и не сбрасывается при смене месяца
func NextCustomerNumber(latest string, now time.Time) string {
	sequence := 1
	if len(latest) >= 4 {
		if n, err := strconv.Atoi(latest[len(latest)-4:]); err == nil {
			sequence = n + 1
		}
	}
	return fmt.Sprintf("C%02d%02d%04d", now.Year()%100, int(now.Month()), sequence)
}

// Create создаёт клиента с новым номером и значениями по умолчанию
func (s *CustomerService) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	const action = "create customer"

	missing := requireFields(
		[2]string{"first_name", c.FirstName},
		[2]string{"last_name", c.LastName},
		[2]string{"email", c.Email},
		[2]string{"phone", c.Phone},
	)
	if len(missing) > 0 {
		return nil, validationError(action, "missing required fields", missing...)
	}

	now := s.now()
	applyCustomerDefaults(c, now)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		latest, err := s.repo.LatestNumber(ctx)
		if err != nil {
			return err
		}
		c.CustomerNumber = NextCustomerNumber(latest, now)
		return s.repo.Create(ctx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	s.logger.Info("Customer created",
		zap.String("customer_id", c.ID),
		zap.String("customer_number", c.CustomerNumber),
	)

	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (*model.Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if c == nil {
		return nil, notFound("customer", id)
	}
	return c, nil
}

// Search поиск по имени, фамилии, email и номеру клиента
func (s *CustomerService) Search(ctx context.Context, query string, limit uint64) ([]*model.Customer, error) {
	customers, err := s.repo.Search(ctx, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return customers, nil
}

// Update частичное обновление. Обязательные поля нельзя сделать пустыми
func (s *CustomerService) Update(ctx context.Context, id string, p model.CustomerPatch) (*model.Customer, error) {
	const action = "update customer"

	var emptied []string
	for name, v := range map[string]*string{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"email":      p.Email,
		"phone":      p.Phone,
	} {
		if v != nil && strings.TrimSpace(*v) == "" {
			emptied = append(emptied, name)
		}
	}
	if len(emptied) > 0 {
		sort.Strings(emptied)
		return nil, validationError(action, "required fields cannot be empty", emptied...)
	}
	if p.Type != nil {
		t := model.CustomerType(strings.ToLower(string(*p.Type)))
		p.Type = &t
	}

	c, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if c == nil {
		return nil, notFound("customer", id)
	}
	return c, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if !ok {
		return notFound("customer", id)
	}
	s.logger.Info("Customer deleted", zap.String("customer_id", id))
	return nil
}

func applyCustomerDefaults(c *model.Customer, now time.Time) {
	c.Type = model.CustomerType(strings.ToLower(string(c.Type)))
	if c.Type == "" {
		c.Type = model.CustomerTypePrivate
	}
	setDefault(&c.Category, "New Customer")
	setDefault(&c.CustomerSince, now.Format(model.DateLayout))
	setDefault(&c.Language, "en")
	setDefault(&c.Nationality, "DE")
	setDefault(&c.Currency, "EUR")
	setDefault(&c.PaymentType, "Invoice")
	setDefault(&c.OutputMedium, "Email")
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
