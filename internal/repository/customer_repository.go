package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const customerColumns = `id, customer_number, customer_type, category, customer_since,
	salutation, first_name, last_name, email, phone, mobile,
	language, nationality, gender, date_of_birth,
	currency, payment_type, output_medium,
	is_invisible, is_blocked, is_dunning_blocked, cash_payment_only, is_deceased,
	created_at, updated_at`

type CustomerRepository struct {
	*base.Repository
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт клиента. Номер клиента должен быть заполнен заранее
func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	query := `
		INSERT INTO customers (
			customer_number, customer_type, category, customer_since,
			salutation, first_name, last_name, email, phone, mobile,
			language, nationality, gender, date_of_birth,
			currency, payment_type, output_medium,
			is_invisible, is_blocked, is_dunning_blocked, cash_payment_only, is_deceased
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		c.CustomerNumber, c.Type, c.Category, c.CustomerSince,
		c.Salutation, c.FirstName, c.LastName, c.Email, c.Phone, c.Mobile,
		c.Language, c.Nationality, c.Gender, c.DateOfBirth,
		c.Currency, c.PaymentType, c.OutputMedium,
		c.IsInvisible, c.IsBlocked, c.IsDunningBlocked, c.CashPaymentOnly, c.IsDeceased,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	return nil
}

// GetByID получает клиента по ID
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by id: %w", err)
	}

	return c, nil
}

// Search ищет клиентов по имени, фамилии, email и номеру. Пустой запрос - все клиенты
func (r *CustomerRepository) Search(ctx context.Context, query string, limit uint64) ([]*model.Customer, error) {
	b := base.Psql.
		Select(customerColumns).
		From("customers").
		OrderBy("created_at DESC")

	if query != "" {
		pattern := "%" + query + "%"
		b = b.Where(sq.Or{
			sq.ILike{"first_name": pattern},
			sq.ILike{"last_name": pattern},
			sq.ILike{"email": pattern},
			sq.ILike{"customer_number": pattern},
		})
	}
	if limit > 0 {
		b = b.Limit(limit)
	}

	rows, err := r.QueryBuilder(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()

	var customers []*model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	return customers, rows.Err()
}

// LatestNumber номер последнего созданного клиента. Пустая строка, если клиентов нет
func (r *CustomerRepository) LatestNumber(ctx context.Context) (string, error) {
	query := `SELECT customer_number FROM customers ORDER BY created_at DESC LIMIT 1`

	var number string
	err := r.QueryRow(ctx, query).Scan(&number)
	if err != nil {
		if base.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get latest customer number: %w", err)
	}

	return number, nil
}

// Update применяет частичное обновление. Возвращает обновлённого клиента или nil, если его нет
func (r *CustomerRepository) Update(ctx context.Context, id string, p model.CustomerPatch) (*model.Customer, error) {
	set := map[string]interface{}{}
	put := func(column string, v interface{}, ok bool) {
		if ok {
			set[column] = v
		}
	}
	put("customer_type", deref(p.Type), p.Type != nil)
	put("category", deref(p.Category), p.Category != nil)
	put("salutation", deref(p.Salutation), p.Salutation != nil)
	put("first_name", deref(p.FirstName), p.FirstName != nil)
	put("last_name", deref(p.LastName), p.LastName != nil)
	put("email", deref(p.Email), p.Email != nil)
	put("phone", deref(p.Phone), p.Phone != nil)
	put("mobile", deref(p.Mobile), p.Mobile != nil)
	put("language", deref(p.Language), p.Language != nil)
	put("nationality", deref(p.Nationality), p.Nationality != nil)
	put("gender", deref(p.Gender), p.Gender != nil)
	put("date_of_birth", deref(p.DateOfBirth), p.DateOfBirth != nil)
	put("currency", deref(p.Currency), p.Currency != nil)
	put("payment_type", deref(p.PaymentType), p.PaymentType != nil)
	put("output_medium", deref(p.OutputMedium), p.OutputMedium != nil)
	put("is_invisible", deref(p.IsInvisible), p.IsInvisible != nil)
	put("is_blocked", deref(p.IsBlocked), p.IsBlocked != nil)
	put("is_dunning_blocked", deref(p.IsDunningBlocked), p.IsDunningBlocked != nil)
	put("cash_payment_only", deref(p.CashPaymentOnly), p.CashPaymentOnly != nil)
	put("is_deceased", deref(p.IsDeceased), p.IsDeceased != nil)

	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	query, args, err := base.Psql.
		Update("customers").
		SetMap(set).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + customerColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build customer update: %w", err)
	}

	c, err := scanCustomer(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}

	return c, nil
}

// Delete удаляет клиента. Бронирования остаются без клиента
func (r *CustomerRepository) Delete(ctx context.Context, id string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete customer: %w", err)
	}
	return affected > 0, nil
}

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(
		&c.ID, &c.CustomerNumber, &c.Type, &c.Category, &c.CustomerSince,
		&c.Salutation, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Mobile,
		&c.Language, &c.Nationality, &c.Gender, &c.DateOfBirth,
		&c.Currency, &c.PaymentType, &c.OutputMedium,
		&c.IsInvisible, &c.IsBlocked, &c.IsDunningBlocked, &c.CashPaymentOnly, &c.IsDeceased,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
