package order

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"storefront/internal/entities"
	"storefront/internal/repository"
	"storefront/internal/service/order"
)

var qb sq.StatementBuilderType = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Repository struct {
	querier Querier
}

func New(querier Querier) *Repository {
	return &Repository{
		querier: querier,
	}
}

// NextOrderNumber атомарно выдает следующий номер заказа в рамках магазина.
func (r *Repository) NextOrderNumber(ctx context.Context, storeID string) (int64, error) {
	query := `
		INSERT INTO store_order_counters (store_id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (store_id) DO UPDATE
		SET last_number = store_order_counters.last_number + 1
		RETURNING last_number
	`

	var number int64
	err := r.querier.QueryRow(ctx, query, storeID).Scan(&number)
	if err != nil {
		return 0, fmt.Errorf("unexpected order repository next number error: %w", err)
	}
	return number, nil
}

func (r *Repository) Create(ctx context.Context, orderEntity entities.Order) (*entities.Order, error) {
	orderModel, err := FromDomain(&orderEntity)
	if err != nil {
		return nil, fmt.Errorf("unexpected order repository create error: %w", err)
	}

	query := `
		INSERT INTO orders (id, store_id, order_number, items, total, customer_name, phone, status, estimated_time, payment_status)
		VALUES ($1, $2, $3, $4::text::jsonb, $5::text::numeric, $6, $7, $8, $9, $10)
		RETURNING ` + orderColumns

	created, err := scanOrder(r.querier.QueryRow(
		ctx,
		query,
		orderModel.ID,
		orderModel.StoreID,
		orderModel.OrderNumber,
		string(orderModel.Items),
		orderModel.Total,
		orderModel.CustomerName,
		orderModel.Phone,
		orderModel.Status,
		orderModel.EstimatedTime,
		orderModel.PaymentStatus,
	))
	if err != nil {
		if repository.IsPgErrorWithCode(err, repository.PgErrUniqueViolation) {
			return nil, order.ErrDuplicate
		}
		return nil, fmt.Errorf("unexpected order repository create error: %w", err)
	}

	return created, nil
}

// UpdateStatusIfCurrent меняет статус только если в базе все еще expected.
// updated_at строго растет даже при совпадении часов.
func (r *Repository) UpdateStatusIfCurrent(
	ctx context.Context,
	orderID string,
	expected entities.OrderStatusType,
	next entities.OrderStatusType,
	transition entities.OrderTransition,
) (*entities.Order, error) {
	builder := qb.
		Update("orders").
		Set("status", next.String()).
		Set("updated_at", sq.Expr("GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')"))

	if transition.EstimatedTime != nil {
		builder = builder.Set("estimated_time", *transition.EstimatedTime)
	}

	builder = builder.
		Where(sq.Eq{"id": orderID, "status": expected.String()}).
		Suffix("RETURNING " + orderColumns)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected order repository update status error: %w", err)
	}

	updated, err := scanOrder(r.querier.QueryRow(ctx, query, args...))
	if err == nil {
		return updated, nil
	}
	if !repository.IsNoRows(err) {
		return nil, fmt.Errorf("unexpected order repository update status error: %w", err)
	}

	// строка не обновилась: заказа нет или статус уже сменили
	var current string
	err = r.querier.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&current)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("unexpected order repository update status error: %w", err)
	}

	return nil, fmt.Errorf("%w: expected %s, current %s", order.ErrConflict, expected, current)
}

func (r *Repository) GetByID(ctx context.Context, orderID string) (*entities.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	found, err := scanOrder(r.querier.QueryRow(ctx, query, orderID))
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("unexpected order repository getbyid error: %w", err)
	}

	return found, nil
}

// ListByStore заказы магазина, новые первыми; пустой statuses - все статусы.
func (r *Repository) ListByStore(ctx context.Context, storeID string, statuses []entities.OrderStatusType) ([]entities.Order, error) {
	builder := qb.
		Select(orderColumns).
		From("orders").
		Where(sq.Eq{"store_id": storeID}).
		OrderBy("created_at DESC", "id")

	if len(statuses) > 0 {
		builder = builder.Where(sq.Eq{"status": statusesToDB(statuses)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected order repository list error: %w", err)
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unexpected order repository list error: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.Order, 0)
	for rows.Next() {
		found, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("unexpected order repository list scan error: %w", err)
		}
		orders = append(orders, *found)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected order repository list rows error: %w", err)
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var orderModel OrderDB
	err := row.Scan(
		&orderModel.ID,
		&orderModel.StoreID,
		&orderModel.OrderNumber,
		&orderModel.Items,
		&orderModel.Total,
		&orderModel.CustomerName,
		&orderModel.Phone,
		&orderModel.Status,
		&orderModel.EstimatedTime,
		&orderModel.PaymentStatus,
		&orderModel.CreatedAt,
		&orderModel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return ToDomain(&orderModel)
}
