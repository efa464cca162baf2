package notification

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

// Record пишет результат попытки; повторная попытка по тому же ребру увеличивает attempts.
func (r *Repository) Record(ctx context.Context, delivery entities.NotificationDelivery) (*entities.NotificationDelivery, error) {
	deliveryModel := FromDomain(&delivery)

	query := `
		INSERT INTO notification_deliveries (order_id, store_id, template_kind, status, attempts, last_error)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (order_id, template_kind) DO UPDATE
		SET status = EXCLUDED.status,
			attempts = notification_deliveries.attempts + 1,
			last_error = EXCLUDED.last_error,
			updated_at = NOW()
		RETURNING ` + deliveryColumns

	recorded, err := scanDelivery(r.querier.QueryRow(
		ctx,
		query,
		deliveryModel.OrderID,
		deliveryModel.StoreID,
		deliveryModel.TemplateKind,
		deliveryModel.Status,
		deliveryModel.LastError,
	))
	if err != nil {
		if repository.IsPgErrorWithCode(err, repository.PgErrForeignKeyViolation) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("unexpected notification repository record error: %w", err)
	}

	return recorded, nil
}

// ListFailed неудачные доставки, у которых еще остались попытки, самые старые первыми.
func (r *Repository) ListFailed(ctx context.Context, maxAttempts int, limit uint64) ([]entities.NotificationDelivery, error) {
	builder := qb.
		Select(deliveryColumns).
		From("notification_deliveries").
		Where(sq.Eq{"status": entities.DeliveryFailed.String()}).
		Where(sq.Lt{"attempts": maxAttempts}).
		OrderBy("updated_at", "order_id").
		Limit(limit)

	return r.list(ctx, builder)
}

func (r *Repository) ListFailedByStore(ctx context.Context, storeID string) ([]entities.NotificationDelivery, error) {
	builder := qb.
		Select(deliveryColumns).
		From("notification_deliveries").
		Where(sq.Eq{"status": entities.DeliveryFailed.String(), "store_id": storeID}).
		OrderBy("updated_at DESC", "order_id")

	return r.list(ctx, builder)
}

func (r *Repository) list(ctx context.Context, builder sq.SelectBuilder) ([]entities.NotificationDelivery, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected notification repository list error: %w", err)
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unexpected notification repository list error: %w", err)
	}
	defer rows.Close()

	deliveries := make([]entities.NotificationDelivery, 0)
	for rows.Next() {
		found, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("unexpected notification repository list scan error: %w", err)
		}
		deliveries = append(deliveries, *found)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected notification repository list rows error: %w", err)
	}

	return deliveries, nil
}

func scanDelivery(row pgx.Row) (*entities.NotificationDelivery, error) {
	var deliveryModel DeliveryDB
	err := row.Scan(
		&deliveryModel.OrderID,
		&deliveryModel.StoreID,
		&deliveryModel.TemplateKind,
		&deliveryModel.Status,
		&deliveryModel.Attempts,
		&deliveryModel.LastError,
		&deliveryModel.CreatedAt,
		&deliveryModel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ToDomain(&deliveryModel), nil
}
