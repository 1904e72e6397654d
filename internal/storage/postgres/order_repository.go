package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/cakeshop-checkout/internal/domain/errors"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

const orderColumns = `id, first_name, last_name, phone, email, county, pickup_station, payment_method,
       total::text, status, checkout_request_id, merchant_request_id, transaction_id,
       payment_initiated_at, created_at, updated_at`

const itemColumns = `id, order_id, product_id, product_name, size, icing, eggs, custom_message,
       unit_price::text, quantity, total_price::text`

// fulfillableStatuses may move to fulfilled; pending cash orders are handled separately.
var fulfillableStatuses = []string{
	string(model.OrderStatusPaid),
	string(model.OrderStatusFailed),
	string(model.OrderStatusCancelled),
	string(model.OrderStatusTimeout),
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	const insertOrder = `INSERT INTO orders (first_name, last_name, phone, email, county, pickup_station,
                         payment_method, total, status)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9)
                         RETURNING id, created_at, updated_at`
	const insertItem = `INSERT INTO order_items (order_id, product_id, product_name, size, icing, eggs,
                        custom_message, unit_price, quantity, total_price)
                        VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10::numeric)
                        RETURNING id`

	created := *order
	created.Items = make([]model.OrderItem, len(order.Items))
	copy(created.Items, order.Items)

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		c := created.Customer
		if err := tx.QueryRow(ctx, insertOrder,
			c.FirstName, c.LastName, c.Phone, c.Email, c.County, c.PickupStation,
			string(created.PaymentMethod), created.Total.StringFixed(2), string(created.Status),
		).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range created.Items {
			item := &created.Items[i]
			item.OrderID = created.ID
			if err := tx.QueryRow(ctx, insertItem,
				created.ID, item.ProductID, item.ProductName, item.Size, item.Icing, item.Eggs,
				item.CustomMessage, item.UnitPrice.StringFixed(2), item.Quantity, item.TotalPrice.StringFixed(2),
			).Scan(&item.ID); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.storage.logger.Debug("order persisted",
		slog.Int64("order_id", created.ID),
		slog.Int("items", len(created.Items)),
	)
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return r.getOne(ctx, query, id)
}

func (r *orderRepository) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*model.Order, error) {
	if checkoutRequestID == "" {
		return nil, domainErrors.ErrNotFound
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE checkout_request_id=$1 ORDER BY id DESC LIMIT 1`
	return r.getOne(ctx, query, checkoutRequestID)
}

func (r *orderRepository) FindByMerchantRequestID(ctx context.Context, merchantRequestID string) (*model.Order, error) {
	if merchantRequestID == "" {
		return nil, domainErrors.ErrNotFound
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE merchant_request_id=$1 ORDER BY id DESC LIMIT 1`
	return r.getOne(ctx, query, merchantRequestID)
}

func (r *orderRepository) getOne(ctx context.Context, query string, arg any) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Items(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) MarkPaymentInitiated(ctx context.Context, id int64, at time.Time) (bool, error) {
	const query = `UPDATE orders SET payment_initiated_at=$1, updated_at=NOW()
                   WHERE id=$2 AND status=$3 AND payment_initiated_at IS NULL`
	tag, err := r.storage.pool.Exec(ctx, query, at, id, string(model.OrderStatusPending))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepository) AttachCheckoutRequest(ctx context.Context, id int64, checkoutRequestID, merchantRequestID string) error {
	const query = `UPDATE orders SET checkout_request_id=$1, merchant_request_id=$2, updated_at=NOW() WHERE id=$3`
	tag, err := r.storage.pool.Exec(ctx, query, checkoutRequestID, merchantRequestID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) TransitionFromPending(ctx context.Context, id int64, to model.OrderStatus, transactionID string) (bool, error) {
	if !to.Terminal() {
		return false, fmt.Errorf("pending to %s: %w", to, domainErrors.ErrInvalidTransition)
	}
	const query = `UPDATE orders SET status=$1, transaction_id=COALESCE(NULLIF($2, ''), transaction_id), updated_at=NOW()
                   WHERE id=$3 AND status=$4`
	tag, err := r.storage.pool.Exec(ctx, query, string(to), transactionID, id, string(model.OrderStatusPending))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepository) ExpireIfDue(ctx context.Context, id int64, initiatedBefore time.Time) (bool, error) {
	const query = `UPDATE orders SET status=$1, updated_at=NOW()
                   WHERE id=$2 AND status=$3 AND payment_method=$4
                     AND payment_initiated_at IS NOT NULL AND payment_initiated_at < $5`
	tag, err := r.storage.pool.Exec(ctx, query,
		string(model.OrderStatusTimeout), id, string(model.OrderStatusPending),
		string(model.PaymentMethodMobileMoney), initiatedBefore,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepository) ListExpiredCandidates(ctx context.Context, initiatedBefore time.Time, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
              FROM orders
              WHERE status=$1 AND payment_method=$2
                AND payment_initiated_at IS NOT NULL AND payment_initiated_at < $3
              ORDER BY payment_initiated_at
              LIMIT $4`
	return r.list(ctx, query,
		string(model.OrderStatusPending), string(model.PaymentMethodMobileMoney), initiatedBefore, limit,
	)
}

func (r *orderRepository) MarkFulfilled(ctx context.Context, id int64) (bool, error) {
	const query = `UPDATE orders SET status=$1, updated_at=NOW()
                   WHERE id=$2 AND (status = ANY($3) OR (status=$4 AND payment_method=$5))`
	tag, err := r.storage.pool.Exec(ctx, query,
		string(model.OrderStatusFulfilled), id, fulfillableStatuses,
		string(model.OrderStatusPending), string(model.PaymentMethodCashOnDelivery),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.PaymentMethod != "" {
		args = append(args, string(filter.PaymentMethod))
		conditions = append(conditions, fmt.Sprintf("payment_method=$%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + orderColumns + ` FROM orders`)
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	return r.list(ctx, b.String(), args...)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o             model.Order
		paymentMethod string
		total         string
		status        string
	)
	err := row.Scan(
		&o.ID, &o.Customer.FirstName, &o.Customer.LastName, &o.Customer.Phone, &o.Customer.Email,
		&o.Customer.County, &o.Customer.PickupStation, &paymentMethod,
		&total, &status, &o.CheckoutRequestID, &o.MerchantRequestID, &o.TransactionID,
		&o.PaymentInitiatedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("order %d total: %w", o.ID, err)
	}
	o.PaymentMethod = model.PaymentMethod(paymentMethod)
	o.Status = model.OrderStatus(status)
	return &o, nil
}

func scanItem(row pgx.Row) (*model.OrderItem, error) {
	var (
		item       model.OrderItem
		unitPrice  string
		totalPrice string
	)
	err := row.Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Size, &item.Icing, &item.Eggs,
		&item.CustomMessage, &unitPrice, &item.Quantity, &totalPrice,
	)
	if err != nil {
		return nil, err
	}

	if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return nil, fmt.Errorf("item %d unit price: %w", item.ID, err)
	}
	if item.TotalPrice, err = decimal.NewFromString(totalPrice); err != nil {
		return nil, fmt.Errorf("item %d total price: %w", item.ID, err)
	}
	return &item, nil
}
