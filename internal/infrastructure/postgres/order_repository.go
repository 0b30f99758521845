package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/comercia-api/internal/domain"
	"github.com/jhoicas/comercia-api/internal/domain/entity"
	"github.com/jhoicas/comercia-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, order_number, customer_name, shipping_address_id, status,
	sub_total, discount_usd, total_amount, total_gain_usd, notes, created_by, created_at, updated_at`

const orderItemColumns = `id, order_id, product_variant_id, sku, product_name,
	quantity, cost_usd_at_purchase, price_usd_at_purchase, sub_total, gain_usd`

// Create persiste cabecera e ítems. El consecutivo debe venir ya asignado
// (NextOrderNumber dentro de la misma tx).
func (r *OrderRepo) Create(order *entity.Order) error {
	ctx := context.Background()
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.OrderNumber, order.CustomerName,
		nullIfEmpty(order.ShippingAddressID), order.Status.String(),
		order.SubTotal, order.DiscountUSD, order.TotalAmount, order.TotalGainUSD,
		nullIfEmpty(order.Notes), nullIfEmpty(order.CreatedBy),
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create order: %w", err)
	}
	return r.insertItems(ctx, order.ID, order.Items)
}

func (r *OrderRepo) insertItems(ctx context.Context, orderID string, items []*entity.OrderItem) error {
	query := `
		INSERT INTO order_items (` + orderItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.OrderID = orderID
		_, err := r.q.Exec(ctx, query,
			it.ID, it.OrderID, it.ProductVariantID, it.SKU, it.ProductName,
			it.Quantity, it.CostUSDAtPurchase, it.PriceUSDAtPurchase,
			it.SubTotal, it.GainUSD,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var shippingAddressID, notes, createdBy *string
	var status string
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &shippingAddressID, &status,
		&o.SubTotal, &o.DiscountUSD, &o.TotalAmount, &o.TotalGainUSD,
		&notes, &createdBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	if shippingAddressID != nil {
		o.ShippingAddressID = *shippingAddressID
	}
	if notes != nil {
		o.Notes = *notes
	}
	if createdBy != nil {
		o.CreatedBy = *createdBy
	}
	return &o, nil
}

// GetByID devuelve la orden con sus ítems; nil si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	ctx := context.Background()
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	items, err := r.itemsByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepo) itemsByOrder(ctx context.Context, orderID string) ([]*entity.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY sku`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var items []*entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductVariantID, &it.SKU, &it.ProductName,
			&it.Quantity, &it.CostUSDAtPurchase, &it.PriceUSDAtPurchase,
			&it.SubTotal, &it.GainUSD,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// Update actualiza estado, totales, notas y updated_at de la cabecera.
func (r *OrderRepo) Update(order *entity.Order) error {
	query := `
		UPDATE orders
		SET status = $2, sub_total = $3, discount_usd = $4, total_amount = $5,
		    total_gain_usd = $6, notes = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		order.ID, order.Status.String(),
		order.SubTotal, order.DiscountUSD, order.TotalAmount, order.TotalGainUSD,
		nullIfEmpty(order.Notes), order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems reemplaza las líneas de la orden por el conjunto dado.
func (r *OrderRepo) ReplaceItems(orderID string, items []*entity.OrderItem) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	return r.insertItems(ctx, orderID, items)
}

// NextOrderNumber reserva el siguiente consecutivo desde la secuencia.
func (r *OrderRepo) NextOrderNumber() (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(), `SELECT nextval('order_number_seq')`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return n, nil
}

// List lista órdenes con sus ítems, más recientes primero.
func (r *OrderRepo) List(limit, offset int) ([]*entity.Order, error) {
	ctx := context.Background()
	query := `SELECT ` + orderColumns + ` FROM orders
		ORDER BY created_at DESC, order_number DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var orders []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range orders {
		items, err := r.itemsByOrder(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}
	return orders, nil
}
