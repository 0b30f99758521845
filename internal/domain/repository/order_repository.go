package repository

import "github.com/jhoicas/comercia-api/internal/domain/entity"

// OrderRepository define el puerto de persistencia para órdenes.
type OrderRepository interface {
	// Create persiste cabecera e ítems.
	Create(order *entity.Order) error
	// GetByID devuelve la orden con sus ítems; nil si no existe.
	GetByID(id string) (*entity.Order, error)
	// Update actualiza estado, totales, notas y updated_at de la cabecera.
	Update(order *entity.Order) error
	// ReplaceItems reemplaza las líneas de la orden por el conjunto dado.
	ReplaceItems(orderID string, items []*entity.OrderItem) error
	// NextOrderNumber reserva el siguiente consecutivo dentro de la tx vigente.
	NextOrderNumber() (int64, error)
	List(limit, offset int) ([]*entity.Order, error)
}
