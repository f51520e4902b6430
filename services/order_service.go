package services

import (
	"context"
	"time"

	"commerce-service/auth"
	"commerce-service/models"
	"commerce-service/repository"

	"github.com/sirupsen/logrus"
)

// EventPublisher receives order lifecycle events after they are committed.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}

type nopPublisher struct{}

func (nopPublisher) PublishOrderEvent(context.Context, models.OrderEvent) error { return nil }

type OrderService struct {
	orders    repository.OrderRepository
	users     repository.UserRepository
	publisher EventPublisher
	log       *logrus.Logger
	now       func() time.Time
}

// NewOrderService accepts a nil publisher, in which case events are dropped.
func NewOrderService(store *repository.Store, publisher EventPublisher, logger *logrus.Logger) *OrderService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &OrderService{
		orders:    store.Orders,
		users:     store.Users,
		publisher: publisher,
		log:       logger,
		now:       time.Now,
	}
}

func (s *OrderService) FindByID(ctx context.Context, id *models.Identity, orderID int64) (*models.Order, error) {
	if id == nil {
		return nil, auth.Authorize(nil, auth.ActionReadOrder, auth.Resource{})
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(id, auth.ActionReadOrder, auth.Owned(o.Client.ID)); err != nil {
		s.log.Warnf("Orders: user %d denied access to order %d owned by user %d", id.UserID, orderID, o.Client.ID)
		return nil, err
	}
	return o, nil
}

// Insert places an order for the calling client. Either every line resolves
// and the order is stored, or nothing is.
func (s *OrderService) Insert(ctx context.Context, id *models.Identity, lines []models.OrderLine) (*models.Order, error) {
	var ownerID int64
	if id != nil {
		ownerID = id.UserID
	}
	if err := auth.Authorize(id, auth.ActionCreateOrder, auth.Owned(ownerID)); err != nil {
		return nil, err
	}
	if err := models.ValidateOrderLines(lines); err != nil {
		return nil, err
	}

	client, err := s.users.FindByID(ctx, id.UserID)
	if err != nil {
		s.log.Errorf("Orders: client %d of a valid token is unknown: %v", id.UserID, err)
		return nil, err
	}

	productIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		productIDs = append(productIDs, line.ProductID)
	}
	o, err := s.orders.Create(ctx, uniqueIDs(productIDs), func(products map[int64]models.Product) (*models.Order, error) {
		return models.NewOrder(client, lines, products, s.now())
	})
	if err != nil {
		s.log.Warnf("Orders: creation for user %d failed: %v", id.UserID, err)
		return nil, err
	}

	s.log.Infof("Orders: order %d created for user %d, total %.2f", o.ID, o.Client.ID, o.Total())
	s.publish(ctx, o, models.EventOrderCreated)
	return o, nil
}

// Transition applies t on behalf of an administrator.
func (s *OrderService) Transition(ctx context.Context, id *models.Identity, orderID int64, t models.OrderTransition) (*models.Order, error) {
	if err := auth.Authorize(id, auth.ActionUpdateOrderStatus, auth.Resource{}); err != nil {
		return nil, err
	}
	return s.ApplyTransition(ctx, orderID, t)
}

// ApplyTransition is the entry point for the payment and fulfillment
// collaborators. The engine never advances an order on its own.
func (s *OrderService) ApplyTransition(ctx context.Context, orderID int64, t models.OrderTransition) (*models.Order, error) {
	o, err := s.orders.UpdateStatus(ctx, orderID, func(o *models.Order) error {
		return o.Apply(t, s.now())
	})
	if err != nil {
		s.log.Warnf("Orders: transition %s of order %d failed: %v", t, orderID, err)
		return nil, err
	}
	s.log.Infof("Orders: order %d is now %s", o.ID, o.Status)
	s.publish(ctx, o, models.EventOrderStatusUpdated)
	return o, nil
}

func (s *OrderService) publish(ctx context.Context, o *models.Order, eventType string) {
	if err := s.publisher.PublishOrderEvent(ctx, models.NewOrderEvent(o, eventType, s.now())); err != nil {
		s.log.Errorf("Orders: failed to publish %s event for order %d: %v", eventType, o.ID, err)
	}
}
