package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"commerce-service/database"
	"commerce-service/models"
	"commerce-service/repository"

	"github.com/sirupsen/logrus"
)

var (
	maria = &models.Identity{UserID: 1, Subject: "maria@gmail.com", Roles: []models.Role{models.RoleClient}}
	alex  = &models.Identity{UserID: 2, Subject: "alex@gmail.com", Roles: []models.Role{models.RoleClient, models.RoleAdmin}}
	ana   = &models.Identity{UserID: 3, Subject: "ana@gmail.com", Roles: []models.Role{models.RoleAdmin}}
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newStore() *repository.Store {
	return repository.NewMemoryStore(database.DefaultFixtures())
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, e models.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Events() []models.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.OrderEvent(nil), p.events...)
}

var errBrokerDown = errors.New("broker down")
