package service

import (
	"log/slog"

	"instaforce.app/engine/internal/queue"
	"instaforce.app/engine/internal/store"
)

type Services struct {
	stores   *store.Stores
	producer queue.Producer
	logger   *slog.Logger
}

func NewServices(stores *store.Stores, producer queue.Producer, logger *slog.Logger) *Services {
	return &Services{
		stores:   stores,
		producer: producer,
		logger:   logger,
	}
}

func (s *Services) Runs() RunService {
	return NewRunService(s.stores.Runs(), s.producer, s.logger)
}
