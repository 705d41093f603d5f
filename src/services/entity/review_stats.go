package entity

import (
	"context"
	"errors"
	"fmt"
	"math"

	"tasksmith/src/domain"
	"tasksmith/src/domain/entities"
	"tasksmith/src/repositories"

	"go.uber.org/zap"
)

// HandleEvent aplica os efeitos colaterais de uma mutação. Hoje só reviews
// têm efeito: recalculam a nota e a contagem do serviço avaliado.
func (s *EntityService) HandleEvent(ctx context.Context, event domain.EntityEvent) error {
	if event.EntityType != entities.ReviewType {
		return nil
	}

	entity := entities.Entity{ID: event.EntityID, Type: event.EntityType, Data: event.Data}
	review, err := entities.Decode[entities.Review](entity)
	if err != nil {
		return fmt.Errorf("EntityService.HandleEvent - %w", err)
	}

	if review.ServiceID == 0 {
		return nil
	}

	_, err = s.RefreshServiceRating(ctx, review.ServiceID)
	return err
}

// RefreshServiceRating grava em Service.providerRating a média das notas
// (uma casa decimal) e em reviewCount o total de reviews do serviço. Devolve
// nil se o serviço não existe mais.
func (s *EntityService) RefreshServiceRating(ctx context.Context, serviceID int64) (*entities.Entity, error) {
	reviews := s.stores.For(repositories.RepositoryOptions{EntityType: entities.ReviewType})
	services := s.stores.For(repositories.RepositoryOptions{EntityType: entities.ServiceType})

	found, err := reviews.FindWhere(ctx, map[string]any{"serviceId": serviceID})
	if err != nil {
		return nil, fmt.Errorf("EntityService.RefreshServiceRating - failed to load reviews: %w", err)
	}

	total := 0
	for _, entity := range found {
		review, err := entities.Decode[entities.Review](entity)
		if err != nil {
			s.logger.Warn("Skipping malformed review", zap.Int64("review_id", entity.ID), zap.Error(err))
			continue
		}
		total += review.Rating
	}

	rating := 0.0
	if len(found) > 0 {
		rating = math.Round(float64(total)/float64(len(found))*10) / 10
	}

	updated, err := services.Update(ctx, serviceID, map[string]any{
		"providerRating": rating,
		"reviewCount":    len(found),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			s.logger.Info("Service of review no longer exists", zap.Int64("service_id", serviceID))
			return nil, nil
		}
		return nil, fmt.Errorf("EntityService.RefreshServiceRating - failed to update service %d: %w", serviceID, err)
	}

	s.logger.Debug("Service rating refreshed",
		zap.Int64("service_id", serviceID),
		zap.Float64("rating", rating),
		zap.Int("review_count", len(found)))

	return updated, nil
}
