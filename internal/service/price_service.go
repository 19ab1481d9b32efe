package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anass1h/Station-sub000/internal/apierror"
	"github.com/anass1h/Station-sub000/internal/config"
	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/model"
	"github.com/anass1h/Station-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PriceService interface {
	// ActivePrice returns the unit selling price effective now for the
	// (station, fuel type) pair, or an Invalid error when none is active.
	ActivePrice(ctx context.Context, stationID, fuelTypeID uuid.UUID, at time.Time) (decimal.Decimal, error)
	SetPrice(ctx context.Context, adminID uuid.UUID, req dto.SetPriceRequest) (*dto.PriceResponse, error)
	History(ctx context.Context, stationID, fuelTypeID uuid.UUID) ([]dto.PriceResponse, error)
}

type priceService struct {
	repo repository.PriceRepository
	rdb  *redis.Client
	cfg  *config.Config
}

func NewPriceService(repo repository.PriceRepository, rdb *redis.Client, cfg *config.Config) PriceService {
	return &priceService{repo: repo, rdb: rdb, cfg: cfg}
}

func (s *priceService) cacheKey(stationID, fuelTypeID uuid.UUID) string {
	return fmt.Sprintf("price:%s:%s", stationID, fuelTypeID)
}

// ActivePrice checks the Redis cache first; a miss falls through to the
// price-history table. The cache TTL is short so a price change propagates
// within a minute without any invalidation fan-out; SetPrice still deletes
// the key eagerly for the common case.
func (s *priceService) ActivePrice(ctx context.Context, stationID, fuelTypeID uuid.UUID, at time.Time) (decimal.Decimal, error) {
	key := s.cacheKey(stationID, fuelTypeID)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			if price, derr := decimal.NewFromString(cached); derr == nil {
				return price, nil
			}
		}
	}

	row, err := s.repo.FindActive(ctx, stationID, fuelTypeID, at)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, apierror.Invalid("no active price for fuel type %s at this station", fuelTypeID)
		}
		return decimal.Zero, err
	}

	if s.rdb != nil {
		ttl := time.Duration(s.cfg.PriceCacheTTLSeconds) * time.Second
		if err := s.rdb.Set(ctx, key, row.UnitPrice.StringFixed(2), ttl).Err(); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("price cache set failed")
		}
	}
	return row.UnitPrice, nil
}

// SetPrice closes the previous validity window and opens a new one in a
// single transaction, preserving the full price history.
func (s *priceService) SetPrice(ctx context.Context, adminID uuid.UUID, req dto.SetPriceRequest) (*dto.PriceResponse, error) {
	stationID, err := uuid.Parse(req.StationID)
	if err != nil {
		return nil, apierror.Invalid("invalid station_id: %s", req.StationID)
	}
	fuelTypeID, err := uuid.Parse(req.FuelTypeID)
	if err != nil {
		return nil, apierror.Invalid("invalid fuel_type_id: %s", req.FuelTypeID)
	}

	now := time.Now()
	price := model.FuelPrice{
		StationID:  stationID,
		FuelTypeID: fuelTypeID,
		UnitPrice:  req.UnitPrice,
		ValidFrom:  now,
		SetBy:      adminID,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CloseCurrentTx(tx, stationID, fuelTypeID, now); err != nil {
			return err
		}
		return s.repo.CreateTx(tx, &price)
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, s.cacheKey(stationID, fuelTypeID)).Err(); err != nil {
			log.Debug().Err(err).Msg("price cache invalidation failed")
		}
	}
	return priceToResponse(&price), nil
}

func (s *priceService) History(ctx context.Context, stationID, fuelTypeID uuid.UUID) ([]dto.PriceResponse, error) {
	rows, err := s.repo.History(ctx, stationID, fuelTypeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *priceToResponse(&rows[i]))
	}
	return out, nil
}

func priceToResponse(p *model.FuelPrice) *dto.PriceResponse {
	resp := &dto.PriceResponse{
		ID:         p.ID.String(),
		StationID:  p.StationID.String(),
		FuelTypeID: p.FuelTypeID.String(),
		UnitPrice:  p.UnitPrice,
		ValidFrom:  p.ValidFrom.Format(time.RFC3339),
	}
	if p.ValidTo != nil {
		t := p.ValidTo.Format(time.RFC3339)
		resp.ValidTo = &t
	}
	return resp
}
