package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/internal/domains/reservation/model"
	"lodge/internal/domains/reservation/model/dto"
	"lodge/internal/domains/reservation/repository"
	roomModel "lodge/internal/domains/room/model"
	roomDto "lodge/internal/domains/room/model/dto"
	roomRepository "lodge/internal/domains/room/repository"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/clock"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	"lodge/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetReservation    = "reservation:get"
	cacheGetAllReservation = "reservation:gets"
	cacheCountReservation  = "reservation:count"
	cacheAvailability      = constant.CacheKeyAvailability
)

type Reservation interface {
	SearchAvailability(ctx context.Context, checkIn, checkOut string) (dto.SearchAvailabilityResponse, error)
	Create(ctx context.Context, req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	Get(ctx context.Context, id string) (dto.ReservationResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetReservationsResponse, error)
	GetMine(ctx context.Context, req gDto.QueryParams) (dto.GetReservationsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Cancel(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, req dto.SetStatusRequest) error
}

type serviceImpl struct {
	repo     repository.Reservation
	roomRepo roomRepository.Room
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
	clock    clock.Clock
}

func New(repo repository.Reservation, roomRepo roomRepository.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, clock clock.Clock) Reservation {
	return &serviceImpl{
		repo:     repo,
		roomRepo: roomRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
		clock:    clock,
	}
}

// SearchAvailability lists rooms free for the whole half-open range
// [checkIn, checkOut). A missing or malformed pair, an inverted range, or a
// past check-in yields an empty result, never an error, so the search
// surface stays fail-safe.
func (s *serviceImpl) SearchAvailability(ctx context.Context, checkIn, checkOut string) (res dto.SearchAvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SearchAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)

	res.Rooms = []roomDto.RoomResponse{}

	in, errIn := timezone.Parse(constant.DateOnlyFormat, checkIn)
	out, errOut := timezone.Parse(constant.DateOnlyFormat, checkOut)

	if errIn != nil || errOut != nil || !out.After(in) || in.Before(s.clock.Today()) {
		log.Warn().Str("check_in", checkIn).Str("check_out", checkOut).Msg("availability search with unusable date range")

		return res, nil
	}

	res.CheckIn = checkIn
	res.CheckOut = checkOut

	cacheKey := shared.BuildCacheKey(cacheAvailability, checkIn, checkOut)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for availability")

		return res, nil
	}

	occupied, err := s.repo.OccupiedRoomIDs(ctx, in, out)
	if err != nil {
		log.Error().Err(err).Msg("failed to get occupied rooms")

		return res, fmt.Errorf("failed to get occupied rooms: %w", err)
	}

	rooms, err := s.roomRepo.GetAll(ctx, gDto.QueryParams{}, filterAvailableRooms())
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	occupiedSet := make(map[string]struct{}, len(occupied))
	for _, id := range occupied {
		occupiedSet[id] = struct{}{}
	}

	for _, room := range rooms {
		if _, found := occupiedSet[room.ID]; found {
			continue
		}

		var roomRes roomDto.RoomResponse
		roomRes.FromModel(room)
		res.Rooms = append(res.Rooms, roomRes)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save availability to cache")
		}
	}()

	return res, nil
}

// Create books a room for the authenticated guest. The rules run in a fixed
// order so the caller always learns about the earliest violated one:
// date pair well formed, range strictly increasing, check-in not in the past,
// then no overlapping confirmed reservation. The overlap rule is re-checked
// inside the insert transaction, so a pre-check race cannot double-book.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	guestID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	// Route permissions already gate this, re-checked here so a wiring
	// mistake upstream cannot let staff book on a guest's behalf.
	if role, _ := ctx.Value(constant.ContextKeyUserRole).(string); role != constant.RoleGuest {
		return res, failure.Forbidden("only guests may book rooms") // nolint:wrapcheck
	}

	checkIn, checkOut, err := req.Dates()
	if err != nil {
		return res, failure.InvalidDateRange("check-in and check-out must be valid dates") // nolint:wrapcheck
	}

	if !checkOut.After(checkIn) {
		return res, failure.InvalidDateRange("check-out must be after check-in") // nolint:wrapcheck
	}

	if checkIn.Before(s.clock.Today()) {
		return res, failure.PastCheckinDate("check-in must not be in the past") // nolint:wrapcheck
	}

	roomExists, err := s.roomRepo.Exist(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check room existence")

		return res, fmt.Errorf("failed to check room existence: %w", err)
	}

	if !roomExists {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	overlaps, err := s.repo.HasConfirmedOverlap(ctx, req.RoomID, checkIn, checkOut)
	if err != nil {
		log.Error().Err(err).Msg("failed to check reservation overlap")

		return res, fmt.Errorf("failed to check reservation overlap: %w", err)
	}

	if overlaps {
		return res, failure.RoomConflict("room is already reserved for the requested dates") // nolint:wrapcheck
	}

	reservation := req.ToModel(guestID, checkIn, checkOut)

	if err = s.repo.CreateConfirmed(ctx, reservation); err != nil {
		log.Error().Err(err).Str("room_id", req.RoomID).Msg("failed to create reservation")

		return res, err
	}

	res.FromModel(reservation)

	s.invalidateAsync(ctx, reservation.ID)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	reservation, err := s.getOwned(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(reservation)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	applyDefaultOrdering(&req)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllReservation, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservations")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservations to cache")
		}
	}()

	return res, nil
}

// GetMine lists the authenticated guest's own reservations.
func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams) (dto.GetReservationsResponse, error) {
	guestID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	return s.GetAll(ctx, req, filterByGuest(guestID))
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountReservation, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservation count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation count to cache")
		}
	}()

	return res, nil
}

// Cancel lets a guest withdraw a reservation while it is still confirmed and
// its check-in is strictly in the future. Staff may cancel on the same rule.
// Ownership and the cancel window are both re-checked under the row lock.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	today := s.clock.Today()

	guard := func(current model.Reservation) error {
		if role != constant.RoleStaff && current.GuestID != userID {
			return failure.Forbidden("reservation belongs to another guest")
		}

		if !current.CancellableAt(today) {
			return failure.NotCancellable("reservation can no longer be cancelled")
		}

		return nil
	}

	fields := map[string]any{
		model.FieldStatus: model.StatusCancelled,
		"modified_at":     timezone.Now(),
		"modified_by":     userID,
	}

	if err = s.repo.UpdateStatusGuarded(ctx, id, fields, guard); err != nil {
		log.Error().Err(err).Str("reservation_id", id).Msg("failed to cancel reservation")

		return err
	}

	s.invalidateAsync(ctx, id)

	return nil
}

// SetStatus lets staff move a confirmed reservation to cancelled or
// completed. Terminal states never reopen, and staff cancellation skips the
// guest's future-check-in window.
func (s *serviceImpl) SetStatus(ctx context.Context, id string, req dto.SetStatusRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	guard := func(current model.Reservation) error {
		if current.Status == req.Status {
			return nil
		}

		if current.Status != model.StatusConfirmed {
			return failure.Conflict(fmt.Sprintf("reservation is %s and cannot change status", current.Status))
		}

		return nil
	}

	fields := map[string]any{
		model.FieldStatus: req.Status,
		"modified_at":     timezone.Now(),
		"modified_by":     userID,
	}

	if err = s.repo.UpdateStatusGuarded(ctx, id, fields, guard); err != nil {
		log.Error().Err(err).Str("reservation_id", id).Str("status", req.Status).Msg("failed to set reservation status")

		return err
	}

	s.invalidateAsync(ctx, id)

	return nil
}

// getOwned fetches a reservation and enforces visibility: staff see any,
// guests only their own. The cache holds the raw row keyed by id, so the
// ownership check always runs after retrieval regardless of the source.
func (s *serviceImpl) getOwned(ctx context.Context, id string) (model.Reservation, error) {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	var reservation model.Reservation

	cacheKey := shared.BuildCacheKey(cacheGetReservation, id)

	if err := s.cache.Get(ctx, cacheKey, &reservation); err != nil {
		reservation, err = s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to get reservation")

			return reservation, fmt.Errorf("failed to get reservation: %w", err)
		}

		if reservation.ID != constant.Empty {
			go func() {
				c := context.WithoutCancel(ctx)

				if err := s.cache.Save(c, cacheKey, reservation, s.cfg.Cache.TTL); err != nil {
					log.Error().Err(err).Msg("failed to save reservation to cache")
				}
			}()
		}
	}

	if reservation.ID == constant.Empty {
		return reservation, failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	if role != constant.RoleStaff && reservation.GuestID != userID {
		return reservation, failure.Forbidden("reservation belongs to another guest") // nolint:wrapcheck
	}

	return reservation, nil
}

func (s *serviceImpl) invalidateAsync(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetReservation, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete reservation cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllReservation)
		shared.InvalidateCaches(c, s.cache, cacheCountReservation)
		shared.InvalidateCaches(c, s.cache, cacheAvailability)
	}()
}

func applyDefaultOrdering(req *gDto.QueryParams) {
	if req.SortBy == constant.Empty {
		req.SortBy = model.TableName + "." + model.FieldCheckIn
		req.SortDir = "DESC"
	}
}

func filterByGuest(guestID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldGuestID,
				Value:    guestID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}
}

func filterAvailableRooms() gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    roomModel.FieldAvailable,
				Value:    true,
				Operator: gDto.FilterOperatorEq,
				Table:    roomModel.TableName,
			},
		},
	}
}
