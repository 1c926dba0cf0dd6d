package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"lodge/config"
	"lodge/infras/otel/mocks"
	reservationMocks "lodge/internal/domains/reservation/mocks"
	"lodge/internal/domains/reservation/model"
	"lodge/internal/domains/reservation/model/dto"
	"lodge/internal/domains/reservation/service"
	roomMocks "lodge/internal/domains/room/mocks"
	roomModel "lodge/internal/domains/room/model"
	cacheMocks "lodge/shared/cache/mocks"
	"lodge/shared/clock"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	gModel "lodge/shared/model"
)

var errCacheMiss = errors.New("cache miss")

type fixture struct {
	repo     *reservationMocks.MockReservation
	roomRepo *roomMocks.MockRoom
	cache    *cacheMocks.MockRedisCache
	svc      service.Reservation
}

func newFixture(t *testing.T, today string) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	repo := reservationMocks.NewMockReservation(ctrl)
	roomRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	now, err := time.Parse(constant.DateOnlyFormat, today)
	assert.NoError(t, err)

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(repo, roomRepo, cfg, mockCache, mocks.NewOtel(), clock.NewFixed(now))

	return fixture{repo: repo, roomRepo: roomRepo, cache: mockCache, svc: svc}
}

func guestCtx(userID string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleGuest)
}

func staffCtx(userID string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleStaff)
}

func date(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(constant.DateOnlyFormat, value)
	assert.NoError(t, err)

	return parsed
}

func TestReservationService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreateReservationRequest
		setupMock func(f fixture)
		wantKind  failure.Kind
		wantErr   bool
	}{
		{
			name: "successful creation",
			req: dto.CreateReservationRequest{
				RoomID:   "room-1",
				CheckIn:  "2025-06-10",
				CheckOut: "2025-06-12",
			},
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().HasConfirmedOverlap(gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().CreateConfirmed(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "check-in today is allowed",
			req: dto.CreateReservationRequest{
				RoomID:   "room-1",
				CheckIn:  "2025-06-01",
				CheckOut: "2025-06-02",
			},
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().HasConfirmedOverlap(gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().CreateConfirmed(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "check-out before check-in",
			req: dto.CreateReservationRequest{
				RoomID:   "room-1",
				CheckIn:  "2025-06-12",
				CheckOut: "2025-06-10",
			},
			setupMock: func(f fixture) {},
			wantKind:  failure.KindInvalidDateRange,
			wantErr:   true,
		},
		{
			name: "check-out equals check-in",
			req: dto.CreateReservationRequest{
				RoomID:   "room-1",
				CheckIn:  "2025-06-10",
				CheckOut: "2025-06-10",
			},
			setupMock: func(f fixture) {},
			wantKind:  failure.KindInvalidDateRange,
			wantErr:   true,
		},
		{
			name: "check-in in the past",
			req: dto.CreateReservationRequest{
				RoomID:   "room-1",
				CheckIn:  "2025-05-31",
				CheckOut: "2025-06-02",
			},
			setupMock: func(f fixture) {},
			wantKind:  failure.KindPastCheckinDate,
			wantErr:   true,
		},
		{
			name: "past check-in reported before overlap",
			req: dto.CreateReservationRequest{
				RoomID:   "room-1",
				CheckIn:  "2025-05-20",
				CheckOut: "2025-05-25",
			},
			setupMock: func(f fixture) {},
			wantKind:  failure.KindPastCheckinDate,
			wantErr:   true,
		},
		{
			name: "unknown room",
			req: dto.CreateReservationRequest{
				RoomID:   "room-missing",
				CheckIn:  "2025-06-10",
				CheckOut: "2025-06-12",
			},
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantKind: failure.KindNotFound,
			wantErr:  true,
		},
		{
			name: "overlapping confirmed reservation",
			req: dto.CreateReservationRequest{
				RoomID:   "room-1",
				CheckIn:  "2025-06-10",
				CheckOut: "2025-06-12",
			},
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().HasConfirmedOverlap(gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantKind: failure.KindRoomConflict,
			wantErr:  true,
		},
		{
			name: "conflict detected inside transaction",
			req: dto.CreateReservationRequest{
				RoomID:   "room-1",
				CheckIn:  "2025-06-10",
				CheckOut: "2025-06-12",
			},
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().HasConfirmedOverlap(gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().CreateConfirmed(gomock.Any(), gomock.Any()).Return(failure.RoomConflict("room is already reserved for the requested dates"))
			},
			wantKind: failure.KindRoomConflict,
			wantErr:  true,
		},
		{
			name: "repository error",
			req: dto.CreateReservationRequest{
				RoomID:   "room-1",
				CheckIn:  "2025-06-10",
				CheckOut: "2025-06-12",
			},
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "2025-06-01")
			tt.setupMock(f)

			res, err := f.svc.Create(guestCtx("guest-1"), tt.req)

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantKind != "" {
					assert.True(t, failure.IsKind(err, tt.wantKind), "got kind %q", failure.GetKind(err))
				}

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.req.RoomID, res.RoomID)
			assert.Equal(t, "guest-1", res.GuestID)
			assert.Equal(t, model.StatusConfirmed, res.Status)
			assert.Equal(t, tt.req.CheckIn, res.CheckIn)
			assert.Equal(t, tt.req.CheckOut, res.CheckOut)
		})
	}
}

func TestReservationService_Create_OverlapBoundaries(t *testing.T) {
	// Back-to-back stays share a boundary day and must not collide, so the
	// exact range forwarded to the overlap check matters.
	f := newFixture(t, "2025-06-01")

	var gotIn, gotOut time.Time

	f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	f.repo.EXPECT().
		HasConfirmedOverlap(gomock.Any(), "room-1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, in, out time.Time) (bool, error) {
			gotIn, gotOut = in, out

			return false, nil
		})
	f.repo.EXPECT().CreateConfirmed(gomock.Any(), gomock.Any()).Return(nil)

	_, err := f.svc.Create(guestCtx("guest-1"), dto.CreateReservationRequest{
		RoomID:   "room-1",
		CheckIn:  "2025-06-12",
		CheckOut: "2025-06-15",
	})

	time.Sleep(10 * time.Millisecond)

	assert.NoError(t, err)
	assert.Equal(t, date(t, "2025-06-12"), gotIn)
	assert.Equal(t, date(t, "2025-06-15"), gotOut)
}

func TestReservationService_Create_GuestRoleRequired(t *testing.T) {
	// Booking stays a guest operation even if a routing or permission
	// misconfiguration lets another role through.
	f := newFixture(t, "2025-06-01")

	_, err := f.svc.Create(staffCtx("staff-1"), dto.CreateReservationRequest{
		RoomID:   "room-1",
		CheckIn:  "2025-06-10",
		CheckOut: "2025-06-12",
	})

	assert.Error(t, err)
	assert.True(t, failure.IsKind(err, failure.KindForbidden), "got kind %q", failure.GetKind(err))
}

func TestReservationService_Cancel(t *testing.T) {
	confirmedFuture := model.Reservation{
		ID:       "res-1",
		GuestID:  "guest-1",
		RoomID:   "room-1",
		CheckIn:  time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		Status:   model.StatusConfirmed,
	}

	tests := []struct {
		name     string
		ctx      context.Context
		current  model.Reservation
		repoErr  error
		wantKind failure.Kind
		wantErr  bool
	}{
		{
			name:    "guest cancels own future reservation",
			ctx:     guestCtx("guest-1"),
			current: confirmedFuture,
		},
		{
			name: "cancel on check-in day is rejected",
			ctx:  guestCtx("guest-1"),
			current: model.Reservation{
				ID:      "res-1",
				GuestID: "guest-1",
				CheckIn: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
				Status:  model.StatusConfirmed,
			},
			wantKind: failure.KindNotCancellable,
			wantErr:  true,
		},
		{
			name: "already cancelled",
			ctx:  guestCtx("guest-1"),
			current: model.Reservation{
				ID:      "res-1",
				GuestID: "guest-1",
				CheckIn: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
				Status:  model.StatusCancelled,
			},
			wantKind: failure.KindNotCancellable,
			wantErr:  true,
		},
		{
			name: "completed stay",
			ctx:  guestCtx("guest-1"),
			current: model.Reservation{
				ID:      "res-1",
				GuestID: "guest-1",
				CheckIn: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
				Status:  model.StatusCompleted,
			},
			wantKind: failure.KindNotCancellable,
			wantErr:  true,
		},
		{
			name:     "another guest's reservation",
			ctx:      guestCtx("guest-2"),
			current:  confirmedFuture,
			wantKind: failure.KindForbidden,
			wantErr:  true,
		},
		{
			name:    "staff cancels on behalf of guest",
			ctx:     staffCtx("staff-1"),
			current: confirmedFuture,
		},
		{
			name:     "reservation not found",
			ctx:      guestCtx("guest-1"),
			repoErr:  failure.NotFound("reservation not found"),
			wantKind: failure.KindNotFound,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "2025-06-01")

			f.repo.EXPECT().
				UpdateStatusGuarded(gomock.Any(), "res-1", gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, _ map[string]any, guard func(model.Reservation) error) error {
					if tt.repoErr != nil {
						return tt.repoErr
					}

					return guard(tt.current)
				})

			err := f.svc.Cancel(tt.ctx, "res-1")

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, failure.IsKind(err, tt.wantKind), "got kind %q", failure.GetKind(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestReservationService_SetStatus(t *testing.T) {
	tests := []struct {
		name    string
		current model.Reservation
		status  string
		wantErr bool
	}{
		{
			name:    "confirmed to completed",
			current: model.Reservation{ID: "res-1", Status: model.StatusConfirmed},
			status:  model.StatusCompleted,
		},
		{
			name:    "confirmed to cancelled",
			current: model.Reservation{ID: "res-1", Status: model.StatusConfirmed},
			status:  model.StatusCancelled,
		},
		{
			name:    "idempotent same status",
			current: model.Reservation{ID: "res-1", Status: model.StatusCancelled},
			status:  model.StatusCancelled,
		},
		{
			name:    "cancelled cannot complete",
			current: model.Reservation{ID: "res-1", Status: model.StatusCancelled},
			status:  model.StatusCompleted,
			wantErr: true,
		},
		{
			name:    "completed cannot reopen",
			current: model.Reservation{ID: "res-1", Status: model.StatusCompleted},
			status:  model.StatusConfirmed,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "2025-06-01")

			var gotFields map[string]any

			f.repo.EXPECT().
				UpdateStatusGuarded(gomock.Any(), "res-1", gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, fields map[string]any, guard func(model.Reservation) error) error {
					if err := guard(tt.current); err != nil {
						return err
					}

					gotFields = fields

					return nil
				})

			err := f.svc.SetStatus(staffCtx("staff-1"), "res-1", dto.SetStatusRequest{Status: tt.status})

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.status, gotFields[model.FieldStatus])
		})
	}
}

func TestReservationService_SearchAvailability(t *testing.T) {
	rooms := []roomModel.Room{
		{ID: "room-1", Number: 101, Category: roomModel.CategorySingle, Available: true},
		{ID: "room-2", Number: 102, Category: roomModel.CategoryDouble, Available: true},
		{ID: "room-3", Number: 103, Category: roomModel.CategoryLuxury, Available: true},
	}

	tests := []struct {
		name      string
		checkIn   string
		checkOut  string
		setupMock func(f fixture)
		wantIDs   []string
	}{
		{
			name:     "excludes occupied rooms",
			checkIn:  "2025-06-10",
			checkOut: "2025-06-12",
			setupMock: func(f fixture) {
				f.repo.EXPECT().OccupiedRoomIDs(gomock.Any(), date(t, "2025-06-10"), date(t, "2025-06-12")).Return([]string{"room-2"}, nil)
				f.roomRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(rooms, nil)
			},
			wantIDs: []string{"room-1", "room-3"},
		},
		{
			name:     "no occupation returns every room",
			checkIn:  "2025-06-10",
			checkOut: "2025-06-12",
			setupMock: func(f fixture) {
				f.repo.EXPECT().OccupiedRoomIDs(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				f.roomRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(rooms, nil)
			},
			wantIDs: []string{"room-1", "room-2", "room-3"},
		},
		{
			name:      "missing dates fail safe to empty",
			checkIn:   "",
			checkOut:  "",
			setupMock: func(f fixture) {},
			wantIDs:   []string{},
		},
		{
			name:      "malformed dates fail safe to empty",
			checkIn:   "junk",
			checkOut:  "2025-06-12",
			setupMock: func(f fixture) {},
			wantIDs:   []string{},
		},
		{
			name:      "inverted range fails safe to empty",
			checkIn:   "2025-06-12",
			checkOut:  "2025-06-10",
			setupMock: func(f fixture) {},
			wantIDs:   []string{},
		},
		{
			name:      "equal dates fail safe to empty",
			checkIn:   "2025-06-10",
			checkOut:  "2025-06-10",
			setupMock: func(f fixture) {},
			wantIDs:   []string{},
		},
		{
			name:      "past check-in fails safe to empty",
			checkIn:   "2025-05-20",
			checkOut:  "2025-05-25",
			setupMock: func(f fixture) {},
			wantIDs:   []string{},
		},
		{
			name:     "check-in today is searchable",
			checkIn:  "2025-06-01",
			checkOut: "2025-06-03",
			setupMock: func(f fixture) {
				f.repo.EXPECT().OccupiedRoomIDs(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				f.roomRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(rooms, nil)
			},
			wantIDs: []string{"room-1", "room-2", "room-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "2025-06-01")
			tt.setupMock(f)

			res, err := f.svc.SearchAvailability(guestCtx("guest-1"), tt.checkIn, tt.checkOut)

			time.Sleep(10 * time.Millisecond)

			assert.NoError(t, err)

			gotIDs := make([]string, 0, len(res.Rooms))
			for _, room := range res.Rooms {
				gotIDs = append(gotIDs, room.ID)
			}

			assert.Equal(t, tt.wantIDs, gotIDs)
		})
	}
}

func TestReservationService_Get(t *testing.T) {
	stored := model.Reservation{
		ID:       "res-1",
		GuestID:  "guest-1",
		RoomID:   "room-1",
		CheckIn:  time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		Status:   model.StatusConfirmed,
		Metadata: gModel.Metadata{CreatedBy: "guest-1"},
	}

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f fixture)
		wantKind  failure.Kind
		wantErr   bool
	}{
		{
			name: "owner reads own reservation",
			ctx:  guestCtx("guest-1"),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
			},
		},
		{
			name: "staff reads any reservation",
			ctx:  staffCtx("staff-1"),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
			},
		},
		{
			name: "other guest is rejected",
			ctx:  guestCtx("guest-2"),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
			},
			wantKind: failure.KindForbidden,
			wantErr:  true,
		},
		{
			name: "unknown reservation",
			ctx:  guestCtx("guest-1"),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)
			},
			wantKind: failure.KindNotFound,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "2025-06-01")
			tt.setupMock(f)

			res, err := f.svc.Get(tt.ctx, "res-1")

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, failure.IsKind(err, tt.wantKind), "got kind %q", failure.GetKind(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "res-1", res.ID)
			assert.Equal(t, "2025-06-10", res.CheckIn)
			assert.Equal(t, "2025-06-12", res.CheckOut)
		})
	}
}

func TestReservationService_GetMine_DefaultOrdering(t *testing.T) {
	f := newFixture(t, "2025-06-01")

	var gotParams gDto.QueryParams

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
	f.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Reservation, error) {
			gotParams = params

			return nil, nil
		})

	_, err := f.svc.GetMine(guestCtx("guest-1"), gDto.QueryParams{Page: 1, Limit: 10})

	time.Sleep(10 * time.Millisecond)

	assert.NoError(t, err)
	assert.Equal(t, "reservations.check_in", gotParams.SortBy)
	assert.Equal(t, "DESC", gotParams.SortDir)
}
