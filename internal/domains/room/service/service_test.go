package service_test

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"lodge/config"
	"lodge/infras/otel/mocks"
	s3Mocks "lodge/infras/s3/mocks"
	roomMocks "lodge/internal/domains/room/mocks"
	"lodge/internal/domains/room/model"
	"lodge/internal/domains/room/model/dto"
	"lodge/internal/domains/room/service"
	cacheMocks "lodge/shared/cache/mocks"
	"lodge/shared/constant"
	"lodge/shared/failure"
)

var errCacheMiss = errors.New("cache miss")

type fixture struct {
	repo  *roomMocks.MockRoom
	s3    *s3Mocks.MockS3
	cache *cacheMocks.MockRedisCache
	svc   service.Room
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	repo := roomMocks.NewMockRoom(ctrl)
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.External.S3.BucketName = "lodge-test"

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(repo, cfg, mockCache, mocks.NewOtel(), mockS3)

	return fixture{repo: repo, s3: mockS3, cache: mockCache, svc: svc}
}

func staffCtx(userID string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleStaff)
}

func TestRoomService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreateRoomRequest
		setupMock func(f fixture)
		wantCode  int
		wantErr   bool
	}{
		{
			name: "successful creation without photo",
			req: dto.CreateRoomRequest{
				Number:   101,
				Category: model.CategorySingle,
			},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, room model.Room) error {
						assert.Equal(t, 101, room.Number)
						assert.Equal(t, model.CategorySingle, room.Category)
						assert.True(t, room.Available)
						assert.Equal(t, "staff-1", room.CreatedBy)

						return nil
					})
			},
		},
		{
			name: "room number already taken",
			req: dto.CreateRoomRequest{
				Number:   101,
				Category: model.CategoryDouble,
			},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: 409,
			wantErr:  true,
		},
		{
			name: "photo upload is cleaned up when insert fails",
			req: dto.CreateRoomRequest{
				Number:   102,
				Category: model.CategoryLuxury,
				Photo:    &multipart.FileHeader{Filename: "room.jpg"},
			},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.s3.EXPECT().
					UploadFile(gomock.Any(), "lodge-test", model.EntityName, gomock.Any(), gomock.Any(), gomock.Any()).
					Return("https://cdn.example.com/room/abc.jpg", nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))
				f.s3.EXPECT().DeleteFile(gomock.Any(), "lodge-test", model.EntityName, gomock.Any()).Return(nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Create(staffCtx("staff-1"), tt.req)

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestRoomService_Get(t *testing.T) {
	t.Run("returns mapped room", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{
			ID:        "room-1",
			Number:    101,
			Category:  model.CategorySingle,
			Available: true,
		}, nil)

		res, err := f.svc.Get(context.Background(), "room-1")

		assert.NoError(t, err)
		assert.Equal(t, "room-1", res.ID)
		assert.Equal(t, 101, res.Number)

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("missing room yields not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)

		_, err := f.svc.Get(context.Background(), "missing")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestRoomService_Update(t *testing.T) {
	number := 205

	tests := []struct {
		name      string
		req       dto.UpdateRoomRequest
		setupMock func(f fixture)
		wantCode  int
		wantErr   bool
	}{
		{
			name: "successful number change",
			req:  dto.UpdateRoomRequest{Number: &number},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "room-1", Number: 101}, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, fields map[string]any, _ any) error {
						assert.Equal(t, 205, fields[model.FieldNumber])

						return nil
					})
			},
		},
		{
			name: "room not found",
			req:  dto.UpdateRoomRequest{Number: &number},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)
			},
			wantCode: 404,
			wantErr:  true,
		},
		{
			name: "new number already taken",
			req:  dto.UpdateRoomRequest{Number: &number},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "room-1", Number: 101}, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: 409,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Update(staffCtx("staff-1"), tt.req, "room-1")

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestRoomService_Delete(t *testing.T) {
	t.Run("deletes existing room", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		assert.NoError(t, f.svc.Delete(staffCtx("staff-1"), "room-1"))

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("missing room yields not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		err := f.svc.Delete(staffCtx("staff-1"), "missing")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestRoomService_Update_RefreshesAvailability(t *testing.T) {
	// Flipping the administrative flag must also drop cached availability
	// search results, or the room keeps showing up until the TTL expires.
	ctrl := gomock.NewController(t)

	repo := roomMocks.NewMockRoom(ctrl)
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.External.S3.BucketName = "lodge-test"

	svc := service.New(repo, cfg, mockCache, mocks.NewOtel(), mockS3)

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "room-1", Number: 101, Available: true}, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
	mockCache.EXPECT().Clear(gomock.Any(), "room:gets"+constant.Asterix).Return(nil)
	mockCache.EXPECT().Clear(gomock.Any(), "room:count"+constant.Asterix).Return(nil)
	mockCache.EXPECT().Clear(gomock.Any(), constant.CacheKeyAvailability+constant.Asterix).Return(nil)

	available := false
	err := svc.Update(staffCtx("staff-1"), dto.UpdateRoomRequest{Available: &available}, "room-1")

	time.Sleep(10 * time.Millisecond)

	assert.NoError(t, err)
}
