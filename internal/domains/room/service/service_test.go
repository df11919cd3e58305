package service_test

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"lodge/config"
	"lodge/infras/otel/mocks"
	s3Mocks "lodge/infras/s3/mocks"
	roomMocks "lodge/internal/domains/room/mocks"
	"lodge/internal/domains/room/model"
	"lodge/internal/domains/room/model/dto"
	"lodge/internal/domains/room/service"
	cacheMocks "lodge/shared/cache/mocks"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	"lodge/shared/money"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type nopFile struct {
	*strings.Reader
}

func (nopFile) Close() error { return nil }

const roomA = "0b5e8f34-7c2d-4f1a-8e6b-93d2a1c4f507"

func newRoom(id string, price money.Amount) model.Room {
	return model.Room{
		ID:            id,
		RoomNumber:    "10" + id,
		Title:         "Room " + id,
		RoomType:      model.TypeDeluxe,
		PricePerNight: price,
		Capacity:      2,
		IsAvailable:   true,
	}
}

func allowCacheWrites(mockCache *cacheMocks.MockRedisCache) {
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func TestRoomService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockS3)

	allowCacheWrites(mockCache)

	req := dto.CreateRoomRequest{
		RoomNumber:    "101",
		Title:         "Garden Deluxe",
		RoomType:      model.TypeDeluxe,
		PricePerNight: 15000,
		Capacity:      2,
	}

	tests := []struct {
		name      string
		setupMock func()
		wantKind  failure.Kind
		wantErr   bool
	}{
		{
			name: "successful creation",
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, room model.Room) error {
						assert.NotEmpty(t, room.ID)
						assert.True(t, room.IsAvailable)
						assert.False(t, room.IsFeatured)
						assert.Equal(t, "admin-1", room.CreatedBy)
						assert.NotNil(t, room.Images)

						return nil
					})
			},
		},
		{
			name: "duplicate room number",
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantErr:  true,
			wantKind: failure.KindConflict,
		},
		{
			name: "unique violation on insert",
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation})
			},
			wantErr:  true,
			wantKind: failure.KindConflict,
		},
		{
			name: "repository error",
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantErr:  true,
			wantKind: failure.KindPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")

			res, err := svc.Create(ctx, req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.GetKind(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "150.00", res.PricePerNight.String())
			assert.Equal(t, int64(15000), res.PricePerNightCents)
		})
	}
}

func TestRoomService_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockS3)

	allowCacheWrites(mockCache)

	rooms := []model.Room{newRoom(roomA, 10000), newRoom("b", 15000)}

	tests := []struct {
		name      string
		setupMock func()
		wantErr   bool
		wantTotal int
	}{
		{
			name: "cache hit",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, value any) error {
						res, _ := value.(*dto.GetRoomsResponse)
						res.TotalData = 7

						return nil
					})
			},
			wantTotal: 7,
		},
		{
			name: "cache miss orders by price",
			setupMock: func() {
				mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
				mockRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Room, error) {
						assert.Equal(t, "rooms.price_per_night", params.SortBy)
						assert.Equal(t, gDto.SortDirAsc, params.SortDir)

						where, args := filter.GetWhereClause()
						assert.Contains(t, where, "rooms.is_available = :is_available")
						assert.Contains(t, where, "rooms.room_type = :room_type")
						assert.Equal(t, int64(20000), args["max_price"])

						return rooms, nil
					})
			},
			wantTotal: 2,
		},
		{
			name: "count error",
			setupMock: func() {
				mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
				mockRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	maxPrice := money.Amount(20000)
	filter := dto.ListFilter{RoomType: model.TypeDeluxe, MaxPrice: &maxPrice}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, filter)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantTotal, res.TotalData)
		})
	}
}

func TestRoomService_Featured(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, &config.Config{}, mockCache, mockOtel, mockS3)

	allowCacheWrites(mockCache)

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	mockRepo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Room, error) {
			assert.Equal(t, 6, params.Limit)

			return []model.Room{newRoom(roomA, 10000)}, nil
		})

	res, err := svc.Featured(context.Background())

	assert.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestRoomService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, &config.Config{}, mockCache, mockOtel, mockS3)

	allowCacheWrites(mockCache)

	tests := []struct {
		name      string
		setupMock func()
		wantKind  failure.Kind
		wantErr   bool
	}{
		{
			name: "found",
			setupMock: func() {
				mockCache.EXPECT().Get(gomock.Any(), "room:get:"+roomA, gomock.Any()).Return(errors.New("cache miss"))
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(roomA, 10000), nil)
			},
		},
		{
			name: "not found",
			setupMock: func() {
				mockCache.EXPECT().Get(gomock.Any(), "room:get:"+roomA, gomock.Any()).Return(errors.New("cache miss"))
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Get(context.Background(), roomA)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.GetKind(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, roomA, res.ID)
		})
	}
}

func TestRoomService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, &config.Config{}, mockCache, mockOtel, mockS3)

	allowCacheWrites(mockCache)

	price := money.Amount(17500)
	updated := newRoom(roomA, price)

	gomock.InOrder(
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(roomA, 10000), nil),
		mockRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, &price, fields[model.FieldPricePerNight])
				assert.NotContains(t, fields, model.FieldTitle)
				assert.Equal(t, "admin-1", fields[constant.FieldModifiedBy])

				return nil
			}),
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(updated, nil),
	)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")

	res, err := svc.Update(ctx, dto.UpdateRoomRequest{PricePerNight: &price}, roomA)

	assert.NoError(t, err)
	assert.Equal(t, "175.00", res.PricePerNight.String())
}

func TestRoomService_UploadImage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, &config.Config{}, mockCache, mockOtel, mockS3)

	allowCacheWrites(mockCache)

	header := &multipart.FileHeader{
		Filename: "view.png",
		Header:   textproto.MIMEHeader{constant.RequestHeaderContentType: []string{"image/png"}},
	}

	req := dto.UploadImageRequest{Image: header, ImageFile: nopFile{strings.NewReader("png")}}

	existing := newRoom(roomA, 10000)
	existing.Images = pq.StringArray{"https://cdn.example.com/room/old.png"}

	tests := []struct {
		name      string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "appends uploaded url",
			setupMock: func() {
				withImage := existing
				withImage.Images = append(pq.StringArray{}, existing.Images...)
				withImage.Images = append(withImage.Images, "https://cdn.example.com/room/new.png")

				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
				mockS3.EXPECT().
					Upload(gomock.Any(), model.EntityName, gomock.Any(), "image/png", gomock.Any()).
					DoAndReturn(func(_ context.Context, _, name, _ string, _ io.Reader) (string, error) {
						assert.True(t, strings.HasSuffix(name, ".png"))

						return "https://cdn.example.com/room/new.png", nil
					})
				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Len(t, fields[model.FieldImages], 2)

						return nil
					})
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(withImage, nil)
			},
		},
		{
			name: "removes orphaned object when update fails",
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
				mockS3.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("https://cdn.example.com/room/new.png", nil)
				mockRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))
				mockS3.EXPECT().Delete(gomock.Any(), model.EntityName, gomock.Any()).Return(nil)
			},
			wantErr: true,
		},
		{
			name: "upload error",
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
				mockS3.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("s3 down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.UploadImage(context.Background(), req, roomA)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Len(t, res.Images, 2)
		})
	}
}

func TestRoomService_RemoveImage(t *testing.T) {
	const (
		ours    = "https://cdn.example.com/room/old.png"
		foreign = "https://images.example.org/lobby.jpg"
	)

	existing := newRoom(roomA, 10000)
	existing.Images = pq.StringArray{ours, foreign}

	tests := []struct {
		name      string
		url       string
		setupMock func(*roomMocks.MockRoom, *s3Mocks.MockS3)
		wantCode  int
		wantLen   int
	}{
		{
			name: "detaches and deletes our object",
			url:  ours,
			setupMock: func(mockRepo *roomMocks.MockRoom, mockS3 *s3Mocks.MockS3) {
				after := existing
				after.Images = pq.StringArray{foreign}

				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, pq.StringArray{foreign}, fields[model.FieldImages])

						return nil
					})
				mockS3.EXPECT().ObjectName(model.EntityName, ours).Return("old.png")
				mockS3.EXPECT().Delete(gomock.Any(), model.EntityName, "old.png").Return(nil)
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(after, nil)
			},
			wantLen: 1,
		},
		{
			name: "foreign url is only detached",
			url:  foreign,
			setupMock: func(mockRepo *roomMocks.MockRoom, mockS3 *s3Mocks.MockS3) {
				after := existing
				after.Images = pq.StringArray{ours}

				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
				mockRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				mockS3.EXPECT().ObjectName(model.EntityName, foreign).Return("")
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(after, nil)
			},
			wantLen: 1,
		},
		{
			name: "unknown url",
			url:  "https://cdn.example.com/room/missing.png",
			setupMock: func(mockRepo *roomMocks.MockRoom, _ *s3Mocks.MockS3) {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
			},
			wantCode: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockRepo := roomMocks.NewMockRoom(ctrl)
			mockCache := cacheMocks.NewMockRedisCache(ctrl)
			mockS3 := s3Mocks.NewMockS3(ctrl)

			allowCacheWrites(mockCache)
			tt.setupMock(mockRepo, mockS3)

			svc := service.New(mockRepo, &config.Config{}, mockCache, mocks.NewOtel(), mockS3)

			res, err := svc.RemoveImage(context.Background(), dto.RemoveImageRequest{URL: tt.url}, roomA)

			if tt.wantCode != 0 {
				var f *failure.Failure
				assert.ErrorAs(t, err, &f)
				assert.Equal(t, tt.wantCode, f.Code)

				return
			}

			assert.NoError(t, err)
			assert.Len(t, res.Images, tt.wantLen)
		})
	}
}

func TestRoomService_MalformedIDIsNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.New(roomMocks.NewMockRoom(ctrl), &config.Config{}, cacheMocks.NewMockRedisCache(ctrl), mocks.NewOtel(), s3Mocks.NewMockS3(ctrl))

	_, err := svc.Get(context.Background(), "abc")
	assert.Equal(t, 404, failure.GetCode(err))

	_, err = svc.Update(context.Background(), dto.UpdateRoomRequest{}, "abc")
	assert.Equal(t, 404, failure.GetCode(err))
}
