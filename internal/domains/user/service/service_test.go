package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lodge/config"
	"lodge/infras/otel/mocks"
	userMocks "lodge/internal/domains/user/mocks"
	"lodge/internal/domains/user/model"
	"lodge/internal/domains/user/model/dto"
	"lodge/internal/domains/user/service"
	cacheMocks "lodge/shared/cache/mocks"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

var errStore = errors.New("connection reset")

func setup(t *testing.T) (service.User, *userMocks.MockUser, *cacheMocks.MockRedisCache) {
	t.Helper()

	ctrl := gomock.NewController(t)

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return service.New(mockRepo, cfg, mockCache, mocks.NewOtel()), mockRepo, mockCache
}

func asAdmin(id string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, id)
}

func stringPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func TestUserService_GetAll(t *testing.T) {
	svc, mockRepo, mockCache := setup(t)

	lastLogin := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	params := gDto.QueryParams{Page: 1, Limit: 10}
	filter := gDto.FilterGroup{}

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).Times(2)
	mockRepo.EXPECT().Count(gomock.Any(), filter).Return(11, nil)
	mockRepo.EXPECT().GetAll(gomock.Any(), params, filter, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, columns ...string) ([]model.User, error) {
			assert.NotContains(t, columns, model.FieldPassword)

			return []model.User{
				{ID: "u1", Email: "desk@lodge.test", Level: constant.RoleStaff, Active: true, LastLogin: &lastLogin},
				{ID: "u2", Email: "owner@lodge.test", Level: constant.RoleAdmin, Active: true},
			}, nil
		})

	res, err := svc.GetAll(context.Background(), params, filter)

	assert.NoError(t, err)
	assert.Equal(t, 11, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	assert.Len(t, res.Users, 2)
	assert.NotNil(t, res.Users[0].LastLogin)
	assert.Nil(t, res.Users[1].LastLogin)
}

func TestUserService_GetAll_CountFails(t *testing.T) {
	svc, mockRepo, mockCache := setup(t)

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).Times(2)
	mockRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errStore)

	_, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

	assert.ErrorIs(t, err, errStore)
}

func TestUserService_Get(t *testing.T) {
	tests := []struct {
		name    string
		user    model.User
		repoErr error
		want    int
	}{
		{
			name: "found",
			user: model.User{ID: "u1", Email: "desk@lodge.test", Level: constant.RoleStaff, Active: true},
		},
		{
			name: "not found",
			want: 404,
		},
		{
			name:    "store error",
			repoErr: errStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, mockCache := setup(t)

			mockCache.EXPECT().Get(gomock.Any(), "user:get:u1", gomock.Any()).Return(errors.New("miss"))
			mockRepo.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.user, tt.repoErr)

			res, err := svc.Get(context.Background(), "u1")

			switch {
			case tt.repoErr != nil:
				assert.ErrorIs(t, err, tt.repoErr)
			case tt.want != 0:
				var f *failure.Failure
				assert.ErrorAs(t, err, &f)
				assert.Equal(t, tt.want, f.Code)
			default:
				assert.NoError(t, err)
				assert.Equal(t, "desk@lodge.test", res.Email)
			}
		})
	}
}

func account(level string) model.User {
	return model.User{ID: "u1", Email: "desk@lodge.test", Level: level, Active: true}
}

func accountPtr(level string) *model.User {
	user := account(level)

	return &user
}

func TestUserService_Update(t *testing.T) {
	tests := []struct {
		name     string
		actor    string
		req      dto.UpdateUserRequest
		target   *model.User
		admins   int
		counted  bool
		updated  bool
		wantCode int
	}{
		{
			name:     "empty request",
			actor:    "admin-1",
			wantCode: 400,
		},
		{
			name:     "own level",
			actor:    "u1",
			req:      dto.UpdateUserRequest{Level: stringPtr(constant.RoleAdmin)},
			wantCode: 400,
		},
		{
			name:     "missing",
			actor:    "admin-1",
			req:      dto.UpdateUserRequest{FullName: stringPtr("Night Desk")},
			target:   &model.User{},
			wantCode: 404,
		},
		{
			name:    "promote",
			actor:   "admin-1",
			req:     dto.UpdateUserRequest{Level: stringPtr(constant.RoleAdmin)},
			target:  accountPtr(constant.RoleStaff),
			updated: true,
		},
		{
			name:    "suspend staff",
			actor:   "admin-1",
			req:     dto.UpdateUserRequest{Active: boolPtr(false)},
			target:  accountPtr(constant.RoleStaff),
			updated: true,
		},
		{
			name:     "demote last admin",
			actor:    "admin-1",
			req:      dto.UpdateUserRequest{Level: stringPtr(constant.RoleStaff)},
			target:   accountPtr(constant.RoleAdmin),
			admins:   1,
			counted:  true,
			wantCode: 409,
		},
		{
			name:    "suspend one of two admins",
			actor:   "admin-1",
			req:     dto.UpdateUserRequest{Active: boolPtr(false)},
			target:  accountPtr(constant.RoleAdmin),
			admins:  2,
			counted: true,
			updated: true,
		},
		{
			name:    "own name",
			actor:   "u1",
			req:     dto.UpdateUserRequest{FullName: stringPtr("Night Desk")},
			target:  accountPtr(constant.RoleAdmin),
			updated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, _ := setup(t)

			if tt.target != nil {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(*tt.target, nil)
			}

			if tt.counted {
				mockRepo.EXPECT().CountActive(gomock.Any(), constant.RoleAdmin).Return(tt.admins, nil)
			}

			if tt.updated {
				mockRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, tt.actor, fields[constant.FieldModifiedBy])

						return nil
					})
			}

			err := svc.Update(asAdmin(tt.actor), tt.req, "u1")

			if tt.wantCode != 0 {
				var f *failure.Failure
				assert.ErrorAs(t, err, &f)
				assert.Equal(t, tt.wantCode, f.Code)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestUserService_Deactivate(t *testing.T) {
	t.Run("self", func(t *testing.T) {
		svc, _, _ := setup(t)

		err := svc.Deactivate(asAdmin("u1"), "u1")

		var f *failure.Failure
		assert.ErrorAs(t, err, &f)
		assert.Equal(t, 400, f.Code)
	})

	t.Run("sets active false", func(t *testing.T) {
		svc, mockRepo, _ := setup(t)

		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(account(constant.RoleStaff), nil)
		mockRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, false, fields[model.FieldActive])
				assert.Equal(t, "admin-1", fields[constant.FieldModifiedBy])

				return nil
			})

		assert.NoError(t, svc.Deactivate(asAdmin("admin-1"), "u1"))
	})

	t.Run("last admin", func(t *testing.T) {
		svc, mockRepo, _ := setup(t)

		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(account(constant.RoleAdmin), nil)
		mockRepo.EXPECT().CountActive(gomock.Any(), constant.RoleAdmin).Return(1, nil)

		err := svc.Deactivate(asAdmin("admin-1"), "u1")

		assert.True(t, failure.IsKind(err, failure.KindConflict))
	})

	t.Run("missing", func(t *testing.T) {
		svc, mockRepo, _ := setup(t)

		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(model.User{}, nil)

		assert.True(t, failure.IsKind(svc.Deactivate(asAdmin("admin-1"), "u1"), failure.KindNotFound))
	})

	t.Run("store error", func(t *testing.T) {
		svc, mockRepo, _ := setup(t)

		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(account(constant.RoleStaff), nil)
		mockRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errStore)

		assert.ErrorIs(t, svc.Deactivate(asAdmin("admin-1"), "u1"), errStore)
	})
}
