package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/infras/s3"
	"lodge/internal/domains/room/model"
	"lodge/internal/domains/room/model/dto"
	"lodge/internal/domains/room/repository"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoom      = "room:get"
	cacheGetAllRoom   = "room:gets"
	cacheCountRoom    = "room:count"
	cacheFeaturedRoom = "room:featured"

	featuredLimit = 6
)

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter dto.ListFilter) (dto.GetRoomsResponse, error)
	Featured(ctx context.Context) ([]dto.RoomResponse, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (dto.RoomResponse, error)
	UploadImage(ctx context.Context, req dto.UploadImageRequest, id string) (dto.RoomResponse, error)
	RemoveImage(ctx context.Context, req dto.RemoveImageRequest, id string) (dto.RoomResponse, error)
}

type serviceImpl struct {
	repo  repository.Room
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	s3    s3.S3
}

func New(repo repository.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3) Room {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		s3:    s3,
	}
}

// priceOrder lists the cheapest rooms first with a stable tie-break on id.
func priceOrder(params gDto.QueryParams) gDto.QueryParams {
	params.SortBy = fmt.Sprintf("%s.%s", model.TableName, model.FieldPricePerNight)
	params.SortDir = gDto.SortDirAsc

	return params
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Room.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	exist, err := s.repo.Exist(ctx, roomNumberFilter(req.RoomNumber))
	if err != nil {
		log.Error().Err(err).Msg("failed to check room number")

		return res, fmt.Errorf("failed to check room number: %w", err)
	}

	if exist {
		return res, failure.Conflict(fmt.Sprintf("room number %s already exists", req.RoomNumber)) // nolint:wrapcheck
	}

	room := req.ToModel(user)

	if err = s.repo.Insert(ctx, room); err != nil {
		log.Error().Err(err).Msg("failed to create room")

		if isUniqueViolation(err) {
			return res, failure.Conflict(fmt.Sprintf("room number %s already exists", req.RoomNumber)) // nolint:wrapcheck
		}

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	res.FromModel(room)

	go s.invalidate(context.WithoutCancel(ctx), constant.Empty)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, listFilter dto.ListFilter) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Room.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	req = priceOrder(req)
	filter := listFilter.FilterGroup()
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	total, err := s.count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountRoom, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Featured(ctx context.Context) (res []dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Room.Featured")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheFeaturedRoom)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for featured rooms")

		return res, nil
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldIsAvailable, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldIsFeatured, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}

	models, err := s.repo.GetAll(ctx, priceOrder(gDto.QueryParams{Limit: featuredLimit}), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get featured rooms")

		return res, fmt.Errorf("failed to get featured rooms: %w", err)
	}

	res = dto.FromModels(models)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save featured rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Room.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if uuid.Validate(id) != nil {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	cacheKey := shared.BuildCacheKey(cacheGetRoom, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	room, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(room)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Room.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if req.RoomNumber != constant.Empty && req.RoomNumber != current.RoomNumber {
		exist, err := s.repo.Exist(ctx, roomNumberFilter(req.RoomNumber))
		if err != nil {
			log.Error().Err(err).Msg("failed to check room number")

			return res, fmt.Errorf("failed to check room number: %w", err)
		}

		if exist {
			return res, failure.Conflict(fmt.Sprintf("room number %s already exists", req.RoomNumber)) // nolint:wrapcheck
		}
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update room")

		return res, fmt.Errorf("failed to update room: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return s.reload(ctx, id)
}

// UploadImage stores the file and appends its public URL to the room's images.
func (s *serviceImpl) UploadImage(ctx context.Context, req dto.UploadImageRequest, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Room.UploadImage")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	objectName := uuid.NewString() + filepath.Ext(req.Image.Filename)
	contentType := req.Image.Header.Get(constant.RequestHeaderContentType)

	url, err := s.s3.Upload(ctx, model.EntityName, objectName, contentType, req.ImageFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload room image")

		return res, fmt.Errorf("failed to upload image: %w", err)
	}

	images := append(pq.StringArray{}, current.Images...)
	images = append(images, url)

	fields := shared.TransformFields(dto.UpdateRoomRequest{Images: images}, user)

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to attach room image")

		if delErr := s.s3.Delete(ctx, model.EntityName, objectName); delErr != nil {
			log.Error().Err(delErr).Str("object", objectName).Msg("failed to remove orphaned image")
		}

		return res, fmt.Errorf("failed to attach image: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return s.reload(ctx, id)
}

// RemoveImage detaches url from the room, then deletes the object when it lives in our bucket.
func (s *serviceImpl) RemoveImage(ctx context.Context, req dto.RemoveImageRequest, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Room.RemoveImage")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if !slices.Contains(current.Images, req.URL) {
		return res, failure.NotFound("image not found") // nolint:wrapcheck
	}

	images := pq.StringArray{}

	for _, image := range current.Images {
		if image != req.URL {
			images = append(images, image)
		}
	}

	fields := shared.TransformFields(dto.UpdateRoomRequest{Images: images}, user)

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to detach room image")

		return res, fmt.Errorf("failed to detach image: %w", err)
	}

	if objectName := s.s3.ObjectName(model.EntityName, req.URL); objectName != constant.Empty {
		if delErr := s.s3.Delete(ctx, model.EntityName, objectName); delErr != nil {
			log.Error().Err(delErr).Str("object", objectName).Msg("failed to delete room image")
		}
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return s.reload(ctx, id)
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Room, error) {
	if uuid.Validate(id) != nil {
		return model.Room{}, failure.NotFound("room not found") // nolint:wrapcheck
	}

	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, failure.NotFound("room not found") // nolint:wrapcheck
	}

	return room, nil
}

func (s *serviceImpl) reload(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	room, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(room)

	return res, nil
}

// invalidate drops every list cache and, when id is set, the cached room itself.
func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if id != constant.Empty {
		if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetRoom, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room cache")
		}
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllRoom)
	shared.InvalidateCaches(ctx, s.cache, cacheCountRoom)

	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheFeaturedRoom)); err != nil {
		log.Error().Err(err).Msg("failed to delete featured room cache")
	}
}

func roomNumberFilter(number string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldRoomNumber, Value: number, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == constant.PqErrorCodeUniqueViolation
}
