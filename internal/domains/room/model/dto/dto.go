package dto

import (
	"mime/multipart"
	"net/http"

	"lodge/internal/domains/room/model"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	gModel "lodge/shared/model"
	"lodge/shared/money"
	"lodge/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	QueryParamType     = "type"
	QueryParamCapacity = "capacity"
	QueryParamMinPrice = "min_price"
	QueryParamMaxPrice = "max_price"

	argMinPrice = "min_price"
	argMaxPrice = "max_price"
)

type CreateRoomRequest struct {
	RoomNumber    string       `json:"room_number"     validate:"required,max=20"`
	Title         string       `json:"title"           validate:"required,max=100"`
	Description   string       `json:"description"     validate:"omitempty,max=2000"`
	RoomType      string       `json:"room_type"       validate:"required,oneof=standard deluxe suite family presidential"`
	PricePerNight money.Amount `json:"price_per_night" validate:"required,gt=0"`
	Capacity      int          `json:"capacity"        validate:"required,gt=0"`
	Size          string       `json:"size"            validate:"omitempty,max=50"`
	Images        []string     `json:"images"          validate:"omitempty,dive,url"`
	Amenities     []string     `json:"amenities"       validate:"omitempty,dive,max=100"`
	IsAvailable   *bool        `json:"is_available"`
	IsFeatured    *bool        `json:"is_featured"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	available := true
	if c.IsAvailable != nil {
		available = *c.IsAvailable
	}

	featured := false
	if c.IsFeatured != nil {
		featured = *c.IsFeatured
	}

	return model.Room{
		ID:            uuid.NewString(),
		RoomNumber:    c.RoomNumber,
		Title:         c.Title,
		Description:   c.Description,
		RoomType:      c.RoomType,
		PricePerNight: c.PricePerNight,
		Capacity:      c.Capacity,
		Size:          c.Size,
		Images:        pq.StringArray(nonNil(c.Images)),
		Amenities:     pq.StringArray(nonNil(c.Amenities)),
		IsAvailable:   available,
		IsFeatured:    featured,
		Metadata:      gModel.NewMetadata(user, timezone.Now()),
	}
}

// UpdateRoomRequest only touches fields present in the body.
type UpdateRoomRequest struct {
	RoomNumber    string         `db:"room_number"     json:"room_number"     validate:"omitempty,max=20"`
	Title         string         `db:"title"           json:"title"           validate:"omitempty,max=100"`
	Description   string         `db:"description"     json:"description"     validate:"omitempty,max=2000"`
	RoomType      string         `db:"room_type"       json:"room_type"       validate:"omitempty,oneof=standard deluxe suite family presidential"`
	PricePerNight *money.Amount  `db:"price_per_night" json:"price_per_night" validate:"omitempty,gt=0"`
	Capacity      *int           `db:"capacity"        json:"capacity"        validate:"omitempty,gt=0"`
	Size          string         `db:"size"            json:"size"            validate:"omitempty,max=50"`
	Images        pq.StringArray `db:"images"          json:"images"          validate:"omitempty,dive,url"`
	Amenities     pq.StringArray `db:"amenities"       json:"amenities"       validate:"omitempty,dive,max=100"`
	IsAvailable   *bool          `db:"is_available"    json:"is_available"`
	IsFeatured    *bool          `db:"is_featured"     json:"is_featured"`
}

type UploadImageRequest struct {
	Image     *multipart.FileHeader `validate:"required,mimetypes=image/png image/jpg image/jpeg image/webp,maxfilesize=2"`
	ImageFile multipart.File        `validate:"-"`
}

type RemoveImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type RoomResponse struct {
	ID                 string       `json:"id"`
	RoomNumber         string       `json:"room_number"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	RoomType           string       `json:"room_type"`
	PricePerNight      money.Amount `json:"price_per_night"`
	PricePerNightCents int64        `json:"price_per_night_cents"`
	Capacity           int          `json:"capacity"`
	Size               string       `json:"size"`
	Images             []string     `json:"images"`
	Amenities          []string     `json:"amenities"`
	IsAvailable        bool         `json:"is_available"`
	IsFeatured         bool         `json:"is_featured"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.RoomNumber = model.RoomNumber
	r.Title = model.Title
	r.Description = model.Description
	r.RoomType = model.RoomType
	r.PricePerNight = model.PricePerNight
	r.PricePerNightCents = model.PricePerNight.Cents()
	r.Capacity = model.Capacity
	r.Size = model.Size
	r.Images = nonNil(model.Images)
	r.Amenities = nonNil(model.Amenities)
	r.IsAvailable = model.IsAvailable
	r.IsFeatured = model.IsFeatured
	r.Metadata.FromModel(model.Metadata)
}

func FromModels(models []model.Room) []RoomResponse {
	rooms := make([]RoomResponse, len(models))
	for i, mod := range models {
		rooms[i].FromModel(mod)
	}

	return rooms
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)
	r.Rooms = FromModels(models)
}

// ListFilter is the public catalogue query: only enabled rooms, narrowed by the optional parameters.
type ListFilter struct {
	RoomType string
	Capacity *int
	MinPrice *money.Amount
	MaxPrice *money.Amount
}

func (l *ListFilter) FromRequest(r *http.Request) error {
	query := r.URL.Query()

	l.RoomType = query.Get(QueryParamType)
	l.Capacity = shared.ConvertStringToInt(query.Get(QueryParamCapacity))

	for param, target := range map[string]**money.Amount{
		QueryParamMinPrice: &l.MinPrice,
		QueryParamMaxPrice: &l.MaxPrice,
	} {
		raw := query.Get(param)
		if raw == constant.Empty {
			continue
		}

		amount, err := money.Parse(raw)
		if err != nil {
			return failure.BadRequestFromString(param + " must be a decimal amount such as 80.00") //nolint:wrapcheck
		}

		*target = &amount
	}

	return nil
}

func (l *ListFilter) FilterGroup() gDto.FilterGroup {
	filters := []any{
		gDto.Filter{Field: model.FieldIsAvailable, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	}

	if l.RoomType != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.FieldRoomType, Value: l.RoomType, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if l.Capacity != nil {
		filters = append(filters, gDto.Filter{Field: model.FieldCapacity, Value: *l.Capacity, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName})
	}

	if l.MinPrice != nil {
		filters = append(filters, gDto.Filter{Field: model.FieldPricePerNight, ArgName: argMinPrice, Value: l.MinPrice.Cents(), Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName})
	}

	if l.MaxPrice != nil {
		filters = append(filters, gDto.Filter{Field: model.FieldPricePerNight, ArgName: argMaxPrice, Value: l.MaxPrice.Cents(), Operator: gDto.FilterOperatorLessEq, Table: model.TableName})
	}

	return gDto.FilterGroup{Filters: filters, Operator: gDto.FilterGroupOperatorAnd}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
