package dto

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lodge/internal/domains/booking/availability"
	"lodge/internal/domains/booking/model"
	"lodge/internal/domains/booking/pricing"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	gModel "lodge/shared/model"
	"lodge/shared/money"
	"lodge/shared/timezone"

	"github.com/google/uuid"
)

const (
	defaultAdults   = 2
	defaultChildren = 0

	defaultSearchAdults = 1
)

const (
	QueryParamStatus    = "status"
	QueryParamEmail     = "email"
	QueryParamStartDate = "start_date"
	QueryParamEndDate   = "end_date"
	QueryParamRoomID    = "room_id"

	QueryParamCheckIn  = "check_in"
	QueryParamCheckOut = "check_out"
	QueryParamAdults   = "adults"
	QueryParamChildren = "children"
	QueryParamType     = "type"
)

// CreateBookingRequest is the guest-facing booking form. TotalNights, RoomPrice and TotalPrice
// are display hints from the client and never persisted. Keys may be sent in camelCase
// (roomId, checkIn, paymentMethod); the snake_case key wins when both are present.
type CreateBookingRequest struct {
	RoomID          string        `json:"room_id"          validate:"required,uuid"`
	CheckIn         string        `json:"check_in"         validate:"required,datetime=2006-01-02"`
	CheckOut        string        `json:"check_out"        validate:"required,datetime=2006-01-02"`
	Adults          *int          `json:"adults"           validate:"omitempty,gte=1,lte=20"`
	Children        *int          `json:"children"         validate:"omitempty,gte=0,lte=20"`
	Name            string        `json:"name"             validate:"required,max=100"`
	Email           string        `json:"email"            validate:"required,email,max=100"`
	Phone           string        `json:"phone"            validate:"required,max=30"`
	Country         string        `json:"country"          validate:"omitempty,max=100"`
	Address         string        `json:"address"          validate:"omitempty,max=255"`
	SpecialRequests string        `json:"special_requests" validate:"omitempty,max=2000"`
	PaymentMethod   string        `json:"payment_method"   validate:"required,oneof=credit_card paypal bank_transfer cash pay_at_hotel"`
	TotalNights     *NightsHint   `json:"total_nights"`
	RoomPrice       *money.Hint   `json:"room_price"`
	TotalPrice      *money.Hint   `json:"total_price"`
}

func (c *CreateBookingRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err //nolint:wrapcheck
	}

	normalized := make(map[string]json.RawMessage, len(fields))

	for key, value := range fields {
		if shared.SnakeCase(key) == key {
			normalized[key] = value
		}
	}

	for key, value := range fields {
		snake := shared.SnakeCase(key)
		if _, taken := normalized[snake]; !taken {
			normalized[snake] = value
		}
	}

	payload, err := json.Marshal(normalized)
	if err != nil {
		return err //nolint:wrapcheck
	}

	type plain CreateBookingRequest

	return json.Unmarshal(payload, (*plain)(c)) //nolint:wrapcheck
}

// NightsHint is the client's night count. Like money.Hint it never fails to decode.
type NightsHint struct {
	Nights int
	Valid  bool
}

func (n *NightsHint) UnmarshalJSON(data []byte) error {
	*n = NightsHint{}

	amount, err := money.Round(strings.Trim(string(data), `"`))
	if err == nil && amount.Cents()%100 == 0 {
		n.Nights, n.Valid = int(amount.Cents()/100), true
	}

	return nil
}

// Span parses the requested dates in the application timezone.
func (c *CreateBookingRequest) Span() (availability.Span, error) {
	return ParseSpan(c.CheckIn, c.CheckOut)
}

// Guests returns adults and children with their defaults applied.
func (c *CreateBookingRequest) Guests() (adults, children int) {
	adults, children = defaultAdults, defaultChildren

	if c.Adults != nil {
		adults = *c.Adults
	}

	if c.Children != nil {
		children = *c.Children
	}

	return adults, children
}

func (c *CreateBookingRequest) ToModel(roomID string, span availability.Span, quote pricing.Quote, reference, user string) model.Booking {
	adults, children := c.Guests()

	return model.Booking{
		ID:               uuid.NewString(),
		BookingReference: reference,
		RoomID:           roomID,
		GuestName:        strings.TrimSpace(c.Name),
		GuestEmail:       strings.ToLower(strings.TrimSpace(c.Email)),
		GuestPhone:       strings.TrimSpace(c.Phone),
		GuestCountry:     c.Country,
		GuestAddress:     c.Address,
		CheckIn:          span.CheckIn,
		CheckOut:         span.CheckOut,
		Adults:           adults,
		Children:         children,
		TotalNights:      quote.Nights,
		RoomPrice:        quote.RoomPrice,
		Subtotal:         quote.Subtotal,
		TaxAmount:        quote.Tax,
		TotalPrice:       quote.Total,
		PaymentMethod:    c.PaymentMethod,
		Status:           model.StatusPending,
		SpecialRequests:  c.SpecialRequests,
		Metadata:         gModel.NewMetadata(user, timezone.Now()),
	}
}

// HintMismatches names the client hints that disagree with the server quote.
func (c *CreateBookingRequest) HintMismatches(quote pricing.Quote) []string {
	mismatches := []string{}

	if c.TotalNights != nil && (!c.TotalNights.Valid || c.TotalNights.Nights != quote.Nights) {
		mismatches = append(mismatches, model.FieldTotalNights)
	}

	if c.RoomPrice != nil && !c.RoomPrice.Equal(quote.RoomPrice) {
		mismatches = append(mismatches, model.FieldRoomPrice)
	}

	if c.TotalPrice != nil && !c.TotalPrice.Equal(quote.Total) {
		mismatches = append(mismatches, model.FieldTotalPrice)
	}

	return mismatches
}

type UpdateStatusRequest struct {
	Status string `db:"status" json:"status" validate:"required,oneof=pending confirmed checked_in checked_out completed cancelled"`
}

type BookingResponse struct {
	ID               string       `json:"id"`
	BookingReference string       `json:"booking_reference"`
	RoomID           string       `json:"room_id"`
	GuestName        string       `json:"guest_name"`
	GuestEmail       string       `json:"guest_email"`
	GuestPhone       string       `json:"guest_phone"`
	GuestCountry     string       `json:"guest_country"`
	GuestAddress     string       `json:"guest_address"`
	CheckIn          string       `json:"check_in"`
	CheckOut         string       `json:"check_out"`
	Adults           int          `json:"adults"`
	Children         int          `json:"children"`
	TotalNights      int          `json:"total_nights"`
	RoomPrice        money.Amount `json:"room_price"`
	RoomPriceCents   int64        `json:"room_price_cents"`
	Subtotal         money.Amount `json:"subtotal"`
	SubtotalCents    int64        `json:"subtotal_cents"`
	TaxAmount        money.Amount `json:"tax_amount"`
	TaxAmountCents   int64        `json:"tax_amount_cents"`
	TotalPrice       money.Amount `json:"total_price"`
	TotalPriceCents  int64        `json:"total_price_cents"`
	PaymentMethod    string       `json:"payment_method"`
	Status           string       `json:"status"`
	SpecialRequests  string       `json:"special_requests"`
	gDto.Metadata
}

func (b *BookingResponse) FromModel(model model.Booking) {
	b.ID = model.ID
	b.BookingReference = model.BookingReference
	b.RoomID = model.RoomID
	b.GuestName = model.GuestName
	b.GuestEmail = model.GuestEmail
	b.GuestPhone = model.GuestPhone
	b.GuestCountry = model.GuestCountry
	b.GuestAddress = model.GuestAddress
	b.CheckIn = model.CheckIn.Format(constant.DateOnlyFormat)
	b.CheckOut = model.CheckOut.Format(constant.DateOnlyFormat)
	b.Adults = model.Adults
	b.Children = model.Children
	b.TotalNights = model.TotalNights
	b.RoomPrice = model.RoomPrice
	b.RoomPriceCents = model.RoomPrice.Cents()
	b.Subtotal = model.Subtotal
	b.SubtotalCents = model.Subtotal.Cents()
	b.TaxAmount = model.TaxAmount
	b.TaxAmountCents = model.TaxAmount.Cents()
	b.TotalPrice = model.TotalPrice
	b.TotalPriceCents = model.TotalPrice.Cents()
	b.PaymentMethod = model.PaymentMethod
	b.Status = model.Status
	b.SpecialRequests = model.SpecialRequests
	b.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (g *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	g.TotalData = totalData
	g.TotalPage = shared.CalculateTotalPage(totalData, limit)
	g.Bookings = make([]BookingResponse, len(models))

	for i, mod := range models {
		g.Bookings[i].FromModel(mod)
	}
}

// ListFilter narrows the staff booking list.
type ListFilter struct {
	Status    string
	Email     string
	RoomID    string
	StartDate *time.Time
	EndDate   *time.Time
}

func (l *ListFilter) FromRequest(r *http.Request) error {
	query := r.URL.Query()

	l.Status = query.Get(QueryParamStatus)
	l.Email = strings.ToLower(strings.TrimSpace(query.Get(QueryParamEmail)))
	l.RoomID = query.Get(QueryParamRoomID)

	if l.Status != constant.Empty && !model.IsStatus(l.Status) {
		return failure.BadRequestFromString("status must be one of pending confirmed checked_in checked_out completed cancelled") //nolint:wrapcheck
	}

	for param, target := range map[string]**time.Time{
		QueryParamStartDate: &l.StartDate,
		QueryParamEndDate:   &l.EndDate,
	} {
		raw := query.Get(param)
		if raw == constant.Empty {
			continue
		}

		date, err := timezone.ParseDate(raw)
		if err != nil {
			return failure.BadRequestFromString(param + " must use the format 2006-01-02") //nolint:wrapcheck
		}

		date = availability.Date(date)
		*target = &date
	}

	return nil
}

func (l *ListFilter) FilterGroup() gDto.FilterGroup {
	filters := []any{}

	if l.Status != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.FieldStatus, Value: l.Status, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if l.Email != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.FieldGuestEmail, Value: l.Email, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if l.RoomID != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.FieldRoomID, Value: l.RoomID, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if l.StartDate != nil {
		filters = append(filters, gDto.Filter{Field: model.FieldCheckIn, ArgName: QueryParamStartDate, Value: l.StartDate.Format(constant.DateOnlyFormat), Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName})
	}

	if l.EndDate != nil {
		filters = append(filters, gDto.Filter{Field: model.FieldCheckOut, ArgName: QueryParamEndDate, Value: l.EndDate.Format(constant.DateOnlyFormat), Operator: gDto.FilterOperatorLessEq, Table: model.TableName})
	}

	return gDto.FilterGroup{Filters: filters, Operator: gDto.FilterGroupOperatorAnd}
}

// AvailabilityQuery is the room search used by the booking form.
type AvailabilityQuery struct {
	Span     availability.Span
	Adults   int
	Children int
	RoomType string
}

func (a *AvailabilityQuery) FromRequest(r *http.Request) error {
	query := r.URL.Query()

	checkIn := firstOf(query, QueryParamCheckIn, "checkIn")
	checkOut := firstOf(query, QueryParamCheckOut, "checkOut")

	missing := []string{}

	if checkIn == constant.Empty {
		missing = append(missing, QueryParamCheckIn)
	}

	if checkOut == constant.Empty {
		missing = append(missing, QueryParamCheckOut)
	}

	if len(missing) > 0 {
		return failure.MissingFields(missing...) //nolint:wrapcheck
	}

	span, err := ParseSpan(checkIn, checkOut)
	if err != nil {
		return err
	}

	a.Span = span
	a.Adults = defaultSearchAdults
	a.RoomType = query.Get(QueryParamType)

	if adults := shared.ConvertStringToInt(query.Get(QueryParamAdults)); adults != nil {
		a.Adults = *adults
	}

	if children := shared.ConvertStringToInt(query.Get(QueryParamChildren)); children != nil {
		a.Children = *children
	}

	if a.Adults < 1 || a.Children < 0 {
		return failure.BadRequestFromString("adults must be at least 1 and children must not be negative") //nolint:wrapcheck
	}

	return nil
}

func firstOf(query url.Values, keys ...string) string {
	for _, key := range keys {
		if value := query.Get(key); value != constant.Empty {
			return value
		}
	}

	return constant.Empty
}

// Guests is the headcount a room must hold.
func (a *AvailabilityQuery) Guests() int {
	return a.Adults + a.Children
}

// ParseSpan reads two YYYY-MM-DD dates and rejects empty or inverted ranges.
func ParseSpan(checkIn, checkOut string) (availability.Span, error) {
	in, err := timezone.ParseDate(checkIn)
	if err != nil {
		return availability.Span{}, failure.InvalidDateRange("check_in must use the format 2006-01-02") //nolint:wrapcheck
	}

	out, err := timezone.ParseDate(checkOut)
	if err != nil {
		return availability.Span{}, failure.InvalidDateRange("check_out must use the format 2006-01-02") //nolint:wrapcheck
	}

	span, err := availability.NewSpan(in, out)
	if err != nil {
		return span, failure.InvalidDateRange(err.Error()) //nolint:wrapcheck
	}

	return span, nil
}
