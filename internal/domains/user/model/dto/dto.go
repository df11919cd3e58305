package dto

import (
	"net/http"

	"lodge/internal/domains/user/model"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/timezone"
)

const (
	QueryParamEmail  = "email"
	QueryParamLevel  = "level"
	QueryParamActive = "active"
)

type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Level     string  `json:"level"`
	FullName  *string `json:"full_name,omitempty"`
	LastLogin *string `json:"last_login,omitempty"`
	Active    bool    `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Email = model.Email
	r.Level = model.Level
	r.FullName = model.FullName
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)

	if model.LastLogin != nil {
		lastLogin := timezone.Format(*model.LastLogin, constant.DateFormat)
		r.LastLogin = &lastLogin
	}
}

// UpdateUserRequest changes a staff account. Nil fields are left untouched.
type UpdateUserRequest struct {
	Level    *string `db:"level"     json:"level,omitempty"     validate:"omitempty,oneof=admin staff"`
	FullName *string `db:"full_name" json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Active   *bool   `db:"active"    json:"active,omitempty"`
}

// Demotes reports whether the change drops admin rights or blocks login.
func (r UpdateUserRequest) Demotes() bool {
	return (r.Level != nil && *r.Level != constant.RoleAdmin) || (r.Active != nil && !*r.Active)
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}

// ListFilter narrows the staff list by exact email, level and active flag.
type ListFilter struct {
	Email  string
	Level  string
	Active *bool
}

func (l *ListFilter) FromRequest(r *http.Request) {
	query := r.URL.Query()

	l.Email = query.Get(QueryParamEmail)
	l.Level = query.Get(QueryParamLevel)
	l.Active = shared.ConvertStringToBool(query.Get(QueryParamActive))
}

func (l *ListFilter) FilterGroup() gDto.FilterGroup {
	filters := []any{}

	if l.Email != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.FieldEmail, Value: l.Email, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if l.Level != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.FieldLevel, Value: l.Level, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if l.Active != nil {
		filters = append(filters, gDto.Filter{Field: model.FieldActive, Value: *l.Active, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	return gDto.FilterGroup{Filters: filters, Operator: gDto.FilterGroupOperatorAnd}
}
