package user

import (
	"context"
	"net/http"

	"lodge/infras/otel"
	"lodge/internal/domains/user/model"
	"lodge/internal/domains/user/model/dto"
	"lodge/internal/domains/user/service"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/validator"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.User
	otel    otel.Otel
}

func New(service service.User, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) begin(r *http.Request, action string) (context.Context, otel.Scope) {
	return handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".staff."+action)
}

func fail(w http.ResponseWriter, scope otel.Scope, err error) {
	scope.TraceError(err)
	log.Warn().Err(err).Msg("staff request failed")
	response.WithError(w, err)
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/admin/staff", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.List)
		routerGroup.Get("/{id}", handler.Get)
		routerGroup.Patch("/{id}", handler.Update)
		routerGroup.Delete("/{id}", handler.Deactivate)
	})
}

// List lists staff accounts.
// @Summary List staff accounts
// @Description Paginated list of back-office accounts.
// @Tags Staff
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param email query string false "Filter by email"
// @Param level query string false "Filter by level (admin, staff)"
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} response.Data[dto.GetUsersResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/staff [get]
// @Security BearerAuth
func (handler *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.begin(r, "List")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	if err := queryParams.Sortable(model.TableName, model.FieldEmail, model.FieldLevel, model.FieldLastLogin, constant.FieldCreatedAt); err != nil {
		fail(w, scope, err)

		return
	}

	filter := dto.ListFilter{}
	filter.FromRequest(r)

	page, err := handler.service.GetAll(ctx, queryParams, filter.FilterGroup())
	if err != nil {
		fail(w, scope, err)

		return
	}

	scope.AddEvent("Staff listed")

	response.WithJSON(w, http.StatusOK, page)
}

// Get retrieves a staff account.
// @Summary Get a staff account
// @Tags Staff
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Data[dto.UserResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/staff/{id} [get]
// @Security BearerAuth
func (handler *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.begin(r, "Get")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	account, err := handler.service.Get(ctx, id)
	if err != nil {
		fail(w, scope, err)

		return
	}

	scope.AddEvent("Staff fetched")

	response.WithJSON(w, http.StatusOK, account)
}

// Update changes the name, level or active flag of a staff account.
// @Summary Update a staff account
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateUserRequest true "Update User Request"
// @Success 200 {object} response.Message "User updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/staff/{id} [patch]
// @Security BearerAuth
func (handler *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.begin(r, "Update")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateUserRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		fail(w, scope, err)

		return
	}

	scope.AddEvent("Staff updated")

	response.WithMessage(w, http.StatusOK, "Staff account updated")
}

// Deactivate blocks an account from signing in.
// @Summary Deactivate a staff account
// @Tags Staff
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/staff/{id} [delete]
// @Security BearerAuth
func (handler *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.begin(r, "Deactivate")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Deactivate(ctx, id); err != nil {
		fail(w, scope, err)

		return
	}

	scope.AddEvent("Staff deactivated")

	response.WithMessage(w, http.StatusOK, "Staff account deactivated")
}
