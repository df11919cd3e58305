package dashboard

import (
	"net/http"

	"lodge/infras/otel"
	"lodge/internal/domains/dashboard/service"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Dashboard
	otel    otel.Otel
}

func New(service service.Dashboard, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/admin", func(routerGroup chi.Router) {
		routerGroup.Get("/dashboard", handler.GetDashboard)
		routerGroup.Get("/guests", handler.GetGuests)
	})
}

// GetDashboard returns today's operational counters and recent revenue.
// @Summary Dashboard statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Data[dto.DashboardResponse] "Dashboard"
// @Failure 500 {object} response.Error
// @Router /v1/admin/dashboard [get]
// @Security BearerAuth
func (handler *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDashboard")
	defer scope.End()

	stats, err := handler.service.Stats(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get dashboard")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, stats)
}

// GetGuests lists guests aggregated by email, most recent stay first.
// @Summary Guest list
// @Tags Admin
// @Produce json
// @Param page query integer false "Page"
// @Param limit query integer false "Page size"
// @Success 200 {object} response.Data[dto.GetGuestsResponse] "Guests"
// @Failure 500 {object} response.Error
// @Router /v1/admin/guests [get]
// @Security BearerAuth
func (handler *Handler) GetGuests(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetGuests")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	guests, err := handler.service.Guests(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get guests")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, guests)
}
