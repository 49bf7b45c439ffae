package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/internal/middleware"
	"github.com/localnerve/crmdb/internal/models"
	"github.com/localnerve/crmdb/internal/permissions"
	"github.com/localnerve/crmdb/internal/services"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/types"
	"github.com/localnerve/crmdb/internal/utils"
)

// Nearby search defaults, in meters and results
const (
	defaultNearbyRadius = 5000
	defaultNearbyLimit  = 10
	maxNearbyLimit      = 100
)

// WorkflowHandler serves the routes that span collections: conversions,
// the dashboard, view logs and nearby search
type WorkflowHandler struct {
	Store     *store.Store
	Evaluator permissions.Evaluator
	Clock     Clock
}

// ConvertInquiry handles POST /api/inquiries/:key/convert
// @Summary Convert an inquiry into a deal
// @Description Create a Qualified deal from the inquiry and close the inquiry
// @Tags Workflow
// @Produce json
// @Param key path string true "Inquiry key"
// @Success 201 {object} models.Deal
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /inquiries/{key}/convert [post]
func (h *WorkflowHandler) ConvertInquiry(c *fiber.Ctx) error {
	key := c.Params("key")
	deal, res, err := services.ConvertInquiry(c.UserContext(), h.Store, key)
	if err != nil {
		return err
	}
	if res == store.NotFound {
		return utils.RecordNotFoundResponse(c, store.Inquiries.Name(), key)
	}
	return c.Status(fiber.StatusCreated).JSON(deal)
}

// ConvertDeal handles POST /api/deals/:key/convert
// @Summary Convert a deal into a booking
// @Description Create a confirmed booking with a ten percent token amount and mark the deal Closed Won
// @Tags Workflow
// @Produce json
// @Param key path string true "Deal key"
// @Success 201 {object} models.Booking
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /deals/{key}/convert [post]
func (h *WorkflowHandler) ConvertDeal(c *fiber.Ctx) error {
	key := c.Params("key")
	booking, res, err := services.ConvertDeal(c.UserContext(), h.Store, key, today(c, h.Clock))
	if err != nil {
		return err
	}
	if res == store.NotFound {
		return utils.RecordNotFoundResponse(c, store.Deals.Name(), key)
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

// Dashboard handles GET /api/dashboard
// @Summary Dashboard summary
// @Description Sections the role may not view are omitted
// @Tags Workflow
// @Produce json
// @Success 200 {object} services.Dashboard
// @Security BearerAuth
// @Router /dashboard [get]
func (h *WorkflowHandler) Dashboard(c *fiber.Ctx) error {
	var name string
	if claims := middleware.Claims(c); claims != nil {
		name = claims.Name
	}
	return c.Status(fiber.StatusOK).JSON(
		services.BuildDashboard(h.Store, h.Evaluator, roleOf(c), name, today(c, h.Clock)),
	)
}

// Views handles GET /api/views/:log
// @Summary Recently viewed records
// @Tags Workflow
// @Produce json
// @Param log path string true "viewedProperties or viewedInquiries"
// @Success 200 {array} models.ViewLog
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /views/{log} [get]
func (h *WorkflowHandler) Views(c *fiber.Ctx) error {
	var (
		log    *store.Collection[models.ViewLog]
		module string
	)
	switch c.Params("log") {
	case store.ViewedProperties.Name():
		log, module = store.ViewedProperties, permissions.Properties
	case store.ViewedInquiries.Name():
		log, module = store.ViewedInquiries, permissions.Inquiries
	default:
		return utils.NotFoundResponse(c, "View log '"+c.Params("log")+"' not found")
	}

	if !h.Evaluator.Can(store.Permissions.Get(h.Store), roleOf(c), module, permissions.View) {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: "Role may not view " + module,
			Type:    "data.authorization." + module,
		}
	}
	return c.Status(fiber.StatusOK).JSON(log.List(h.Store))
}

// Nearby handles GET /api/properties/nearby?lat=&lng=&radius=&limit=
// @Summary Properties near a point
// @Description Properties with coordinates within radius meters, nearest first
// @Tags Workflow
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius query number false "Radius in meters (default 5000)"
// @Param limit query int false "Maximum results (default 10)"
// @Success 200 {array} services.Nearby
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties/nearby [get]
func (h *WorkflowHandler) Nearby(c *fiber.Ctx) error {
	invalid := func(msg string) error {
		return &types.CustomError{Code: fiber.StatusBadRequest, Message: msg, Type: "data.validation.input"}
	}

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	center := models.GeoPoint{Lat: lat, Lng: lng}
	if errLat != nil || errLng != nil || !services.ValidPoint(center) {
		return invalid("lat and lng must be a valid coordinate")
	}

	radius := float64(defaultNearbyRadius)
	if raw := c.Query("radius"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r <= 0 {
			return invalid("radius must be a positive number of meters")
		}
		radius = r
	}

	limit := c.QueryInt("limit", defaultNearbyLimit)
	if limit <= 0 || limit > maxNearbyLimit {
		return invalid("limit must be between 1 and 100")
	}

	return c.Status(fiber.StatusOK).JSON(services.NearbyProperties(h.Store, center, radius, limit))
}
