package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/internal/models"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/utils"
)

// SettingsHandler serves the singleton records: app settings, the user
// profile and the dashboard notes
type SettingsHandler struct {
	Store *store.Store
}

// GetSettings handles GET /api/settings
// @Summary Get app settings
// @Tags Settings
// @Produce json
// @Success 200 {object} models.AppSettings
// @Security BearerAuth
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, store.AppSettings.Get(h.Store), fiber.StatusOK)
}

// PutSettings handles PUT /api/settings
// @Summary Replace app settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param settings body models.AppSettings true "Settings"
// @Success 200 {object} utils.SuccessResponseStruct
// @Security BearerAuth
// @Router /settings [put]
func (h *SettingsHandler) PutSettings(c *fiber.Ctx) error {
	var settings models.AppSettings
	if err := parseBody(c, &settings); err != nil {
		return err
	}
	if err := store.AppSettings.Set(c.UserContext(), h.Store, settings); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "", h.Store.Version(store.AppSettings.Name()))
}

// GetProfile handles GET /api/profile
// @Summary Get the user profile
// @Tags Settings
// @Produce json
// @Success 200 {object} models.UserProfile
// @Security BearerAuth
// @Router /profile [get]
func (h *SettingsHandler) GetProfile(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, store.UserProfile.Get(h.Store), fiber.StatusOK)
}

// PutProfile handles PUT /api/profile. The role cannot be changed here.
// @Summary Update the user profile
// @Tags Settings
// @Accept json
// @Produce json
// @Param profile body models.UserProfile true "Profile"
// @Success 200 {object} utils.SuccessResponseStruct
// @Security BearerAuth
// @Router /profile [put]
func (h *SettingsHandler) PutProfile(c *fiber.Ctx) error {
	var profile models.UserProfile
	if err := parseBody(c, &profile); err != nil {
		return err
	}
	err := h.Store.Update(c.UserContext(), func(tx *store.Tx) error {
		current := store.UserProfile.GetIn(tx)
		profile.Key, profile.Role = current.Key, current.Role
		store.UserProfile.SetIn(tx, profile)
		return nil
	})
	if err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, profile.Key, h.Store.Version(store.UserProfile.Name()))
}

// GetNotes handles GET /api/notes
// @Summary Get the dashboard notes
// @Tags Settings
// @Produce json
// @Success 200 {object} models.DashboardNotes
// @Security BearerAuth
// @Router /notes [get]
func (h *SettingsHandler) GetNotes(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, store.DashboardNotes.Get(h.Store), fiber.StatusOK)
}

// PutNotes handles PUT /api/notes
// @Summary Replace the dashboard notes
// @Tags Settings
// @Accept json
// @Produce json
// @Param notes body models.DashboardNotes true "Notes"
// @Success 200 {object} utils.SuccessResponseStruct
// @Security BearerAuth
// @Router /notes [put]
func (h *SettingsHandler) PutNotes(c *fiber.Ctx) error {
	var notes models.DashboardNotes
	if err := parseBody(c, &notes); err != nil {
		return err
	}
	if err := store.DashboardNotes.Set(c.UserContext(), h.Store, notes); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "", h.Store.Version(store.DashboardNotes.Name()))
}
