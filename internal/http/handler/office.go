package handler

import (
	"github.com/gofiber/fiber/v2"

	"docmanager/internal/service"
)

// ListOffices returns every office ordered by name.
//
//	@Summary	List offices
//	@Tags		offices
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	model.Office
//	@Router		/offices [get]
func ListOffices(svc service.OfficeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offices, err := svc.List(c.UserContext())
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(offices)
	}
}

// GetOffice returns one office.
func GetOffice(svc service.OfficeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		o, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(o)
	}
}

// CreateOffice adds an office.
//
//	@Summary	Create an office
//	@Tags		offices
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		service.OfficeInput	true	"office"
//	@Success	201		{object}	model.Office
//	@Failure	400		{object}	errorPayload
//	@Router		/offices [post]
func CreateOffice(svc service.OfficeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.OfficeInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		o, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return mapError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(o)
	}
}

// UpdateOffice replaces an office's name and description.
func UpdateOffice(svc service.OfficeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in service.OfficeInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		o, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(o)
	}
}

// DeleteOffice removes an office. Its documents stay, without an office.
//
//	@Summary	Delete an office
//	@Tags		offices
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"office id"
//	@Success	200	{object}	map[string]int64
//	@Failure	404	{object}	errorPayload
//	@Router		/offices/{id} [delete]
func DeleteOffice(svc service.OfficeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		detached, err := svc.Delete(c.UserContext(), id)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(fiber.Map{"detached_documents": detached})
	}
}
