package handler

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/model"
	"docvault/internal/service"
)

type grantRequest struct {
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
}

type updateGrantRequest struct {
	Permission string `json:"permission"`
}

type grantList struct {
	Data []model.PermissionGrant `json:"data"`
}

// grantTarget parses the :id and :userId path parameters.
func grantTarget(c *fiber.Ctx) (model.DocumentID, model.UserID, bool) {
	docID, err := model.ParseDocumentID(c.Params("id"))
	if err != nil {
		return "", "", false
	}
	userID, err := model.ParseUserID(c.Params("userId"))
	if err != nil {
		return "", "", false
	}
	return docID, userID, true
}

// ListPermissions godoc
// @Summary List grants on a document
// @Tags permissions
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} grantList
// @Security BearerAuth
// @Router /documents/{id}/permissions [get]
func ListPermissions(permSvc service.PermissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		docID, err := model.ParseDocumentID(c.Params("id"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		grants, err := permSvc.ListForDocument(c.UserContext(), p, docID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(grantList{Data: grants})
	}
}

// GrantPermission godoc
// @Summary Grant a user access to a document
// @Tags permissions
// @Accept json
// @Produce json
// @Param id path string true "document id"
// @Param body body grantRequest true "grantee and level"
// @Success 201 {object} model.PermissionGrant
// @Security BearerAuth
// @Router /documents/{id}/permissions [post]
func GrantPermission(permSvc service.PermissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		docID, err := model.ParseDocumentID(c.Params("id"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req grantRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		grantee, err := model.ParseUserID(req.UserID)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid user id format")
		}
		level, err := model.ParsePermissionLevel(req.Permission)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PERMISSION", "permission must be read, write, delete or admin")
		}

		g, err := permSvc.Grant(c.UserContext(), p, docID, grantee, level)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	}
}

// UpdatePermission godoc
// @Summary Change the level of an existing grant
// @Tags permissions
// @Accept json
// @Produce json
// @Param id path string true "document id"
// @Param userId path string true "grantee id"
// @Param body body updateGrantRequest true "new level"
// @Success 200 {object} model.PermissionGrant
// @Security BearerAuth
// @Router /documents/{id}/permissions/{userId} [patch]
func UpdatePermission(permSvc service.PermissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		docID, userID, ok := grantTarget(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateGrantRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		level, err := model.ParsePermissionLevel(req.Permission)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PERMISSION", "permission must be read, write, delete or admin")
		}

		g, err := permSvc.UpdateLevel(c.UserContext(), p, docID, userID, level)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(g)
	}
}

// RevokePermission godoc
// @Summary Revoke a grant
// @Tags permissions
// @Param id path string true "document id"
// @Param userId path string true "grantee id"
// @Success 204
// @Security BearerAuth
// @Router /documents/{id}/permissions/{userId} [delete]
func RevokePermission(permSvc service.PermissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		docID, userID, ok := grantTarget(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := permSvc.Revoke(c.UserContext(), p, docID, userID); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// MyPermissions godoc
// @Summary List grants received by the caller
// @Tags permissions
// @Produce json
// @Success 200 {object} grantList
// @Security BearerAuth
// @Router /permissions/me [get]
func MyPermissions(permSvc service.PermissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		grants, err := permSvc.ListForUser(c.UserContext(), p.UserID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(grantList{Data: grants})
	}
}
