package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/service"
)

// SearchDocuments godoc
// @Summary Search documents
// @Description Filters combine with AND; tags and meta.<key> values combine with OR among themselves.
// @Description Non-admin callers only ever see their own documents.
// @Tags documents
// @Produce json
// @Param filename query string false "filename substring"
// @Param content_type query string false "exact content type"
// @Param owner_id query string false "owner id (admin only)"
// @Param tags query string false "comma separated tags"
// @Param page query int false "page number" default(1)
// @Param limit query int false "page size" default(20)
// @Param sort query string false "filename, size or created_at" default(created_at)
// @Param order query string false "asc or desc" default(desc)
// @Success 200 {object} service.SearchResult
// @Security BearerAuth
// @Router /documents/search [get]
func SearchDocuments(searchSvc service.SearchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}

		page, err := queryInt(c, "page")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		limit, err := queryInt(c, "limit")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		criteria := service.SearchCriteria{
			Filename:    c.Query("filename"),
			ContentType: c.Query("content_type"),
			OwnerID:     c.Query("owner_id"),
		}
		// blank terms are kept; the service gates on them
		if raw := c.Query("tags"); raw != "" {
			criteria.Tags = strings.Split(raw, ",")
		}
		for k, v := range c.Queries() {
			key, ok := strings.CutPrefix(k, metadataPrefix)
			if !ok {
				continue
			}
			if criteria.Metadata == nil {
				criteria.Metadata = make(map[string]string)
			}
			criteria.Metadata[key] = v
		}
		if !p.Elevated() {
			criteria.OwnerID = p.UserID.String()
		}

		res, err := searchSvc.Search(c.UserContext(), criteria,
			service.Pagination{Page: page, Limit: limit},
			service.Sort{Field: c.Query("sort"), Order: c.Query("order")},
		)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// queryInt parses an optional integer query parameter; absent means zero.
func queryInt(c *fiber.Ctx, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
