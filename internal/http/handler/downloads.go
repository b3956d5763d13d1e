package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/model"
	"docvault/internal/service"
)

type downloadTokenResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	DownloadURL string    `json:"download_url"`
}

type tokenInfoResponse struct {
	DocumentID       model.DocumentID `json:"document_id"`
	OriginalFilename string           `json:"original_filename"`
	ContentType      string           `json:"content_type"`
	Size             int64            `json:"size"`
	ExpiresAt        time.Time        `json:"expires_at"`
}

type cleanupResponse struct {
	Removed int64 `json:"removed"`
}

// IssueDownloadToken godoc
// @Summary Create a single-use download link
// @Description Any caller allowed to read the document may issue a token for it.
// @Tags downloads
// @Produce json
// @Param id path string true "document id"
// @Success 201 {object} downloadTokenResponse
// @Security BearerAuth
// @Router /documents/{id}/download-token [post]
func IssueDownloadToken(docSvc service.DocumentService, tokenSvc service.TokenService, baseURL string) fiber.Handler {
	baseURL = strings.TrimRight(baseURL, "/")
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		id, err := model.ParseDocumentID(c.Params("id"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), p, id)
		if err != nil {
			return writeServiceError(c, err)
		}

		issued, err := tokenSvc.Issue(c.UserContext(), doc.ID, p.UserID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(downloadTokenResponse{
			Token:       issued.Token,
			ExpiresAt:   issued.ExpiresAt,
			DownloadURL: baseURL + "/download/" + issued.Token,
		})
	}
}

// DownloadByToken godoc
// @Summary Download a document with a single-use token
// @Description The token is consumed by the first call; later calls get 404.
// @Tags downloads
// @Produce octet-stream
// @Param token path string true "download token"
// @Success 200 {file} binary
// @Router /download/{token} [get]
func DownloadByToken(docSvc service.DocumentService, tokenSvc service.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docID, err := tokenSvc.Redeem(c.UserContext(), c.Params("token"))
		if err != nil {
			return writeServiceError(c, err)
		}
		doc, err := docSvc.Lookup(c.UserContext(), docID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return streamDocument(c, docSvc, doc)
	}
}

// TokenInfo godoc
// @Summary Inspect a download token without consuming it
// @Tags downloads
// @Produce json
// @Param token path string true "download token"
// @Success 200 {object} tokenInfoResponse
// @Router /download/{token}/info [get]
func TokenInfo(docSvc service.DocumentService, tokenSvc service.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok, err := tokenSvc.Validate(c.UserContext(), c.Params("token"))
		if err != nil {
			return writeServiceError(c, err)
		}
		doc, err := docSvc.Lookup(c.UserContext(), tok.DocumentID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tokenInfoResponse{
			DocumentID:       doc.ID,
			OriginalFilename: doc.OriginalFilename,
			ContentType:      doc.ContentType,
			Size:             doc.Size,
			ExpiresAt:        tok.ExpiresAt,
		})
	}
}

// CleanupTokens godoc
// @Summary Remove expired download tokens now
// @Tags admin
// @Produce json
// @Success 200 {object} cleanupResponse
// @Security BearerAuth
// @Router /admin/tokens/cleanup [post]
func CleanupTokens(tokenSvc service.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := tokenSvc.Cleanup(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(cleanupResponse{Removed: n})
	}
}
