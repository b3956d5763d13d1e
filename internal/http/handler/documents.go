package handler

import (
	"mime"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/model"
	"docvault/internal/service"
)

const metadataPrefix = "meta."

type renameRequest struct {
	OriginalFilename string `json:"original_filename"`
}

type annotationsRequest struct {
	Tags     []string              `json:"tags"`
	Metadata []model.MetadataEntry `json:"metadata"`
}

// principal returns the authenticated caller. Routes using it sit behind middleware.Authenticate.
func principal(c *fiber.Ctx) (model.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return model.Principal{}, fiber.ErrUnauthorized
	}
	return p, nil
}

// splitList splits a comma separated value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ListDocuments godoc
// @Summary List documents
// @Description Admins see every document, other callers only their own.
// @Tags documents
// @Produce json
// @Param limit query int false "page size" default(20)
// @Param offset query int false "offset" default(0)
// @Success 200 {object} service.DocumentListResult
// @Security BearerAuth
// @Router /documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(service.DefaultPageSize)))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := docSvc.List(c.UserContext(), p, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadDocument godoc
// @Summary Upload a document
// @Description multipart/form-data with field "file"; optional "tags" (comma separated) and "meta.<key>" fields.
// @Tags documents
// @Accept mpfd
// @Produce json
// @Param file formData file true "document content"
// @Param tags formData string false "comma separated tags"
// @Success 201 {object} model.Document
// @Security BearerAuth
// @Router /documents [post]
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt == "" {
			ct = "application/octet-stream"
		}

		in := service.UploadInput{
			Reader:           f,
			OriginalFilename: fh.Filename,
			ContentType:      ct,
			Size:             fh.Size,
			Tags:             splitList(c.FormValue("tags")),
		}
		if form, err := c.MultipartForm(); err == nil {
			keys := make([]string, 0, len(form.Value))
			for k := range form.Value {
				if strings.HasPrefix(k, metadataPrefix) {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			for _, k := range keys {
				for _, v := range form.Value[k] {
					in.Metadata = append(in.Metadata, model.MetadataEntry{Key: strings.TrimPrefix(k, metadataPrefix), Value: v})
				}
			}
		}

		doc, err := docSvc.Upload(c.UserContext(), p, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument godoc
// @Summary Get document metadata
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} model.Document
// @Security BearerAuth
// @Router /documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
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
		return c.JSON(doc)
	}
}

// DownloadContent godoc
// @Summary Download document content
// @Tags documents
// @Produce octet-stream
// @Param id path string true "document id"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /documents/{id}/content [get]
func DownloadContent(docSvc service.DocumentService) fiber.Handler {
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
		return streamDocument(c, docSvc, doc)
	}
}

// streamDocument writes the document bytes as an attachment.
func streamDocument(c *fiber.Ctx, docSvc service.DocumentService, doc *model.Document) error {
	rc, err := docSvc.Open(c.UserContext(), doc)
	if err != nil {
		return writeServiceError(c, err)
	}
	ct := doc.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, ct)
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": doc.OriginalFilename}))
	// fasthttp closes rc once the body has been written.
	return c.SendStream(rc, int(doc.Size))
}

// RenameDocument godoc
// @Summary Rename a document
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "document id"
// @Param body body renameRequest true "new name"
// @Success 200 {object} model.Document
// @Security BearerAuth
// @Router /documents/{id} [patch]
func RenameDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		id, err := model.ParseDocumentID(c.Params("id"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req renameRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := docSvc.Rename(c.UserContext(), p, id, req.OriginalFilename)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// UpdateAnnotations godoc
// @Summary Replace tags and metadata
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "document id"
// @Param body body annotationsRequest true "tags and metadata"
// @Success 200 {object} model.Document
// @Security BearerAuth
// @Router /documents/{id}/annotations [put]
func UpdateAnnotations(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		id, err := model.ParseDocumentID(c.Params("id"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req annotationsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := docSvc.UpdateAnnotations(c.UserContext(), p, id, req.Tags, req.Metadata)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument godoc
// @Summary Delete a document
// @Tags documents
// @Param id path string true "document id"
// @Success 204
// @Security BearerAuth
// @Router /documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		id, err := model.ParseDocumentID(c.Params("id"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), p, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
