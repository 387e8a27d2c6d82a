package handler

import (
	"bytes"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"docmanager/internal/http/middleware"
	"docmanager/internal/service"
)

// paramID parses a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ListDocuments returns one page of documents.
//
//	@Summary	List documents
//	@Tags		documents
//	@Security	BearerAuth
//	@Produce	json
//	@Param		limit	query		int		false	"page size (max 100)"	default(10)
//	@Param		offset	query		int		false	"rows to skip"			default(0)
//	@Param		q		query		string	false	"substring over name, type and office"
//	@Success	200		{object}	service.DocumentListResult
//	@Failure	400		{object}	errorPayload
//	@Router		/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset, c.Query("q"))
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadDocument stores a multipart upload (field "file") and records it.
// Optional form fields: name, file_type (defaults to the extension) and office_id.
//
//	@Summary	Upload a document
//	@Tags		documents
//	@Security	BearerAuth
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		file		formData	file	true	"document content"
//	@Param		name		formData	string	false	"display file name"
//	@Param		file_type	formData	string	false	"type tag such as PDF"
//	@Param		office_id	formData	int		false	"owning office"
//	@Success	201			{object}	model.Document
//	@Failure	400			{object}	errorPayload
//	@Failure	413			{object}	errorPayload
//	@Failure	502			{object}	errorPayload
//	@Router		/documents [post]
func UploadDocument(svc service.DocumentService, maxBytes int64, log *zap.Logger) fiber.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if maxBytes > 0 && fh.Size > maxBytes {
			return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the upload limit")
		}

		var officeID *int64
		if v := strings.TrimSpace(c.FormValue("office_id")); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil || id <= 0 {
				return writeError(c, fiber.StatusBadRequest, "INVALID_OFFICE_ID", "invalid office_id")
			}
			officeID = &id
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
		}

		name := c.FormValue("name")
		if strings.TrimSpace(name) == "" {
			name = fh.Filename
		}
		fileType := c.FormValue("file_type")
		if strings.TrimSpace(fileType) == "" {
			fileType = filepath.Ext(fh.Filename)
		}

		ct := fh.Header.Get("Content-Type")
		if ct == "" || ct == fiber.MIMEOctetStream {
			ct = service.ContentTypeFor(fileType, data)
		}

		var pageCount *int
		if service.NormalizeFileType(fileType) == "PDF" {
			n, err := api.PageCount(bytes.NewReader(data), pdfmodel.NewDefaultConfiguration())
			if err != nil {
				log.Warn("pdf_page_count_failed",
					zap.String("request_id", middleware.RequestIDFromContext(c.UserContext())),
					zap.String("file_name", name),
					zap.Error(err),
				)
			} else {
				pageCount = &n
			}
		}

		doc, err := svc.Add(c.UserContext(), service.AddDocumentInput{
			Name:        name,
			FileType:    fileType,
			OfficeID:    officeID,
			Content:     bytes.NewReader(data),
			Size:        int64(len(data)),
			ContentType: ct,
			PageCount:   pageCount,
		})
		if err != nil {
			return mapError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument returns one document's metadata.
//
//	@Summary	Get a document
//	@Tags		documents
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"document id"
//	@Success	200	{object}	model.Document
//	@Failure	404	{object}	errorPayload
//	@Router		/documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(doc)
	}
}

// UpdateDocument renames a document and moves it to another office.
//
//	@Summary	Update a document
//	@Tags		documents
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int								true	"document id"
//	@Param		body	body		service.UpdateDocumentInput	true	"new name and office"
//	@Success	200		{object}	model.Document
//	@Failure	400		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Router		/documents/{id} [patch]
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in service.UpdateDocumentInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes the blob and then the row.
//
//	@Summary	Delete a document
//	@Tags		documents
//	@Security	BearerAuth
//	@Param		id	path	int	true	"document id"
//	@Success	204
//	@Failure	404	{object}	errorPayload
//	@Failure	500	{object}	errorPayload
//	@Router		/documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return mapError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SearchDocuments runs a search and makes its result the current document list.
//
//	@Summary	Search documents
//	@Tags		documents
//	@Security	BearerAuth
//	@Produce	json
//	@Param		q	query		string	false	"search term; empty matches everything"
//	@Success	200	{array}		model.Document
//	@Router		/documents/search [get]
func SearchDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.Search(c.UserContext(), c.Query("q"))
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(docs)
	}
}

// CurrentDocuments returns the current document list without touching the database.
//
//	@Summary	Current document list
//	@Tags		documents
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	model.Document
//	@Router		/documents/current [get]
func CurrentDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Documents())
	}
}

// DownloadDocument streams a document's bytes as an attachment.
//
//	@Summary	Download a document
//	@Tags		documents
//	@Security	BearerAuth
//	@Produce	octet-stream
//	@Param		id	path	int	true	"document id"
//	@Success	200	{file}	binary
//	@Failure	404	{object}	errorPayload
//	@Failure	409	{object}	errorPayload
//	@Router		/api/download/{id} [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		st, err := svc.Stream(c.UserContext(), id)
		if err != nil {
			return mapError(c, err)
		}

		c.Attachment(st.FileName)
		c.Set(fiber.HeaderContentType, st.ContentType)
		return c.SendStream(st.Reader, int(st.Size))
	}
}
