package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/papervault/archive-service/internal/domain"
	"github.com/papervault/archive-service/internal/model"
	"github.com/papervault/archive-service/internal/repository"
	"github.com/papervault/archive-service/internal/service"
)

// DocumentHandler handles HTTP requests for document CRUD and search.
type DocumentHandler struct {
	documentService service.DocumentService
	logger          *zap.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(documentService service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// ListDocuments handles the GET /documents endpoint
// @Summary List or search documents
// @Description Lists all documents date-descending, or searches them when q is given
// @Tags documents
// @Produce json
// @Param q query string false "Search query"
// @Success 200 {array} model.DocumentResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /v1/documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	query := c.Query("q")

	docs, err := h.documentService.Search(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("failed to search documents", zap.String("query", query), zap.Error(err))
		respondInternalServerError(c, ErrInternalServer)
		return
	}

	out := make([]model.DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, formatDocumentResponse(&docs[i]))
	}
	respondOK(c, out)
}

// GetDocument handles the GET /documents/:id endpoint
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} model.DocumentResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /v1/documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondNotFound(c, ErrResourceNotFound)
			return
		}
		h.logger.Error("failed to get document", zap.String("id", id), zap.Error(err))
		respondInternalServerError(c, ErrInternalServer)
		return
	}

	respondOK(c, formatDocumentResponse(doc))
}

// CreateDocument handles the POST /documents endpoint
// @Summary Create a document manually
// @Tags documents
// @Accept json
// @Produce json
// @Param document body model.DocumentRequest true "Document data"
// @Success 201 {object} model.DocumentResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /v1/documents [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	doc, ok := h.bindDocument(c)
	if !ok {
		return
	}

	created, err := h.documentService.Create(c.Request.Context(), doc)
	if err != nil {
		h.logger.Error("failed to create document", zap.Error(err))
		respondInternalServerError(c, ErrInternalServer)
		return
	}

	respondCreated(c, formatDocumentResponse(created))
}

// UpdateDocument handles the PUT /documents/:id endpoint. This is the detail
// view's save action: a full-record update that replaces all line items.
// @Summary Save a document
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param document body model.DocumentRequest true "Document data"
// @Success 200 {object} model.DocumentResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /v1/documents/{id} [put]
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	doc, ok := h.bindDocument(c)
	if !ok {
		return
	}
	doc.ID = id

	updated, err := h.documentService.Update(c.Request.Context(), doc)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondNotFound(c, ErrResourceNotFound)
			return
		}
		h.logger.Error("failed to update document", zap.String("id", id), zap.Error(err))
		respondInternalServerError(c, ErrInternalServer)
		return
	}

	respondOK(c, formatDocumentResponse(updated))
}

// DeleteDocument handles the DELETE /documents/:id endpoint
// @Summary Delete a document
// @Tags documents
// @Param id path string true "Document ID"
// @Success 204
// @Failure 404 {object} model.ErrorResponse
// @Router /v1/documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondNotFound(c, ErrResourceNotFound)
			return
		}
		h.logger.Error("failed to delete document", zap.String("id", id), zap.Error(err))
		respondInternalServerError(c, ErrInternalServer)
		return
	}

	respondNoContent(c)
}

// GetLineItems handles the GET /documents/:id/items endpoint
// @Summary List a document's line items
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {array} model.LineItemResponse
// @Router /v1/documents/{id}/items [get]
func (h *DocumentHandler) GetLineItems(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	items, err := h.documentService.GetLineItems(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get line items", zap.String("id", id), zap.Error(err))
		respondInternalServerError(c, ErrInternalServer)
		return
	}

	out := make([]model.LineItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, formatLineItemResponse(item))
	}
	respondOK(c, out)
}

// bindDocument parses and validates a document payload. It writes the error
// response itself and reports success through the bool.
func (h *DocumentHandler) bindDocument(c *gin.Context) (*domain.Document, bool) {
	var req model.DocumentRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("body", err.Error()))
		return nil, false
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("date", err.Error()))
		return nil, false
	}
	warrantyEnd, err := parseDate(req.WarrantyEndDate)
	if err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("warranty_end_date", err.Error()))
		return nil, false
	}

	imageURLs := req.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}

	doc := &domain.Document{
		Type:                domain.ValidType(req.Type),
		MerchantName:        req.MerchantName,
		Date:                date,
		TotalAmount:         req.TotalAmount,
		Currency:            req.Currency,
		Category:            req.Category,
		Comment:             req.Comment,
		WarrantyEnabled:     req.WarrantyEnabled,
		WarrantyEndDate:     warrantyEnd,
		WarrantyDuration:    req.WarrantyDuration,
		WarrantyProductDesc: req.WarrantyProductDesc,
		RawOCRText:          req.RawOCRText,
		ImageURLs:           imageURLs,
	}
	for _, item := range req.LineItems {
		doc.LineItems = append(doc.LineItems, domain.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	return doc, true
}

func formatDocumentResponse(doc *domain.Document) model.DocumentResponse {
	resp := model.DocumentResponse{
		ID:                  doc.ID,
		Type:                string(doc.Type),
		MerchantName:        doc.MerchantName,
		Date:                formatDate(doc.Date),
		TotalAmount:         doc.TotalAmount,
		Currency:            doc.Currency,
		Category:            doc.Category,
		Comment:             doc.Comment,
		WarrantyEnabled:     doc.WarrantyEnabled,
		WarrantyEndDate:     formatDate(doc.WarrantyEndDate),
		WarrantyDuration:    doc.WarrantyDuration,
		WarrantyProductDesc: doc.WarrantyProductDesc,
		RawOCRText:          doc.RawOCRText,
		ImageURLs:           doc.ImageURLs,
		CreatedAt:           doc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           doc.UpdatedAt.Format(time.RFC3339),
	}
	if resp.ImageURLs == nil {
		resp.ImageURLs = []string{}
	}
	for _, item := range doc.LineItems {
		resp.LineItems = append(resp.LineItems, formatLineItemResponse(item))
	}
	return resp
}

func formatLineItemResponse(item domain.LineItem) model.LineItemResponse {
	return model.LineItemResponse{
		ID:          item.ID,
		DocumentID:  item.DocumentID,
		Description: item.Description,
		Quantity:    item.Quantity,
		Price:       item.Price,
		Position:    item.Position,
	}
}
