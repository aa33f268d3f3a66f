package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/abcenterprises/fbr-einvoicing/internal/annexc"
	"github.com/abcenterprises/fbr-einvoicing/internal/application/service"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
	"github.com/abcenterprises/fbr-einvoicing/internal/tax"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	invoiceService service.InvoiceService
	productService service.ProductService
	annexCService  service.AnnexCService
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	invoiceService service.InvoiceService,
	productService service.ProductService,
	annexCService service.AnnexCService,
	logger Logger,
) *Handlers {
	return &Handlers{
		invoiceService: invoiceService,
		productService: productService,
		annexCService:  annexCService,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ProductRequest carries a catalog entry create/update payload
type ProductRequest struct {
	HSCode      string          `json:"hs_code" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Unit        string          `json:"unit" binding:"required"`
	DefaultRate decimal.Decimal `json:"default_rate"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
}

// LineItemRequest is one invoice line in a draft payload. TaxPercent is
// optional: absent means "use the catalog's percent, or the statutory
// default", while an explicit 0 stands as given.
type LineItemRequest struct {
	Description string           `json:"description"`
	HSCode      string           `json:"hs_code"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Unit        string           `json:"unit"`
	Rate        decimal.Decimal  `json:"rate"`
	TaxPercent  *decimal.Decimal `json:"tax_percent"`
}

// BuyerRequest carries the buyer block of a draft payload
type BuyerRequest struct {
	Name                string `json:"name"`
	Type                string `json:"type"`
	STRN                string `json:"strn"`
	Address             string `json:"address"`
	DestinationProvince string `json:"destination_province"`
}

// InvoiceRequest is the full draft payload. Drafts are replaced
// wholesale: the body always carries the complete invoice picture.
type InvoiceRequest struct {
	Date           string            `json:"date"`
	InvoiceType    string            `json:"invoice_type"`
	SaleType       string            `json:"sale_type"`
	PaymentMode    string            `json:"payment_mode"`
	OriginProvince string            `json:"origin_province"`
	Buyer          BuyerRequest      `json:"buyer"`
	LineItems      []LineItemRequest `json:"line_items"`
}

// LineItemResponse is one invoice line with its derived amounts
type LineItemResponse struct {
	Description string `json:"description"`
	HSCode      string `json:"hs_code,omitempty"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	Rate        string `json:"rate"`
	TaxPercent  string `json:"tax_percent"`
	LineAmount  string `json:"line_amount"`
	LineTax     string `json:"line_tax"`
}

// InvoiceResponse represents an invoice in API responses. Monetary
// fields are recomputed on every read and rendered at two decimals.
type InvoiceResponse struct {
	ID              int64               `json:"id"`
	InvoiceNumber   string              `json:"invoice_number"`
	FBRNumber       string              `json:"fbr_number,omitempty"`
	Date            string              `json:"date"`
	InvoiceType     string              `json:"invoice_type"`
	SaleType        string              `json:"sale_type"`
	PaymentMode     string              `json:"payment_mode"`
	OriginProvince  string              `json:"origin_province"`
	Buyer           entity.BuyerProfile `json:"buyer"`
	LineItems       []LineItemResponse  `json:"line_items"`
	Subtotal        string              `json:"subtotal"`
	TotalTax        string              `json:"total_tax"`
	GrandTotal      string              `json:"grand_total"`
	GrandTotalPKR   string              `json:"grand_total_display"`
	Status          string              `json:"status"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       string              `json:"updated_at"`
	SubmittedAt     *string             `json:"submitted_at,omitempty"`
	ValidatedAt     *string             `json:"validated_at,omitempty"`
	RejectedAt      *string             `json:"rejected_at,omitempty"`
}

// ListInvoicesRequest represents query parameters for listing invoices
type ListInvoicesRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// ListProducts handles GET /api/products
func (h *Handlers) ListProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to retrieve products")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: products})
}

// GetProduct handles GET /api/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "product not found")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: product})
}

// CreateProduct handles POST /api/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid product payload: "+err.Error())
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), productFromRequest(&req))
	if err != nil {
		h.fail(c, err, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: product})
}

// UpdateProduct handles PATCH /api/products/:id
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid product payload: "+err.Error())
		return
	}

	product := productFromRequest(&req)
	product.ID = id

	updated, err := h.productService.UpdateProduct(c.Request.Context(), product)
	if err != nil {
		h.fail(c, err, "failed to update product")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: updated})
}

// DeleteProduct handles DELETE /api/products/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to delete product")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ListInvoices handles GET /api/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.fail(c, err, "failed to retrieve invoices")
		return
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		resp, err := h.toInvoiceResponse(invoice)
		if err != nil {
			h.fail(c, err, "failed to compute invoice totals")
			return
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: responses})
}

// GetInvoice handles GET /api/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "invoice not found")
		return
	}

	h.respondInvoice(c, http.StatusOK, invoice)
}

// CreateDraft handles POST /api/invoices
func (h *Handlers) CreateDraft(c *gin.Context) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid invoice payload: "+err.Error())
		return
	}

	draft, err := h.invoiceFromRequest(c, &req)
	if err != nil {
		h.fail(c, err, "invalid invoice payload")
		return
	}

	created, err := h.invoiceService.CreateDraft(c.Request.Context(), draft)
	if err != nil {
		h.fail(c, err, "failed to create draft")
		return
	}

	h.respondInvoice(c, http.StatusCreated, created)
}

// UpdateDraft handles PUT /api/invoices/:id
func (h *Handlers) UpdateDraft(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid invoice payload: "+err.Error())
		return
	}

	replacement, err := h.invoiceFromRequest(c, &req)
	if err != nil {
		h.fail(c, err, "invalid invoice payload")
		return
	}

	updated, err := h.invoiceService.UpdateDraft(c.Request.Context(), id, replacement)
	if err != nil {
		h.fail(c, err, "failed to update draft")
		return
	}

	h.respondInvoice(c, http.StatusOK, updated)
}

// SubmitInvoice handles POST /api/invoices/:id/submit
func (h *Handlers) SubmitInvoice(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Submit(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to submit invoice")
		return
	}

	h.respondInvoice(c, http.StatusOK, invoice)
}

// RedraftInvoice handles POST /api/invoices/:id/redraft
func (h *Handlers) RedraftInvoice(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	draft, err := h.invoiceService.Redraft(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to redraft invoice")
		return
	}

	h.respondInvoice(c, http.StatusCreated, draft)
}

// AnnexCReport handles GET /api/reports/annex-c?period=2026-01
func (h *Handlers) AnnexCReport(c *gin.Context) {
	period, ok := h.queryPeriod(c)
	if !ok {
		return
	}

	report, err := h.annexCService.Report(c.Request.Context(), period)
	if err != nil {
		h.fail(c, err, "failed to generate report")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// AnnexCExport handles GET /api/reports/annex-c/export?period=2026-01
func (h *Handlers) AnnexCExport(c *gin.Context) {
	period, ok := h.queryPeriod(c)
	if !ok {
		return
	}

	content, filename, err := h.annexCService.ExportExcel(c.Request.Context(), period)
	if err != nil {
		h.fail(c, err, "failed to export report")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		content)
}

// pathID parses the :id path parameter, responding 400 on garbage.
func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// queryPeriod parses the required period query parameter.
func (h *Handlers) queryPeriod(c *gin.Context) (annexc.TaxPeriod, bool) {
	raw := c.Query("period")
	period, err := annexc.ParsePeriod(raw)
	if err != nil {
		h.badRequest(c, "invalid period, want YYYY-MM")
		return annexc.TaxPeriod{}, false
	}
	return period, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// fail maps domain errors onto HTTP statuses: not-found to 404, state
// conflicts to 409, validation failures to 400, authority rejections to
// 502, anything else to 500.
func (h *Handlers) fail(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	msg := fallback

	var authorityErr *entity.AuthorityError

	switch {
	case errors.Is(err, entity.ErrInvoiceNotFound), errors.Is(err, entity.ErrProductNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, entity.ErrInvoiceImmutable),
		errors.Is(err, entity.ErrSubmissionInFlight),
		errors.Is(err, entity.ErrNotRejected),
		errors.Is(err, entity.ErrDuplicateHSCode):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, entity.ErrIncompleteInvoice),
		errors.Is(err, entity.ErrNegativeQuantityOrRate),
		errors.Is(err, entity.ErrTaxPercentRange),
		errors.Is(err, entity.ErrUnknownUnit),
		errors.Is(err, entity.ErrMalformedSTRN),
		errors.Is(err, entity.ErrMissingHSCode),
		errors.Is(err, entity.ErrMalformedHSCode),
		errors.Is(err, entity.ErrMissingProductName):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.As(err, &authorityErr):
		status = http.StatusBadGateway
		msg = err.Error()
	default:
		h.logger.Error("Request failed", "error", err)
	}

	c.JSON(status, Response{Success: false, Error: msg})
}

func (h *Handlers) respondInvoice(c *gin.Context, status int, invoice *entity.Invoice) {
	resp, err := h.toInvoiceResponse(invoice)
	if err != nil {
		h.fail(c, err, "failed to compute invoice totals")
		return
	}
	c.JSON(status, Response{Success: true, Data: resp})
}

// invoiceFromRequest maps the transport payload onto the domain shape.
// Tax percent defaulting happens here: a line without one gets the
// catalog's percent when it names an HS code, otherwise the statutory
// default rate.
func (h *Handlers) invoiceFromRequest(c *gin.Context, req *InvoiceRequest) (*entity.Invoice, error) {
	invoice := &entity.Invoice{
		InvoiceType:    entity.InvoiceType(req.InvoiceType),
		SaleType:       entity.SaleType(req.SaleType),
		PaymentMode:    entity.PaymentMode(req.PaymentMode),
		OriginProvince: entity.Province(req.OriginProvince),
		Buyer: entity.BuyerProfile{
			Name:                req.Buyer.Name,
			Type:                entity.BuyerType(req.Buyer.Type),
			STRN:                req.Buyer.STRN,
			Address:             req.Buyer.Address,
			DestinationProvince: entity.Province(req.Buyer.DestinationProvince),
		},
	}

	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, &entity.ValidationError{Err: entity.ErrIncompleteInvoice, Details: "date must be YYYY-MM-DD"}
		}
		invoice.Date = date
	}

	invoice.LineItems = make([]entity.LineItem, 0, len(req.LineItems))
	for _, line := range req.LineItems {
		item := entity.LineItem{
			Description: line.Description,
			HSCode:      line.HSCode,
			Quantity:    line.Quantity,
			Unit:        entity.Unit(line.Unit),
			Rate:        line.Rate,
		}

		switch {
		case line.TaxPercent != nil:
			item.TaxPercent = *line.TaxPercent
		case line.HSCode != "":
			product, err := h.productService.GetByHSCode(c.Request.Context(), line.HSCode)
			if err != nil {
				return nil, err
			}
			item.TaxPercent = product.TaxPercent
		default:
			item.TaxPercent = entity.DefaultTaxPercent
		}

		invoice.LineItems = append(invoice.LineItems, item)
	}

	return invoice, nil
}

// toInvoiceResponse converts a domain invoice to its API shape with the
// derived amounts recomputed and rounded for display.
func (h *Handlers) toInvoiceResponse(invoice *entity.Invoice) (InvoiceResponse, error) {
	comp, err := h.invoiceService.Totals(invoice)
	if err != nil {
		return InvoiceResponse{}, err
	}

	lines := make([]LineItemResponse, 0, len(invoice.LineItems))
	for i, item := range invoice.LineItems {
		lines = append(lines, LineItemResponse{
			Description: item.Description,
			HSCode:      item.HSCode,
			Quantity:    item.Quantity.String(),
			Unit:        string(item.Unit),
			Rate:        item.Rate.StringFixed(2),
			TaxPercent:  item.TaxPercent.String(),
			LineAmount:  tax.Round2(comp.PerItem[i].LineAmount).StringFixed(2),
			LineTax:     tax.Round2(comp.PerItem[i].LineTax).StringFixed(2),
		})
	}

	resp := InvoiceResponse{
		ID:              invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		FBRNumber:       invoice.FBRNumber,
		Date:            invoice.Date.Format("2006-01-02"),
		InvoiceType:     string(invoice.InvoiceType),
		SaleType:        string(invoice.SaleType),
		PaymentMode:     string(invoice.PaymentMode),
		OriginProvince:  string(invoice.OriginProvince),
		Buyer:           invoice.Buyer,
		LineItems:       lines,
		Subtotal:        tax.Round2(comp.Subtotal).StringFixed(2),
		TotalTax:        tax.Round2(comp.TotalTax).StringFixed(2),
		GrandTotal:      tax.Round2(comp.GrandTotal).StringFixed(2),
		GrandTotalPKR:   tax.FormatPKR(comp.GrandTotal),
		Status:          invoice.Status.String(),
		RejectionReason: invoice.RejectionReason,
		CreatedAt:       invoice.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       invoice.UpdatedAt.Format(time.RFC3339),
	}

	resp.SubmittedAt = formatTimePtr(invoice.SubmittedAt)
	resp.ValidatedAt = formatTimePtr(invoice.ValidatedAt)
	resp.RejectedAt = formatTimePtr(invoice.RejectedAt)

	return resp, nil
}

func productFromRequest(req *ProductRequest) *entity.Product {
	return &entity.Product{
		HSCode:      req.HSCode,
		Name:        req.Name,
		Unit:        entity.Unit(req.Unit),
		DefaultRate: req.DefaultRate,
		TaxPercent:  req.TaxPercent,
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
