package model

// DocumentRequest is the payload for creating or fully updating a document.
// Dates are YYYY-MM-DD strings; empty means no date.
type DocumentRequest struct {
	Type                string            `json:"type"`
	MerchantName        string            `json:"merchant_name"`
	Date                string            `json:"date"`
	TotalAmount         string            `json:"total_amount"`
	Currency            string            `json:"currency"`
	Category            string            `json:"category"`
	Comment             string            `json:"comment"`
	WarrantyEnabled     bool              `json:"warranty_enabled"`
	WarrantyEndDate     string            `json:"warranty_end_date"`
	WarrantyDuration    string            `json:"warranty_duration"`
	WarrantyProductDesc string            `json:"warranty_product_description"`
	RawOCRText          string            `json:"raw_ocr_text"`
	ImageURLs           []string          `json:"image_urls"`
	LineItems           []LineItemRequest `json:"line_items"`
}

// LineItemRequest is one line item in a document payload. Position is
// implied by slice order.
type LineItemRequest struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
}

// DocumentResponse mirrors the stored document. Date fields are YYYY-MM-DD
// or null; timestamps are RFC3339.
type DocumentResponse struct {
	ID                  string             `json:"id"`
	Type                string             `json:"type"`
	MerchantName        string             `json:"merchant_name"`
	Date                *string            `json:"date"`
	TotalAmount         string             `json:"total_amount"`
	Currency            string             `json:"currency"`
	Category            string             `json:"category"`
	Comment             string             `json:"comment"`
	WarrantyEnabled     bool               `json:"warranty_enabled"`
	WarrantyEndDate     *string            `json:"warranty_end_date"`
	WarrantyDuration    string             `json:"warranty_duration"`
	WarrantyProductDesc string             `json:"warranty_product_description"`
	RawOCRText          string             `json:"raw_ocr_text"`
	ImageURLs           []string           `json:"image_urls"`
	LineItems           []LineItemResponse `json:"line_items,omitempty"`
	CreatedAt           string             `json:"created_at"`
	UpdatedAt           string             `json:"updated_at"`
}

// LineItemResponse is one stored line item.
type LineItemResponse struct {
	ID          string `json:"id"`
	DocumentID  string `json:"document_id"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Position    int    `json:"position"`
}

// ParseRequest is the body of POST /v1/parse.
type ParseRequest struct {
	RawOCRText string `json:"raw_ocr_text"`
}

// ResolveURLResponse is the body of GET /v1/images/url. URL is null when the
// image is not displayable (empty path or signing failure).
type ResolveURLResponse struct {
	URL *string `json:"url"`
}
