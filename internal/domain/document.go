package domain

import (
	"time"
)

// DocumentType classifies an archived document.
type DocumentType string

const (
	TypeReceipt  DocumentType = "receipt"
	TypeInvoice  DocumentType = "invoice"
	TypeWarranty DocumentType = "warranty"
	TypeOther    DocumentType = "other"
)

// Categories is the fixed set of suggested document categories.
var Categories = []string{
	"Electronics",
	"Home",
	"Food",
	"Health",
	"Transport",
	"Clothing",
	"Other",
}

// LineItem is a single line on a document. Quantity and price are kept as
// text: OCR output is often not strictly numeric ("2x", "~5.00").
type LineItem struct {
	ID          string `json:"id,omitempty"`
	DocumentID  string `json:"document_id,omitempty"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Position    int    `json:"position"`
}

// Document is one archived receipt/invoice. ImageURLs holds storage keys (or
// absolute URLs) in upload-index order, which is also the display order.
type Document struct {
	ID                  string       `json:"id"`
	Type                DocumentType `json:"type"`
	MerchantName        string       `json:"merchant_name"`
	Date                *time.Time   `json:"date"`
	TotalAmount         string       `json:"total_amount"`
	Currency            string       `json:"currency"`
	Category            string       `json:"category"`
	Comment             string       `json:"comment"`
	WarrantyEnabled     bool         `json:"warranty_enabled"`
	WarrantyEndDate     *time.Time   `json:"warranty_end_date"`
	WarrantyDuration    string       `json:"warranty_duration"`
	WarrantyProductDesc string       `json:"warranty_product_description"`
	RawOCRText          string       `json:"raw_ocr_text"`
	ImageURLs           []string     `json:"image_urls"`
	LineItems           []LineItem   `json:"line_items,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// ParsedLineItem is a line item as returned by the semantic extractor.
type ParsedLineItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
}

// ParsedReceipt is the semantic extractor's output. It is consumed once to
// seed a new Document and its LineItems, then discarded.
type ParsedReceipt struct {
	Type              string           `json:"type"`
	MerchantName      string           `json:"merchant_name"`
	Date              string           `json:"date"`
	TotalAmount       string           `json:"total_amount"`
	Currency          string           `json:"currency"`
	Category          string           `json:"category"`
	WarrantySuspected bool             `json:"warranty_suspected"`
	LineItems         []ParsedLineItem `json:"line_items"`
}

// EmptyParsedReceipt returns the degraded-extraction default: all fields
// empty, no line items. The scan pipeline falls back to it when the semantic
// extractor fails or is skipped.
func EmptyParsedReceipt() *ParsedReceipt {
	return &ParsedReceipt{}
}

// ValidType maps a free-text type from the extractor to a DocumentType,
// defaulting to receipt.
func ValidType(s string) DocumentType {
	switch DocumentType(s) {
	case TypeReceipt, TypeInvoice, TypeWarranty, TypeOther:
		return DocumentType(s)
	default:
		return TypeReceipt
	}
}
