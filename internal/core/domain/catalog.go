package domain

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a merch item. A non-nil PrintifyProductID marks it print-on-demand.
type Product struct {
	ProductID         string          `json:"productID"`
	Name              string          `json:"name"`
	PrintifyProductID *string         `json:"printifyProductID,omitempty"`
	Price             decimal.Decimal `json:"price"`
	Inventory         int             `json:"inventory"`
	LastSyncedAt      *time.Time      `json:"lastSyncedAt,omitempty"`
	LastSyncCount     int             `json:"lastSyncCount"`
	LastError         *string         `json:"lastError,omitempty"`
	AuditFields
}

func (p Product) IsPrintOnDemand() bool {
	return p.PrintifyProductID != nil && *p.PrintifyProductID != ""
}

// ProductVariant is a size/colour option mirrored from the POD provider.
type ProductVariant struct {
	VariantID         string          `json:"variantID"`
	ProductID         string          `json:"productID"`
	ExternalID        string          `json:"externalID"`
	Title             string          `json:"title"`
	SKU               string          `json:"sku"`
	Price             decimal.Decimal `json:"price"`
	IsAvailable       bool            `json:"isAvailable"`
	IsEnabled         bool            `json:"isEnabled"`
	IsLocallyModified bool            `json:"isLocallyModified"`
	LastSyncedAt      *time.Time      `json:"lastSyncedAt,omitempty"`
}

// VariantPatch holds locally editable variant fields.
type VariantPatch struct {
	Title     *string
	Price     *decimal.Decimal
	IsEnabled *bool
}

func (p VariantPatch) IsEmpty() bool {
	return p.Title == nil && p.Price == nil && p.IsEnabled == nil
}

// ProductImage is a mockup image mirrored from the POD provider, keyed by its src URL.
type ProductImage struct {
	ImageID           string   `json:"imageID"`
	ProductID         string   `json:"productID"`
	ExternalID        string   `json:"externalID"`
	Position          string   `json:"position"`
	IsDefault         bool     `json:"isDefault"`
	VariantExternalID []string `json:"variantExternalIDs"`
	IsEnabled         bool     `json:"isEnabled"`
}

// RemoteVariant is a variant as returned by the POD provider.
type RemoteVariant struct {
	ExternalID  string          `validate:"required"`
	Title       string          `validate:"required"`
	SKU         string
	Price       decimal.Decimal
	IsAvailable bool
	IsEnabled   bool
}

func (v RemoteVariant) ExternalKey() string { return v.ExternalID }

func (v RemoteVariant) Fingerprint() string {
	return Fingerprint(v.Title, v.SKU, v.Price.StringFixed(2),
		strconv.FormatBool(v.IsAvailable), strconv.FormatBool(v.IsEnabled))
}

func (v RemoteVariant) Validate() error {
	if v.Price.IsNegative() {
		return errors.New("variant price is negative")
	}
	return nil
}

// RemoteImage is an image as returned by the POD provider.
type RemoteImage struct {
	Src               string `validate:"required,url"`
	Position          string
	IsDefault         bool
	VariantExternalID []string
}

func (i RemoteImage) ExternalKey() string { return i.Src }

func (i RemoteImage) Fingerprint() string {
	ids := append([]string(nil), i.VariantExternalID...)
	sort.Strings(ids)
	return Fingerprint(i.Position, strconv.FormatBool(i.IsDefault), strings.Join(ids, ","))
}

// CatalogSyncResult combines the variant and image passes for one product.
type CatalogSyncResult struct {
	ProductID string     `json:"productID"`
	Variants  SyncResult `json:"variants"`
	Images    SyncResult `json:"images"`
}

func (r CatalogSyncResult) Summary() SyncSummary {
	s := r.Variants.Summary()
	if s.Error == nil {
		s.Error = r.Images.Summary().Error
	}
	if r.Images.EndedAt.After(s.SyncedAt) {
		s.SyncedAt = r.Images.EndedAt
	}
	return s
}

// RemoteProduct is a product as returned by the POD provider.
type RemoteProduct struct {
	ExternalID string
	Title      string
	Variants   []RemoteVariant
	Images     []RemoteImage
}
