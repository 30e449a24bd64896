package graph

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// AssignedLicense is a license SKU attached to a user or group, optionally
// with individual service plans disabled.
type AssignedLicense struct {
	SkuID         string   `json:"skuId,omitempty"`
	DisabledPlans []string `json:"disabledPlans,omitempty"`
}

// LicenseAssignmentState describes how a license reached a user, directly or
// inherited from a group.
type LicenseAssignmentState struct {
	SkuID               string   `json:"skuId,omitempty"`
	AssignedByGroup     string   `json:"assignedByGroup,omitempty"`
	State               string   `json:"state,omitempty"`
	Error               string   `json:"error,omitempty"`
	DisabledPlans       []string `json:"disabledPlans,omitempty"`
	LastUpdatedDateTime *Time    `json:"lastUpdatedDateTime,omitempty"`
}

// Direct reports whether the license was assigned directly rather than
// inherited through group membership.
func (s *LicenseAssignmentState) Direct() bool {
	return s.AssignedByGroup == ""
}

// SubscribedSku is a license SKU the tenant has purchased. SKUs exist at the
// tenant level and cannot be created, changed or deleted through the API.
type SubscribedSku struct {
	ID               string `json:"id,omitempty"`
	SkuID            string `json:"skuId,omitempty"`
	SkuPartNumber    string `json:"skuPartNumber,omitempty"`
	AppliesTo        string `json:"appliesTo,omitempty"`
	CapabilityStatus string `json:"capabilityStatus,omitempty"`
	ConsumedUnits    int    `json:"consumedUnits,omitempty"`
}

// LicenseManager handles read-only access to the tenant's subscribed SKUs.
type LicenseManager struct {
	client Client
	logger Logger
}

// NewLicenseManager creates a new license manager instance.
func NewLicenseManager(client Client, logger Logger) *LicenseManager {
	return &LicenseManager{
		client: client,
		logger: logger,
	}
}

// List retrieves all subscribed SKUs. The endpoint does not support $filter
// or $top, so any filtering happens client side.
func (lm *LicenseManager) List(ctx context.Context) ([]SubscribedSku, error) {
	var skus []SubscribedSku
	err := LogOperation(lm.logger, "license_list", nil, func() error {
		all, err := listAll[SubscribedSku](ctx, lm.client, "/subscribedSkus", nil)
		if err != nil {
			return err
		}
		skus = all
		return nil
	})
	if err != nil {
		return nil, WrapError("license_list", err)
	}
	return skus, nil
}

// Get retrieves a single subscribed SKU by its tenant-scoped object ID.
func (lm *LicenseManager) Get(ctx context.Context, id string) (*SubscribedSku, error) {
	if id == "" {
		return nil, NewValidationError("license_get", "license ID cannot be empty")
	}

	var sku SubscribedSku
	err := LogOperation(lm.logger, "license_get", map[string]any{
		"license_id": id,
	}, func() error {
		return lm.client.Get(ctx, "/subscribedSkus/"+url.PathEscape(id), nil, &sku)
	})
	if err != nil {
		return nil, WrapError("license_get", err)
	}
	return &sku, nil
}

// GetByPartNumber retrieves the SKU matching a part number ("ENTERPRISEPACK")
// by scanning the full listing.
func (lm *LicenseManager) GetByPartNumber(ctx context.Context, partNumber string) (*SubscribedSku, error) {
	if partNumber == "" {
		return nil, NewValidationError("license_get_by_part_number", "part number cannot be empty")
	}

	skus, err := lm.List(ctx)
	if err != nil {
		return nil, WrapError("license_get_by_part_number", err)
	}
	for i := range skus {
		if skus[i].SkuPartNumber == partNumber {
			return &skus[i], nil
		}
	}
	return nil, NewError("license_get_by_part_number", ErrorCategoryNotFound,
		"no subscribed SKU with part number "+partNumber)
}

// NormalizeSkuID strips the tenant prefix from a composite license
// identifier ("<tenant-guid>_<sku-guid>") and validates that the remainder is
// a UUID. A bare SKU UUID passes through unchanged.
func NormalizeSkuID(id string) (string, error) {
	raw := id
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		raw = id[i+1:]
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", NewValidationError("normalize_sku_id", "invalid license SKU identifier "+id)
	}
	return parsed.String(), nil
}
