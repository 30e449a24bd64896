package connector

import (
	"github.com/isometry/entra-connector/internal/graph"
)

// LicenseConverter flattens subscribed SKUs into attribute sets. Licenses
// exist at the tenant level and are read-only, so there is no inverse
// conversion.
type LicenseConverter struct{}

// NewLicenseConverter creates a license converter.
func NewLicenseConverter() *LicenseConverter {
	return &LicenseConverter{}
}

// ToAttributes flattens a subscribed SKU into a generic attribute set.
func (lc *LicenseConverter) ToAttributes(sku *graph.SubscribedSku) AttributeSet {
	attrs := NewAttributeSet()

	attrs.setString(AttrLicenseID, sku.ID)
	attrs.setString(AttrSkuID, sku.SkuID)
	attrs.setString(AttrSkuPartNumber, sku.SkuPartNumber)
	attrs.setString(AttrAppliesTo, sku.AppliesTo)
	attrs.setString(AttrCapabilityStatus, sku.CapabilityStatus)
	attrs.Set(AttrConsumedUnits, sku.ConsumedUnits)

	return attrs
}
