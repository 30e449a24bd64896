package connector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isometry/entra-connector/internal/graph"
)

func TestToGroupScalarMapping(t *testing.T) {
	attrs := NewAttributeSet().
		Set(AttrDisplayName, "Platform Team").
		Set(AttrDescription, "Owns the platform").
		Set(AttrEmailNickname, "platform").
		Set(AttrEmailEnabled, false).
		Set(AttrSecurityEnabled, true).
		Set(AttrGroupTypes, graph.GroupTypeUnified)

	group, err := NewGroupConverter().ToGroup(attrs)
	require.NoError(t, err)

	assert.Equal(t, "Platform Team", group.DisplayName)
	assert.Equal(t, "Owns the platform", group.Description)
	assert.Equal(t, "platform", group.MailNickname)
	require.NotNil(t, group.MailEnabled)
	assert.False(t, *group.MailEnabled)
	require.NotNil(t, group.SecurityEnabled)
	assert.True(t, *group.SecurityEnabled)
	assert.Equal(t, []string{graph.GroupTypeUnified}, group.GroupTypes)
}

func TestGroupToAttributesCompositeName(t *testing.T) {
	group := &graph.Group{
		ID:          "g1",
		DisplayName: "Platform Team",
	}

	attrs := NewGroupConverter().ToAttributes(group, false)

	id, _ := attrs.String(AttrGroupID)
	assert.Equal(t, "g1", id)
	name, _ := attrs.String(AttrDisplayName)
	assert.Equal(t, "Platform Team (g1)", name)
}

func TestGroupToAttributesVarietyFlags(t *testing.T) {
	group := &graph.Group{
		ID:              "g1",
		DisplayName:     "All Staff",
		Mail:            "staff@example.com",
		MailEnabled:     boolPtr(true),
		SecurityEnabled: boolPtr(false),
		GroupTypes:      []string{graph.GroupTypeUnified},
	}

	attrs := NewGroupConverter().ToAttributes(group, true)

	for attr, want := range map[string]bool{
		AttrIsMS365:                    true,
		AttrIsDynamic:                  false,
		AttrIsSecurityGroup:            false,
		AttrIsMailEnabledSecurityGroup: false,
		AttrIsDistributionGroup:        false,
		AttrIsMSTeam:                   true,
	} {
		got, err := attrs.Bool(attr)
		require.NoError(t, err, attr)
		require.NotNil(t, got, "%s must always be emitted", attr)
		assert.Equal(t, want, *got, attr)
	}
}

func TestGroupToAttributesLicensesAndProcessingState(t *testing.T) {
	group := &graph.Group{
		ID:          "g1",
		DisplayName: "Licensed",
		AssignedLicenses: []graph.AssignedLicense{
			{SkuID: "sku-a"},
			{SkuID: "sku-b"},
		},
		LicenseProcessingState: &graph.LicenseProcessingState{State: "ProcessingComplete"},
		CreatedOnBehalfOf:      &graph.DirectoryObject{ID: "owner-1"},
	}

	attrs := NewGroupConverter().ToAttributes(group, false)

	licenses, err := attrs.Strings(AttrAssignedLicenses)
	require.NoError(t, err)
	assert.Equal(t, []string{"sku-a", "sku-b"}, licenses)

	state, _ := attrs.String(AttrLicenseProcessingState)
	assert.Equal(t, "ProcessingComplete", state)
	owner, _ := attrs.String(AttrCreatedOnBehalfOf)
	assert.Equal(t, "owner-1", owner)
}

func TestLicenseToAttributes(t *testing.T) {
	sku := &graph.SubscribedSku{
		ID:               "tenant-1_sku-a",
		SkuID:            "sku-a",
		SkuPartNumber:    "ENTERPRISEPACK",
		AppliesTo:        "User",
		CapabilityStatus: "Enabled",
		ConsumedUnits:    37,
	}

	attrs := NewLicenseConverter().ToAttributes(sku)

	id, _ := attrs.String(AttrLicenseID)
	assert.Equal(t, "tenant-1_sku-a", id)
	skuID, _ := attrs.String(AttrSkuID)
	assert.Equal(t, "sku-a", skuID)
	part, _ := attrs.String(AttrSkuPartNumber)
	assert.Equal(t, "ENTERPRISEPACK", part)
	applies, _ := attrs.String(AttrAppliesTo)
	assert.Equal(t, "User", applies)
	status, _ := attrs.String(AttrCapabilityStatus)
	assert.Equal(t, "Enabled", status)
	units, err := attrs.Int(AttrConsumedUnits)
	require.NoError(t, err)
	assert.Equal(t, 37, units)
}

func boolPtr(b bool) *bool {
	return &b
}
