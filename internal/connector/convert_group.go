package connector

import (
	"fmt"

	"github.com/isometry/entra-connector/internal/graph"
)

// GroupConverter translates between generic attribute sets and Graph group
// objects.
type GroupConverter struct{}

// NewGroupConverter creates a group converter.
func NewGroupConverter() *GroupConverter {
	return &GroupConverter{}
}

// ToGroup builds a sparse Graph group from an attribute set. Absent
// attributes leave their fields at the zero value.
func (gc *GroupConverter) ToGroup(attrs AttributeSet) (*graph.Group, error) {
	group := &graph.Group{}
	var err error

	read := func(name string) string {
		if err != nil {
			return ""
		}
		var v string
		v, err = attrs.String(name)
		return v
	}
	readBool := func(name string) *bool {
		if err != nil {
			return nil
		}
		var v *bool
		v, err = attrs.Bool(name)
		return v
	}

	group.ID = read(AttrGroupID)
	group.DisplayName = read(AttrDisplayName)
	group.Description = read(AttrDescription)
	group.Classification = read(AttrClassification)
	group.Mail = read(AttrEmail)
	group.MailNickname = read(AttrEmailNickname)
	group.MembershipRule = read(AttrMembershipRule)
	group.MembershipRuleProcessingState = read(AttrMembershipRuleProcessingState)
	group.OnPremisesDomainName = read(AttrOnPremisesDomainName)
	group.OnPremisesNetBiosName = read(AttrOnPremisesNetBiosName)
	group.PreferredDataLocation = read(AttrPreferredDataLocation)
	group.PreferredLanguage = read(AttrPreferredLanguage)
	group.SecurityIdentifier = read(AttrSecurityIdentifier)
	group.Theme = read(AttrTheme)
	group.Visibility = read(AttrVisibility)

	group.MailEnabled = readBool(AttrEmailEnabled)
	group.SecurityEnabled = readBool(AttrSecurityEnabled)
	group.IsAssignableToRole = readBool(AttrIsAssignableToRole)

	if err != nil {
		return nil, graph.NewValidationError("group_convert", err.Error())
	}

	group.GroupTypes, err = attrs.Strings(AttrGroupTypes)
	if err != nil {
		return nil, graph.NewValidationError("group_convert", err.Error())
	}

	return group, nil
}

// ToAttributes flattens a Graph group into a generic attribute set. The name
// attribute is a composite of display name and object ID, since the
// directory does not enforce display-name uniqueness. The variety flags are
// always emitted, derived from the group's type markers; the team flag comes
// from the separate teams endpoint probe.
func (gc *GroupConverter) ToAttributes(group *graph.Group, isTeam bool) AttributeSet {
	attrs := NewAttributeSet()

	attrs.setString(AttrGroupID, group.ID)
	if group.DisplayName != "" {
		attrs.Set(AttrDisplayName, fmt.Sprintf("%s (%s)", group.DisplayName, group.ID))
	}
	attrs.setString(AttrDescription, group.Description)
	attrs.setString(AttrClassification, group.Classification)
	attrs.setString(AttrEmail, group.Mail)
	attrs.setString(AttrEmailNickname, group.MailNickname)
	attrs.setString(AttrMembershipRule, group.MembershipRule)
	attrs.setString(AttrMembershipRuleProcessingState, group.MembershipRuleProcessingState)
	attrs.setString(AttrOnPremisesDomainName, group.OnPremisesDomainName)
	attrs.setString(AttrOnPremisesNetBiosName, group.OnPremisesNetBiosName)
	attrs.setString(AttrOnPremisesSamAccountName, group.OnPremisesSamAccountName)
	attrs.setString(AttrOnPremisesSecurityIdentifier, group.OnPremisesSecurityIdentifier)
	attrs.setString(AttrPreferredDataLocation, group.PreferredDataLocation)
	attrs.setString(AttrPreferredLanguage, group.PreferredLanguage)
	attrs.setString(AttrSecurityIdentifier, group.SecurityIdentifier)
	attrs.setString(AttrTheme, group.Theme)
	attrs.setString(AttrVisibility, group.Visibility)

	attrs.setStrings(AttrGroupTypes, group.GroupTypes)
	attrs.setStrings(AttrProxyAddresses, group.ProxyAddresses)

	attrs.setBool(AttrEmailEnabled, group.MailEnabled)
	attrs.setBool(AttrSecurityEnabled, group.SecurityEnabled)
	attrs.setBool(AttrIsAssignableToRole, group.IsAssignableToRole)
	attrs.setBool(AttrOnPremisesSyncEnabled, group.OnPremisesSyncEnabled)

	setTime := func(name string, t *graph.Time) {
		if t != nil {
			attrs.Set(name, t.String())
		}
	}
	setTime(AttrCreatedDatetime, group.CreatedDateTime)
	setTime(AttrExpirationDatetime, group.ExpirationDateTime)
	setTime(AttrRenewedDatetime, group.RenewedDateTime)
	setTime(AttrOnPremisesLastSyncDatetime, group.OnPremisesLastSyncDateTime)

	if group.LicenseProcessingState != nil {
		attrs.setString(AttrLicenseProcessingState, group.LicenseProcessingState.State)
	}
	if group.CreatedOnBehalfOf != nil {
		attrs.setString(AttrCreatedOnBehalfOf, group.CreatedOnBehalfOf.ID)
	}

	var licenses []string
	for i := range group.AssignedLicenses {
		if group.AssignedLicenses[i].SkuID != "" {
			licenses = append(licenses, group.AssignedLicenses[i].SkuID)
		}
	}
	attrs.setStrings(AttrAssignedLicenses, licenses)

	class := graph.ClassifyGroup(group)
	attrs.Set(AttrIsMS365, class.M365)
	attrs.Set(AttrIsDynamic, class.Dynamic)
	attrs.Set(AttrIsSecurityGroup, class.Security)
	attrs.Set(AttrIsMailEnabledSecurityGroup, class.MailEnabledSecurity)
	attrs.Set(AttrIsDistributionGroup, class.Distribution)
	attrs.Set(AttrIsMSTeam, isTeam)

	return attrs
}
