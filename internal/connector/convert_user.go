package connector

import (
	"github.com/isometry/entra-connector/internal/graph"
)

// UserChange is the outcome of converting an attribute set for a user write:
// the sparse domain object plus the relationship deltas to reconcile after
// the write succeeds.
type UserChange struct {
	User     *graph.User
	Groups   graph.AssignmentDelta
	Licenses graph.AssignmentDelta
}

// UserConverter translates between generic attribute sets and Graph user
// objects.
type UserConverter struct {
	config *graph.Config
}

// NewUserConverter creates a user converter bound to the connector
// configuration, which supplies the tenant ID for composite license
// identifiers and the force-password-change creation default.
func NewUserConverter(config *graph.Config) *UserConverter {
	return &UserConverter{config: config}
}

// ToUser builds a sparse Graph user from an attribute set. Absent attributes
// leave their fields at the zero value so the resulting PATCH payload only
// touches what the caller sent.
//
// The password profile and employee org data sub-records are only populated
// when at least one of their constituent attributes is present. Writing empty
// sub-records trips the directory's protection for on-premises synchronized
// objects, so their absence has to survive the conversion.
//
// For updates, relationship changes arrive through the added and removed
// sets; an identifier named in both cancels and produces no calls. For
// creation, the full desired relationship sets come from the main attribute
// set and every entry is an addition.
func (uc *UserConverter) ToUser(attrs, added, removed AttributeSet, creation bool) (*UserChange, error) {
	user := &graph.User{}
	var err error

	read := func(name string) string {
		if err != nil {
			return ""
		}
		var v string
		v, err = attrs.String(name)
		return v
	}
	readMulti := func(name string) []string {
		if err != nil {
			return nil
		}
		var v []string
		v, err = attrs.Strings(name)
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
	readTime := func(name string) *graph.Time {
		if err != nil {
			return nil
		}
		raw := read(name)
		if err != nil || raw == "" {
			return nil
		}
		var t *graph.Time
		t, err = graph.ParseTime(raw)
		return t
	}

	user.ID = read(AttrUserID)
	user.DisplayName = read(AttrDisplayName)
	user.GivenName = read(AttrGivenName)
	user.Surname = read(AttrSurname)
	user.Mail = read(AttrEmail)
	user.MailNickname = read(AttrEmailNickname)
	user.UserPrincipalName = read(AttrUserPrincipalName)
	user.UserType = read(AttrUserType)
	user.CreationType = read(AttrCreationType)
	user.AgeGroup = read(AttrAgeGroup)
	user.AccountEnabled = readBool(AttrAccountEnabled)

	user.BusinessPhones = readMulti(AttrBusinessPhones)
	user.IMAddresses = readMulti(AttrIMAddresses)
	user.OtherMails = readMulti(AttrOtherEmails)
	user.ProxyAddresses = readMulti(AttrProxyAddresses)
	user.Responsibilities = readMulti(AttrResponsibilities)
	user.Skills = readMulti(AttrSkills)

	user.City = read(AttrCity)
	user.State = read(AttrState)
	user.Country = read(AttrCountry)
	user.PostalCode = read(AttrPostalCode)
	user.StreetAddress = read(AttrStreetAddress)

	user.JobTitle = read(AttrJobTitle)
	user.Department = read(AttrDepartment)
	user.CompanyName = read(AttrCompanyName)
	user.OfficeLocation = read(AttrOfficeLocation)
	user.EmployeeID = read(AttrEmployeeID)
	user.EmployeeType = read(AttrEmployeeType)
	user.EmployeeHireDate = readTime(AttrEmployeeHireDate)
	user.HireDate = readTime(AttrHireDate)

	user.PreferredLanguage = read(AttrPreferredLanguage)
	user.PreferredDataLocation = read(AttrPreferredDataLocation)
	user.UsageLocation = read(AttrUsageLocation)

	user.ExternalUserState = read(AttrExternalUserState)
	user.ExternalUserStateChangeDateTime = readTime(AttrExternalUserStateChangeDatetime)

	user.OnPremisesDistinguishedName = read(AttrOnPremisesDistinguishedName)
	user.OnPremisesDomainName = read(AttrOnPremisesDomainName)
	user.OnPremisesImmutableID = read(AttrOnPremisesImmutableID)
	user.OnPremisesUserPrincipalName = read(AttrOnPremisesUserPrincipalName)

	user.PasswordPolicies = read(AttrPasswordPolicies)
	user.SecurityIdentifier = read(AttrSecurityIdentifier)

	if err != nil {
		return nil, graph.NewValidationError("user_convert", err.Error())
	}

	if err := uc.applyPasswordProfile(user, attrs, creation); err != nil {
		return nil, err
	}
	if err := uc.applyEmployeeOrgData(user, attrs); err != nil {
		return nil, err
	}

	change := &UserChange{User: user}
	if creation {
		groups, err := attrs.Strings(AttrAssignedGroups)
		if err != nil {
			return nil, graph.NewValidationError("user_convert", err.Error())
		}
		licenses, err := attrs.Strings(AttrAssignedLicenses)
		if err != nil {
			return nil, graph.NewValidationError("user_convert", err.Error())
		}
		change.Groups = graph.CreationDelta(groups)
		change.Licenses = graph.CreationDelta(licenses)
		return change, nil
	}

	groupsAdded, err := added.Strings(AttrAssignedGroups)
	if err != nil {
		return nil, graph.NewValidationError("user_convert", err.Error())
	}
	groupsRemoved, err := removed.Strings(AttrAssignedGroups)
	if err != nil {
		return nil, graph.NewValidationError("user_convert", err.Error())
	}
	licensesAdded, err := added.Strings(AttrAssignedLicenses)
	if err != nil {
		return nil, graph.NewValidationError("user_convert", err.Error())
	}
	licensesRemoved, err := removed.Strings(AttrAssignedLicenses)
	if err != nil {
		return nil, graph.NewValidationError("user_convert", err.Error())
	}
	change.Groups = graph.NewUpdateDelta(groupsAdded, groupsRemoved)
	change.Licenses = graph.NewUpdateDelta(licensesAdded, licensesRemoved)
	return change, nil
}

// applyPasswordProfile populates the password profile only when a password
// or force-change flag was sent. On creation with no explicit flag, the
// configured default decides whether the first sign-in forces a change.
func (uc *UserConverter) applyPasswordProfile(user *graph.User, attrs AttributeSet, creation bool) error {
	password, err := attrs.Guarded(AttrPassword)
	if err != nil {
		return graph.NewValidationError("user_convert", err.Error())
	}
	force, err := attrs.Bool(AttrForceChangePasswordNextSignIn)
	if err != nil {
		return graph.NewValidationError("user_convert", err.Error())
	}
	forceMFA, err := attrs.Bool(AttrForceChangePasswordNextSignInMFA)
	if err != nil {
		return graph.NewValidationError("user_convert", err.Error())
	}

	if password.Empty() && force == nil && forceMFA == nil {
		return nil
	}

	if creation && force == nil {
		force = &uc.config.ForcePasswordChange
	}
	user.PasswordProfile = &graph.PasswordProfile{
		Password:                             password.Reveal(),
		ForceChangePasswordNextSignIn:        force,
		ForceChangePasswordNextSignInWithMfa: forceMFA,
	}
	return nil
}

// applyEmployeeOrgData populates employee org data only when a cost center
// or division was sent.
func (uc *UserConverter) applyEmployeeOrgData(user *graph.User, attrs AttributeSet) error {
	costCenter, err := attrs.String(AttrCostCenter)
	if err != nil {
		return graph.NewValidationError("user_convert", err.Error())
	}
	division, err := attrs.String(AttrDivision)
	if err != nil {
		return graph.NewValidationError("user_convert", err.Error())
	}
	if costCenter == "" && division == "" {
		return nil
	}
	user.EmployeeOrgData = &graph.EmployeeOrgData{
		CostCenter: costCenter,
		Division:   division,
	}
	return nil
}

// ToAttributes flattens a Graph user into a generic attribute set. Timestamps
// are emitted only when present; directly-assigned licenses are rendered as
// composite "<tenant>_<sku>" identifiers; group memberships come from the
// expanded memberOf references.
func (uc *UserConverter) ToAttributes(user *graph.User) AttributeSet {
	attrs := NewAttributeSet()

	attrs.setString(AttrUserID, user.ID)
	attrs.setString(AttrDisplayName, user.DisplayName)
	attrs.setString(AttrGivenName, user.GivenName)
	attrs.setString(AttrSurname, user.Surname)
	attrs.setString(AttrEmail, user.Mail)
	attrs.setString(AttrEmailNickname, user.MailNickname)
	attrs.setString(AttrUserPrincipalName, user.UserPrincipalName)
	attrs.setString(AttrUserType, user.UserType)
	attrs.setString(AttrCreationType, user.CreationType)
	attrs.setString(AttrAgeGroup, user.AgeGroup)
	attrs.setBool(AttrAccountEnabled, user.AccountEnabled)

	attrs.setStrings(AttrBusinessPhones, user.BusinessPhones)
	attrs.setStrings(AttrIMAddresses, user.IMAddresses)
	attrs.setStrings(AttrOtherEmails, user.OtherMails)
	attrs.setStrings(AttrProxyAddresses, user.ProxyAddresses)
	attrs.setStrings(AttrResponsibilities, user.Responsibilities)
	attrs.setStrings(AttrSkills, user.Skills)

	attrs.setString(AttrCity, user.City)
	attrs.setString(AttrState, user.State)
	attrs.setString(AttrCountry, user.Country)
	attrs.setString(AttrPostalCode, user.PostalCode)
	attrs.setString(AttrStreetAddress, user.StreetAddress)

	attrs.setString(AttrJobTitle, user.JobTitle)
	attrs.setString(AttrDepartment, user.Department)
	attrs.setString(AttrCompanyName, user.CompanyName)
	attrs.setString(AttrOfficeLocation, user.OfficeLocation)
	attrs.setString(AttrEmployeeID, user.EmployeeID)
	attrs.setString(AttrEmployeeType, user.EmployeeType)

	attrs.setString(AttrPreferredLanguage, user.PreferredLanguage)
	attrs.setString(AttrPreferredDataLocation, user.PreferredDataLocation)
	attrs.setString(AttrUsageLocation, user.UsageLocation)

	attrs.setString(AttrExternalUserState, user.ExternalUserState)
	attrs.setString(AttrPasswordPolicies, user.PasswordPolicies)
	attrs.setString(AttrSecurityIdentifier, user.SecurityIdentifier)

	attrs.setString(AttrOnPremisesDistinguishedName, user.OnPremisesDistinguishedName)
	attrs.setString(AttrOnPremisesDomainName, user.OnPremisesDomainName)
	attrs.setString(AttrOnPremisesImmutableID, user.OnPremisesImmutableID)
	attrs.setString(AttrOnPremisesSamAccountName, user.OnPremisesSamAccountName)
	attrs.setString(AttrOnPremisesSecurityIdentifier, user.OnPremisesSecurityIdentifier)
	attrs.setString(AttrOnPremisesUserPrincipalName, user.OnPremisesUserPrincipalName)
	attrs.setBool(AttrOnPremisesSyncEnabled, user.OnPremisesSyncEnabled)

	setTime := func(name string, t *graph.Time) {
		if t != nil {
			attrs.Set(name, t.String())
		}
	}
	setTime(AttrCreatedDatetime, user.CreatedDateTime)
	setTime(AttrEmployeeHireDate, user.EmployeeHireDate)
	setTime(AttrHireDate, user.HireDate)
	setTime(AttrLastPasswordChangeDatetime, user.LastPasswordChangeDateTime)
	setTime(AttrExternalUserStateChangeDatetime, user.ExternalUserStateChangeDateTime)
	setTime(AttrOnPremisesLastSyncDatetime, user.OnPremisesLastSyncDateTime)

	if org := user.EmployeeOrgData; org != nil {
		attrs.setString(AttrCostCenter, org.CostCenter)
		attrs.setString(AttrDivision, org.Division)
	}
	if profile := user.PasswordProfile; profile != nil {
		attrs.setBool(AttrForceChangePasswordNextSignIn, profile.ForceChangePasswordNextSignIn)
		attrs.setBool(AttrForceChangePasswordNextSignInMFA, profile.ForceChangePasswordNextSignInWithMfa)
		if profile.Password != "" {
			attrs.Set(AttrPassword, NewGuardedString(profile.Password))
		}
	}

	// Empty relationship results stay absent rather than becoming empty
	// lists, so callers can distinguish "none" from "not fetched".
	var licenses []string
	for i := range user.LicenseAssignmentStates {
		state := &user.LicenseAssignmentStates[i]
		if state.Direct() && state.SkuID != "" {
			licenses = append(licenses, uc.config.TenantID+"_"+state.SkuID)
		}
	}
	attrs.setStrings(AttrAssignedLicenses, licenses)

	var groups []string
	for i := range user.MemberOf {
		if user.MemberOf[i].IsGroup() {
			groups = append(groups, user.MemberOf[i].ID)
		}
	}
	attrs.setStrings(AttrAssignedGroups, groups)

	return attrs
}
