package connector

import "fmt"

// EntityType identifies a directory object class managed by the connector.
type EntityType string

const (
	EntityUser    EntityType = "user"
	EntityGroup   EntityType = "group"
	EntityLicense EntityType = "license"
)

// AttributeType is the semantic type of an attribute's values.
type AttributeType string

const (
	TypeString                 AttributeType = "string"
	TypeBoolean                AttributeType = "boolean"
	TypeInteger                AttributeType = "integer"
	TypeGuardedString          AttributeType = "guarded-string"
	TypeRelationshipIdentifier AttributeType = "relationship-identifier"
)

// Flag is a bitmask of attribute mutability and visibility markers.
type Flag uint8

const (
	FlagMultivalued Flag = 1 << iota
	FlagNotCreatable
	FlagNotUpdatable
	FlagNotReadable
	FlagNotReturnedByDefault
)

// readOnly marks attributes the directory derives and never accepts.
const readOnly = FlagNotCreatable | FlagNotUpdatable

// Role marks the special purpose of an attribute within its entity type.
type Role uint8

const (
	RoleNone Role = iota
	RoleIdentifier
	RoleName
)

// AttributeDescriptor is the static declaration of one connector attribute.
type AttributeDescriptor struct {
	Name  string
	Type  AttributeType
	Flags Flag
	Role  Role
}

// Is reports whether all given flags are set on the descriptor.
func (d AttributeDescriptor) Is(flags Flag) bool {
	return d.Flags&flags == flags
}

// Multivalued reports whether the attribute carries multiple values.
func (d AttributeDescriptor) Multivalued() bool {
	return d.Is(FlagMultivalued)
}

// User attribute names.
const (
	AttrUserID                            = "USER_ID"
	AttrAccountEnabled                    = "ACCOUNT_ENABLED"
	AttrAgeGroup                          = "AGE_GROUP"
	AttrAssignedLicenses                  = "ASSIGNED_LICENSES"
	AttrAssignedGroups                    = "ASSIGNED_GROUPS"
	AttrBusinessPhones                    = "BUSINESS_PHONES"
	AttrCity                              = "CITY"
	AttrCompanyName                       = "COMPANY_NAME"
	AttrCountry                           = "COUNTRY"
	AttrCreatedDatetime                   = "CREATED_DATETIME"
	AttrCreationType                      = "CREATION_TYPE"
	AttrDepartment                        = "DEPARTMENT"
	AttrDisplayName                       = "DISPLAY_NAME"
	AttrEmployeeHireDate                  = "EMPLOYEE_HIRE_DATE"
	AttrEmployeeID                        = "EMPLOYEE_ID"
	AttrCostCenter                        = "COST_CENTER"
	AttrDivision                          = "DIVISION"
	AttrEmployeeType                      = "EMPLOYEE_TYPE"
	AttrExternalUserState                 = "EXTERNAL_USER_STATE"
	AttrExternalUserStateChangeDatetime   = "EXTERNAL_USER_STATE_CHANGE_DATETIME"
	AttrGivenName                         = "GIVEN_NAME"
	AttrIMAddresses                       = "IM_ADDRESSES"
	AttrJobTitle                          = "JOB_TITLE"
	AttrLastPasswordChangeDatetime        = "LAST_PASSWORD_CHANGE_DATETIME"
	AttrEmail                             = "EMAIL"
	AttrEmailNickname                     = "EMAIL_NICKNAME"
	AttrOfficeLocation                    = "OFFICE_LOCATION"
	AttrOnPremisesDistinguishedName       = "ON_PREMISES_DISTINGUISHED_NAME"
	AttrOnPremisesDomainName              = "ON_PREMISES_DOMAIN_NAME"
	AttrOnPremisesImmutableID             = "ON_PREMISES_IMMUTABLE_ID"
	AttrOnPremisesLastSyncDatetime        = "ON_PREMISES_LAST_SYNC_DATETIME"
	AttrOnPremisesSamAccountName          = "ON_PREMISES_SAM_ACCOUNT_NAME"
	AttrOnPremisesSecurityIdentifier      = "ON_PREMISES_SECURITY_IDENTIFIER"
	AttrOnPremisesSyncEnabled             = "ON_PREMISES_SYNC_ENABLED"
	AttrOnPremisesUserPrincipalName       = "ON_PREMISES_USER_PRINCIPAL_NAME"
	AttrOtherEmails                       = "OTHER_EMAILS"
	AttrPasswordPolicies                  = "PASSWORD_POLICIES"
	AttrPostalCode                        = "POSTAL_CODE"
	AttrPreferredDataLocation             = "PREFERRED_DATA_LOCATION"
	AttrPreferredLanguage                 = "PREFERRED_LANGUAGE"
	AttrProxyAddresses                    = "PROXY_ADDRESSES"
	AttrSecurityIdentifier                = "SECURITY_IDENTIFIER"
	AttrState                             = "STATE"
	AttrStreetAddress                     = "STREET_ADDRESS"
	AttrSurname                           = "SURNAME"
	AttrUsageLocation                     = "USAGE_LOCATION"
	AttrUserPrincipalName                 = "USER_PRINCIPAL_NAME"
	AttrUserType                          = "USER_TYPE"
	AttrHireDate                          = "HIRE_DATE"
	AttrResponsibilities                  = "RESPONSIBILITIES"
	AttrSkills                            = "SKILLS"
	AttrPassword                          = "PASSWORD"
	AttrForceChangePasswordNextSignIn     = "FORCE_CHANGE_PASSWORD_NEXT_SIGN_IN"
	AttrForceChangePasswordNextSignInMFA  = "FORCE_CHANGE_PASSWORD_NEXT_SIGN_IN_WITH_MFA"
)

// Group attribute names. Names shared with users (DISPLAY_NAME, EMAIL, ...)
// reuse the user constants.
const (
	AttrGroupID                       = "GROUP_ID"
	AttrClassification                = "CLASSIFICATION"
	AttrDescription                   = "DESCRIPTION"
	AttrExpirationDatetime            = "EXPIRATION_DATETIME"
	AttrGroupTypes                    = "GROUP_TYPES"
	AttrIsAssignableToRole            = "IS_ASSIGNABLE_TO_ROLE"
	AttrLicenseProcessingState        = "LICENSE_PROCESSING_STATE"
	AttrEmailEnabled                  = "EMAIL_ENABLED"
	AttrMembershipRule                = "MEMBERSHIP_RULE"
	AttrMembershipRuleProcessingState = "MEMBERSHIP_RULE_PROCESSING_STATE"
	AttrOnPremisesNetBiosName         = "ON_PREMISES_NET_BIOS_NAME"
	AttrRenewedDatetime               = "RENEWED_DATETIME"
	AttrSecurityEnabled               = "SECURITY_ENABLED"
	AttrTheme                         = "THEME"
	AttrVisibility                    = "VISIBILITY"
	AttrCreatedOnBehalfOf             = "CREATED_ON_BEHALF_OF"
	AttrIsDynamic                     = "IS_DYNAMIC"
	AttrIsMS365                       = "IS_MS_365"
	AttrIsMSTeam                      = "IS_MS_TEAM"
	AttrIsSecurityGroup               = "IS_SECURITY_GROUP"
	AttrIsMailEnabledSecurityGroup    = "IS_MAIL_ENABLED_SECURITY_GROUP"
	AttrIsDistributionGroup           = "IS_DISTRIBUTION_GROUP"
)

// License attribute names.
const (
	AttrLicenseID        = "LICENSE_ID"
	AttrAppliesTo        = "APPLIES_TO"
	AttrCapabilityStatus = "CAPABILITY_STATUS"
	AttrConsumedUnits    = "CONSUMED_UNITS"
	AttrSkuID            = "SKU_ID"
	AttrSkuPartNumber    = "SKU_PART_NUMBER"
)

var userSchema = []AttributeDescriptor{
	{Name: AttrUserID, Type: TypeString, Flags: readOnly, Role: RoleIdentifier},
	{Name: AttrDisplayName, Type: TypeString, Role: RoleName},
	{Name: AttrAccountEnabled, Type: TypeBoolean},
	{Name: AttrAgeGroup, Type: TypeString},
	{Name: AttrBusinessPhones, Type: TypeString, Flags: FlagMultivalued},
	{Name: AttrCity, Type: TypeString},
	{Name: AttrCompanyName, Type: TypeString},
	{Name: AttrCountry, Type: TypeString},
	{Name: AttrCreatedDatetime, Type: TypeString, Flags: readOnly},
	{Name: AttrCreationType, Type: TypeString},
	{Name: AttrDepartment, Type: TypeString},
	{Name: AttrEmployeeHireDate, Type: TypeString},
	{Name: AttrEmployeeID, Type: TypeString},
	{Name: AttrCostCenter, Type: TypeString},
	{Name: AttrDivision, Type: TypeString},
	{Name: AttrEmployeeType, Type: TypeString},
	{Name: AttrExternalUserState, Type: TypeString},
	{Name: AttrExternalUserStateChangeDatetime, Type: TypeString},
	{Name: AttrGivenName, Type: TypeString},
	{Name: AttrIMAddresses, Type: TypeString, Flags: FlagMultivalued},
	{Name: AttrJobTitle, Type: TypeString},
	{Name: AttrLastPasswordChangeDatetime, Type: TypeString, Flags: readOnly},
	{Name: AttrEmail, Type: TypeString},
	{Name: AttrEmailNickname, Type: TypeString},
	{Name: AttrOfficeLocation, Type: TypeString},
	{Name: AttrOnPremisesDistinguishedName, Type: TypeString},
	{Name: AttrOnPremisesDomainName, Type: TypeString},
	{Name: AttrOnPremisesImmutableID, Type: TypeString},
	{Name: AttrOnPremisesLastSyncDatetime, Type: TypeString, Flags: readOnly},
	{Name: AttrOnPremisesSamAccountName, Type: TypeString, Flags: readOnly},
	{Name: AttrOnPremisesSecurityIdentifier, Type: TypeString, Flags: readOnly},
	{Name: AttrOnPremisesSyncEnabled, Type: TypeBoolean, Flags: readOnly},
	{Name: AttrOnPremisesUserPrincipalName, Type: TypeString},
	{Name: AttrOtherEmails, Type: TypeString, Flags: FlagMultivalued},
	{Name: AttrPasswordPolicies, Type: TypeString},
	{Name: AttrPostalCode, Type: TypeString},
	{Name: AttrPreferredDataLocation, Type: TypeString},
	{Name: AttrPreferredLanguage, Type: TypeString},
	{Name: AttrProxyAddresses, Type: TypeString, Flags: FlagMultivalued | readOnly},
	{Name: AttrSecurityIdentifier, Type: TypeString},
	{Name: AttrState, Type: TypeString},
	{Name: AttrStreetAddress, Type: TypeString},
	{Name: AttrSurname, Type: TypeString},
	{Name: AttrUsageLocation, Type: TypeString},
	{Name: AttrUserPrincipalName, Type: TypeString},
	{Name: AttrUserType, Type: TypeString},
	{Name: AttrHireDate, Type: TypeString},
	{Name: AttrResponsibilities, Type: TypeString, Flags: FlagMultivalued},
	{Name: AttrSkills, Type: TypeString, Flags: FlagMultivalued},
	{Name: AttrPassword, Type: TypeGuardedString, Flags: FlagNotReadable | FlagNotReturnedByDefault},
	{Name: AttrForceChangePasswordNextSignIn, Type: TypeBoolean},
	{Name: AttrForceChangePasswordNextSignInMFA, Type: TypeBoolean},
	{Name: AttrAssignedGroups, Type: TypeRelationshipIdentifier, Flags: FlagMultivalued},
	{Name: AttrAssignedLicenses, Type: TypeRelationshipIdentifier, Flags: FlagMultivalued},
}

var groupSchema = []AttributeDescriptor{
	{Name: AttrGroupID, Type: TypeString, Flags: readOnly, Role: RoleIdentifier},
	{Name: AttrDisplayName, Type: TypeString, Role: RoleName},
	{Name: AttrClassification, Type: TypeString},
	{Name: AttrCreatedDatetime, Type: TypeString, Flags: readOnly},
	{Name: AttrDescription, Type: TypeString},
	{Name: AttrExpirationDatetime, Type: TypeString, Flags: readOnly},
	{Name: AttrGroupTypes, Type: TypeString, Flags: FlagMultivalued},
	{Name: AttrIsAssignableToRole, Type: TypeBoolean},
	{Name: AttrLicenseProcessingState, Type: TypeString, Flags: readOnly},
	{Name: AttrEmail, Type: TypeString, Flags: readOnly},
	{Name: AttrEmailEnabled, Type: TypeBoolean},
	{Name: AttrEmailNickname, Type: TypeString},
	{Name: AttrMembershipRule, Type: TypeString},
	{Name: AttrMembershipRuleProcessingState, Type: TypeString},
	{Name: AttrOnPremisesNetBiosName, Type: TypeString},
	{Name: AttrOnPremisesLastSyncDatetime, Type: TypeString, Flags: readOnly},
	{Name: AttrOnPremisesSamAccountName, Type: TypeString, Flags: readOnly},
	{Name: AttrOnPremisesSecurityIdentifier, Type: TypeString, Flags: readOnly},
	{Name: AttrOnPremisesSyncEnabled, Type: TypeBoolean, Flags: readOnly},
	{Name: AttrOnPremisesDomainName, Type: TypeString},
	{Name: AttrPreferredDataLocation, Type: TypeString},
	{Name: AttrPreferredLanguage, Type: TypeString},
	{Name: AttrProxyAddresses, Type: TypeString, Flags: FlagMultivalued | readOnly},
	{Name: AttrRenewedDatetime, Type: TypeString, Flags: readOnly},
	{Name: AttrSecurityEnabled, Type: TypeBoolean},
	{Name: AttrSecurityIdentifier, Type: TypeString},
	{Name: AttrTheme, Type: TypeString},
	{Name: AttrVisibility, Type: TypeString},
	{Name: AttrCreatedOnBehalfOf, Type: TypeString, Flags: readOnly},
	{Name: AttrIsDynamic, Type: TypeBoolean, Flags: readOnly},
	{Name: AttrIsMS365, Type: TypeBoolean, Flags: readOnly},
	{Name: AttrIsMSTeam, Type: TypeBoolean, Flags: readOnly},
	{Name: AttrIsSecurityGroup, Type: TypeBoolean, Flags: readOnly},
	{Name: AttrIsMailEnabledSecurityGroup, Type: TypeBoolean, Flags: readOnly},
	{Name: AttrIsDistributionGroup, Type: TypeBoolean, Flags: readOnly},
	{Name: AttrAssignedLicenses, Type: TypeRelationshipIdentifier, Flags: FlagMultivalued | readOnly},
}

var licenseSchema = []AttributeDescriptor{
	{Name: AttrLicenseID, Type: TypeString, Flags: readOnly, Role: RoleIdentifier},
	{Name: AttrSkuPartNumber, Type: TypeString, Flags: readOnly, Role: RoleName},
	{Name: AttrAppliesTo, Type: TypeString, Flags: readOnly},
	{Name: AttrCapabilityStatus, Type: TypeString, Flags: readOnly},
	{Name: AttrConsumedUnits, Type: TypeInteger, Flags: readOnly},
	{Name: AttrSkuID, Type: TypeString, Flags: readOnly},
}

var schemas = map[EntityType][]AttributeDescriptor{
	EntityUser:    userSchema,
	EntityGroup:   groupSchema,
	EntityLicense: licenseSchema,
}

func init() {
	for entity, descriptors := range schemas {
		seen := make(map[string]struct{}, len(descriptors))
		var ids, names int
		for _, d := range descriptors {
			if _, dup := seen[d.Name]; dup {
				panic(fmt.Sprintf("duplicate attribute %s in %s schema", d.Name, entity))
			}
			seen[d.Name] = struct{}{}
			switch d.Role {
			case RoleIdentifier:
				ids++
			case RoleName:
				names++
			}
			if d.Role != RoleNone && d.Multivalued() {
				panic(fmt.Sprintf("identity attribute %s in %s schema cannot be multivalued", d.Name, entity))
			}
		}
		if ids != 1 || names != 1 {
			panic(fmt.Sprintf("%s schema must declare exactly one identifier and one name attribute", entity))
		}
	}
}

// Describe returns the attribute descriptors for an entity type, in a stable
// order. The returned slice is a copy.
func Describe(entity EntityType) ([]AttributeDescriptor, error) {
	descriptors, ok := schemas[entity]
	if !ok {
		return nil, fmt.Errorf("unknown entity type %q", entity)
	}
	out := make([]AttributeDescriptor, len(descriptors))
	copy(out, descriptors)
	return out, nil
}

// IdentifierAttribute returns the name of the entity's identifier attribute.
func IdentifierAttribute(entity EntityType) string {
	return roleAttribute(entity, RoleIdentifier)
}

// NameAttribute returns the name of the entity's display-name attribute.
func NameAttribute(entity EntityType) string {
	return roleAttribute(entity, RoleName)
}

func roleAttribute(entity EntityType, role Role) string {
	for _, d := range schemas[entity] {
		if d.Role == role {
			return d.Name
		}
	}
	return ""
}
