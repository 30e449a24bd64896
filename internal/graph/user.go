package graph

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// userSummaryFields are selected for listings, where only commonly-filtered
// properties are needed.
var userSummaryFields = []string{
	"id",
	"displayName",
	"accountEnabled",
	"businessPhones",
	"companyName",
	"createdDateTime",
	"creationType",
	"department",
	"employeeHireDate",
	"employeeId",
	"employeeType",
	"givenName",
	"jobTitle",
	"mail",
	"mailNickname",
	"officeLocation",
	"preferredLanguage",
	"surname",
	"userPrincipalName",
	"userType",
}

// userDetailFields extend the summary set for single-object reads.
var userDetailFields = append(userSummaryFields[:len(userSummaryFields):len(userSummaryFields)],
	"ageGroup",
	"city",
	"country",
	"employeeOrgData",
	"externalUserState",
	"externalUserStateChangeDateTime",
	"imAddresses",
	"lastPasswordChangeDateTime",
	"licenseAssignmentStates",
	"onPremisesDistinguishedName",
	"onPremisesDomainName",
	"onPremisesImmutableId",
	"onPremisesLastSyncDateTime",
	"onPremisesSamAccountName",
	"onPremisesSecurityIdentifier",
	"onPremisesSyncEnabled",
	"onPremisesUserPrincipalName",
	"otherMails",
	"passwordPolicies",
	"postalCode",
	"preferredDataLocation",
	"proxyAddresses",
	"securityIdentifier",
	"state",
	"streetAddress",
	"usageLocation",
	"hireDate",
	"responsibilities",
	"skills",
)

// PasswordProfile holds credential settings for user creation and password
// resets. It is only sent when a password or force-change flag is present.
type PasswordProfile struct {
	Password                             string `json:"password,omitempty"`
	ForceChangePasswordNextSignIn        *bool  `json:"forceChangePasswordNextSignIn,omitempty"`
	ForceChangePasswordNextSignInWithMfa *bool  `json:"forceChangePasswordNextSignInWithMfa,omitempty"`
}

// EmployeeOrgData holds the organizational cost attribution properties.
type EmployeeOrgData struct {
	CostCenter string `json:"costCenter,omitempty"`
	Division   string `json:"division,omitempty"`
}

// DirectoryObject is a minimal reference to another directory object, as
// returned by $expand=memberOf.
type DirectoryObject struct {
	ODataType   string `json:"@odata.type,omitempty"`
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
}

// IsGroup reports whether the referenced object is a group.
func (d *DirectoryObject) IsGroup() bool {
	return strings.HasSuffix(d.ODataType, ".group")
}

// User represents a Microsoft Entra ID user. All fields use omitempty (or
// pointers) so that a sparsely-populated value marshals to a sparse PATCH
// payload.
type User struct {
	// Core identification
	ID                string `json:"id,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	GivenName         string `json:"givenName,omitempty"`
	Surname           string `json:"surname,omitempty"`
	UserType          string `json:"userType,omitempty"`
	CreationType      string `json:"creationType,omitempty"`
	AgeGroup          string `json:"ageGroup,omitempty"`

	// Contact information
	Mail           string   `json:"mail,omitempty"`
	MailNickname   string   `json:"mailNickname,omitempty"`
	OtherMails     []string `json:"otherMails,omitempty"`
	ProxyAddresses []string `json:"proxyAddresses,omitempty"`
	IMAddresses    []string `json:"imAddresses,omitempty"`
	BusinessPhones []string `json:"businessPhones,omitempty"`

	// Address information
	StreetAddress string `json:"streetAddress,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	Country       string `json:"country,omitempty"`

	// Organizational information
	JobTitle         string           `json:"jobTitle,omitempty"`
	Department       string           `json:"department,omitempty"`
	CompanyName      string           `json:"companyName,omitempty"`
	OfficeLocation   string           `json:"officeLocation,omitempty"`
	EmployeeID       string           `json:"employeeId,omitempty"`
	EmployeeType     string           `json:"employeeType,omitempty"`
	EmployeeHireDate *Time            `json:"employeeHireDate,omitempty"`
	EmployeeOrgData  *EmployeeOrgData `json:"employeeOrgData,omitempty"`

	// HireDate is the legacy hire timestamp, distinct from the
	// employeeHireDate property above.
	HireDate         *Time    `json:"hireDate,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Skills           []string `json:"skills,omitempty"`

	// Locale and licensing prerequisites
	PreferredLanguage     string `json:"preferredLanguage,omitempty"`
	PreferredDataLocation string `json:"preferredDataLocation,omitempty"`
	UsageLocation         string `json:"usageLocation,omitempty"`

	// Account status and security
	AccountEnabled     *bool            `json:"accountEnabled,omitempty"`
	PasswordProfile    *PasswordProfile `json:"passwordProfile,omitempty"`
	PasswordPolicies   string           `json:"passwordPolicies,omitempty"`
	SecurityIdentifier string           `json:"securityIdentifier,omitempty"`

	// Guest state
	ExternalUserState               string `json:"externalUserState,omitempty"`
	ExternalUserStateChangeDateTime *Time  `json:"externalUserStateChangeDateTime,omitempty"`

	// On-premises directory synchronization
	OnPremisesDistinguishedName  string `json:"onPremisesDistinguishedName,omitempty"`
	OnPremisesDomainName         string `json:"onPremisesDomainName,omitempty"`
	OnPremisesImmutableID        string `json:"onPremisesImmutableId,omitempty"`
	OnPremisesLastSyncDateTime   *Time  `json:"onPremisesLastSyncDateTime,omitempty"`
	OnPremisesSamAccountName     string `json:"onPremisesSamAccountName,omitempty"`
	OnPremisesSecurityIdentifier string `json:"onPremisesSecurityIdentifier,omitempty"`
	OnPremisesSyncEnabled        *bool  `json:"onPremisesSyncEnabled,omitempty"`
	OnPremisesUserPrincipalName  string `json:"onPremisesUserPrincipalName,omitempty"`

	// Timestamps
	CreatedDateTime            *Time `json:"createdDateTime,omitempty"`
	LastPasswordChangeDateTime *Time `json:"lastPasswordChangeDateTime,omitempty"`

	// Licensing and membership (read-only; populated on detail reads)
	LicenseAssignmentStates []LicenseAssignmentState `json:"licenseAssignmentStates,omitempty"`
	MemberOf                []DirectoryObject        `json:"memberOf,omitempty"`
}

// UserManager handles Microsoft Entra ID user operations.
type UserManager struct {
	client Client
	logger Logger
}

// NewUserManager creates a new user manager instance.
func NewUserManager(client Client, logger Logger) *UserManager {
	return &UserManager{
		client: client,
		logger: logger,
	}
}

// Create creates a new user and returns its directory object ID.
func (um *UserManager) Create(ctx context.Context, user *User) (string, error) {
	if user == nil {
		return "", NewValidationError("user_create", "user cannot be nil")
	}
	if user.DisplayName == "" {
		return "", NewValidationError("user_create", "display name is required")
	}
	if user.UserPrincipalName == "" {
		return "", NewValidationError("user_create", "user principal name is required")
	}

	var created User
	err := LogOperation(um.logger, "user_create", map[string]any{
		"user_principal_name": user.UserPrincipalName,
	}, func() error {
		return um.client.Post(ctx, "/users", user, &created)
	})
	if err != nil {
		return "", WrapError("user_create", err)
	}
	return created.ID, nil
}

// Update applies a sparse PATCH to an existing user.
func (um *UserManager) Update(ctx context.Context, id string, user *User) error {
	if id == "" {
		return NewValidationError("user_update", "user ID cannot be empty")
	}
	if user == nil {
		return NewValidationError("user_update", "user cannot be nil")
	}

	err := LogOperation(um.logger, "user_update", map[string]any{
		"user_id": id,
	}, func() error {
		return um.client.Patch(ctx, "/users/"+url.PathEscape(id), user)
	})
	return WrapError("user_update", err)
}

// Delete removes a user from the directory.
func (um *UserManager) Delete(ctx context.Context, id string) error {
	if id == "" {
		return NewValidationError("user_delete", "user ID cannot be empty")
	}

	err := LogOperation(um.logger, "user_delete", map[string]any{
		"user_id": id,
	}, func() error {
		return um.client.Delete(ctx, "/users/"+url.PathEscape(id))
	})
	return WrapError("user_delete", err)
}

// List retrieves users with summary fields. A filter becomes a single
// server-side $filter predicate; without one the collection is fetched in
// pages of PageSize. Either way the continuation cursors are drained before
// returning. Filter attributes are Graph property names ("displayName",
// "mail", ...).
func (um *UserManager) List(ctx context.Context, filter *Filter) ([]User, error) {
	query := url.Values{}
	query.Set("$select", strings.Join(userSummaryFields, ","))

	var users []User
	err := LogOperation(um.logger, "user_list", map[string]any{
		"filtered": filter != nil,
	}, func() error {
		if filter != nil {
			query.Set("$filter", equalityFilter(filter.Attribute, filter.Value))
		} else {
			query.Set("$top", strconv.Itoa(um.client.PageSize()))
		}
		all, err := listAll[User](ctx, um.client, "/users", query)
		if err != nil {
			return err
		}
		users = all
		return nil
	})
	if err != nil {
		return nil, WrapError("user_list", err)
	}

	um.logger.Debug("Listed users", map[string]any{
		"count": len(users),
	})
	return users, nil
}

// Get retrieves a single user with detail fields and expanded group
// membership.
func (um *UserManager) Get(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, NewValidationError("user_get", "user ID cannot be empty")
	}

	query := url.Values{}
	query.Set("$select", strings.Join(userDetailFields, ","))
	query.Set("$expand", "memberOf")

	var user User
	err := LogOperation(um.logger, "user_get", map[string]any{
		"user_id": id,
	}, func() error {
		return um.client.Get(ctx, "/users/"+url.PathEscape(id), query, &user)
	})
	if err != nil {
		return nil, WrapError("user_get", err)
	}
	return &user, nil
}

// GetByName retrieves the first user whose display name matches exactly.
func (um *UserManager) GetByName(ctx context.Context, name string) (*User, error) {
	if name == "" {
		return nil, NewValidationError("user_get_by_name", "user name cannot be empty")
	}

	users, err := um.List(ctx, &Filter{Attribute: "displayName", Value: name})
	if err != nil {
		return nil, WrapError("user_get_by_name", err)
	}
	if len(users) == 0 {
		return nil, NewError("user_get_by_name", ErrorCategoryNotFound,
			fmt.Sprintf("no user with display name %q", name))
	}
	return &users[0], nil
}

// equalityFilter builds an OData eq expression, doubling single quotes in the
// value per the OData escaping rules.
func equalityFilter(field, value string) string {
	return field + " eq '" + strings.ReplaceAll(value, "'", "''") + "'"
}
