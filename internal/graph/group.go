package graph

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Well-known groupTypes markers.
const (
	GroupTypeUnified           = "Unified"
	GroupTypeDynamicMembership = "DynamicMembership"
)

var groupSummaryFields = []string{
	"id",
	"classification",
	"createdDateTime",
	"description",
	"displayName",
	"expirationDateTime",
	"groupTypes",
	"isAssignableToRole",
	"licenseProcessingState",
	"mail",
	"mailEnabled",
	"mailNickname",
	"membershipRule",
	"membershipRuleProcessingState",
	"preferredLanguage",
	"preferredDataLocation",
	"proxyAddresses",
	"renewedDateTime",
	"securityEnabled",
	"securityIdentifier",
}

var groupDetailFields = append(groupSummaryFields[:len(groupSummaryFields):len(groupSummaryFields)],
	"assignedLicenses",
	"onPremisesDomainName",
	"onPremisesLastSyncDateTime",
	"onPremisesNetBiosName",
	"onPremisesSamAccountName",
	"onPremisesSecurityIdentifier",
	"onPremisesSyncEnabled",
	"theme",
	"visibility",
	"createdOnBehalfOf",
)

// LicenseProcessingState reports whether license assignment for a group has
// completed.
type LicenseProcessingState struct {
	State string `json:"state,omitempty"`
}

// Group represents a Microsoft Entra ID group.
type Group struct {
	// Core identification
	ID           string `json:"id,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	Description  string `json:"description,omitempty"`
	MailNickname string `json:"mailNickname,omitempty"`

	// Type markers; combinations of these determine the group variety.
	GroupTypes         []string `json:"groupTypes,omitempty"`
	MailEnabled        *bool    `json:"mailEnabled,omitempty"`
	SecurityEnabled    *bool    `json:"securityEnabled,omitempty"`
	IsAssignableToRole *bool    `json:"isAssignableToRole,omitempty"`

	// Mail and addressing
	Mail           string   `json:"mail,omitempty"`
	ProxyAddresses []string `json:"proxyAddresses,omitempty"`

	// Dynamic membership
	MembershipRule                string `json:"membershipRule,omitempty"`
	MembershipRuleProcessingState string `json:"membershipRuleProcessingState,omitempty"`

	// Governance
	Classification string `json:"classification,omitempty"`
	Theme          string `json:"theme,omitempty"`
	Visibility     string `json:"visibility,omitempty"`

	// Locale
	PreferredLanguage     string `json:"preferredLanguage,omitempty"`
	PreferredDataLocation string `json:"preferredDataLocation,omitempty"`

	// Identity and synchronization
	SecurityIdentifier           string `json:"securityIdentifier,omitempty"`
	OnPremisesDomainName         string `json:"onPremisesDomainName,omitempty"`
	OnPremisesLastSyncDateTime   *Time  `json:"onPremisesLastSyncDateTime,omitempty"`
	OnPremisesNetBiosName        string `json:"onPremisesNetBiosName,omitempty"`
	OnPremisesSamAccountName     string `json:"onPremisesSamAccountName,omitempty"`
	OnPremisesSecurityIdentifier string `json:"onPremisesSecurityIdentifier,omitempty"`
	OnPremisesSyncEnabled        *bool  `json:"onPremisesSyncEnabled,omitempty"`

	// Timestamps
	CreatedDateTime    *Time `json:"createdDateTime,omitempty"`
	ExpirationDateTime *Time `json:"expirationDateTime,omitempty"`
	RenewedDateTime    *Time `json:"renewedDateTime,omitempty"`

	// Licensing (read-only)
	AssignedLicenses       []AssignedLicense       `json:"assignedLicenses,omitempty"`
	LicenseProcessingState *LicenseProcessingState `json:"licenseProcessingState,omitempty"`

	// CreatedOnBehalfOf references the directory object the group was
	// provisioned for (read-only).
	CreatedOnBehalfOf *DirectoryObject `json:"createdOnBehalfOf,omitempty"`
}

// GroupClassification holds the variety flags derived from a group's type
// markers. Exactly one of the first five is normally true, but malformed
// combinations (dynamic security groups, for example) can yield all false.
type GroupClassification struct {
	M365                bool // Microsoft 365 group: Unified, not dynamic, mail-enabled
	Dynamic             bool // Dynamic membership group, mail-enabled
	Security            bool // Plain security group: no type markers, no mail
	MailEnabledSecurity bool // Security group that is also mail-enabled
	Distribution        bool // Mail-only distribution group
}

// ClassifyGroup derives the group variety from groupTypes, mailEnabled and
// securityEnabled. Nil boolean pointers count as false.
func ClassifyGroup(group *Group) GroupClassification {
	mail := group.MailEnabled != nil && *group.MailEnabled
	security := group.SecurityEnabled != nil && *group.SecurityEnabled

	var unified, dynamic bool
	for _, t := range group.GroupTypes {
		switch {
		case strings.EqualFold(t, GroupTypeUnified):
			unified = true
		case strings.EqualFold(t, GroupTypeDynamicMembership):
			dynamic = true
		}
	}
	plain := len(group.GroupTypes) == 0

	return GroupClassification{
		M365:                unified && !dynamic && mail,
		Dynamic:             dynamic && mail,
		Security:            plain && !mail && security,
		MailEnabledSecurity: plain && mail && security,
		Distribution:        plain && mail && !security,
	}
}

// GroupManager handles Microsoft Entra ID group operations.
type GroupManager struct {
	client Client
	logger Logger
}

// NewGroupManager creates a new group manager instance.
func NewGroupManager(client Client, logger Logger) *GroupManager {
	return &GroupManager{
		client: client,
		logger: logger,
	}
}

// Create creates a new group and returns its directory object ID.
func (gm *GroupManager) Create(ctx context.Context, group *Group) (string, error) {
	if group == nil {
		return "", NewValidationError("group_create", "group cannot be nil")
	}
	if group.DisplayName == "" {
		return "", NewValidationError("group_create", "display name is required")
	}

	var created Group
	err := LogOperation(gm.logger, "group_create", map[string]any{
		"display_name": group.DisplayName,
	}, func() error {
		return gm.client.Post(ctx, "/groups", group, &created)
	})
	if err != nil {
		return "", WrapError("group_create", err)
	}
	return created.ID, nil
}

// Update applies a sparse PATCH to an existing group.
func (gm *GroupManager) Update(ctx context.Context, id string, group *Group) error {
	if id == "" {
		return NewValidationError("group_update", "group ID cannot be empty")
	}
	if group == nil {
		return NewValidationError("group_update", "group cannot be nil")
	}

	err := LogOperation(gm.logger, "group_update", map[string]any{
		"group_id": id,
	}, func() error {
		return gm.client.Patch(ctx, "/groups/"+url.PathEscape(id), group)
	})
	return WrapError("group_update", err)
}

// Delete removes a group from the directory.
func (gm *GroupManager) Delete(ctx context.Context, id string) error {
	if id == "" {
		return NewValidationError("group_delete", "group ID cannot be empty")
	}

	err := LogOperation(gm.logger, "group_delete", map[string]any{
		"group_id": id,
	}, func() error {
		return gm.client.Delete(ctx, "/groups/"+url.PathEscape(id))
	})
	return WrapError("group_delete", err)
}

// List retrieves groups with summary fields, draining all continuation
// cursors whether or not a filter is given.
func (gm *GroupManager) List(ctx context.Context, filter *Filter) ([]Group, error) {
	query := url.Values{}
	query.Set("$select", strings.Join(groupSummaryFields, ","))

	var groups []Group
	err := LogOperation(gm.logger, "group_list", map[string]any{
		"filtered": filter != nil,
	}, func() error {
		if filter != nil {
			query.Set("$filter", equalityFilter(filter.Attribute, filter.Value))
		} else {
			query.Set("$top", strconv.Itoa(gm.client.PageSize()))
		}
		all, err := listAll[Group](ctx, gm.client, "/groups", query)
		if err != nil {
			return err
		}
		groups = all
		return nil
	})
	if err != nil {
		return nil, WrapError("group_list", err)
	}

	gm.logger.Debug("Listed groups", map[string]any{
		"count": len(groups),
	})
	return groups, nil
}

// Get retrieves a single group with detail fields.
func (gm *GroupManager) Get(ctx context.Context, id string) (*Group, error) {
	if id == "" {
		return nil, NewValidationError("group_get", "group ID cannot be empty")
	}

	query := url.Values{}
	query.Set("$select", strings.Join(groupDetailFields, ","))

	var group Group
	err := LogOperation(gm.logger, "group_get", map[string]any{
		"group_id": id,
	}, func() error {
		return gm.client.Get(ctx, "/groups/"+url.PathEscape(id), query, &group)
	})
	if err != nil {
		return nil, WrapError("group_get", err)
	}
	return &group, nil
}

// GetByName retrieves the first group whose display name matches exactly.
func (gm *GroupManager) GetByName(ctx context.Context, name string) (*Group, error) {
	if name == "" {
		return nil, NewValidationError("group_get_by_name", "group name cannot be empty")
	}

	groups, err := gm.List(ctx, &Filter{Attribute: "displayName", Value: name})
	if err != nil {
		return nil, WrapError("group_get_by_name", err)
	}
	if len(groups) == 0 {
		return nil, NewError("group_get_by_name", ErrorCategoryNotFound,
			fmt.Sprintf("no group with display name %q", name))
	}
	return &groups[0], nil
}

// IsTeam probes the teams endpoint to determine whether a Microsoft Teams
// team is provisioned on top of the group. A 404 means no team, which is a
// normal condition rather than an error.
func (gm *GroupManager) IsTeam(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, NewValidationError("group_is_team", "group ID cannot be empty")
	}

	var team struct {
		ID string `json:"id"`
	}
	err := gm.client.Get(ctx, "/teams/"+url.PathEscape(id), nil, &team)
	if err != nil {
		if IsNotFoundError(err) {
			return false, nil
		}
		return false, WrapError("group_is_team", err)
	}
	return true, nil
}
