package graph

import (
	"context"
	"net/url"
	"slices"
)

// AssignmentDelta is the difference between a current and a desired set of
// assignment identifiers. ToAdd and ToRemove are deduplicated, sorted and
// disjoint.
type AssignmentDelta struct {
	ToAdd    []string
	ToRemove []string
}

// IsEmpty reports whether the delta requires no directory calls.
func (d AssignmentDelta) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// NewAssignmentDelta computes the delta that transforms current into desired.
// Identifiers present in both sets produce no work.
func NewAssignmentDelta(current, desired []string) AssignmentDelta {
	have := make(map[string]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}
	want := make(map[string]struct{}, len(desired))
	for _, id := range desired {
		want[id] = struct{}{}
	}

	var delta AssignmentDelta
	for id := range want {
		if _, ok := have[id]; !ok {
			delta.ToAdd = append(delta.ToAdd, id)
		}
	}
	for id := range have {
		if _, ok := want[id]; !ok {
			delta.ToRemove = append(delta.ToRemove, id)
		}
	}
	slices.Sort(delta.ToAdd)
	slices.Sort(delta.ToRemove)
	return delta
}

// CreationDelta builds the delta for a newly created object, where every
// desired assignment is an addition.
func CreationDelta(desired []string) AssignmentDelta {
	return NewAssignmentDelta(nil, desired)
}

// NewUpdateDelta builds the delta for an update from explicit added and
// removed identifier sets. An identifier present in both sets cancels out
// and is dropped from both, never applied in either direction. This is the
// same set difference NewAssignmentDelta computes, reconciling from the
// removed set to the added set.
func NewUpdateDelta(added, removed []string) AssignmentDelta {
	return NewAssignmentDelta(removed, added)
}

// MembershipManager applies group membership and license assignment deltas
// to users. Changes are applied in order and fail fast; there is no rollback
// of assignments already made when a later call fails.
type MembershipManager struct {
	client Client
	logger Logger
}

// NewMembershipManager creates a new membership manager instance.
func NewMembershipManager(client Client, logger Logger) *MembershipManager {
	return &MembershipManager{
		client: client,
		logger: logger,
	}
}

// AddGroupMember adds a user to a group via a member reference.
func (mm *MembershipManager) AddGroupMember(ctx context.Context, groupID, userID string) error {
	if groupID == "" || userID == "" {
		return NewValidationError("group_member_add", "group ID and user ID cannot be empty")
	}

	body := map[string]string{
		"@odata.id": mm.client.ResourceURL("/directoryObjects/" + url.PathEscape(userID)),
	}
	err := LogOperation(mm.logger, "group_member_add", map[string]any{
		"group_id": groupID,
		"user_id":  userID,
	}, func() error {
		return mm.client.Post(ctx, "/groups/"+url.PathEscape(groupID)+"/members/$ref", body, nil)
	})
	return WrapError("group_member_add", err)
}

// RemoveGroupMember removes a user's member reference from a group.
func (mm *MembershipManager) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	if groupID == "" || userID == "" {
		return NewValidationError("group_member_remove", "group ID and user ID cannot be empty")
	}

	err := LogOperation(mm.logger, "group_member_remove", map[string]any{
		"group_id": groupID,
		"user_id":  userID,
	}, func() error {
		return mm.client.Delete(ctx,
			"/groups/"+url.PathEscape(groupID)+"/members/"+url.PathEscape(userID)+"/$ref")
	})
	return WrapError("group_member_remove", err)
}

// ReconcileGroups applies a group membership delta for a user, one directory
// call per group. Additions run before removals.
func (mm *MembershipManager) ReconcileGroups(ctx context.Context, userID string, delta AssignmentDelta) error {
	if userID == "" {
		return NewValidationError("group_reconcile", "user ID cannot be empty")
	}
	if delta.IsEmpty() {
		return nil
	}

	for _, groupID := range delta.ToAdd {
		if err := mm.AddGroupMember(ctx, groupID, userID); err != nil {
			return WrapError("group_reconcile", err)
		}
	}
	for _, groupID := range delta.ToRemove {
		if err := mm.RemoveGroupMember(ctx, groupID, userID); err != nil {
			return WrapError("group_reconcile", err)
		}
	}

	mm.logger.Info("Reconciled group memberships", map[string]any{
		"user_id": userID,
		"added":   len(delta.ToAdd),
		"removed": len(delta.ToRemove),
	})
	return nil
}

// assignLicenseRequest is the assignLicense action payload. Both keys are
// required by the API even when empty.
type assignLicenseRequest struct {
	AddLicenses    []AssignedLicense `json:"addLicenses"`
	RemoveLicenses []string          `json:"removeLicenses"`
}

// ReconcileLicenses applies a license assignment delta for a user in a single
// assignLicense call. Composite identifiers with a tenant prefix are
// normalized to bare SKU UUIDs first; an empty delta issues no call at all.
func (mm *MembershipManager) ReconcileLicenses(ctx context.Context, userID string, delta AssignmentDelta) error {
	if userID == "" {
		return NewValidationError("license_reconcile", "user ID cannot be empty")
	}
	if delta.IsEmpty() {
		return nil
	}

	req := assignLicenseRequest{
		AddLicenses:    []AssignedLicense{},
		RemoveLicenses: []string{},
	}
	for _, id := range delta.ToAdd {
		skuID, err := NormalizeSkuID(id)
		if err != nil {
			return WrapError("license_reconcile", err)
		}
		req.AddLicenses = append(req.AddLicenses, AssignedLicense{SkuID: skuID})
	}
	for _, id := range delta.ToRemove {
		skuID, err := NormalizeSkuID(id)
		if err != nil {
			return WrapError("license_reconcile", err)
		}
		req.RemoveLicenses = append(req.RemoveLicenses, skuID)
	}

	err := LogOperation(mm.logger, "license_reconcile", map[string]any{
		"user_id": userID,
		"added":   len(req.AddLicenses),
		"removed": len(req.RemoveLicenses),
	}, func() error {
		return mm.client.Post(ctx, "/users/"+url.PathEscape(userID)+"/assignLicense", req, nil)
	})
	return WrapError("license_reconcile", err)
}
