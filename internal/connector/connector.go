package connector

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/isometry/entra-connector/internal/graph"
)

// Filter is a single attribute equality constraint expressed in connector
// attribute names.
type Filter struct {
	Attribute string
	Value     string
}

// userFilterFields maps filterable user attributes to Graph properties.
var userFilterFields = map[string]string{
	AttrDisplayName:       "displayName",
	AttrEmail:             "mail",
	AttrUserPrincipalName: "userPrincipalName",
	AttrUserType:          "userType",
	AttrGivenName:         "givenName",
	AttrSurname:           "surname",
}

// groupFilterFields maps filterable group attributes to Graph properties.
var groupFilterFields = map[string]string{
	AttrDisplayName: "displayName",
	AttrEmail:       "mail",
}

// entityOps binds one entity type to its native calls. Unset operations are
// unsupported for that entity.
type entityOps struct {
	create       func(ctx context.Context, attrs AttributeSet) (string, error)
	update       func(ctx context.Context, id string, attrs, added, removed AttributeSet) error
	remove       func(ctx context.Context, id string) error
	list         func(ctx context.Context, filter *Filter) ([]AttributeSet, error)
	getOne       func(ctx context.Context, id string) (AttributeSet, error)
	getOneByName func(ctx context.Context, name string) (AttributeSet, error)
}

// Connector exposes generic typed attribute operations over a Microsoft
// Entra ID tenant, translating them into Graph API calls.
type Connector struct {
	config *graph.Config
	client graph.Client
	logger graph.Logger

	users      *graph.UserManager
	groups     *graph.GroupManager
	licenses   *graph.LicenseManager
	membership *graph.MembershipManager

	userConv    *UserConverter
	groupConv   *GroupConverter
	licenseConv *LicenseConverter

	ops map[EntityType]entityOps
}

// New creates a connector with a fresh Graph client.
func New(config *graph.Config, base hclog.Logger) (*Connector, error) {
	client, err := graph.NewClient(config, base)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client, config, base), nil
}

// NewWithClient creates a connector on an existing Graph client.
func NewWithClient(client graph.Client, config *graph.Config, base hclog.Logger) *Connector {
	logger := graph.NewHCLogger(base, "connector")
	c := &Connector{
		config:      config,
		client:      client,
		logger:      logger,
		users:       graph.NewUserManager(client, graph.NewHCLogger(base, "users")),
		groups:      graph.NewGroupManager(client, graph.NewHCLogger(base, "groups")),
		licenses:    graph.NewLicenseManager(client, graph.NewHCLogger(base, "licenses")),
		membership:  graph.NewMembershipManager(client, graph.NewHCLogger(base, "membership")),
		userConv:    NewUserConverter(config),
		groupConv:   NewGroupConverter(),
		licenseConv: NewLicenseConverter(),
	}

	c.ops = map[EntityType]entityOps{
		EntityUser: {
			create:       c.createUser,
			update:       c.updateUser,
			remove:       c.users.Delete,
			list:         c.listUsers,
			getOne:       c.getUser,
			getOneByName: c.getUserByName,
		},
		EntityGroup: {
			create:       c.createGroup,
			update:       c.updateGroup,
			remove:       c.groups.Delete,
			list:         c.listGroups,
			getOne:       c.getGroup,
			getOneByName: c.getGroupByName,
		},
		EntityLicense: {
			list:         c.listLicenses,
			getOne:       c.getLicense,
			getOneByName: c.getLicenseByName,
		},
	}
	return c
}

// Connect authenticates the underlying client.
func (c *Connector) Connect(ctx context.Context) error {
	return c.client.Connect(ctx)
}

// Test verifies connectivity with a cheap authenticated read.
func (c *Connector) Test(ctx context.Context) error {
	return c.client.Ping(ctx)
}

// Close releases the underlying client.
func (c *Connector) Close() error {
	return c.client.Close()
}

// Describe returns the attribute schema for an entity type.
func (c *Connector) Describe(entity EntityType) ([]AttributeDescriptor, error) {
	return Describe(entity)
}

// Create creates a directory object from an attribute set and returns its
// identifier.
func (c *Connector) Create(ctx context.Context, entity EntityType, attrs AttributeSet) (string, error) {
	ops, err := c.entityOps(entity)
	if err != nil {
		return "", err
	}
	if ops.create == nil {
		return "", graph.NewUnsupportedError("create", "create not supported for "+string(entity))
	}
	return ops.create(ctx, attrs)
}

// Update applies an attribute set to an existing object. The added and
// removed sets carry multivalued relationship changes.
func (c *Connector) Update(ctx context.Context, entity EntityType, id string, attrs, added, removed AttributeSet) error {
	ops, err := c.entityOps(entity)
	if err != nil {
		return err
	}
	if ops.update == nil {
		return graph.NewUnsupportedError("update", "update not supported for "+string(entity))
	}
	return ops.update(ctx, id, attrs, added, removed)
}

// Delete removes a directory object.
func (c *Connector) Delete(ctx context.Context, entity EntityType, id string) error {
	ops, err := c.entityOps(entity)
	if err != nil {
		return err
	}
	if ops.remove == nil {
		return graph.NewUnsupportedError("delete", "delete not supported for "+string(entity))
	}
	return ops.remove(ctx, id)
}

// List retrieves objects as attribute sets, optionally constrained by a
// single equality filter.
func (c *Connector) List(ctx context.Context, entity EntityType, filter *Filter) ([]AttributeSet, error) {
	ops, err := c.entityOps(entity)
	if err != nil {
		return nil, err
	}
	return ops.list(ctx, filter)
}

// GetOne retrieves a single object by identifier.
func (c *Connector) GetOne(ctx context.Context, entity EntityType, id string) (AttributeSet, error) {
	ops, err := c.entityOps(entity)
	if err != nil {
		return nil, err
	}
	return ops.getOne(ctx, id)
}

// GetOneByName retrieves the first object matching a name-equality filter.
// Name uniqueness is not guaranteed by the directory; additional matches are
// discarded.
func (c *Connector) GetOneByName(ctx context.Context, entity EntityType, name string) (AttributeSet, error) {
	ops, err := c.entityOps(entity)
	if err != nil {
		return nil, err
	}
	return ops.getOneByName(ctx, name)
}

func (c *Connector) entityOps(entity EntityType) (entityOps, error) {
	ops, ok := c.ops[entity]
	if !ok {
		return entityOps{}, graph.NewValidationError("dispatch", "unknown entity type "+string(entity))
	}
	return ops, nil
}

func (c *Connector) createUser(ctx context.Context, attrs AttributeSet) (string, error) {
	change, err := c.userConv.ToUser(attrs, nil, nil, true)
	if err != nil {
		return "", err
	}
	id, err := c.users.Create(ctx, change.User)
	if err != nil {
		return "", err
	}
	if err := c.membership.ReconcileGroups(ctx, id, change.Groups); err != nil {
		return "", err
	}
	if err := c.membership.ReconcileLicenses(ctx, id, change.Licenses); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Connector) updateUser(ctx context.Context, id string, attrs, added, removed AttributeSet) error {
	change, err := c.userConv.ToUser(attrs, added, removed, false)
	if err != nil {
		return err
	}
	if err := c.users.Update(ctx, id, change.User); err != nil {
		return err
	}
	if err := c.membership.ReconcileGroups(ctx, id, change.Groups); err != nil {
		return err
	}
	return c.membership.ReconcileLicenses(ctx, id, change.Licenses)
}

func (c *Connector) listUsers(ctx context.Context, filter *Filter) ([]AttributeSet, error) {
	users, err := c.users.List(ctx, c.mapFilter(filter, userFilterFields))
	if err != nil {
		return nil, err
	}
	out := make([]AttributeSet, 0, len(users))
	for i := range users {
		out = append(out, c.userConv.ToAttributes(&users[i]))
	}
	return out, nil
}

func (c *Connector) getUser(ctx context.Context, id string) (AttributeSet, error) {
	user, err := c.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.userConv.ToAttributes(user), nil
}

func (c *Connector) getUserByName(ctx context.Context, name string) (AttributeSet, error) {
	user, err := c.users.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return c.userConv.ToAttributes(user), nil
}

func (c *Connector) createGroup(ctx context.Context, attrs AttributeSet) (string, error) {
	group, err := c.groupConv.ToGroup(attrs)
	if err != nil {
		return "", err
	}
	return c.groups.Create(ctx, group)
}

func (c *Connector) updateGroup(ctx context.Context, id string, attrs, _, _ AttributeSet) error {
	group, err := c.groupConv.ToGroup(attrs)
	if err != nil {
		return err
	}
	return c.groups.Update(ctx, id, group)
}

func (c *Connector) listGroups(ctx context.Context, filter *Filter) ([]AttributeSet, error) {
	groups, err := c.groups.List(ctx, c.mapFilter(filter, groupFilterFields))
	if err != nil {
		return nil, err
	}
	out := make([]AttributeSet, 0, len(groups))
	for i := range groups {
		isTeam, err := c.groups.IsTeam(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, c.groupConv.ToAttributes(&groups[i], isTeam))
	}
	return out, nil
}

func (c *Connector) getGroup(ctx context.Context, id string) (AttributeSet, error) {
	group, err := c.groups.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	isTeam, err := c.groups.IsTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.groupConv.ToAttributes(group, isTeam), nil
}

func (c *Connector) getGroupByName(ctx context.Context, name string) (AttributeSet, error) {
	group, err := c.groups.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	isTeam, err := c.groups.IsTeam(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	return c.groupConv.ToAttributes(group, isTeam), nil
}

func (c *Connector) listLicenses(ctx context.Context, filter *Filter) ([]AttributeSet, error) {
	if filter != nil {
		c.logger.Debug("License listing ignores filters", map[string]any{
			"attribute": filter.Attribute,
		})
	}
	skus, err := c.licenses.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AttributeSet, 0, len(skus))
	for i := range skus {
		out = append(out, c.licenseConv.ToAttributes(&skus[i]))
	}
	return out, nil
}

func (c *Connector) getLicense(ctx context.Context, id string) (AttributeSet, error) {
	sku, err := c.licenses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.licenseConv.ToAttributes(sku), nil
}

func (c *Connector) getLicenseByName(ctx context.Context, name string) (AttributeSet, error) {
	sku, err := c.licenses.GetByPartNumber(ctx, name)
	if err != nil {
		return nil, err
	}
	return c.licenseConv.ToAttributes(sku), nil
}

// mapFilter translates a connector-level filter into a Graph property
// filter. Attributes without a server-side mapping fall back to an
// unfiltered listing.
func (c *Connector) mapFilter(filter *Filter, fields map[string]string) *graph.Filter {
	if filter == nil {
		return nil
	}
	field, ok := fields[filter.Attribute]
	if !ok {
		c.logger.Warn("No server-side mapping for filter attribute, listing unfiltered", map[string]any{
			"attribute": filter.Attribute,
		})
		return nil
	}
	return &graph.Filter{Attribute: field, Value: filter.Value}
}
