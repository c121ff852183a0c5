package postgres

import (
	"context"
	"fmt"

	permissionDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/permission"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
	"github.com/jmoiron/sqlx"
)

// CatalogRepository reads the permission catalog. The catalog is reference
// data loaded once at startup, so plain SQL through sqlx is enough here.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const (
	selectDefinitions = `SELECT id, module_id, section_id, actions FROM permission_definitions ORDER BY id`
	selectRoles       = `SELECT id, name FROM roles ORDER BY id`
	selectRoleGrants  = `SELECT id, role_id, permission_id, actions FROM role_grants ORDER BY role_id, permission_id`
)

// LoadCatalog builds the catalog and returns any integrity issues found in
// the stored data alongside it.
func (r *CatalogRepository) LoadCatalog(ctx context.Context) (*permission.Catalog, []permission.Issue, error) {
	var defRows []permissionDatamodel.PermissionDefinition
	if err := r.db.SelectContext(ctx, &defRows, selectDefinitions); err != nil {
		return nil, nil, fmt.Errorf("load permission definitions: %w", err)
	}

	var roleRows []permissionDatamodel.Role
	if err := r.db.SelectContext(ctx, &roleRows, selectRoles); err != nil {
		return nil, nil, fmt.Errorf("load roles: %w", err)
	}

	var grantRows []permissionDatamodel.RoleGrant
	if err := r.db.SelectContext(ctx, &grantRows, selectRoleGrants); err != nil {
		return nil, nil, fmt.Errorf("load role grants: %w", err)
	}

	definitions := make([]permission.Definition, 0, len(defRows))
	for _, d := range defRows {
		definitions = append(definitions, permission.Definition{
			ID:        d.ID,
			ModuleID:  d.ModuleID,
			SectionID: d.SectionID,
			Actions:   permission.SplitActions(d.Actions).Sorted(),
		})
	}

	grantsByRole := make(map[string]permission.Grants, len(roleRows))
	for _, g := range grantRows {
		if grantsByRole[g.RoleID] == nil {
			grantsByRole[g.RoleID] = permission.Grants{}
		}
		grantsByRole[g.RoleID].Merge(permission.Grants{g.PermissionID: permission.SplitActions(g.Actions)})
	}

	roles := make([]permission.Role, 0, len(roleRows))
	for _, ro := range roleRows {
		grants := grantsByRole[ro.ID]
		if grants == nil {
			grants = permission.Grants{}
		}
		roles = append(roles, permission.Role{ID: ro.ID, Name: ro.Name, Grants: grants})
	}

	return permission.NewCatalog(definitions, roles), permission.Validate(definitions, roles), nil
}
