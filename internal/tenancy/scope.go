package tenancy

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
)

// ErrNoOrganization is returned when a write to a tenant-owned table is
// attempted without a current organization.
var ErrNoOrganization = errors.New("no current organization")

// OrganizationColumn is the foreign key every tenant-owned table carries.
const OrganizationColumn = "organization_id"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Table is a tenant-owned table. Queries built from it are restricted to the
// current organization of the request context; see Owned.
type Table struct {
	name string
}

// Owned registers name as a tenant-owned table.
func Owned(name string) Table {
	return Table{name: name}
}

func (t Table) column() string { return t.name + "." + OrganizationColumn }

// predicate returns the organization filter for ctx, or nil when no
// organization is resolved (queries then run unscoped).
func (t Table) predicate(ctx context.Context) sq.Sqlizer {
	org, ok := CurrentOrganization(ctx)
	if !ok {
		return nil
	}
	return sq.Eq{t.column(): org.ID}
}

// Filter returns a modifier that conjoins the organization predicate onto any
// SELECT builder. Existing predicates are kept.
func (t Table) Filter(ctx context.Context) func(sq.SelectBuilder) sq.SelectBuilder {
	pred := t.predicate(ctx)
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if pred == nil {
			return b
		}
		return b.Where(pred)
	}
}

// Select starts a scoped SELECT on the table.
func (t Table) Select(ctx context.Context, columns ...string) sq.SelectBuilder {
	return t.Filter(ctx)(psql.Select(columns...).From(t.name))
}

// Update starts a scoped UPDATE on the table.
func (t Table) Update(ctx context.Context) sq.UpdateBuilder {
	b := psql.Update(t.name)
	if pred := t.predicate(ctx); pred != nil {
		b = b.Where(pred)
	}
	return b
}

// Delete starts a scoped DELETE on the table.
func (t Table) Delete(ctx context.Context) sq.DeleteBuilder {
	b := psql.Delete(t.name)
	if pred := t.predicate(ctx); pred != nil {
		b = b.Where(pred)
	}
	return b
}

// Insert starts an INSERT of values with organization_id set to the current
// organization. It fails with ErrNoOrganization when none is resolved.
func (t Table) Insert(ctx context.Context, values map[string]interface{}) (sq.InsertBuilder, error) {
	org, ok := CurrentOrganization(ctx)
	if !ok {
		return sq.InsertBuilder{}, ErrNoOrganization
	}
	row := make(map[string]interface{}, len(values)+1)
	for k, v := range values {
		row[k] = v
	}
	row[OrganizationColumn] = org.ID
	return psql.Insert(t.name).SetMap(row), nil
}

// Unscoped returns a view of the table whose queries ignore the current
// organization. Use it only for administrative, cross-tenant code paths.
func (t Table) Unscoped() UnscopedTable {
	return UnscopedTable{name: t.name}
}

// UnscopedTable builds queries without the organization predicate.
type UnscopedTable struct {
	name string
}

// Select starts an unscoped SELECT.
func (u UnscopedTable) Select(columns ...string) sq.SelectBuilder {
	return psql.Select(columns...).From(u.name)
}

// Update starts an unscoped UPDATE.
func (u UnscopedTable) Update() sq.UpdateBuilder {
	return psql.Update(u.name)
}

// Delete starts an unscoped DELETE.
func (u UnscopedTable) Delete() sq.DeleteBuilder {
	return psql.Delete(u.name)
}
