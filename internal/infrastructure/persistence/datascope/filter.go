// Package datascope turns a tenancy.ListFilter into GORM where clauses.
//
// Usage:
//
//	scope := guard.ListScope(principal)
//	db.Scopes(datascope.Apply(scope, datascope.ResourceBooking)).Find(&rows)
package datascope

import (
	"github.com/freightcore/backend/internal/domain/tenancy"
	"gorm.io/gorm"
)

// Resource describes how a table stores its tenancy columns
type Resource struct {
	// Table qualifies column names when set, for joined queries
	Table string
	// BranchColumn is empty for org-level resources such as contracts
	BranchColumn string
	// TransitColumns also grant branch access, e.g. origin and destination
	TransitColumns []string
	// SharedWhenNull lets branch users see org-wide rows (NULL branch)
	SharedWhenNull bool
}

// Known resources
var (
	ResourceBooking  = Resource{BranchColumn: "branch_id", TransitColumns: []string{"from_branch_id", "to_branch_id"}}
	ResourceContract = Resource{}
	ResourceCustomer = Resource{BranchColumn: "branch_id", SharedWhenNull: true}
	ResourceArticle  = Resource{BranchColumn: "branch_id", SharedWhenNull: true}
	ResourceBranch   = Resource{BranchColumn: "id"}
	ResourceUser     = Resource{BranchColumn: "branch_id"}
)

func (r Resource) col(name string) string {
	if r.Table == "" {
		return name
	}
	return r.Table + "." + name
}

// Apply returns a GORM scope narrowing a query to the filter
func Apply(f tenancy.ListFilter, r Resource) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case f.DenyAll:
			return db.Where("1 = 0")
		case f.Unrestricted:
			return db
		}

		db = db.Where(r.col("org_id")+" = ?", f.OrgID)
		if f.BranchID == nil || r.BranchColumn == "" {
			return db
		}

		branch := *f.BranchID
		cond := db.Session(&gorm.Session{NewDB: true}).Where(r.col(r.BranchColumn)+" = ?", branch)
		if f.IncludeTransit {
			for _, c := range r.TransitColumns {
				cond = cond.Or(r.col(c)+" = ?", branch)
			}
		}
		if r.SharedWhenNull {
			cond = cond.Or(r.col(r.BranchColumn) + " IS NULL")
		}
		return db.Where(cond)
	}
}

// ForTable returns a copy of r whose columns are qualified by table
func (r Resource) ForTable(table string) Resource {
	r.Table = table
	return r
}

// BookingScope narrows a booking query to the filter
func BookingScope(f tenancy.ListFilter) func(*gorm.DB) *gorm.DB {
	return Apply(f, ResourceBooking)
}
