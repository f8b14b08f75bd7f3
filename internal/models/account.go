package models

import (
	"time"

	"github.com/roach88/modelkit/internal/model"
	"github.com/roach88/modelkit/internal/model/validates"
	"github.com/roach88/modelkit/internal/scalar"
	"github.com/roach88/modelkit/internal/session"
)

// AccountDefinition is the schema of the accounts table.
var AccountDefinition = model.MustDefinition("id", "accounts",
	model.ColumnTypes{
		"id":               scalar.KindInt64,
		"email":            scalar.KindText,
		"first_name":       scalar.KindText,
		"last_name":        scalar.KindText,
		"favorite_number":  scalar.KindInt64,
		"company_id":       scalar.KindInt64,
		"is_company_admin": scalar.KindInt32,
		"is_lazy":          scalar.KindInt32,
		"created_at":       scalar.KindTimestamp,
	},
	[]model.Validator{
		validates.NotNull("email"),
		validates.Matches("email", validates.MustPattern("/.+@.+/")),
		validates.MaxLength("email", 100),
		validates.IsUnique("email"),
		validates.IsUnique("favorite_number"),
		validates.IsBoolean("is_company_admin"),
		validates.If(isCompanyAdmin, validates.IsUnique("is_company_admin", sameCompany)),
		validates.IsBoolean("is_lazy"),
	},
)

// Each company has at most one admin.
func isCompanyAdmin(rec model.Record) bool {
	return rec.Has("company_id") && scalar.Equal(rec["is_company_admin"], scalar.Int32(1))
}

func sameCompany(rec model.Record) *validates.Conditional {
	return &validates.Conditional{
		Where:  "company_id = :company_id",
		Params: model.Record{"company_id": rec["company_id"]},
	}
}

var accountColumns = []session.Column{
	{Name: "email", Type: "varchar(100)"},
	{Name: "first_name", Type: "varchar(100)"},
	{Name: "last_name", Type: "varchar(100)"},
	{Name: "favorite_number", Type: "bigint"},
	{Name: "company_id", Type: "bigint"},
	{Name: "is_company_admin", Type: "integer"},
	{Name: "is_lazy", Type: "integer"},
}

// Account is a user account.
type Account struct{ *model.Instance }

// NewAccounts returns the account repository.
func NewAccounts(reg *session.Registry, opts ...model.RepositoryOption) *model.Repository[*Account] {
	opts = append([]model.RepositoryOption{model.WithColumns(accountColumns...)}, opts...)
	return model.NewRepository(reg, AccountDefinition, func(i *model.Instance) *Account {
		return &Account{i}
	}, opts...)
}

func (a *Account) Email() (string, bool)     { return model.Field[string](a.Instance, "email") }
func (a *Account) FirstName() (string, bool) { return model.Field[string](a.Instance, "first_name") }
func (a *Account) LastName() (string, bool)  { return model.Field[string](a.Instance, "last_name") }
func (a *Account) CompanyID() (int64, bool)  { return model.Field[int64](a.Instance, "company_id") }

func (a *Account) FavoriteNumber() (int64, bool) {
	return model.Field[int64](a.Instance, "favorite_number")
}

func (a *Account) CreatedAt() (time.Time, bool) {
	return model.Field[time.Time](a.Instance, "created_at")
}

// IsCompanyAdmin reports false for NULL.
func (a *Account) IsCompanyAdmin() bool {
	v, _ := model.Field[int32](a.Instance, "is_company_admin")
	return v == 1
}

// IsLazy reports false for NULL.
func (a *Account) IsLazy() bool {
	v, _ := model.Field[int32](a.Instance, "is_lazy")
	return v == 1
}

func (a *Account) SetEmail(v string) error     { return model.SetField(a.Instance, "email", v) }
func (a *Account) SetFirstName(v string) error { return model.SetField(a.Instance, "first_name", v) }
func (a *Account) SetLastName(v string) error  { return model.SetField(a.Instance, "last_name", v) }
func (a *Account) SetCompanyID(v int64) error  { return model.SetField(a.Instance, "company_id", v) }

func (a *Account) SetFavoriteNumber(v int64) error {
	return model.SetField(a.Instance, "favorite_number", v)
}

func (a *Account) SetCreatedAt(v time.Time) error {
	return model.SetField(a.Instance, "created_at", v)
}

func (a *Account) SetCompanyAdmin(v bool) error {
	return model.SetField(a.Instance, "is_company_admin", flag(v))
}

func (a *Account) SetLazy(v bool) error {
	return model.SetField(a.Instance, "is_lazy", flag(v))
}

func flag(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
