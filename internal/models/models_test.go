package models

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/modelkit/internal/model"
	"github.com/roach88/modelkit/internal/model/validates"
	"github.com/roach88/modelkit/internal/scalar"
	"github.com/roach88/modelkit/internal/session"
	"github.com/roach88/modelkit/internal/testutil"

	_ "time/tzdata"
)

func setup(t *testing.T) (*Catalog, *session.Registry) {
	t.Helper()

	reg := testutil.NewRegistry(t, 2)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	c, err := Register(reg, ny)
	require.NoError(t, err)
	for _, name := range reg.Migrations() {
		require.NoError(t, reg.Migrate(context.Background(), name, 1))
	}
	return c, reg
}

func newAccount(t *testing.T, c *Catalog, rec model.Record) *Account {
	t.Helper()

	a, err := c.Accounts.Load(rec, false)
	require.NoError(t, err)
	return a
}

func TestRegister(t *testing.T) {
	_, reg := setup(t)
	assert.Equal(t, []string{AccountModel, AuditEventModel}, reg.Migrations())

	_, err := Register(reg, time.UTC)
	assert.ErrorIs(t, err, session.ErrAlreadyRegistered)
}

func TestAccount_StringColumnUnique(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t)

	first := newAccount(t, c, model.Record{"email": scalar.Text("jsmith@google.com"), "is_lazy": scalar.Int32(0)})
	require.NoError(t, first.Save(ctx))

	a := newAccount(t, c, model.Record{"email": scalar.Text("jsmith@google.com"), "is_lazy": scalar.Int32(1)})
	valid, err := a.IsValid(ctx)
	require.NoError(t, err)
	assert.False(t, valid)
	errs, err := a.Errors(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RecordErrors{"email": {validates.MsgTaken}}, errs)
	assert.True(t, errors.Is(a.Save(ctx), model.ErrInvalidRecord))

	require.NoError(t, a.SetEmail("jsmith2@google.com"))
	valid, err = a.IsValid(ctx)
	require.NoError(t, err)
	assert.True(t, valid)
	errs, _ = a.Errors(ctx)
	assert.Empty(t, errs)
	require.NoError(t, a.Save(ctx))

	// Saving a tangential change must not trip over the row's own email.
	require.NoError(t, a.SetLazy(false))
	valid, err = a.IsValid(ctx)
	require.NoError(t, err)
	assert.True(t, valid)
	require.NoError(t, a.Save(ctx))
}

func TestAccount_NumericColumnUnique(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t)

	first := newAccount(t, c, model.Record{
		"email":           scalar.Text("first@google.com"),
		"favorite_number": scalar.Int64(42),
	})
	require.NoError(t, first.Save(ctx))

	a := newAccount(t, c, model.Record{
		"email":           scalar.Text("second@google.com"),
		"favorite_number": scalar.Int64(42),
	})
	errs, err := a.Errors(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RecordErrors{"favorite_number": {validates.MsgTaken}}, errs)
	assert.Error(t, a.Save(ctx))

	require.NoError(t, a.SetFavoriteNumber(7))
	valid, err := a.IsValid(ctx)
	require.NoError(t, err)
	assert.True(t, valid)
	require.NoError(t, a.Save(ctx))
}

func TestAccount_CompanyScopedAdmin(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t)

	for _, email := range []string{"horton@google.com", "louise@google.com", "gina@google.com"} {
		a := newAccount(t, c, model.Record{
			"email":            scalar.Text(email),
			"company_id":       scalar.Int64(17),
			"is_company_admin": scalar.Int32(0),
		})
		require.NoError(t, a.Save(ctx))
	}

	find := func(email string) *Account {
		a, found, err := c.Accounts.FindWhere(ctx, "email = :email", model.Record{"email": scalar.Text(email)})
		require.NoError(t, err)
		require.True(t, found)
		return a
	}

	louise := find("louise@google.com")
	require.NoError(t, louise.SetCompanyAdmin(true))
	require.NoError(t, louise.Save(ctx))
	assert.True(t, louise.IsCompanyAdmin())

	horton := find("horton@google.com")
	require.NoError(t, horton.SetCompanyAdmin(true))
	valid, err := horton.IsValid(ctx)
	require.NoError(t, err)
	assert.False(t, valid)
	errs, _ := horton.Errors(ctx)
	assert.Equal(t, model.RecordErrors{"is_company_admin": {validates.MsgTaken}}, errs)

	// Another company may have its own admin.
	other := newAccount(t, c, model.Record{
		"email":            scalar.Text("ivy@elsewhere.com"),
		"company_id":       scalar.Int64(18),
		"is_company_admin": scalar.Int32(1),
	})
	require.NoError(t, other.Save(ctx))

	// Hand the role over.
	require.NoError(t, louise.SetCompanyAdmin(false))
	require.NoError(t, louise.Save(ctx))

	horton.ResetStateCache()
	valid, err = horton.IsValid(ctx)
	require.NoError(t, err)
	assert.True(t, valid)
	require.NoError(t, horton.Save(ctx))
}

func TestAccount_InvalidColumns(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t)

	a := newAccount(t, c, model.Record{"email": scalar.Text("ernie@google.com"), "is_lazy": scalar.Int32(0)})
	require.NoError(t, a.SetEmail("missing the at sign, thus invalid"))

	errs, err := a.Errors(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RecordErrors{"email": {validates.MsgFormat}}, errs)
	assert.True(t, errors.Is(a.Save(ctx), model.ErrInvalidRecord))

	require.NoError(t, a.SetEmail("ernie@google.com"))
	require.NoError(t, a.Save(ctx))

	require.NoError(t, a.SetNull("email"))
	errs, err = a.Errors(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RecordErrors{"email": {validates.MsgMissing}}, errs)
	assert.Error(t, a.Save(ctx))

	require.NoError(t, a.SetEmail("ernie@google.com"))
	require.NoError(t, a.Set("is_lazy", scalar.Int32(34)))
	errs, err = a.Errors(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RecordErrors{"is_lazy": {validates.MsgBoolean}}, errs)

	require.NoError(t, a.SetLazy(false))
	errs, err = a.Errors(ctx)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.NoError(t, a.Save(ctx))
}

func TestAccount_EmailMaxLength(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t)

	long := make([]byte, 95)
	for i := range long {
		long[i] = 'a'
	}
	a := newAccount(t, c, model.Record{"email": scalar.Text(string(long) + "@google.com")})
	errs, err := a.Errors(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RecordErrors{
		"email": {"has too many characters. The maximum length is 100."},
	}, errs)
}

func TestAccount_Accessors(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t)
	created := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

	a := c.Accounts.New()
	require.NoError(t, a.SetEmail("kim@google.com"))
	require.NoError(t, a.SetFirstName("Kim"))
	require.NoError(t, a.SetLastName("Lee"))
	require.NoError(t, a.SetCompanyID(3))
	require.NoError(t, a.SetCreatedAt(created))
	require.NoError(t, a.SetLazy(true))
	require.NoError(t, a.Save(ctx))

	id, ok := a.ID()
	require.True(t, ok)
	got, found, err := c.Accounts.Find(ctx, id)
	require.NoError(t, err)
	require.True(t, found)

	email, _ := got.Email()
	first, _ := got.FirstName()
	last, _ := got.LastName()
	company, _ := got.CompanyID()
	at, _ := got.CreatedAt()
	assert.Equal(t, "kim@google.com", email)
	assert.Equal(t, "Kim", first)
	assert.Equal(t, "Lee", last)
	assert.Equal(t, int64(3), company)
	assert.True(t, created.Equal(at))
	assert.True(t, got.IsLazy())
	assert.False(t, got.IsCompanyAdmin())
	_, ok = got.FavoriteNumber()
	assert.False(t, ok)
}

func TestAuditEvent_LocalTime(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t)

	// Midday on the spring-forward date, then just after the autumn change.
	for _, at := range []time.Time{
		time.Date(2020, 3, 8, 16, 0, 0, 0, time.UTC),
		time.Date(2020, 11, 1, 12, 0, 0, 0, time.UTC),
	} {
		e := c.AuditEvents.New()
		require.NoError(t, e.SetAccountID(1))
		require.NoError(t, e.SetAction("login"))
		require.NoError(t, e.SetDetail("from cli"))
		require.NoError(t, e.SetOccurredAt(at))
		require.NoError(t, e.Save(ctx))

		id, _ := e.ID()
		got, found, err := c.AuditEvents.Find(ctx, id)
		require.NoError(t, err)
		require.True(t, found)

		occurred, ok := got.OccurredAt()
		require.True(t, ok)
		assert.True(t, at.Equal(occurred), "want %s, got %s", at, occurred)
		assert.Equal(t, "America/New_York", occurred.Location().String())

		action, _ := got.Action()
		detail, _ := got.Detail()
		account, _ := got.AccountID()
		assert.Equal(t, "login", action)
		assert.Equal(t, "from cli", detail)
		assert.Equal(t, int64(1), account)
	}
}

func TestAuditEvent_Validation(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t)

	e := c.AuditEvents.New()
	require.NoError(t, e.SetAction(""))
	errs, err := e.Errors(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RecordErrors{
		"action":      {validates.MsgEmpty},
		"occurred_at": {validates.MsgMissing},
	}, errs)
}
