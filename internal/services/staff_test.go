package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-orcamentos/auth"
	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffCreateAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewStaffService(db, time.Hour)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, UserInput{Username: "ana", Password: "s3nha", Role: models.RoleSeller})
	require.NoError(t, err)
	assert.NotEqual(t, "s3nha", u.Password)
	assert.True(t, u.IsActive)

	_, err = svc.CreateUser(ctx, UserInput{Username: "ana", Password: "x", Role: models.RoleSeller})
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "already_taken", de.Fields["username"])

	_, err = svc.CreateUser(ctx, UserInput{Username: "bob", Password: "x", Role: "INTERN"})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := svc.Authenticate(ctx, "ana", "s3nha")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	_, err = svc.Authenticate(ctx, "ana", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "s3nha")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.True(t, svc.UserExists(ctx, u.ID))
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)
	assert.False(t, svc.UserExists(ctx, u.ID))
	_, err = svc.Authenticate(ctx, "ana", "s3nha")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStaffAuthorizeDiscount(t *testing.T) {
	f := newFixture(t)
	svc := NewStaffService(f.db, time.Hour)
	fixed := time.Now().Add(-time.Minute).Truncate(time.Second)
	svc.Now = func() time.Time { return fixed }
	ctx := context.Background()

	_, _, err := svc.AuthorizeDiscount(ctx, "vendedor", "segredo", dec("20"))
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = svc.AuthorizeDiscount(ctx, "gerente", "errada", dec("20"))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.AuthorizeDiscount(ctx, "gerente", "segredo", dec("120"))
	assert.ErrorIs(t, err, ErrValidation)

	token, grant, err := svc.AuthorizeDiscount(ctx, "gerente", "segredo", dec("22.5"))
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, grant.AuthorizerID)
	assert.Equal(t, "Gerente", grant.AuthorizerName)
	assert.True(t, grant.AuthorizedAt.Equal(fixed))

	parsed, err := auth.ParseDiscountGrant(token)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, parsed.AuthorizerID)
	assert.True(t, parsed.Covers(dec("22.5")))
	assert.False(t, parsed.Covers(dec("23")))
}
