package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "name", "gender", "looking_for", "created_at"}

func TestGetUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u1", "Ann", "female", "{male,other}", now))
	mock.ExpectQuery("FROM users").WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.GenderFemale, user.Gender)
	assert.Equal(t, []domain.Gender{domain.GenderMale, domain.GenderOther}, user.LookingFor)

	_, err = repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDiscover(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()
	viewer := &domain.User{ID: "u1", Gender: domain.GenderFemale, LookingFor: []domain.Gender{domain.GenderMale}}

	mock.ExpectQuery(regexp.QuoteMeta("AND $3 = ANY(u.looking_for)")).
		WithArgs("u1", sqlmock.AnyArg(), "female", 5).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u2", "Bob", "male", "{female}", now).
			AddRow("u3", "Cid", "male", "{female,male}", now))

	users, err := repo.Discover(context.Background(), viewer, 5)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[0].ID)
	assert.True(t, viewer.CompatibleWith(users[1]))
}
