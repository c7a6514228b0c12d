package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/dto"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/repository"
)

func newProfileService(t *testing.T) (ProfileService, *gorm.DB) {
	t.Helper()
	db := newServiceDB(t, &models.User{})
	return NewProfileService(repository.NewUserRepository(db), newTestValidator(), testLogger()), db
}

func createUser(t *testing.T, db *gorm.DB, email, name string) models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "hash", Name: name}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestProfileGetHidesEmailForOthers(t *testing.T) {
	svc, db := newProfileService(t)
	user := createUser(t, db, "ana@example.com", "Ana")

	own, err := svc.Get(context.Background(), user.ID, true)
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", own.Email)

	public, err := svc.Get(context.Background(), user.ID, false)
	require.NoError(t, err)
	require.Empty(t, public.Email)

	_, err = svc.Get(context.Background(), 999, false)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfileUpdateSanitizesAndNormalizes(t *testing.T) {
	svc, db := newProfileService(t)
	user := createUser(t, db, "ana@example.com", "Ana")

	bio := "I teach guitar <script>alert('x')</script>on weekends"
	skills := " guitar ,, spanish ,"
	updated, err := svc.Update(context.Background(), user.ID, dto.ProfileUpdateRequest{
		Bio:           &bio,
		SkillsOffered: &skills,
	})
	require.NoError(t, err)
	require.NotContains(t, updated.Bio, "<script>")
	require.Equal(t, []string{"guitar", "spanish"}, updated.SkillsOffered)

	// Fields left nil stay untouched.
	require.Equal(t, "Ana", updated.Name)
}

func TestProfileSetAvatar(t *testing.T) {
	svc, db := newProfileService(t)
	user := createUser(t, db, "ana@example.com", "Ana")

	updated, err := svc.SetAvatar(context.Background(), user.ID, "https://cdn.example.com/a.png")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/a.png", updated.AvatarURL)
}

func TestProfileSearchBySkillExcludesSearcherAndEmails(t *testing.T) {
	svc, db := newProfileService(t)
	searcher := createUser(t, db, "ana@example.com", "Ana")

	teacher := createUser(t, db, "bob@example.com", "Bob")
	teacher.SkillsOffered = "guitar,cooking"
	require.NoError(t, db.Save(&teacher).Error)

	results, err := svc.SearchBySkill(context.Background(), "guitar", searcher.ID, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Bob", results[0].Name)
	require.Empty(t, results[0].Email)

	empty, err := svc.SearchBySkill(context.Background(), "   ", searcher.ID, 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}
