package services

import (
	"testing"
	"time"

	"moneta/internal/errors"
	"moneta/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewUserService(db)

	t.Run("hashes the password", func(t *testing.T) {
		user, err := svc.CreateUser("alice@example.com", "s3cret-pass", "Alice", "Smith")
		testutil.AssertNoError(t, err)
		if user.Password == "s3cret-pass" {
			t.Error("password stored in plaintext")
		}
		if !svc.VerifyPassword(user, "s3cret-pass") {
			t.Error("stored hash does not verify")
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := svc.CreateUser("alice@example.com", "another-pass", "Alice", "Smith")
		testutil.AssertAppError(t, err, errors.ErrDuplicateEmail)
	})
}

func TestAttemptLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewUserService(db)

	created, err := svc.CreateUser("bob@example.com", "correct-horse", "Bob", "Jones")
	testutil.AssertNoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.AttemptLogin("bob@example.com", "correct-horse")
		testutil.AssertNoError(t, err)
		if user.ID != created.ID {
			t.Errorf("expected user %s, got %s", created.ID, user.ID)
		}
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, err1 := svc.AttemptLogin("bob@example.com", "wrong")
		_, err2 := svc.AttemptLogin("nobody@example.com", "wrong")
		testutil.AssertAppError(t, err1, errors.ErrInvalidCredentials)
		testutil.AssertAppError(t, err2, errors.ErrInvalidCredentials)
	})

	t.Run("locks after repeated failures", func(t *testing.T) {
		for i := 0; i < maxFailedLogins; i++ {
			_, _ = svc.AttemptLogin("bob@example.com", "wrong")
		}
		_, err := svc.AttemptLogin("bob@example.com", "correct-horse")
		testutil.AssertAppError(t, err, errors.ErrAccountLocked)
	})

	t.Run("successful login resets the counter", func(t *testing.T) {
		// Expire the lock manually instead of waiting it out.
		past := time.Now().Add(-time.Minute)
		testutil.AssertNoError(t, db.Model(created).Update("locked_until", past).Error)

		_, err := svc.AttemptLogin("bob@example.com", "correct-horse")
		testutil.AssertNoError(t, err)

		fresh, err := svc.GetUserByID(created.ID)
		testutil.AssertNoError(t, err)
		if fresh.FailedLoginAttempts != 0 {
			t.Errorf("expected counter reset, got %d", fresh.FailedLoginAttempts)
		}
		if fresh.LastLoginAt == nil {
			t.Error("expected last_login_at recorded")
		}
	})
}
