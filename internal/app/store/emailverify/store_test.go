package emailverify_test

import (
	"testing"
	"time"

	"github.com/dalemusser/minutehub/internal/app/store/emailverify"
	"github.com/dalemusser/minutehub/internal/testutil"
)

func TestNew_DefaultExpiry(t *testing.T) {
	db := testutil.SetupTestDB(t)

	// Zero expiry should use default
	store := emailverify.New(db, 0)
	if store.Expiry() != emailverify.DefaultExpiry {
		t.Errorf("expected default expiry %v, got %v", emailverify.DefaultExpiry, store.Expiry())
	}
}

func TestNew_CustomExpiry(t *testing.T) {
	db := testutil.SetupTestDB(t)

	customExpiry := 30 * time.Minute
	store := emailverify.New(db, customExpiry)
	if store.Expiry() != customExpiry {
		t.Errorf("expected expiry %v, got %v", customExpiry, store.Expiry())
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, emailverify.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	result, err := store.Create(ctx, "test@example.com", false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if result.Code == "" {
		t.Error("expected code to be generated")
	}
	if len(result.Code) != emailverify.CodeLength {
		t.Errorf("expected code length %d, got %d", emailverify.CodeLength, len(result.Code))
	}
	for _, c := range result.Code {
		if c < '0' || c > '9' {
			t.Errorf("code should be numeric, got %q", result.Code)
			break
		}
	}
	if result.Token == "" {
		t.Error("expected token to be generated")
	}
	if result.ResendCount != 0 {
		t.Errorf("expected resend count 0, got %d", result.ResendCount)
	}
}

func TestStore_Create_ReplacesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, emailverify.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "test@example.com"

	result1, err := store.Create(ctx, email, false)
	if err != nil {
		t.Fatalf("First Create failed: %v", err)
	}
	result2, err := store.Create(ctx, email, false)
	if err != nil {
		t.Fatalf("Second Create failed: %v", err)
	}

	// Old code should not work
	_, err = store.VerifyCode(ctx, email, result1.Code)
	if err != emailverify.ErrNotFound && err != emailverify.ErrInvalidCode {
		t.Errorf("expected old code to fail, got err=%v", err)
	}

	// New code should work
	v, err := store.VerifyCode(ctx, email, result2.Code)
	if err != nil {
		t.Errorf("new code verification failed: %v", err)
	}
	if v == nil {
		t.Error("expected verification record")
	}
}

func TestStore_VerifyCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, emailverify.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "test@example.com"

	result, err := store.Create(ctx, email, false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	v, err := store.VerifyCode(ctx, email, result.Code)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if v.Email != email {
		t.Errorf("expected email %q, got %q", email, v.Email)
	}
}

func TestStore_VerifyCode_InvalidCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, emailverify.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "test@example.com"
	if _, err := store.Create(ctx, email, false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := store.VerifyCode(ctx, email, "000000")
	if err != emailverify.ErrInvalidCode {
		t.Errorf("expected ErrInvalidCode, got %v", err)
	}
}

func TestStore_VerifyCode_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, emailverify.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.VerifyCode(ctx, "nobody@example.com", "123456")
	if err != emailverify.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_VerifyCode_SingleUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, emailverify.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "test@example.com"
	result, err := store.Create(ctx, email, false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.VerifyCode(ctx, email, result.Code); err != nil {
		t.Fatalf("First VerifyCode failed: %v", err)
	}
	_, err = store.VerifyCode(ctx, email, result.Code)
	if err != emailverify.ErrNotFound {
		t.Errorf("expected ErrNotFound for reused code, got %v", err)
	}
}

func TestStore_VerifyCode_TooManyAttempts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, emailverify.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "test@example.com"
	if _, err := store.Create(ctx, email, false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < emailverify.MaxVerifyAttempts; i++ {
		_, err := store.VerifyCode(ctx, email, "000000")
		if err != emailverify.ErrInvalidCode {
			t.Errorf("attempt %d: expected ErrInvalidCode, got %v", i+1, err)
		}
	}

	_, err := store.VerifyCode(ctx, email, "123456")
	if err != emailverify.ErrTooManyAttempts {
		t.Errorf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestStore_VerifyToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, emailverify.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "test@example.com"
	result, err := store.Create(ctx, email, false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	v, err := store.VerifyToken(ctx, result.Token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if v.Email != email {
		t.Errorf("expected email %q, got %q", email, v.Email)
	}

	// Single use: second verification fails.
	_, err = store.VerifyToken(ctx, result.Token)
	if err != emailverify.ErrNotFound {
		t.Errorf("expected ErrNotFound for reused token, got %v", err)
	}
}

func TestStore_VerifyToken_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, emailverify.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.VerifyToken(ctx, "invalid-token")
	if err != emailverify.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeleteByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, emailverify.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "test@example.com"
	result, err := store.Create(ctx, email, false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.DeleteByEmail(ctx, email); err != nil {
		t.Fatalf("DeleteByEmail failed: %v", err)
	}

	_, err = store.VerifyCode(ctx, email, result.Code)
	if err != emailverify.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again should not error.
	if err := store.DeleteByEmail(ctx, email); err != nil {
		t.Fatalf("DeleteByEmail should not error when nothing matches: %v", err)
	}
}

func TestStore_Create_Resend(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, emailverify.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "test@example.com"

	result1, err := store.Create(ctx, email, false)
	if err != nil {
		t.Fatalf("First Create failed: %v", err)
	}
	if result1.ResendCount != 0 {
		t.Errorf("expected resend count 0, got %d", result1.ResendCount)
	}

	result2, err := store.Create(ctx, email, true)
	if err != nil {
		t.Fatalf("Resend Create failed: %v", err)
	}
	if result2.ResendCount != 1 {
		t.Errorf("expected resend count 1, got %d", result2.ResendCount)
	}
	if result2.Code == result1.Code {
		t.Error("expected new code on resend")
	}
}

func TestStore_Create_ResendRateLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, emailverify.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "test@example.com"

	if _, err := store.Create(ctx, email, false); err != nil {
		t.Fatalf("First Create failed: %v", err)
	}
	for i := 0; i < emailverify.MaxResends; i++ {
		if _, err := store.Create(ctx, email, true); err != nil {
			t.Fatalf("Resend %d failed: %v", i+1, err)
		}
	}

	_, err := store.Create(ctx, email, true)
	if err != emailverify.ErrTooManyResends {
		t.Errorf("expected ErrTooManyResends, got %v", err)
	}
}

func TestStore_Verify_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailverify.New(db, 1*time.Millisecond)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "test@example.com"
	result, err := store.Create(ctx, email, false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := store.VerifyCode(ctx, email, result.Code); err != emailverify.ErrNotFound {
		t.Errorf("expected ErrNotFound for expired code, got %v", err)
	}
	if _, err := store.VerifyToken(ctx, result.Token); err != emailverify.ErrNotFound {
		t.Errorf("expected ErrNotFound for expired token, got %v", err)
	}
}
