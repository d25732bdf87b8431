package auth

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("livedns-manager-test")

	if _, err := store.GetKey(); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound before login, got %v", err)
	}

	if err := store.SetKey("secret"); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	got, err := store.GetKey()
	if err != nil {
		t.Fatalf("GetKey: %v", err)
	}
	if got != "secret" {
		t.Errorf("expected 'secret', got %q", got)
	}

	if err := store.DeleteKey(); err != nil {
		t.Fatalf("DeleteKey: %v", err)
	}
	if err := store.DeleteKey(); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound on second delete, got %v", err)
	}
}

func TestKeyringStore_RejectsEmptyKey(t *testing.T) {
	keyring.MockInit()
	if err := DefaultStore().SetKey(""); err == nil {
		t.Fatal("expected error for empty key, got nil")
	}
}

func TestKeyringStore_BackendError(t *testing.T) {
	backendErr := errors.New("keychain locked")
	keyring.MockInitWithError(backendErr)
	t.Cleanup(keyring.MockInit)

	if _, err := DefaultStore().GetKey(); !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
}
