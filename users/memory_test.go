package users

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestMemoryDirectorySeedDefaults(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory(WithCost(bcrypt.MinCost))

	if err := SeedDefaults(ctx, dir); err != nil {
		t.Fatalf("seed: %v", err)
	}

	admin, err := dir.FindUser(ctx, "admin")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if admin.Role != "admin" {
		t.Fatalf("admin role = %q", admin.Role)
	}
	if admin.PasswordHash == "admin123" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")); err != nil {
		t.Fatalf("admin hash does not match default password: %v", err)
	}

	if _, err := dir.FindUser(ctx, "user"); err != nil {
		t.Fatalf("find user: %v", err)
	}

	// Seeding twice is harmless.
	if err := SeedDefaults(ctx, dir); err != nil {
		t.Fatalf("second seed: %v", err)
	}
}

func TestMemoryDirectoryUnknownUser(t *testing.T) {
	dir := NewMemoryDirectory(WithCost(bcrypt.MinCost))

	_, err := dir.FindUser(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMemoryDirectoryAddUserDuplicate(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory(WithCost(bcrypt.MinCost))

	added, err := dir.AddUser(ctx, "clerk", "pw1", "user")
	if err != nil || !added {
		t.Fatalf("first add = %v, %v", added, err)
	}

	added, err = dir.AddUser(ctx, "clerk", "pw2", "admin")
	if err != nil || added {
		t.Fatalf("duplicate add = %v, %v; want false, nil", added, err)
	}

	u, _ := dir.FindUser(ctx, "clerk")
	if u.Role != "user" {
		t.Fatalf("duplicate add must not overwrite, role = %q", u.Role)
	}
}

func TestMemoryDirectoryConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory(WithCost(bcrypt.MinCost))

	const workers = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		added int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := dir.AddUser(ctx, "racer", "pw", "user")
			if err != nil {
				t.Errorf("add: %v", err)
				return
			}
			if ok {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if added != 1 {
		t.Fatalf("exactly one concurrent add should win, got %d", added)
	}
}
