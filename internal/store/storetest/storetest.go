// Package storetest holds the behavior every store.CollectionStore backend
// must show, so each backend's tests can run the same checks.
package storetest

import (
	"alcyxob/gymhub/internal/store"
	"context"
	"errors"
	"slices"
	"testing"
)

// Run checks versioned saves, conflicts and listing against s, which must be empty.
func Run(t *testing.T, s store.CollectionStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing collection is empty", func(t *testing.T) {
		c, err := s.Get(ctx, "never-saved")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !c.Empty() || c.Version != 0 {
			t.Errorf("Get() = %+v, want empty collection at version 0", c)
		}
	})

	t.Run("versioned saves", func(t *testing.T) {
		first, err := s.Save(ctx, "users", store.Collection{Data: []byte(`[{"id":"a"}]`)})
		if err != nil {
			t.Fatalf("first Save() error = %v", err)
		}
		if first.Version != 1 {
			t.Errorf("first.Version = %d, want 1", first.Version)
		}

		// A second creator still holding version 0 loses.
		if _, err := s.Save(ctx, "users", store.Collection{Data: []byte(`[]`)}); !errors.Is(err, store.ErrVersionConflict) {
			t.Fatalf("stale create error = %v, want ErrVersionConflict", err)
		}

		second, err := s.Save(ctx, "users", store.Collection{Data: []byte(`[{"id":"b"}]`), Version: first.Version})
		if err != nil {
			t.Fatalf("Save() at current version error = %v", err)
		}
		if second.Version != 2 {
			t.Errorf("second.Version = %d, want 2", second.Version)
		}

		// A writer that read version 1 loses to the version 2 write.
		if _, err := s.Save(ctx, "users", store.Collection{Data: []byte(`[]`), Version: first.Version}); !errors.Is(err, store.ErrVersionConflict) {
			t.Fatalf("stale update error = %v, want ErrVersionConflict", err)
		}

		got, err := s.Get(ctx, "users")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Version != 2 || !jsonEqual(got.Data, `[{"id":"b"}]`) {
			t.Errorf("Get() = version %d data %s, want version 2 with the second write", got.Version, got.Data)
		}
	})

	t.Run("names sorted", func(t *testing.T) {
		for _, name := range []string{"payments", "attendance"} {
			if _, err := s.Save(ctx, name, store.Collection{Data: []byte(`{}`)}); err != nil {
				t.Fatal(err)
			}
		}
		names, err := s.Names(ctx)
		if err != nil {
			t.Fatalf("Names() error = %v", err)
		}
		want := []string{"attendance", "payments", "users"}
		if !slices.Equal(names, want) {
			t.Errorf("Names() = %v, want %v", names, want)
		}
	})
}

// jsonEqual ignores the whitespace a jsonb column adds on the way back.
func jsonEqual(got []byte, want string) bool {
	strip := func(b []byte) string {
		out := make([]byte, 0, len(b))
		for _, c := range b {
			if c != ' ' && c != '\n' && c != '\t' {
				out = append(out, c)
			}
		}
		return string(out)
	}
	return strip(got) == strip([]byte(want))
}
