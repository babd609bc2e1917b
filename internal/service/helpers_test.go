package service

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/repository"
	"alcyxob/gymhub/internal/store"
	"context"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"
)

var testNow = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T) (*GymService, *repository.Repository, *testClock) {
	t.Helper()
	repo := repository.New(store.NewMemoryStore())
	clock := &testClock{now: testNow}
	svc := NewGymService(repo, zap.NewNop(), WithClock(clock.Now), WithRand(rand.New(rand.NewSource(1))))
	return svc, repo, clock
}

func seedUsers(t *testing.T, repo *repository.Repository, users ...domain.User) {
	t.Helper()
	err := repo.Users.Update(context.Background(), func(list []domain.User) ([]domain.User, error) {
		return append(list, users...), nil
	})
	if err != nil {
		t.Fatalf("seed users: %v", err)
	}
}

func seedGym(t *testing.T, repo *repository.Repository, id, name string) {
	t.Helper()
	err := repo.Gyms.Update(context.Background(), func(list []domain.Gym) ([]domain.Gym, error) {
		return append(list, domain.Gym{ID: id, Name: name}), nil
	})
	if err != nil {
		t.Fatalf("seed gym: %v", err)
	}
}

func openAs(t *testing.T, svc *GymService, id domain.Identity) *Workspace {
	t.Helper()
	w, err := svc.Open(context.Background(), id)
	if err != nil {
		t.Fatalf("Open(%+v) error = %v", id, err)
	}
	return w
}

var (
	masterG1 = domain.Identity{UserID: "MASTER1", GymID: "G1", Role: domain.RoleMaster}
	memberM1 = domain.Identity{UserID: "M1", GymID: "G1", Role: domain.RoleMember}
	memberM2 = domain.Identity{UserID: "M2", GymID: "G2", Role: domain.RoleMember}
)

// seedTwoGyms creates G1 (MASTER1, M1, M3) and G2 (MASTER2, M2).
func seedTwoGyms(t *testing.T, repo *repository.Repository) {
	t.Helper()
	seedGym(t, repo, "G1", "Iron Paradise")
	seedGym(t, repo, "G2", "Flex Hub")
	seedUsers(t, repo,
		domain.User{ID: "MASTER1", GymID: "G1", Role: domain.RoleMaster, Name: "Owner One"},
		domain.User{ID: "M1", GymID: "G1", Role: domain.RoleMember, Name: "Member One"},
		domain.User{ID: "M3", GymID: "G1", Role: domain.RoleMember, Name: "Member Three"},
		domain.User{ID: "MASTER2", GymID: "G2", Role: domain.RoleMaster, Name: "Owner Two"},
		domain.User{ID: "M2", GymID: "G2", Role: domain.RoleMember, Name: "Member Two"},
	)
}
