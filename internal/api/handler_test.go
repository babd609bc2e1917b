package api

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/repository"
	"alcyxob/gymhub/internal/service"
	"alcyxob/gymhub/internal/store"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	ctx := context.Background()
	repo := repository.New(store.NewMemoryStore())
	err := repo.Users.Update(ctx, func(list []domain.User) ([]domain.User, error) {
		return append(list,
			domain.User{ID: "MASTER1", GymID: "G1", Role: domain.RoleMaster, Name: "Owner"},
			domain.User{ID: "M1", GymID: "G1", Role: domain.RoleMember, Name: "Member One"},
			domain.User{ID: "M2", GymID: "G2", Role: domain.RoleMember, Name: "Member Two"},
		), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	svc := service.NewGymService(repo, zap.NewNop())

	router := gin.New()
	SetupRoutes(router, RouterDeps{
		JWTSecret: testSecret,
		Handler:   NewGymHandler(svc, nil),
		Log:       zap.NewNop(),
	})
	return router
}

func token(t *testing.T, id domain.Identity) string {
	t.Helper()
	claims := jwtClaims{
		UserID: id.UserID,
		GymID:  id.GymID,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

var (
	master = domain.Identity{UserID: "MASTER1", GymID: "G1", Role: domain.RoleMaster}
	member = domain.Identity{UserID: "M1", GymID: "G1", Role: domain.RoleMember}
	other  = domain.Identity{UserID: "M2", GymID: "G2", Role: domain.RoleMember}
)

func do(t *testing.T, router *gin.Engine, method, path string, id *domain.Identity, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if id != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, *id))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestAuthAndRoles(t *testing.T) {
	router := newTestRouter(t)
	tests := []struct {
		name   string
		method string
		path   string
		id     *domain.Identity
		body   any
		want   int
	}{
		{"ping is public", http.MethodGet, "/ping", nil, nil, http.StatusOK},
		{"missing token", http.MethodGet, "/api/v1/snapshot", nil, nil, http.StatusUnauthorized},
		{"member reads snapshot", http.MethodGet, "/api/v1/snapshot", &member, nil, http.StatusOK},
		{"member cannot add members", http.MethodPost, "/api/v1/members", &member, gin.H{"name": "X"}, http.StatusForbidden},
		{"master adds member", http.MethodPost, "/api/v1/members", &master, gin.H{"name": "X"}, http.StatusCreated},
		{"member cannot see revenue", http.MethodGet, "/api/v1/revenue", &member, nil, http.StatusForbidden},
		{"member cannot mark others", http.MethodPost, "/api/v1/attendance", &member, gin.H{"memberId": "MASTER1", "status": "present"}, http.StatusForbidden},
		{"bad attendance status", http.MethodPost, "/api/v1/attendance", &member, gin.H{"status": "sick"}, http.StatusBadRequest},
		{"backup without archive", http.MethodPost, "/api/v1/master/backups", &master, nil, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.method, tt.path, tt.id, tt.body)
			if w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.path, w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestSnapshotIsTenantScoped(t *testing.T) {
	router := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/api/v1/snapshot", &other, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	snap := decode[service.Snapshot](t, w)
	if len(snap.Users) != 1 || snap.Users[0].ID != "M2" {
		t.Errorf("G2 snapshot users = %+v", snap.Users)
	}
}

func TestWorkoutSessionFlow(t *testing.T) {
	router := newTestRouter(t)
	plan := domain.WorkoutPlan{Name: "Quick", Exercises: []domain.PlanExercise{{Name: "Squat", Sets: domain.SetSpec{Count: 2}, Reps: 5}}}

	w := do(t, router, http.MethodPost, "/api/v1/workout/finish", &member, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("finish without session = %d, want 404", w.Code)
	}

	w = do(t, router, http.MethodPost, "/api/v1/workout/start", &member, gin.H{"plan": plan, "source": "PERSONAL"})
	if w.Code != http.StatusCreated {
		t.Fatalf("start = %d (%s)", w.Code, w.Body.String())
	}
	session := decode[domain.ActiveWorkoutSession](t, w)
	if len(session.Exercises) != 1 || len(session.Exercises[0].Sets) != 2 {
		t.Fatalf("session = %+v", session)
	}

	w = do(t, router, http.MethodPost, "/api/v1/workout/start", &member, gin.H{"plan": plan})
	if w.Code != http.StatusConflict {
		t.Errorf("second start = %d, want 409", w.Code)
	}

	w = do(t, router, http.MethodPatch, "/api/v1/workout", &member, gin.H{"op": "update_set", "exercise": 0, "set": 0, "weight": 100, "completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d (%s)", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPatch, "/api/v1/workout", &member, gin.H{"op": "remove_set", "exercise": 4})
	if w.Code != http.StatusBadRequest {
		t.Errorf("out of range update = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodPost, "/api/v1/workout/finish", &member, gin.H{"notes": "done"})
	if w.Code != http.StatusCreated {
		t.Fatalf("finish = %d (%s)", w.Code, w.Body.String())
	}
	rec := decode[domain.WorkoutRecord](t, w)
	if rec.TotalVolume != 500 || rec.Notes != "done" {
		t.Errorf("record = %+v", rec)
	}

	w = do(t, router, http.MethodGet, "/api/v1/history", &member, nil)
	if got := decode[[]domain.WorkoutRecord](t, w); len(got) != 1 {
		t.Errorf("history = %+v", got)
	}

	w = do(t, router, http.MethodPatch, "/api/v1/history/"+rec.RecordID, &master, gin.H{"notes": "fixed"})
	if w.Code != http.StatusOK {
		t.Errorf("correction = %d (%s)", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPatch, "/api/v1/history/"+rec.RecordID, &member, gin.H{"notes": "mine"})
	if w.Code != http.StatusForbidden {
		t.Errorf("member correction = %d, want 403", w.Code)
	}
}

func TestFinishWorkoutReadsChunkedBody(t *testing.T) {
	router := newTestRouter(t)
	plan := domain.WorkoutPlan{Name: "Quick", Exercises: []domain.PlanExercise{{Name: "Squat", Sets: domain.SetSpec{Count: 1}, Reps: 5}}}
	w := do(t, router, http.MethodPost, "/api/v1/workout/start", &member, gin.H{"plan": plan})
	if w.Code != http.StatusCreated {
		t.Fatalf("start = %d (%s)", w.Code, w.Body.String())
	}

	// An unsized reader leaves the length unknown, as a chunked upload does.
	body := io.NopCloser(strings.NewReader(`{"notes":"chunked"}`))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workout/finish", body)
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token(t, member))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("finish = %d (%s)", w.Code, w.Body.String())
	}
	if rec := decode[domain.WorkoutRecord](t, w); rec.Notes != "chunked" {
		t.Errorf("notes = %q, want %q", rec.Notes, "chunked")
	}
}

func TestChatRoutes(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/chat/M1", &master, gin.H{"text": "hi"})
	if w.Code != http.StatusCreated {
		t.Fatalf("send = %d (%s)", w.Code, w.Body.String())
	}
	msg := decode[domain.ChatMessage](t, w)

	w = do(t, router, http.MethodPut, "/api/v1/chat/MASTER1/"+msg.ID, &member, gin.H{"text": "edited"})
	if w.Code != http.StatusForbidden {
		t.Errorf("recipient edit = %d, want 403", w.Code)
	}

	w = do(t, router, http.MethodGet, "/api/v1/chat/MASTER1", &member, nil)
	if got := decode[[]domain.ChatMessage](t, w); len(got) != 1 || got[0].Text != "hi" {
		t.Errorf("conversation = %+v", got)
	}

	w = do(t, router, http.MethodPost, "/api/v1/chat/M2", &master, gin.H{"text": "cross tenant"})
	if w.Code != http.StatusNotFound {
		t.Errorf("cross-tenant send = %d, want 404", w.Code)
	}
}
