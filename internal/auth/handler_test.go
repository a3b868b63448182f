package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"SchoolManager/internal/validation"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestEcho(store *memStore) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	h := NewAuthHandler(newTestService(store), zap.NewNop())
	e.POST("/signup", h.Signup)
	e.PUT("/api/users/:id", h.UpdateUser)
	return e
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not a JSON object: %s", rec.Body.String())
	}
	msg, ok := body["error"]
	if !ok || len(body) != 1 {
		t.Fatalf("expected {\"error\": ...}, got %s", rec.Body.String())
	}
	return msg
}

func TestSignupHandler(t *testing.T) {
	store := newMemStore()
	e := newTestEcho(store)

	rec := serve(e, http.MethodPost, "/signup", `{"email":"New@School.edu","password":"secret1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var res SignupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	id, err := primitive.ObjectIDFromHex(res.UserID)
	if err != nil || res.Token == "" {
		t.Fatalf("expected token and userId, got %s", rec.Body.String())
	}
	if u := store.users[id]; u == nil || u.Email != "new@school.edu" || u.Role != RoleUser {
		t.Fatalf("unexpected stored user %+v", u)
	}

	rec = serve(e, http.MethodPost, "/signup", `{"email":"new@school.edu","password":"secret2"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a taken email, got %d", rec.Code)
	}
	if msg := errorBody(t, rec); msg != "email already exists" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestSignupHandlerRejectsBadInput(t *testing.T) {
	e := newTestEcho(newMemStore())
	cases := map[string]string{
		"malformed json": `{"email":`,
		"missing email":  `{"password":"secret1"}`,
		"short password": `{"email":"a@x.com","password":"abc"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, "/signup", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			errorBody(t, rec)
		})
	}
}

func TestUpdateUserHandlerRefusesFacultyStatus(t *testing.T) {
	store := newMemStore()
	e := newTestEcho(store)
	rec := serve(e, http.MethodPost, "/signup", `{"email":"f@school.edu","password":"secret1"}`)
	var res SignupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	id, _ := primitive.ObjectIDFromHex(res.UserID)
	store.users[id].Role = RoleFaculty

	rec = serve(e, http.MethodPut, "/api/users/"+res.UserID, `{"active":false}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := errorBody(t, rec); !strings.Contains(msg, "/api/faculty") {
		t.Fatalf("unexpected message %q", msg)
	}
	if !store.users[id].Active {
		t.Fatal("faculty user was deactivated")
	}
}
