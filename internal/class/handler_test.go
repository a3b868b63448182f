package class

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"SchoolManager/internal/validation"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestEcho() (*echo.Echo, memClasses, primitive.ObjectID) {
	s, store, teacher := newTestService()
	e := echo.New()
	e.Validator = validation.New()
	h := NewClassHandler(s, zap.NewNop())
	e.POST("/api/classes", h.Create)
	e.PUT("/api/classes/:id", h.Update)
	e.DELETE("/api/classes/:id", h.Delete)
	return e, store, teacher
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func classBody(section, teacher string) string {
	return fmt.Sprintf(`{"name":"10","section":%q,"academicYear":"2024-2025","capacity":40,"classTeacher":%q}`, section, teacher)
}

func TestCreateClassHandler(t *testing.T) {
	e, store, teacher := newTestEcho()

	rec := serve(e, http.MethodPost, "/api/classes", classBody("a", teacher.Hex()))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store) != 1 {
		t.Fatalf("expected one class, got %d", len(store))
	}

	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"duplicate", classBody("A", teacher.Hex()), "class already exists"},
		{"teacher malformed", classBody("B", "mr-smith"), "classTeacher must be a valid id"},
		{"teacher unknown", classBody("B", primitive.NewObjectID().Hex()), ""},
		{"capacity", `{"name":"10","section":"C","academicYear":"2024-2025","capacity":500,"classTeacher":"` + teacher.Hex() + `"}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, "/api/classes", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Fatalf("expected {\"error\": ...}, got %s", rec.Body.String())
			}
			if tc.msg != "" && body["error"] != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, body["error"])
			}
		})
	}
	if len(store) != 1 {
		t.Fatalf("rejected requests must not write, have %d classes", len(store))
	}
}

func TestUpdateAndDeleteClassHandler(t *testing.T) {
	e, store, teacher := newTestEcho()
	rec := serve(e, http.MethodPost, "/api/classes", classBody("A", teacher.Hex()))
	var created Class
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	rec = serve(e, http.MethodPut, "/api/classes/"+created.ID.Hex(), `{"classTeacher":"nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed teacher, got %d", rec.Code)
	}
	rec = serve(e, http.MethodPut, "/api/classes/"+created.ID.Hex(), `{"capacity":35}`)
	if rec.Code != http.StatusOK || store[created.ID].Capacity != 35 {
		t.Fatalf("expected capacity update, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(e, http.MethodDelete, "/api/classes/"+created.ID.Hex(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(store) != 0 {
		t.Fatal("class not removed")
	}
	rec = serve(e, http.MethodDelete, "/api/classes/"+created.ID.Hex(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a missing class, got %d", rec.Code)
	}
}
