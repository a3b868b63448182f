package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"SchoolManager/internal/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func render(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	if werr := Error(c, zap.NewNop(), err); werr != nil {
		t.Fatal(werr)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	return rec.Code, body["error"]
}

func TestErrorStatusAndMessage(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.DuplicateField("email"), http.StatusBadRequest, "email already exists"},
		{apperr.InvalidRole("Role is inactive"), http.StatusBadRequest, "Role is inactive"},
		{apperr.DuplicateID(errors.New("dup")), http.StatusConflict, "could not allocate a unique faculty id, please retry"},
		{apperr.Unauthenticated("Invalid Credentials"), http.StatusUnauthorized, "Invalid Credentials"},
		{apperr.NotFound("class"), http.StatusNotFound, "class not found"},
		{apperr.TransactionAborted(errors.New("write conflict")), http.StatusInternalServerError, "transaction aborted, no changes were saved"},
		{errors.New("socket closed"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		status, msg := render(t, tc.err)
		if status != tc.status || msg != tc.msg {
			t.Fatalf("%v: got %d %q, want %d %q", tc.err, status, msg, tc.status, tc.msg)
		}
	}
}
