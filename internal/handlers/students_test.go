package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cyberkids_accounts/internal/apperr"
	"cyberkids_accounts/internal/models"
	"cyberkids_accounts/internal/service"
)

func strPtr(s string) *string { return &s }

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || decode(t, w)["status"] != statusOK {
		t.Fatalf("unexpected health response: %d %s", w.Code, w.Body.String())
	}
}

func TestGetStudentHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		link := &mockLinking{student: &models.StudentView{
			ID: 3, Username: "student_alice", Email: "alice_child@cyberkids.local", LinkedParent: strPtr("alice"),
		}}
		r := newTestRouter(&service.Service{Linking: link})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/student_alice", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
		}
		body := decode(t, w)
		if body["username"] != "student_alice" || body["linked_parent"] != "alice" || body["id"].(float64) != 3 {
			t.Fatalf("unexpected body: %v", body)
		}
		if link.lastUsername != "student_alice" {
			t.Fatalf("unexpected lookup %q", link.lastUsername)
		}
	})

	t.Run("no parent serializes null", func(t *testing.T) {
		link := &mockLinking{student: &models.StudentView{ID: 4, Username: "solo", Email: "s@x.io"}}
		r := newTestRouter(&service.Service{Linking: link})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/solo", nil))
		body := decode(t, w)
		v, present := body["linked_parent"]
		if !present || v != nil {
			t.Fatalf("expected linked_parent: null, got %v", body)
		}
	})

	t.Run("not found", func(t *testing.T) {
		link := &mockLinking{studentErr: apperr.NotFound("student not found")}
		r := newTestRouter(&service.Service{Linking: link})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/ghost", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status=%d, want 404", w.Code)
		}
		if decode(t, w)["error"] != "student not found" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}

func TestGetStudentHandler_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "validation", err: apperr.Validation("username", "bad username"), wantCode: http.StatusBadRequest, wantMsg: "bad username"},
		{name: "auth kind is a client error", err: apperr.Auth("nope"), wantCode: http.StatusBadRequest, wantMsg: "nope"},
		{name: "fault hides details", err: errors.New("disk on fire"), wantCode: http.StatusInternalServerError, wantMsg: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Linking: &mockLinking{studentErr: tt.err}})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/x", nil))
			if w.Code != tt.wantCode {
				t.Fatalf("status=%d, want %d", w.Code, tt.wantCode)
			}
			if got := decode(t, w)["error"]; got != tt.wantMsg {
				t.Fatalf("error=%v, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestCreateChildHandler(t *testing.T) {
	tests := []struct {
		name     string
		link     *mockLinking
		body     string
		wantCode int
		wantKey  string
		wantVal  string
	}{
		{
			name:     "created",
			link:     &mockLinking{childName: "kiddo"},
			body:     `{"parent_username":"alice","child_name":"kiddo","child_age":8,"child_password":"pw"}`,
			wantCode: http.StatusCreated,
			wantKey:  "child_username",
			wantVal:  "kiddo",
		},
		{
			name:     "missing fields",
			link:     &mockLinking{childErr: apperr.Validation("non_field_errors", "missing required fields")},
			body:     `{"parent_username":"alice"}`,
			wantCode: http.StatusBadRequest,
			wantKey:  "error",
			wantVal:  "missing required fields",
		},
		{
			name:     "duplicate",
			link:     &mockLinking{childErr: apperr.Validation("child_name", "duplicate username")},
			body:     `{"parent_username":"alice","child_name":"bob","child_password":"pw"}`,
			wantCode: http.StatusBadRequest,
			wantKey:  "error",
			wantVal:  "duplicate username",
		},
		{
			name:     "parent missing",
			link:     &mockLinking{childErr: apperr.NotFound("parent not found")},
			body:     `{"parent_username":"ghost","child_name":"kid","child_password":"pw"}`,
			wantCode: http.StatusNotFound,
			wantKey:  "error",
			wantVal:  "parent not found",
		},
		{
			name:     "fault",
			link:     &mockLinking{childErr: apperr.Internal("create child", errors.New("locked"))},
			body:     `{"parent_username":"alice","child_name":"kid","child_password":"pw"}`,
			wantCode: http.StatusInternalServerError,
			wantKey:  "error",
			wantVal:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Linking: tt.link})
			w := postJSON(t, r, "/children", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status=%d, want %d, body=%s", w.Code, tt.wantCode, w.Body.String())
			}
			if got := decode(t, w)[tt.wantKey]; got != tt.wantVal {
				t.Fatalf("%s=%v, want %q", tt.wantKey, got, tt.wantVal)
			}
		})
	}
}

func TestCreateChildHandler_MapsFields(t *testing.T) {
	link := &mockLinking{childName: "kiddo"}
	r := newTestRouter(&service.Service{Linking: link})

	postJSON(t, r, "/children", `{"parent_username":"alice","child_name":"kiddo","child_age":8,"child_password":"pw"}`)

	in := link.lastChildInput
	if in.ParentUsername != "alice" || in.ChildUsername != "kiddo" || in.ChildPassword != "pw" {
		t.Fatalf("unexpected input: %+v", in)
	}
	if in.ChildAge == nil || *in.ChildAge != 8 {
		t.Fatalf("unexpected age: %v", in.ChildAge)
	}
}

func TestAPIRoutes(t *testing.T) {
	parentClaims := &service.Claims{UserID: 1, Username: "alice", Role: models.RoleParent, TokenType: service.TokenTypeAccess}
	studentClaims := &service.Claims{UserID: 2, Username: "stu", Role: models.RoleStudent, TokenType: service.TokenTypeAccess}

	t.Run("me", func(t *testing.T) {
		link := &mockLinking{account: &models.Account{ID: 1, Username: "alice", Email: "alice@example.com", Role: models.RoleParent}}
		r := newTestRouter(&service.Service{Authorization: &mockAuth{claims: parentClaims}, Linking: link})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header = authHeader("tok")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
		}
		body := decode(t, w)
		if body["username"] != "alice" || body["role"] != "parent" {
			t.Fatalf("unexpected body: %v", body)
		}
		if link.lastUsername != "alice" {
			t.Fatalf("expected lookup by token username, got %q", link.lastUsername)
		}
	})

	t.Run("children for parent", func(t *testing.T) {
		link := &mockLinking{children: []models.StudentView{{ID: 2, Username: "student_alice"}}}
		r := newTestRouter(&service.Service{Authorization: &mockAuth{claims: parentClaims}, Linking: link})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/children", nil)
		req.Header = authHeader("tok")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
		}
		if decode(t, w)["count"].(float64) != 1 {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("children forbidden for student", func(t *testing.T) {
		link := &mockLinking{}
		r := newTestRouter(&service.Service{Authorization: &mockAuth{claims: studentClaims}, Linking: link})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/children", nil)
		req.Header = authHeader("tok")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status=%d, want 403", w.Code)
		}
		if link.lastUsername != "" {
			t.Fatalf("service must not be called")
		}
	})
}
