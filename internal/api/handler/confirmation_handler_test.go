package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
)

type stubConfirmation struct {
	session *domain.ConfirmationSession
	err     error

	startedWith string
	code        string
	locator     ports.Locator
	photo       *domain.Photo
}

func (s *stubConfirmation) Start(ctx context.Context, deliveryID string) (*domain.ConfirmationSession, error) {
	s.startedWith = deliveryID
	if s.err != nil {
		return nil, s.err
	}
	return domain.NewConfirmationSession("s1", deliveryID, time.Unix(0, 0)), nil
}

func (s *stubConfirmation) Session(ctx context.Context, sessionID string) (*domain.ConfirmationSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func (s *stubConfirmation) VerifyCode(ctx context.Context, sessionID, code string) (*domain.ConfirmationSession, error) {
	s.code = code
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func (s *stubConfirmation) SubmitLocation(ctx context.Context, sessionID string, locator ports.Locator, photo *domain.Photo) (*domain.ConfirmationSession, error) {
	s.locator, s.photo = locator, photo
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func (s *stubConfirmation) PositionOptions() ports.PositionOptions {
	return ports.NewPositionOptions(20 * time.Second)
}

func verifiedSession() *domain.ConfirmationSession {
	s := domain.NewConfirmationSession("s1", "d1", time.Unix(0, 0))
	_ = s.Resolve("d1")
	return s
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func multipartLocation(t *testing.T, fields map[string]string, photoName string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if photo != nil {
		fw, err := w.CreateFormFile(photoField, photoName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(photo); err != nil {
			t.Fatalf("write photo: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &body, w.FormDataContentType()
}

func sessionContext(e *echo.Echo, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session")
	c.SetParamValues("s1")
	return c, rec
}

func TestConfirmationHandler_Start(t *testing.T) {
	e := newTestEcho()
	svc := &stubConfirmation{}
	h := NewConfirmationHandler(svc, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/confirmar-localizacao?id=d1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Start(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.startedWith != "d1" {
		t.Fatalf("expected delivery id d1, got %q", svc.startedWith)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/v1/confirmations/s1" {
		t.Fatalf("unexpected Location header %q", loc)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["state"] != string(domain.StateAwaitingCode) || resp["universal"] != false {
		t.Fatalf("unexpected session payload: %+v", resp)
	}
	opts, _ := resp["position_options"].(map[string]any)
	if opts["enable_high_accuracy"] != true || opts["timeout_ms"] != float64(20000) || opts["maximum_age_ms"] != float64(0) {
		t.Fatalf("unexpected position options: %+v", opts)
	}
}

func TestConfirmationHandler_Start_Universal(t *testing.T) {
	e := newTestEcho()
	svc := &stubConfirmation{}
	h := NewConfirmationHandler(svc, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/confirmar-localizacao", nil)
	rec := httptest.NewRecorder()
	if err := h.Start(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"universal":true`) {
		t.Fatalf("expected universal session, got %s", rec.Body.String())
	}
}

func TestConfirmationHandler_Verify(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"joined", `{"code":"4821"}`, "4821"},
		{"digits", `{"digits":["4","8","2","1"]}`, "4821"},
		{"partial digits", `{"digits":["4","8"]}`, "48"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			svc := &stubConfirmation{session: verifiedSession()}
			h := NewConfirmationHandler(svc, 1<<20)

			req := httptest.NewRequest(http.MethodPost, "/v1/confirmations/s1/verify", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			c, rec := sessionContext(e, req)

			if err := h.Verify(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if svc.code != tc.want {
				t.Fatalf("expected code %q, got %q", tc.want, svc.code)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
		})
	}
}

func TestConfirmationHandler_Verify_MalformedCode(t *testing.T) {
	e := newTestEcho()
	svc := &stubConfirmation{session: verifiedSession()}
	h := NewConfirmationHandler(svc, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/v1/confirmations/s1/verify", strings.NewReader(`{"code":"12a"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, _ := sessionContext(e, req)

	if err := h.Verify(c); !errors.Is(err, domain.ErrIncompleteCode) {
		t.Fatalf("expected ErrIncompleteCode, got %v", err)
	}
	if svc.code != "" {
		t.Fatalf("service must not be called, got code %q", svc.code)
	}
}

func TestConfirmationHandler_Verify_ServiceError(t *testing.T) {
	e := newTestEcho()
	svc := &stubConfirmation{err: domain.ErrInvalidCode}
	h := NewConfirmationHandler(svc, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/v1/confirmations/s1/verify", strings.NewReader(`{"code":"0000"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, _ := sessionContext(e, req)

	if err := h.Verify(c); !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
}

func TestConfirmationHandler_SubmitLocation_WithPhoto(t *testing.T) {
	e := newTestEcho()
	done := verifiedSession()
	done.Complete()
	svc := &stubConfirmation{session: done}
	h := NewConfirmationHandler(svc, 1<<20)

	body, ct := multipartLocation(t, map[string]string{
		"lat": "-23.5505", "lon": "-46.6333", "accuracy": "12.5",
	}, "portao.png", tinyPNG(t))
	req := httptest.NewRequest(http.MethodPost, "/v1/confirmations/s1/location", body)
	req.Header.Set(echo.HeaderContentType, ct)
	c, rec := sessionContext(e, req)

	if err := h.SubmitLocation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.photo == nil || svc.photo.ContentType != "image/png" || svc.photo.Filename != "portao.png" {
		t.Fatalf("unexpected photo: %+v", svc.photo)
	}

	pos, err := svc.locator.Locate(context.Background(), ports.NewPositionOptions(time.Second))
	if err != nil {
		t.Fatalf("locator error: %v", err)
	}
	if pos.Latitude != -23.5505 || pos.Longitude != -46.6333 || pos.Accuracy != 12.5 {
		t.Fatalf("unexpected position: %+v", pos)
	}
	if !strings.Contains(rec.Body.String(), `"state":"success"`) {
		t.Fatalf("expected success state, got %s", rec.Body.String())
	}
}

func TestConfirmationHandler_SubmitLocation_NoPhotoUrlEncoded(t *testing.T) {
	e := newTestEcho()
	svc := &stubConfirmation{session: verifiedSession()}
	h := NewConfirmationHandler(svc, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/v1/confirmations/s1/location",
		strings.NewReader("geo_error=1"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c, _ := sessionContext(e, req)

	if err := h.SubmitLocation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.photo != nil {
		t.Fatalf("expected no photo, got %+v", svc.photo)
	}
	_, err := svc.locator.Locate(context.Background(), ports.NewPositionOptions(time.Second))
	if !errors.Is(err, domain.ErrLocationPermissionDenied) {
		t.Fatalf("expected permission denied from the submitted fix, got %v", err)
	}
}

func TestConfirmationHandler_SubmitLocation_RejectsNonImage(t *testing.T) {
	e := newTestEcho()
	svc := &stubConfirmation{session: verifiedSession()}
	h := NewConfirmationHandler(svc, 1<<20)

	body, ct := multipartLocation(t, map[string]string{"lat": "1", "lon": "2"}, "notes.txt", []byte("just some text"))
	req := httptest.NewRequest(http.MethodPost, "/v1/confirmations/s1/location", body)
	req.Header.Set(echo.HeaderContentType, ct)
	c, _ := sessionContext(e, req)

	if err := h.SubmitLocation(c); !errors.Is(err, domain.ErrInvalidPhoto) {
		t.Fatalf("expected ErrInvalidPhoto, got %v", err)
	}
	if svc.locator != nil {
		t.Fatalf("service must not be called for an invalid photo")
	}
}

func TestConfirmationHandler_SubmitLocation_PhotoTooLarge(t *testing.T) {
	e := newTestEcho()
	svc := &stubConfirmation{session: verifiedSession()}
	h := NewConfirmationHandler(svc, 16)

	body, ct := multipartLocation(t, map[string]string{"lat": "1", "lon": "2"}, "big.png", tinyPNG(t))
	req := httptest.NewRequest(http.MethodPost, "/v1/confirmations/s1/location", body)
	req.Header.Set(echo.HeaderContentType, ct)
	c, _ := sessionContext(e, req)

	if err := h.SubmitLocation(c); !errors.Is(err, domain.ErrInvalidPhoto) {
		t.Fatalf("expected ErrInvalidPhoto, got %v", err)
	}
}

func TestConfirmationHandler_Get_NotFound(t *testing.T) {
	e := newTestEcho()
	svc := &stubConfirmation{err: domain.ErrSessionNotFound}
	h := NewConfirmationHandler(svc, 1<<20)

	c, _ := sessionContext(e, httptest.NewRequest(http.MethodGet, "/v1/confirmations/s1", nil))
	if err := h.Get(c); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
