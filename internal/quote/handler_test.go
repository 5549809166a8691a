package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/loudachris/tradievoice/internal/dto"
	"github.com/loudachris/tradievoice/internal/extraction"
	"github.com/loudachris/tradievoice/internal/shared"
)

// fakeStore round-trips sessions through JSON the way the redis store
// does, so decimal serialization is exercised too.
type fakeStore struct {
	sessions  map[string][]byte
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string][]byte)}
}

func (f *fakeStore) Create(_ context.Context, sess *Session) error {
	if sess.ID == "" {
		sess.ID = shared.NewID("quote_")
	}
	if sess.Mode == "" {
		sess.Mode = "command"
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	f.sessions[sess.ID] = data
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*Session, error) {
	data, ok := f.sessions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (f *fakeStore) Update(_ context.Context, sess *Session) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	f.sessions[sess.ID] = data
	return nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string, _ io.Reader) (string, error) {
	return f.text, f.err
}

type fakeExtractor struct {
	raw *extraction.RawQuote
	err error
}

func (f *fakeExtractor) ExtractQuote(_ context.Context, _ string) (*extraction.RawQuote, error) {
	return f.raw, f.err
}

func newTestHandler(store SessionStore, tr *fakeTranscriber, ex *fakeExtractor) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(store, tr, ex, logger)
}

func createSession(t *testing.T, h *Handler) dto.QuoteSession {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/quotes", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateSession(c); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp dto.QuoteSession
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal session: %v", err)
	}
	return resp
}

func addItem(t *testing.T, h *Handler, sessionID, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/quotes/"+sessionID+"/items", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sessionID)
	return rec, h.AddItem(c)
}

func TestHandler_CreateSession(t *testing.T) {
	h := newTestHandler(newFakeStore(), nil, nil)
	sess := createSession(t, h)

	if sess.ID == "" {
		t.Error("expected session ID to be assigned")
	}
	if sess.Mode != "command" {
		t.Errorf("expected default mode command, got %s", sess.Mode)
	}
	if sess.Quote.TotalAmount != 0 || sess.Quote.UpsellOpportunity {
		t.Error("new session must start with a zero, non-upsell quote")
	}
	if sess.Quote.CustomerName != "Valued Customer" {
		t.Errorf("expected default customer name, got %q", sess.Quote.CustomerName)
	}
}

func TestHandler_AddItem_AccumulatesTotal(t *testing.T) {
	h := newTestHandler(newFakeStore(), nil, nil)
	sess := createSession(t, h)

	rec, err := addItem(t, h, sess.ID, `{"description":"First fix","quantity":1,"unit_price":100,"total":100}`)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	rec, err = addItem(t, h, sess.ID, `{"description":"Second fix","quantity":1,"unit_price":200.50,"total":200.50}`)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	var resp dto.QuoteSession
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Quote.TotalAmount != 300.50 {
		t.Errorf("expected total 300.50, got %v", resp.Quote.TotalAmount)
	}
	if resp.Quote.UpsellOpportunity {
		t.Error("upsell must be inactive at 300.50")
	}
	if len(resp.Quote.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(resp.Quote.Items))
	}
}

func TestHandler_AddItem_RejectsNegativeAmount(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(store, nil, nil)
	sess := createSession(t, h)

	_, err := addItem(t, h, sess.ID, `{"description":"x","total":-5}`)
	if err == nil {
		t.Fatal("expected error for negative amount")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}

	stored, _ := store.Get(context.Background(), sess.ID)
	if len(stored.Items) != 0 {
		t.Error("rejected item must not mutate the stored session")
	}
}

func TestHandler_AddItem_SessionNotFound(t *testing.T) {
	h := newTestHandler(newFakeStore(), nil, nil)

	_, err := addItem(t, h, "quote_missing", `{"description":"x","total":5}`)
	if err == nil {
		t.Fatal("expected error for unknown session")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}

func TestHandler_AddItem_UpsellCrossing(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(store, nil, nil)
	sess := createSession(t, h)

	rec, err := addItem(t, h, sess.ID, `{"description":"Switchboard","total":9000}`)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	var resp dto.QuoteSession
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Quote.UpsellOpportunity {
		t.Error("upsell must be inactive at 9000.00")
	}

	rec, err = addItem(t, h, sess.ID, `{"description":"Solar","total":2000}`)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Quote.UpsellOpportunity {
		t.Error("upsell must be active at 11000.00")
	}

	stored, _ := store.Get(context.Background(), sess.ID)
	if !stored.UpsellNotified {
		t.Error("crossing must record the one-shot notification")
	}
}

func TestHandler_Reset(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(store, nil, nil)
	sess := createSession(t, h)
	addItem(t, h, sess.ID, `{"description":"Big job","total":10500}`)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/quotes/"+sess.ID+"/reset", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sess.ID)

	if err := h.ResetSession(c); err != nil {
		t.Fatalf("ResetSession failed: %v", err)
	}

	var resp dto.QuoteSession
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Quote.TotalAmount != 0 || resp.Quote.UpsellOpportunity || len(resp.Quote.Items) != 0 {
		t.Errorf("expected empty quote after reset, got %+v", resp.Quote)
	}

	stored, _ := store.Get(context.Background(), sess.ID)
	if stored.UpsellNotified {
		t.Error("reset must re-arm the upsell notification")
	}
}

func TestHandler_SetMode(t *testing.T) {
	h := newTestHandler(newFakeStore(), nil, nil)
	sess := createSession(t, h)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/quotes/"+sess.ID+"/mode", strings.NewReader(`{"mode":"walkthrough"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sess.ID)

	if err := h.SetMode(c); err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}

	var resp dto.QuoteSession
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Mode != "walkthrough" {
		t.Errorf("expected walkthrough, got %s", resp.Mode)
	}
}

func TestHandler_SetMode_Invalid(t *testing.T) {
	h := newTestHandler(newFakeStore(), nil, nil)
	sess := createSession(t, h)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/quotes/"+sess.ID+"/mode", strings.NewReader(`{"mode":"karaoke"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sess.ID)

	err := h.SetMode(c)
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func transcribeRequest(t *testing.T, sessionID string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "clip.webm")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("fake-audio"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	return req, httptest.NewRecorder()
}

func TestHandler_Transcribe_RecomputesTotalAndUpsell(t *testing.T) {
	tr := &fakeTranscriber{text: "rewire the whole house"}
	// The model reports a wrong total and no upsell; the server must not
	// believe either.
	ex := &fakeExtractor{raw: &extraction.RawQuote{
		CustomerName: "John Doe",
		Items: []extraction.RawItem{
			{Description: "Full rewire", Quantity: 1, UnitPrice: 10500, Total: 10500},
		},
		TotalAmount:       99,
		Notes:             "Big job",
		UpsellOpportunity: false,
	}}
	h := newTestHandler(newFakeStore(), tr, ex)

	e := echo.New()
	req, rec := transcribeRequest(t, "")
	c := e.NewContext(req, rec)

	if err := h.Transcribe(c); err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	var resp dto.QuoteData
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.TotalAmount != 10500 {
		t.Errorf("expected recomputed total 10500, got %v", resp.TotalAmount)
	}
	if !resp.UpsellOpportunity {
		t.Error("expected upsell derived from the recomputed total")
	}
	if resp.CustomerName != "John Doe" {
		t.Errorf("expected customer John Doe, got %q", resp.CustomerName)
	}
}

func TestHandler_Transcribe_AppendsToSession(t *testing.T) {
	tr := &fakeTranscriber{text: "add tapware"}
	ex := &fakeExtractor{raw: &extraction.RawQuote{
		Items: []extraction.RawItem{{Description: "Tapware", Quantity: 1, UnitPrice: 200.50, Total: 200.50}},
	}}
	store := newFakeStore()
	h := newTestHandler(store, tr, ex)
	sess := createSession(t, h)
	addItem(t, h, sess.ID, `{"description":"Callout","total":100}`)

	e := echo.New()
	req, rec := transcribeRequest(t, sess.ID)
	c := e.NewContext(req, rec)

	if err := h.Transcribe(c); err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	var resp dto.QuoteData
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.TotalAmount != 300.50 {
		t.Errorf("expected accumulated total 300.50, got %v", resp.TotalAmount)
	}

	stored, _ := store.Get(context.Background(), sess.ID)
	if len(stored.Items) != 2 {
		t.Errorf("expected 2 stored items, got %d", len(stored.Items))
	}
}

func TestHandler_Transcribe_SessionNotFound(t *testing.T) {
	tr := &fakeTranscriber{text: "anything"}
	ex := &fakeExtractor{raw: &extraction.RawQuote{}}
	h := newTestHandler(newFakeStore(), tr, ex)

	e := echo.New()
	req, rec := transcribeRequest(t, "quote_missing")
	c := e.NewContext(req, rec)

	err := h.Transcribe(c)
	if err == nil {
		t.Fatal("expected error for unknown session")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}

func TestHandler_Transcribe_MissingFile(t *testing.T) {
	h := newTestHandler(newFakeStore(), &fakeTranscriber{}, &fakeExtractor{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Transcribe(c)
	if err == nil {
		t.Fatal("expected error when file is missing")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandler_Transcribe_TranscriberFailure(t *testing.T) {
	tr := &fakeTranscriber{err: errors.New("upstream down")}
	h := newTestHandler(newFakeStore(), tr, &fakeExtractor{})

	e := echo.New()
	req, rec := transcribeRequest(t, "")
	c := e.NewContext(req, rec)

	err := h.Transcribe(c)
	if err == nil {
		t.Fatal("expected error when transcription fails")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", httpErr.Code)
	}
}

func TestHandler_Transcribe_ExtractorFailure(t *testing.T) {
	tr := &fakeTranscriber{text: "something"}
	ex := &fakeExtractor{err: errors.New("model unavailable")}
	h := newTestHandler(newFakeStore(), tr, ex)

	e := echo.New()
	req, rec := transcribeRequest(t, "")
	c := e.NewContext(req, rec)

	err := h.Transcribe(c)
	if err == nil {
		t.Fatal("expected error when extraction fails")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", httpErr.Code)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h := newTestHandler(newFakeStore(), &fakeTranscriber{}, &fakeExtractor{})
	e := echo.New()
	h.RegisterRoutes(e.Group("/api"))

	routePaths := make(map[string]bool)
	for _, r := range e.Routes() {
		routePaths[r.Method+" "+r.Path] = true
	}
	expected := []string{
		"POST /api/quotes",
		"GET /api/quotes/:id",
		"POST /api/quotes/:id/items",
		"POST /api/quotes/:id/reset",
		"POST /api/quotes/:id/mode",
		"POST /api/transcribe",
	}
	for _, want := range expected {
		if !routePaths[want] {
			t.Errorf("expected route %s to be registered", want)
		}
	}
}
