package whatsapp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradel/internal/dispatch"
)

func TestClientSend(t *testing.T) {
	var gotTo, gotBody, gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if user, _, ok := r.BasicAuth(); !ok || user != "AC123" {
			t.Errorf("missing basic auth")
		}
		r.ParseForm()
		gotTo = r.PostFormValue("To")
		gotBody = r.PostFormValue("Body")
		gotFrom = r.PostFormValue("From")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	c := NewClient("AC123", "token", "whatsapp:+14155238886")
	c.SetBaseURL(srv.URL)

	if err := c.Send(context.Background(), "2348011112222", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotTo != "whatsapp:+2348011112222" {
		t.Fatalf("To = %q", gotTo)
	}
	if gotBody != "hello" {
		t.Fatalf("Body = %q", gotBody)
	}
	if gotFrom != "whatsapp:+14155238886" {
		t.Fatalf("From = %q", gotFrom)
	}
}

func TestClientSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":21211,"message":"invalid 'To' phone number"}`))
	}))
	defer srv.Close()

	c := NewClient("AC123", "token", "whatsapp:+14155238886")
	c.SetBaseURL(srv.URL)

	err := c.Send(context.Background(), "0000", "hello")
	if !errors.Is(err, dispatch.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestClientSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient("AC123", "token", "whatsapp:+14155238886")
	c.SetBaseURL(srv.URL)

	err := c.Send(context.Background(), "2348011112222", "hello")
	if err == nil || errors.Is(err, dispatch.ErrRejected) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestClientSendCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123"}`))
	}))
	defer srv.Close()

	c := NewClient("AC123", "token", "whatsapp:+14155238886")
	c.SetBaseURL(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Send(ctx, "2348011112222", "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
