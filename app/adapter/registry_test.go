package adapter

import (
	"reflect"
	"testing"

	"github.com/vibast-solutions/ms-go-bounces/app/engine"
)

func TestDefaultOrder(t *testing.T) {
	got := Default().Names()
	want := []string{"sendgrid", "aol", "messagelabs", "mailru", "exim", "rfc3464"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestRegistryFirstWin(t *testing.T) {
	reg := Default()

	res, ok := reg.Inquire(eximHeaders("Mail delivery failed"), eximBody)
	if !ok || res.Adapter != "exim" {
		t.Fatalf("expected exim to win, got %+v", res)
	}

	if _, ok := reg.Inquire(headers("Subject", "hello"), "just a letter\n"); ok {
		t.Fatalf("expected plain mail to be unrecognized")
	}
}

func TestRegistryFallsThroughEmptyAdapters(t *testing.T) {
	silent := &engine.Adapter{
		Name:      "silent",
		Extractor: engine.Extractor{Start: []engine.Marker{engine.Equal("never")}},
	}
	reg := Default().With(silent)

	if names := reg.Names(); names[0] != "silent" || names[len(names)-1] != "rfc3464" {
		t.Fatalf("unexpected order: %v", names)
	}

	h := headers("Content-Type", "multipart/report; report-type=delivery-status")
	body := "Content-Type: message/delivery-status\n\nFinal-Recipient: rfc822; a@example.jp\nStatus: 5.1.1\n"
	res, ok := reg.Inquire(h, body)
	if !ok || res.Adapter != "rfc3464" {
		t.Fatalf("expected rfc3464 after silent adapter, got %+v", res)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := Default()
	if a, ok := reg.Lookup("aol"); !ok || a.Name != "aol" {
		t.Fatalf("expected aol adapter")
	}
	if _, ok := reg.Lookup("nope"); ok {
		t.Fatalf("expected missing adapter")
	}
}
