package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")

	key := ObjectKey(id)
	want := "certificates/7d444840-9dc0-11d1-b245-5ffdce74fad2.pdf"
	if key != want {
		t.Fatalf("got %q, want %q", key, want)
	}
	if key != ObjectKey(id) {
		t.Fatal("key must be deterministic for the same attempt")
	}
}

func TestPublicBase(t *testing.T) {
	cases := []struct {
		endpoint string
		want     string
	}{
		{"oss-ap-southeast-1.aliyuncs.com", "https://certs.oss-ap-southeast-1.aliyuncs.com"},
		{"https://oss-ap-southeast-1.aliyuncs.com", "https://certs.oss-ap-southeast-1.aliyuncs.com"},
		{"http://oss-ap-southeast-1.aliyuncs.com", "https://certs.oss-ap-southeast-1.aliyuncs.com"},
	}
	for _, tc := range cases {
		got := PublicBase(Config{Endpoint: tc.endpoint, Bucket: "certs"})
		if got != tc.want {
			t.Errorf("PublicBase(%q) = %q, want %q", tc.endpoint, got, tc.want)
		}
	}
}

func TestConfigComplete(t *testing.T) {
	full := Config{Endpoint: "e", AccessKeyID: "k", AccessKeySecret: "s", Bucket: "b"}
	if !full.Complete() {
		t.Fatal("full config should be complete")
	}
	for _, partial := range []Config{
		{},
		{Endpoint: "e"},
		{Endpoint: "e", AccessKeyID: "k", AccessKeySecret: "s"},
	} {
		if partial.Complete() {
			t.Fatalf("partial config %+v should not be complete", partial)
		}
	}
}

type nopUploader struct{}

func (nopUploader) Upload(context.Context, uuid.UUID, []byte) (string, error) { return "", nil }

func TestMode(t *testing.T) {
	if (Mode{}).Enabled() {
		t.Fatal("zero Mode must be disabled")
	}
	if !(Mode{Uploader: nopUploader{}}).Enabled() {
		t.Fatal("Mode with an uploader must be enabled")
	}
}
