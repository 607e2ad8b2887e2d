package nosqldb

import "testing"

func TestParseEndpoint_HostOnlyAssumesHTTPS443(t *testing.T) {
	got, err := ParseEndpoint("nosql.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://nosql.example.com:443" {
		t.Fatalf("got %q", got)
	}
}

func TestParseEndpoint_SchemeOnlyAssumesDefaultPort(t *testing.T) {
	https, err := ParseEndpoint("https://")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if https != "https://localhost:443" {
		t.Fatalf("got %q", https)
	}

	http_, err := ParseEndpoint("http://")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if http_ != "http://localhost:8080" {
		t.Fatalf("got %q", http_)
	}
}

func TestParseEndpoint_PathIsRejected(t *testing.T) {
	_, err := ParseEndpoint("https://nosql.example.com/v1/nosql")
	if !IsKind(err, KindArgument) {
		t.Fatalf("expected an argument error, got %v", err)
	}
}

func TestParseEndpoint_EmptyIsRejected(t *testing.T) {
	_, err := ParseEndpoint("")
	if !IsKind(err, KindArgument) {
		t.Fatalf("expected an argument error, got %v", err)
	}
}

func TestLookupRegion_CaseAndSeparatorInsensitive(t *testing.T) {
	if _, ok := LookupRegion("US_PHOENIX_1", nil); !ok {
		t.Fatal("expected a case/separator-insensitive lookup to match us-phoenix-1")
	}
}

func TestLookupRegion_OverrideTakesPrecedence(t *testing.T) {
	overrides := map[string]Region{"us-phoenix-1": {ID: "us-phoenix-1", SecondLevelDomain: "overridden.example"}}
	r, ok := LookupRegion("us-phoenix-1", overrides)
	if !ok || r.SecondLevelDomain != "overridden.example" {
		t.Fatalf("expected override to win, got %+v", r)
	}
}
