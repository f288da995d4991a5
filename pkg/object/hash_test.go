package object

import "testing"

func TestHashObjectDeterminism(t *testing.T) {
	data := []byte("hello world")
	h1 := HashObject(TypeBlob, data)
	h2 := HashObject(TypeBlob, data)
	if h1 != h2 {
		t.Errorf("HashObject not deterministic: %q != %q", h1, h2)
	}
	if len(h1) != 40 {
		t.Errorf("Hash length: got %d, want 40", len(h1))
	}
}

func TestHashObjectKnownValue(t *testing.T) {
	h := HashObject(TypeBlob, []byte("Hello, World!"))
	if h != "b45ef6fec89518d314f546fd6c3025367b721684" {
		t.Errorf("HashObject: got %q, want b45ef6fec89518d314f546fd6c3025367b721684", h)
	}
}

func TestHashObjectEnvelope(t *testing.T) {
	data := []byte("hello")
	// Same type+data => same hash; different type => different hash.
	if HashObject(TypeBlob, data) != HashObject(TypeBlob, data) {
		t.Error("HashObject not deterministic")
	}
	if HashObject(TypeBlob, data) == HashObject(TypeTree, data) {
		t.Error("different types should produce different hashes")
	}
}

func TestHashRawRoundTrip(t *testing.T) {
	h := HashObject(TypeBlob, []byte("round trip"))
	raw, err := h.Raw()
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if FromRaw(raw) != h {
		t.Errorf("FromRaw(Raw): got %q, want %q", FromRaw(raw), h)
	}
}

func TestParseHash(t *testing.T) {
	if _, err := ParseHash("b45ef6fec89518d314f546fd6c3025367b721684"); err != nil {
		t.Errorf("ParseHash valid: %v", err)
	}
	if _, err := ParseHash("b45ef6"); err == nil {
		t.Error("ParseHash accepted a short hash")
	}
	if _, err := ParseHash("zz5ef6fec89518d314f546fd6c3025367b721684"); err == nil {
		t.Error("ParseHash accepted non-hex characters")
	}
}

func TestParseType(t *testing.T) {
	for _, token := range []string{"blob", "tree", "commit", "tag"} {
		if _, err := ParseType(token); err != nil {
			t.Errorf("ParseType(%q): %v", token, err)
		}
	}
	if _, err := ParseType("unknown"); err == nil {
		t.Error("ParseType accepted an unknown token")
	}
}
