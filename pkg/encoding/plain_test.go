package encoding

import (
	"reflect"
	"testing"
)

func TestPlainInt32RoundTrip(t *testing.T) {
	values := []int32{25, 30, 25, 35, 30}
	decoded, err := DecodePlainInt32(EncodePlainInt32(nil, values), len(values))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded, values) {
		t.Errorf("got %v", decoded)
	}
}

func TestPlainInt64RoundTrip(t *testing.T) {
	values := []int64{1, 2, 3, 4, 5, -9}
	decoded, err := DecodePlainInt64(EncodePlainInt64(nil, values), len(values))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded, values) {
		t.Errorf("got %v", decoded)
	}
}

func TestPlainStringRoundTrip(t *testing.T) {
	values := []string{"Paris", "", "Lyon", "日本"}
	decoded, err := DecodePlainString(EncodePlainString(nil, values), len(values))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded, values) {
		t.Errorf("got %v", decoded)
	}
}

func TestPlainShortBufferRejected(t *testing.T) {
	encoded := EncodePlainInt32(nil, []int32{1, 2, 3})
	if _, err := DecodePlainInt32(encoded[:10], 3); err == nil {
		t.Fatal("expected error on short buffer")
	}
	if _, err := DecodePlainInt32(encoded, 2); err == nil {
		t.Fatal("expected error on trailing bytes")
	}
}
