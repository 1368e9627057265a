package codec

import (
	"testing"
)

type sample struct {
	Name  string
	Count int
}

func TestCodecs(t *testing.T) {
	for _, c := range []Codec{JSON{}, MsgPack{}} {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := c.Marshal(sample{Name: "hello", Count: 3})
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got sample
			if err := c.Unmarshal(b, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Name != "hello" || got.Count != 3 {
				t.Fatalf("unexpected %+v", got)
			}
			if err := c.Unmarshal([]byte{0xc1}, &got); err == nil {
				t.Fatalf("expected error for garbage input")
			}
		})
	}
}

func TestJSON_WireFormat(t *testing.T) {
	b, err := JSON{}.Marshal("world")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"world"` {
		t.Fatalf("unexpected encoding %s", b)
	}
	if _, err := (JSON{}).Marshal(make(chan int)); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestByName(t *testing.T) {
	for name, want := range map[string]string{"": "json", "JSON": "json", "msgpack": "msgpack"} {
		c, err := ByName(name)
		if err != nil || c.Name() != want {
			t.Fatalf("ByName(%q) = %v, %v", name, c, err)
		}
	}
	if _, err := ByName("gob"); err == nil {
		t.Fatalf("expected error for unknown codec")
	}
}
