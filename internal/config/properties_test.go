package config

import (
	"fmt"
	"sync"
	"testing"
)

func TestPropertiesSetGet(t *testing.T) {
	var p Properties

	if _, ok := p.Get("web.port"); ok {
		t.Fatal("zero value store should be empty")
	}

	p.Set("web.port", "8082")
	p.Set("web.address", "0.0.0.0")
	p.Set("web.port", "9000")

	if v, ok := p.Get("web.port"); !ok || v != "9000" {
		t.Fatalf("Get(web.port) = %q, %v", v, ok)
	}
	if got := p.Keys(); len(got) != 2 || got[0] != "web.port" || got[1] != "web.address" {
		t.Fatalf("Keys = %v, want insertion order", got)
	}

	p.Set("empty", "")
	if !p.Has("empty") {
		t.Fatal("empty value must still be present")
	}
}

func TestPropertiesMergeOverrides(t *testing.T) {
	base := NewProperties()
	base.Set("a", "default-a")
	base.Set("b", "default-b")

	top := NewProperties()
	top.Set("b", "main-b")
	top.Set("c", "main-c")

	base.merge(top)

	want := map[string]string{"a": "default-a", "b": "main-b", "c": "main-c"}
	for k, w := range want {
		if v, _ := base.Get(k); v != w {
			t.Errorf("%s = %q, want %q", k, v, w)
		}
	}
	if base.Len() != 3 {
		t.Fatalf("Len = %d, want 3", base.Len())
	}
}

func TestPropertiesConcurrentReadWrite(t *testing.T) {
	p := NewProperties()
	p.Set("k", "0")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if _, ok := p.Get("k"); !ok {
					t.Error("k vanished during concurrent Set")
					return
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		p.Set("k", fmt.Sprint(i))
		p.Set(fmt.Sprintf("extra.%d", i), "x")
	}
	wg.Wait()

	if p.Len() != 51 {
		t.Fatalf("Len = %d, want 51", p.Len())
	}
}
