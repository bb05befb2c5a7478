package osmem

import "testing"

func TestProgramBreakExtend(t *testing.T) {
	b, err := NewProgramBreak(1 << 20)
	if err != nil {
		t.Fatalf("NewProgramBreak: %v", err)
	}

	base := b.Base()
	if base == 0 {
		t.Fatal("Base should be nonzero after reservation")
	}

	if b.Committed() != 0 {
		t.Fatal("a fresh reservation should have nothing committed")
	}

	top, err := b.Extend(4096)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}

	if top != base {
		t.Errorf("first Extend should return the base address, got %#x want %#x", top, base)
	}

	if b.Committed() != 4096 {
		t.Errorf("Committed should be 4096 after extending by 4096, got %d", b.Committed())
	}

	top2, err := b.Extend(4096)
	if err != nil {
		t.Fatalf("second Extend: %v", err)
	}

	if top2 != base+4096 {
		t.Errorf("second Extend should return base+4096, got %#x want %#x", top2, base+4096)
	}
}

func TestProgramBreakBaseStableAcrossExtend(t *testing.T) {
	b, err := NewProgramBreak(1 << 20)
	if err != nil {
		t.Fatalf("NewProgramBreak: %v", err)
	}

	base := b.Base()

	for i := 0; i < 8; i++ {
		if _, err := b.Extend(4096); err != nil {
			t.Fatalf("Extend #%d: %v", i, err)
		}

		if b.Base() != base {
			t.Fatalf("Base moved after Extend #%d: got %#x want %#x", i, b.Base(), base)
		}
	}
}

func TestProgramBreakExhausted(t *testing.T) {
	b, err := NewProgramBreak(4096)
	if err != nil {
		t.Fatalf("NewProgramBreak: %v", err)
	}

	if _, err := b.Extend(1 << 20); err == nil {
		t.Error("Extend beyond the reservation should fail")
	}
}

func TestMapAndUnmapAnonymous(t *testing.T) {
	addr, err := MapAnonymous(8192)
	if err != nil {
		t.Fatalf("MapAnonymous: %v", err)
	}

	if addr == 0 {
		t.Fatal("MapAnonymous returned a zero address")
	}

	if err := Unmap(addr, 8192); err != nil {
		t.Errorf("Unmap: %v", err)
	}
}

func TestMapAnonymousZeroSize(t *testing.T) {
	if _, err := MapAnonymous(0); err == nil {
		t.Error("MapAnonymous(0) should fail")
	}
}
