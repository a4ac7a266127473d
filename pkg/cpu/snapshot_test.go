package cpu

import (
	"path/filepath"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	c := NewCPU()
	c.A = 111
	c.D = 222
	c.PC = 333
	c.Cycles = 444
	c.RAM[0] = 256
	c.RAM[300] = 0xBEEF
	c.ROM[5] = 0xE308
	c.Halted = true

	data, err := c.SnapshotToBytes()
	if err != nil {
		t.Fatalf("SnapshotToBytes failed: %v", err)
	}

	restored := NewCPU()
	if err := restored.RestoreFromBytes(data); err != nil {
		t.Fatalf("RestoreFromBytes failed: %v", err)
	}

	if restored.A != 111 || restored.D != 222 || restored.PC != 333 {
		t.Errorf("registers = A:%d D:%d PC:%d; want 111/222/333", restored.A, restored.D, restored.PC)
	}
	if restored.Cycles != 444 {
		t.Errorf("Cycles = %d; want 444", restored.Cycles)
	}
	if !restored.Halted {
		t.Error("Halted flag lost")
	}
	if restored.RAM[0] != 256 || restored.RAM[300] != 0xBEEF {
		t.Error("RAM contents lost")
	}
	if restored.ROM[5] != 0xE308 {
		t.Error("ROM contents lost")
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machine.snap")

	c := NewCPU()
	c.RAM[256] = 15
	c.RAM[0] = 257
	if err := c.SnapshotToFile(path); err != nil {
		t.Fatalf("SnapshotToFile failed: %v", err)
	}

	restored := NewCPU()
	if err := restored.RestoreFromFile(path); err != nil {
		t.Fatalf("RestoreFromFile failed: %v", err)
	}
	if restored.TopOfStack() != 15 {
		t.Errorf("TopOfStack = %d; want 15", restored.TopOfStack())
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	c := NewCPU()
	if err := c.RestoreFromBytes([]byte("not a zip archive")); err == nil {
		t.Fatal("expected error restoring from garbage")
	}
}
