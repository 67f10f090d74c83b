package command

import (
	"testing"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	cmd := NewVersionCommand("1.0.0")
	registry.Register(cmd)

	got, err := registry.Get("version")
	if err != nil {
		t.Fatalf("Get(version): %v", err)
	}
	if got.Name() != "version" {
		t.Errorf("Name() = %q, want version", got.Name())
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Get("nope"); err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestRegistryListSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register(NewVersionCommand("1.0.0"))
	registry.Register(NewHelpCommand(registry))
	registry.Register(NewLogoutCommand())

	got := registry.List()
	want := []string{"help", "logout", "version"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
