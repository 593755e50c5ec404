//go:build windows

package autostart

import (
	"testing"

	"golang.org/x/sys/windows/registry"
)

func TestRegistryStore(t *testing.T) {
	keyPath := `SOFTWARE\iCloudMonkeyTest\Run`
	t.Cleanup(func() {
		_ = registry.DeleteKey(registry.CURRENT_USER, keyPath)
		_ = registry.DeleteKey(registry.CURRENT_USER, `SOFTWARE\iCloudMonkeyTest`)
	})

	store := &RegistryStore{root: registry.CURRENT_USER, keyPath: keyPath, valueName: "iCloudMonkey"}
	storeContract(t, store)

	if err := store.Enable(`C:\Apps\iCloudMonkey.exe`); err != nil {
		t.Fatal(err)
	}
	k, err := registry.OpenKey(registry.CURRENT_USER, keyPath, registry.QUERY_VALUE)
	if err != nil {
		t.Fatal(err)
	}
	defer k.Close()

	got, _, err := k.GetStringValue("iCloudMonkey")
	if err != nil {
		t.Fatal(err)
	}
	if got != `C:\Apps\iCloudMonkey.exe` {
		t.Errorf("value data = %q, want executable path", got)
	}
}

func TestNewRegistryStore(t *testing.T) {
	s := NewRegistryStore("iCloudMonkey")
	if s.keyPath != RunKeyPath || s.valueName != "iCloudMonkey" || s.root != registry.CURRENT_USER {
		t.Errorf("unexpected store: %+v", s)
	}
}
