package tui

import (
	"path/filepath"
	"testing"

	"github.com/secretshields/secretshields/internal/state"
)

func TestLoadPrefs_Defaults(t *testing.T) {
	if LoadPrefs(nil).ShowResolved {
		t.Error("nil store should give defaults")
	}
	if LoadPrefs(state.NewMemory()).ShowResolved {
		t.Error("empty store should give defaults")
	}
	if err := SavePrefs(nil, Prefs{ShowResolved: true}); err != nil {
		t.Errorf("SavePrefs(nil) error: %v", err)
	}
}

func TestSaveAndLoadPrefs_FileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st, err := state.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := SavePrefs(st, Prefs{ShowResolved: true}); err != nil {
		t.Fatalf("SavePrefs() error: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := state.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if !LoadPrefs(reopened).ShowResolved {
		t.Error("LoadPrefs() should return ShowResolved=true after save")
	}
}

func TestLoadPrefs_UndecodableValue(t *testing.T) {
	st := state.NewMemory()
	if err := st.Set(PrefsKey, "not an object"); err != nil {
		t.Fatal(err)
	}
	if LoadPrefs(st).ShowResolved {
		t.Error("undecodable prefs should fall back to defaults")
	}
}
