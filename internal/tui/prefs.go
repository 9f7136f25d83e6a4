package tui

// PrefsKey is the state key the browser keeps its preferences under.
const PrefsKey = "secretshields.browserPrefs"

// Prefs holds browser settings that persist across sessions.
type Prefs struct {
	// ShowResolved lists rotated and dismissed exposures alongside the
	// exposed ones.
	ShowResolved bool `json:"showResolved"`
}

// DefaultPrefs shows exposed secrets only.
func DefaultPrefs() Prefs {
	return Prefs{}
}

// PrefsStore is the slice of a state backend the browser needs.
type PrefsStore interface {
	Get(key string, v any) (bool, error)
	Set(key string, v any) error
}

// LoadPrefs reads preferences from st. A nil store, a missing key or an
// undecodable value yields the defaults.
func LoadPrefs(st PrefsStore) Prefs {
	if st == nil {
		return DefaultPrefs()
	}
	var p Prefs
	if ok, err := st.Get(PrefsKey, &p); !ok || err != nil {
		return DefaultPrefs()
	}
	return p
}

// SavePrefs writes prefs to st. A nil store discards them.
func SavePrefs(st PrefsStore, prefs Prefs) error {
	if st == nil {
		return nil
	}
	return st.Set(PrefsKey, prefs)
}
