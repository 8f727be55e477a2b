package win32

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// APIRecord is one row of the authoritative module database.
type APIRecord struct {
	Name       string
	Binary     string
	APISets    []string
	SDKVersion string
	RemovedIn  string
	MovedTo    string
	Suppress   bool
}

var entryPoints = map[string]bool{
	"DllMain":                 true,
	"DllCanUnloadNow":         true,
	"DllGetClassObject":       true,
	"DllGetActivationFactory": true,
	"DllRegisterServer":       true,
	"DllUnregisterServer":     true,
	"DllInstall":              true,
	"WinMain":                 true,
	"wWinMain":                true,
	"main":                    true,
	"wmain":                   true,
}

// IsEntryPoint reports whether name is a loader or process entry point
// rather than a documented API.
func IsEntryPoint(name string) bool {
	return entryPoints[name]
}

// GroupedFunction is a documented function placed in a module.
type GroupedFunction struct {
	Module       string
	Name         string
	IntroducedIn string
	RemovedIn    string
	MovedTo      string
	FunctionID   string
	Suppress     bool
}

func (g *GroupedFunction) removal() string {
	if g.RemovedIn == "" {
		return ""
	}
	if g.MovedTo != "" {
		return ". Moved to " + g.MovedTo + " in Windows " + g.RemovedIn
	}
	return ". Removed in Windows " + g.RemovedIn
}

// RequirementsByModule renders the requirements sentence used in a
// per-module listing.
func (g *GroupedFunction) RequirementsByModule() string {
	return "Introduced in Windows " + g.IntroducedIn + g.removal()
}

// RequirementsByInitialChar renders the requirements sentence used in the
// cross-module alphabetical listing.
func (g *GroupedFunction) RequirementsByInitialChar() string {
	return "Introduced into " + g.Module + " in Windows " + g.IntroducedIn + g.removal()
}

// Module is a binary or an API set.
type Module struct {
	Name     string
	IsAPISet bool

	apis []*GroupedFunction
}

func (m *Module) APIs() []*GroupedFunction {
	return append([]*GroupedFunction(nil), m.apis...)
}

func (m *Module) Find(name string) *GroupedFunction {
	for _, a := range m.apis {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// UmbrellaLib is the set of modules behind one umbrella library.
type UmbrellaLib struct {
	Name    string
	Modules []*Module

	byName   map[string]*Module
	injected []*GroupedFunction
}

func NewUmbrellaLib(name string) *UmbrellaLib {
	return &UmbrellaLib{Name: name, byName: make(map[string]*Module)}
}

// AddAPI places rec in the module named by its binary. A module is an API
// set when the record lists any API set. A name already in the module is not
// added again.
func (u *UmbrellaLib) AddAPI(rec APIRecord, functionID string) {
	mod, ok := u.byName[rec.Binary]
	if !ok {
		mod = &Module{Name: rec.Binary, IsAPISet: len(rec.APISets) > 0}
		u.Modules = append(u.Modules, mod)
		u.byName[rec.Binary] = mod
	}
	if mod.Find(rec.Name) != nil {
		return
	}
	mod.apis = append(mod.apis, &GroupedFunction{
		Module:       mod.Name,
		Name:         rec.Name,
		IntroducedIn: rec.SDKVersion,
		RemovedIn:    rec.RemovedIn,
		MovedTo:      rec.MovedTo,
		FunctionID:   functionID,
		Suppress:     rec.Suppress,
	})
}

// AddInjected adds an interface or COM class record that appears only in
// the initial-character view.
func (u *UmbrellaLib) AddInjected(name, module string) {
	u.injected = append(u.injected, &GroupedFunction{Module: module, Name: name})
}

func (u *UmbrellaLib) Module(name string) *Module { return u.byName[name] }

// ModuleForAPI returns the first module containing name, or nil.
func (u *UmbrellaLib) ModuleForAPI(name string) *Module {
	for _, m := range u.Modules {
		if m.Find(name) != nil {
			return m
		}
	}
	return nil
}

// Group fills u from records. Entry points are skipped; names the function
// model does not document are passed to onUndocumented and skipped.
func (u *UmbrellaLib) Group(records []APIRecord, documented *Model, onUndocumented func(APIRecord)) {
	for _, rec := range records {
		if IsEntryPoint(rec.Name) {
			continue
		}
		fn, ok := documented.Function(rec.Name)
		if !ok {
			if onUndocumented != nil {
				onUndocumented(rec)
			}
			continue
		}
		u.AddAPI(rec, fn.ID)
	}
}

// InitialCharGroup buckets functions by the first character of their name:
// the upper-cased letter, or "_" for anything else.
type InitialCharGroup struct {
	Key  string
	APIs []*GroupedFunction
}

// InitialCharGroups derives the alphabetical view across all modules plus
// injected records. Suppressed functions are left out. It is rebuilt on each
// call.
func (u *UmbrellaLib) InitialCharGroups() []InitialCharGroup {
	byKey := make(map[string]*InitialCharGroup)
	var keys []string
	add := func(g *GroupedFunction) {
		key := InitialCharKey(g.Name)
		if key == "" {
			return
		}
		grp, ok := byKey[key]
		if !ok {
			grp = &InitialCharGroup{Key: key}
			byKey[key] = grp
			keys = append(keys, key)
		}
		grp.APIs = append(grp.APIs, g)
	}
	for _, m := range u.Modules {
		for _, g := range m.apis {
			if !g.Suppress {
				add(g)
			}
		}
	}
	for _, g := range u.injected {
		add(g)
	}

	sort.Strings(keys)
	out := make([]InitialCharGroup, 0, len(keys))
	for _, k := range keys {
		grp := byKey[k]
		sort.SliceStable(grp.APIs, func(i, j int) bool { return grp.APIs[i].Name < grp.APIs[j].Name })
		out = append(out, *grp)
	}
	return out
}

// InitialCharKey returns the bucket key for name, or "" for an empty name.
func InitialCharKey(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return ""
	}
	if unicode.IsLetter(r) {
		return string(unicode.ToUpper(r))
	}
	return "_"
}
