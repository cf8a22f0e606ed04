package orchestrators

import (
	"context"
	"errors"
	"testing"

	"github.com/ochairo/moddefs/internal/domain/entities"
	"github.com/ochairo/moddefs/internal/domain/services"
)

// Mock implementations for testing
type mockPackageLists struct {
	sets *entities.PackageSets
	err  error
}

func (m *mockPackageLists) LoadSets(_ context.Context) (*entities.PackageSets, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sets, nil
}

type mockRationales struct {
	byModule map[entities.ModuleName]map[string]string
	err      error
}

func (m *mockRationales) LoadRationales(_ context.Context, module entities.ModuleName) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if r, ok := m.byModule[module]; ok {
		return r, nil
	}
	return map[string]string{}, nil
}

type mockResolver struct {
	refs  map[string]string
	err   error
	calls []entities.PackageSet
}

func (m *mockResolver) Resolve(_ context.Context, identifiers entities.PackageSet) (map[string]string, error) {
	m.calls = append(m.calls, identifiers)
	if m.err != nil {
		return nil, m.err
	}
	return m.refs, nil
}

type emission struct {
	module     entities.ModuleName
	variant    string
	components entities.ComponentTable
}

type mockEmitter struct {
	emissions []emission
	failOn    entities.ModuleName
}

func (m *mockEmitter) Emit(_ context.Context, module entities.ModuleName, variant string, components entities.ComponentTable) error {
	if module == m.failOn {
		return errors.New("render failed")
	}
	// Copy the table: later patches must not rewrite recorded emissions.
	copied := make(entities.ComponentTable, len(components))
	for name, comp := range components {
		copied[name] = comp
	}
	m.emissions = append(m.emissions, emission{module: module, variant: variant, components: copied})
	return nil
}

func newOrchestrator(lists *mockPackageLists, rationales *mockRationales, resolver *mockResolver, emitter *mockEmitter) *GenerateOrchestrator {
	return NewGenerateOrchestrator(lists, rationales, resolver, services.NewClassifier(), emitter, nil)
}

func TestRunCombinedEmitsHostShimPlatform(t *testing.T) {
	lists := &mockPackageLists{sets: &entities.PackageSets{
		SelfHosting: entities.NewPackageSet("gcc-7.2.1-1.fc27"),
		Runtime: entities.NewPackageSet(
			"foo-1.0-1.fc27",
			"shim-13-1.fc27",
			"bash-4.4-1.fc27",
			"fedora-release-27-1",
		),
	}}
	rationales := &mockRationales{byModule: map[entities.ModuleName]map[string]string{
		entities.ModuleHost: {"foo": "Needed for x."},
		entities.ModuleShim: {"shim": "Boot chain."},
	}}
	resolver := &mockResolver{refs: map[string]string{"bash-4.4-1.fc27": "f27"}}
	emitter := &mockEmitter{}

	err := newOrchestrator(lists, rationales, resolver, emitter).Run(context.Background(), entities.ModeCombined)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Emission order: host, shim, platform, platform.f27.
	wantOrder := []struct {
		module  entities.ModuleName
		variant string
	}{
		{entities.ModuleHost, ""},
		{entities.ModuleShim, ""},
		{entities.ModulePlatform, ""},
		{entities.ModulePlatform, "f27"},
	}
	if len(emitter.emissions) != len(wantOrder) {
		t.Fatalf("got %d emissions, want %d", len(emitter.emissions), len(wantOrder))
	}
	for i, want := range wantOrder {
		got := emitter.emissions[i]
		if got.module != want.module || got.variant != want.variant {
			t.Errorf("emission %d = %s/%q, want %s/%q", i, got.module, got.variant, want.module, want.variant)
		}
	}

	host := emitter.emissions[0].components
	if _, ok := host["foo"]; !ok {
		t.Error("foo missing from host emission")
	}

	platform := emitter.emissions[2].components
	if _, ok := platform["foo"]; ok {
		t.Error("host-claimed foo leaked into platform")
	}
	if _, ok := platform["shim"]; ok {
		t.Error("shim-claimed shim leaked into platform")
	}
	if platform["bash"].Reference != "f27" {
		t.Errorf("bash reference = %q, want resolved f27", platform["bash"].Reference)
	}
	if _, ok := platform[services.ModularReleaseName]; !ok {
		t.Error("release placeholder missing from platform")
	}

	// Only the runtime set is resolved in combined mode.
	if len(resolver.calls) != 1 {
		t.Fatalf("resolver called %d times, want 1", len(resolver.calls))
	}
	if _, ok := resolver.calls[0]["gcc-7.2.1-1.fc27"]; ok {
		t.Error("self-hosting identifiers must not be resolved in combined mode")
	}
}

func TestRunCombinedPatchesPlaceholdersInAlternatePass(t *testing.T) {
	lists := &mockPackageLists{sets: &entities.PackageSets{
		SelfHosting: entities.NewPackageSet(),
		Runtime:     entities.NewPackageSet("fedora-release-27-1", "fedora-repos-27-1", "bash-4.4-1.fc27"),
	}}
	emitter := &mockEmitter{}

	err := newOrchestrator(lists, &mockRationales{}, &mockResolver{refs: map[string]string{}}, emitter).
		Run(context.Background(), entities.ModeCombined)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var standard, alternate entities.ComponentTable
	for _, e := range emitter.emissions {
		if e.module != entities.ModulePlatform {
			continue
		}
		if e.variant == "" {
			standard = e.components
		} else {
			alternate = e.components
		}
	}
	if standard == nil || alternate == nil {
		t.Fatal("platform must be emitted twice")
	}

	for _, name := range []string{services.ModularReleaseName, services.ModularReposName} {
		if standard[name].Reference != services.DefaultReference {
			t.Errorf("standard %s ref = %q, want default", name, standard[name].Reference)
		}
		if alternate[name].Reference != "f27" {
			t.Errorf("alternate %s ref = %q, want f27", name, alternate[name].Reference)
		}
	}
	// The patch is one field on two components; everything else is identical.
	if alternate["bash"].Reference != standard["bash"].Reference {
		t.Error("alternate pass must not touch non-placeholder components")
	}
	if _, ok := alternate[services.TraditionalReposName]; !ok {
		t.Error("traditional repos entry missing from alternate pass")
	}
}

func TestRunBootstrapMode(t *testing.T) {
	lists := &mockPackageLists{sets: &entities.PackageSets{
		SelfHosting: entities.NewPackageSet("gcc-7.2.1-1.fc27", "shim-signed-13-1.fc27"),
		Runtime:     entities.NewPackageSet("bash-4.4-1.fc27"),
	}}
	resolver := &mockResolver{refs: map[string]string{}}
	emitter := &mockEmitter{}

	err := newOrchestrator(lists, &mockRationales{}, resolver, emitter).
		Run(context.Background(), entities.ModeBootstrap)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(emitter.emissions) != 1 {
		t.Fatalf("got %d emissions, want 1", len(emitter.emissions))
	}
	e := emitter.emissions[0]
	if e.module != entities.ModuleBootstrap || e.variant != "" {
		t.Errorf("emission = %s/%q", e.module, e.variant)
	}
	if _, ok := e.components["gcc"]; !ok {
		t.Error("gcc missing from bootstrap emission")
	}
	if _, ok := e.components["shim-signed"]; ok {
		t.Error("shim-signed must be excluded from bootstrap")
	}

	// Bootstrap resolves the self-hosting set.
	if len(resolver.calls) != 1 {
		t.Fatalf("resolver called %d times, want 1", len(resolver.calls))
	}
	if _, ok := resolver.calls[0]["gcc-7.2.1-1.fc27"]; !ok {
		t.Error("self-hosting identifiers must be resolved in bootstrap mode")
	}
}

func TestRunAtomicMode(t *testing.T) {
	lists := &mockPackageLists{sets: &entities.PackageSets{
		SelfHosting: entities.NewPackageSet("gcc-7.2.1-1.fc27"),
		Runtime:     entities.NewPackageSet("bash-4.4-1.fc27", "fedora-release-27-1"),
	}}
	emitter := &mockEmitter{}

	err := newOrchestrator(lists, &mockRationales{}, &mockResolver{refs: map[string]string{}}, emitter).
		Run(context.Background(), entities.ModeAtomic)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(emitter.emissions) != 2 {
		t.Fatalf("got %d emissions, want 2", len(emitter.emissions))
	}
	if emitter.emissions[0].module != entities.ModuleAtomic || emitter.emissions[0].variant != "" {
		t.Errorf("first emission = %s/%q", emitter.emissions[0].module, emitter.emissions[0].variant)
	}
	if emitter.emissions[1].variant != "f27" {
		t.Errorf("second emission variant = %q, want f27", emitter.emissions[1].variant)
	}
	if _, ok := emitter.emissions[0].components[services.ModularReleaseName]; !ok {
		t.Error("release placeholder missing from atomic emission")
	}
}

func TestRunEmissionFailureIsFatal(t *testing.T) {
	lists := &mockPackageLists{sets: &entities.PackageSets{
		SelfHosting: entities.NewPackageSet(),
		Runtime:     entities.NewPackageSet("bash-4.4-1.fc27"),
	}}
	emitter := &mockEmitter{failOn: entities.ModuleShim}

	err := newOrchestrator(lists, &mockRationales{}, &mockResolver{refs: map[string]string{}}, emitter).
		Run(context.Background(), entities.ModeCombined)
	if err == nil {
		t.Fatal("Run must fail when a descriptor cannot be rendered")
	}

	// Host was emitted before the failure; platform never was.
	for _, e := range emitter.emissions {
		if e.module == entities.ModulePlatform {
			t.Error("platform emitted after a fatal shim failure")
		}
	}
}

func TestRunFailsWhenListsFail(t *testing.T) {
	lists := &mockPackageLists{err: errors.New("no such directory")}
	err := newOrchestrator(lists, &mockRationales{}, &mockResolver{}, &mockEmitter{}).
		Run(context.Background(), entities.ModeCombined)
	if err == nil {
		t.Fatal("Run must fail when package lists cannot be loaded")
	}
}
