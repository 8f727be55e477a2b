package moduledb

import (
	"path/filepath"
	"strings"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "modules.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertAndLoadAPIs(t *testing.T) {
	s := openStore(t)
	apis := []API{
		{Umbrella: "onecore", Name: "CreateThing", Binary: "kernel32.dll", SDKVersion: "10.0.10240"},
		{Umbrella: "onecore", Name: "OpenThing", Binary: "api-ms-win-core-thing-l1-1-0.dll", APISets: []string{"api-ms-win-core-thing-l1-1-0", "ext-ms-win-thing"}, SDKVersion: "10.0.10240", RemovedIn: "10.0.17763", MovedTo: "kernelbase.dll"},
		{Umbrella: "windowsapp", Name: "CreateThing", Binary: "kernel32.dll", Suppress: true},
	}
	if err := s.UpsertAPIs(apis); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	apis[0].SDKVersion = "10.0.14393"
	if err := s.UpsertAPIs(apis[:1]); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	umbrellas, err := s.Umbrellas()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(umbrellas, ",") != "onecore,windowsapp" {
		t.Fatalf("unexpected umbrellas %v", umbrellas)
	}

	got, err := s.APIs("onecore")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 apis, got %+v", got)
	}
	if got[0].Binary != "api-ms-win-core-thing-l1-1-0.dll" || len(got[0].APISets) != 2 || got[0].MovedTo != "kernelbase.dll" {
		t.Fatalf("unexpected first api %+v", got[0])
	}
	if got[1].SDKVersion != "10.0.14393" {
		t.Fatalf("expected upserted sdk version, got %+v", got[1])
	}

	suppressed, err := s.APIs("windowsapp")
	if err != nil {
		t.Fatal(err)
	}
	if len(suppressed) != 1 || !suppressed[0].Suppress {
		t.Fatalf("expected suppressed record, got %+v", suppressed)
	}
}

func TestProjectOwners(t *testing.T) {
	s := openStore(t)
	if err := s.SetProjectOwners(map[string]string{"w_foo": "alice", "w_bar": "bob"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetProjectOwners(map[string]string{"w_foo": "carol"}); err != nil {
		t.Fatal(err)
	}
	owners, err := s.ProjectOwners()
	if err != nil {
		t.Fatal(err)
	}
	if len(owners) != 1 || owners["w_foo"] != "carol" {
		t.Fatalf("unexpected owners %v", owners)
	}
}

func TestParseTSV(t *testing.T) {
	input := strings.Join([]string{
		"# umbrella\tname\tbinary",
		"onecore\tCreateThing\tkernel32.dll\t\t10.0.10240",
		"",
		"onecore\tOpenThing\tapi-ms-win-core-thing-l1-1-0.dll\tapi-ms-win-core-thing-l1-1-0; ext-ms-win-thing\t10.0.10240\t10.0.17763\tkernelbase.dll\ttrue",
	}, "\n")
	got, err := ParseTSV(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].APISets != nil || got[0].SDKVersion != "10.0.10240" {
		t.Fatalf("unexpected first record %+v", got[0])
	}
	if len(got[1].APISets) != 2 || got[1].APISets[1] != "ext-ms-win-thing" || !got[1].Suppress {
		t.Fatalf("unexpected second record %+v", got[1])
	}

	if _, err := ParseTSV(strings.NewReader("onecore\tonly-two")); err == nil {
		t.Fatal("expected error for short line")
	}
}
