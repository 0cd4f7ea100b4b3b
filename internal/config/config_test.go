package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notnil/canfmt/format"
)

func TestApplyProfile(t *testing.T) {
	p, err := ParseProfile([]byte(`
timestamp: relative
layout: clock
microseconds: true
id_base: dec
dlc_base: oct
data_base: dec
wide_ids: true
brackets: "["
flags: true
ascii: false
substitute: "#"
channel: true
counter: false
separator: tabs
wraparound: 16
end_of_line: true
rx_prompt: "RX"
tx_prompt: "TX"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := format.DefaultConfig()
	if err := p.Apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.TimestampMode() != format.TimestampRelative || cfg.TimeLayout() != format.LayoutClock || !cfg.Microseconds() {
		t.Fatalf("time options not applied")
	}
	if cfg.IDBase() != format.Dec || cfg.DLCBase() != format.Oct || cfg.DataBase() != format.Dec {
		t.Fatalf("bases not applied")
	}
	if !cfg.WideIDs() || cfg.Brackets() != '[' || !cfg.Flags() || cfg.ASCII() || cfg.Substitute() != '#' {
		t.Fatalf("column options not applied")
	}
	if !cfg.Channel() || cfg.Counter() || cfg.Separator() != format.Tabs || cfg.Wraparound() != format.Wrap16 {
		t.Fatalf("layout options not applied")
	}
	if !cfg.EndOfLine() || cfg.RxPrompt() != "RX" || cfg.TxPrompt() != "TX" {
		t.Fatalf("line options not applied")
	}
	if cfg.LengthAsDLC() {
		t.Fatalf("unset field changed")
	}
}

func TestApplyEmptyProfileKeepsConfig(t *testing.T) {
	p, err := ParseProfile(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := format.DefaultConfig()
	if err := p.Apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg != format.DefaultConfig() {
		t.Fatalf("empty profile changed the configuration")
	}
}

func TestApplyRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		yaml  string
		field string
	}{
		{"timestamp: later", "timestamp"},
		{"layout: iso", "layout"},
		{"data_base: bin", "data_base"},
		{"brackets: \"{\"", "brackets"},
		{"substitute: \"ab\"", "substitute"},
		{"substitute: \"\\t\"", "substitute"},
		{"separator: commas", "separator"},
		{"wraparound: 12", "wraparound"},
		{"rx_prompt: \"toolong\"", "rx_prompt"},
		{"tx_prompt: \"\\x01\"", "tx_prompt"},
	}
	for _, tt := range tests {
		p, err := ParseProfile([]byte(tt.yaml))
		if err != nil {
			t.Fatalf("parse %q: %v", tt.yaml, err)
		}
		cfg := format.DefaultConfig()
		err = p.Apply(&cfg)
		if err == nil {
			t.Fatalf("%q: expected error", tt.yaml)
		}
		if !strings.HasPrefix(err.Error(), tt.field+":") {
			t.Fatalf("%q: error %q does not name %s", tt.yaml, err, tt.field)
		}
	}
}

func TestParseProfileRejectsUnknownKeys(t *testing.T) {
	if _, err := ParseProfile([]byte("colour: red\n")); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestProfileRoundTrip(t *testing.T) {
	cfg := format.DefaultConfig()
	cfg.SetTimeLayout(format.LayoutJulian)
	cfg.SetBrackets('(')
	cfg.SetSeparator(format.Tabs)
	cfg.SetWraparound(format.Wrap32)
	cfg.SetTxPrompt(">")

	data, err := FromConfig(&cfg).Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		t.Fatalf("parse %s: %v", data, err)
	}
	got := format.DefaultConfig()
	got.SetCounter(false)
	got.SetSubstitute('?')
	if err := p.Apply(&got); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip mismatch:\n%s", data)
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	defaults := format.DefaultConfig()
	if err := WriteProfile(path, &defaults); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := format.DefaultConfig()
	cfg.SetFlags(true)
	if err := p.Apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg != format.DefaultConfig() {
		t.Fatalf("default profile did not restore defaults")
	}

	if _, err := LoadProfile(filepath.Join(dir, "missing.yaml")); err == nil || !strings.Contains(err.Error(), "profile not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("timestamp: [1"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfile(bad); err == nil || !strings.Contains(err.Error(), bad) {
		t.Fatalf("expected config error naming the file, got %v", err)
	}
}
