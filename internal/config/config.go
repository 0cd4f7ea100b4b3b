package config

// Formatting profiles stored as YAML

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/notnil/canfmt/format"
	"github.com/notnil/canfmt/internal/errors"
)

// Profile is the YAML form of a format.Config. Unset fields leave the
// corresponding option unchanged when applied.
type Profile struct {
	Timestamp    string  `yaml:"timestamp,omitempty"` // "zero", "absolute" or "relative"
	Layout       string  `yaml:"layout,omitempty"`    // "clock", "seconds" or "julian"
	Microseconds *bool   `yaml:"microseconds,omitempty"`
	IDBase       string  `yaml:"id_base,omitempty"` // "hex", "dec" or "oct"
	DLCBase      string  `yaml:"dlc_base,omitempty"`
	DataBase     string  `yaml:"data_base,omitempty"`
	WideIDs      *bool   `yaml:"wide_ids,omitempty"`
	LengthAsDLC  *bool   `yaml:"length_as_dlc,omitempty"`
	Brackets     *string `yaml:"brackets,omitempty"` // "none", "(" or "["
	Flags        *bool   `yaml:"flags,omitempty"`
	ASCII        *bool   `yaml:"ascii,omitempty"`
	Substitute   string  `yaml:"substitute,omitempty"` // one printable character
	Channel      *bool   `yaml:"channel,omitempty"`
	Counter      *bool   `yaml:"counter,omitempty"`
	Separator    string  `yaml:"separator,omitempty"`  // "spaces" or "tabs"
	Wraparound   *int    `yaml:"wraparound,omitempty"` // 0, 8, 16, 32 or 64
	EndOfLine    *bool   `yaml:"end_of_line,omitempty"`
	RxPrompt     *string `yaml:"rx_prompt,omitempty"`
	TxPrompt     *string `yaml:"tx_prompt,omitempty"`
}

// LoadProfile reads a profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapConfigError(
				fmt.Errorf("profile not found: %s", path),
				path,
			)
		}
		return nil, errors.WrapConfigError(
			fmt.Errorf("read profile: %w", err),
			path,
		)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return nil, errors.WrapConfigError(err, path)
	}
	return p, nil
}

// ParseProfile decodes YAML profile data. Unknown keys are rejected.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if stderrors.Is(err, io.EOF) {
			return &p, nil
		}
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &p, nil
}

// Apply feeds every set field through the format.Config setters. It stops at
// the first rejected value and names its field in the error; fields before it
// have already been applied.
func (p *Profile) Apply(cfg *format.Config) error {
	if p.Timestamp != "" {
		m, err := format.ParseTimestampMode(p.Timestamp)
		if err != nil {
			return fieldError("timestamp", err)
		}
		cfg.SetTimestampMode(m)
	}
	if p.Layout != "" {
		l, err := format.ParseTimeLayout(p.Layout)
		if err != nil {
			return fieldError("layout", err)
		}
		cfg.SetTimeLayout(l)
	}
	if p.Microseconds != nil {
		cfg.SetMicroseconds(*p.Microseconds)
	}
	for _, b := range []struct {
		field string
		value string
		set   func(format.Base) bool
	}{
		{"id_base", p.IDBase, cfg.SetIDBase},
		{"dlc_base", p.DLCBase, cfg.SetDLCBase},
		{"data_base", p.DataBase, cfg.SetDataBase},
	} {
		if b.value == "" {
			continue
		}
		base, err := format.ParseBase(b.value)
		if err != nil {
			return fieldError(b.field, err)
		}
		b.set(base)
	}
	if p.WideIDs != nil {
		cfg.SetWideIDs(*p.WideIDs)
	}
	if p.LengthAsDLC != nil {
		cfg.SetLengthAsDLC(*p.LengthAsDLC)
	}
	if p.Brackets != nil {
		open, err := format.ParseBrackets(*p.Brackets)
		if err != nil {
			return fieldError("brackets", err)
		}
		cfg.SetBrackets(open)
	}
	if p.Flags != nil {
		cfg.SetFlags(*p.Flags)
	}
	if p.ASCII != nil {
		cfg.SetASCII(*p.ASCII)
	}
	if p.Substitute != "" {
		if len(p.Substitute) != 1 || !cfg.SetSubstitute(p.Substitute[0]) {
			return fieldError("substitute", fmt.Errorf("want one printable ASCII character, got %q", p.Substitute))
		}
	}
	if p.Channel != nil {
		cfg.SetChannel(*p.Channel)
	}
	if p.Counter != nil {
		cfg.SetCounter(*p.Counter)
	}
	if p.Separator != "" {
		sep, err := ParseSeparator(p.Separator)
		if err != nil {
			return fieldError("separator", err)
		}
		cfg.SetSeparator(sep)
	}
	if p.Wraparound != nil {
		if !cfg.SetWraparound(format.Wraparound(*p.Wraparound)) {
			return fieldError("wraparound", fmt.Errorf("want 0, 8, 16, 32 or 64, got %d", *p.Wraparound))
		}
	}
	if p.EndOfLine != nil {
		cfg.SetEndOfLine(*p.EndOfLine)
	}
	if p.RxPrompt != nil && !cfg.SetRxPrompt(*p.RxPrompt) {
		return fieldError("rx_prompt", fmt.Errorf("want at most %d printable characters, got %q", format.MaxPromptLen, *p.RxPrompt))
	}
	if p.TxPrompt != nil && !cfg.SetTxPrompt(*p.TxPrompt) {
		return fieldError("tx_prompt", fmt.Errorf("want at most %d printable characters, got %q", format.MaxPromptLen, *p.TxPrompt))
	}
	return nil
}

func fieldError(field string, err error) error {
	return fmt.Errorf("%s: %w", field, err)
}

// ParseSeparator accepts "spaces"/"space" and "tabs"/"tab".
func ParseSeparator(s string) (format.Separator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spaces", "space":
		return format.Spaces, nil
	case "tabs", "tab":
		return format.Tabs, nil
	}
	return 0, fmt.Errorf("unknown separator %q", s)
}

// FromConfig returns a profile with every field of cfg set.
func FromConfig(cfg *format.Config) Profile {
	boolp := func(b bool) *bool { return &b }
	strp := func(s string) *string { return &s }
	brackets := "none"
	if b := cfg.Brackets(); b != 0 {
		brackets = string(b)
	}
	sep := "spaces"
	if cfg.Separator() == format.Tabs {
		sep = "tabs"
	}
	wrap := int(cfg.Wraparound())
	return Profile{
		Timestamp:    cfg.TimestampMode().String(),
		Layout:       cfg.TimeLayout().String(),
		Microseconds: boolp(cfg.Microseconds()),
		IDBase:       cfg.IDBase().String(),
		DLCBase:      cfg.DLCBase().String(),
		DataBase:     cfg.DataBase().String(),
		WideIDs:      boolp(cfg.WideIDs()),
		LengthAsDLC:  boolp(cfg.LengthAsDLC()),
		Brackets:     strp(brackets),
		Flags:        boolp(cfg.Flags()),
		ASCII:        boolp(cfg.ASCII()),
		Substitute:   string(cfg.Substitute()),
		Channel:      boolp(cfg.Channel()),
		Counter:      boolp(cfg.Counter()),
		Separator:    sep,
		Wraparound:   &wrap,
		EndOfLine:    boolp(cfg.EndOfLine()),
		RxPrompt:     strp(cfg.RxPrompt()),
		TxPrompt:     strp(cfg.TxPrompt()),
	}
}

// Marshal renders the profile as YAML.
func (p Profile) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	return data, nil
}

// WriteProfile writes every option of cfg to path.
func WriteProfile(path string, cfg *format.Config) error {
	data, err := FromConfig(cfg).Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
