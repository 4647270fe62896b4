package domain

import (
	"sort"
	"strings"
)

// OptionKind tags which variant dimensions a selection carries.
type OptionKind string

const (
	// OptionKindPhone selects across color and storage dimensions.
	OptionKindPhone OptionKind = "phone"
	// OptionKindLaptop selects a single named configuration.
	OptionKindLaptop OptionKind = "laptop"
)

// Options is a variant selection attached to a line item. Color, Storage and
// Config identify the purchasable configuration; VariantPrice and VariantImage
// are derived at resolve time and never participate in identity comparison.
type Options struct {
	Kind         OptionKind `json:"kind,omitempty"`
	Color        string     `json:"color,omitempty"`
	Storage      string     `json:"storage,omitempty"`
	Config       string     `json:"config,omitempty"`
	VariantPrice int64      `json:"variantPrice,omitempty"`
	VariantImage string     `json:"variantImage,omitempty"`
}

// derived option fields stripped before canonicalization.
var derivedOptionKeys = map[string]struct{}{
	"variantPrice": {},
	"variantImage": {},
}

// CanonicalOptionKey normalizes an option mapping into an order-independent
// merge key. Derived keys are stripped, the rest sorted and serialized.
// An empty or nil mapping yields the empty key.
func CanonicalOptionKey(options map[string]string) string {
	if len(options) == 0 {
		return ""
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		if _, derived := derivedOptionKeys[k]; derived {
			continue
		}
		if options[k] == "" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+options[k])
	}
	return strings.Join(parts, "|")
}

// OptionsFromSelections lifts a raw option mapping into a typed selection.
// Derived fields are ignored; the kind follows from which dimensions are set.
// A mapping with no identity dimensions yields nil.
func OptionsFromSelections(options map[string]string) *Options {
	o := &Options{
		Color:   options["color"],
		Storage: options["storage"],
		Config:  options["config"],
	}
	switch {
	case o.Config != "":
		o.Kind = OptionKindLaptop
	case o.Color != "" || o.Storage != "":
		o.Kind = OptionKindPhone
	default:
		return nil
	}
	return o
}

// Selections returns the identity dimensions as a mapping, without the
// derived metadata fields.
func (o *Options) Selections() map[string]string {
	if o == nil {
		return nil
	}
	sel := make(map[string]string, 3)
	if o.Color != "" {
		sel["color"] = o.Color
	}
	if o.Storage != "" {
		sel["storage"] = o.Storage
	}
	if o.Config != "" {
		sel["config"] = o.Config
	}
	if len(sel) == 0 {
		return nil
	}
	return sel
}

// CanonicalKey reports the merge key for this selection. A nil receiver and a
// selection with no identity dimensions both yield the empty key, so two
// option-less additions always compare equal.
func (o *Options) CanonicalKey() string {
	return CanonicalOptionKey(o.Selections())
}
