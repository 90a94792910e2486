package config

import "sort"

// Preset describes a known documentation site: where its tree starts
// and which path prefix keeps discovered links in scope.
type Preset struct {
	// Name is the human-readable preset name.
	Name string `yaml:"name"`

	// BaseURL is the seed URL for the documentation tree.
	BaseURL string `yaml:"base_url"`

	// LinkPattern is the path prefix used by the site-scoping filter.
	LinkPattern string `yaml:"link_pattern"`

	// Description is a short blurb shown by `webmark presets`.
	Description string `yaml:"description,omitempty"`
}

// BuiltinPresets are the documentation sites the tool ships with.
// Users can add their own in the config file; file presets with the
// same key override these.
func BuiltinPresets() map[string]Preset {
	return map[string]Preset{
		"uefn": {
			Name:        "UEFN Documentation",
			BaseURL:     "https://dev.epicgames.com/documentation/en-us/uefn/unreal-editor-for-fortnite-documentation",
			LinkPattern: "/documentation/en-us/uefn",
			Description: "Unreal Editor for Fortnite Documentation",
		},
		"fortnite-creative": {
			Name:        "Fortnite Creative",
			BaseURL:     "https://dev.epicgames.com/documentation/en-us/fortnite-creative/fortnite-creative-documentation",
			LinkPattern: "/documentation/en-us/fortnite-creative",
			Description: "Fortnite Creative Documentation",
		},
		"verse": {
			Name:        "Verse Programming",
			BaseURL:     "https://dev.epicgames.com/documentation/en-us/uefn/learn-programming-with-verse-in-unreal-editor-for-fortnite",
			LinkPattern: "/documentation/en-us/uefn",
			Description: "Verse Programming Language Documentation",
		},
		"verse-api": {
			Name:        "Verse API",
			BaseURL:     "https://dev.epicgames.com/documentation/en-us/uefn/verse-api",
			LinkPattern: "/documentation/en-us/uefn/verse-api",
			Description: "Verse API Reference",
		},
		"unreal-engine": {
			Name:        "Unreal Engine",
			BaseURL:     "https://dev.epicgames.com/documentation/en-us/unreal-engine",
			LinkPattern: "/documentation/en-us/unreal-engine",
			Description: "Unreal Engine Documentation",
		},
		"metahuman": {
			Name:        "MetaHuman",
			BaseURL:     "https://dev.epicgames.com/documentation/en-us/metahuman",
			LinkPattern: "/documentation/en-us/metahuman",
			Description: "MetaHuman Documentation",
		},
		"twinmotion": {
			Name:        "Twinmotion",
			BaseURL:     "https://dev.epicgames.com/documentation/en-us/twinmotion",
			LinkPattern: "/documentation/en-us/twinmotion",
			Description: "Twinmotion Documentation",
		},
	}
}

// ResolvePreset looks up a preset by key, checking the config file
// presets first and falling back to the built-in set.
func ResolvePreset(cf *File, key string) (Preset, bool) {
	if cf != nil {
		if p, ok := cf.Presets[key]; ok {
			return p, true
		}
	}
	p, ok := BuiltinPresets()[key]
	return p, ok
}

// PresetKeys returns the sorted union of file and built-in preset keys.
func PresetKeys(cf *File) []string {
	seen := make(map[string]bool)
	for k := range BuiltinPresets() {
		seen[k] = true
	}
	if cf != nil {
		for k := range cf.Presets {
			seen[k] = true
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
