package twconfig

import (
	"reflect"
	"slices"
	"sort"
)

// Diff returns the sorted field paths whose values differ between a and b:
// "content", "theme.extend" and "pluginOptions.<name>".
func Diff(a, b *BuildConfig) []string {
	if a == nil {
		a = &BuildConfig{}
	}
	if b == nil {
		b = &BuildConfig{}
	}

	var changed []string
	if !slices.Equal(a.Content, b.Content) {
		changed = append(changed, keyContent)
	}
	if len(a.Theme.Extend) != 0 || len(b.Theme.Extend) != 0 {
		if !reflect.DeepEqual(a.Theme.Extend, b.Theme.Extend) {
			changed = append(changed, keyTheme+"."+keyExtend)
		}
	}

	names := make(map[string]bool)
	for name := range a.Plugins {
		names[name] = true
	}
	for name := range b.Plugins {
		names[name] = true
	}
	for name := range names {
		pa, okA := a.Plugins[name]
		pb, okB := b.Plugins[name]
		if okA != okB || !slices.Equal(pa.Themes, pb.Themes) || !reflect.DeepEqual(pa.Extra, pb.Extra) {
			changed = append(changed, keyPluginOptions+"."+name)
		}
	}

	sort.Strings(changed)
	return changed
}
