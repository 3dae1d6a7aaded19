package gallery_test

import (
	"testing"

	"lightbox/internal/gallery"

	"github.com/stretchr/testify/assert"
)

func TestKeyboardBindingsResolve(t *testing.T) {
	tests := []struct {
		variant gallery.Variant
		key     string
		want    gallery.Action
	}{
		{gallery.VariantInline, "left", gallery.ActionPrevious},
		{gallery.VariantInline, "ArrowLeft", gallery.ActionPrevious},
		{gallery.VariantInline, "right", gallery.ActionNext},
		{gallery.VariantInline, "ArrowRight", gallery.ActionNext},
		{gallery.VariantInline, " ", gallery.ActionToggleAutoplay},
		{gallery.VariantInline, "Space", gallery.ActionToggleAutoplay},
		{gallery.VariantInline, "esc", gallery.ActionNone},
		{gallery.VariantModal, "esc", gallery.ActionClose},
		{gallery.VariantModal, "Escape", gallery.ActionClose},
		{gallery.VariantModal, "enter", gallery.ActionNone},
	}
	for _, tt := range tests {
		b := gallery.NewKeyboardBindings(gallery.DefaultKeyMap(tt.variant))
		b.Register()
		assert.Equal(t, tt.want, b.Resolve(tt.key), "%s %q", tt.variant, tt.key)
	}
}

func TestKeyboardBindingsRegistration(t *testing.T) {
	b := gallery.NewKeyboardBindings(gallery.DefaultKeyMap(gallery.VariantModal))
	assert.False(t, b.Registered())
	assert.Equal(t, gallery.ActionNone, b.Resolve("right"), "inactive before register")

	b.Register()
	assert.Equal(t, gallery.ActionNext, b.Resolve("right"))

	b.Unregister()
	assert.False(t, b.Registered())
	assert.Equal(t, gallery.ActionNone, b.Resolve("right"))
}

func TestKeyMapHelp(t *testing.T) {
	km := gallery.DefaultKeyMap(gallery.VariantInline)
	short := km.ShortHelp()
	assert.Len(t, short, 4)
	assert.False(t, short[3].Enabled(), "close hidden for the inline slider")
	assert.Equal(t, "space", km.Autoplay.Help().Key)
	assert.Len(t, km.FullHelp(), 1)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "toggle_autoplay", gallery.ActionToggleAutoplay.String())
	assert.Equal(t, "none", gallery.ActionNone.String())
	assert.Equal(t, "modal", gallery.VariantModal.String())
	assert.Equal(t, "inline", gallery.VariantInline.String())
}
