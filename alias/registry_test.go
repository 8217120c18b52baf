// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package alias_test

import (
	"testing"

	"github.com/eventwire/eventwire/alias"
	"github.com/eventwire/eventwire/internal/testutil/assert"
	"github.com/eventwire/eventwire/wireerr"
)

type widget struct{ Name string }

func TestRegisterAndNewRoundtrip(t *testing.T) {
	r := alias.New()
	r.Register("Widget", widget{}, func() any { return &widget{} })

	name, ok := r.NameOf(widget{})
	assert.True(t, ok)
	assert.Equal(t, "Widget", name)

	v, err := r.New("Widget")
	assert.NoError(t, err)
	_, ok = v.(*widget)
	assert.True(t, ok)
}

func TestNewUnregisteredReturnsClassNotFound(t *testing.T) {
	r := alias.New()
	_, err := r.New("Nope")
	var cnf *wireerr.ClassNotFound
	assert.ErrorAs(t, err, &cnf)
}

func TestAddAliasResolvesOldName(t *testing.T) {
	r := alias.New()
	r.Register("Widget", widget{}, func() any { return &widget{} })
	r.AddAlias("OldWidget", "Widget")

	v, err := r.New("OldWidget")
	assert.NoError(t, err)
	_, ok := v.(*widget)
	assert.True(t, ok)
}

func TestRegisterIsIdempotentForSamePair(t *testing.T) {
	r := alias.New()
	r.Register("Widget", widget{}, func() any { return &widget{} })
	r.Register("Widget", widget{}, func() any { return &widget{Name: "second"} })

	v, err := r.New("Widget")
	assert.NoError(t, err)
	w := v.(*widget)
	assert.Equal(t, "second", w.Name)
}

func TestDefaultReturnsSharedPool(t *testing.T) {
	assert.Equal(t, alias.Default(), alias.Default())
}
