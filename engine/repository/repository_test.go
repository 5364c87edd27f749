package repository

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
)

func TestMeshLifecycle(t *testing.T) {
	r := NewRepository()
	cube := model.Cube()
	id := r.AddMesh(cube)
	if id != cube.ID() {
		t.Fatalf("AddMesh id = %d, want %d", id, cube.ID())
	}
	got, err := r.Mesh(id)
	if err != nil || got.ID() != id {
		t.Fatalf("Mesh(%d) = %v, %v", id, got, err)
	}
	if !r.RemoveMesh(id) {
		t.Fatal("RemoveMesh returned false")
	}
	if r.RemoveMesh(id) {
		t.Error("second RemoveMesh returned true")
	}
	if _, err := r.Mesh(id); !errors.Is(err, common.ErrLookup) {
		t.Errorf("expected ErrLookup, got %v", err)
	}
}

func TestListsAreOrderedByID(t *testing.T) {
	r := NewRepository()
	for _, id := range []common.AssetID{30, 10, 20} {
		r.AddMaterial(material.NewMaterial(material.WithID(id)))
		r.AddTexture(texture.NewTexture(texture.WithID(id)))
	}
	mats := r.Materials()
	texs := r.Textures()
	if len(mats) != 3 || len(texs) != 3 {
		t.Fatalf("got %d materials, %d textures", len(mats), len(texs))
	}
	for i, want := range []common.AssetID{10, 20, 30} {
		if mats[i].ID() != want || texs[i].ID() != want {
			t.Errorf("index %d: material %d texture %d, want %d", i, mats[i].ID(), texs[i].ID(), want)
		}
	}
}

func TestInstanceGroups(t *testing.T) {
	r := NewRepository()
	g := model.NewInstanceGroup(1, 2)
	r.AddInstanceGroup(g)
	if got, err := r.InstanceGroup(g.ID()); err != nil || got != g {
		t.Fatalf("InstanceGroup = %v, %v", got, err)
	}
	if _, err := r.InstanceGroup(g.ID() + 1); !errors.Is(err, common.ErrLookup) {
		t.Errorf("expected ErrLookup, got %v", err)
	}
	if n := len(r.InstanceGroups()); n != 1 {
		t.Errorf("InstanceGroups len = %d", n)
	}
}
