package model

import "github.com/Carmen-Shannon/oxy-gl/common"

// InstanceGroupBuilderOption is a functional option for configuring an InstanceGroup via NewInstanceGroup.
type InstanceGroupBuilderOption func(*instanceGroup)

// WithGroupID is an option builder that fixes the AssetID of the InstanceGroup.
//
// Parameters:
//   - id: the asset identifier to use
//
// Returns:
//   - InstanceGroupBuilderOption: a function that applies the id option to a group
func WithGroupID(id common.AssetID) InstanceGroupBuilderOption {
	return func(g *instanceGroup) {
		g.id = id
	}
}

// WithInstanceLayout is an option builder that sets the per-instance attribute layout.
// The layout is fixed for the lifetime of the group.
//
// Parameters:
//   - layout: the per-instance attribute widths
//
// Returns:
//   - InstanceGroupBuilderOption: a function that applies the layout option to a group
func WithInstanceLayout(layout common.Layout) InstanceGroupBuilderOption {
	return func(g *instanceGroup) {
		g.layout = layout.Clone()
	}
}

// WithGroupRender is an option builder that sets whether the geometry pass draws the group.
//
// Parameters:
//   - render: true to draw
//
// Returns:
//   - InstanceGroupBuilderOption: a function that applies the render option to a group
func WithGroupRender(render bool) InstanceGroupBuilderOption {
	return func(g *instanceGroup) {
		g.render = render
	}
}

// WithGroupDynamic is an option builder that marks the instance buffer for dynamic usage.
//
// Parameters:
//   - dynamic: true for dynamic usage
//
// Returns:
//   - InstanceGroupBuilderOption: a function that applies the dynamic option to a group
func WithGroupDynamic(dynamic bool) InstanceGroupBuilderOption {
	return func(g *instanceGroup) {
		g.dynamic = dynamic
	}
}

// WithGroupShadow is an option builder that sets whether the group casts shadows.
//
// Parameters:
//   - shadow: true to cast shadows
//
// Returns:
//   - InstanceGroupBuilderOption: a function that applies the shadow option to a group
func WithGroupShadow(shadow bool) InstanceGroupBuilderOption {
	return func(g *instanceGroup) {
		g.shadow = shadow
	}
}

// WithCapacity is an option builder that pre-allocates room for n instances.
//
// Parameters:
//   - n: the expected instance count
//
// Returns:
//   - InstanceGroupBuilderOption: a function that applies the capacity option to a group
func WithCapacity(n int) InstanceGroupBuilderOption {
	return func(g *instanceGroup) {
		g.keys = make([]uint64, 0, n)
		g.data = make([]float32, 0, n*int(g.layout.Stride()))
	}
}
