// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

// ParameterAllowListVersion is bumped whenever ParameterAllowList changes,
// since signatures hashed under different lists are not comparable.
const ParameterAllowListVersion = 1

// ParameterAllowList is the sorted set of context parameters read by the
// graphics probe. It is a short list chosen for signal density; the full
// parameter space is never enumerated.
var ParameterAllowList = []string{
	"ALIASED_LINE_WIDTH_RANGE",
	"ALIASED_POINT_SIZE_RANGE",
	"MAX_3D_TEXTURE_SIZE",
	"MAX_ARRAY_TEXTURE_LAYERS",
	"MAX_CLIENT_WAIT_TIMEOUT_WEBGL",
	"MAX_COLOR_ATTACHMENTS",
	"MAX_COMBINED_FRAGMENT_UNIFORM_COMPONENTS",
	"MAX_COMBINED_TEXTURE_IMAGE_UNITS",
	"MAX_COMBINED_UNIFORM_BLOCKS",
	"MAX_COMBINED_VERTEX_UNIFORM_COMPONENTS",
	"MAX_CUBE_MAP_TEXTURE_SIZE",
	"MAX_DRAW_BUFFERS",
	"MAX_ELEMENTS_INDICES",
	"MAX_ELEMENTS_VERTICES",
	"MAX_ELEMENT_INDEX",
	"MAX_FRAGMENT_INPUT_COMPONENTS",
	"MAX_FRAGMENT_UNIFORM_BLOCKS",
	"MAX_FRAGMENT_UNIFORM_COMPONENTS",
	"MAX_FRAGMENT_UNIFORM_VECTORS",
	"MAX_PROGRAM_TEXEL_OFFSET",
	"MAX_RENDERBUFFER_SIZE",
	"MAX_SAMPLES",
	"MAX_SERVER_WAIT_TIMEOUT",
	"MAX_TEXTURE_IMAGE_UNITS",
	"MAX_TEXTURE_LOD_BIAS",
	"MAX_TEXTURE_SIZE",
	"MAX_TRANSFORM_FEEDBACK_INTERLEAVED_COMPONENTS",
	"MAX_TRANSFORM_FEEDBACK_SEPARATE_ATTRIBS",
	"MAX_TRANSFORM_FEEDBACK_SEPARATE_COMPONENTS",
	"MAX_UNIFORM_BLOCK_SIZE",
	"MAX_UNIFORM_BUFFER_BINDINGS",
	"MAX_VARYING_COMPONENTS",
	"MAX_VARYING_VECTORS",
	"MAX_VERTEX_ATTRIBS",
	"MAX_VERTEX_OUTPUT_COMPONENTS",
	"MAX_VERTEX_TEXTURE_IMAGE_UNITS",
	"MAX_VERTEX_UNIFORM_BLOCKS",
	"MAX_VERTEX_UNIFORM_COMPONENTS",
	"MAX_VERTEX_UNIFORM_VECTORS",
	"MAX_VIEWPORT_DIMS",
	"RENDERER",
	"SHADING_LANGUAGE_VERSION",
	"STENCIL_BACK_VALUE_MASK",
	"STENCIL_BACK_WRITEMASK",
	"STENCIL_VALUE_MASK",
	"STENCIL_WRITEMASK",
	"SUBPIXEL_BITS",
	"VENDOR",
	"VERSION",
}

const (
	paramVersion                = "VERSION"
	paramShadingLanguageVersion = "SHADING_LANGUAGE_VERSION"
	paramMaxViewportDims        = "MAX_VIEWPORT_DIMS"
)

// Parameters that legitimately differ between context levels.
var mirroredExclusions = map[string]struct{}{
	paramVersion:                {},
	paramShadingLanguageVersion: {},
}

const (
	extDebugRendererInfo = "WEBGL_debug_renderer_info"
	extDrawBuffers       = "WEBGL_draw_buffers"

	paramUnmaskedVendor   = "UNMASKED_VENDOR_WEBGL"
	paramUnmaskedRenderer = "UNMASKED_RENDERER_WEBGL"
	paramMaxAnisotropy    = "MAX_TEXTURE_MAX_ANISOTROPY_EXT"
	paramMaxDrawBuffers   = "MAX_DRAW_BUFFERS_WEBGL"
	paramAntialias        = "antialias"
)

// Vendor prefixed names of the anisotropic filtering extension, in lookup order.
var anisotropyExtensions = []string{
	"EXT_texture_filter_anisotropic",
	"MOZ_EXT_texture_filter_anisotropic",
	"WEBKIT_EXT_texture_filter_anisotropic",
}
