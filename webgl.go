// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pion/fingerprint/pkg/null"
	"github.com/pion/logging"
)

const (
	webglTest = "webgl"

	mirroredMismatchAnomaly = "webgl/webgl2 mirrored params mismatch"

	// The read-back region is a fraction of the drawing buffer.
	pixelColumnDivisor = 15
	pixelRowDivisor    = 6
)

// GraphicsLevel is the capability level of a 3D graphics context.
type GraphicsLevel int

const (
	// GraphicsLevelWebGL is the primary context level.
	GraphicsLevelWebGL GraphicsLevel = iota
	// GraphicsLevelWebGL2 is the secondary context level.
	GraphicsLevelWebGL2
)

func (l GraphicsLevel) String() string {
	switch l {
	case GraphicsLevelWebGL:
		return "webgl"
	case GraphicsLevelWebGL2:
		return "webgl2"
	default:
		return unknownStr
	}
}

// ShaderType selects a shader stage for precision queries.
type ShaderType int

const (
	// VertexShader is the vertex stage.
	VertexShader ShaderType = iota
	// FragmentShader is the fragment stage.
	FragmentShader
)

func (s ShaderType) String() string {
	switch s {
	case VertexShader:
		return "VERTEX_SHADER"
	case FragmentShader:
		return "FRAGMENT_SHADER"
	default:
		return unknownStr
	}
}

// PrecisionType selects a numeric precision for precision queries.
type PrecisionType int

const (
	// LowFloat is LOW_FLOAT.
	LowFloat PrecisionType = iota
	// MediumFloat is MEDIUM_FLOAT.
	MediumFloat
	// HighFloat is HIGH_FLOAT.
	HighFloat
	// HighInt is HIGH_INT.
	HighInt
)

func (p PrecisionType) String() string {
	switch p {
	case LowFloat:
		return "LOW_FLOAT"
	case MediumFloat:
		return "MEDIUM_FLOAT"
	case HighFloat:
		return "HIGH_FLOAT"
	case HighInt:
		return "HIGH_INT"
	default:
		return unknownStr
	}
}

// ShaderPrecisionFormat is the answer to a shader precision query.
type ShaderPrecisionFormat struct {
	RangeMin  int `json:"rangeMin"`
	RangeMax  int `json:"rangeMax"`
	Precision int `json:"precision"`
}

// ContextAttributes are the attributes a context was created with.
type ContextAttributes struct {
	Antialias bool `json:"antialias"`
}

// Scene is the fixed drawing used to re-derive context output.
type Scene struct {
	Vertices       []float32
	ComponentSize  int
	VertexShader   string
	FragmentShader string
	OffsetUniform  [2]float32
	Mode           string
	Count          int
}

// ProbeScene is one triangle drawn as a line loop with a fixed shader pair
// and offset uniform.
var ProbeScene = Scene{
	Vertices:      []float32{-0.9, -0.7, 0, 0.8, -0.7, 0, 0, 0.5, 0},
	ComponentSize: 3,
	VertexShader: `
attribute vec2 attrVertex;
varying vec2 varyinTexCoordinate;
uniform vec2 uniformOffset;
void main(){
	varyinTexCoordinate = attrVertex + uniformOffset;
	gl_Position = vec4(attrVertex, 0, 1);
}`,
	FragmentShader: `
precision mediump float;
varying vec2 varyinTexCoordinate;
void main() {
	gl_FragColor = vec4(varyinTexCoordinate, 1, 1);
}`,
	OffsetUniform: [2]float32{1, 1},
	Mode:          "LINE_LOOP",
	Count:         3,
}

// GraphicsSurface hands out 3D graphics contexts on offscreen or detached surfaces.
type GraphicsSurface interface {
	// Context returns ErrNoGraphicsContext, or a nil context, when the level is unavailable.
	Context(ctx context.Context, level GraphicsLevel) (GraphicsContext, error)
}

// GraphicsContext is the query surface of a single 3D graphics context.
type GraphicsContext interface {
	// Parameter returns ErrParameterUndefined when name does not exist at this level.
	Parameter(ctx context.Context, name string) (ParameterValue, error)
	// ExtensionParameter returns ErrExtensionUnavailable when the extension is not exposed.
	ExtensionParameter(ctx context.Context, extension, name string) (ParameterValue, error)
	SupportedExtensions(ctx context.Context) ([]string, error)
	ShaderPrecision(ctx context.Context, shader ShaderType, precision PrecisionType) (ShaderPrecisionFormat, error)
	ContextAttributes(ctx context.Context) (ContextAttributes, error)
	DrawingBufferSize(ctx context.Context) (width, height int, err error)
	Draw(ctx context.Context, scene Scene) error
	// ReadPixels reads an RGBA region anchored at the origin.
	ReadPixels(ctx context.Context, width, height int) ([]byte, error)
	ToDataURL(ctx context.Context) (string, error)
}

// WebGL is the graphics probe signature.
type WebGL struct {
	Extensions              []string                  `json:"extensions"`
	Pixels                  []byte                    `json:"pixels"`
	Pixels2                 []byte                    `json:"pixels2"`
	DataURI                 null.String               `json:"dataURI"`
	DataURI2                null.String               `json:"dataURI2"`
	Parameters              map[string]ParameterValue `json:"parameters"`
	MirroredMismatch        []string                  `json:"mirroredMismatch,omitempty"`
	ParameterOrExtensionLie bool                      `json:"parameterOrExtensionLie"`
	Lied                    bool                      `json:"lied"`
	AllowListVersion        int                       `json:"allowListVersion"`
	Hash                    string                    `json:"$hash,omitempty"`
}

// WebGL runs the graphics probe against surface. It returns nil and a
// *ProbeError wrapping ErrNoGraphicsContext when no primary context exists.
func (a *API) WebGL(ctx context.Context, surface GraphicsSurface) (*WebGL, error) {
	var result *WebGL
	err := a.runProbe(webglTest, func(y yielder) error {
		if surface == nil {
			return ErrNoGraphicsContext
		}
		r, err := a.webgl(ctx, y, surface)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	result.Hash = a.hash(result)
	return result, nil
}

func (a *API) webgl(ctx context.Context, y yielder, surface GraphicsSurface) (*WebGL, error) {
	log := a.newLogger("webgl")

	if err := y.yield(ctx); err != nil {
		return nil, err
	}

	dataLie := a.report.Intercepted("HTMLCanvasElement.toDataURL")
	contextLie := a.report.Intercepted("HTMLCanvasElement.getContext")
	parameterOrExtensionLie := anyIntercepted(a.report,
		"WebGLRenderingContext.getParameter",
		"WebGL2RenderingContext.getParameter",
		"WebGLRenderingContext.getExtension",
		"WebGL2RenderingContext.getExtension",
	)
	lied := dataLie || contextLie || parameterOrExtensionLie || anyIntercepted(a.report,
		"WebGLRenderingContext.getSupportedExtensions",
		"WebGL2RenderingContext.getSupportedExtensions",
	)

	gl := acquireContext(ctx, surface, GraphicsLevelWebGL, log)
	if gl == nil {
		return nil, ErrNoGraphicsContext
	}
	gl2 := acquireContext(ctx, surface, GraphicsLevelWebGL2, log)

	if err := y.yield(ctx); err != nil {
		return nil, err
	}

	params := readParameters(ctx, gl, log)
	params2 := readParameters(ctx, gl2, log)
	mismatch := MirroredMismatch(params, params2)
	if len(mismatch) > 0 {
		a.anomalies.RecordAnomaly(mirroredMismatchAnomaly, strings.Join(mismatch, ","))
	}

	if err := y.yield(ctx); err != nil {
		return nil, err
	}

	result := &WebGL{
		MirroredMismatch:        mismatch,
		ParameterOrExtensionLie: parameterOrExtensionLie,
		Lied:                    lied,
		AllowListVersion:        ParameterAllowListVersion,
	}
	result.DataURI, result.Pixels = render(ctx, gl, log)
	result.DataURI2, result.Pixels2 = render(ctx, gl2, log)
	result.Extensions = append(supportedExtensions(ctx, gl, log), supportedExtensions(ctx, gl2, log)...)

	result.Parameters = map[string]ParameterValue{}
	for _, set := range []map[string]ParameterValue{params, params2, primaryExtras(ctx, gl, log)} {
		for k, v := range set {
			result.Parameters[k] = v
		}
	}

	return result, nil
}

// acquireContext treats every failure to get a context as absence.
func acquireContext(ctx context.Context, surface GraphicsSurface, level GraphicsLevel, log logging.LeveledLogger) GraphicsContext {
	gl, err := surface.Context(ctx, level)
	if err != nil {
		if !errors.Is(err, ErrNoGraphicsContext) {
			log.Debugf("failed to acquire %s context: %v", level, err)
		}
		return nil
	}
	return gl
}

// MirroredMismatch lists, sorted, the parameters of b that are truthy in a
// and stringify differently, leaving out the version strings that
// legitimately differ between context levels.
func MirroredMismatch(a, b map[string]ParameterValue) []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mismatch []string
	for _, k := range keys {
		if _, excluded := mirroredExclusions[k]; excluded {
			continue
		}
		av, ok := a[k]
		if !ok || !av.Truthy() {
			continue
		}
		if av.String() != b[k].String() {
			mismatch = append(mismatch, k)
		}
	}
	return mismatch
}

func readParameters(ctx context.Context, gl GraphicsContext, log logging.LeveledLogger) map[string]ParameterValue {
	params := map[string]ParameterValue{}
	if gl == nil {
		return params
	}

	for _, name := range ParameterAllowList {
		v, err := gl.Parameter(ctx, name)
		switch {
		case errors.Is(err, ErrParameterUndefined):
			continue
		case err != nil:
			log.Debugf("failed to read %s: %v", name, err)
			v = UndefinedValue()
		}
		params[name] = v
	}

	for _, name := range []string{paramUnmaskedVendor, paramUnmaskedRenderer} {
		v, err := gl.ExtensionParameter(ctx, extDebugRendererInfo, name)
		switch {
		case errors.Is(err, ErrExtensionUnavailable):
			return params
		case err != nil:
			log.Debugf("failed to read %s: %v", name, err)
			v = UndefinedValue()
		}
		params[name] = v
	}

	return params
}

func supportedExtensions(ctx context.Context, gl GraphicsContext, log logging.LeveledLogger) []string {
	if gl == nil {
		return nil
	}
	ext, err := gl.SupportedExtensions(ctx)
	if err != nil {
		log.Debugf("failed to list extensions: %v", err)
		return nil
	}
	return ext
}

// render draws ProbeScene and captures the encoded image and a reduced
// pixel region. Each capture degrades to undefined on its own.
func render(ctx context.Context, gl GraphicsContext, log logging.LeveledLogger) (null.String, []byte) {
	if gl == nil {
		return null.String{}, nil
	}

	if err := gl.Draw(ctx, ProbeScene); err != nil {
		log.Debugf("failed to draw probe scene: %v", err)
		return null.String{}, nil
	}

	var dataURI null.String
	if s, err := gl.ToDataURL(ctx); err != nil {
		log.Debugf("failed to encode image: %v", err)
	} else {
		dataURI = null.NewString(s)
	}

	width, height, err := gl.DrawingBufferSize(ctx)
	if err != nil {
		log.Debugf("failed to read drawing buffer size: %v", err)
		return dataURI, nil
	}

	pixels, err := gl.ReadPixels(ctx, width/pixelColumnDivisor, height/pixelRowDivisor)
	if err != nil {
		log.Debugf("failed to read pixels: %v", err)
		return dataURI, nil
	}
	return dataURI, pixels
}

// primaryExtras reads the fields taken from the primary context only.
func primaryExtras(ctx context.Context, gl GraphicsContext, log logging.LeveledLogger) map[string]ParameterValue {
	extras := map[string]ParameterValue{}

	if attrs, err := gl.ContextAttributes(ctx); err != nil {
		log.Debugf("failed to read context attributes: %v", err)
		extras[paramAntialias] = UndefinedValue()
	} else {
		extras[paramAntialias] = BoolValue(attrs.Antialias)
	}

	extras[paramMaxViewportDims] = attempt(func() (ParameterValue, error) {
		return gl.Parameter(ctx, paramMaxViewportDims)
	})

	extras[paramMaxAnisotropy] = UndefinedValue()
	for _, ext := range anisotropyExtensions {
		v, err := gl.ExtensionParameter(ctx, ext, paramMaxAnisotropy)
		if errors.Is(err, ErrExtensionUnavailable) {
			continue
		}
		if err == nil {
			extras[paramMaxAnisotropy] = v
		}
		break
	}

	for _, shader := range []ShaderType{VertexShader, FragmentShader} {
		for _, precision := range []PrecisionType{LowFloat, MediumFloat, HighFloat, HighInt} {
			prefix := fmt.Sprintf("%s.%s.", shader, precision)
			format, err := gl.ShaderPrecision(ctx, shader, precision)
			if err != nil {
				log.Debugf("failed to read %s precision: %v", prefix, err)
				extras[prefix+"precision"] = UndefinedValue()
				extras[prefix+"rangeMax"] = UndefinedValue()
				extras[prefix+"rangeMin"] = UndefinedValue()
				continue
			}
			extras[prefix+"precision"] = NumberValue(float64(format.Precision))
			extras[prefix+"rangeMax"] = NumberValue(float64(format.RangeMax))
			extras[prefix+"rangeMin"] = NumberValue(float64(format.RangeMin))
		}
	}

	extras[paramMaxDrawBuffers] = attempt(func() (ParameterValue, error) {
		return gl.ExtensionParameter(ctx, extDrawBuffers, paramMaxDrawBuffers)
	})

	return extras
}

// attempt degrades any read failure to undefined.
func attempt(read func() (ParameterValue, error)) ParameterValue {
	v, err := read()
	if err != nil {
		return UndefinedValue()
	}
	return v
}
