package system

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/character"
	"github.com/milk9111/thirdperson/prefabs"
)

const inputDispatchScript = `
if __phase == "update" {
	update(__engine, __state)
}
`

// ScriptInput is a character.InputSource backed by a tengo script that
// defines update(engine, state). The script reads the committed frame
// through engine and presses buttons for the coming tick.
type ScriptInput struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
	engine   *tengo.ImmutableMap

	// valid during Read
	view  character.FrameView
	frame character.InputFrame
}

// NewScriptInput loads and compiles a script from the prefabs.
func NewScriptInput(path string) (*ScriptInput, error) {
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, fmt.Errorf("script: load %s: %w", path, err)
	}
	return CompileScriptInput(path, src)
}

func CompileScriptInput(path string, src []byte) (*ScriptInput, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + inputDispatchScript))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", path, err)
	}

	s := &ScriptInput{
		path:     path,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	s.engine = s.buildEngine()

	// runs the top level once so globals are initialized
	if err := s.run("noop"); err != nil {
		return nil, fmt.Errorf("script: init %s: %w", path, err)
	}
	return s, nil
}

func (s *ScriptInput) Path() string {
	return s.path
}

func (s *ScriptInput) Read(view character.FrameView) (character.InputFrame, error) {
	s.view = view
	s.frame = character.InputFrame{}
	err := s.run("update")
	s.view = nil
	if err != nil {
		return character.InputFrame{}, fmt.Errorf("script: %s: %w", s.path, err)
	}
	return s.frame, nil
}

func (s *ScriptInput) run(phase string) error {
	if err := s.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := s.compiled.Set("__engine", s.engine); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	return s.compiled.Run()
}

func (s *ScriptInput) committed() *character.Frame {
	if s.view == nil {
		return nil
	}
	return s.view.Committed()
}

func (s *ScriptInput) buildEngine() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	vecFn := func(name string, get func(*character.Frame) mgl64.Vec3) {
		values[name] = &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
			var v mgl64.Vec3
			if f := s.committed(); f != nil {
				v = get(f)
			}
			return vecObject(v), nil
		}}
	}
	vecFn("position", func(f *character.Frame) mgl64.Vec3 { return f.Position })
	vecFn("velocity", func(f *character.Frame) mgl64.Vec3 { return f.Velocity })
	vecFn("forward", func(f *character.Frame) mgl64.Vec3 { return f.Forward })

	boolFn := func(name string, get func(*character.Frame) bool) {
		values[name] = &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
			if f := s.committed(); f != nil && get(f) {
				return tengo.TrueValue, nil
			}
			return tengo.FalseValue, nil
		}}
	}
	boolFn("on_ground", (*character.Frame).IsOnGround)
	boolFn("on_wall", (*character.Frame).IsOnWall)
	boolFn("is_idle", (*character.Frame).IsIdle)
	boolFn("is_crouching", func(f *character.Frame) bool { return f.IsCrouching })

	values["tick"] = &tengo.UserFunction{Name: "tick", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if s.view == nil {
			return &tengo.Int{Value: 0}, nil
		}
		return &tengo.Int{Value: int64(s.view.Ticks())}, nil
	}}

	values["event"] = &tengo.UserFunction{Name: "event", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		ev, ok := character.ParseEvent(strings.TrimSpace(objectAsString(args[0])))
		if f := s.committed(); ok && f != nil && f.Events.Has(ev) {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		x, okX := objectAsFloat(args[0])
		z, okZ := objectAsFloat(args[1])
		if !okX || !okZ {
			return nil, fmt.Errorf("move: expected numbers, got %s and %s", args[0].TypeName(), args[1].TypeName())
		}
		s.frame.Move = mgl64.Vec3{x, 0, z}
		return tengo.UndefinedValue, nil
	}}

	button := func(name string, press func(*character.InputFrame)) {
		values[name] = &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
			press(&s.frame)
			return tengo.UndefinedValue, nil
		}}
	}
	button("jump", func(in *character.InputFrame) { in.Jump = true })
	button("crouch", func(in *character.InputFrame) { in.Crouch = true })
	button("load", func(in *character.InputFrame) { in.Load = true })

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		log.Printf("script: %s: %s", s.path, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vecObject(v mgl64.Vec3) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: v[0]},
		&tengo.Float{Value: v[1]},
		&tengo.Float{Value: v[2]},
	}}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectAsFloat(obj tengo.Object) (float64, bool) {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value, true
	case *tengo.Int:
		return float64(v.Value), true
	default:
		return 0, false
	}
}
