package script

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/voxelforge/isomesh/pkg/field"
	"github.com/voxelforge/isomesh/pkg/math3d"
)

// sexpField carries a field.Field through the interpreter.
type sexpField struct {
	f    field.Field
	desc string
}

func (s *sexpField) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(field %s)", s.desc)
}
func (s *sexpField) Type() *zygo.RegisteredType { return nil }

// sexpVec3 carries a math3d.Vec3 through the interpreter.
type sexpVec3 struct {
	v math3d.Vec3
}

func (s *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", s.v.X, s.v.Y, s.v.Z)
}
func (s *sexpVec3) Type() *zygo.RegisteredType { return nil }

// args separates a builtin's argument list into positional values and
// keyword/value pairs marked by the preprocessor.
type args struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(list []zygo.Sexp) args {
	a := args{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(list); i++ {
		if str, ok := list[i].(*zygo.SexpStr); ok && strings.HasPrefix(str.S, kwPrefix) {
			name := str.S[len(kwPrefix):]
			if i+1 < len(list) {
				a.kw[name] = list[i+1]
				i++
			} else {
				a.kw[name] = zygo.SexpNull
			}
			continue
		}
		a.positional = append(a.positional, list[i])
	}
	return a
}

// number reads a keyword argument as float64, falling back to the next
// positional argument, then to def.
func (a *args) number(name string, pos int, def float64) (float64, error) {
	if s, ok := a.kw[name]; ok {
		return toFloat64(s)
	}
	if pos >= 0 && pos < len(a.positional) {
		return toFloat64(a.positional[pos])
	}
	return def, nil
}

func (a *args) vec3(name string, def math3d.Vec3) (math3d.Vec3, error) {
	s, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	v, ok2 := s.(*sexpVec3)
	if !ok2 {
		return math3d.Vec3{}, fmt.Errorf("%s: expected (vec3 ...), got %s", name, s.SexpString(nil))
	}
	return v.v, nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", s.SexpString(nil))
}

func toField(s zygo.Sexp) (field.Field, error) {
	if f, ok := s.(*sexpField); ok {
		return f.f, nil
	}
	return nil, fmt.Errorf("expected field, got %s", s.SexpString(nil))
}

func toFields(list []zygo.Sexp) ([]field.Field, error) {
	out := make([]field.Field, 0, len(list))
	for _, s := range list {
		f, err := toField(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// registerBuiltins installs the scene vocabulary. Hyphenated names are
// registered in underscore form to match the preprocessor.
func registerBuiltins(env *zygo.Zlisp) {
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(list)
		if len(a.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 wants 3 numbers, got %d", len(a.positional))
		}
		var c [3]float64
		for i, s := range a.positional {
			v, err := toFloat64(s)
			if err != nil {
				return zygo.SexpNull, err
			}
			c[i] = v
		}
		return &sexpVec3{v: math3d.V3(c[0], c[1], c[2])}, nil
	})

	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(list)
		r, err := a.number("radius", 0, 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		center, err := a.vec3("center", math3d.Zero3())
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpField{f: field.Sphere{Center: center, Radius: r}, desc: "sphere"}, nil
	})

	env.AddFunction("box", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(list)
		size, err := a.vec3("size", math3d.V3(1, 1, 1))
		if err != nil {
			return zygo.SexpNull, err
		}
		center, err := a.vec3("center", math3d.Zero3())
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpField{f: field.Box{Center: center, Half: size.Scale(0.5)}, desc: "box"}, nil
	})

	env.AddFunction("torus", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(list)
		major, err := a.number("major", 0, 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		minor, err := a.number("minor", 1, 0.25)
		if err != nil {
			return zygo.SexpNull, err
		}
		center, err := a.vec3("center", math3d.Zero3())
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpField{f: field.Torus{Center: center, Major: major, Minor: minor}, desc: "torus"}, nil
	})

	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(list)
		r, err := a.number("radius", 0, 0.5)
		if err != nil {
			return zygo.SexpNull, err
		}
		h, err := a.number("height", 1, 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		center, err := a.vec3("center", math3d.Zero3())
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpField{
			f:    field.Cylinder{Center: center, Radius: r, HalfHeight: h / 2},
			desc: "cylinder",
		}, nil
	})

	env.AddFunction("plane", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(list)
		point, err := a.vec3("point", math3d.Zero3())
		if err != nil {
			return zygo.SexpNull, err
		}
		normal, err := a.vec3("normal", math3d.V3(0, 1, 0))
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpField{f: field.NewPlane(point, normal), desc: "plane"}, nil
	})

	env.AddFunction("gyroid", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(list)
		scale, err := a.number("scale", 0, 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		thickness, err := a.number("thickness", 1, 0.1)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpField{f: field.Gyroid{Scale: scale, Thickness: thickness}, desc: "gyroid"}, nil
	})

	env.AddFunction("union", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		fields, err := toFields(list)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("union: %w", err)
		}
		if len(fields) == 0 {
			return zygo.SexpNull, fmt.Errorf("union wants at least one field")
		}
		return &sexpField{f: field.Union(fields...), desc: "union"}, nil
	})

	env.AddFunction("intersect", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		fields, err := toFields(list)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: %w", err)
		}
		if len(fields) == 0 {
			return zygo.SexpNull, fmt.Errorf("intersect wants at least one field")
		}
		return &sexpField{f: field.Intersection(fields...), desc: "intersect"}, nil
	})

	env.AddFunction("difference", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		if len(list) != 2 {
			return zygo.SexpNull, fmt.Errorf("difference wants 2 fields, got %d", len(list))
		}
		a, err := toField(list[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: %w", err)
		}
		b, err := toField(list[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: %w", err)
		}
		return &sexpField{f: field.Difference(a, b), desc: "difference"}, nil
	})

	env.AddFunction("smooth_union", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(list)
		if len(a.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("smooth-union wants 2 fields")
		}
		fa, err := toField(a.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("smooth-union: %w", err)
		}
		fb, err := toField(a.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("smooth-union: %w", err)
		}
		k, err := a.number("k", 2, 0.25)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpField{f: field.SmoothUnion(fa, fb, k), desc: "smooth-union"}, nil
	})

	env.AddFunction("translate", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		if len(list) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate wants a field and a vec3")
		}
		f, err := toField(list[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		v, ok := list[1].(*sexpVec3)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("translate: expected (vec3 ...), got %s", list[1].SexpString(nil))
		}
		return &sexpField{f: field.Translate(f, v.v), desc: "translate"}, nil
	})

	env.AddFunction("scale", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		if len(list) != 2 {
			return zygo.SexpNull, fmt.Errorf("scale wants a field and a factor")
		}
		f, err := toField(list[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		s, err := toFloat64(list[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		if s <= 0 {
			return zygo.SexpNull, fmt.Errorf("scale: factor must be positive, got %g", s)
		}
		return &sexpField{f: field.Scale(f, s), desc: "scale"}, nil
	})

	env.AddFunction("round", func(env *zygo.Zlisp, name string, list []zygo.Sexp) (zygo.Sexp, error) {
		if len(list) != 2 {
			return zygo.SexpNull, fmt.Errorf("round wants a field and a radius")
		}
		f, err := toField(list[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("round: %w", err)
		}
		r, err := toFloat64(list[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("round: %w", err)
		}
		return &sexpField{f: field.Round(f, r), desc: "round"}, nil
	})
}
