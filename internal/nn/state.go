package nn

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/m0saan/minima/internal/autodiff"
	"github.com/m0saan/minima/internal/ndarray"
	"github.com/m0saan/minima/internal/serialization"
)

// ErrMissingParameter reports a parameter absent from a loaded state dict.
var ErrMissingParameter = errors.New("missing parameter")

// namedModule is implemented by modules that name their parameters.
type namedModule interface {
	NamedParameters() map[string]*Parameter
}

// NamedParameters returns m's parameters keyed by their path, for example
// "0.weight" for the weight of the first module of a Sequential.
func NamedParameters(m Module) map[string]*Parameter {
	if named, ok := m.(namedModule); ok {
		return named.NamedParameters()
	}
	params := make(map[string]*Parameter)
	for i, p := range m.Parameters() {
		name := p.Name()
		if _, taken := params[name]; taken {
			name = fmt.Sprintf("%s.%d", name, i)
		}
		params[name] = p
	}
	return params
}

// NamedParameters returns {"weight", "bias"}.
func (l *Linear) NamedParameters() map[string]*Parameter {
	params := map[string]*Parameter{"weight": l.weight}
	if l.bias != nil {
		params["bias"] = l.bias
	}
	return params
}

// NamedParameters prefixes each child's names with its index.
func (s *Sequential) NamedParameters() map[string]*Parameter {
	params := make(map[string]*Parameter)
	for i, module := range s.modules {
		for name, p := range NamedParameters(module) {
			params[fmt.Sprintf("%d.%s", i, name)] = p
		}
	}
	return params
}

// SaveStateDict writes the values of m's parameters to w in SafeTensors format.
func SaveStateDict(w io.Writer, m Module) error {
	entries := make(map[string]serialization.Entry)
	for name, p := range NamedParameters(m) {
		shape, err := p.Tensor().Shape()
		if err != nil {
			return errors.WithMessagef(err, "save %s", name)
		}
		data, err := p.Tensor().ToSlice()
		if err != nil {
			return errors.WithMessagef(err, "save %s", name)
		}
		entries[name] = serialization.Entry{Shape: shape, Data: data}
	}
	return serialization.Write(w, entries, map[string]string{"format": "minima"})
}

// LoadStateDict replaces the values of m's parameters with those read from
// r. Every parameter must be present with its current shape; extra entries
// are ignored.
func LoadStateDict(r io.Reader, m Module) error {
	entries, _, err := serialization.Read(r)
	if err != nil {
		return errors.WithMessage(err, "load state dict")
	}
	params := NamedParameters(m)
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry, found := entries[name]
		if !found {
			return errors.Wrapf(ErrMissingParameter, "load %s", name)
		}
		p := params[name]
		value, err := p.Tensor().Context().FromSlice(entry.Data, ndarray.Shape(entry.Shape), autodiff.WithRequiresGrad(false))
		if err != nil {
			return errors.WithMessagef(err, "load %s", name)
		}
		if err := p.Tensor().SetData(value); err != nil {
			return errors.WithMessagef(err, "load %s", name)
		}
		delete(entries, name)
	}
	if len(entries) > 0 {
		klog.V(1).Infof("nn: ignored %d unknown entries in state dict", len(entries))
	}
	return nil
}
