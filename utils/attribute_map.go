package utils

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// AttributeMap is a free-form map of configuration attributes, typically decoded from JSON.
type AttributeMap map[string]interface{}

// Has returns whether the given attribute is set.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// Float64 returns the attribute as a float64, or def when it is absent or cannot be converted.
// Numeric strings are accepted.
func (am AttributeMap) Float64(name string, def float64) float64 {
	v, ok := am[name]
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

// TransformAttributeMap uses an attribute map to transform attributes to the prescribed format.
// Fields are matched on their json tags; unknown attributes are rejected.
func TransformAttributeMap[T any](attributes AttributeMap) (T, error) {
	var out T

	var forResult interface{}

	toT := reflect.TypeOf(out)
	if toT == nil {
		// nothing to transform
		return out, nil
	}
	if toT.Kind() == reflect.Ptr {
		// needs to be allocated then
		allocated := reflect.New(toT.Elem()).Interface()
		var ok bool
		out, ok = allocated.(T)
		if !ok {
			return out, NewUnexpectedTypeError(out, allocated)
		}
		forResult = out
	} else {
		forResult = &out
	}

	if err := DecodeAttributes(attributes, forResult); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeAttributes decodes attributes over the struct pointed to by result. Fields without a
// matching attribute keep their current value, so result can carry defaults.
func DecodeAttributes(attributes AttributeMap, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           result,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
		return errors.Wrap(err, "cannot decode attributes")
	}
	return nil
}
