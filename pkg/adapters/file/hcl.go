package file

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"time"

	"github.com/aretw0/inicheck/pkg/ports"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// parseHCL reads one block per section:
//
//	basic {
//	  num_users = 2
//	  tags      = ["a", "b"]
//	}
func parseHCL(data []byte, name string) ([]ports.Section, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid hcl: %w", diags)
	}

	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected hcl body %T", f.Body)
	}
	if attrs := sortedAttributes(body); len(attrs) > 0 {
		return nil, fmt.Errorf("%s: attribute %q is outside a section", attrs[0].SrcRange, attrs[0].Name)
	}

	var sections []ports.Section
	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			return nil, fmt.Errorf("%s: section %q takes no labels", block.DefRange(), block.Type)
		}
		if len(block.Body.Blocks) > 0 {
			return nil, fmt.Errorf("%s: nested blocks are not supported", block.Body.Blocks[0].DefRange())
		}

		sec := ports.Section{Name: block.Type}
		for _, attr := range sortedAttributes(block.Body) {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("%s.%s: %w", block.Type, attr.Name, diags)
			}
			v, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", block.Type, attr.Name, err)
			}
			if v, err = flatValue(v); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", block.Type, attr.Name, err)
			}
			sec.Items = append(sec.Items, ports.Item{Name: attr.Name, Value: v})
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

// sortedAttributes returns attributes in source order.
func sortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})
	return attrs
}

// ctyToNative converts a cty.Value to its natural Go counterpart. Whole
// numbers become int64, the rest float64.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		return map[string]any{}, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}

func encodeHCL(sections []ports.Section) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	for i, sec := range sections {
		if i > 0 {
			root.AppendNewline()
		}
		block := root.AppendNewBlock(sec.Name, nil)
		for _, it := range sec.Items {
			cv, err := toCty(it.Value)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", sec.Name, it.Name, err)
			}
			block.Body().SetAttributeValue(it.Name, cv)
		}
	}
	return f.Bytes(), nil
}

func toCty(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(x), nil
	case bool:
		return cty.BoolVal(x), nil
	case time.Time:
		return cty.StringVal(x.Format(time.RFC3339)), nil
	case []any:
		if len(x) == 0 {
			return cty.EmptyTupleVal, nil
		}
		vals := make([]cty.Value, len(x))
		for i, e := range x {
			cv, err := toCty(e)
			if err != nil {
				return cty.NilVal, err
			}
			vals[i] = cv
		}
		return cty.TupleVal(vals), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cty.NumberIntVal(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return cty.NumberUIntVal(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return cty.NumberFloatVal(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		seq := make([]any, rv.Len())
		for i := range seq {
			seq[i] = rv.Index(i).Interface()
		}
		return toCty(seq)
	}
	return cty.NilVal, fmt.Errorf("unsupported value %T", v)
}
