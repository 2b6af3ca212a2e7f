// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package product

import "fmt"

// The netcdf library returns variable values as nested Go slices whose
// element type depends on the file ([]float32, [][]float64, [][][]int32,
// and so on). The helpers below flatten those into the single shapes the
// rest of the toolkit works with.

// flattenFloat32 flattens a 1-3 dimensional numeric value into []float32.
func flattenFloat32(v any) ([]float32, error) {
	switch x := v.(type) {
	case []float32:
		return x, nil
	case []float64:
		out := make([]float32, len(x))
		for i, f := range x {
			out[i] = float32(f)
		}
		return out, nil
	case [][]float32:
		var out []float32
		for _, row := range x {
			out = append(out, row...)
		}
		return out, nil
	case [][]float64:
		var out []float32
		for _, row := range x {
			for _, f := range row {
				out = append(out, float32(f))
			}
		}
		return out, nil
	case [][][]float32:
		var out []float32
		for _, plane := range x {
			for _, row := range plane {
				out = append(out, row...)
			}
		}
		return out, nil
	case [][][]float64:
		var out []float32
		for _, plane := range x {
			for _, row := range plane {
				for _, f := range row {
					out = append(out, float32(f))
				}
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// flattenFloat64 flattens a 1-2 dimensional numeric value into []float64.
func flattenFloat64(v any) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return x, nil
	case []float32:
		out := make([]float64, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return out, nil
	case [][]float64:
		var out []float64
		for _, row := range x {
			out = append(out, row...)
		}
		return out, nil
	case [][]float32:
		var out []float64
		for _, row := range x {
			for _, f := range row {
				out = append(out, float64(f))
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// flattenInt32 flattens a 1-2 dimensional integer value into []int32.
// EMIT GLT arrays are int32 but appear as float64 in some repacked files.
func flattenInt32(v any) ([]int32, error) {
	switch x := v.(type) {
	case []int32:
		return x, nil
	case [][]int32:
		var out []int32
		for _, row := range x {
			out = append(out, row...)
		}
		return out, nil
	case []int64:
		out := make([]int32, len(x))
		for i, n := range x {
			out[i] = int32(n)
		}
		return out, nil
	case [][]int64:
		var out []int32
		for _, row := range x {
			for _, n := range row {
				out = append(out, int32(n))
			}
		}
		return out, nil
	case []float64:
		out := make([]int32, len(x))
		for i, f := range x {
			out[i] = int32(f)
		}
		return out, nil
	case [][]float64:
		var out []int32
		for _, row := range x {
			for _, f := range row {
				out = append(out, int32(f))
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// shape2 reports the row/column dimensions of a 2-dimensional value.
func shape2(v any) (rows, cols int, err error) {
	switch x := v.(type) {
	case [][]float32:
		if len(x) == 0 {
			return 0, 0, nil
		}
		return len(x), len(x[0]), nil
	case [][]float64:
		if len(x) == 0 {
			return 0, 0, nil
		}
		return len(x), len(x[0]), nil
	case [][]int32:
		if len(x) == 0 {
			return 0, 0, nil
		}
		return len(x), len(x[0]), nil
	case [][]int64:
		if len(x) == 0 {
			return 0, 0, nil
		}
		return len(x), len(x[0]), nil
	default:
		return 0, 0, fmt.Errorf("value type %T is not 2-dimensional", v)
	}
}

// shape3 reports the dimensions of a 3-dimensional value.
func shape3(v any) (d0, d1, d2 int, err error) {
	switch x := v.(type) {
	case [][][]float32:
		if len(x) == 0 || len(x[0]) == 0 {
			return 0, 0, 0, fmt.Errorf("empty 3-dimensional value")
		}
		return len(x), len(x[0]), len(x[0][0]), nil
	case [][][]float64:
		if len(x) == 0 || len(x[0]) == 0 {
			return 0, 0, 0, fmt.Errorf("empty 3-dimensional value")
		}
		return len(x), len(x[0]), len(x[0][0]), nil
	default:
		return 0, 0, 0, fmt.Errorf("value type %T is not 3-dimensional", v)
	}
}

// attrFloat64s reads a numeric attribute value as []float64. Attributes
// come back as scalars or slices depending on length.
func attrFloat64s(v any) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return x, nil
	case []float32:
		out := make([]float64, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return out, nil
	case float64:
		return []float64{x}, nil
	case float32:
		return []float64{float64(x)}, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %T", v)
	}
}

// attrFloat32 reads a scalar numeric attribute as float32.
func attrFloat32(v any) (float32, error) {
	vals, err := attrFloat64s(v)
	if err != nil || len(vals) == 0 {
		return 0, fmt.Errorf("not a scalar numeric attribute: %v", err)
	}
	return float32(vals[0]), nil
}

// attrString reads a string attribute, tolerating []string of length 1.
func attrString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []string:
		if len(x) == 1 {
			return x[0], nil
		}
		return "", fmt.Errorf("string attribute has %d values", len(x))
	default:
		return "", fmt.Errorf("unsupported attribute type %T", v)
	}
}
