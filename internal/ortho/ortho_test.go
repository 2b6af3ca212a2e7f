// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ortho

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/emit-toolkit/internal/product"
)

// testCube builds a 2x2 raw cube with 2 bands whose values encode their
// source position: 100*dt + 10*ct + band.
func testCube() *product.Cube {
	c := &product.Cube{Downtrack: 2, Crosstrack: 2, Bands: 2, FillValue: -9999}
	for dt := 0; dt < 2; dt++ {
		for ct := 0; ct < 2; ct++ {
			for b := 0; b < 2; b++ {
				c.Data = append(c.Data, float32(100*dt+10*ct+b))
			}
		}
	}
	return c
}

// testGLT maps a 2x3 output grid: the middle column is unmapped, the
// corners reference the four raw pixels. Indices are 1-based.
func testGLT() *product.GLT {
	return &product.GLT{
		Width:  3,
		Height: 2,
		X:      []int32{1, 0, 2, 1, 0, 2},
		Y:      []int32{1, 0, 1, 2, 0, 2},
		Geotransform: [6]float64{-62, 0.0005, 0, -39, 0, -0.0005},
		SpatialRef:   `GEOGCS["WGS 84"]`,
	}
}

func TestApply(t *testing.T) {
	r, err := Apply(testCube(), testGLT(), nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if r.Width != 3 || r.Height != 2 || r.Bands != 2 {
		t.Fatalf("raster shape = %d x %d x %d", r.Width, r.Height, r.Bands)
	}

	// (0,0) ← raw (0,0): values 0, 1.
	s, err := r.At(0, 0)
	if err != nil {
		t.Fatalf("At() error = %v", err)
	}
	if s[0] != 0 || s[1] != 1 {
		t.Errorf("At(0,0) = %v", s)
	}

	// (2,1) ← raw (dt=1, ct=1): values 110, 111.
	s, _ = r.At(2, 1)
	if s[0] != 110 || s[1] != 111 {
		t.Errorf("At(2,1) = %v", s)
	}

	// Middle column is unmapped fill.
	s, _ = r.At(1, 0)
	if s[0] != -9999 || s[1] != -9999 {
		t.Errorf("unmapped cell = %v, want fill", s)
	}
	if r.Mapped(1, 0) {
		t.Error("Mapped(1,0) = true for unmapped cell")
	}
	if !r.Mapped(0, 0) {
		t.Error("Mapped(0,0) = false for mapped cell")
	}

	// Geotransform and CRS carry through.
	if r.Geotransform[0] != -62 || r.SpatialRef == "" {
		t.Errorf("georeferencing not carried: %+v %q", r.Geotransform, r.SpatialRef)
	}
}

func TestApplyBandSubset(t *testing.T) {
	r, err := Apply(testCube(), testGLT(), []int{1})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if r.Bands != 1 {
		t.Fatalf("bands = %d, want 1", r.Bands)
	}
	s, _ := r.At(2, 1)
	if s[0] != 111 {
		t.Errorf("At(2,1) = %v, want [111]", s)
	}
}

func TestApplyBadBandIndex(t *testing.T) {
	if _, err := Apply(testCube(), testGLT(), []int{5}); err == nil {
		t.Fatal("Apply() expected error for band index out of range")
	}
}

func TestApplyOutOfRangeGLT(t *testing.T) {
	glt := testGLT()
	glt.X[0] = 99
	_, err := Apply(testCube(), glt, nil)
	if err == nil || !strings.Contains(err.Error(), "outside") {
		t.Fatalf("Apply() error = %v, want out-of-range", err)
	}
}

func TestApplyShapeMismatch(t *testing.T) {
	glt := testGLT()
	glt.X = glt.X[:4]
	if _, err := Apply(testCube(), glt, nil); err == nil {
		t.Fatal("Apply() expected error for GLT shape mismatch")
	}
}

func TestMappedFraction(t *testing.T) {
	got := MappedFraction(testGLT())
	want := 4.0 / 6.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("MappedFraction() = %v, want %v", got, want)
	}
	if MappedFraction(&product.GLT{}) != 0 {
		t.Error("MappedFraction(empty) != 0")
	}
}

func TestWriteENVI(t *testing.T) {
	r, err := Apply(testCube(), testGLT(), nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	r.Wavelengths = []float64{650.1, 860.5}

	path := filepath.Join(t.TempDir(), "scene")
	if err := WriteENVI(r, path); err != nil {
		t.Fatalf("WriteENVI() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading image: %v", err)
	}
	wantLen := r.Width * r.Height * r.Bands * 4
	if len(data) != wantLen {
		t.Fatalf("image is %d bytes, want %d", len(data), wantLen)
	}

	// BSQ: first band plane first. Cell (0,0) band 0 is value 0; the
	// second plane starts with cell (0,0) band 1, value 1.
	first := math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))
	if first != 0 {
		t.Errorf("band 0 cell 0 = %v, want 0", first)
	}
	plane := r.Width * r.Height * 4
	second := math.Float32frombits(binary.LittleEndian.Uint32(data[plane : plane+4]))
	if second != 1 {
		t.Errorf("band 1 cell 0 = %v, want 1", second)
	}

	hdr, err := os.ReadFile(path + ".hdr")
	if err != nil {
		t.Fatalf("reading header: %v", err)
	}
	for _, want := range []string{
		"ENVI\n",
		"samples = 3",
		"lines = 2",
		"bands = 2",
		"data type = 4",
		"interleave = bsq",
		"byte order = 0",
		"data ignore value = -9999",
		"map info = {Geographic Lat/Lon, 1, 1, -62, -39, 0.0005, 0.0005, WGS-84}",
		"wavelength = {650.1, 860.5}",
	} {
		if !strings.Contains(string(hdr), want) {
			t.Errorf("header missing %q:\n%s", want, hdr)
		}
	}
}
