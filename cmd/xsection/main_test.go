package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMapSimplifyArea(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "xs.csv",
		"Dist left bank,0\nDist right bank,0\nMin bank height,0\nlat,lon\n"+
			"0.001,10,1\n0.001,50,2\n0.001,90,1.5\n")

	mapped := filepath.Join(dir, "xs_MAPPED.csv")
	_, err := run(t, "map", input, "--line", "0,0,100,0", "-o", mapped, "--set", "projection.target_epsg=4326")
	require.NoError(t, err)

	out, err := run(t, "area", mapped)
	require.NoError(t, err)
	assert.Equal(t, "162.500\n", out)

	out, err = run(t, "simplify", mapped, "--set", "simplify.dist_thresh_pct=60")
	require.NoError(t, err)
	assert.Contains(t, out, "station,depth\n")
}

func TestInterpolate(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "gap.csv", "station,depth\n0,5\n1,-9999\n2,-9999\n3,8\n")

	out, err := run(t, "interpolate", input)
	require.NoError(t, err)
	assert.Equal(t, "station,depth\n0,5\n1,6\n2,7\n3,8\n", out)
}

func TestSample(t *testing.T) {
	dir := t.TempDir()
	dem := writeFile(t, dir, "dem.asc", "ncols 2\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 10\n4 6\n")

	out, err := run(t, "sample", "15", "5", "--dem", dem, "--set", "dem.neighbours=false")
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)
}

func TestMapRequiresLine(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "xs.csv", "Dist left bank,0\nDist right bank,0\nMin bank height,0\n0.001,10,1\n")

	_, err := run(t, "map", input, "--set", "projection.target_epsg=4326")
	assert.Error(t, err)
}

func TestParseSets(t *testing.T) {
	got, err := parseSets([]string{"simplify.stats=mean", " nodata.value = -1 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"simplify.stats": "mean", "nodata.value": "-1"}, got)

	_, err = parseSets([]string{"novalue"})
	assert.Error(t, err)
}

func TestParseLine(t *testing.T) {
	line, err := parseLine("1, 2, 3, 4")
	require.NoError(t, err)
	assert.Equal(t, 1.0, line.A.X)
	assert.Equal(t, 4.0, line.B.Y)

	_, err = parseLine("1,2,3")
	assert.Error(t, err)
}
