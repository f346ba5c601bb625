package test

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// Fixture is a test binary.
type Fixture struct {
	// Name is the short name of the fixture.
	Name string
	// Path is the absolute path to the test binary.
	Path string
	// Source is the absolute path of the test binary source.
	Source string
}

// Fixtures is a map of Fixture.Name to Fixture.
var Fixtures = make(map[string]Fixture)

// FindFixturesDir walks up from the current directory until it finds the
// _fixtures directory.
func FindFixturesDir() string {
	parent := ".."
	fixturesDir := "_fixtures"
	for depth := 0; depth < 10; depth++ {
		if _, err := os.Stat(fixturesDir); err == nil {
			break
		}
		fixturesDir = filepath.Join(parent, fixturesDir)
	}
	return fixturesDir
}

// BuildFixture compiles _fixtures/<name>.go into a temporary executable.
// Fixtures are built once per test binary.
func BuildFixture(t testing.TB, name string) Fixture {
	t.Helper()
	if f, ok := Fixtures[name]; ok {
		return f
	}

	fixturesDir := FindFixturesDir()

	// Make a (good enough) random temporary file name
	r := make([]byte, 4)
	rand.Read(r)
	tmpfile := filepath.Join(os.TempDir(), fmt.Sprintf("%s.%s", name, hex.EncodeToString(r)))
	if runtime.GOOS == "windows" {
		tmpfile += ".exe"
	}

	cmd := exec.Command("go", "build", "-o", tmpfile, name+".go")
	cmd.Dir = fixturesDir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Error compiling %s: %v\n%s", name, err, out)
	}

	source, _ := filepath.Abs(filepath.Join(fixturesDir, name+".go"))
	Fixtures[name] = Fixture{Name: name, Path: tmpfile, Source: filepath.ToSlash(source)}
	return Fixtures[name]
}

// RunTestsWithFixtures runs the tests and deletes the compiled fixtures
// before returning the exit status.
func RunTestsWithFixtures(m *testing.M) int {
	status := m.Run()

	// Remove the fixtures.
	for _, f := range Fixtures {
		os.Remove(f.Path)
	}
	return status
}
