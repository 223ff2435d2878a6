package signature

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// Path returns the signature file a simulator run leaves in a test's
// working directory, named after the DUT (e.g. DUT-spike.signature).
func Path(testWorkDir, dutName string) string {
	return filepath.Join(testWorkDir, dutName+".signature")
}

// BinaryPath returns the raw binary artifact produced by the objcopy
// step of the spike flow.
func BinaryPath(testWorkDir string) string {
	return filepath.Join(testWorkDir, "my.bin")
}

// TestDir returns the per-test dut directory the compliance framework
// lays out under a suite work dir, e.g. <workDir>/I/src/add-01.S/dut.
func TestDir(workDir, extension, testName string) string {
	return filepath.Join(workDir, extension, "src", testName+".S", "dut")
}

// Load reads a signature file: one 32-bit hexadecimal word per line,
// no prefix. Any line that does not parse is an error naming the line
// number; downstream consumers compare words against memory, so a
// silently skipped line would shift every later comparison.
func Load(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read signature")
	}
	words, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "signature %s", path)
	}
	return words, nil
}

// Parse decodes signature data.
func Parse(data []byte) ([]uint32, error) {
	var words []uint32
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		word, err := strconv.ParseUint(scanner.Text(), 16, 32)
		if err != nil {
			return nil, errors.Newf("line %d: %q is not a 32-bit hex word", line, scanner.Text())
		}
		words = append(words, uint32(word))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan signature")
	}
	return words, nil
}

// Diff renders a unified diff between a reference signature and a DUT
// signature. An empty string means the files match. Pass/fail
// classification stays with the compliance framework; this is a local
// triage aid.
func Diff(refPath, dutPath string) (string, error) {
	ref, err := os.ReadFile(refPath)
	if err != nil {
		return "", errors.Wrap(err, "read reference signature")
	}
	dut, err := os.ReadFile(dutPath)
	if err != nil {
		return "", errors.Wrap(err, "read dut signature")
	}

	diff := difflib.UnifiedDiff{
		A:        strings.Split(string(ref), "\n"),
		B:        strings.Split(string(dut), "\n"),
		FromFile: refPath,
		ToFile:   dutPath,
		Context:  3,
	}
	diffText, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", errors.Wrap(err, "render diff")
	}
	if strings.TrimSpace(diffText) == "" {
		return "", nil
	}
	return diffText, nil
}
