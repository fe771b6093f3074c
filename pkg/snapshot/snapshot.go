package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"pokerroom-server/internal/util"
)

var (
	callCount = make(map[string]int)
	lock      sync.Mutex
)

// ValidateSnapshot compares the JSON form of obj against testdata/<test func>-<n>.json
// A missing file is written instead of compared. Set SNAPSHOT_UPDATE=1 to rewrite every file.
// depth is the number of helper frames between the test function and this call.
func ValidateSnapshot(t *testing.T, obj interface{}, depth int, msgAndArgs ...interface{}) {
	t.Helper()

	filename := nextFilename(depth + 2)

	actual, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		t.Fatalf("could not marshal snapshot: %v", err)
	}

	expected, err := os.ReadFile(filename)
	if os.IsNotExist(err) || util.Getenv("SNAPSHOT_UPDATE", "") == "1" {
		write(t, filename, actual)
		return
	} else if err != nil {
		t.Fatalf("could not read snapshot: %v", err)
	}

	if !assert.Equal(t, strings.TrimSpace(string(expected)), strings.TrimSpace(string(actual)), msgAndArgs...) {
		t.Logf("snapshot %s", filename)
	}
}

// nextFilename names the snapshot after the calling function and how many snapshots it has taken
func nextFilename(skip int) string {
	pc, _, _, _ := runtime.Caller(skip)
	funcName := filepath.Base(runtime.FuncForPC(pc).Name())

	lock.Lock()
	call := callCount[funcName]
	callCount[funcName] = call + 1
	lock.Unlock()

	return filepath.Join("testdata", fmt.Sprintf("%s-%d.json", funcName, call))
}

func write(t *testing.T, filename string, data []byte) {
	t.Helper()

	logrus.WithField("filename", filename).Info("writing snapshot file")
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		t.Fatalf("could not create snapshot directory: %v", err)
	}

	if err := os.WriteFile(filename, append(data, '\n'), 0644); err != nil {
		t.Fatalf("could not write snapshot: %v", err)
	}
}
