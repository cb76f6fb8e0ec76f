/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package windower

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	origVersion, origCommit, origTag, origState := version, gitCommit, gitTag, gitTreeState
	defer func() {
		version, gitCommit, gitTag, gitTreeState = origVersion, origCommit, origTag, origState
	}()

	tests := []struct {
		name   string
		commit string
		tag    string
		state  string
		want   string
	}{
		{name: "tagged release on a clean tree", commit: "1234567890abcdef", tag: "v1.2.3", state: "clean", want: "v1.2.3"},
		{name: "dirty tree falls back to commit", commit: "1234567890abcdef", tag: "v1.2.3", state: "dirty", want: "dev+1234567.dirty"},
		{name: "no commit information", want: "dev+unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, gitCommit, gitTag, gitTreeState = "dev", tt.commit, tt.tag, tt.state

			v := GetVersion()
			assert.Equal(t, tt.want, v.Version)
			assert.Equal(t, runtime.Version(), v.GoVersion)
			assert.Equal(t, fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH), v.Platform)
		})
	}
}

func TestVersion_String(t *testing.T) {
	v := Version{
		Version:      "1.0.0",
		GitCommit:    "abcdef1234567890",
		GitTag:       "v1.0.0",
		GitTreeState: "clean",
	}
	assert.Contains(t, v.String(), "Version: 1.0.0")
	assert.Contains(t, v.String(), "GitTreeState: clean")
}
