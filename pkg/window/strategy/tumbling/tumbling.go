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

// Package tumbling implements tumbling windows, the degenerate hopping case
// where the advance equals the window size. Windows never overlap, so every
// element belongs to exactly one window.
package tumbling

import (
	"fmt"

	"github.com/numaproj/windower/pkg/window"
	"github.com/numaproj/windower/pkg/window/strategy/hopping"
)

// NewWindower returns a tumbling Windower for the given specification. It fails
// with window.ErrInvalidConfiguration if the specification is not tumbling,
// i.e. its advance differs from its size.
func NewWindower(spec window.TimeWindows) (*hopping.Hopping, error) {
	if spec.Advance() != spec.Size() {
		return nil, fmt.Errorf("%w: tumbling windows require advance == size, got advance %v and size %v",
			window.ErrInvalidConfiguration, spec.Advance(), spec.Size())
	}
	return hopping.NewWindower(spec), nil
}
