// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mockgen

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type Generator struct {
	mock.Mock
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	args := g.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
