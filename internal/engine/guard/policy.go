// Copyright 2025 Arcade Team
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

package guard

import (
	"fmt"
	"strings"

	"github.com/campuscare/campuscare/internal/engine/model"
)

type CommentPolicy string

const (
	CommentAnyone    CommentPolicy = "anyone"
	CommentAdminOnly CommentPolicy = "admin-only"
)

func ParseCommentPolicy(s string) (CommentPolicy, error) {
	switch CommentPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CommentAnyone:
		return CommentAnyone, nil
	case CommentAdminOnly:
		return CommentAdminOnly, nil
	}
	return "", fmt.Errorf("unknown comment policy %q", s)
}

func (c CommentPolicy) permits(p model.Principal, _ *model.ForumPost) bool {
	if c == CommentAdminOnly {
		return p.IsAdmin()
	}
	return true
}

// Policy carries the deployment-level authorization knobs.
type Policy struct {
	// GlobalAdmin lets admins act across every organization.
	GlobalAdmin   bool          `mapstructure:"globalAdmin"`
	CommentPolicy CommentPolicy `mapstructure:"commentPolicy"`
}

func (p *Policy) SetDefaults() {
	if p.CommentPolicy == "" {
		p.CommentPolicy = CommentAnyone
	}
}

func (p *Policy) Validate() error {
	cp, err := ParseCommentPolicy(string(p.CommentPolicy))
	if err != nil {
		return err
	}
	p.CommentPolicy = cp
	return nil
}
