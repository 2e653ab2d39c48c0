package static

import _ "embed"

// DefaultRulesYAML contains the rule set a fresh store is seeded with.
//
//go:embed default_rules.yaml
var DefaultRulesYAML []byte
