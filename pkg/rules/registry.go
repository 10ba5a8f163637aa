package rules

import "sync"

// Category groups built-in rules by what they detect.
type Category string

const (
	CategoryCredential Category = "credential"
	CategoryPII        Category = "pii"
	CategoryNetwork    Category = "network"
)

var (
	builtinOnce       sync.Once
	builtinByCategory map[Category][]Rule
	builtinAll        []Rule
)

// Builtin returns a copy of every built-in rule in declaration order.
func Builtin() []Rule {
	initBuiltin()
	out := make([]Rule, len(builtinAll))
	copy(out, builtinAll)
	return out
}

// BuiltinByCategory returns a copy of the built-in rules in one category.
// Unknown categories yield an empty slice.
func BuiltinByCategory(c Category) []Rule {
	initBuiltin()
	src := builtinByCategory[c]
	out := make([]Rule, len(src))
	copy(out, src)
	return out
}

// Categories lists the built-in categories in declaration order.
func Categories() []Category {
	return []Category{CategoryCredential, CategoryPII, CategoryNetwork}
}

func initBuiltin() {
	builtinOnce.Do(func() {
		builtinByCategory = make(map[Category][]Rule)

		register := func(c Category, r Rule) {
			builtinByCategory[c] = append(builtinByCategory[c], r)
			builtinAll = append(builtinAll, r)
		}

		// Credential formats. Key prefixes are case-sensitive by
		// definition; matching them case-insensitively would invite
		// false positives on ordinary prose.
		register(CategoryCredential, Rule{
			ID: "aws_access_key", Pattern: `AKIA[0-9A-Z]{16}`,
			CaseSensitive: true, EntityType: "AWS_KEY", Confidence: 0.95,
		})
		register(CategoryCredential, Rule{
			ID: "openai_api_key", Pattern: `sk-(proj-)?[a-zA-Z0-9]{20,}`,
			CaseSensitive: true, EntityType: "OPENAI_KEY", Confidence: 0.9,
		})
		register(CategoryCredential, Rule{
			ID: "anthropic_api_key", Pattern: `sk-ant-[a-zA-Z0-9\-_]{80,}`,
			CaseSensitive: true, EntityType: "ANTHROPIC_KEY", Confidence: 0.95,
		})
		register(CategoryCredential, Rule{
			ID: "github_token", Pattern: `(ghp|gho|ghu|ghs|ghr)_[a-zA-Z0-9]{36,}`,
			CaseSensitive: true, EntityType: "GITHUB_TOKEN", Confidence: 0.95,
		})
		register(CategoryCredential, Rule{
			ID: "gitlab_token", Pattern: `glpat-[a-zA-Z0-9\-_]{20,}`,
			CaseSensitive: true, EntityType: "GITLAB_TOKEN", Confidence: 0.95,
		})
		register(CategoryCredential, Rule{
			ID: "slack_token", Pattern: `xox[bp]-[a-zA-Z0-9-]{10,}`,
			CaseSensitive: true, EntityType: "SLACK_TOKEN", Confidence: 0.9,
		})
		register(CategoryCredential, Rule{
			ID: "stripe_live_key", Pattern: `(sk|rk)_live_[a-zA-Z0-9]{20,}`,
			CaseSensitive: true, EntityType: "STRIPE_KEY", Confidence: 0.95,
		})
		register(CategoryCredential, Rule{
			ID: "google_api_key", Pattern: `AIza[0-9A-Za-z\-_]{35}`,
			CaseSensitive: true, EntityType: "GOOGLE_KEY", Confidence: 0.9,
		})
		register(CategoryCredential, Rule{
			ID: "npm_token", Pattern: `npm_[a-zA-Z0-9]{36}`,
			CaseSensitive: true, EntityType: "NPM_TOKEN", Confidence: 0.9,
		})
		register(CategoryCredential, Rule{
			ID: "jwt", Pattern: `eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`,
			CaseSensitive: true, EntityType: "JWT", Confidence: 0.8,
		})
		register(CategoryCredential, Rule{
			ID: "private_key_block", Pattern: `-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`,
			CaseSensitive: true, EntityType: "PRIVATE_KEY", Confidence: 1.0,
		})

		// PII shapes.
		register(CategoryPII, Rule{
			ID: "email_address", Pattern: `[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`,
			EntityType: "EMAIL", Confidence: 0.85,
		})
		register(CategoryPII, Rule{
			ID: "us_ssn", Pattern: `\b\d{3}-\d{2}-\d{4}\b`,
			EntityType: "SSN", Confidence: 0.8,
		})
		register(CategoryPII, Rule{
			ID: "us_phone", Pattern: `\b\d{3}-\d{3}-\d{4}\b`,
			EntityType: "PHONE", Confidence: 0.75,
		})
		register(CategoryPII, Rule{
			ID: "credit_card", Pattern: `\b(?:\d{4}[- ]?){3}\d{4}\b`,
			EntityType: "CREDIT_CARD", Confidence: 0.7,
		})

		// Network indicators.
		register(CategoryNetwork, Rule{
			ID: "ipv4_address", Pattern: `\b(?:(?:25[0-5]|2[0-4][0-9]|1[0-9]{2}|[1-9]?[0-9])\.){3}(?:25[0-5]|2[0-4][0-9]|1[0-9]{2}|[1-9]?[0-9])\b`,
			EntityType: "IPV4", Confidence: 0.7,
		})
		register(CategoryNetwork, Rule{
			ID: "db_connection_uri", Pattern: `(postgres|postgresql|mysql|mongodb|redis|amqp)://[^\s"']+`,
			EntityType: "DB_URI", Confidence: 0.9,
		})
	})
}
