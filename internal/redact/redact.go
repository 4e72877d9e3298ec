// Package redact strips credentials, connection strings, SQL and file paths
// from error text before it reaches logs or error responses.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	JWTPlaceholder        = "[REDACTED_JWT]"
	PathPlaceholder       = "[REDACTED_PATH]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	StackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// rules run in order; earlier rules consume text that later ones would
// otherwise match partially.
var rules = []rule{
	{
		re:   regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*`),
		repl: StackPlaceholder,
	},
	{
		re:   regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		repl: JWTPlaceholder,
	},
	{
		// userinfo of any URL-style DSN; the host is kept
		re:   regexp.MustCompile(`(?i)\b([a-z][a-z0-9+.-]*://)[^\s/@]+@`),
		repl: "${1}" + CredentialPlaceholder + "@",
	},
	{
		re:   regexp.MustCompile(`(?i)\b(password|passwd|pwd|jwt_secret|secret|api[_-]?key|token)\s*[=:]\s*['"]?[^'"&\s\[][^'"&\s]*['"]?`),
		repl: "${1}=" + CredentialPlaceholder,
	},
	{
		re:   regexp.MustCompile(`\bBearer\s+[A-Za-z0-9._~+/=-]+`),
		repl: "Bearer " + CredentialPlaceholder,
	},
	{
		re:   regexp.MustCompile(`\b(SELECT|INSERT|UPDATE|DELETE)\s[\s\S]*`),
		repl: "${1} " + SQLPlaceholder,
	},
	{
		re:   regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		repl: EmailPlaceholder,
	},
	{
		re:   regexp.MustCompile(`(?:/[\w.-]+){2,}`),
		repl: PathPlaceholder,
	},
}

// String redacts sensitive fragments of s.
func String(s string) string {
	for _, r := range rules {
		if s == "" {
			break
		}
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// Error redacts sensitive fragments of err's message. A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
