// Package policy implements the static command classifier that gates
// restricted execution.
//
// The classifier is a single-pass pattern matcher over a declarative rule
// table: an allow-list of known read-only subcommands is consulted first,
// then a deny-list of destructive or exfiltration-risk operations. Commands
// matching neither list are permitted by default; construct the classifier
// with FailClosed to invert that default.
//
// The classifier performs no shell parsing. It has no awareness of quoting,
// command substitution, or chained commands beyond what individual patterns
// catch, and it never executes anything. Matching is case-insensitive on a
// trimmed copy of the command; the original string is untouched.
package policy

import (
	"regexp"
	"strings"
)

// Decision is the classification outcome for a command.
type Decision int

const (
	// Allowed indicates the command may be executed in restricted mode.
	Allowed Decision = iota

	// Denied indicates the command matched a deny rule and must not
	// reach the remote shell.
	Denied
)

// String returns the string representation of a Decision.
func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Category groups rules by the kind of operation they match.
type Category string

// Deny categories.
const (
	CategoryFilesystem  Category = "filesystem-destruction"
	CategoryPermissions Category = "system-permission-change"
	CategoryRedirection Category = "system-path-redirection"
	CategoryDiskWrite   Category = "low-level-disk-write"
	CategoryService     Category = "service-control"
	CategoryPackage     Category = "package-mutation"
	CategoryNetwork     Category = "network-reconfiguration"
	CategoryCredential  Category = "credential-modification"
	CategoryPrivilege   Category = "privilege-escalation"
	CategoryGit         Category = "destructive-git"
	CategoryContainer   Category = "destructive-container"
	CategoryEditor      Category = "interactive-editor"
	CategoryArchive     Category = "archive-extraction"
	CategoryCapture     Category = "traffic-capture"
	CategoryBuild       Category = "compiler-build"
	CategoryBackground  Category = "background-process"
	CategoryPipeShell   Category = "pipe-to-interpreter"
)

// Allow categories.
const (
	CategoryServiceQuery   Category = "service-query"
	CategoryGitQuery       Category = "git-query"
	CategoryPackageQuery   Category = "package-query"
	CategoryContainerQuery Category = "container-query"
	CategorySystemQuery    Category = "system-query"
)

// CategoryDefault marks verdicts produced by the unmatched-command default
// rather than by a rule.
const CategoryDefault Category = "default"

// Verdict is the result of classifying one command.
type Verdict struct {
	// Decision is allowed or denied.
	Decision Decision

	// Category is the rule category that produced the decision, or
	// CategoryDefault when no rule matched.
	Category Category

	// Rule is the identifier of the matching rule, empty for defaults.
	Rule string
}

// Config controls classifier construction.
type Config struct {
	// FailClosed denies commands that match neither list. The shipped
	// default is false: unmatched commands are permitted.
	FailClosed bool
}

// Classifier decides whether a command may run in restricted mode.
// The zero value is not usable; call NewClassifier.
type Classifier struct {
	failClosed bool
}

// NewClassifier creates a classifier with the given configuration.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{failClosed: cfg.FailClosed}
}

// Classify evaluates one command string. It is pure and deterministic:
// same input, same verdict, no I/O, no hidden state.
//
// Evaluation order: allow-list, then deny-list, then the default. The
// allow-list is checked first so a read-only subcommand of a tool whose
// other subcommands are destructive (kubectl get vs. kubectl delete) is
// still permitted.
func (c *Classifier) Classify(command string) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(command))

	for _, r := range allowRules {
		if r.pattern.MatchString(normalized) {
			return Verdict{Decision: Allowed, Category: r.category, Rule: r.id}
		}
	}
	for _, r := range denyRules {
		if r.pattern.MatchString(normalized) {
			return Verdict{Decision: Denied, Category: r.category, Rule: r.id}
		}
	}

	if c.failClosed {
		return Verdict{Decision: Denied, Category: CategoryDefault}
	}
	return Verdict{Decision: Allowed, Category: CategoryDefault}
}

// rule is one compiled entry of the policy table.
type rule struct {
	id       string
	category Category
	pattern  *regexp.Regexp
}

// compile builds the rule table, panicking on a malformed pattern. The
// tables are package constants in spirit; a bad pattern is a programming
// error caught by the package tests.
func compile(specs []ruleSpec) []rule {
	rules := make([]rule, 0, len(specs))
	for _, s := range specs {
		rules = append(rules, rule{
			id:       s.id,
			category: s.category,
			pattern:  regexp.MustCompile(s.expr),
		})
	}
	return rules
}

// ruleSpec is the declarative form of a rule before compilation.
type ruleSpec struct {
	id       string
	category Category
	expr     string
}
