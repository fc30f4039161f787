package policy

import "fmt"

// Rule names a business rule. The values are part of the public error
// contract and appear as details.rule.
type Rule string

const (
	RuleSkillMismatch Rule = "skill_mismatch"
	RuleWelfareLimit  Rule = "welfare_limit"
	RuleOverlap       Rule = "overlap"
	RuleLeadTime      Rule = "lead_time"
	RuleDuration      Rule = "duration"
)

// Violation is a rejected business rule with optional structured details.
type Violation struct {
	Rule    Rule
	Message string
	Details map[string]any
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Message)
}

func violation(rule Rule, format string, args ...any) *Violation {
	return &Violation{Rule: rule, Message: fmt.Sprintf(format, args...)}
}
