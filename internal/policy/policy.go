// Package policy implements the optional acceptance policy: a configured
// boolean expression evaluated over successfully verified assertions, e.g.
// to restrict accepted principals to a set of email domains.
package policy

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rhaphazard/browserid/internal/core"
)

// Env is what the expression sees.
type Env struct {
	Email    string `expr:"email"`
	Issuer   string `expr:"issuer"`
	Audience string `expr:"audience"`
}

// Policy is a compiled acceptance policy. A nil *Policy accepts everything.
type Policy struct {
	source  string
	program *vm.Program
}

// Compile validates and compiles the expression. An empty source yields a
// nil policy.
func Compile(source string) (*Policy, error) {
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling acceptance policy: %w", err)
	}
	return &Policy{source: source, program: program}, nil
}

// Source returns the policy expression text.
func (p *Policy) Source() string {
	if p == nil {
		return ""
	}
	return p.source
}

// Accept reports whether the verification result passes the policy.
func (p *Policy) Accept(result *core.VerificationResult) (bool, error) {
	if p == nil {
		return true, nil
	}
	out, err := expr.Run(p.program, Env{
		Email:    result.Email,
		Issuer:   result.Issuer,
		Audience: result.Audience,
	})
	if err != nil {
		return false, fmt.Errorf("evaluating acceptance policy: %w", err)
	}
	ok, _ := out.(bool)
	return ok, nil
}
