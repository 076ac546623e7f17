package interp

import (
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/fa/pkg/alias"
)

// StopIfEmpty is the control keyword ending a run early when the current
// address set is empty.
const StopIfEmpty = "stop-if-empty"

// Result is the outcome of one pipeline run.
type Result struct {
	// Addresses is the final address set.
	Addresses Addresses
	// History holds the address set produced by each executed instruction.
	History []Addresses
}

type stepStatus int

const (
	stepOK stepStatus = iota
	// stepRecoverable means the command failed but the run may go on with
	// an empty set for this step.
	stepRecoverable
	// stepFatal aborts the run.
	stepFatal
)

type stepResult struct {
	status    stepStatus
	addresses Addresses
	err       error
}

// Run evaluates instructions starting from seed. On a fatal error the
// returned Result still holds the history recorded up to the failure.
func (i *Interpreter) Run(rc RunContext, instructions []string, seed Addresses) (*Result, error) {
	aliases, err := i.Aliases(rc)
	if err != nil {
		return nil, err
	}

	ctx := i.newContext(rc)
	res := &Result{History: []Addresses{}}
	addresses := seed.Clone()

	for idx, raw := range instructions {
		line := strings.TrimSpace(raw)

		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		if line == StopIfEmpty {
			if len(addresses) == 0 {
				log.WithField("line", idx+1).Debug("stop-if-empty: no addresses left")
				res.Addresses = addresses
				return res, nil
			}
			continue
		}

		line = alias.Resolve(line, aliases, rc.AliasMode)
		step := i.step(ctx, line, addresses)

		switch step.status {
		case stepFatal:
			res.Addresses = addresses
			return res, step.err
		case stepRecoverable:
			log.WithError(step.err).WithField("line", idx+1).Warnf("failed to run: %s", line)
			step.addresses = Addresses{}
		}

		if rc.Decremental && len(step.addresses) == 0 && len(addresses) > 0 {
			log.WithFields(log.Fields{
				"line": idx + 1,
				"kept": len(addresses),
			}).Debugf("decremental: '%s' emptied the set", line)
			res.Addresses = addresses
			return res, nil
		}

		log.WithFields(log.Fields{
			"line":  idx + 1,
			"count": len(step.addresses),
		}).Debug(line)

		addresses = step.addresses
		res.History = append(res.History, addresses)
	}

	res.Addresses = addresses
	return res, nil
}

func (i *Interpreter) step(ctx *Context, line string, addresses Addresses) stepResult {
	name, args, err := Tokenize(line)
	if err == nil {
		var out Addresses
		out, err = i.registry.Dispatch(ctx, name, args, addresses.Clone())
		if err == nil {
			return stepResult{status: stepOK, addresses: out}
		}
	}
	if isFatal(err) || ctx.run.Policy == PolicyStrict {
		return stepResult{status: stepFatal, err: err}
	}
	return stepResult{status: stepRecoverable, err: err}
}
