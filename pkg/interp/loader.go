package interp

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/fa/pkg/signature"
)

// LoadByPath loads a signature file. A path relative to the project folder
// is preferred over the literal path when it exists.
func (i *Interpreter) LoadByPath(rc RunContext, path string) (*signature.Signature, error) {
	local := filepath.Join(rc.ProjectDir(), path)
	if _, err := os.Stat(local); err == nil {
		path = local
	}
	return loadSignature(path)
}

// Signatures loads every signature file of the active project.
//
// Projects are hierarchical: the walk includes the signatures of nested
// projects, so "ios" also evaluates "ios/kernel". Selecting "ios/kernel"
// only loads that folder.
func (i *Interpreter) Signatures(rc RunContext) ([]*signature.Signature, error) {
	var sigs []*signature.Signature
	root := rc.ProjectDir()
	if err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !signature.IsSignatureFile(path) {
			return nil
		}
		sig, err := loadSignature(path)
		if err != nil {
			return err
		}
		sigs = append(sigs, sig)
		return nil
	}); err != nil {
		return nil, err
	}
	return sigs, nil
}

// LoadByName returns every signature of the active project defining symbol.
func (i *Interpreter) LoadByName(rc RunContext, symbol string) ([]*signature.Signature, error) {
	all, err := i.Signatures(rc)
	if err != nil {
		return nil, err
	}
	var sigs []*signature.Signature
	for _, sig := range all {
		if sig.Name == symbol {
			sigs = append(sigs, sig)
		}
	}
	if len(sigs) == 0 {
		return nil, fmt.Errorf("%w: no signature found for: %s", ErrSignatureNotFound, symbol)
	}
	return sigs, nil
}

// Evaluate runs a signature's instructions from an empty seed.
func (i *Interpreter) Evaluate(rc RunContext, sig *signature.Signature, decremental bool) (*Result, error) {
	rc.Decremental = decremental
	log.WithFields(log.Fields{
		"symbol":      sig.Name,
		"file":        sig.Path,
		"decremental": decremental,
	}).Debug("Evaluating signature")
	return i.Run(rc, sig.Instructions, nil)
}

// FindByPath loads and evaluates one signature file.
func (i *Interpreter) FindByPath(rc RunContext, path string, decremental bool) (*Result, error) {
	sig, err := i.LoadByPath(rc, path)
	if err != nil {
		return nil, err
	}
	return i.Evaluate(rc, sig, decremental)
}

// Find evaluates every signature defining symbol and returns the union of
// their results, in first-seen order.
func (i *Interpreter) Find(rc RunContext, symbol string, decremental bool) (Addresses, error) {
	sigs, err := i.LoadByName(rc, symbol)
	if err != nil {
		return nil, err
	}
	var results []Addresses
	evaluated := 0
	for _, sig := range sigs {
		ok, err := i.supports(rc, sig)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		res, err := i.Evaluate(rc, sig, decremental)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %s: %w", sig.Path, err)
		}
		results = append(results, res.Addresses)
		evaluated++
	}
	if evaluated == 0 {
		return nil, fmt.Errorf("%w: no signature for %s supports target version %s", ErrSignatureNotFound, symbol, rc.TargetVersion)
	}
	return Union(results...), nil
}

// Save persists sig into the active project without overwriting existing
// definitions and returns the written path.
func (i *Interpreter) Save(rc RunContext, sig *signature.Signature) (string, error) {
	return signature.Save(rc.ProjectDir(), sig)
}

// ListProjects returns the project folders below the signatures root,
// relative to it, skipping hidden folders.
func (i *Interpreter) ListProjects(rc RunContext) ([]string, error) {
	var projects []string
	if err := filepath.WalkDir(rc.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == rc.Root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(rc.Root, path)
		if err != nil {
			return err
		}
		projects = append(projects, rel)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to list projects in %s: %w", rc.Root, err)
	}
	sort.Strings(projects)
	return projects, nil
}

func (i *Interpreter) supports(rc RunContext, sig *signature.Signature) (bool, error) {
	ok, err := sig.Supports(rc.TargetVersion)
	if errors.Is(err, signature.ErrTargetVersion) {
		return false, err
	}
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrSignatureParse, sig.Path, err)
	}
	if !ok {
		log.WithFields(log.Fields{
			"symbol": sig.Name,
			"file":   sig.Path,
			"target": rc.TargetVersion,
		}).Debug("Signature does not support target version")
	}
	return ok, nil
}

func loadSignature(path string) (*signature.Signature, error) {
	sig, err := signature.Load(path)
	if err != nil {
		if errors.Is(err, signature.ErrInvalid) {
			log.WithField("file", path).Error("error in signature")
			return nil, fmt.Errorf("%w: %s: %w", ErrSignatureParse, path, err)
		}
		return nil, fmt.Errorf("failed to read signature %s: %w", path, err)
	}
	return sig, nil
}
