package inicheck

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/inicheck/pkg/checkers"
	"github.com/aretw0/inicheck/pkg/ports"
	"github.com/aretw0/inicheck/pkg/schema"
)

// Report is the outcome of a whole-configuration pass.
type Report struct {
	// Results holds one result per checked item: declared items in schema
	// order, then raw items the schema does not recognize.
	Results []*checkers.Result
}

// Valid reports whether every item passed.
func (r *Report) Valid() bool {
	for _, res := range r.Results {
		if !res.Valid() {
			return false
		}
	}
	return true
}

// Failed returns the results with at least one issue.
func (r *Report) Failed() []*checkers.Result {
	var out []*checkers.Result
	for _, res := range r.Results {
		if !res.Valid() {
			out = append(out, res)
		}
	}
	return out
}

// Issues returns every failure of the pass, in order.
func (r *Report) Issues() []*checkers.Issue {
	var out []*checkers.Issue
	for _, res := range r.Results {
		out = append(out, res.IssueList()...)
	}
	return out
}

// Check runs every declared item present in the store through its checker,
// one at a time in schema order, and reports raw items the schema does not
// declare. Absent items are skipped, except critical paths without a default. With WithWriteBack, normalized values are applied as the pass goes.
func (s *Session) Check(ctx context.Context) (*Report, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	report := &Report{}
	for _, entry := range s.master.Entries() {
		_, ok, err := s.store.Get(ctx, entry.Section, entry.Item)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Key(), err)
		}
		if !ok {
			if res := missingCritical(entry); res != nil {
				report.Results = append(report.Results, res)
			}
			continue
		}

		chk, err := s.Checker(entry.Section, entry.Item)
		if err != nil {
			return nil, err
		}
		res, err := chk.Check(ctx)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)

		if s.writeBack && res.Update != nil {
			if err := res.Update.Apply(ctx, s.store); err != nil {
				return nil, err
			}
		}
	}

	unknown, err := s.unknownItems(ctx)
	if err != nil {
		return nil, err
	}
	report.Results = append(report.Results, unknown...)

	s.logger.Info("check complete",
		"items", len(report.Results),
		"failed", len(report.Failed()),
	)
	return report, nil
}

// missingCritical reports a critical path item absent from the store and
// without a default, which would fail the same way if present but empty.
func missingCritical(entry schema.Entry) *checkers.Result {
	if !entry.Type.Critical() || (entry.Default != nil && entry.Default != "") {
		return nil
	}
	kind := "file"
	if entry.Type == schema.TypeCriticalDirectory {
		kind = "directory"
	}
	return &checkers.Result{
		Section: entry.Section,
		Item:    entry.Item,
		Type:    entry.Type,
		Issues: []error{&checkers.Issue{
			Section: entry.Section,
			Item:    entry.Item,
			Kind:    checkers.KindMissing,
			Reason:  fmt.Sprintf("a %s path is required", kind),
		}},
	}
}

func (s *Session) unknownItems(ctx context.Context) ([]*checkers.Result, error) {
	snapshot, err := ports.Snapshot(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to list configuration: %w", err)
	}

	var out []*checkers.Result
	for _, sec := range snapshot {
		for _, it := range sec.Items {
			if s.master.Has(sec.Name, it.Name) {
				continue
			}
			out = append(out, &checkers.Result{
				Section: sec.Name,
				Item:    it.Name,
				Issues: []error{&checkers.Issue{
					Section: sec.Name,
					Item:    it.Name,
					Value:   it.Value,
					Kind:    checkers.KindStructure,
					Reason:  "not a recognized item",
				}},
			})
		}
	}
	return out, nil
}

// Cast returns the typed configuration in store order. Items the schema does
// not declare are left out. Every cast failure is joined into the error.
func (s *Session) Cast(ctx context.Context) ([]ports.Section, error) {
	snapshot, err := ports.Snapshot(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to list configuration: %w", err)
	}

	var (
		out  []ports.Section
		errs []error
	)
	for _, sec := range snapshot {
		typed := ports.Section{Name: sec.Name}
		for _, it := range sec.Items {
			if !s.master.Has(sec.Name, it.Name) {
				continue
			}
			chk, err := s.Checker(sec.Name, it.Name)
			if err != nil {
				return nil, err
			}
			v, err := chk.Cast(ctx)
			if err != nil {
				var iss *checkers.Issue
				if !errors.As(err, &iss) {
					return nil, err
				}
				errs = append(errs, err)
				continue
			}
			typed.Items = append(typed.Items, ports.Item{Name: it.Name, Value: v})
		}
		if len(typed.Items) > 0 {
			out = append(out, typed)
		}
	}
	return out, errors.Join(errs...)
}

func (s *Session) lock(ctx context.Context) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	release, err := s.locker.Lock(ctx, s.lockKey, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire pass lock: %w", err)
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release pass lock", "err", err)
		}
	}, nil
}
