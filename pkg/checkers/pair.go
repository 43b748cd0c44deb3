package checkers

import (
	"context"
	"time"

	"github.com/aretw0/inicheck/pkg/schema"
)

// pairChecker is a datetime checker that also enforces strict ordering
// against its paired item in the same section: start < end.
type pairChecker struct {
	*base
}

func (p *pairChecker) Check(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, scalars, err := p.check(ctx)
	if err != nil {
		return nil, err
	}

	sibling, role, ok, err := p.sibling(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		for i, v := range scalars {
			own, isTime := v.(time.Time)
			if res.Issues[i] != nil || !isTime {
				continue
			}
			if iss := p.compare(own, sibling, role); iss != nil {
				res.Issues[i] = p.bind(iss, own)
			}
		}
	}

	p.finish(ctx, res, start)
	return res, nil
}

// sibling reads and casts the paired item. ok is false when the ordering
// cannot be evaluated: no partner declared, partner absent, empty or
// unparsable. An unparsable partner is reported by its own checker.
func (p *pairChecker) sibling(ctx context.Context) (time.Time, schema.Role, bool, error) {
	pair, role := p.entry.PairItem()
	if pair == "" {
		p.logger.Debug("no paired item resolvable, skipping order check")
		return time.Time{}, "", false, nil
	}

	raw, found, err := p.store.Get(ctx, p.entry.Section, pair)
	if err != nil {
		return time.Time{}, "", false, err
	}
	if seq, isSeq := asSequence(raw); isSeq {
		if len(seq) != 1 {
			p.logger.Debug("paired item holds several values, skipping order check", "pair", pair)
			return time.Time{}, "", false, nil
		}
		raw = seq[0]
	}
	if !found || isEmpty(raw) {
		p.logger.Debug("paired item not set, skipping order check", "pair", pair)
		return time.Time{}, "", false, nil
	}

	v, iss := p.caster.cast(raw)
	if iss != nil {
		p.logger.Debug("paired item unparsable, skipping order check", "pair", pair)
		return time.Time{}, "", false, nil
	}
	t, isTime := v.(time.Time)
	return t, role, isTime, nil
}

func (p *pairChecker) compare(own, sibling time.Time, role schema.Role) *Issue {
	pair, _ := p.entry.PairItem()
	switch role {
	case schema.RoleStart:
		if !own.Before(sibling) {
			return issuef(KindRelation, "start %s must be before %s %s", own.Format(time.RFC3339), pair, sibling.Format(time.RFC3339))
		}
	case schema.RoleEnd:
		if !own.After(sibling) {
			return issuef(KindRelation, "end %s must be after %s %s", own.Format(time.RFC3339), pair, sibling.Format(time.RFC3339))
		}
	}
	return nil
}
