package main

import (
	"encoding/json"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/engine"
	"github.com/flatbase/flatbase/errs"
	"github.com/flatbase/flatbase/executor"
	"github.com/flatbase/flatbase/operator"
)

// planDoc is the on-disk JSON shape run reads: an ordered list of steps,
// each a key and a chain of tagged operator documents, applied in order
// starting from the environment's current __result__. There is no SQL
// layer above this; the chain is the plan.
type planDoc []stepDoc

type stepDoc struct {
	Key string
	raw []opDocRaw
}

// opDocRaw holds one chain entry's operator tag alongside its still-encoded
// parameters, so the tag can select a decode target before unmarshaling.
type opDocRaw struct {
	Op  string
	raw json.RawMessage
}

func (s *stepDoc) UnmarshalJSON(data []byte) error {
	var wire struct {
		Key   string            `json:"key"`
		Chain []json.RawMessage `json:"chain"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return pkgerrors.Wrap(err, "decoding plan step")
	}
	s.Key = wire.Key
	s.raw = make([]opDocRaw, len(wire.Chain))
	for i, m := range wire.Chain {
		var tag struct {
			Op string `json:"op"`
		}
		if err := json.Unmarshal(m, &tag); err != nil {
			return pkgerrors.Wrapf(err, "decoding plan step %q chain entry %d", s.Key, i)
		}
		s.raw[i] = opDocRaw{Op: tag.Op, raw: m}
	}
	return nil
}

type predicateDoc struct {
	Left     string `json:"left"`
	Cmp      string `json:"cmp"`
	Right    string `json:"right"`
	RightLit any    `json:"right_lit"`
	hasLit   bool
}

func (p *predicateDoc) UnmarshalJSON(data []byte) error {
	var wire struct {
		Left     string `json:"left"`
		Cmp      string `json:"cmp"`
		Right    string `json:"right"`
		RightLit *any   `json:"right_lit"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.Left, p.Cmp, p.Right = wire.Left, wire.Cmp, wire.Right
	if wire.RightLit != nil {
		p.RightLit, p.hasLit = *wire.RightLit, true
	}
	return nil
}

func (p predicateDoc) toPredicate() (operator.Predicate, error) {
	cmp, err := parseComparison(p.Cmp)
	if err != nil {
		return operator.Predicate{}, err
	}
	pred := operator.Predicate{LeftCol: p.Left, Cmp: cmp}
	if p.hasLit {
		pred.RightIsLit = true
		pred.RightLit = coerceLiteral(p.RightLit)
	} else {
		pred.RightCol = p.Right
	}
	return pred, nil
}

func parseComparison(s string) (operator.Comparison, error) {
	switch s {
	case "=":
		return operator.Eq, nil
	case "!=", "<>":
		return operator.Neq, nil
	case "<":
		return operator.Lt, nil
	case "<=":
		return operator.Lte, nil
	case ">":
		return operator.Gt, nil
	case ">=":
		return operator.Gte, nil
	default:
		return 0, pkgerrors.Wrapf(errs.ErrUnsupportedOp, "unknown comparison %q", s)
	}
}

// coerceLiteral narrows a JSON-decoded literal (always float64 for numbers)
// down to int32 when it carries no fractional part, matching the scalar
// types a catalog column can actually hold.
func coerceLiteral(v any) any {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	if f == float64(int32(f)) {
		return int32(f)
	}
	return float32(f)
}

func parseConnector(s string) (operator.Connector, error) {
	switch strings.ToLower(s) {
	case "", "and":
		return operator.And, nil
	case "or":
		return operator.Or, nil
	default:
		return 0, pkgerrors.Wrapf(errs.ErrUnsupportedOp, "unknown connector %q", s)
	}
}

// buildPlan decodes data into an executor.Plan, wiring scan operators
// against e's on-disk catalog/heap collaborators.
func buildPlan(data []byte, e *engine.Engine) (*executor.Plan, error) {
	var doc planDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, pkgerrors.Wrap(err, "decoding plan")
	}

	plan := &executor.Plan{}
	for _, step := range doc {
		chain := make([]any, len(step.raw))
		for i, o := range step.raw {
			built, err := buildOp(o, e)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "step %q chain entry %d (%s)", step.Key, i, o.Op)
			}
			chain[i] = built
		}
		plan.Steps = append(plan.Steps, executor.Step{Key: step.Key, Chain: chain})
	}
	return plan, nil
}

func buildOp(o opDocRaw, e *engine.Engine) (any, error) {
	switch o.Op {
	case "scan_csv":
		var p struct {
			Table string `json:"table"`
		}
		if err := json.Unmarshal(o.raw, &p); err != nil {
			return nil, err
		}
		return operator.ScanCSV{Table: p.Table, CatalogStore: e.CatalogStore()}, nil

	case "scan_heap":
		var p struct {
			Table string `json:"table"`
		}
		if err := json.Unmarshal(o.raw, &p); err != nil {
			return nil, err
		}
		return operator.ScanHeap{Table: p.Table, CatalogStore: e.CatalogStore(), FileOpener: e.FileOpener()}, nil

	case "projection":
		var p struct {
			Columns []string `json:"columns"`
		}
		if err := json.Unmarshal(o.raw, &p); err != nil {
			return nil, err
		}
		return operator.Projection{Columns: p.Columns}, nil

	case "selection":
		var p struct {
			Pred1     predicateDoc  `json:"pred1"`
			Connector string        `json:"connector"`
			Pred2     *predicateDoc `json:"pred2"`
		}
		if err := json.Unmarshal(o.raw, &p); err != nil {
			return nil, err
		}
		pred1, err := p.Pred1.toPredicate()
		if err != nil {
			return nil, err
		}
		sel := operator.Selection{Pred1: pred1}
		if p.Pred2 != nil {
			conn, err := parseConnector(p.Connector)
			if err != nil {
				return nil, err
			}
			pred2, err := p.Pred2.toPredicate()
			if err != nil {
				return nil, err
			}
			sel.Connector = conn
			sel.Pred2 = &pred2
			sel.HasPred2 = true
		}
		return sel, nil

	case "limit":
		var p struct {
			N int `json:"n"`
		}
		if err := json.Unmarshal(o.raw, &p); err != nil {
			return nil, err
		}
		return operator.Limit{N: p.N}, nil

	case "sort":
		var p struct {
			Fields []struct {
				Column string `json:"column"`
				Desc   bool   `json:"desc"`
			} `json:"fields"`
		}
		if err := json.Unmarshal(o.raw, &p); err != nil {
			return nil, err
		}
		fields := make([]operator.SortField, len(p.Fields))
		for i, f := range p.Fields {
			fields[i] = operator.SortField{Column: f.Column, Desc: f.Desc}
		}
		return operator.Sort{Fields: fields}, nil

	case "merge":
		var p struct {
			OtherKey string `json:"other_key"`
		}
		if err := json.Unmarshal(o.raw, &p); err != nil {
			return nil, err
		}
		return operator.Merge{OtherKey: p.OtherKey}, nil

	case "nested_loops_join":
		var p struct {
			Pred     predicateDoc `json:"pred"`
			OtherKey string       `json:"other_key"`
		}
		if err := json.Unmarshal(o.raw, &p); err != nil {
			return nil, err
		}
		pred, err := p.Pred.toPredicate()
		if err != nil {
			return nil, err
		}
		return operator.NestedLoopsJoin{Pred: pred, OtherKey: p.OtherKey}, nil

	case "hash_join":
		var p struct {
			Pred     predicateDoc `json:"pred"`
			OtherKey string       `json:"other_key"`
		}
		if err := json.Unmarshal(o.raw, &p); err != nil {
			return nil, err
		}
		pred, err := p.Pred.toPredicate()
		if err != nil {
			return nil, err
		}
		return operator.HashJoin{Pred: pred, OtherKey: p.OtherKey}, nil

	case "sort_merge_join":
		var p struct {
			Pred     predicateDoc `json:"pred"`
			OtherKey string       `json:"other_key"`
		}
		if err := json.Unmarshal(o.raw, &p); err != nil {
			return nil, err
		}
		pred, err := p.Pred.toPredicate()
		if err != nil {
			return nil, err
		}
		return operator.SortMergeJoin{Pred: pred, OtherKey: p.OtherKey}, nil

	case "aggregate":
		var p struct {
			GroupCols []string `json:"group_cols"`
			Specs     []struct {
				Func   string `json:"func"`
				SrcCol string `json:"src_col"`
				OutCol string `json:"out_col"`
			} `json:"specs"`
		}
		if err := json.Unmarshal(o.raw, &p); err != nil {
			return nil, err
		}
		specs := make([]operator.AggSpec, len(p.Specs))
		for i, s := range p.Specs {
			f, err := parseAggFunc(s.Func)
			if err != nil {
				return nil, err
			}
			specs[i] = operator.AggSpec{Func: f, SrcCol: s.SrcCol, OutCol: s.OutCol}
		}
		return operator.Aggregate{GroupCols: p.GroupCols, Specs: specs}, nil

	default:
		return nil, pkgerrors.Wrapf(errs.ErrUnsupportedOp, "unknown operator %q", o.Op)
	}
}

func parseAggFunc(s string) (operator.AggFunc, error) {
	switch strings.ToLower(s) {
	case "count":
		return operator.Count, nil
	case "average", "avg":
		return operator.Average, nil
	default:
		return 0, pkgerrors.Wrapf(errs.ErrUnsupportedOp, "unknown aggregate function %q", s)
	}
}
