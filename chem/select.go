/*
 * select.go, part of stitch.
 *
 * Copyright 2024 Raul Mera <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Select returns the sorted, 0-based indexes of the atoms in top that match the
// selection expression expr.
//
// The expression language has the keywords all, none, protein, backbone, sidechain,
// water, hydrogen and heavy, and the fields name, resname, resid, chain, element
// and index. A field takes one or more values; resid and index also take ranges
// written "a to b" (both ends included). Terms are combined with and, or, not
// and parentheses, and and binds tighter than or:
//
//	protein and name CA
//	resid 10 to 20 25 and not hydrogen
//	(chain A or chain B) and backbone
func Select(top Atomer, expr string) ([]int, error) {
	p := &selParser{toks: selTokenize(expr)}
	if len(p.toks) == 0 {
		return nil, CError{msg: "Empty selection", deco: []string{"Select"}}
	}
	pred, err := p.or()
	if err != nil {
		return nil, errDecorate(err, "Select")
	}
	if !p.done() {
		return nil, CError{msg: fmt.Sprintf("Unexpected %q in selection %q", p.peek(), expr), deco: []string{"Select"}}
	}
	ret := make([]int, 0)
	for i := 0; i < top.Len(); i++ {
		if pred(i, top.Atom(i)) {
			ret = append(ret, i)
		}
	}
	sort.Ints(ret)
	return ret, nil
}

type selPred func(i int, at *Atom) bool

func selTokenize(expr string) []string {
	expr = strings.ReplaceAll(expr, "(", " ( ")
	expr = strings.ReplaceAll(expr, ")", " ) ")
	return strings.Fields(expr)
}

var selKeywords = map[string]selPred{
	"all":  func(int, *Atom) bool { return true },
	"none": func(int, *Atom) bool { return false },
	"protein": func(_ int, at *Atom) bool {
		return IsProtein(at.MolName)
	},
	"backbone": func(_ int, at *Atom) bool {
		return IsProtein(at.MolName) && backboneNames[strings.ToUpper(at.Name)]
	},
	"sidechain": func(_ int, at *Atom) bool {
		return IsProtein(at.MolName) && !backboneNames[strings.ToUpper(at.Name)]
	},
	"water": func(_ int, at *Atom) bool {
		return IsWater(at.MolName)
	},
	"hydrogen": func(_ int, at *Atom) bool {
		return at.Symbol == "H"
	},
	"heavy": func(_ int, at *Atom) bool {
		return at.Symbol != "H"
	},
}

var selStringFields = map[string]func(*Atom) string{
	"name":    func(at *Atom) string { return at.Name },
	"resname": func(at *Atom) string { return at.MolName },
	"chain":   func(at *Atom) string { return at.Chain },
	"element": func(at *Atom) string { return at.Symbol },
}

var selIntFields = map[string]func(int, *Atom) int{
	"resid": func(_ int, at *Atom) int { return at.MolID },
	"index": func(i int, _ *Atom) int { return i },
}

func selReserved(tok string) bool {
	t := strings.ToLower(tok)
	if t == "and" || t == "or" || t == "not" || t == "(" || t == ")" {
		return true
	}
	_, kw := selKeywords[t]
	_, sf := selStringFields[t]
	_, nf := selIntFields[t]
	return kw || sf || nf
}

type selParser struct {
	toks []string
	pos  int
}

func (p *selParser) done() bool { return p.pos >= len(p.toks) }

func (p *selParser) peek() string {
	if p.done() {
		return ""
	}
	return p.toks[p.pos]
}

func (p *selParser) accept(s string) bool {
	if !p.done() && strings.EqualFold(p.toks[p.pos], s) {
		p.pos++
		return true
	}
	return false
}

func (p *selParser) or() (selPred, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept("or") {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(i int, at *Atom) bool { return l(i, at) || right(i, at) }
	}
	return left, nil
}

func (p *selParser) and() (selPred, error) {
	left, err := p.not()
	if err != nil {
		return nil, err
	}
	for p.accept("and") {
		right, err := p.not()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(i int, at *Atom) bool { return l(i, at) && right(i, at) }
	}
	return left, nil
}

func (p *selParser) not() (selPred, error) {
	if p.accept("not") {
		inner, err := p.not()
		if err != nil {
			return nil, err
		}
		return func(i int, at *Atom) bool { return !inner(i, at) }, nil
	}
	return p.primary()
}

func (p *selParser) primary() (selPred, error) {
	if p.done() {
		return nil, CError{msg: "Selection ends unexpectedly", deco: []string{"primary"}}
	}
	if p.accept("(") {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(")") {
			return nil, CError{msg: "Missing closing parenthesis in selection", deco: []string{"primary"}}
		}
		return inner, nil
	}
	tok := strings.ToLower(p.peek())
	p.pos++
	if pred, ok := selKeywords[tok]; ok {
		return pred, nil
	}
	if get, ok := selStringFields[tok]; ok {
		vals := p.values()
		if len(vals) == 0 {
			return nil, CError{msg: fmt.Sprintf("Field %q needs at least one value", tok), deco: []string{"primary"}}
		}
		return func(_ int, at *Atom) bool {
			v := get(at)
			for _, w := range vals {
				if strings.EqualFold(v, w) {
					return true
				}
			}
			return false
		}, nil
	}
	if get, ok := selIntFields[tok]; ok {
		ranges, err := p.intRanges(tok)
		if err != nil {
			return nil, err
		}
		return func(i int, at *Atom) bool {
			v := get(i, at)
			for _, r := range ranges {
				if v >= r[0] && v <= r[1] {
					return true
				}
			}
			return false
		}, nil
	}
	return nil, CError{msg: fmt.Sprintf("Unknown selection token %q", p.toks[p.pos-1]), deco: []string{"primary"}}
}

// values consumes the tokens up to the next reserved word.
func (p *selParser) values() []string {
	var ret []string
	for !p.done() && !selReserved(p.peek()) {
		ret = append(ret, p.peek())
		p.pos++
	}
	return ret
}

func (p *selParser) intRanges(field string) ([][2]int, error) {
	vals := p.values()
	if len(vals) == 0 {
		return nil, CError{msg: fmt.Sprintf("Field %q needs at least one value", field), deco: []string{"intRanges"}}
	}
	var ret [][2]int
	for i := 0; i < len(vals); i++ {
		a, err := strconv.Atoi(vals[i])
		if err != nil {
			return nil, CError{msg: fmt.Sprintf("Non-integer value %q for field %q", vals[i], field), deco: []string{"intRanges"}}
		}
		b := a
		if i+2 < len(vals) && strings.EqualFold(vals[i+1], "to") {
			b, err = strconv.Atoi(vals[i+2])
			if err != nil {
				return nil, CError{msg: fmt.Sprintf("Non-integer value %q for field %q", vals[i+2], field), deco: []string{"intRanges"}}
			}
			if b < a {
				return nil, CError{msg: fmt.Sprintf("Empty range %d to %d for field %q", a, b, field), deco: []string{"intRanges"}}
			}
			i += 2
		}
		ret = append(ret, [2]int{a, b})
	}
	return ret, nil
}
