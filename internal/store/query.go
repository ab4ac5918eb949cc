package store

import (
	"strconv"
	"strings"

	"github.com/learnhub/auditkeeper/internal/models"
)

// likeEscaper escapes ILIKE wildcards in user input (backslash is the default escape).
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// predicate accumulates AND-joined conditions with positional parameters.
type predicate struct {
	conds []string
	args  []any
}

// add appends "lhs $n" and binds v as parameter n.
func (p *predicate) add(lhs string, v any) {
	p.args = append(p.args, v)
	p.conds = append(p.conds, lhs+" $"+strconv.Itoa(len(p.args)))
}

// where renders the WHERE clause, or "" when there are no conditions.
func (p *predicate) where() string {
	if len(p.conds) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(p.conds, " AND ")
}

// next returns the index of the next positional parameter.
func (p *predicate) next() int {
	return len(p.args) + 1
}

// buildFilter turns the honored subset of f into a parameterized predicate.
// Filter keys are visited in registry order so identical inputs always
// produce identical SQL.
func buildFilter(d models.CategoryDescriptor, f models.FilterSpec) (*predicate, error) {
	p := &predicate{}

	for _, field := range d.Filters {
		v := strings.TrimSpace(f[field.Key])
		if v == "" {
			continue
		}

		col := ident(field.Column)

		switch field.Kind {
		case models.FilterEquals:
			p.add(col+" =", v)
		case models.FilterContains:
			p.add(col+" ILIKE", "%"+likeEscaper.Replace(v)+"%")
		case models.FilterBool:
			b, err := models.ParseBool(field.Key, v)
			if err != nil {
				return nil, err
			}
			p.add(col+" =", b)
		}
	}

	dr, err := models.ParseDateRange(f[models.DateFromKey], f[models.DateToKey])
	if err != nil {
		return nil, err
	}

	ts := ident(d.TimestampColumn)
	if dr.From != nil {
		p.add(ts+" >=", *dr.From)
	}
	if dr.To != nil {
		p.add(ts+" <=", *dr.To)
	}

	return p, nil
}

// countQuery renders SELECT COUNT(*) over the category table.
func countQuery(d models.CategoryDescriptor, p *predicate) string {
	return "SELECT COUNT(*) FROM " + ident(d.Table) + p.where()
}

// selectQuery renders the ordered row query with a LIMIT placeholder and,
// when withOffset is set, an OFFSET placeholder after it.
func selectQuery(d models.CategoryDescriptor, cols []string, p *predicate, withOffset bool) string {
	ts := ident(d.TimestampColumn)
	n := p.next()

	q := "SELECT " + identList(cols) + " FROM " + ident(d.Table) + p.where() +
		" ORDER BY " + ts + " DESC, " + ident("id") + " DESC LIMIT $" + strconv.Itoa(n)
	if withOffset {
		q += " OFFSET $" + strconv.Itoa(n+1)
	}

	return q
}
