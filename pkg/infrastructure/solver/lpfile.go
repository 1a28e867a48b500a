package solver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vsinha/capplan/pkg/domain/model"
)

// lpLineWidth keeps expression lines well under the 255 character limit of
// the LP format
const lpLineWidth = 200

// WriteLP writes m in CPLEX LP format so it can be solved by an external
// engine such as glpsol or HiGHS. Expression constants are moved to the
// right-hand side. The objective constant and rows without variables are
// written as comments since LP readers disagree on how to accept them.
func WriteLP(w io.Writer, m *model.Model) error {
	if m == nil {
		return fmt.Errorf("write lp: model is nil")
	}

	bw := bufio.NewWriter(w)
	names := lpNames(m)

	fmt.Fprintf(bw, "\\ Model %s\n", m.Name)
	fmt.Fprintf(bw, "\\ %d variables, %d constraints\n", m.NumVariables(), len(m.Constraints))
	if m.Objective.Expr.Constant != 0 {
		fmt.Fprintf(bw, "\\ objective constant: %s\n", formatNumber(m.Objective.Expr.Constant))
	}

	fmt.Fprintln(bw, m.Objective.Sense.String())
	objName := m.Objective.Name
	if objName == "" {
		objName = "obj"
	}
	fmt.Fprintf(bw, " %s\n", strings.Join(wrapTerms(sanitize(objName)+":", m.Objective.Expr.Terms, names), "\n   "))

	fmt.Fprintln(bw, "Subject To")
	for _, c := range m.Constraints {
		rhs := formatNumber(c.RHS - c.Expr.Constant)
		if len(c.Expr.Terms) == 0 {
			fmt.Fprintf(bw, "\\ %s: 0 %s %s\n", sanitize(c.Name), c.Sense, rhs)
			continue
		}
		lines := wrapTerms(sanitize(c.Name)+":", c.Expr.Terms, names)
		fmt.Fprintf(bw, " %s %s %s\n", strings.Join(lines, "\n   "), c.Sense, rhs)
	}

	if len(names) > 0 {
		fmt.Fprintln(bw, "Binary")
		for _, name := range names {
			fmt.Fprintf(bw, " %s\n", name)
		}
	}
	fmt.Fprintln(bw, "End")

	return bw.Flush()
}

// wrapTerms renders "label: c1 x1 + c2 x2 ..." split into lines of bounded width
func wrapTerms(label string, terms []model.Term, names []string) []string {
	if len(terms) == 0 {
		return []string{label + " 0"}
	}
	var lines []string
	line := label
	for i, t := range terms {
		var part string
		switch {
		case i == 0 && t.Coeff < 0:
			part = "- " + formatCoeff(-t.Coeff) + names[t.Var]
		case i == 0:
			part = formatCoeff(t.Coeff) + names[t.Var]
		case t.Coeff < 0:
			part = "- " + formatCoeff(-t.Coeff) + names[t.Var]
		default:
			part = "+ " + formatCoeff(t.Coeff) + names[t.Var]
		}
		if len(line)+1+len(part) > lpLineWidth {
			lines = append(lines, line)
			line = part
			continue
		}
		line += " " + part
	}
	return append(lines, line)
}

func formatCoeff(c float64) string {
	if c == 1 {
		return ""
	}
	return formatNumber(c) + " "
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// lpNames maps every variable to a unique LP-safe identifier,
// e.g. Select[2020,Line A] becomes Select_2020_Line_A
func lpNames(m *model.Model) []string {
	names := make([]string, m.NumVariables())
	seen := make(map[string]int, len(names))
	for i, v := range m.Variables {
		name := sanitize(v.Name)
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func sanitize(name string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range name {
		ok := r == '_' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			r = '_'
		}
		if r == '_' && lastUnderscore {
			continue
		}
		lastUnderscore = r == '_'
		sb.WriteRune(r)
	}
	out := strings.Trim(sb.String(), "_")
	if out == "" || (out[0] >= '0' && out[0] <= '9') || out[0] == '.' {
		out = "x_" + out
	}
	return out
}
