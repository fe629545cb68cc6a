package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/frahmantamala/insight-pulse/internal/department"
	"github.com/frahmantamala/insight-pulse/internal/permission"
	"github.com/frahmantamala/insight-pulse/internal/remarks"
	"github.com/frahmantamala/insight-pulse/internal/survey"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	allowedStyle = cellStyle.Foreground(lipgloss.Color("10"))
	deniedStyle  = cellStyle.Foreground(lipgloss.Color("8"))
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

const (
	markAllowed = "✓"
	markDenied  = "·"
	markSelf    = "—"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderDepartments(w io.Writer, depts []department.Department) {
	t := newTable("ID", "Department")
	for _, d := range depts {
		t.Row(strconv.FormatInt(d.ID, 10), d.Name)
	}
	fmt.Fprintln(w, t.Render())
}

// renderMatrix draws one row per surveying department and one column per
// surveyed department.
func renderMatrix(w io.Writer, depts []department.Department, m *permission.Matrix) {
	headers := make([]string, 0, len(depts)+1)
	headers = append(headers, "From \\ To")
	for _, d := range depts {
		headers = append(headers, d.Name)
	}

	rows := make([][]string, 0, len(depts))
	for _, from := range depts {
		row := make([]string, 0, len(depts)+1)
		row = append(row, from.Name)
		for _, to := range depts {
			switch {
			case from.ID == to.ID:
				row = append(row, markSelf)
			case m.Allowed(from.ID, to.ID):
				row = append(row, markAllowed)
			default:
				row = append(row, markDenied)
			}
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return headerStyle
			}
			if row >= 0 && row < len(rows) && rows[row][col] == markAllowed {
				return allowedStyle
			}
			return deniedStyle
		})
	fmt.Fprintln(w, t.Render())

	fmt.Fprintf(w, "%s %d  %s %d  %s %d%%\n",
		labelStyle.Render("Allowed:"), m.CountAllowed(),
		labelStyle.Render("Restricted:"), m.CountRestricted(),
		labelStyle.Render("Open:"), m.ProgressRate())
}

func renderSurvey(w io.Writer, s survey.SurveyResponse) {
	fmt.Fprintln(w, headingStyle.Render(s.Title))
	if s.Description != "" {
		fmt.Fprintln(w, s.Description)
	}

	t := newTable("#", "ID", "Type", "Question", "Options")
	for _, q := range s.Questions {
		opts := ""
		for i, o := range q.Options {
			if i > 0 {
				opts += ", "
			}
			opts += fmt.Sprintf("%d=%s", o.ID, o.Text)
		}
		t.Row(strconv.Itoa(q.Order), strconv.FormatInt(q.ID, 10), q.Type, q.Text, opts)
	}
	fmt.Fprintln(w, t.Render())
}

func renderIncoming(w io.Writer, f remarks.Feedback, position string) {
	fmt.Fprintln(w, headingStyle.Render("Incoming feedback ("+position+")"))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("From:"), f.FromDepartment)
	fmt.Fprintf(w, "%s %d/5\n", labelStyle.Render("Rating:"), f.RatingGiven)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Remark:"), f.Remark)
}

func renderOutgoing(w io.Writer, f remarks.OutFeedback, position string) {
	fmt.Fprintln(w, headingStyle.Render("Your feedback ("+position+")"))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Department:"), f.Department)
	fmt.Fprintf(w, "%s %d/5\n", labelStyle.Render("Rating:"), f.Rating)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Your remark:"), f.YourRemark)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Explanation:"), f.TheirResponse.Explanation)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Action plan:"), f.TheirResponse.ActionPlan)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Responsible:"), f.TheirResponse.ResponsiblePerson)
}
