package compiler

import (
	"strings"

	"er_diagram/internal/models"
)

type StatementKind int

const (
	KindHeader StatementKind = iota
	KindComment
	KindCreateDatabase
	KindUseDatabase
	KindDropTable
	KindCreateTable
	KindAddColumn
	KindForeignKey
	KindInsert
)

func (k StatementKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindComment:
		return "comment"
	case KindCreateDatabase:
		return "create_database"
	case KindUseDatabase:
		return "use_database"
	case KindDropTable:
		return "drop_table"
	case KindCreateTable:
		return "create_table"
	case KindAddColumn:
		return "add_column"
	case KindForeignKey:
		return "foreign_key"
	case KindInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Statement is one entry of a generated script. Comment may span several
// lines and is rendered as SQL line comments above SQL. Comment-only
// statements have an empty SQL.
type Statement struct {
	Kind    StatementKind
	Table   string
	Comment string
	SQL     string
}

// joinsNext reports whether the statement is printed without a blank line
// before the one that follows it.
func (s Statement) joinsNext() bool {
	return s.Kind == KindCreateDatabase || s.Kind == KindDropTable
}

func (s Statement) String() string {
	var sb strings.Builder
	s.write(&sb)
	return sb.String()
}

func (s Statement) write(sb *strings.Builder) {
	if s.Comment != "" {
		for _, line := range strings.Split(s.Comment, "\n") {
			sb.WriteString("-- ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	if s.SQL != "" {
		sb.WriteString(s.SQL)
		sb.WriteString("\n")
	}
}

// Script is the ordered output of Compile.
type Script struct {
	Variant    Variant
	Statements []Statement
	// Tables lists the created tables in creation order.
	Tables []string
	// Schema describes each table in Tables once the script has run.
	Schema []models.Table
}

func (s *Script) add(st Statement) {
	s.Statements = append(s.Statements, st)
}

// String renders the whole script as SQL text.
func (s *Script) String() string {
	var sb strings.Builder
	for i, st := range s.Statements {
		st.write(&sb)
		if st.joinsNext() && i+1 < len(s.Statements) {
			continue
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Executable returns the SQL of every statement that has any, in order.
func (s *Script) Executable() []string {
	var out []string
	for _, st := range s.Statements {
		if st.SQL != "" {
			out = append(out, st.SQL)
		}
	}
	return out
}

// Count returns the number of statements of the given kind.
func (s *Script) Count(kind StatementKind) int {
	var n int
	for _, st := range s.Statements {
		if st.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the statements of the given kind, in order.
func (s *Script) Filter(kind StatementKind) []Statement {
	var out []Statement
	for _, st := range s.Statements {
		if st.Kind == kind {
			out = append(out, st)
		}
	}
	return out
}
