package services

import (
	"fmt"
	"slices"
	"strings"

	"er_diagram/internal/models"
)

const oneToMany = "||--o{"

// RenderMermaid writes tables as a Mermaid erDiagram. Each foreign key
// becomes a one-to-many relationship from the referenced table.
func RenderMermaid(tables []models.Table) string {
	var sb strings.Builder

	sb.WriteString("erDiagram\n")

	// Use a map to deduplicate relationships
	seen := make(map[string]bool)
	wrote := false
	for _, table := range tables {
		for _, fk := range table.ForeignKeys {
			key := fmt.Sprintf("%s:%s:%s", fk.ToTable, table.Name, fk.FromColumn)
			if seen[key] {
				continue
			}
			seen[key] = true
			wrote = true
			sb.WriteString(fmt.Sprintf("    %s %s %s : \"%s\"\n",
				fk.ToTable,
				oneToMany,
				table.Name,
				fk.FromColumn))
		}
	}
	if wrote {
		sb.WriteString("\n")
	}

	for _, table := range tables {
		sb.WriteString(fmt.Sprintf("    %s {\n", table.Name))

		for _, col := range table.Columns {
			annotations := ""
			if slices.Contains(table.PrimaryKeys, col.Name) {
				annotations = " PK"
			}
			if table.IsForeignKey(col.Name) {
				annotations += " FK"
			}

			sb.WriteString(fmt.Sprintf("        %s %s%s\n",
				simplifyDataType(col.DataType),
				col.Name,
				annotations))
		}

		sb.WriteString("    }\n\n")
	}

	return sb.String()
}

// simplifyDataType drops the length so the type is a single Mermaid token.
func simplifyDataType(dataType string) string {
	dt := strings.ToLower(strings.TrimSpace(dataType))
	if i := strings.IndexByte(dt, '('); i >= 0 {
		dt = dt[:i]
	}
	if dt == "" {
		return "unknown"
	}
	return strings.ReplaceAll(dt, " ", "_")
}
