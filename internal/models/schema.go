package models

// Column is one column of a generated table. DataType is the MySQL type as
// written in the script.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
}

type ForeignKey struct {
	ConstraintName string `json:"constraint_name"`
	FromColumn     string `json:"from_column"`
	ToTable        string `json:"to_table"`
	ToColumn       string `json:"to_column"`
}

// Table describes a generated table after every statement of the script
// has been applied.
type Table struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	PrimaryKeys []string     `json:"primary_keys"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

// HasColumn reports whether the table already has a column called name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// IsForeignKey reports whether column references another table.
func (t *Table) IsForeignKey(column string) bool {
	for _, fk := range t.ForeignKeys {
		if fk.FromColumn == column {
			return true
		}
	}
	return false
}
